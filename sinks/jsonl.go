// Package sinks contains metrics sinks writing outside of the process
package sinks

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/zeu5/tabular-rl/types"
	"github.com/zeu5/tabular-rl/util"
)

// scalarLine is one line of the JSONL file
type scalarLine struct {
	Name  string  `json:"name"`
	Step  int     `json:"step"`
	Value float64 `json:"value"`
}

// JSONLSink appends every scalar as a JSON object on its own line
type JSONLSink struct {
	filePath string
	lock     *sync.Mutex
}

var _ types.MetricsSink = &JSONLSink{}

// NewJSONLSink creates the parent directory of filePath if needed.
// An existing file is appended to.
func NewJSONLSink(filePath string) (*JSONLSink, error) {
	if err := os.MkdirAll(path.Dir(filePath), 0777); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", filePath, err)
	}
	return &JSONLSink{
		filePath: filePath,
		lock:     new(sync.Mutex),
	}, nil
}

func (j *JSONLSink) RecordScalar(name string, value float64, step int) error {
	bs, err := json.Marshal(scalarLine{Name: name, Step: step, Value: value})
	if err != nil {
		return err
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	return util.AppendToFile(j.filePath, string(bs))
}

func (j *JSONLSink) Path() string {
	return j.filePath
}
