package sinks

import (
	"bufio"
	"encoding/json"
	"os"
	"path"
	"testing"
)

func TestJSONLSinkAppendsLines(t *testing.T) {
	filePath := path.Join(t.TempDir(), "metrics", "scalars.jsonl")
	sink, err := NewJSONLSink(filePath)
	if err != nil {
		t.Fatalf("creating sink: %s", err)
	}
	for step := 1; step <= 3; step++ {
		if err := sink.RecordScalar("reward", float64(step)/4, step); err != nil {
			t.Fatalf("recording: %s", err)
		}
	}

	f, err := os.Open(sink.Path())
	if err != nil {
		t.Fatalf("opening output: %s", err)
	}
	defer f.Close()

	lines := make([]scalarLine, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var l scalarLine
		if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
			t.Fatalf("invalid line %q: %s", scanner.Text(), err)
		}
		lines = append(lines, l)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	last := lines[2]
	if last.Name != "reward" || last.Step != 3 || last.Value != 0.75 {
		t.Errorf("unexpected last line %+v", last)
	}
}

func TestJSONLSinkUnwritable(t *testing.T) {
	dir := t.TempDir()
	// a directory cannot be appended to
	sink, err := NewJSONLSink(path.Join(dir, "sub"))
	if err != nil {
		t.Fatalf("creating sink: %s", err)
	}
	if err := os.Mkdir(sink.Path(), 0777); err != nil {
		t.Fatalf("creating directory: %s", err)
	}
	if err := sink.RecordScalar("reward", 1, 1); err == nil {
		t.Errorf("expected an error when writing to a directory")
	}
}
