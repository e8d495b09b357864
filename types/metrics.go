package types

import (
	"errors"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MetricsSink records scalar values observed while learning.
// Recording is write-only and a failure never stops the learning process.
type MetricsSink interface {
	RecordScalar(name string, value float64, step int) error
}

// NopSink drops every value
type NopSink struct{}

var _ MetricsSink = NopSink{}

func (NopSink) RecordScalar(string, float64, int) error { return nil }

// ScalarPoint is a single recorded value
type ScalarPoint struct {
	Step  int     `json:"step"`
	Value float64 `json:"value"`
}

// MemorySink keeps every recorded series in memory.
// It is safe to read while the loop is writing to it.
type MemorySink struct {
	lock   *sync.Mutex
	series map[string][]ScalarPoint
}

var _ MetricsSink = &MemorySink{}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		lock:   new(sync.Mutex),
		series: make(map[string][]ScalarPoint),
	}
}

func (m *MemorySink) RecordScalar(name string, value float64, step int) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.series[name] = append(m.series[name], ScalarPoint{Step: step, Value: value})
	return nil
}

// Series returns a copy of the values recorded under name
func (m *MemorySink) Series(name string) ([]ScalarPoint, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	points, ok := m.series[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(points), true
}

// Names returns the recorded series names in sorted order
func (m *MemorySink) Names() []string {
	m.lock.Lock()
	defer m.lock.Unlock()
	names := maps.Keys(m.series)
	slices.Sort(names)
	return names
}

// Snapshot copies all the series
func (m *MemorySink) Snapshot() map[string][]ScalarPoint {
	m.lock.Lock()
	defer m.lock.Unlock()
	out := make(map[string][]ScalarPoint, len(m.series))
	for name, points := range m.series {
		out[name] = slices.Clone(points)
	}
	return out
}

// Reset drops all the series
func (m *MemorySink) Reset() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.series = make(map[string][]ScalarPoint)
}

// MultiSink forwards every value to all the sinks, even if some of them fail
type MultiSink []MetricsSink

var _ MetricsSink = MultiSink{}

func (m MultiSink) RecordScalar(name string, value float64, step int) error {
	errs := make([]error, 0)
	for _, s := range m {
		if err := s.RecordScalar(name, value, step); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
