package types

import (
	"errors"
	"sync"
	"testing"
)

func TestMemorySink(t *testing.T) {
	m := NewMemorySink()
	m.RecordScalar("b", 1, 1)
	m.RecordScalar("a", 2, 1)
	m.RecordScalar("a", 3, 2)

	names := m.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected sorted names [a b], got %v", names)
	}
	points, ok := m.Series("a")
	if !ok || len(points) != 2 || points[1].Value != 3 || points[1].Step != 2 {
		t.Errorf("unexpected series %v", points)
	}
	points[0].Value = 100
	if p, _ := m.Series("a"); p[0].Value != 2 {
		t.Errorf("Series should return a copy")
	}
	if _, ok := m.Series("c"); ok {
		t.Errorf("unknown series should not be found")
	}

	snapshot := m.Snapshot()
	if len(snapshot) != 2 || len(snapshot["a"]) != 2 {
		t.Errorf("unexpected snapshot %v", snapshot)
	}
	m.Reset()
	if len(m.Names()) != 0 {
		t.Errorf("reset should drop all series")
	}
}

func TestMemorySinkConcurrent(t *testing.T) {
	m := NewMemorySink()
	wg := new(sync.WaitGroup)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for step := 0; step < 100; step++ {
				m.RecordScalar("reward", 1, step)
				m.Snapshot()
			}
		}()
	}
	wg.Wait()
	if points, _ := m.Series("reward"); len(points) != 400 {
		t.Errorf("expected 400 points, got %d", len(points))
	}
}

func TestMultiSink(t *testing.T) {
	first := NewMemorySink()
	second := NewMemorySink()
	multi := MultiSink{first, failingSink{}, second}

	err := multi.RecordScalar("reward", 0.5, 3)
	if err == nil {
		t.Errorf("expected the failing sink error")
	}
	for _, m := range []*MemorySink{first, second} {
		if points, ok := m.Series("reward"); !ok || len(points) != 1 {
			t.Errorf("every sink should receive the value")
		}
	}
	if err := (MultiSink{first, NopSink{}}).RecordScalar("reward", 1, 4); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Errorf("expected a joined error, got %T", err)
	}
}
