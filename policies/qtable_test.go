package policies

import (
	"testing"

	"github.com/zeu5/tabular-rl/types"
)

func TestQTableDefaults(t *testing.T) {
	q := NewQTable()
	if q.Get(3, 2) != 0 || q.Has(3, 2) {
		t.Errorf("unseen pair should have value 0 and not be stored")
	}
	if q.Len() != 0 {
		t.Errorf("reading should not insert entries")
	}
	q.Set(3, 2, 0.5)
	if q.Get(3, 2) != 0.5 || !q.Has(3, 2) || q.Len() != 1 {
		t.Errorf("value not stored")
	}
}

func TestQTableMaxTieBreak(t *testing.T) {
	q := NewQTable()
	if a, v := q.Max(0, 4); a != 0 || v != 0 {
		t.Errorf("all zero actions should pick 0, got %d %f", a, v)
	}
	q.Set(0, 1, 0.7)
	q.Set(0, 3, 0.7)
	if a, v := q.Max(0, 4); a != 1 || v != 0.7 {
		t.Errorf("expected action 1 with 0.7, got %d %f", a, v)
	}
	q.Set(1, 0, -1)
	if a, v := q.Max(1, 2); a != types.Action(1) || v != 0 {
		t.Errorf("unseen action with value 0 should beat -1, got %d %f", a, v)
	}
}

func TestValueTableDefaults(t *testing.T) {
	v := NewValueTable()
	if v.Get(5) != 0 || v.Len() != 0 {
		t.Errorf("unseen state should have value 0")
	}
	v.Set(5, 2)
	if v.Get(5) != 2 || v.Len() != 1 {
		t.Errorf("value not stored")
	}
}

func TestTransitionStats(t *testing.T) {
	s := NewTransitionStats()
	if s.Total(0, 0) != 0 || len(s.Counts(0, 0)) != 0 || len(s.Outcomes(0, 0)) != 0 {
		t.Errorf("empty stats should have no outcomes")
	}
	s.Record(0, 0, 1, 3)
	s.Record(0, 0, 2, 3)
	s.Record(0, 0, 0, 1)

	if s.Total(0, 0) != 3 {
		t.Errorf("expected total 3, got %d", s.Total(0, 0))
	}
	// last reward wins
	if s.Reward(0, 0, 3) != 2 {
		t.Errorf("expected reward 2, got %f", s.Reward(0, 0, 3))
	}
	if s.Reward(0, 1, 3) != 0 {
		t.Errorf("unseen reward should be 0")
	}
	outcomes := s.Outcomes(0, 0)
	if len(outcomes) != 2 || outcomes[0] != 1 || outcomes[1] != 3 {
		t.Errorf("expected outcomes [1 3], got %v", outcomes)
	}

	counts := s.Counts(0, 0)
	counts[3] = 100
	if s.Counts(0, 0)[3] != 2 {
		t.Errorf("Counts should return a copy")
	}
}
