package policies

import "github.com/zeu5/tabular-rl/types"

type stateAction struct {
	state  types.State
	action types.Action
}

// QTable maps (state, action) pairs to values.
// Pairs that were never set have value 0.
type QTable struct {
	table map[stateAction]float64
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[stateAction]float64),
	}
}

// Get returns the value of (state, action), 0 if unseen
func (q *QTable) Get(state types.State, action types.Action) float64 {
	val, ok := q.table[stateAction{state, action}]
	if !ok {
		return 0
	}
	return val
}

func (q *QTable) Set(state types.State, action types.Action, val float64) {
	q.table[stateAction{state, action}] = val
}

func (q *QTable) Has(state types.State, action types.Action) bool {
	_, ok := q.table[stateAction{state, action}]
	return ok
}

// Len is the number of pairs stored in the table
func (q *QTable) Len() int {
	return len(q.table)
}

// Max scans actions 0..numActions-1 and returns the first action with the
// largest value
func (q *QTable) Max(state types.State, numActions int) (types.Action, float64) {
	bestAction := types.Action(0)
	bestValue := q.Get(state, 0)
	for a := 1; a < numActions; a++ {
		action := types.Action(a)
		if val := q.Get(state, action); val > bestValue {
			bestAction = action
			bestValue = val
		}
	}
	return bestAction, bestValue
}

// ValueTable maps states to values, unseen states have value 0
type ValueTable struct {
	table map[types.State]float64
}

func NewValueTable() *ValueTable {
	return &ValueTable{
		table: make(map[types.State]float64),
	}
}

func (v *ValueTable) Get(state types.State) float64 {
	val, ok := v.table[state]
	if !ok {
		return 0
	}
	return val
}

func (v *ValueTable) Set(state types.State, val float64) {
	v.table[state] = val
}

func (v *ValueTable) Len() int {
	return len(v.table)
}
