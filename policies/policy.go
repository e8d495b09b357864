package policies

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zeu5/tabular-rl/types"
)

// Policy is the greedy policy and the values learnt by a solver, dense over
// all states and actions
type Policy struct {
	Solver       string         `json:"solver"`
	States       int            `json:"states"`
	Actions      int            `json:"actions"`
	Values       []float64      `json:"values"`
	ActionValues [][]float64    `json:"action_values"`
	Greedy       []types.Action `json:"greedy"`
}

// PolicyRecorder is implemented by the solvers that can export their policy
type PolicyRecorder interface {
	Policy() *Policy
}

func newPolicy(solver string, states, actions int) *Policy {
	p := &Policy{
		Solver:       solver,
		States:       states,
		Actions:      actions,
		Values:       make([]float64, states),
		ActionValues: make([][]float64, states),
		Greedy:       make([]types.Action, states),
	}
	for s := 0; s < states; s++ {
		p.ActionValues[s] = make([]float64, actions)
	}
	return p
}

// Policy exports the Q table, values are the greedy action values
func (q *QLearningAgent) Policy() *Policy {
	p := newPolicy("qlearning", q.env.ObservationSpaceSize(), q.env.ActionSpaceSize())
	for s := 0; s < p.States; s++ {
		state := types.State(s)
		for a := 0; a < p.Actions; a++ {
			p.ActionValues[s][a] = q.qTable.Get(state, types.Action(a))
		}
		p.Values[s], p.Greedy[s] = q.BestValueAndAction(state)
	}
	return p
}

// Policy exports the state values and the one step backups of every pair
func (v *ValueIterationAgent) Policy() *Policy {
	p := newPolicy("valueiter", v.env.ObservationSpaceSize(), v.env.ActionSpaceSize())
	for s := 0; s < p.States; s++ {
		state := types.State(s)
		for a := 0; a < p.Actions; a++ {
			p.ActionValues[s][a] = v.ActionValue(state, types.Action(a))
		}
		p.Values[s] = v.values.Get(state)
		p.Greedy[s] = v.SelectAction(state)
	}
	return p
}

// Validate checks that the tables match the declared sizes
func (p *Policy) Validate() error {
	if len(p.Values) != p.States || len(p.Greedy) != p.States || len(p.ActionValues) != p.States {
		return fmt.Errorf("policy of %d states has %d values, %d greedy actions and %d action value rows", p.States, len(p.Values), len(p.Greedy), len(p.ActionValues))
	}
	for s, row := range p.ActionValues {
		if len(row) != p.Actions {
			return fmt.Errorf("state %d has %d action values, expected %d", s, len(row), p.Actions)
		}
	}
	return nil
}

// Write stores the policy as JSON
func (p *Policy) Write(filePath string) error {
	bs, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, bs, 0644)
}

// ReadPolicy reads a policy stored with Write
func ReadPolicy(filePath string) (*Policy, error) {
	bs, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	p := &Policy{}
	if err := json.Unmarshal(bs, p); err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var _ PolicyRecorder = &QLearningAgent{}
var _ PolicyRecorder = &ValueIterationAgent{}
