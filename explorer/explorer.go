// Package explorer browses a saved policy and the greedy traces played with it
package explorer

import (
	"fmt"

	"github.com/zeu5/tabular-rl/grid"
	"github.com/zeu5/tabular-rl/policies"
	"github.com/zeu5/tabular-rl/types"
)

type Explorer struct {
	PolicyFile string
	TracesFile string

	Policy *policies.Policy
	Traces []*types.Trace

	// optional, draws the policy on the lake
	lake *grid.FrozenLake
}

// NewExplorer reads the policy and, when tracesFile is not empty, the traces
func NewExplorer(policyFile string, tracesFile string, lake *grid.FrozenLake) (*Explorer, error) {
	e := &Explorer{
		PolicyFile: policyFile,
		TracesFile: tracesFile,
		Traces:     make([]*types.Trace, 0),
		lake:       lake,
	}

	var err error
	e.Policy, err = policies.ReadPolicy(policyFile)
	if err != nil {
		return nil, err
	}
	if lake != nil && lake.ObservationSpaceSize() != e.Policy.States {
		return nil, fmt.Errorf("policy has %d states but the lake has %d tiles", e.Policy.States, lake.ObservationSpaceSize())
	}
	if tracesFile != "" {
		e.Traces, err = types.ReadTraces(tracesFile)
		if err != nil {
			return nil, err
		}
		if err := e.checkTraces(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// checkTraces ensures every state of the traces exists in the policy
func (e *Explorer) checkTraces() error {
	for i, t := range e.Traces {
		for j := 0; j < t.Len(); j++ {
			s, a, _, ns, _ := t.Get(j)
			for _, state := range []types.State{s, ns} {
				if state < 0 || int(state) >= e.Policy.States {
					return fmt.Errorf("trace %d step %d has state %d, the policy has %d states", i+1, j+1, state, e.Policy.States)
				}
			}
			if a < 0 || int(a) >= e.Policy.Actions {
				return fmt.Errorf("trace %d step %d has action %d, the policy has %d actions", i+1, j+1, a, e.Policy.Actions)
			}
		}
	}
	return nil
}

func (e *Explorer) actionName(a types.Action) string {
	if e.lake != nil {
		return grid.ActionName(a)
	}
	return fmt.Sprintf("%d", a)
}

// renderState draws the lake with the agent on s, empty without a lake
func (e *Explorer) renderState(s types.State) string {
	if e.lake == nil {
		return ""
	}
	return e.lake.Render(e.lake.PositionOf(s))
}

func (e *Explorer) stateName(s types.State) string {
	if e.lake != nil {
		p := e.lake.PositionOf(s)
		return fmt.Sprintf("%d (row %d, col %d, %c)", s, p.Row, p.Col, e.lake.Tile(p))
	}
	return fmt.Sprintf("%d", s)
}

func (e *Explorer) getPolicy() string {
	out := fmt.Sprintf("Greedy policy of %s:\n", e.Policy.Solver)
	if e.lake != nil {
		return out + e.lake.RenderPolicy(e.Policy.Greedy)
	}
	for s, a := range e.Policy.Greedy {
		out += fmt.Sprintf("%d: %s (%f)\n", s, e.actionName(a), e.Policy.Values[s])
	}
	return out
}

func (e *Explorer) getActionValues(s types.State) string {
	if s < 0 || int(s) >= e.Policy.States {
		return "No such state in the policy\n"
	}
	out := fmt.Sprintf("State %s, value %f\n", e.stateName(s), e.Policy.Values[s])
	for a, v := range e.Policy.ActionValues[s] {
		marker := ""
		if types.Action(a) == e.Policy.Greedy[s] {
			marker = " *"
		}
		out += fmt.Sprintf("%s: %f%s\n", e.actionName(types.Action(a)), v, marker)
	}
	return out
}
