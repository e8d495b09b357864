package policies

import (
	"fmt"
	"math"

	"github.com/zeu5/tabular-rl/types"
)

// ValueIterationAgent estimates the transition model from random play and
// runs value iteration over it
type ValueIterationAgent struct {
	env         types.Environment
	state       types.State
	stats       *TransitionStats
	values      *ValueTable
	discount    float64
	randomSteps int
}

var _ types.Solver = &ValueIterationAgent{}
var _ types.StateValuer = &ValueIterationAgent{}

// NewValueIterationAgent resets env and uses it as the training environment
func NewValueIterationAgent(env types.Environment, config *Config) (*ValueIterationAgent, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	state, err := env.Reset()
	if err != nil {
		return nil, fmt.Errorf("resetting training environment: %w", err)
	}
	return &ValueIterationAgent{
		env:         env,
		state:       state,
		stats:       NewTransitionStats(),
		values:      NewValueTable(),
		discount:    config.Discount,
		randomSteps: config.RandomSteps,
	}, nil
}

// PlayNRandomSteps plays count random actions, recording every transition
func (v *ValueIterationAgent) PlayNRandomSteps(count int) error {
	for i := 0; i < count; i++ {
		action := v.env.SampleAction()
		newState, reward, done, err := v.env.Step(action)
		if err != nil {
			return fmt.Errorf("stepping training environment: %w", err)
		}
		v.stats.Record(v.state, action, reward, newState)
		if done {
			if v.state, err = v.env.Reset(); err != nil {
				return fmt.Errorf("resetting training environment: %w", err)
			}
		} else {
			v.state = newState
		}
	}
	return nil
}

// Record adds an observed transition to the model
func (v *ValueIterationAgent) Record(state types.State, action types.Action, reward float64, nextState types.State) {
	v.stats.Record(state, action, reward, nextState)
}

// ActionValue is the one step Bellman backup of (state, action) weighted by
// the observed outcome frequencies. Unseen pairs have value 0.
func (v *ValueIterationAgent) ActionValue(state types.State, action types.Action) float64 {
	total := v.stats.Total(state, action)
	if total == 0 {
		return 0
	}
	counts := v.stats.Counts(state, action)
	actionValue := 0.0
	for _, tgtState := range v.stats.Outcomes(state, action) {
		reward := v.stats.Reward(state, action, tgtState)
		p := float64(counts[tgtState]) / float64(total)
		actionValue += p * (reward + v.discount*v.values.Get(tgtState))
	}
	return actionValue
}

// SelectAction returns the action with the largest action value,
// ties are broken towards the lowest action index
func (v *ValueIterationAgent) SelectAction(state types.State) types.Action {
	bestAction := types.Action(0)
	bestValue := v.ActionValue(state, 0)
	for a := 1; a < v.env.ActionSpaceSize(); a++ {
		action := types.Action(a)
		if val := v.ActionValue(state, action); val > bestValue {
			bestAction = action
			bestValue = val
		}
	}
	return bestAction
}

// ValueIteration sweeps all the states once, updating values in place:
// states later in the sweep see the values already updated in it.
// Returns the largest absolute change.
func (v *ValueIterationAgent) ValueIteration() float64 {
	delta := 0.0
	for s := 0; s < v.env.ObservationSpaceSize(); s++ {
		state := types.State(s)
		best := v.ActionValue(state, 0)
		for a := 1; a < v.env.ActionSpaceSize(); a++ {
			best = math.Max(best, v.ActionValue(state, types.Action(a)))
		}
		delta = math.Max(delta, math.Abs(best-v.values.Get(state)))
		v.values.Set(state, best)
	}
	return delta
}

// Collect plays the configured number of random steps
func (v *ValueIterationAgent) Collect() error {
	return v.PlayNRandomSteps(v.randomSteps)
}

// Update runs one value iteration sweep
func (v *ValueIterationAgent) Update() {
	v.ValueIteration()
}

// PlayEpisode plays one greedy episode on env. Transitions observed while
// playing are added to the model.
func (v *ValueIterationAgent) PlayEpisode(env types.Environment) (float64, error) {
	trace, err := v.PlayEpisodeTrace(env)
	if err != nil {
		return 0, err
	}
	return trace.Return(), nil
}

// PlayEpisodeTrace plays one greedy episode on env and returns the trace
func (v *ValueIterationAgent) PlayEpisodeTrace(env types.Environment) (*types.Trace, error) {
	trace := types.NewTrace()
	state, err := env.Reset()
	if err != nil {
		return trace, fmt.Errorf("resetting test environment: %w", err)
	}
	for {
		action := v.SelectAction(state)
		newState, reward, done, err := env.Step(action)
		if err != nil {
			return trace, fmt.Errorf("stepping test environment: %w", err)
		}
		v.stats.Record(state, action, reward, newState)
		trace.Append(state, action, reward, newState)
		if done {
			return trace, nil
		}
		state = newState
	}
}

func (v *ValueIterationAgent) StateValue(state types.State) float64 {
	return v.values.Get(state)
}

func (v *ValueIterationAgent) Values() *ValueTable {
	return v.values
}

func (v *ValueIterationAgent) Stats() *TransitionStats {
	return v.stats
}

func (v *ValueIterationAgent) State() types.State {
	return v.state
}

// ValueIterationConstructor builds value iteration agents for experiments
func ValueIterationConstructor(config *Config) types.SolverConstructor {
	return func(env types.Environment) (types.Solver, error) {
		agent, err := NewValueIterationAgent(env, config)
		if err != nil {
			return nil, err
		}
		return agent, nil
	}
}
