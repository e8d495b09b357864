package policies

import (
	"fmt"

	"github.com/zeu5/tabular-rl/types"
)

// QLearningAgent learns action values from single random transitions
type QLearningAgent struct {
	env      types.Environment
	state    types.State
	qTable   *QTable
	alpha    float64
	discount float64

	// transitions collected and not yet used for an update
	pending []types.Transition
}

var _ types.Solver = &QLearningAgent{}
var _ types.StateValuer = &QLearningAgent{}

// NewQLearningAgent resets env and uses it as the training environment
func NewQLearningAgent(env types.Environment, config *Config) (*QLearningAgent, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	state, err := env.Reset()
	if err != nil {
		return nil, fmt.Errorf("resetting training environment: %w", err)
	}
	return &QLearningAgent{
		env:      env,
		state:    state,
		qTable:   NewQTable(),
		alpha:    config.LearningRate,
		discount: config.Discount,
		pending:  make([]types.Transition, 0, 1),
	}, nil
}

// SampleEnv plays one random action from the current state.
// The cursor moves to the next state, or to a fresh initial state when the
// episode ends.
func (q *QLearningAgent) SampleEnv() (types.Transition, error) {
	action := q.env.SampleAction()
	oldState := q.state
	newState, reward, done, err := q.env.Step(action)
	if err != nil {
		return types.Transition{}, fmt.Errorf("stepping training environment: %w", err)
	}
	if done {
		if q.state, err = q.env.Reset(); err != nil {
			return types.Transition{}, fmt.Errorf("resetting training environment: %w", err)
		}
	} else {
		q.state = newState
	}
	return types.Transition{State: oldState, Action: action, Reward: reward, NextState: newState}, nil
}

// BestValueAndAction returns the largest value among the actions of state,
// ties are broken towards the lowest action index
func (q *QLearningAgent) BestValueAndAction(state types.State) (float64, types.Action) {
	action, value := q.qTable.Max(state, q.env.ActionSpaceSize())
	return value, action
}

// ValueUpdate blends Q(s, a) towards r + discount * max_a' Q(nextS, a')
func (q *QLearningAgent) ValueUpdate(s types.State, a types.Action, r float64, nextS types.State) {
	bestV, _ := q.BestValueAndAction(nextS)
	newVal := r + q.discount*bestV
	oldVal := q.qTable.Get(s, a)
	q.qTable.Set(s, a, oldVal*(1-q.alpha)+newVal*q.alpha)
}

// Collect takes exactly one environment step
func (q *QLearningAgent) Collect() error {
	t, err := q.SampleEnv()
	if err != nil {
		return err
	}
	q.pending = append(q.pending, t)
	return nil
}

// Update applies a Bellman backup for every collected transition
func (q *QLearningAgent) Update() {
	for _, t := range q.pending {
		q.ValueUpdate(t.State, t.Action, t.Reward, t.NextState)
	}
	q.pending = q.pending[:0]
}

// PlayEpisode plays one greedy episode on env. The action values are not
// modified while playing.
func (q *QLearningAgent) PlayEpisode(env types.Environment) (float64, error) {
	trace, err := q.PlayEpisodeTrace(env)
	if err != nil {
		return 0, err
	}
	return trace.Return(), nil
}

// PlayEpisodeTrace plays one greedy episode on env and returns the trace
func (q *QLearningAgent) PlayEpisodeTrace(env types.Environment) (*types.Trace, error) {
	trace := types.NewTrace()
	state, err := env.Reset()
	if err != nil {
		return trace, fmt.Errorf("resetting test environment: %w", err)
	}
	for {
		_, action := q.BestValueAndAction(state)
		newState, reward, done, err := env.Step(action)
		if err != nil {
			return trace, fmt.Errorf("stepping test environment: %w", err)
		}
		trace.Append(state, action, reward, newState)
		if done {
			return trace, nil
		}
		state = newState
	}
}

// StateValue is the greedy value of state
func (q *QLearningAgent) StateValue(state types.State) float64 {
	v, _ := q.BestValueAndAction(state)
	return v
}

// QTable exposes the learnt action values
func (q *QLearningAgent) QTable() *QTable {
	return q.qTable
}

// State is the current cursor in the training environment
func (q *QLearningAgent) State() types.State {
	return q.state
}

// QLearningConstructor builds Q-learning agents for experiments
func QLearningConstructor(config *Config) types.SolverConstructor {
	return func(env types.Environment) (types.Solver, error) {
		agent, err := NewQLearningAgent(env, config)
		if err != nil {
			return nil, err
		}
		return agent, nil
	}
}
