package policies

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/zeu5/tabular-rl/types"
)

type transition struct {
	state     types.State
	action    types.Action
	nextState types.State
}

// TransitionStats is the empirical model of the environment: how many times
// each next state followed a (state, action) pair and the last reward
// observed on each transition.
type TransitionStats struct {
	counts  map[stateAction]map[types.State]int
	rewards map[transition]float64
}

func NewTransitionStats() *TransitionStats {
	return &TransitionStats{
		counts:  make(map[stateAction]map[types.State]int),
		rewards: make(map[transition]float64),
	}
}

// Record counts one more occurrence of nextState after (state, action)
// and overwrites the reward of that transition
func (t *TransitionStats) Record(state types.State, action types.Action, reward float64, nextState types.State) {
	key := stateAction{state, action}
	if _, ok := t.counts[key]; !ok {
		t.counts[key] = make(map[types.State]int)
	}
	t.counts[key][nextState] += 1
	t.rewards[transition{state, action, nextState}] = reward
}

// Counts returns a copy of the outcome counts of (state, action)
func (t *TransitionStats) Counts(state types.State, action types.Action) map[types.State]int {
	counts, ok := t.counts[stateAction{state, action}]
	if !ok {
		return map[types.State]int{}
	}
	return maps.Clone(counts)
}

// Total is the number of times (state, action) was observed
func (t *TransitionStats) Total(state types.State, action types.Action) int {
	total := 0
	for _, c := range t.counts[stateAction{state, action}] {
		total += c
	}
	return total
}

// Outcomes lists the observed next states of (state, action) in ascending order
func (t *TransitionStats) Outcomes(state types.State, action types.Action) []types.State {
	outcomes := maps.Keys(t.counts[stateAction{state, action}])
	slices.Sort(outcomes)
	return outcomes
}

// Reward is the last reward seen on the transition, 0 if never seen
func (t *TransitionStats) Reward(state types.State, action types.Action, nextState types.State) float64 {
	return t.rewards[transition{state, action, nextState}]
}
