package policies

import (
	"errors"

	"github.com/zeu5/tabular-rl/types"
)

// toyEnv is a one step environment with two states and two actions.
// From state 0, action 1 reaches state 1 with reward 1, action 0 stays in 0
// with reward 0. Every step ends the episode.
// SampleAction alternates between the two actions starting with 0.
type toyEnv struct {
	counter int
	// returned by Step once failAt steps have been taken, if set
	failAt int
	steps  int
}

var _ types.Environment = &toyEnv{}

var errToy = errors.New("toy environment failure")

func (e *toyEnv) ObservationSpaceSize() int { return 2 }

func (e *toyEnv) ActionSpaceSize() int { return 2 }

func (e *toyEnv) Reset() (types.State, error) { return 0, nil }

func (e *toyEnv) SampleAction() types.Action {
	a := types.Action(e.counter % 2)
	e.counter += 1
	return a
}

func (e *toyEnv) Step(a types.Action) (types.State, float64, bool, error) {
	e.steps += 1
	if e.failAt > 0 && e.steps >= e.failAt {
		return 0, 0, false, errToy
	}
	if a == 1 {
		return 1, 1, true, nil
	}
	return 0, 0, true, nil
}
