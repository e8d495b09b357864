package types

// State of a finite MDP, an index in [0, ObservationSpaceSize())
type State int

// Action of a finite MDP, an index in [0, ActionSpaceSize())
type Action int

// Environment is the discrete simulator the solvers interact with.
// Errors returned by Reset or Step are not handled by the solvers,
// they propagate to the caller of the convergence loop.
type Environment interface {
	// Number of states
	ObservationSpaceSize() int
	// Number of actions
	ActionSpaceSize() int
	// Reset called at the end of each episode, returns the initial state
	Reset() (State, error)
	// Step applies the action and returns (nextState, reward, done)
	Step(Action) (State, float64, bool, error)
	// SampleAction picks an action uniformly at random
	SampleAction() Action
}

// EnvironmentConstructor creates a fresh environment instance for the given seed.
// Solvers use one instance for training and a separate one for evaluation.
type EnvironmentConstructor func(seed uint64) (Environment, error)

// StateValuer exposes the current value estimate of a state
type StateValuer interface {
	StateValue(State) float64
}
