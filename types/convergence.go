package types

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"
)

// ErrNotConverged is returned when the iteration cap is hit before the
// reward threshold is exceeded
var ErrNotConverged = errors.New("reward threshold not reached")

// Solver is a tabular agent driven by the convergence loop
type Solver interface {
	// Collect gathers new experience from the training environment
	Collect() error
	// Update applies the value update on the experience gathered so far
	Update()
	// PlayEpisode plays one greedy episode on env and returns its undiscounted return
	PlayEpisode(env Environment) (float64, error)
}

// Phase of the convergence loop
type Phase int

const (
	Collecting Phase = iota
	Updating
	Evaluating
	Converged
)

func (p Phase) String() string {
	switch p {
	case Collecting:
		return "collecting"
	case Updating:
		return "updating"
	case Evaluating:
		return "evaluating"
	default:
		return "converged"
	}
}

// ConvergenceConfig contains the parameters of the convergence loop
type ConvergenceConfig struct {
	TestEpisodes int     `yaml:"test_episodes"`
	Threshold    float64 `yaml:"threshold"`
	// 0 means no cap, the loop runs until the threshold is exceeded
	MaxIterations int `yaml:"max_iterations"`

	// optional, values are recorded as "reward" once per iteration
	Sink MetricsSink `yaml:"-"`
	// optional, progress lines are printed here
	Output io.Writer `yaml:"-"`
}

// DefaultConvergenceConfig returns the reference tuning
func DefaultConvergenceConfig() *ConvergenceConfig {
	return &ConvergenceConfig{
		TestEpisodes:  20,
		Threshold:     0.80,
		MaxIterations: 0,
	}
}

func (c *ConvergenceConfig) Validate() error {
	if c.TestEpisodes <= 0 {
		return fmt.Errorf("test episodes must be positive, got %d", c.TestEpisodes)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations cannot be negative, got %d", c.MaxIterations)
	}
	return nil
}

// Result of a convergence run
type Result struct {
	Iterations int
	BestReward float64
	LastReward float64
	// average evaluation return of every iteration
	Rewards   []float64
	Converged bool
}

// PhaseError wraps an error raised by the environment during a phase of the loop
type PhaseError struct {
	Phase     Phase
	Iteration int
	Err       error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("iteration %d, %s: %s", e.Iteration, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Converge alternates collection, update and evaluation on testEnv until the
// average evaluation return exceeds the threshold.
// Environment errors abort the loop. The context is checked between iterations.
func Converge(ctx context.Context, solver Solver, testEnv Environment, config *ConvergenceConfig) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	sink := config.Sink
	if sink == nil {
		sink = NopSink{}
	}
	out := config.Output
	if out == nil {
		out = io.Discard
	}

	result := &Result{
		Rewards: make([]float64, 0),
	}
	returns := make([]float64, config.TestEpisodes)
	phase := Collecting

	for phase != Converged {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		if config.MaxIterations > 0 && result.Iterations >= config.MaxIterations {
			return result, fmt.Errorf("%w after %d iterations (best %.3f)", ErrNotConverged, result.Iterations, result.BestReward)
		}
		result.Iterations += 1

		// COLLECTING
		if err := solver.Collect(); err != nil {
			return result, &PhaseError{Phase: Collecting, Iteration: result.Iterations, Err: err}
		}

		// UPDATING
		phase = Updating
		solver.Update()

		// EVALUATING
		phase = Evaluating
		for i := 0; i < config.TestEpisodes; i++ {
			r, err := solver.PlayEpisode(testEnv)
			if err != nil {
				return result, &PhaseError{Phase: Evaluating, Iteration: result.Iterations, Err: err}
			}
			returns[i] = r
		}
		reward := stat.Mean(returns, nil)
		result.LastReward = reward
		result.Rewards = append(result.Rewards, reward)

		if err := sink.RecordScalar("reward", reward, result.Iterations); err != nil {
			fmt.Fprintf(out, "warning: could not record reward: %s\n", err)
		}

		if reward > result.BestReward {
			fmt.Fprintf(out, "Best reward updated %.3f -> %.3f\n", result.BestReward, reward)
			result.BestReward = reward
		}
		if reward > config.Threshold {
			fmt.Fprintf(out, "Solved in %d iterations!\n", result.Iterations)
			phase = Converged
			result.Converged = true
		} else {
			phase = Collecting
		}
	}
	return result, nil
}

// SolverConstructor creates a solver that trains on env
type SolverConstructor func(env Environment) (Solver, error)
