package types

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedSolver returns rewards[i] in every evaluation episode of iteration i+1
type scriptedSolver struct {
	rewards    []float64
	iteration  int
	collectErr error
	evalErr    error
	updates    int
}

var _ Solver = &scriptedSolver{}

func (s *scriptedSolver) Collect() error {
	s.iteration += 1
	return s.collectErr
}

func (s *scriptedSolver) Update() {
	s.updates += 1
}

func (s *scriptedSolver) PlayEpisode(Environment) (float64, error) {
	if s.evalErr != nil {
		return 0, s.evalErr
	}
	i := s.iteration - 1
	if i >= len(s.rewards) {
		i = len(s.rewards) - 1
	}
	return s.rewards[i], nil
}

type nopEnv struct{}

func (nopEnv) ObservationSpaceSize() int { return 1 }
func (nopEnv) ActionSpaceSize() int { return 1 }
func (nopEnv) Reset() (State, error) { return 0, nil }
func (nopEnv) Step(Action) (State, float64, bool, error) { return 0, 0, true, nil }
func (nopEnv) SampleAction() Action { return 0 }

type failingSink struct{}

func (failingSink) RecordScalar(string, float64, int) error {
	return errors.New("sink unavailable")
}

func TestConvergeStopsAboveThreshold(t *testing.T) {
	solver := &scriptedSolver{rewards: []float64{0, 0.5, 0.8, 0.85}}
	memory := NewMemorySink()
	out := new(bytes.Buffer)
	config := DefaultConvergenceConfig()
	config.Sink = memory
	config.Output = out

	result, err := Converge(context.Background(), solver, nopEnv{}, config)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	// 0.8 is not strictly above the threshold
	if !result.Converged || result.Iterations != 4 {
		t.Errorf("expected convergence at iteration 4, got %+v", result)
	}
	if solver.updates != 4 {
		t.Errorf("expected 4 updates, got %d", solver.updates)
	}
	if result.BestReward != 0.85 || result.LastReward != 0.85 || len(result.Rewards) != 4 {
		t.Errorf("unexpected result %+v", result)
	}

	points, ok := memory.Series("reward")
	if !ok || len(points) != 4 {
		t.Fatalf("expected 4 recorded rewards, got %v", points)
	}
	if points[0].Step != 1 || points[3].Step != 4 || points[1].Value != 0.5 {
		t.Errorf("unexpected points %v", points)
	}

	if !strings.Contains(out.String(), "Best reward updated 0.500 -> 0.800") {
		t.Errorf("missing best reward line in %q", out.String())
	}
	if !strings.Contains(out.String(), "Solved in 4 iterations!") {
		t.Errorf("missing solved line in %q", out.String())
	}
}

func TestConvergeMaxIterations(t *testing.T) {
	solver := &scriptedSolver{rewards: []float64{0.1}}
	config := DefaultConvergenceConfig()
	config.MaxIterations = 5

	result, err := Converge(context.Background(), solver, nopEnv{}, config)
	if !errors.Is(err, ErrNotConverged) {
		t.Fatalf("expected ErrNotConverged, got %v", err)
	}
	if result.Iterations != 5 || result.Converged {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestConvergePropagatesErrors(t *testing.T) {
	envErr := errors.New("environment crashed")

	_, err := Converge(context.Background(), &scriptedSolver{rewards: []float64{1}, collectErr: envErr}, nopEnv{}, DefaultConvergenceConfig())
	var phaseErr *PhaseError
	if !errors.Is(err, envErr) || !errors.As(err, &phaseErr) || phaseErr.Phase != Collecting {
		t.Errorf("expected a collecting error, got %v", err)
	}

	result, err := Converge(context.Background(), &scriptedSolver{rewards: []float64{1}, evalErr: envErr}, nopEnv{}, DefaultConvergenceConfig())
	if !errors.Is(err, envErr) || !errors.As(err, &phaseErr) || phaseErr.Phase != Evaluating || phaseErr.Iteration != 1 {
		t.Errorf("expected an evaluating error, got %v", err)
	}
	if result.Converged {
		t.Errorf("failed run should not be converged")
	}
}

func TestConvergeSinkFailureIsNotFatal(t *testing.T) {
	out := new(bytes.Buffer)
	config := DefaultConvergenceConfig()
	config.Sink = failingSink{}
	config.Output = out

	result, err := Converge(context.Background(), &scriptedSolver{rewards: []float64{0, 1}}, nopEnv{}, config)
	if err != nil {
		t.Fatalf("sink failure should not stop the loop: %s", err)
	}
	if !result.Converged || result.Iterations != 2 {
		t.Errorf("unexpected result %+v", result)
	}
	if strings.Count(out.String(), "warning") != 2 {
		t.Errorf("expected a warning per iteration, got %q", out.String())
	}
}

func TestConvergeContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Converge(ctx, &scriptedSolver{rewards: []float64{1}}, nopEnv{}, DefaultConvergenceConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result.Iterations != 0 {
		t.Errorf("no iteration should run, got %d", result.Iterations)
	}
}

func TestConvergeInvalidConfig(t *testing.T) {
	config := DefaultConvergenceConfig()
	config.TestEpisodes = 0
	if _, err := Converge(context.Background(), &scriptedSolver{rewards: []float64{1}}, nopEnv{}, config); err == nil {
		t.Errorf("expected zero test episodes to be rejected")
	}
	config = DefaultConvergenceConfig()
	config.MaxIterations = -1
	if err := config.Validate(); err == nil {
		t.Errorf("expected negative max iterations to be rejected")
	}
}

func TestPhaseString(t *testing.T) {
	phases := map[Phase]string{
		Collecting: "collecting",
		Updating:   "updating",
		Evaluating: "evaluating",
		Converged:  "converged",
	}
	for p, s := range phases {
		if p.String() != s {
			t.Errorf("expected %s, got %s", s, p.String())
		}
	}
}
