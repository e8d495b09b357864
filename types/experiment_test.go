package types

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"testing"
)

func scriptedConstructor(rewards ...float64) SolverConstructor {
	return func(Environment) (Solver, error) {
		return &scriptedSolver{rewards: rewards}, nil
	}
}

func nopEnvConstructor(seeds *[]uint64) EnvironmentConstructor {
	return func(seed uint64) (Environment, error) {
		if seeds != nil {
			*seeds = append(*seeds, seed)
		}
		return nopEnv{}, nil
	}
}

func TestComparisonRun(t *testing.T) {
	save := t.TempDir()
	out := new(bytes.Buffer)
	memory := NewMemorySink()
	convergence := DefaultConvergenceConfig()
	convergence.Sink = memory

	seeds := make([]uint64, 0)
	c := NewComparison(&ComparisonConfig{
		Runs:        2,
		Seed:        10,
		RecordPath:  save,
		Convergence: convergence,
		Output:      out,
	})

	curves := make([][]DataSet, 0)
	c.AddAnalysis("Rewards", NewRewardCurve(), func(run int, names []string, ds []DataSet) {
		curves = append(curves, ds)
	})
	c.AddAnalysis("Iterations", NewIterationsToSolve(), IterationsPrinter(out))
	c.AddExperiment(NewExperiment("fast", scriptedConstructor(1), nopEnvConstructor(&seeds)))
	c.AddExperiment(NewExperiment("slow", scriptedConstructor(0, 0.5, 0.9), nopEnvConstructor(nil)))

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(curves) != 2 {
		t.Fatalf("expected one comparison per run, got %d", len(curves))
	}
	fast := curves[0][0].([]float64)
	slow := curves[0][1].([]float64)
	if len(fast) != 1 || len(slow) != 3 || slow[1] != 0.5 {
		t.Errorf("unexpected curves %v %v", fast, slow)
	}
	// training and test environments of runs 1 and 2
	expectedSeeds := []uint64{10, 11, 12, 13}
	if len(seeds) != len(expectedSeeds) {
		t.Fatalf("unexpected seeds %v", seeds)
	}
	for i, s := range expectedSeeds {
		if seeds[i] != s {
			t.Errorf("unexpected seeds %v", seeds)
		}
	}

	if !strings.Contains(out.String(), "Run 2, experiment slow: solved in 3 iterations") {
		t.Errorf("missing iterations line in %q", out.String())
	}
	if points, ok := memory.Series("slow.reward"); !ok || len(points) != 6 {
		t.Errorf("expected prefixed series with 6 points, got %v", points)
	}
	if _, err := os.Stat(path.Join(save, "comparison_config.json")); err != nil {
		t.Errorf("config not recorded: %s", err)
	}
}

func TestComparisonNotConverged(t *testing.T) {
	out := new(bytes.Buffer)
	convergence := DefaultConvergenceConfig()
	convergence.MaxIterations = 3
	c := NewComparison(&ComparisonConfig{
		Runs:        1,
		Convergence: convergence,
	})
	c.AddAnalysis("Iterations", NewIterationsToSolve(), IterationsPrinter(out))
	c.AddExperiment(NewExperiment("stuck", scriptedConstructor(0), nopEnvConstructor(nil)))
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("hitting the cap should not abort the comparison: %s", err)
	}
	if !strings.Contains(out.String(), "stuck: not solved in 3 iterations") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestComparisonErrors(t *testing.T) {
	envErr := errors.New("cannot create environment")
	c := NewComparison(&ComparisonConfig{Runs: 1})
	c.AddExperiment(NewExperiment("broken", scriptedConstructor(1), func(uint64) (Environment, error) {
		return nil, envErr
	}))
	if err := c.Run(context.Background()); !errors.Is(err, envErr) {
		t.Errorf("expected the environment error, got %v", err)
	}

	if err := NewComparison(&ComparisonConfig{Runs: 0}).Run(context.Background()); err == nil {
		t.Errorf("expected zero runs to be rejected")
	}
}

func TestRewardCurvePlotter(t *testing.T) {
	plots := path.Join(t.TempDir(), "plots")
	out := new(bytes.Buffer)
	comparator := RewardCurvePlotter(plots, out)
	comparator(0, []string{"a", "b"}, []DataSet{[]float64{0, 0.5, 1}, []float64{1}})
	if _, err := os.Stat(path.Join(plots, "0_reward.png")); err != nil {
		t.Errorf("plot not written: %s", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected warnings %q", out.String())
	}
}

func TestRewardCurvePlotterReportsFailures(t *testing.T) {
	// a file where the plot directory should be
	blocked := path.Join(t.TempDir(), "plots")
	if err := os.WriteFile(blocked, []byte("x"), 0644); err != nil {
		t.Fatalf("writing file: %s", err)
	}
	out := new(bytes.Buffer)
	RewardCurvePlotter(blocked, out)(0, []string{"a"}, []DataSet{[]float64{0.5}})
	if !strings.Contains(out.String(), "warning") {
		t.Errorf("expected a warning, got %q", out.String())
	}

	// the directory exists but the figure cannot be written
	plots := t.TempDir()
	if err := os.Mkdir(path.Join(plots, "1_reward.png"), 0777); err != nil {
		t.Fatalf("creating directory: %s", err)
	}
	out.Reset()
	RewardCurvePlotter(plots, out)(1, []string{"a"}, []DataSet{[]float64{0.5}})
	if !strings.Contains(out.String(), "could not save") {
		t.Errorf("expected a save warning, got %q", out.String())
	}
}

func TestTrace(t *testing.T) {
	trace := NewTrace()
	if _, _, _, _, ok := trace.Last(); ok {
		t.Errorf("empty trace has no last step")
	}
	trace.Append(0, 1, 0, 2)
	trace.Append(2, 0, 1, 3)
	trace.Append(3, 0, 0.5, 2)
	if trace.Len() != 3 || trace.Return() != 1.5 {
		t.Errorf("unexpected trace length %d return %f", trace.Len(), trace.Return())
	}
	s, a, r, n, ok := trace.Get(1)
	if !ok || s != 2 || a != 0 || r != 1 || n != 3 {
		t.Errorf("unexpected step %d %d %f %d", s, a, r, n)
	}
	if _, _, _, _, ok := trace.Get(3); ok {
		t.Errorf("out of range step should not be found")
	}
	visits := trace.Visits()
	if visits[0] != 1 || visits[2] != 1 || visits[3] != 1 {
		t.Errorf("unexpected visits %v", visits)
	}
}

func TestTraceFile(t *testing.T) {
	filePath := path.Join(t.TempDir(), "traces.jsonl")
	first := NewTrace()
	first.Append(0, 2, 0, 1)
	first.Append(1, 1, 1, 5)
	second := NewTrace()
	second.Append(0, 0, 0, 0)

	if err := AppendTraces(filePath, first); err != nil {
		t.Fatalf("writing traces: %s", err)
	}
	if err := AppendTraces(filePath, second); err != nil {
		t.Fatalf("writing traces: %s", err)
	}
	traces, err := ReadTraces(filePath)
	if err != nil {
		t.Fatalf("reading traces: %s", err)
	}
	if len(traces) != 2 || traces[0].Len() != 2 || traces[1].Len() != 1 {
		t.Fatalf("unexpected traces %v", traces)
	}
	s, a, r, n, _ := traces[0].Last()
	if s != 1 || a != 1 || r != 1 || n != 5 {
		t.Errorf("unexpected last step %d %d %f %d", s, a, r, n)
	}
}
