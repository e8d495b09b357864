package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/zeu5/tabular-rl/util"
)

type experimentRunConfig struct {
	CurrentRun  int
	Seed        uint64
	Analyzers   []Analyzer
	Convergence *ConvergenceConfig
	Context     context.Context
	Output      io.Writer
}

// Experiment pairs a solver with the environment it learns on
type Experiment struct {
	Name        string
	solver      SolverConstructor
	environment EnvironmentConstructor
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, solver SolverConstructor, environment EnvironmentConstructor) *Experiment {
	return &Experiment{
		Name:        name,
		solver:      solver,
		environment: environment,
	}
}

// Run trains a fresh solver until convergence and hands the result to the analyzers.
// The training and the test environments are separate instances.
func (e *Experiment) Run(rConfig *experimentRunConfig) (*Result, error) {
	trainEnv, err := e.environment(rConfig.Seed)
	if err != nil {
		return nil, fmt.Errorf("creating training environment: %w", err)
	}
	testEnv, err := e.environment(rConfig.Seed + 1)
	if err != nil {
		return nil, fmt.Errorf("creating test environment: %w", err)
	}
	solver, err := e.solver(trainEnv)
	if err != nil {
		return nil, fmt.Errorf("creating solver: %w", err)
	}

	config := *rConfig.Convergence
	config.Sink = prefixedSink{prefix: e.Name, sink: sinkOrNop(config.Sink)}
	config.Output = rConfig.Output

	fmt.Fprintf(rConfig.Output, "Experiment: %s, Run: %d\n", e.Name, rConfig.CurrentRun+1)
	result, err := Converge(rConfig.Context, solver, testEnv, &config)
	if err != nil && !errors.Is(err, ErrNotConverged) {
		return result, err
	}
	for _, a := range rConfig.Analyzers {
		a.Analyze(rConfig.CurrentRun, e.Name, result)
	}
	return result, nil
}

// prefixedSink records name as "<prefix>.<name>" so that experiments
// sharing a sink do not mix their series
type prefixedSink struct {
	prefix string
	sink   MetricsSink
}

func (p prefixedSink) RecordScalar(name string, value float64, step int) error {
	return p.sink.RecordScalar(p.prefix+"."+name, value, step)
}

func sinkOrNop(s MetricsSink) MetricsSink {
	if s == nil {
		return NopSink{}
	}
	return s
}

// Generic Dataset that contains information after processing the results
type DataSet interface{}

// Analyzer compresses the information in a result to a DataSet
type Analyzer interface {
	// Run, experiment name, result
	Analyze(int, string, *Result)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs       int    // number of runs
	Seed       uint64 // seed of the first run, incremented by 2 for each run
	RecordPath string // path to store the results, nothing is stored if empty

	Convergence *ConvergenceConfig
	Output      io.Writer
}

// Comparison contains the different experiments to compare
// The results obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance
func NewComparison(config *ComparisonConfig) *Comparison {
	if config.Output == nil {
		config.Output = io.Discard
	}
	if config.Convergence == nil {
		config.Convergence = DefaultConvergenceConfig()
	}
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	if err := os.MkdirAll(cfg.RecordPath, 0777); err != nil {
		return err
	}

	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["seed"] = cfg.Seed
	out["test_episodes"] = cfg.Convergence.TestEpisodes
	out["threshold"] = cfg.Convergence.Threshold
	out["max_iterations"] = cfg.Convergence.MaxIterations

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return util.WriteToFile(path.Join(cfg.RecordPath, "comparison_config.json"), string(bs))
}

// Run the comparison. An environment error aborts the whole comparison.
func (c *Comparison) Run(ctx context.Context) error {
	if c.cConfig.Runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", c.cConfig.Runs)
	}
	if c.cConfig.RecordPath != "" {
		if err := c.recordConfig(); err != nil {
			return fmt.Errorf("recording comparison config: %w", err)
		}
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Fprintf(c.cConfig.Output, "Run %d\n", run+1)
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if _, err := e.Run(c.prepareRunConfig(ctx, run)); err != nil {
				return fmt.Errorf("experiment %s: %w", e.Name, err)
			}
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
		}
		for name, comp := range c.comparators {
			comp(run, names, datasets[name])
		}
	}
	return nil
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:  run,
		Seed:        c.cConfig.Seed + uint64(2*run),
		Analyzers:   make([]Analyzer, 0),
		Convergence: c.cConfig.Convergence,
		Context:     ctx,
		Output:      c.cConfig.Output,
	}
	for _, a := range c.analyzers {
		rCfg.Analyzers = append(rCfg.Analyzers, a)
	}
	return rCfg
}
