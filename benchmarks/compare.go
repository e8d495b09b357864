package benchmarks

import (
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/grid"
	"github.com/zeu5/tabular-rl/policies"
	"github.com/zeu5/tabular-rl/types"
)

// Compare runs both solvers on the same lakes for config.Runs runs
func Compare(cmd *cobra.Command, config *FileConfig) error {
	out := cmd.OutOrStdout()
	ctx, done := interruptContext()
	defer done()

	rec, err := newRecorder(ctx, config, out)
	if err != nil {
		return err
	}
	defer rec.Close()

	stopProfiling := startProfiling(config.Save)
	defer stopProfiling()

	convergence := config.Convergence
	convergence.Sink = rec.Sink

	c := types.NewComparison(&types.ComparisonConfig{
		Runs:        config.Runs,
		Seed:        config.Seed,
		RecordPath:  config.Save,
		Convergence: &convergence,
		Output:      out,
	})
	c.AddAnalysis("Iterations", types.NewIterationsToSolve(), types.IterationsPrinter(out))
	if config.Save != "" {
		c.AddAnalysis("Rewards", types.NewRewardCurve(), types.RewardCurvePlotter(path.Join(config.Save, "plots"), out))
	}

	c.AddExperiment(types.NewExperiment(
		"qlearning",
		policies.QLearningConstructor(&config.Agent),
		grid.Constructor(&config.Lake),
	))
	c.AddExperiment(types.NewExperiment(
		"valueiter",
		policies.ValueIterationConstructor(&config.Agent),
		grid.Constructor(&config.Lake),
	))

	return c.Run(ctx)
}

func CompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare Q-learning and value iteration over several runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if config.Save != "" {
				if err := os.MkdirAll(config.Save, 0777); err != nil {
					return err
				}
			}
			return Compare(cmd, config)
		},
	}
}
