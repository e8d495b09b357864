package benchmarks

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/explorer"
	"github.com/zeu5/tabular-rl/grid"
)

// Example invocation - ./tabular-rl explore results/valueiter_policy.json results/valueiter_traces.jsonl
func ExploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [policy_output] [trace_output]",
		Short: "Explore a saved policy and the greedy traces played with it",
		Long:  "Explore a saved policy and the greedy traces played with it. The lake flags are used to draw the policy.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			lake, err := grid.NewFrozenLake(&config.Lake, config.Seed)
			if err != nil {
				return err
			}
			tracesFile := ""
			if len(args) == 2 {
				tracesFile = args[1]
			}
			exp, err := explorer.NewExplorer(args[0], tracesFile, lake)
			if err != nil {
				return err
			}

			exp.Interact(cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}
}
