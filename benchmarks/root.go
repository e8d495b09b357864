package benchmarks

import "github.com/spf13/cobra"

var (
	configPath    string
	gamma         float64
	alpha         float64
	randomSteps   int
	testEpisodes  int
	threshold     float64
	maxIterations int
	seed          uint64
	saveFile      string
	runs          int
	traces        int
	lakeMap       string
	slippery      bool
	maxSteps      int
	redisAddr     string
	serveAddr     string
	cpuprofile    string
	memprofile    string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "tabular-rl",
		Short:         "Tabular Q-learning and model based value iteration on frozen lakes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file, explicit flags take precedence")
	flags.Float64Var(&gamma, "gamma", 0.9, "Discount factor")
	flags.Float64Var(&alpha, "alpha", 0.1, "Learning rate of Q-learning")
	flags.IntVar(&randomSteps, "random-steps", 100, "Random steps collected per iteration by value iteration")
	flags.IntVar(&testEpisodes, "test-episodes", 20, "Evaluation episodes per iteration")
	flags.Float64Var(&threshold, "threshold", 0.8, "Average evaluation reward to exceed")
	flags.IntVar(&maxIterations, "max-iterations", 0, "Stop after this many iterations, 0 for no limit")
	flags.Uint64Var(&seed, "seed", 0, "Seed of the environments")
	flags.StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	flags.IntVar(&runs, "runs", 1, "Number of experiment runs")
	flags.IntVar(&traces, "traces", 10, "Greedy traces recorded after training")
	flags.StringVar(&lakeMap, "map", "4x4", "Frozen lake map, 4x4 or 8x8")
	flags.BoolVar(&slippery, "slippery", true, "Moves succeed one time out of three")
	flags.IntVar(&maxSteps, "max-steps", 100, "Time limit of an episode")
	flags.StringVar(&redisAddr, "redis", "", "Also record the scalars to the redis server at this address")
	flags.StringVar(&serveAddr, "serve", "", "Serve the recorded scalars over HTTP at this address")
	flags.StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this file in the save folder")
	flags.StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file in the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(QLearningCommand())
	rootCommand.AddCommand(ValueIterationCommand())
	rootCommand.AddCommand(CompareCommand())
	rootCommand.AddCommand(ExploreCommand())
	return rootCommand
}
