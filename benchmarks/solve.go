package benchmarks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/tabular-rl/grid"
	"github.com/zeu5/tabular-rl/policies"
	"github.com/zeu5/tabular-rl/types"
)

// interruptContext is cancelled on SIGINT or when the returned function is called
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		cancel()
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		close(doneCh)
	}
}

// runSolver trains the solver built by ctor on a frozen lake until it converges.
// The state values of the trained solver are drawn in the save folder.
func runSolver(ctx context.Context, name string, config *FileConfig, ctor func(*policies.Config) types.SolverConstructor, rec *recorder, out io.Writer) (*types.Result, error) {

	trainEnv, err := grid.NewFrozenLake(&config.Lake, config.Seed)
	if err != nil {
		return nil, fmt.Errorf("creating training environment: %w", err)
	}
	testEnv, err := grid.NewFrozenLake(&config.Lake, config.Seed+1)
	if err != nil {
		return nil, fmt.Errorf("creating test environment: %w", err)
	}
	solver, err := ctor(&config.Agent)(trainEnv)
	if err != nil {
		return nil, err
	}

	convergence := config.Convergence
	convergence.Sink = rec.Sink
	convergence.Output = out

	fmt.Fprintf(out, "Experiment: %s\n", name)
	result, err := types.Converge(ctx, solver, testEnv, &convergence)
	if err != nil && !errors.Is(err, types.ErrNotConverged) {
		return result, fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(out, "%s: %d iterations, best reward %.3f, last reward %.3f\n", name, result.Iterations, result.BestReward, result.LastReward)

	if config.Save != "" {
		if saveErr := saveSolver(name, config, solver, trainEnv, testEnv, out); saveErr != nil {
			return result, saveErr
		}
	}
	return result, err
}

// saveSolver draws the state values, stores the policy and plays greedy
// traces to browse with the explore command
func saveSolver(name string, config *FileConfig, solver types.Solver, trainEnv, testEnv *grid.FrozenLake, out io.Writer) error {
	if valuer, ok := solver.(types.StateValuer); ok {
		figPath := path.Join(config.Save, name+"_values.png")
		if err := grid.SaveValueHeatmap(figPath, trainEnv, valuer); err != nil {
			fmt.Fprintf(out, "warning: could not draw values: %s\n", err)
		}
	}
	if pr, ok := solver.(policies.PolicyRecorder); ok {
		policy := pr.Policy()
		if err := policy.Write(path.Join(config.Save, name+"_policy.json")); err != nil {
			return fmt.Errorf("saving policy: %w", err)
		}
		fmt.Fprintf(out, "Greedy policy:\n%s", trainEnv.RenderPolicy(policy.Greedy))
	}
	player, ok := solver.(types.TracePlayer)
	if !ok || config.Traces == 0 {
		return nil
	}
	played := make([]*types.Trace, 0, config.Traces)
	for i := 0; i < config.Traces; i++ {
		trace, err := player.PlayEpisodeTrace(testEnv)
		if err != nil {
			return fmt.Errorf("playing trace: %w", err)
		}
		played = append(played, trace)
	}
	return types.AppendTraces(path.Join(config.Save, name+"_traces.jsonl"), played...)
}

// solverCommand runs a single solver with the sinks and profiles set up by the flags
func solverCommand(use, short string, ctor func(*policies.Config) types.SolverConstructor) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
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

			ctx, done := interruptContext()
			defer done()

			rec, err := newRecorder(ctx, config, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rec.Close()

			stopProfiling := startProfiling(config.Save)
			defer stopProfiling()

			_, err = runSolver(ctx, use, config, ctor, rec, cmd.OutOrStdout())
			return err
		},
	}
}

func QLearningCommand() *cobra.Command {
	return solverCommand("qlearning", "Learn action values from single random steps", policies.QLearningConstructor)
}

func ValueIterationCommand() *cobra.Command {
	return solverCommand("valueiter", "Run value iteration on the transition model estimated from random play", policies.ValueIterationConstructor)
}
