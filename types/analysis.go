package types

import (
	"fmt"
	"io"
	"os"
	"path"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// RewardCurve collects the average evaluation return of every iteration
type RewardCurve struct {
	rewards []float64
}

var _ Analyzer = &RewardCurve{}

func NewRewardCurve() *RewardCurve {
	return &RewardCurve{rewards: make([]float64, 0)}
}

func (r *RewardCurve) Analyze(_ int, _ string, result *Result) {
	r.rewards = append(r.rewards, result.Rewards...)
}

func (r *RewardCurve) DataSet() DataSet {
	out := make([]float64, len(r.rewards))
	copy(out, r.rewards)
	return out
}

func (r *RewardCurve) Reset() {
	r.rewards = make([]float64, 0)
}

// RewardCurvePlotter draws the reward curves of all the experiments of a run.
// Failures are reported to out.
func RewardCurvePlotter(plotPath string, out io.Writer) Comparator {
	return func(run int, names []string, ds []DataSet) {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			fmt.Fprintf(out, "warning: could not create %s: %s\n", plotPath, err)
			return
		}
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Iteration"
		p.Y.Label.Text = "Average test reward"
		for i := 0; i < len(names); i++ {
			rewards := ds[i].([]float64)
			points := make(plotter.XYs, len(rewards))
			for j, v := range rewards {
				points[j] = plotter.XY{
					X: float64(j + 1),
					Y: v,
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				fmt.Fprintf(out, "warning: could not plot %s: %s\n", names[i], err)
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		figPath := path.Join(plotPath, strconv.Itoa(run)+"_reward.png")
		if err := p.Save(8*vg.Inch, 8*vg.Inch, figPath); err != nil {
			fmt.Fprintf(out, "warning: could not save %s: %s\n", figPath, err)
		}
	}
}

// IterationsToSolve records how many iterations the experiment needed
type IterationsToSolve struct {
	iterations int
	converged  bool
}

var _ Analyzer = &IterationsToSolve{}

// SolveStats is the DataSet of IterationsToSolve
type SolveStats struct {
	Iterations int
	Converged  bool
}

func NewIterationsToSolve() *IterationsToSolve {
	return &IterationsToSolve{}
}

func (it *IterationsToSolve) Analyze(_ int, _ string, result *Result) {
	it.iterations = result.Iterations
	it.converged = result.Converged
}

func (it *IterationsToSolve) DataSet() DataSet {
	return SolveStats{Iterations: it.iterations, Converged: it.converged}
}

func (it *IterationsToSolve) Reset() {
	it.iterations = 0
	it.converged = false
}

// IterationsPrinter prints the number of iterations of every experiment
func IterationsPrinter(out io.Writer) Comparator {
	return func(run int, names []string, ds []DataSet) {
		for i, name := range names {
			s := ds[i].(SolveStats)
			status := "solved"
			if !s.Converged {
				status = "not solved"
			}
			fmt.Fprintf(out, "Run %d, experiment %s: %s in %d iterations\n", run+1, name, status, s.Iterations)
		}
	}
}
