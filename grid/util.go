package grid

import (
	"errors"
	"fmt"

	"github.com/zeu5/tabular-rl/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ValueGrid lays the state values of a lake out on its tiles
type ValueGrid struct {
	Values [][]float64
	Height int
	Width  int
}

var _ plotter.GridXYZ = &ValueGrid{}

// NewValueGrid reads the value of every tile of lake from valuer
func NewValueGrid(lake *FrozenLake, valuer types.StateValuer) *ValueGrid {
	rows, cols := lake.Dims()
	g := &ValueGrid{
		Values: make([][]float64, rows),
		Height: rows,
		Width:  cols,
	}
	for i := 0; i < rows; i++ {
		g.Values[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			g.Values[i][j] = valuer.StateValue(lake.StateOf(Position{Row: i, Col: j}))
		}
	}
	return g
}

func (g *ValueGrid) Dims() (int, int) {
	return g.Width, g.Height
}

// Z flips the rows so that the first row of the lake is drawn on top
func (g *ValueGrid) Z(c, r int) float64 {
	return g.Values[g.Height-1-r][c]
}

func (g *ValueGrid) X(c int) float64 {
	return float64(c)
}

func (g *ValueGrid) Y(r int) float64 {
	return float64(r)
}

func (g *ValueGrid) Min() float64 {
	min := 0.0
	for _, row := range g.Values {
		for _, v := range row {
			if v < min {
				min = v
			}
		}
	}
	return min
}

func (g *ValueGrid) Max() float64 {
	max := 0.0
	for _, row := range g.Values {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// SaveValueHeatmap draws the state values of lake into figPath
func SaveValueHeatmap(figPath string, lake *FrozenLake, valuer types.StateValuer) error {
	g := NewValueGrid(lake, valuer)
	if g.Height < 2 || g.Width < 2 {
		return errors.New("heatmap needs at least two rows and two columns")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("State values %dx%d", g.Height, g.Width)
	heatMap := plotter.NewHeatMap(g, palette.Heat(20, 1))
	if g.Min() == g.Max() {
		heatMap.Min, heatMap.Max = g.Min(), g.Min()+1
	}
	p.Add(heatMap)
	return p.Save(4*vg.Inch, 4*vg.Inch, figPath)
}
