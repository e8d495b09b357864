// Package grid implements frozen lake grid environments.
//
// The agent starts on S and walks on frozen tiles F until it falls into a
// hole H or reaches the goal G, which is the only tile giving reward 1.
// On a slippery lake the agent moves in the intended direction only one
// time out of three, otherwise it slips to one of the two perpendicular
// directions.
package grid

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeu5/tabular-rl/types"
)

const (
	Left types.Action = iota
	Down
	Right
	Up
)

const numActions = 4

var actionNames = map[types.Action]string{
	Left:  "left",
	Down:  "down",
	Right: "right",
	Up:    "up",
}

var actionArrows = map[types.Action]string{
	Left:  "<",
	Down:  "v",
	Right: ">",
	Up:    "^",
}

// ActionName returns the direction of a
func ActionName(a types.Action) string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", a)
}

var ErrEpisodeOver = errors.New("episode is over, reset the environment")

type Position struct {
	Row int
	Col int
}

// Config of a frozen lake
type Config struct {
	// name of one of the predefined maps, ignored if Rows is set
	Map  string   `yaml:"map"`
	Rows []string `yaml:"rows"`
	// moves succeed one time out of three when slippery
	Slippery bool `yaml:"slippery"`
	// episodes end after MaxSteps steps, 0 for no limit
	MaxSteps int `yaml:"max_steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Map:      "4x4",
		Slippery: true,
		MaxSteps: 100,
	}
}

func (c *Config) desc() ([]string, error) {
	if len(c.Rows) > 0 {
		return c.Rows, nil
	}
	rows, ok := Maps[c.Map]
	if !ok {
		return nil, fmt.Errorf("unknown map %q", c.Map)
	}
	return rows, nil
}

// Validate ensures that the map is well formed
func (c *Config) Validate() error {
	if c.MaxSteps < 0 {
		return fmt.Errorf("max steps cannot be negative, got %d", c.MaxSteps)
	}
	desc, err := c.desc()
	if err != nil {
		return err
	}
	_, err = parseMap(desc)
	return err
}

type lakeMap struct {
	tiles [][]byte
	rows  int
	cols  int
	start Position
}

func parseMap(desc []string) (*lakeMap, error) {
	if len(desc) == 0 || len(desc[0]) == 0 {
		return nil, errors.New("empty map")
	}
	m := &lakeMap{
		tiles: make([][]byte, len(desc)),
		rows:  len(desc),
		cols:  len(desc[0]),
	}
	starts, goals := 0, 0
	for i, row := range desc {
		if len(row) != m.cols {
			return nil, fmt.Errorf("row %d has %d tiles, expected %d", i, len(row), m.cols)
		}
		m.tiles[i] = []byte(row)
		for j := 0; j < len(row); j++ {
			switch row[j] {
			case 'S':
				starts += 1
				m.start = Position{Row: i, Col: j}
			case 'G':
				goals += 1
			case 'F', 'H':
			default:
				return nil, fmt.Errorf("unknown tile %q at (%d, %d)", row[j], i, j)
			}
		}
	}
	if starts != 1 {
		return nil, fmt.Errorf("map needs exactly one start tile, found %d", starts)
	}
	if goals == 0 {
		return nil, errors.New("map has no goal tile")
	}
	return m, nil
}

// FrozenLake is a grid environment, states are row*cols+col
type FrozenLake struct {
	lake     *lakeMap
	pos      Position
	slippery bool
	maxSteps int
	steps    int
	done     bool

	rand *rand.Rand
	slip distuv.Categorical
}

var _ types.Environment = &FrozenLake{}

// NewFrozenLake creates the lake positioned on the start tile
func NewFrozenLake(config *Config, seed uint64) (*FrozenLake, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	desc, _ := config.desc()
	lake, _ := parseMap(desc)

	source := rand.NewSource(seed)
	return &FrozenLake{
		lake:     lake,
		pos:      lake.start,
		slippery: config.Slippery,
		maxSteps: config.MaxSteps,
		rand:     rand.New(source),
		// turn left, go straight, turn right
		slip: distuv.NewCategorical([]float64{1, 1, 1}, source),
	}, nil
}

// Constructor returns an EnvironmentConstructor creating lakes from config
func Constructor(config *Config) types.EnvironmentConstructor {
	return func(seed uint64) (types.Environment, error) {
		lake, err := NewFrozenLake(config, seed)
		if err != nil {
			return nil, err
		}
		return lake, nil
	}
}

func (f *FrozenLake) ObservationSpaceSize() int {
	return f.lake.rows * f.lake.cols
}

func (f *FrozenLake) ActionSpaceSize() int {
	return numActions
}

func (f *FrozenLake) Reset() (types.State, error) {
	f.pos = f.lake.start
	f.steps = 0
	f.done = false
	return f.StateOf(f.pos), nil
}

func (f *FrozenLake) SampleAction() types.Action {
	return types.Action(f.rand.Intn(numActions))
}

func (f *FrozenLake) Step(action types.Action) (types.State, float64, bool, error) {
	if action < 0 || int(action) >= numActions {
		return 0, 0, false, fmt.Errorf("invalid action %d", action)
	}
	if f.done {
		return 0, 0, false, ErrEpisodeOver
	}

	direction := action
	if f.slippery {
		turn := int(f.slip.Rand()) - 1
		direction = types.Action((int(action) + turn + numActions) % numActions)
	}
	f.pos = f.move(f.pos, direction)
	f.steps += 1

	reward := 0.0
	switch f.Tile(f.pos) {
	case 'G':
		reward = 1.0
		f.done = true
	case 'H':
		f.done = true
	}
	if f.maxSteps > 0 && f.steps >= f.maxSteps {
		f.done = true
	}
	return f.StateOf(f.pos), reward, f.done, nil
}

// move walks one tile in direction, walls keep the agent in place
func (f *FrozenLake) move(p Position, direction types.Action) Position {
	switch direction {
	case Left:
		p.Col = max(p.Col-1, 0)
	case Down:
		p.Row = min(p.Row+1, f.lake.rows-1)
	case Right:
		p.Col = min(p.Col+1, f.lake.cols-1)
	case Up:
		p.Row = max(p.Row-1, 0)
	}
	return p
}

func (f *FrozenLake) Dims() (int, int) {
	return f.lake.rows, f.lake.cols
}

func (f *FrozenLake) StateOf(p Position) types.State {
	return types.State(p.Row*f.lake.cols + p.Col)
}

func (f *FrozenLake) PositionOf(s types.State) Position {
	return Position{Row: int(s) / f.lake.cols, Col: int(s) % f.lake.cols}
}

func (f *FrozenLake) Tile(p Position) byte {
	return f.lake.tiles[p.Row][p.Col]
}

// String renders the lake with the agent marked by brackets
func (f *FrozenLake) String() string {
	return f.Render(f.pos)
}

// Render draws the lake with the tile at p marked by brackets
func (f *FrozenLake) Render(p Position) string {
	var b strings.Builder
	for i := 0; i < f.lake.rows; i++ {
		for j := 0; j < f.lake.cols; j++ {
			tile := string(f.lake.tiles[i][j])
			if p.Row == i && p.Col == j {
				tile = "[" + tile + "]"
			} else {
				tile = " " + tile + " "
			}
			b.WriteString(tile)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPolicy draws the greedy action of every frozen tile as an arrow,
// holes and the goal are drawn as tiles
func (f *FrozenLake) RenderPolicy(greedy []types.Action) string {
	var b strings.Builder
	for i := 0; i < f.lake.rows; i++ {
		for j := 0; j < f.lake.cols; j++ {
			p := Position{Row: i, Col: j}
			tile := f.Tile(p)
			s := int(f.StateOf(p))
			switch {
			case tile == 'H' || tile == 'G':
				b.WriteByte(tile)
			case s < len(greedy):
				b.WriteString(actionArrows[greedy[s]])
			default:
				b.WriteString("?")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
