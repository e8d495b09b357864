package types

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/zeu5/tabular-rl/util"
)

// Transition observed in the environment
type Transition struct {
	State     State   `json:"state"`
	Action    Action  `json:"action"`
	Reward    float64 `json:"reward"`
	NextState State   `json:"next_state"`
}

// TracePlayer plays greedy episodes and returns what happened
type TracePlayer interface {
	PlayEpisodeTrace(env Environment) (*Trace, error)
}

// Trace of an episode as tuples (state, action, reward, nextState)
type Trace struct {
	states     []State
	actions    []Action
	rewards    []float64
	nextStates []State
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]State, 0),
		actions:    make([]Action, 0),
		rewards:    make([]float64, 0),
		nextStates: make([]State, 0),
	}
}

func (t *Trace) Append(state State, action Action, reward float64, nextState State) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.rewards = append(t.rewards, reward)
	t.nextStates = append(t.nextStates, nextState)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, Action, float64, State, bool) {
	if i < 0 || i >= len(t.states) {
		return 0, 0, 0, 0, false
	}
	return t.states[i], t.actions[i], t.rewards[i], t.nextStates[i], true
}

func (t *Trace) Last() (State, Action, float64, State, bool) {
	return t.Get(len(t.states) - 1)
}

// Return is the undiscounted sum of the rewards in the trace
func (t *Trace) Return() float64 {
	total := 0.0
	for _, r := range t.rewards {
		total += r
	}
	return total
}

// Visits counts how many times each state was left in the trace
func (t *Trace) Visits() map[State]int {
	visits := make(map[State]int)
	for _, s := range t.states {
		visits[s] += 1
	}
	return visits
}

// Steps returns the trace as a list of transitions
func (t *Trace) Steps() []Transition {
	steps := make([]Transition, t.Len())
	for i := range steps {
		steps[i] = Transition{
			State:     t.states[i],
			Action:    t.actions[i],
			Reward:    t.rewards[i],
			NextState: t.nextStates[i],
		}
	}
	return steps
}

func NewTraceFromSteps(steps []Transition) *Trace {
	t := NewTrace()
	for _, s := range steps {
		t.Append(s.State, s.Action, s.Reward, s.NextState)
	}
	return t
}

// AppendTraces writes each trace as a JSON list of transitions on its own line
func AppendTraces(filePath string, traces ...*Trace) error {
	lines := make([]string, len(traces))
	for i, t := range traces {
		bs, err := json.Marshal(t.Steps())
		if err != nil {
			return err
		}
		lines[i] = string(bs)
	}
	return util.AppendToFile(filePath, lines...)
}

// ReadTraces reads the traces written by AppendTraces
func ReadTraces(filePath string) ([]*Trace, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	traces := make([]*Trace, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		steps := make([]Transition, 0)
		if err := json.Unmarshal(scanner.Bytes(), &steps); err != nil {
			return traces, fmt.Errorf("failed to read traces: %w", err)
		}
		traces = append(traces, NewTraceFromSteps(steps))
	}
	return traces, scanner.Err()
}
