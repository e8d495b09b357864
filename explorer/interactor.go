package explorer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zeu5/tabular-rl/types"
)

// Interact runs the main interactive loop until the user quits or in is exhausted
func (e *Explorer) Interact(in io.Reader, out io.Writer) {
	fmt.Fprintf(out, "%s", e.header())
	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(out, "%s", e.prompt())

		option, ok := readInt(reader, out)
		if !ok {
			return
		}
		if option < 0 {
			continue
		}
		fmt.Fprintln(out, "------------------------------------")
		switch option {
		case 1:
			fmt.Fprintf(out, "%s", e.getPolicy())
		case 2:
			fmt.Fprintf(out, "Enter the state (0-%d): ", e.Policy.States-1)
			state, ok := readInt(reader, out)
			if !ok {
				return
			}
			if state < 0 {
				continue
			}
			fmt.Fprintf(out, "%s", e.getActionValues(types.State(state)))
		case 3:
			if len(e.Traces) == 0 {
				fmt.Fprintln(out, "No traces loaded!")
				continue
			}
			fmt.Fprintf(out, "Enter trace number (1-%d): ", len(e.Traces))
			traceNo, ok := readInt(reader, out)
			if !ok {
				return
			}
			if traceNo < 1 || traceNo > len(e.Traces) {
				fmt.Fprintf(out, "Invalid input! Should be between (1-%d). Try again\n", len(e.Traces))
				continue
			}
			if !e.interactTrace(traceNo-1, reader, out) {
				return
			}
		case 4:
			fmt.Fprintln(out, "Quitting! Thank you")
			return
		default:
			fmt.Fprintln(out, "Wrong choice! Try again!")
		}
	}
}

// readInt returns -1 on invalid input and false once the input is exhausted
func readInt(reader *bufio.Reader, out io.Writer) (int, bool) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 {
		fmt.Fprintln(out, "Invalid input! Try again")
		return -1, true
	}
	return n, true
}

func (e *Explorer) header() string {
	return `
Welcome to the policy explorer!
	`
}

func (e *Explorer) prompt() string {
	return `
------------------------------------
Select one of the following options:
1. Show greedy policy
2. Show action values
3. Explore a trace
4. Quit
Enter your choice: `
}

func (e *Explorer) tracePrompt() string {
	return `
---------------------------------------------
Step(s) Values(d) Prev(p) Last(l) Quit(q): `
}

// interactTrace returns false once the input is exhausted
func (e *Explorer) interactTrace(traceNo int, reader *bufio.Reader, out io.Writer) bool {
	stepCount := 0
	trace := e.Traces[traceNo]
	if trace.Len() == 0 {
		fmt.Fprintln(out, "Empty trace!")
		return true
	}
	fmt.Fprintf(out, "Trace %d, %d steps, return %f\n", traceNo+1, trace.Len(), trace.Return())
	fmt.Fprintln(out, "---------------------------------------------")
	for {
		s, a, r, ns, _ := trace.Get(stepCount)
		fmt.Fprintf(out, "For step %d\nState: %s\nAction: %s\nReward: %f\nNextState: %s\n", stepCount+1, e.stateName(s), e.actionName(a), r, e.stateName(ns))
		fmt.Fprintf(out, "%s", e.renderState(ns))
		fmt.Fprintf(out, "%s", e.tracePrompt())
		optionS, err := reader.ReadString('\n')
		if err != nil && optionS == "" {
			return false
		}
		fmt.Fprintln(out, "---------------------------------------------")
		switch strings.TrimSpace(optionS) {
		case "s":
			if stepCount == trace.Len()-1 {
				fmt.Fprintln(out, "No more steps!")
				continue
			}
			stepCount += 1
		case "d":
			fmt.Fprintf(out, "%s", e.getActionValues(s))
		case "p":
			if stepCount == 0 {
				fmt.Fprintln(out, "No more steps!")
				continue
			}
			stepCount -= 1
		case "l":
			stepCount = trace.Len() - 1
		case "q":
			return true
		default:
			fmt.Fprintln(out, "Invalid option! Try again.")
		}
	}
}
