package main

import (
	"fmt"
	"os"

	"github.com/zeu5/tabular-rl/benchmarks"
)

// main entry point to the solvers
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
