// Command hsm is a CLI tool for working with hierarchical state diagrams.
package main

import (
	"fmt"
	"os"
)

// run builds the command tree and executes it with args. It returns an
// error rather than exiting so tests can drive it.
func run(args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
