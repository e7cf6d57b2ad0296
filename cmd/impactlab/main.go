package main

import (
	"os"

	"github.com/wonny/impactlab/cmd/impactlab/commands"
)

// main is the entry point for the impactlab CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
