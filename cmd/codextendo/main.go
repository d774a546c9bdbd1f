package main

import (
	"os"

	"github.com/BranchManager69/codextendo/cmd/codextendo/commands"
)

func main() {
	// Cobra already printed the error to stderr.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
