// Command meisai reviews Japanese patent specification drafts.
package main

import (
	"context"
	"os"

	"github.com/turtacn/meisai-checker/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
