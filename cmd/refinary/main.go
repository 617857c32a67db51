// Command refinary is the directed-evolution pipeline: a CLI for running
// refinement campaigns and a server mode exposing the same runs over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/messiay/protein-refinary/internal/interfaces/cli"
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
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
