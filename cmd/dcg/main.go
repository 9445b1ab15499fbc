package main

import (
	"github.com/tacogips/dcg/internal/cli"
)

// Build information (set via ldflags during build)
var (
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set build info from build-time variables
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	// Execute the root command
	cli.Execute()
}
