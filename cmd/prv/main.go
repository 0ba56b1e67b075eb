package main

import (
	"github.com/reliefvalve/prv/internal/cmd"
	"github.com/reliefvalve/prv/internal/observability"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2025-10-28"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		// Logger is nil when flag parsing failed before initialization.
		cmd.Exit(observability.CLILogger, "Command execution failed", err)
	}
}
