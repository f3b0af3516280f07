// Package main provides the entry point for the agentdeck server.
package main

import (
	"context"
	"os"

	"github.com/agentdeck/agentdeck/internal/cli"
)

// Build information set via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(1)
	}
}
