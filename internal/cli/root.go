// Package cli provides the command-line interface for agentdeck.
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// newRootCmd creates the root command. The function-based approach avoids
// package-level command globals and keeps the tree testable.
func newRootCmd(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentdeck",
		Short: "agentdeck - real-time dashboard backend for software agents",
		Long: `agentdeck is the backend for a real-time dashboard over a crew of
collaborating software agents: a task board, agent presence, notes,
scheduled deliverables, metrics, a live feed, and a read-only window
into the agents' long-term memory.

State is persisted as JSON snapshots; connected dashboards receive
every change over a websocket subscription.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// A local .env is optional; absence is not an error.
			_ = godotenv.Load()
			return nil
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd())

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	return newRootCmd(info).ExecuteContext(ctx)
}
