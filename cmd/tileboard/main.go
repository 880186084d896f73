// Tileboard - home-automation dashboard core.
//
// This is the main entry point. The default command serves the dashboard:
// it loads the page configuration, keeps the displayed page in sync with
// the MQTT bus (or the demo generator) and pushes changes to browsers over
// WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C and SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand serves the dashboard.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "tileboard",
		Short:         "Home-automation dashboard core",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", getConfigPath(),
		"path to config.yaml (env TILEBOARD_CONFIG)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newTokenCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tileboard %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// getConfigPath returns the configuration file path.
// Uses TILEBOARD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TILEBOARD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
