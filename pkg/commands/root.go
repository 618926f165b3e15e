// Package commands provides CLI command implementations.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"SystemMonitor/pkg/config"
	"SystemMonitor/pkg/probing"
)

// ErrInterrupted is returned when a command is stopped by SIGINT or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

// newProbe is swapped out by tests.
var newProbe = func() probing.Probe { return probing.NewHost() }

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	cfg := config.New()

	root := &cobra.Command{
		Use:   "sysmon",
		Short: "Cross-platform host metrics sampler",
		Long: `sysmon samples CPU, memory, disk, network and process metrics at a
fixed interval and writes them to the console or to files.

Commands:
  info       Print a static description of the host
  monitor    Sample until the duration expires or Ctrl+C
  snapshot   Capture a single snapshot as JSON
  stats      Summarize, graph or convert a recorded history`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cfg.AddSourceFlags(root)

	root.AddCommand(
		NewInfoCmd(cfg),
		NewMonitorCmd(cfg),
		NewSnapshotCmd(cfg),
		NewStatsCmd(cfg),
	)

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, ErrInterrupted):
		fmt.Fprintln(os.Stderr, "Operation cancelled")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInterrupted):
		return ExitInterrupted
	default:
		return ExitError
	}
}

// loadConfig merges file, environment and flags, then validates.
func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Load(cmd); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	return cfg.Validate()
}
