package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"SystemMonitor/pkg/collecting"
	"SystemMonitor/pkg/config"
	"SystemMonitor/pkg/exporting"
	"SystemMonitor/pkg/sampling"
)

// NewSnapshotCmd creates the snapshot subcommand.
func NewSnapshotCmd(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"ss"},
		Short:   "Capture a single snapshot as JSON",
		Long: `Capture one snapshot of host metrics without starting the sampling loop
and print it in the same shape as a JSON metrics file entry.

Example:
  sysmon snapshot
  sysmon snapshot --top-processes 3 --out now.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			manager := collecting.NewManager(ctx, newProbe(),
				collecting.WithTopProcesses(cfg.TopProcesses),
				collecting.WithCPUInterval(cfg.CPUInterval),
			)
			defer manager.Close()

			snap := sampling.NewSampler(manager).Current(ctx)
			entry := exporting.NewJSONEntry(snap)

			if output == "" {
				return writeJSON(cmd.OutOrStdout(), entry)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := writeJSON(f, entry); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Written to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.TopProcesses, "top-processes", cfg.TopProcesses, "Number of top processes to include")
	cmd.Flags().DurationVar(&cfg.CPUInterval, "cpu-interval", cfg.CPUInterval, "CPU measurement window")
	// Not "output": that key belongs to monitor and is bound from the environment.
	cmd.Flags().StringVarP(&output, "out", "o", "", "Write the snapshot to this file (default: stdout)")

	return cmd
}
