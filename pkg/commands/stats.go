package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"SystemMonitor/pkg/config"
	"SystemMonitor/pkg/exporting"
	"SystemMonitor/pkg/graphing"
	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/utils"
)

// ErrNoData is returned by stats when the history file holds no entries.
var ErrNoData = errors.New("no data found")

// NewStatsCmd creates the stats subcommand.
func NewStatsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize, graph or convert a recorded history",
		Long: `Read a history written by monitor and print it, summarize it, render an
HTML report or convert it to another format.

Supported input formats: json, jsonl, csv, tsv, parquet

Example:
  sysmon stats --file system_monitor_log.json
  sysmon stats --file system_monitor_log.json --summary
  sysmon stats --file data.csv --graph report.html
  sysmon stats --file system_monitor_log.json --export history.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg); err != nil {
				return err
			}
			return runStats(cfg, cmd.OutOrStdout())
		},
	}

	cfg.AddStatsFlags(cmd)

	return cmd
}

func runStats(cfg *config.Config, out io.Writer) error {
	if cfg.File == "" {
		return fmt.Errorf("%w: --file is required", config.ErrInvalidConfig)
	}

	snaps, err := exporting.LoadHistory(cfg.File)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfg.File, err)
	}
	if len(snaps) == 0 {
		return fmt.Errorf("%w in %s", ErrNoData, cfg.File)
	}

	if cfg.Export != "" {
		if err := exporting.ExportHistory(cfg.Export, snaps); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		fmt.Fprintf(out, "Exported %d entries to %s\n", len(snaps), cfg.Export)
	}

	if cfg.Graph != "" {
		if err := graphing.Generate(snaps, cfg.Graph); err != nil {
			return fmt.Errorf("failed to generate graphs: %w", err)
		}
		fmt.Fprintf(out, "Generated report: %s\n", cfg.Graph)
	}

	switch {
	case cfg.Summary:
		writeSummary(out, exporting.Summarize(snaps))
	case cfg.Export == "" && cfg.Graph == "":
		return writeEntries(out, snaps)
	}
	return nil
}

func writeEntries(w io.Writer, snaps []metrics.Snapshot) error {
	entries := make([]exporting.JSONEntry, len(snaps))
	for i, s := range snaps {
		entries[i] = exporting.NewJSONEntry(s)
	}
	return writeJSON(w, entries)
}

func writeSummary(w io.Writer, sum exporting.Summary) {
	fmt.Fprintf(w, "Records: %d\n", sum.Count)
	if sum.Count > 1 {
		fmt.Fprintf(w, "Window: %s to %s (%s)\n",
			sum.Start.Format("2006-01-02 15:04:05"),
			sum.End.Format("2006-01-02 15:04:05"),
			utils.FormatDuration(sum.End.Sub(sum.Start)))
	}
	if sum.Sessions > 1 {
		fmt.Fprintf(w, "Sessions: %d\n", sum.Sessions)
	}
	fmt.Fprintf(w, "CPU usage: avg %.1f%%, max %.1f%%\n", sum.CPUAvg, sum.CPUMax)
	fmt.Fprintf(w, "Memory usage: avg %.1f%%, max %.1f%%\n", sum.MemAvg, sum.MemMax)
	fmt.Fprintf(w, "Network: sent %.2f MB, received %.2f MB\n", sum.SentMB, sum.RecvMB)
}
