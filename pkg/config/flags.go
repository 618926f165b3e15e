package config

import (
	"strings"

	"github.com/spf13/cobra"
)

// AddMonitorFlags adds sampling and output flags to a command.
func (c *Config) AddMonitorFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64VarP(&c.Interval, "interval", "i", c.Interval, "Sampling interval in seconds")
	flags.Float64VarP(&c.Duration, "duration", "d", c.Duration, "Run time in seconds (0 = until interrupted)")
	flags.StringVarP(&c.Output, "output", "o", c.Output, "Output file (.csv, .json, .jsonl, .parquet, .tsv)")
	flags.StringVarP(&c.Format, "format", "f", c.Format,
		"Output format ("+strings.Join(ValidFormats(), ", ")+")")
	flags.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "Suppress console output")
	flags.IntVar(&c.TopProcesses, "top-processes", c.TopProcesses, "Number of top processes to record (0 = none)")
	flags.DurationVar(&c.CPUInterval, "cpu-interval", c.CPUInterval, "CPU measurement window")
	flags.DurationVar(&c.StopTimeout, "stop-timeout", c.StopTimeout, "How long to wait for an in-flight sample on stop")
}

// AddStatsFlags adds history analysis flags to a command.
func (c *Config) AddStatsFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.File, "file", c.File, "Recorded history file")
	flags.BoolVar(&c.Summary, "summary", c.Summary, "Print a summary instead of raw entries")
	flags.StringVar(&c.Graph, "graph", c.Graph, "Write an HTML report to this path")
	flags.StringVar(&c.Export, "export", c.Export, "Convert the history to this file")
}

// AddSourceFlags adds the config and env file flags shared by every
// subcommand.
func (c *Config) AddSourceFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Config file (default: sysmon.yaml in ., $HOME/.sysmon, /etc/sysmon)")
	flags.StringVar(&c.EnvFile, "env-file", c.EnvFile, "Environment file with SYSMON_* variables")
}
