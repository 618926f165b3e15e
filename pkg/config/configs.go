// Package config provides configuration management for the monitor.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"SystemMonitor/pkg/exporting"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all monitor configuration options.
type Config struct {
	// Sampling settings, in seconds to match the command line.
	Interval     float64       `mapstructure:"interval"`
	Duration     float64       `mapstructure:"duration"`
	TopProcesses int           `mapstructure:"top_processes"`
	CPUInterval  time.Duration `mapstructure:"cpu_interval"`
	StopTimeout  time.Duration `mapstructure:"stop_timeout"`

	// Output settings
	Output string `mapstructure:"output"`
	Format string `mapstructure:"format"`
	Quiet  bool   `mapstructure:"quiet"`

	// Stats settings
	File    string `mapstructure:"file"`
	Summary bool   `mapstructure:"summary"`
	Graph   string `mapstructure:"graph"`
	Export  string `mapstructure:"export"`

	// Sources
	ConfigFile string `mapstructure:"-"`
	EnvFile    string `mapstructure:"-"`
}

// Default configuration values.
const (
	DefaultInterval    = 1.0
	DefaultFormat      = "console"
	DefaultCPUInterval = 100 * time.Millisecond
	DefaultStopTimeout = 2 * time.Second
	DefaultLogName     = "system_monitor_log"
	DefaultLogPath     = DefaultLogName + ".json"
)

// Output names one sink the monitor command should open.
type Output struct {
	Format string
	Path   string
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Interval:    DefaultInterval,
		Format:      DefaultFormat,
		CPUInterval: DefaultCPUInterval,
		StopTimeout: DefaultStopTimeout,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidConfig, c.Interval)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration cannot be negative, got %v", ErrInvalidConfig, c.Duration)
	}
	if c.TopProcesses < 0 {
		return fmt.Errorf("%w: top-processes cannot be negative, got %d", ErrInvalidConfig, c.TopProcesses)
	}
	if c.CPUInterval < 0 {
		return fmt.Errorf("%w: cpu interval cannot be negative, got %v", ErrInvalidConfig, c.CPUInterval)
	}
	return nil
}

// ValidateOutputs checks the sink settings. Only monitor opens sinks, so
// other commands ignore a stray --format or SYSMON_OUTPUT.
func (c *Config) ValidateOutputs() error {
	if !isValidFormat(c.Format) {
		return fmt.Errorf("%w: invalid format: %s (valid: %s)",
			ErrInvalidConfig, c.Format, strings.Join(ValidFormats(), ", "))
	}
	if c.Output != "" {
		if _, err := exporting.FormatForPath(c.Output); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// ValidFormats returns the list of supported --format values.
func ValidFormats() []string {
	formats := []string{"console", "json"}
	return append(formats, exporting.Names()...)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats() {
		if f == format {
			return true
		}
	}
	return false
}

// ApplyDefaults fills in any missing values with defaults. Interval and
// duration are left for Validate to judge.
func (c *Config) ApplyDefaults() {
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = DefaultStopTimeout
	}
	if c.CPUInterval == 0 {
		c.CPUInterval = DefaultCPUInterval
	}
}

// IntervalDuration returns the sampling interval as a time.Duration.
func (c *Config) IntervalDuration() time.Duration {
	return secondsToDuration(c.Interval)
}

// RunDuration returns how long monitor runs; zero means until interrupted.
func (c *Config) RunDuration() time.Duration {
	return secondsToDuration(c.Duration)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Outputs resolves the sinks for the monitor command. The console is used
// unless quiet or another format was asked for. An explicit --output picks
// its format from the extension; a non-console --format without a path
// writes to the default log name. With nothing else selected the JSON log
// is kept.
func (c *Config) Outputs() []Output {
	var outs []Output

	if c.Format == "console" && !c.Quiet {
		outs = append(outs, Output{Format: "console"})
	}

	switch {
	case c.Output != "":
		format, err := exporting.FormatForPath(c.Output)
		if err == nil {
			outs = append(outs, Output{Format: format, Path: c.Output})
		}
	case c.Format != "console":
		outs = append(outs, Output{Format: c.Format, Path: DefaultLogName + exporting.GetExtension(c.Format)})
	}

	if len(outs) == 0 {
		outs = append(outs, Output{Format: "json", Path: DefaultLogPath})
	}
	return outs
}
