package config

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero interval", func(c *Config) { c.Interval = 0 }, true},
		{"negative interval", func(c *Config) { c.Interval = -1 }, true},
		{"fractional interval", func(c *Config) { c.Interval = 0.25 }, false},
		{"negative duration", func(c *Config) { c.Duration = -5 }, true},
		{"negative top processes", func(c *Config) { c.TopProcesses = -1 }, true},
		{"negative cpu interval", func(c *Config) { c.CPUInterval = -time.Second }, true},
		{"sink settings ignored", func(c *Config) { c.Format = "xml"; c.Output = "run.txt" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.modify(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidateOutputs(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown format", func(c *Config) { c.Format = "xml" }, true},
		{"csv format", func(c *Config) { c.Format = "csv" }, false},
		{"parquet format", func(c *Config) { c.Format = "parquet" }, false},
		{"csv output", func(c *Config) { c.Output = "run.csv" }, false},
		{"jsonl output", func(c *Config) { c.Output = "run.jsonl" }, false},
		{"unsupported output", func(c *Config) { c.Output = "run.txt" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.modify(c)
			err := c.ValidateOutputs()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	c := &Config{Format: "CSV"}
	c.ApplyDefaults()

	if c.Interval != 0 {
		t.Errorf("Interval = %v, want it left for Validate", c.Interval)
	}
	if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero interval passed validation: %v", err)
	}
	if c.Format != "csv" {
		t.Errorf("Format = %q, want csv", c.Format)
	}
	if c.StopTimeout != DefaultStopTimeout {
		t.Errorf("StopTimeout = %v", c.StopTimeout)
	}
	if c.CPUInterval != DefaultCPUInterval {
		t.Errorf("CPUInterval = %v", c.CPUInterval)
	}

	c = &Config{}
	c.ApplyDefaults()
	if c.Format != DefaultFormat {
		t.Errorf("empty format defaulted to %q", c.Format)
	}
}

func TestDurations(t *testing.T) {
	c := New()
	c.Interval = 1.5
	c.Duration = 10
	if got := c.IntervalDuration(); got != 1500*time.Millisecond {
		t.Errorf("IntervalDuration() = %v", got)
	}
	if got := c.RunDuration(); got != 10*time.Second {
		t.Errorf("RunDuration() = %v", got)
	}
}

func TestOutputs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   []Output
	}{
		{
			name:   "console only",
			modify: func(c *Config) {},
			want:   []Output{{Format: "console"}},
		},
		{
			name:   "console and csv file",
			modify: func(c *Config) { c.Output = "data.csv" },
			want:   []Output{{Format: "console"}, {Format: "csv", Path: "data.csv"}},
		},
		{
			name:   "quiet with json file",
			modify: func(c *Config) { c.Quiet = true; c.Output = "data.json" },
			want:   []Output{{Format: "json", Path: "data.json"}},
		},
		{
			name:   "quiet falls back to json log",
			modify: func(c *Config) { c.Quiet = true },
			want:   []Output{{Format: "json", Path: DefaultLogPath}},
		},
		{
			name:   "json format without path",
			modify: func(c *Config) { c.Format = "json"; c.Quiet = true },
			want:   []Output{{Format: "json", Path: DefaultLogPath}},
		},
		{
			name:   "csv format without path",
			modify: func(c *Config) { c.Format = "csv" },
			want:   []Output{{Format: "csv", Path: "system_monitor_log.csv"}},
		},
		{
			name:   "parquet output",
			modify: func(c *Config) { c.Format = "json"; c.Output = "run.parquet" },
			want:   []Output{{Format: "parquet", Path: "run.parquet"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.modify(c)
			if got := c.Outputs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Outputs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newTestCommand(c *Config) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	c.AddSourceFlags(cmd)
	c.AddMonitorFlags(cmd)
	return cmd
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sysmon.yaml")
	content := "interval: 5\ntop_processes: 4\nformat: csv\nstop_timeout: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SYSMON_TOP_PROCESSES", "7")

	c := New()
	cmd := newTestCommand(c)
	if err := cmd.ParseFlags([]string{"--config", path, "--interval", "2"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Load(cmd); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Interval != 2 {
		t.Errorf("Interval = %v, want flag value 2", c.Interval)
	}
	if c.TopProcesses != 7 {
		t.Errorf("TopProcesses = %d, want env value 7", c.TopProcesses)
	}
	if c.Format != "csv" {
		t.Errorf("Format = %q, want file value csv", c.Format)
	}
	if c.StopTimeout != 3*time.Second {
		t.Errorf("StopTimeout = %v, want 3s", c.StopTimeout)
	}
	if c.CPUInterval != DefaultCPUInterval {
		t.Errorf("CPUInterval = %v, want default", c.CPUInterval)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	c := New()
	c.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	if err := c.Load(nil); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "SYSMON_EXPORT"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "sysmon.env")
	if err := os.WriteFile(path, []byte(key+"=history.parquet\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := New()
	c.EnvFile = path
	if err := c.Load(nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Export != "history.parquet" {
		t.Errorf("Export = %q, want history.parquet", c.Export)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	c := New()
	c.EnvFile = filepath.Join(t.TempDir(), "none.env")
	if err := c.Load(nil); err == nil {
		t.Fatal("expected error for explicit missing env file")
	}
}
