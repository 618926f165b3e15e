package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// SYSMON_INTERVAL or SYSMON_TOP_PROCESSES.
const EnvPrefix = "SYSMON"

// keys lists every setting that can come from a file or the environment.
var keys = []string{
	"interval", "duration", "top_processes", "cpu_interval", "stop_timeout",
	"output", "format", "quiet",
	"file", "summary", "graph", "export",
}

// EnvFiles returns the candidate env files, first match wins.
func EnvFiles() []string {
	files := []string{".env", "sysmon.env"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".sysmon", "sysmon.env"))
	}
	return append(files, "/etc/sysmon/sysmon.env")
}

// Load merges the config file, environment and the flags parsed on cmd into
// c. Flags win over the environment, which wins over the file.
func (c *Config) Load(cmd *cobra.Command) error {
	if err := loadEnvFile(c.EnvFile); err != nil {
		return err
	}

	v := viper.New()
	for _, key := range keys {
		v.SetDefault(key, c.defaultFor(key))
	}

	if c.ConfigFile != "" {
		v.SetConfigFile(c.ConfigFile)
	} else {
		v.SetConfigName("sysmon")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sysmon"))
		}
		v.AddConfigPath("/etc/sysmon")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		flags := cmd.Flags()
		for _, key := range keys {
			if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func (c *Config) defaultFor(key string) interface{} {
	switch key {
	case "interval":
		return c.Interval
	case "duration":
		return c.Duration
	case "top_processes":
		return c.TopProcesses
	case "cpu_interval":
		return c.CPUInterval
	case "stop_timeout":
		return c.StopTimeout
	case "output":
		return c.Output
	case "format":
		return c.Format
	case "quiet":
		return c.Quiet
	case "file":
		return c.File
	case "summary":
		return c.Summary
	case "graph":
		return c.Graph
	case "export":
		return c.Export
	}
	return nil
}

// loadEnvFile loads path, or the first readable candidate when path is empty.
// Variables already set in the process environment are left alone.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		log.Printf("Loaded environment file: %s", path)
		return nil
	}

	for _, candidate := range EnvFiles() {
		if err := godotenv.Load(candidate); err == nil {
			log.Printf("Loaded environment file: %s", candidate)
			return nil
		}
	}
	return nil
}
