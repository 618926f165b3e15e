package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"SystemMonitor/pkg/collecting"
	"SystemMonitor/pkg/config"
	"SystemMonitor/pkg/exporting"
	"SystemMonitor/pkg/sampling"
)

// NewMonitorCmd creates the monitor subcommand.
func NewMonitorCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Aliases: []string{"mon"},
		Use:     "monitor",
		Short:   "Sample until the duration expires or Ctrl+C",
		Long: `Sample host metrics at a fixed interval and hand every snapshot to the
selected outputs. Without --quiet the report is printed to the console; with
no output selected at all the samples are kept in system_monitor_log.json.

Example:
  sysmon monitor --interval 2
  sysmon monitor --output data.csv --interval 2
  sysmon monitor --format json --quiet --duration 60
  sysmon monitor --output run.parquet --top-processes 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.ValidateOutputs(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMonitor(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cfg.AddMonitorFlags(cmd)

	return cmd
}

// runMonitor samples until ctx is cancelled or the configured duration
// elapses. Cancellation is reported as ErrInterrupted.
func runMonitor(ctx context.Context, cfg *config.Config, out, errOut io.Writer) error {
	manager := collecting.NewManager(ctx, newProbe(),
		collecting.WithTopProcesses(cfg.TopProcesses),
		collecting.WithCPUInterval(cfg.CPUInterval),
	)
	defer manager.Close()

	sinks, err := openSinks(cfg.Outputs(), exporting.SinkOptions{Out: out, TopProcesses: cfg.TopProcesses})
	if err != nil {
		return err
	}
	defer closeSinks(sinks)

	sampler := sampling.NewSampler(manager, sampling.WithStopTimeout(cfg.StopTimeout))
	// Runs before closeSinks: a tick left over by a timed-out Stop still
	// writes to them.
	defer sampler.Wait()
	for _, s := range sinks {
		sampler.Register(s)
	}

	fmt.Fprintf(errOut, "Monitoring every %v, press Ctrl+C to stop\n", cfg.IntervalDuration())
	log.Printf("Session %s, %d cores, collectors: %v", manager.SessionID(), manager.Cores(), manager.CollectorNames())

	start := time.Now()
	if err := sampler.Start(cfg.IntervalDuration()); err != nil {
		return fmt.Errorf("failed to start sampler: %w", err)
	}

	var expired <-chan time.Time
	if d := cfg.RunDuration(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-ctx.Done():
		sampler.Stop()
		fmt.Fprintf(errOut, "\nMonitoring stopped, collected %d samples\n", sampler.Ticks())
		return ErrInterrupted
	case <-expired:
		sampler.Stop()
	}

	log.Printf("Collection complete: %d samples in %v", sampler.Ticks(), time.Since(start).Round(time.Millisecond))
	return nil
}

func openSinks(outputs []config.Output, opts exporting.SinkOptions) ([]exporting.Sink, error) {
	sinks := make([]exporting.Sink, 0, len(outputs))
	for _, o := range outputs {
		s, err := exporting.NewSink(o.Format, o.Path, opts)
		if err != nil {
			closeSinks(sinks)
			return nil, fmt.Errorf("failed to open %s output: %w", o.Format, err)
		}
		if o.Path != "" {
			log.Printf("Output: %s (%s)", o.Path, o.Format)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func closeSinks(sinks []exporting.Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Printf("WARNING: failed to close output: %v", err)
		}
	}
}
