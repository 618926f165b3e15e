package collecting

import (
	"context"
	"time"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/probing"
	"SystemMonitor/pkg/utils"
)

type CPU struct {
	probe    probing.Probe
	interval time.Duration
	cores    int
}

func NewCPU(probe probing.Probe, interval time.Duration, cores int) *CPU {
	return &CPU{probe: probe, interval: interval, cores: cores}
}

func (c *CPU) Name() string { return "cpu" }
func (c *CPU) Close() error { return nil }

// Collect blocks for the configured interval while the overall
// utilization delta is measured.
func (c *CPU) Collect(ctx context.Context, s *metrics.Snapshot) error {
	total, err := c.probe.CPUPercent(ctx, c.interval)
	if err != nil {
		return err
	}
	perCore, err := c.probe.CPUPerCore(ctx)
	if err != nil {
		return err
	}

	s.CPUPercent = utils.Clamp(total, 0, 100)
	s.CPUPerCore = normalizeCores(perCore, c.cores)
	return nil
}

// normalizeCores pads or truncates readings to n entries, clamping each to
// a percentage.
func normalizeCores(readings []float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n && i < len(readings); i++ {
		out[i] = utils.Clamp(readings[i], 0, 100)
	}
	return out
}
