package collecting

import (
	"context"
	"sort"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/probing"
)

// Process keeps the top processes by CPU usage.
type Process struct {
	probe probing.Probe
	top   int
}

func NewProcess(probe probing.Probe, top int) *Process {
	return &Process{probe: probe, top: top}
}

func (c *Process) Name() string { return "process" }
func (c *Process) Close() error { return nil }

func (c *Process) Collect(ctx context.Context, s *metrics.Snapshot) error {
	if c.top <= 0 {
		return nil
	}

	procs, err := c.probe.Processes(ctx)
	if err != nil {
		return err
	}
	s.TopProcesses = topByCPU(procs, c.top)
	return nil
}

func topByCPU(procs []metrics.ProcessSummary, n int) []metrics.ProcessSummary {
	sorted := make([]metrics.ProcessSummary, len(procs))
	copy(sorted, procs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CPUPercent > sorted[j].CPUPercent
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
