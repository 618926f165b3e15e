package collecting

import (
	"context"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/probing"
	"SystemMonitor/pkg/utils"
)

type Memory struct {
	probe probing.Probe
}

func NewMemory(probe probing.Probe) *Memory { return &Memory{probe: probe} }
func (c *Memory) Name() string              { return "memory" }
func (c *Memory) Close() error              { return nil }

func (c *Memory) Collect(ctx context.Context, s *metrics.Snapshot) error {
	vm, err := c.probe.VirtualMemory(ctx)
	if err != nil {
		return err
	}

	used := vm.Used
	if used > vm.Total {
		used = vm.Total
	}

	s.MemoryPercent = utils.Clamp(vm.UsedPercent, 0, 100)
	s.MemoryUsedGB = float64(used) / utils.BytesPerGB
	s.MemoryTotalGB = float64(vm.Total) / utils.BytesPerGB
	return nil
}
