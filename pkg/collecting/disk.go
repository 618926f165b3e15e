package collecting

import (
	"context"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/probing"
	"SystemMonitor/pkg/utils"
)

type Disk struct {
	probe probing.Probe
}

func NewDisk(probe probing.Probe) *Disk { return &Disk{probe: probe} }
func (c *Disk) Name() string            { return "disk" }
func (c *Disk) Close() error            { return nil }

func (c *Disk) Collect(ctx context.Context, s *metrics.Snapshot) error {
	parts, err := c.probe.Partitions(ctx)
	if err != nil {
		return err
	}

	usage := make(map[string]float64, len(parts))
	for _, p := range parts {
		usage[p.Mountpoint] = utils.Clamp(p.UsedPercent, 0, 100)
	}
	s.DiskUsage = usage
	return nil
}
