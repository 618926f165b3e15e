package collecting

import (
	"context"
	"sync"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/probing"
	"SystemMonitor/pkg/utils"
)

// Network reports cumulative traffic. A counter that reads lower than the
// last reported value (interface reset, wraparound) is held at the last
// value so the series never decreases.
type Network struct {
	probe probing.Probe

	mu       sync.Mutex
	lastSent uint64
	lastRecv uint64
}

func NewNetwork(probe probing.Probe) *Network { return &Network{probe: probe} }
func (c *Network) Name() string               { return "network" }
func (c *Network) Close() error               { return nil }

func (c *Network) Collect(ctx context.Context, s *metrics.Snapshot) error {
	counters, err := c.probe.NetCounters(ctx)

	c.mu.Lock()
	if err == nil {
		if counters.BytesSent > c.lastSent {
			c.lastSent = counters.BytesSent
		}
		if counters.BytesRecv > c.lastRecv {
			c.lastRecv = counters.BytesRecv
		}
	}
	s.NetworkSentMB = float64(c.lastSent) / utils.BytesPerMB
	s.NetworkRecvMB = float64(c.lastRecv) / utils.BytesPerMB
	c.mu.Unlock()

	if err != nil {
		return err
	}

	conns, err := c.probe.Connections(ctx)
	if err != nil {
		return err
	}
	s.NetworkConnections = conns
	return nil
}
