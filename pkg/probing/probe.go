// Package probing reads point-in-time host counters from the operating system.
package probing

import (
	"context"
	"time"

	"SystemMonitor/pkg/metrics"
)

// DefaultCPUInterval is how long a CPU utilization read blocks to compute
// its delta.
const DefaultCPUInterval = 100 * time.Millisecond

// VirtualMemory is a single virtual memory reading in bytes.
type VirtualMemory struct {
	Total       uint64
	Available   uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// SwapMemory is a single swap reading in bytes.
type SwapMemory struct {
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
}

// NetCounters are cumulative byte counters summed over all interfaces.
type NetCounters struct {
	BytesSent uint64
	BytesRecv uint64
}

// Probe is the capability the collectors read from. Implementations skip
// entries they cannot read (vanished processes, unmounted or inaccessible
// partitions) instead of failing the whole call.
type Probe interface {
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)
	CPUPerCore(ctx context.Context) ([]float64, error)
	CPUCounts(ctx context.Context, logical bool) (int, error)
	CPUInfo(ctx context.Context) (metrics.CPUInfo, error)
	VirtualMemory(ctx context.Context) (VirtualMemory, error)
	SwapMemory(ctx context.Context) (SwapMemory, error)
	Partitions(ctx context.Context) ([]metrics.DiskInfo, error)
	NetCounters(ctx context.Context) (NetCounters, error)
	Connections(ctx context.Context) (int, error)
	Processes(ctx context.Context) ([]metrics.ProcessSummary, error)
	HostInfo(ctx context.Context) (metrics.PlatformInfo, error)
	BootTime(ctx context.Context) (time.Time, error)
}
