package probing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SystemMonitor/pkg/metrics"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

var _ Probe = (*Host)(nil)

// Host reads live counters through gopsutil.
type Host struct {
	// ConnectionKind selects which sockets Connections counts ("all", "tcp", "inet", ...).
	ConnectionKind string

	// procs keeps each process handle between calls so its CPU reading is
	// the delta since the previous Processes call.
	procMu sync.Mutex
	procs  map[int32]*process.Process
}

// NewHost returns a Host that counts every socket kind.
func NewHost() *Host {
	return &Host{ConnectionKind: "all"}
}

func (h *Host) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pct) == 0 {
		return 0, errors.New("cpu percent: empty reading")
	}
	return pct[0], nil
}

// CPUPerCore returns utilization per logical core since the previous call.
func (h *Host) CPUPerCore(ctx context.Context) ([]float64, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("cpu per core: %w", err)
	}
	return pct, nil
}

func (h *Host) CPUCounts(ctx context.Context, logical bool) (int, error) {
	n, err := cpu.CountsWithContext(ctx, logical)
	if err != nil {
		return 0, fmt.Errorf("cpu counts: %w", err)
	}
	return n, nil
}

func (h *Host) CPUInfo(ctx context.Context) (metrics.CPUInfo, error) {
	var info metrics.CPUInfo

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.PhysicalCores = n
	}

	stats, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return info, fmt.Errorf("cpu info: %w", err)
	}
	if len(stats) > 0 {
		info.Model = stats[0].ModelName
		info.Mhz = stats[0].Mhz
	}
	return info, nil
}

func (h *Host) VirtualMemory(ctx context.Context) (VirtualMemory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return VirtualMemory{}, fmt.Errorf("virtual memory: %w", err)
	}
	return VirtualMemory{
		Total:       vm.Total,
		Available:   vm.Available,
		Used:        vm.Used,
		Free:        vm.Free,
		UsedPercent: vm.UsedPercent,
	}, nil
}

func (h *Host) SwapMemory(ctx context.Context) (SwapMemory, error) {
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return SwapMemory{}, fmt.Errorf("swap memory: %w", err)
	}
	return SwapMemory{
		Total:       sw.Total,
		Used:        sw.Used,
		Free:        sw.Free,
		UsedPercent: sw.UsedPercent,
	}, nil
}

// Partitions returns usage for every mounted partition whose usage can be read.
func (h *Host) Partitions(ctx context.Context) ([]metrics.DiskInfo, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("disk partitions: %w", err)
	}

	disks := make([]metrics.DiskInfo, 0, len(parts))
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		disks = append(disks, metrics.DiskInfo{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Fstype:      p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}
	return disks, nil
}

func (h *Host) NetCounters(ctx context.Context) (NetCounters, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetCounters{}, fmt.Errorf("net io counters: %w", err)
	}
	if len(counters) == 0 {
		return NetCounters{}, errors.New("net io counters: no interfaces")
	}
	return NetCounters{
		BytesSent: counters[0].BytesSent,
		BytesRecv: counters[0].BytesRecv,
	}, nil
}

func (h *Host) Connections(ctx context.Context) (int, error) {
	kind := h.ConnectionKind
	if kind == "" {
		kind = "all"
	}
	conns, err := net.ConnectionsWithContext(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("net connections: %w", err)
	}
	return len(conns), nil
}

// Processes lists every visible process. CPUPercent is the share of one
// core used since the previous call on this Host, zero the first time a PID
// is seen. Processes that exit or deny access between listing and the
// detail reads are left out.
func (h *Host) Processes(ctx context.Context) ([]metrics.ProcessSummary, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("process list: %w", err)
	}

	h.procMu.Lock()
	defer h.procMu.Unlock()

	seen := make(map[int32]*process.Process, len(pids))
	out := make([]metrics.ProcessSummary, 0, len(pids))
	for _, pid := range pids {
		p, ok := h.procs[pid]
		if !ok {
			if p, err = process.NewProcessWithContext(ctx, pid); err != nil {
				continue
			}
		}
		seen[pid] = p

		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpuPct, err := p.PercentWithContext(ctx, 0)
		if err != nil {
			continue
		}
		memPct, err := p.MemoryPercentWithContext(ctx)
		if err != nil {
			continue
		}
		out = append(out, metrics.ProcessSummary{
			PID:           pid,
			Name:          name,
			CPUPercent:    cpuPct,
			MemoryPercent: float64(memPct),
		})
	}
	// Vanished PIDs drop out here.
	h.procs = seen

	return out, nil
}

func (h *Host) HostInfo(ctx context.Context) (metrics.PlatformInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return metrics.PlatformInfo{}, fmt.Errorf("host info: %w", err)
	}
	return metrics.PlatformInfo{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Architecture:    info.KernelArch,
	}, nil
}

func (h *Host) BootTime(ctx context.Context) (time.Time, error) {
	bt, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("boot time: %w", err)
	}
	return time.Unix(int64(bt), 0), nil
}
