package collecting

import (
	"context"
	"log"
	"runtime"
	"time"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/probing"

	"github.com/google/uuid"
)

// Manager assembles snapshots by running every facet collector in turn.
type Manager struct {
	probe       probing.Probe
	sessionID   string
	cores       int
	top         int
	cpuInterval time.Duration
	collectors  []Collector
}

type Option func(*Manager)

// WithTopProcesses sets how many processes a snapshot keeps. Zero skips
// process enumeration entirely.
func WithTopProcesses(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.top = n
		}
	}
}

// WithCPUInterval sets how long the CPU facet blocks to measure utilization.
func WithCPUInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.cpuInterval = d
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(m *Manager) {
		if id != "" {
			m.sessionID = id
		}
	}
}

// NewManager captures the logical core count once; every snapshot it builds
// carries exactly that many per-core readings.
func NewManager(ctx context.Context, probe probing.Probe, opts ...Option) *Manager {
	m := &Manager{
		probe:       probe,
		sessionID:   uuid.NewString(),
		cpuInterval: probing.DefaultCPUInterval,
	}
	for _, opt := range opts {
		opt(m)
	}

	cores, err := probe.CPUCounts(ctx, true)
	if err != nil || cores <= 0 {
		if err != nil {
			log.Printf("WARNING: core count unavailable, using runtime value: %v", err)
		}
		cores = runtime.NumCPU()
	}
	m.cores = cores

	m.collectors = []Collector{
		NewCPU(probe, m.cpuInterval, cores),
		NewMemory(probe),
		NewDisk(probe),
		NewNetwork(probe),
		NewProcess(probe, m.top),
	}

	log.Printf("Initialized %d collectors (session %s, %d cores)", len(m.collectors), m.sessionID, cores)
	return m
}

// Snapshot queries each facet once, in order. A failing facet is logged and
// left at its neutral value, so assembly itself never fails.
func (m *Manager) Snapshot(ctx context.Context) metrics.Snapshot {
	s := metrics.Snapshot{
		Timestamp: time.Now(),
		SessionID: m.sessionID,
	}

	for _, c := range m.collectors {
		if err := c.Collect(ctx, &s); err != nil {
			log.Printf("WARNING: %s collector failed: %v", c.Name(), err)
		}
	}

	if s.CPUPerCore == nil {
		s.CPUPerCore = make([]float64, m.cores)
	}
	if s.DiskUsage == nil {
		s.DiskUsage = map[string]float64{}
	}
	if s.TopProcesses == nil {
		s.TopProcesses = []metrics.ProcessSummary{}
	}
	return s
}

// SystemInfo gathers the static host description. Sections that cannot be
// read are logged and left empty.
func (m *Manager) SystemInfo(ctx context.Context) metrics.SystemInfo {
	var info metrics.SystemInfo

	if p, err := m.probe.HostInfo(ctx); err != nil {
		log.Printf("WARNING: host info: %v", err)
	} else {
		info.Platform = p
	}
	if info.Platform.Architecture == "" {
		info.Platform.Architecture = runtime.GOARCH
	}
	if info.Platform.OS == "" {
		info.Platform.OS = runtime.GOOS
	}

	cpuInfo, err := m.probe.CPUInfo(ctx)
	if err != nil {
		log.Printf("WARNING: cpu info: %v", err)
	}
	info.CPU = cpuInfo
	if info.CPU.LogicalCores == 0 {
		info.CPU.LogicalCores = m.cores
	}

	if vm, err := m.probe.VirtualMemory(ctx); err != nil {
		log.Printf("WARNING: virtual memory: %v", err)
	} else {
		info.Memory.Total = vm.Total
		info.Memory.Available = vm.Available
		info.Memory.Used = vm.Used
		info.Memory.Free = vm.Free
		info.Memory.UsedPercent = vm.UsedPercent
	}
	if sw, err := m.probe.SwapMemory(ctx); err != nil {
		log.Printf("WARNING: swap memory: %v", err)
	} else {
		info.Memory.SwapTotal = sw.Total
		info.Memory.SwapUsed = sw.Used
		info.Memory.SwapFree = sw.Free
		info.Memory.SwapPercent = sw.UsedPercent
	}

	if disks, err := m.probe.Partitions(ctx); err != nil {
		log.Printf("WARNING: disk partitions: %v", err)
	} else {
		info.Disks = disks
	}

	if bt, err := m.probe.BootTime(ctx); err != nil {
		log.Printf("WARNING: boot time: %v", err)
	} else {
		info.BootTime = bt
	}

	info.Clock = probing.ClockSync()
	info.GPUs = probing.GPUs()
	return info
}

func (m *Manager) SessionID() string { return m.sessionID }
func (m *Manager) Cores() int        { return m.cores }

func (m *Manager) CollectorNames() []string {
	names := make([]string, len(m.collectors))
	for i, c := range m.collectors {
		names[i] = c.Name()
	}
	return names
}

func (m *Manager) Close() {
	for _, c := range m.collectors {
		if err := c.Close(); err != nil {
			log.Printf("Error closing collector %s: %v", c.Name(), err)
		}
	}
}
