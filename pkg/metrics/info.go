package metrics

import "time"

// PlatformInfo describes the operating system and host.
type PlatformInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Architecture    string `json:"architecture"`
}

// CPUInfo describes the processor.
type CPUInfo struct {
	Model         string  `json:"model"`
	LogicalCores  int     `json:"logical_cores"`
	PhysicalCores int     `json:"physical_cores"`
	Mhz           float64 `json:"mhz"`
}

// MemoryInfo holds raw virtual memory and swap readings in bytes.
type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"percent"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
	SwapFree    uint64  `json:"swap_free"`
	SwapPercent float64 `json:"swap_percent"`
}

// DiskInfo is the usage of one readable partition.
type DiskInfo struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	Fstype      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"percent"`
}

// GPUInfo describes one NVIDIA device.
type GPUInfo struct {
	Index          int     `json:"index"`
	Name           string  `json:"name"`
	MemoryTotal    uint64  `json:"memory_total"`
	MemoryUsed     uint64  `json:"memory_used"`
	UtilizationGPU float64 `json:"utilization_gpu"`
	TemperatureC   float64 `json:"temperature_c"`
	DriverVersion  string  `json:"driver_version"`
}

// ClockSync reports kernel clock discipline state.
type ClockSync struct {
	Supported       bool    `json:"supported"`
	Synced          bool    `json:"synced"`
	OffsetSeconds   float64 `json:"offset_seconds"`
	MaxErrorSeconds float64 `json:"max_error_seconds"`
}

// SystemInfo is the static description printed by the info command.
type SystemInfo struct {
	Platform PlatformInfo `json:"platform"`
	CPU      CPUInfo      `json:"cpu_info"`
	Memory   MemoryInfo   `json:"memory_info"`
	Disks    []DiskInfo   `json:"disk_info"`
	BootTime time.Time    `json:"boot_time"`
	Clock    ClockSync    `json:"clock"`
	GPUs     []GPUInfo    `json:"gpus,omitempty"`
}
