// Package metrics defines the data structures produced by the sampler.
package metrics

import "time"

// ProcessSummary is the per-process slice of a Snapshot.
type ProcessSummary struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// Snapshot is one bundle of host metrics captured at a single instant.
// A Snapshot is built once by the collecting Manager and never modified
// afterwards; consumers that need to keep or change one should Clone it.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`

	CPUPercent float64   `json:"cpu_percent"`
	CPUPerCore []float64 `json:"cpu_per_core"`

	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb"`

	// DiskUsage maps mount point to utilization percent. Partitions that
	// could not be read are absent rather than reported as zero.
	DiskUsage map[string]float64 `json:"disk_usage"`

	NetworkSentMB      float64 `json:"network_sent_mb"`
	NetworkRecvMB      float64 `json:"network_recv_mb"`
	NetworkConnections int     `json:"network_connections"`

	// TopProcesses is ordered by CPUPercent, highest first.
	TopProcesses []ProcessSummary `json:"top_processes"`
}

// RootDiskUsage returns the utilization of "/" or 0 when it was not readable.
func (s Snapshot) RootDiskUsage() float64 {
	return s.DiskUsage["/"]
}

// Clone returns a deep copy whose slices and map share nothing with s.
func (s Snapshot) Clone() Snapshot {
	c := s

	if s.CPUPerCore != nil {
		c.CPUPerCore = make([]float64, len(s.CPUPerCore))
		copy(c.CPUPerCore, s.CPUPerCore)
	}

	if s.DiskUsage != nil {
		c.DiskUsage = make(map[string]float64, len(s.DiskUsage))
		for k, v := range s.DiskUsage {
			c.DiskUsage[k] = v
		}
	}

	if s.TopProcesses != nil {
		c.TopProcesses = make([]ProcessSummary, len(s.TopProcesses))
		copy(c.TopProcesses, s.TopProcesses)
	}

	return c
}
