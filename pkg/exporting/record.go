package exporting

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/utils"
)

// Column names shared by every tabular format.
const (
	ColTimestamp          = "timestamp"
	ColSessionID          = "session_id"
	ColCPUPercent         = "cpu_percent"
	ColMemoryPercent      = "memory_percent"
	ColMemoryUsedGB       = "memory_used_gb"
	ColMemoryTotalGB      = "memory_total_gb"
	ColDiskUsageRoot      = "disk_usage_root"
	ColNetworkSentMB      = "network_sent_mb"
	ColNetworkRecvMB      = "network_recv_mb"
	ColNetworkConnections = "network_connections"
	ColProcesses          = "processes"

	cpuCorePrefix   = "cpu_core_"
	diskUsagePrefix = "disk_usage:"
)

// SnapshotRecord flattens s into a Record. Per-core values become
// cpu_core_N columns, each mount a disk_usage:<mount> column, and the process
// list a JSON string.
func SnapshotRecord(s metrics.Snapshot) Record {
	r := Record{
		ColTimestamp:          s.Timestamp.Format(time.RFC3339Nano),
		ColCPUPercent:         s.CPUPercent,
		ColMemoryPercent:      s.MemoryPercent,
		ColMemoryUsedGB:       s.MemoryUsedGB,
		ColMemoryTotalGB:      s.MemoryTotalGB,
		ColDiskUsageRoot:      s.RootDiskUsage(),
		ColNetworkSentMB:      s.NetworkSentMB,
		ColNetworkRecvMB:      s.NetworkRecvMB,
		ColNetworkConnections: int64(s.NetworkConnections),
	}
	if s.SessionID != "" {
		r[ColSessionID] = s.SessionID
	}
	for i, v := range s.CPUPerCore {
		r[cpuCorePrefix+strconv.Itoa(i)] = v
	}
	for mount, v := range s.DiskUsage {
		r[diskUsagePrefix+mount] = v
	}
	if len(s.TopProcesses) > 0 {
		if data, err := json.Marshal(s.TopProcesses); err == nil {
			r[ColProcesses] = string(data)
		}
	}
	return r
}

// SnapshotFromRecord rebuilds a snapshot from a Record written by
// SnapshotRecord or by the CSV sink. Unknown columns are ignored.
func SnapshotFromRecord(r Record) (metrics.Snapshot, error) {
	var s metrics.Snapshot

	ts, err := parseTimestamp(r[ColTimestamp])
	if err != nil {
		return s, err
	}
	s.Timestamp = ts
	s.SessionID = utils.ToString(r[ColSessionID])
	s.CPUPercent = utils.ToFloat64(r[ColCPUPercent])
	s.MemoryPercent = utils.ToFloat64(r[ColMemoryPercent])
	s.MemoryUsedGB = utils.ToFloat64(r[ColMemoryUsedGB])
	s.MemoryTotalGB = utils.ToFloat64(r[ColMemoryTotalGB])
	s.NetworkSentMB = utils.ToFloat64(r[ColNetworkSentMB])
	s.NetworkRecvMB = utils.ToFloat64(r[ColNetworkRecvMB])
	s.NetworkConnections = int(utils.ToFloat64(r[ColNetworkConnections]))

	type core struct {
		idx int
		val float64
	}
	var cores []core
	s.DiskUsage = make(map[string]float64)

	for k, v := range r {
		switch {
		case strings.HasPrefix(k, cpuCorePrefix):
			idx, err := strconv.Atoi(strings.TrimPrefix(k, cpuCorePrefix))
			if err == nil && idx >= 0 {
				cores = append(cores, core{idx, utils.ToFloat64(v)})
			}
		case strings.HasPrefix(k, diskUsagePrefix):
			s.DiskUsage[strings.TrimPrefix(k, diskUsagePrefix)] = utils.ToFloat64(v)
		}
	}

	if len(cores) > 0 {
		sort.Slice(cores, func(i, j int) bool { return cores[i].idx < cores[j].idx })
		s.CPUPerCore = make([]float64, cores[len(cores)-1].idx+1)
		for _, c := range cores {
			s.CPUPerCore[c.idx] = c.val
		}
	}

	if _, ok := s.DiskUsage["/"]; !ok {
		if v, ok := utils.ToFloat64Ok(r[ColDiskUsageRoot]); ok {
			s.DiskUsage["/"] = v
		}
	}

	if raw := utils.ToString(r[ColProcesses]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.TopProcesses); err != nil {
			return s, fmt.Errorf("invalid processes column: %w", err)
		}
	}

	return s, nil
}

func parseTimestamp(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", t, err)
		}
		return ts, nil
	case nil:
		return time.Time{}, fmt.Errorf("missing %s column", ColTimestamp)
	default:
		// Numeric timestamps are nanoseconds since the epoch.
		if f, ok := utils.ToFloat64Ok(t); ok {
			return time.Unix(0, int64(f)), nil
		}
		return time.Time{}, fmt.Errorf("invalid timestamp %v", v)
	}
}
