package exporting

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"SystemMonitor/pkg/metrics"
	"SystemMonitor/pkg/utils"
)

// LoadHistory reads recorded snapshots from a JSON metrics file or any
// registered record format, ordered by timestamp.
func LoadHistory(path string) ([]metrics.Snapshot, error) {
	var snaps []metrics.Snapshot

	if strings.EqualFold(filepath.Ext(path), ".json") {
		entries, err := LoadJSONHistory(path)
		if err != nil {
			return nil, err
		}
		snaps = make([]metrics.Snapshot, len(entries))
		for i, e := range entries {
			snaps[i] = e.Snapshot()
		}
	} else {
		records, err := LoadRecords(path)
		if err != nil {
			return nil, err
		}
		snaps = make([]metrics.Snapshot, 0, len(records))
		for i, r := range records {
			s, err := SnapshotFromRecord(r)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
			snaps = append(snaps, s)
		}
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	return snaps, nil
}

// Summary aggregates a recorded window.
type Summary struct {
	Count    int
	Start    time.Time
	End      time.Time
	CPUAvg   float64
	CPUMax   float64
	MemAvg   float64
	MemMax   float64
	SentMB   float64
	RecvMB   float64
	Sessions int
}

// Summarize computes averages and peaks over snaps, which must be ordered by
// time. Network totals are the change between the first and last snapshot.
func Summarize(snaps []metrics.Snapshot) Summary {
	var sum Summary
	if len(snaps) == 0 {
		return sum
	}

	sum.Count = len(snaps)
	sum.Start = snaps[0].Timestamp
	sum.End = snaps[len(snaps)-1].Timestamp

	sessions := make(map[string]struct{})
	var cpuTotal, memTotal float64
	for _, s := range snaps {
		cpuTotal += s.CPUPercent
		memTotal += s.MemoryPercent
		if s.CPUPercent > sum.CPUMax {
			sum.CPUMax = s.CPUPercent
		}
		if s.MemoryPercent > sum.MemMax {
			sum.MemMax = s.MemoryPercent
		}
		if s.SessionID != "" {
			sessions[s.SessionID] = struct{}{}
		}
	}
	sum.CPUAvg = cpuTotal / float64(sum.Count)
	sum.MemAvg = memTotal / float64(sum.Count)
	sum.Sessions = len(sessions)

	delta := DeltaRecord(
		SnapshotRecord(snaps[0]),
		SnapshotRecord(snaps[len(snaps)-1]),
		sum.End.Sub(sum.Start).Milliseconds(),
	)
	sum.SentMB = math.Max(0, utils.ToFloat64(delta[ColNetworkSentMB]))
	sum.RecvMB = math.Max(0, utils.ToFloat64(delta[ColNetworkRecvMB]))
	return sum
}

// ExportHistory writes snaps to path in the format its extension names.
func ExportHistory(path string, snaps []metrics.Snapshot) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	if format == "json" {
		env := newEnvelope()
		for _, s := range snaps {
			env.Metrics = append(env.Metrics, NewJSONEntry(s))
		}
		if n := len(env.Metrics); n > MaxJSONEntries {
			env.Metrics = env.Metrics[n-MaxJSONEntries:]
		}
		return writeEnvelope(path, env)
	}

	records := make([]Record, len(snaps))
	for i, s := range snaps {
		records[i] = SnapshotRecord(s)
	}
	return SaveRecords(path, records)
}
