// Package graphing renders recorded snapshots as an interactive HTML report.
package graphing

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"SystemMonitor/pkg/exporting"
	"SystemMonitor/pkg/metrics"

	"github.com/go-echarts/go-echarts/v2/components"
)

// MinSnapshots is the smallest history that yields a meaningful chart.
const MinSnapshots = 2

// Series is one named metric over time.
type Series struct {
	Name   string
	Unit   string
	Labels []string
	Values []float64
	// Deltas holds per-second rates between consecutive points.
	Deltas []float64
}

// Generate writes an HTML report for snaps to outputPath.
func Generate(snaps []metrics.Snapshot, outputPath string) error {
	if len(snaps) < MinSnapshots {
		return fmt.Errorf("need at least %d snapshots to generate graphs, got %d", MinSnapshots, len(snaps))
	}

	sorted := make([]metrics.Snapshot, len(snaps))
	copy(sorted, snaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	page := components.NewPage()
	page.PageTitle = "System Monitor Report"

	page.AddCharts(createMultiLineChart("CPU Usage", "%", timeLabels(sorted), []*Series{
		buildSeries(sorted, "Total", "%", func(s metrics.Snapshot) float64 { return s.CPUPercent }),
	}))
	if cores := buildCoreSeries(sorted); len(cores) > 0 {
		page.AddCharts(createMultiLineChart("CPU Per Core", "%", timeLabels(sorted), cores))
	}
	page.AddCharts(createMultiLineChart("Memory Usage", "%", timeLabels(sorted), []*Series{
		buildSeries(sorted, "Memory", "%", func(s metrics.Snapshot) float64 { return s.MemoryPercent }),
	}))
	if disks := buildDiskSeries(sorted); len(disks) > 0 {
		page.AddCharts(createMultiLineChart("Disk Usage", "%", timeLabels(sorted), disks))
	}

	sent := buildSeries(sorted, "Sent", "MB", func(s metrics.Snapshot) float64 { return s.NetworkSentMB })
	recv := buildSeries(sorted, "Received", "MB", func(s metrics.Snapshot) float64 { return s.NetworkRecvMB })
	page.AddCharts(createRateChart("Network Throughput", "MB/s", timeLabels(sorted)[1:], []*Series{sent, recv}))
	page.AddCharts(createLineChart(buildSeries(sorted, "Connections", "", func(s metrics.Snapshot) float64 {
		return float64(s.NetworkConnections)
	})))

	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}

	html, err := injectHeader(buf.String(), exporting.Summarize(sorted))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Printf("Generated graphs: %s (%d snapshots)", outputPath, len(sorted))
	return nil
}

// GenerateFromFile loads history from inputPath and writes the report.
func GenerateFromFile(inputPath, outputPath string) error {
	snaps, err := exporting.LoadHistory(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return Generate(snaps, outputPath)
}

func timeLabels(snaps []metrics.Snapshot) []string {
	labels := make([]string, len(snaps))
	for i, s := range snaps {
		labels[i] = s.Timestamp.Format("15:04:05.000")
	}
	return labels
}

func buildSeries(snaps []metrics.Snapshot, name, unit string, value func(metrics.Snapshot) float64) *Series {
	s := &Series{Name: name, Unit: unit, Labels: timeLabels(snaps)}
	s.Values = make([]float64, len(snaps))
	for i, snap := range snaps {
		s.Values[i] = value(snap)
	}
	for i := 1; i < len(snaps); i++ {
		dt := snaps[i].Timestamp.Sub(snaps[i-1].Timestamp).Seconds()
		if dt <= 0 {
			s.Deltas = append(s.Deltas, 0)
			continue
		}
		s.Deltas = append(s.Deltas, (s.Values[i]-s.Values[i-1])/dt)
	}
	return s
}

// buildCoreSeries uses the widest per-core reading; shorter rows pad with 0.
func buildCoreSeries(snaps []metrics.Snapshot) []*Series {
	cores := 0
	for _, s := range snaps {
		if len(s.CPUPerCore) > cores {
			cores = len(s.CPUPerCore)
		}
	}
	series := make([]*Series, 0, cores)
	for c := 0; c < cores; c++ {
		idx := c
		series = append(series, buildSeries(snaps, fmt.Sprintf("Core %d", c), "%", func(s metrics.Snapshot) float64 {
			if idx < len(s.CPUPerCore) {
				return s.CPUPerCore[idx]
			}
			return 0
		}))
	}
	return series
}

func buildDiskSeries(snaps []metrics.Snapshot) []*Series {
	mounts := make(map[string]struct{})
	for _, s := range snaps {
		for m := range s.DiskUsage {
			mounts[m] = struct{}{}
		}
	}
	names := make([]string, 0, len(mounts))
	for m := range mounts {
		names = append(names, m)
	}
	sort.Strings(names)

	series := make([]*Series, 0, len(names))
	for _, m := range names {
		mount := m
		series = append(series, buildSeries(snaps, mount, "%", func(s metrics.Snapshot) float64 {
			return s.DiskUsage[mount]
		}))
	}
	return series
}
