package graphing

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SystemMonitor/pkg/exporting"
	"SystemMonitor/pkg/metrics"
)

func init() {
	log.SetOutput(io.Discard)
}

func history(n int) []metrics.Snapshot {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	snaps := make([]metrics.Snapshot, n)
	for i := range snaps {
		snaps[i] = metrics.Snapshot{
			Timestamp:     start.Add(time.Duration(i) * time.Second),
			SessionID:     "s1",
			CPUPercent:    float64(10 * i),
			CPUPerCore:    []float64{1, 2},
			MemoryPercent: 50,
			DiskUsage:     map[string]float64{"/": 40},
			NetworkSentMB: float64(i),
			NetworkRecvMB: float64(2 * i),
		}
	}
	return snaps
}

func TestGenerate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report", "metrics.html")

	if err := Generate(history(5), out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{"System Monitor Report", "CPU Usage", "Memory Usage", "Network Throughput", "summary-table"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestGenerateTooFewSnapshots(t *testing.T) {
	if err := Generate(history(1), filepath.Join(t.TempDir(), "x.html")); err == nil {
		t.Error("expected error for a single snapshot")
	}
}

func TestGenerateFromFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "metrics.json")
	if err := exporting.ExportHistory(in, history(3)); err != nil {
		t.Fatal(err)
	}
	if err := GenerateFromFile(in, filepath.Join(dir, "out.html")); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSeriesRates(t *testing.T) {
	s := buildSeries(history(3), "Sent", "MB", func(s metrics.Snapshot) float64 { return s.NetworkSentMB })

	if len(s.Values) != 3 || len(s.Deltas) != 2 {
		t.Fatalf("values=%d deltas=%d", len(s.Values), len(s.Deltas))
	}
	for i, d := range s.Deltas {
		if d != 1 {
			t.Errorf("delta %d = %v; want 1 MB/s", i, d)
		}
	}
}

func TestBuildCoreSeriesPads(t *testing.T) {
	snaps := history(2)
	snaps[1].CPUPerCore = []float64{5, 6, 7}

	series := buildCoreSeries(snaps)

	if len(series) != 3 {
		t.Fatalf("expected 3 core series, got %d", len(series))
	}
	if series[2].Values[0] != 0 || series[2].Values[1] != 7 {
		t.Errorf("core 2 values = %v", series[2].Values)
	}
}
