package exporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"SystemMonitor/pkg/metrics"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)

func sampleSnapshot(i int) metrics.Snapshot {
	return metrics.Snapshot{
		Timestamp:     baseTime.Add(time.Duration(i) * time.Second),
		SessionID:     "session-a",
		CPUPercent:    float64(10 + i),
		CPUPerCore:    []float64{float64(i), 50},
		MemoryPercent: 40.5,
		MemoryUsedGB:  3.25,
		MemoryTotalGB: 8,
		DiskUsage:     map[string]float64{"/": 61.234, "/home": 20},
		NetworkSentMB: float64(100 + i),
		NetworkRecvMB: float64(200 + 2*i),

		NetworkConnections: 12,
		TopProcesses: []metrics.ProcessSummary{
			{PID: 10, Name: "alpha", CPUPercent: 30, MemoryPercent: 1},
			{PID: 11, Name: "beta", CPUPercent: 20, MemoryPercent: 2},
			{PID: 12, Name: "gamma", CPUPercent: 10, MemoryPercent: 3},
			{PID: 13, Name: "delta", CPUPercent: 5, MemoryPercent: 4},
		},
	}
}

// ============================================================================
// JSON sink
// ============================================================================

func TestJSONSinkCapsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	sink, err := NewJSONSink(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	for i := 0; i < 105; i++ {
		if err := sink.Consume(sampleSnapshot(i)); err != nil {
			t.Fatalf("Consume %d: %v", i, err)
		}
	}

	entries, err := LoadJSONHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != MaxJSONEntries {
		t.Fatalf("expected %d entries, got %d", MaxJSONEntries, len(entries))
	}
	if got := entries[0].CPU.TotalPercent; got != 15 {
		t.Errorf("oldest entry should be snapshot 5 (cpu 15), got %v", got)
	}
	if got := entries[99].CPU.TotalPercent; got != 114 {
		t.Errorf("newest entry should be snapshot 104 (cpu 114), got %v", got)
	}
}

func TestJSONSinkEntryShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	sink, err := NewJSONSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Consume(sampleSnapshot(0)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if raw["version"] != "1.0" {
		t.Errorf("expected version 1.0, got %v", raw["version"])
	}

	entry := raw["metrics"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"timestamp", "cpu", "memory", "disk", "network", "processes"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("entry missing %q", key)
		}
	}
	cpu := entry["cpu"].(map[string]interface{})
	if cpu["total_percent"] != float64(10) {
		t.Errorf("unexpected total_percent %v", cpu["total_percent"])
	}
	if procs := entry["processes"].([]interface{}); len(procs) != JSONProcessLimit {
		t.Errorf("expected %d processes, got %d", JSONProcessLimit, len(procs))
	}
}

func TestJSONSinkRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	sink, err := NewJSONSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Consume(sampleSnapshot(0)); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadJSONHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a fresh envelope with 1 entry, got %d", len(entries))
	}
}

func TestJSONSinkLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewJSONSink(filepath.Join(dir, "metrics.json"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := sink.Consume(sampleSnapshot(i)); err != nil {
			t.Fatal(err)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name()
		}
		t.Errorf("expected only metrics.json, found %v", names)
	}
}

func TestJSONEntryRoundTrip(t *testing.T) {
	orig := sampleSnapshot(3)
	back := NewJSONEntry(orig).Snapshot()

	if !back.Timestamp.Equal(orig.Timestamp) || back.CPUPercent != orig.CPUPercent {
		t.Errorf("timestamp/cpu mismatch: %+v", back)
	}
	if len(back.TopProcesses) != JSONProcessLimit {
		t.Errorf("expected %d processes, got %d", JSONProcessLimit, len(back.TopProcesses))
	}
	if back.DiskUsage["/home"] != 20 {
		t.Errorf("disk usage lost: %v", back.DiskUsage)
	}
}

// ============================================================================
// CSV sink
// ============================================================================

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestCSVSinkHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")

	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Consume(sampleSnapshot(0)); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening appends without a second header.
	sink, err = NewCSVSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Consume(sampleSnapshot(1)); err != nil {
		t.Fatal(err)
	}
	sink.Close()

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}

	want := "timestamp,cpu_percent,memory_percent,memory_used_gb,memory_total_gb,disk_usage_root,network_sent_mb,network_recv_mb,network_connections"
	if got := strings.Join(rows[0], ","); got != want {
		t.Errorf("header = %s; want %s", got, want)
	}

	row := rows[1]
	if row[0] != "2024-03-01T12:00:00.123456789Z" {
		t.Errorf("timestamp = %s", row[0])
	}
	if row[1] != "10.00" || row[3] != "3.25" || row[5] != "61.23" || row[8] != "12" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestCSVSinkMissingRootDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatal(err)
	}
	snap := sampleSnapshot(0)
	snap.DiskUsage = map[string]float64{"C:\\": 10}
	if err := sink.Consume(snap); err != nil {
		t.Fatal(err)
	}
	sink.Close()

	rows := readCSV(t, path)
	if rows[1][5] != "0.00" {
		t.Errorf("expected disk_usage_root 0.00, got %s", rows[1][5])
	}
}

// ============================================================================
// Console sink
// ============================================================================

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, 2)

	if err := sink.Consume(sampleSnapshot(0)); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"CPU: 10.0%", "Memory: 40.5%", "/home: 20.0%", "Connections: 12", "alpha", "beta"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "gamma") {
		t.Error("process table should be capped at 2 rows")
	}
}

func TestConsoleSinkNoProcesses(t *testing.T) {
	var buf bytes.Buffer
	snap := sampleSnapshot(0)
	snap.TopProcesses = nil

	if err := NewConsoleSink(&buf, 0).Consume(snap); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Top processes") {
		t.Error("process section should be omitted when empty")
	}
}

// ============================================================================
// Streaming formats
// ============================================================================

func TestExporterRoundTrip(t *testing.T) {
	for _, format := range []string{"jsonl", "parquet", "tsv"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "metrics"+GetExtension(format))

			sink, err := NewSink("", path, SinkOptions{})
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 3; i++ {
				if err := sink.Consume(sampleSnapshot(i)); err != nil {
					t.Fatal(err)
				}
			}
			if err := sink.Close(); err != nil {
				t.Fatal(err)
			}

			snaps, err := LoadHistory(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(snaps) != 3 {
				t.Fatalf("expected 3 snapshots, got %d", len(snaps))
			}

			got := snaps[2]
			if !got.Timestamp.Equal(baseTime.Add(2 * time.Second)) {
				t.Errorf("timestamp = %v", got.Timestamp)
			}
			if got.CPUPercent != 12 || got.NetworkConnections != 12 {
				t.Errorf("cpu=%v conns=%d", got.CPUPercent, got.NetworkConnections)
			}
			if len(got.CPUPerCore) != 2 || got.CPUPerCore[0] != 2 {
				t.Errorf("per core = %v", got.CPUPerCore)
			}
			if got.DiskUsage["/home"] != 20 {
				t.Errorf("disk usage = %v", got.DiskUsage)
			}
			if len(got.TopProcesses) != 4 || got.TopProcesses[0].Name != "alpha" {
				t.Errorf("processes = %v", got.TopProcesses)
			}
			if got.SessionID != "session-a" {
				t.Errorf("session = %q", got.SessionID)
			}
		})
	}
}

func TestJSONLAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.jsonl")
	for run := 0; run < 2; run++ {
		exp, err := NewExporter(path, "jsonl")
		if err != nil {
			t.Fatal(err)
		}
		if err := exp.Consume(sampleSnapshot(run)); err != nil {
			t.Fatal(err)
		}
		if err := exp.Close(); err != nil {
			t.Fatal(err)
		}
	}

	records, err := LoadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records across runs, got %d", len(records))
	}
}

func TestExporterRejectsWritesAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.tsv")
	exp, err := NewExporter(path, "tsv")
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.Consume(sampleSnapshot(0)); err != nil {
		t.Fatal(err)
	}
	if err := exp.Close(); err != nil {
		t.Fatal(err)
	}

	if err := exp.Consume(sampleSnapshot(1)); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Consume after Close: got %v, want ErrSinkClosed", err)
	}
	if err := exp.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if exp.Count() != 1 {
		t.Errorf("Count() = %d, want 1", exp.Count())
	}

	records, err := LoadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record on disk, got %d", len(records))
	}
}

func TestJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.jsonl")
	content := `{"timestamp":"2024-03-01T12:00:00Z","cpu_percent":1}
{"timestamp":"2024-03-01T12:00:01Z","cpu_per
{"timestamp":"2024-03-01T12:00:02Z","cpu_percent":3}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 valid records, got %d", len(records))
	}
}

func TestDelimitedSnapshotLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	s := sampleSnapshot(0)
	s.SessionID = "20240301"
	if err := SaveRecords(path, []Record{SnapshotRecord(s), SnapshotRecord(sampleSnapshot(1))}); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	header := rows[0]
	for i, col := range CSVColumns {
		if header[i] != col {
			t.Fatalf("column %d = %q, want %q (header %v)", i, header[i], col, header)
		}
	}
	if rest := header[len(CSVColumns):]; !sort.StringsAreSorted(rest) {
		t.Errorf("extra columns not sorted: %v", rest)
	}

	records, err := LoadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := records[0][ColSessionID]; got != "20240301" {
		t.Errorf("session id = %#v, want the string back", got)
	}
	if got := records[0][ColNetworkConnections]; got != int64(12) {
		t.Errorf("connections = %#v, want int64(12)", got)
	}
	if got := records[1][ColCPUPercent]; got != int64(11) {
		t.Errorf("cpu = %#v, want int64(11)", got)
	}
}

func TestLoadHistoryFromCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	sink, err := NewCSVSink(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := sink.Consume(sampleSnapshot(i)); err != nil {
			t.Fatal(err)
		}
	}
	sink.Close()

	snaps, err := LoadHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[1].CPUPercent != 11 {
		t.Errorf("cpu = %v", snaps[1].CPUPercent)
	}
	if snaps[0].DiskUsage["/"] != 61.23 {
		t.Errorf("root disk = %v", snaps[0].DiskUsage["/"])
	}
}

// ============================================================================
// Sink factory
// ============================================================================

func TestNewSink(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		format  string
		path    string
		wantErr error
	}{
		{"console", "console", "", nil},
		{"csv by extension", "", filepath.Join(dir, "a.csv"), nil},
		{"json by extension", "", filepath.Join(dir, "a.json"), nil},
		{"jsonl by extension", "", filepath.Join(dir, "a.jsonl"), nil},
		{"parquet by name", "parquet", filepath.Join(dir, "b.parquet"), nil},
		{"unknown extension", "", filepath.Join(dir, "a.xml"), ErrUnsupportedFormat},
		{"unknown name", "yaml", filepath.Join(dir, "a.yaml"), ErrUnsupportedFormat},
		{"stream without path", "jsonl", "", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewSink(tt.format, tt.path, SinkOptions{Out: io.Discard})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			sink.Close()
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"out.csv":     "csv",
		"out.JSON":    "json",
		"out.jsonl":   "jsonl",
		"out.ndjson":  "jsonl",
		"out.parquet": "parquet",
		"out.tsv":     "tsv",
	}
	for path, want := range tests {
		got, err := FormatForPath(path)
		if err != nil || got != want {
			t.Errorf("FormatForPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatForPath("out.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

// ============================================================================
// History
// ============================================================================

func TestSummarize(t *testing.T) {
	snaps := []metrics.Snapshot{sampleSnapshot(0), sampleSnapshot(1), sampleSnapshot(2)}
	snaps[1].MemoryPercent = 70
	snaps[2].SessionID = "session-b"

	sum := Summarize(snaps)

	if sum.Count != 3 {
		t.Errorf("count = %d", sum.Count)
	}
	if sum.CPUAvg != 11 || sum.CPUMax != 12 {
		t.Errorf("cpu avg=%v max=%v", sum.CPUAvg, sum.CPUMax)
	}
	if sum.MemMax != 70 {
		t.Errorf("mem max = %v", sum.MemMax)
	}
	if sum.SentMB != 2 || sum.RecvMB != 4 {
		t.Errorf("network delta sent=%v recv=%v", sum.SentMB, sum.RecvMB)
	}
	if sum.Sessions != 2 {
		t.Errorf("sessions = %d", sum.Sessions)
	}
	if Summarize(nil).Count != 0 {
		t.Error("empty history should summarize to zero")
	}
}

func TestDeltaRecord(t *testing.T) {
	initial := Record{ColTimestamp: "a", "x": 1.5, "n": int64(4), ColSessionID: "s", "only_initial": 1.0}
	final := Record{ColTimestamp: "b", "x": 4.0, "n": int64(10), ColSessionID: "s", "only_final": 2.0}

	d := DeltaRecord(initial, final, 1000)

	if d["x"] != 2.5 || d["n"] != float64(6) {
		t.Errorf("numeric delta wrong: x=%v n=%v", d["x"], d["n"])
	}
	if d[ColSessionID] != "s" {
		t.Errorf("string column should keep final value, got %v", d[ColSessionID])
	}
	if d["_delta_start_ts"] != "a" || d["_delta_end_ts"] != "b" || d["_delta_duration_ms"] != int64(1000) {
		t.Errorf("window metadata wrong: %v", d)
	}
	if d["only_initial"] != 1.0 || d["only_final"] != 2.0 {
		t.Errorf("one-sided columns dropped: %v", d)
	}
}

func TestExportHistory(t *testing.T) {
	dir := t.TempDir()
	snaps := []metrics.Snapshot{sampleSnapshot(0), sampleSnapshot(1)}

	for _, name := range []string{"out.json", "out.csv", "out.parquet"} {
		path := filepath.Join(dir, name)
		if err := ExportHistory(path, snaps); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		back, err := LoadHistory(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(back) != 2 || back[1].CPUPercent != 11 {
			t.Errorf("%s: unexpected history %+v", name, back)
		}
	}
}
