package exporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"SystemMonitor/pkg/metrics"
)

const (
	JSONVersion = "1.0"
	// MaxJSONEntries is how many of the most recent snapshots a JSON file keeps.
	MaxJSONEntries = 100
	// JSONProcessLimit is how many top processes each JSON entry keeps.
	JSONProcessLimit = 3
)

// JSONEnvelope is the on-disk layout of a JSON metrics file.
type JSONEnvelope struct {
	Version string      `json:"version"`
	Metrics []JSONEntry `json:"metrics"`
}

type JSONEntry struct {
	Timestamp time.Time                `json:"timestamp"`
	SessionID string                   `json:"session_id,omitempty"`
	CPU       JSONCPU                  `json:"cpu"`
	Memory    JSONMemory               `json:"memory"`
	Disk      map[string]float64       `json:"disk"`
	Network   JSONNetwork              `json:"network"`
	Processes []metrics.ProcessSummary `json:"processes"`
}

type JSONCPU struct {
	TotalPercent float64   `json:"total_percent"`
	PerCore      []float64 `json:"per_core"`
}

type JSONMemory struct {
	Percent float64 `json:"percent"`
	UsedGB  float64 `json:"used_gb"`
	TotalGB float64 `json:"total_gb"`
}

type JSONNetwork struct {
	SentMB      float64 `json:"sent_mb"`
	RecvMB      float64 `json:"recv_mb"`
	Connections int     `json:"connections"`
}

// NewJSONEntry converts a snapshot, keeping only the first few processes.
func NewJSONEntry(s metrics.Snapshot) JSONEntry {
	s = s.Clone()
	procs := s.TopProcesses
	if len(procs) > JSONProcessLimit {
		procs = procs[:JSONProcessLimit]
	}
	if procs == nil {
		procs = []metrics.ProcessSummary{}
	}
	disk := s.DiskUsage
	if disk == nil {
		disk = map[string]float64{}
	}
	perCore := s.CPUPerCore
	if perCore == nil {
		perCore = []float64{}
	}
	return JSONEntry{
		Timestamp: s.Timestamp,
		SessionID: s.SessionID,
		CPU:       JSONCPU{TotalPercent: s.CPUPercent, PerCore: perCore},
		Memory:    JSONMemory{Percent: s.MemoryPercent, UsedGB: s.MemoryUsedGB, TotalGB: s.MemoryTotalGB},
		Disk:      disk,
		Network:   JSONNetwork{SentMB: s.NetworkSentMB, RecvMB: s.NetworkRecvMB, Connections: s.NetworkConnections},
		Processes: procs,
	}
}

// Snapshot converts the entry back. Processes beyond the stored few are lost.
func (e JSONEntry) Snapshot() metrics.Snapshot {
	s := metrics.Snapshot{
		Timestamp:          e.Timestamp,
		SessionID:          e.SessionID,
		CPUPercent:         e.CPU.TotalPercent,
		CPUPerCore:         e.CPU.PerCore,
		MemoryPercent:      e.Memory.Percent,
		MemoryUsedGB:       e.Memory.UsedGB,
		MemoryTotalGB:      e.Memory.TotalGB,
		DiskUsage:          e.Disk,
		NetworkSentMB:      e.Network.SentMB,
		NetworkRecvMB:      e.Network.RecvMB,
		NetworkConnections: e.Network.Connections,
		TopProcesses:       e.Processes,
	}
	return s.Clone()
}

// JSONSink keeps the most recent snapshots in a single JSON document. Each
// snapshot re-reads the file, appends, trims to MaxJSONEntries and replaces
// the file atomically, so readers never see a partial document.
type JSONSink struct {
	path string
	mu   sync.Mutex
}

func NewJSONSink(path string) (*JSONSink, error) {
	if path == "" {
		return nil, fmt.Errorf("json sink: empty path")
	}
	s := &JSONSink{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeEnvelope(path, newEnvelope()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newEnvelope() JSONEnvelope {
	return JSONEnvelope{Version: JSONVersion, Metrics: []JSONEntry{}}
}

func (s *JSONSink) Consume(snap metrics.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := readEnvelope(s.path)
	if err != nil {
		env = newEnvelope()
	}

	env.Metrics = append(env.Metrics, NewJSONEntry(snap))
	if n := len(env.Metrics); n > MaxJSONEntries {
		env.Metrics = env.Metrics[n-MaxJSONEntries:]
	}
	return writeEnvelope(s.path, env)
}

func (s *JSONSink) Path() string { return s.path }
func (s *JSONSink) Close() error { return nil }

func readEnvelope(path string) (JSONEnvelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JSONEnvelope{}, err
	}
	var env JSONEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return JSONEnvelope{}, fmt.Errorf("invalid metrics file %s: %w", path, err)
	}
	if env.Version == "" {
		env.Version = JSONVersion
	}
	return env, nil
}

// writeEnvelope writes to a temp file in the target directory and renames it
// over path.
func writeEnvelope(path string, env JSONEnvelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LoadJSONHistory reads the entries of a JSON metrics file.
func LoadJSONHistory(path string) ([]JSONEntry, error) {
	env, err := readEnvelope(path)
	if err != nil {
		return nil, err
	}
	return env.Metrics, nil
}
