package exporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"SystemMonitor/pkg/metrics"
)

// CSVColumns is the fixed column order of CSVSink files.
var CSVColumns = []string{
	ColTimestamp,
	ColCPUPercent,
	ColMemoryPercent,
	ColMemoryUsedGB,
	ColMemoryTotalGB,
	ColDiskUsageRoot,
	ColNetworkSentMB,
	ColNetworkRecvMB,
	ColNetworkConnections,
}

// CSVSink appends one row per snapshot. The header is written only when the
// file is new or empty.
type CSVSink struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

func NewCSVSink(path string) (*CSVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("csv sink: empty path")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat csv file: %w", err)
	}

	s := &CSVSink{path: path, file: file, writer: csv.NewWriter(file)}
	if stat.Size() == 0 {
		if err := s.writeRow(CSVColumns); err != nil {
			file.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVSink) Consume(snap metrics.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeRow(csvRow(snap))
}

func csvRow(snap metrics.Snapshot) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	return []string{
		snap.Timestamp.Format(time.RFC3339Nano),
		f(snap.CPUPercent),
		f(snap.MemoryPercent),
		f(snap.MemoryUsedGB),
		f(snap.MemoryTotalGB),
		f(snap.RootDiskUsage()),
		f(snap.NetworkSentMB),
		f(snap.NetworkRecvMB),
		strconv.Itoa(snap.NetworkConnections),
	}
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv row: %w", err)
	}
	return nil
}

func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
