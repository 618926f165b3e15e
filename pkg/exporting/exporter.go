package exporting

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"SystemMonitor/pkg/metrics"
)

// ExporterFlushEvery is how many records an Exporter buffers between flushes.
const ExporterFlushEvery = 50

var ErrSinkClosed = errors.New("sink closed")

// Exporter streams snapshots into any registered record format (jsonl,
// parquet, tsv).
type Exporter struct {
	path   string
	format string
	writer Writer

	mu     sync.Mutex
	count  int
	closed bool
}

func NewExporter(path, format string) (*Exporter, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, ok := Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	writer := f.Writer()
	if err := writer.Init(path); err != nil {
		return nil, fmt.Errorf("failed to initialize writer: %w", err)
	}

	return &Exporter{path: path, format: f.Name(), writer: writer}, nil
}

func (e *Exporter) Path() string   { return e.path }
func (e *Exporter) Format() string { return e.format }

func (e *Exporter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

func (e *Exporter) Consume(s metrics.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("%w: %s", ErrSinkClosed, e.path)
	}
	if err := e.writer.Write(SnapshotRecord(s)); err != nil {
		return err
	}
	e.count++
	if e.count%ExporterFlushEvery == 0 {
		if err := e.writer.Flush(); err != nil {
			return fmt.Errorf("flush %s: %w", e.path, err)
		}
	}
	return nil
}

// Close flushes and closes the writer. Later Consume calls fail with
// ErrSinkClosed; a second Close is a no-op.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.writer.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %d records to %s (%s)", e.count, e.path, e.format)
	return nil
}
