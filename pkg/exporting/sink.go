package exporting

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"SystemMonitor/pkg/metrics"
)

// Sink consumes snapshots and owns an output that must be closed.
type Sink interface {
	Consume(s metrics.Snapshot) error
	io.Closer
}

// SinkOptions carries settings shared by the sink constructors.
type SinkOptions struct {
	// Out is where the console sink writes.
	Out io.Writer
	// TopProcesses caps the console process table.
	TopProcesses int
}

// NewSink builds a sink by format name. File sinks take the format from the
// path extension when format is empty.
func NewSink(format, path string, opts SinkOptions) (Sink, error) {
	format = strings.ToLower(format)
	if format == "" && path != "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch format {
	case "console":
		return NewConsoleSink(opts.Out, opts.TopProcesses), nil
	case "csv":
		return NewCSVSink(path)
	case "json":
		return NewJSONSink(path)
	}

	if path == "" {
		return nil, fmt.Errorf("%w: %q needs an output path", ErrUnsupportedFormat, format)
	}
	if _, ok := Get(format); ok {
		return NewExporter(path, format)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// FormatForPath returns the sink format implied by path's extension.
func FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return "csv", nil
	case ".json":
		return "json", nil
	}
	if f, ok := GetByExtension(ext); ok {
		return f.Name(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
