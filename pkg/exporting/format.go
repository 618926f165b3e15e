// Package exporting writes snapshots to the console and to files, and reads
// recorded history back for the stats command.
package exporting

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// Record is a flat map form of one snapshot, used by the streaming formats.
type Record = map[string]interface{}

// Format is one on-disk record layout, looked up by name or extension.
type Format interface {
	Name() string
	Extensions() []string
	Reader() Reader
	Writer() Writer
}

// Reader loads a whole file in one Read call.
type Reader interface {
	Open(path string) error
	Read() ([]Record, error)
	Close() error
}

// Writer streams records to path. Init truncates or appends depending on
// the format.
type Writer interface {
	Init(path string) error
	Write(record Record) error
	WriteBatch(records []Record) error
	Flush() error
	Close() error
	Path() string
}

var (
	registryMu  sync.RWMutex
	registry    = make(map[string]Format)
	extRegistry = make(map[string]Format)
)

// Register adds f under its name and every extension it claims. Later
// registrations replace earlier ones.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(f.Name())] = f
	for _, ext := range f.Extensions() {
		extRegistry[normalizeExt(ext)] = f
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func Get(name string) (Format, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// GetByExtension accepts the extension with or without its leading dot.
func GetByExtension(ext string) (Format, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := extRegistry[normalizeExt(ext)]
	return f, ok
}

func GetByPath(path string) (Format, bool) {
	return GetByExtension(filepath.Ext(path))
}

// Names lists the registered format names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetExtension returns the primary file extension for a format name. "json"
// is the envelope written by JSONSink and is not a registry format.
func GetExtension(format string) string {
	if f, ok := Get(format); ok {
		if exts := f.Extensions(); len(exts) > 0 {
			return exts[0]
		}
	}
	return ".json"
}

func formatForFile(path string) (Format, error) {
	f, ok := GetByPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return f, nil
}

// LoadRecords reads every record of a file in a registered format.
func LoadRecords(path string) ([]Record, error) {
	f, err := formatForFile(path)
	if err != nil {
		return nil, err
	}

	reader := f.Reader()
	if err := reader.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer reader.Close()

	records, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s records from %s: %w", f.Name(), path, err)
	}
	return records, nil
}

// SaveRecords writes records to path in the format its extension names.
func SaveRecords(path string, records []Record) (err error) {
	f, err := formatForFile(path)
	if err != nil {
		return err
	}

	writer := f.Writer()
	if err := writer.Init(path); err != nil {
		return fmt.Errorf("failed to initialize %s writer: %w", f.Name(), err)
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := writer.WriteBatch(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}
