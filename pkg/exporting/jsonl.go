package exporting

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

func init() {
	Register(jsonlFormat{})
}

// jsonlFormat stores one SnapshotRecord per line. Writes append, so every
// monitor run pointed at the same file extends one history.
type jsonlFormat struct{}

func (jsonlFormat) Name() string         { return "jsonl" }
func (jsonlFormat) Extensions() []string { return []string{".jsonl", ".ndjson"} }
func (jsonlFormat) Reader() Reader       { return &jsonlReader{} }
func (jsonlFormat) Writer() Writer {
	return &recordFileWriter{appendTo: true, encode: encodeJSONLine}
}

func encodeJSONLine(buf *bufio.Writer, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := buf.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

type jsonlReader struct {
	path string
	file *os.File
}

func (r *jsonlReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	r.path = path
	r.file = file
	return nil
}

// Read keeps every line that decodes. A line cut short by an interrupted
// monitor run is dropped and counted in one warning.
func (r *jsonlReader) Read() ([]Record, error) {
	lines := bufio.NewScanner(r.file)
	lines.Buffer(make([]byte, recordBufferSize), maxRecordLine)

	var records []Record
	dropped := 0
	for lines.Scan() {
		line := bytes.TrimSpace(lines.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	if dropped > 0 {
		log.Printf("WARNING: dropped %d unreadable lines from %s", dropped, r.path)
	}
	if err := lines.Err(); err != nil {
		return records, fmt.Errorf("%s after %d records: %w", r.path, len(records), err)
	}
	return records, nil
}

func (r *jsonlReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
