package exporting

import (
	"bufio"
	"fmt"
	"os"
	"sync"
)

const (
	recordBufferSize = 64 * 1024
	maxRecordLine    = 10 * 1024 * 1024
)

// encodeFunc appends one record to buf.
type encodeFunc func(buf *bufio.Writer, r Record) error

// recordFileWriter buffers snapshot records into a text file, one encode
// call per record. jsonl appends to an existing file, the delimited formats
// start a fresh one.
type recordFileWriter struct {
	appendTo bool
	encode   encodeFunc

	mu   sync.Mutex
	path string
	file *os.File
	buf  *bufio.Writer
}

func (w *recordFileWriter) Init(path string) error {
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if w.appendTo {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	w.path = path
	w.file = file
	w.buf = bufio.NewWriterSize(file, recordBufferSize)
	return nil
}

func (w *recordFileWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.encode(w.buf, record)
}

func (w *recordFileWriter) WriteBatch(records []Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range records {
		if err := w.encode(w.buf, r); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func (w *recordFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf == nil {
		return nil
	}
	return w.buf.Flush()
}

func (w *recordFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", w.path, flushErr)
	}
	return closeErr
}

func (w *recordFileWriter) Path() string { return w.path }
