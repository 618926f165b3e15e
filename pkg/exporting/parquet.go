package exporting

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/parquet-go/parquet-go"
)

// ParquetBatchSize is the number of buffered rows written per flush.
const ParquetBatchSize = 1000

func init() {
	Register(&ParquetFormat{})
}

// ParquetFormat handles Parquet files. The schema is fixed by the first
// record written; columns that only appear later are dropped.
type ParquetFormat struct{}

func (f *ParquetFormat) Name() string         { return "parquet" }
func (f *ParquetFormat) Extensions() []string { return []string{".parquet"} }
func (f *ParquetFormat) Reader() Reader       { return &ParquetReader{} }
func (f *ParquetFormat) Writer() Writer       { return &ParquetWriter{} }

type ParquetReader struct {
	file  *os.File
	pfile *parquet.File
}

func (r *ParquetReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat file: %w", err)
	}
	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to open parquet file: %w", err)
	}
	r.file = file
	r.pfile = pf
	return nil
}

func (r *ParquetReader) Read() ([]Record, error) {
	if r.pfile == nil {
		return nil, fmt.Errorf("reader not initialized")
	}

	fields := r.pfile.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}

	records := make([]Record, 0, r.pfile.NumRows())
	buf := make([]parquet.Row, 128)

	for _, rg := range r.pfile.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				records = append(records, rowToRecord(row, names))
			}
			if err == io.EOF || (err == nil && n == 0) {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to read rows: %w", err)
			}
		}
		rows.Close()
	}
	return records, nil
}

func rowToRecord(row parquet.Row, names []string) Record {
	record := make(Record, len(names))
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(names) || v.IsNull() {
			continue
		}
		switch v.Kind() {
		case parquet.Boolean:
			record[names[col]] = v.Boolean()
		case parquet.Int32:
			record[names[col]] = int64(v.Int32())
		case parquet.Int64:
			record[names[col]] = v.Int64()
		case parquet.Float:
			record[names[col]] = float64(v.Float())
		case parquet.Double:
			record[names[col]] = v.Double()
		default:
			record[names[col]] = string(v.ByteArray())
		}
	}
	return record
}

func (r *ParquetReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParquetWriter buffers rows and writes them through the Row API. The file
// is created on the first Write, once the schema is known.
type ParquetWriter struct {
	path    string
	file    *os.File
	writer  *parquet.Writer
	columns []string
	index   map[string]int
	buffer  []parquet.Row
	dropped map[string]bool
	mu      sync.Mutex
}

func (w *ParquetWriter) Init(path string) error {
	w.path = path
	w.buffer = make([]parquet.Row, 0, ParquetBatchSize)
	w.dropped = make(map[string]bool)
	return nil
}

func (w *ParquetWriter) initSchema(record Record) error {
	// parquet.Group orders fields by name, so column indices follow the
	// sorted key order.
	w.columns = make([]string, 0, len(record))
	for k := range record {
		w.columns = append(w.columns, k)
	}
	sort.Strings(w.columns)

	w.index = make(map[string]int, len(w.columns))
	group := make(parquet.Group, len(w.columns))
	for i, name := range w.columns {
		w.index[name] = i
		group[name] = parquetNode(record[name])
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.file = file
	w.writer = parquet.NewWriter(file, parquet.NewSchema("snapshot", group),
		parquet.Compression(&parquet.Snappy),
	)
	return nil
}

func parquetNode(val interface{}) parquet.Node {
	switch val.(type) {
	case int, int32, int64, uint32, uint64:
		return parquet.Optional(parquet.Int(64))
	case float32, float64:
		return parquet.Optional(parquet.Leaf(parquet.DoubleType))
	case bool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType))
	default:
		return parquet.Optional(parquet.String())
	}
}

func (w *ParquetWriter) toRow(record Record) parquet.Row {
	row := make(parquet.Row, len(w.columns))
	for i := range row {
		row[i] = parquet.NullValue().Level(0, 0, i)
	}
	for k, val := range record {
		i, ok := w.index[k]
		if !ok {
			if !w.dropped[k] {
				w.dropped[k] = true
				log.Printf("WARNING: parquet column %q not in schema, dropping", k)
			}
			continue
		}
		if val == nil {
			continue
		}
		row[i] = parquetValue(val).Level(0, 1, i)
	}
	return row
}

func parquetValue(val interface{}) parquet.Value {
	switch v := val.(type) {
	case bool:
		return parquet.BooleanValue(v)
	case int:
		return parquet.Int64Value(int64(v))
	case int32:
		return parquet.Int64Value(int64(v))
	case int64:
		return parquet.Int64Value(v)
	case uint32:
		return parquet.Int64Value(int64(v))
	case uint64:
		return parquet.Int64Value(int64(v))
	case float32:
		return parquet.DoubleValue(float64(v))
	case float64:
		return parquet.DoubleValue(v)
	case string:
		return parquet.ByteArrayValue([]byte(v))
	default:
		return parquet.ByteArrayValue([]byte(fmt.Sprintf("%v", v)))
	}
}

func (w *ParquetWriter) Write(record Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.write(record)
}

func (w *ParquetWriter) WriteBatch(records []Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, r := range records {
		if err := w.write(r); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

func (w *ParquetWriter) write(record Record) error {
	if w.writer == nil {
		if err := w.initSchema(record); err != nil {
			return err
		}
	}
	w.buffer = append(w.buffer, w.toRow(record))
	if len(w.buffer) >= ParquetBatchSize {
		return w.flushBuffer()
	}
	return nil
}

func (w *ParquetWriter) flushBuffer() error {
	if len(w.buffer) == 0 || w.writer == nil {
		return nil
	}
	if _, err := w.writer.WriteRows(w.buffer); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	w.buffer = w.buffer[:0]
	return nil
}

func (w *ParquetWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushBuffer(); err != nil {
		return err
	}
	if w.writer != nil {
		return w.writer.Flush()
	}
	return nil
}

func (w *ParquetWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer != nil {
		if err := w.writer.Close(); err != nil {
			w.file.Close()
			return err
		}
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *ParquetWriter) Path() string { return w.path }
