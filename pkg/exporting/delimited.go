package exporting

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"SystemMonitor/pkg/utils"
)

func init() {
	Register(delimitedFormat{name: "csv", ext: ".csv", comma: ','})
	Register(delimitedFormat{name: "tsv", ext: ".tsv", comma: '\t'})
}

// delimitedFormat is a header row followed by one SnapshotRecord per row.
// It also reads the files CSVSink writes, which share the leading columns.
type delimitedFormat struct {
	name  string
	ext   string
	comma rune
}

func (f delimitedFormat) Name() string         { return f.name }
func (f delimitedFormat) Extensions() []string { return []string{f.ext} }
func (f delimitedFormat) Reader() Reader       { return &delimitedReader{comma: f.comma} }
func (f delimitedFormat) Writer() Writer {
	return &recordFileWriter{encode: newRowEncoder(f.comma)}
}

// newRowEncoder fixes the header from the first record: the CSVSink columns
// it carries, then per-core, per-mount and any other columns sorted.
// Columns first seen in later records are not written.
func newRowEncoder(comma rune) encodeFunc {
	var (
		header []string
		cw     *csv.Writer
	)
	return func(buf *bufio.Writer, r Record) error {
		if cw == nil {
			// csv.NewWriter reuses buf as is, so flushing buf flushes rows.
			cw = csv.NewWriter(buf)
			cw.Comma = comma
			header = snapshotHeader(r)
			if err := cw.Write(header); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
		}
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = utils.FormatValue(r[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	}
}

func snapshotHeader(r Record) []string {
	header := make([]string, 0, len(r))
	for _, col := range CSVColumns {
		if _, ok := r[col]; ok {
			header = append(header, col)
		}
	}
	fixed := len(header)
	for col := range r {
		if !containsColumn(header[:fixed], col) {
			header = append(header, col)
		}
	}
	sort.Strings(header[fixed:])
	return header
}

func containsColumn(cols []string, col string) bool {
	for _, c := range cols {
		if c == col {
			return true
		}
	}
	return false
}

// textColumns stay strings when read back, even when they look numeric.
var textColumns = map[string]bool{
	ColTimestamp: true,
	ColSessionID: true,
	ColProcesses: true,
}

type delimitedReader struct {
	comma  rune
	file   *os.File
	rows   *csv.Reader
	header []string
}

func (r *delimitedReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	rows := csv.NewReader(file)
	rows.Comma = r.comma
	rows.FieldsPerRecord = -1
	rows.LazyQuotes = true

	header, err := rows.Read()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to read header: %w", err)
	}
	r.file = file
	r.rows = rows
	r.header = header
	return nil
}

func (r *delimitedReader) Read() ([]Record, error) {
	var records []Record
	for {
		row, err := r.rows.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("row %d: %w", len(records)+1, err)
		}
		rec := make(Record, len(row))
		for i, cell := range row {
			if i < len(r.header) && cell != "" {
				rec[r.header[i]] = parseCell(r.header[i], cell)
			}
		}
		records = append(records, rec)
	}
}

// parseCell types a numeric cell as int64 or float64 and a boolean as bool.
// Text columns and anything else stay as read.
func parseCell(col, cell string) interface{} {
	if textColumns[col] {
		return cell
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(cell); err == nil {
		return b
	}
	return cell
}

func (r *delimitedReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
