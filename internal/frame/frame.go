// Package frame loads simulation CSV output into an in-memory columnar table.
//
// A Frame is an Arrow record of nullable float64 columns, addressable by the
// header name and ordered as the rows appear in the file. BSim loggers write
// two quirks that the loader accepts:
//
//   - "*_ALL.csv" files declare two columns but append one value per bacterium
//     to every row. Fields past the header width are dropped.
//   - Settings-style files start with key,value preamble lines before the
//     header. Options.SkipRows skips them.
package frame

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ErrColumnNotFound is returned when a requested column is not in the header.
var ErrColumnNotFound = errors.New("column not found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options tunes how a CSV file is read.
type Options struct {
	// SkipRows is the number of records before the header line to discard.
	SkipRows int `json:"skip_rows,omitempty" yaml:"skip_rows,omitempty"`
}

// Frame is an immutable table of float64 columns.
type Frame struct {
	name      string
	record    arrow.Record
	index     map[string]int
	truncated int
}

// Load reads the CSV file at path.
func Load(path string, opts Options) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path), opts)
}

// Read parses CSV data from r. name identifies the source in error messages.
// A leading UTF-8 byte order mark is skipped.
func Read(r io.Reader, name string, opts Options) (*Frame, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("%s: file ended while skipping %d preamble rows", name, opts.SkipRows)
			}
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: file is empty", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	names, index, err := columnNames(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	mem := memory.NewGoAllocator()
	builders := make([]*array.Float64Builder, len(names))
	for i := range builders {
		builders[i] = array.NewFloat64Builder(mem)
		defer builders[i].Release()
	}

	truncated := 0
	rows := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		line, _ := cr.FieldPos(0)
		if len(rec) < len(names) {
			return nil, fmt.Errorf("%s: line %d has %d fields, want %d", name, line, len(rec), len(names))
		}
		if len(rec) > len(names) {
			truncated++
		}

		for i, b := range builders {
			cell := strings.TrimSpace(rec[i])
			if cell == "" {
				b.AppendNull()
				continue
			}
			v, err := parseFloat(cell)
			if err != nil {
				return nil, fmt.Errorf("%s: line %d column %q: %w", name, line, names[i], err)
			}
			b.Append(v)
		}
		rows++
	}

	fields := make([]arrow.Field, len(names))
	cols := make([]arrow.Array, len(names))
	for i, b := range builders {
		fields[i] = arrow.Field{Name: names[i], Type: arrow.PrimitiveTypes.Float64, Nullable: true}
		cols[i] = b.NewArray()
	}
	schema := arrow.NewSchema(fields, nil)
	record := array.NewRecord(schema, cols, int64(rows))
	for _, c := range cols {
		c.Release()
	}

	return &Frame{
		name:      name,
		record:    record,
		index:     index,
		truncated: truncated,
	}, nil
}

// columnNames trims header cells and indexes them by name.
// Blank names become "column_<n>" (1-based); duplicates are rejected.
func columnNames(header []string) ([]string, map[string]int, error) {
	names := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		if _, dup := index[n]; dup {
			return nil, nil, fmt.Errorf("duplicate column %q in header", n)
		}
		names[i] = n
		index[n] = i
	}
	return names, index, nil
}

// parseFloat accepts "." decimals and, failing that, a single "," decimal
// separator as written by locales that use one.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return v, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if v, err2 := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err2 == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("not a number: %q", s)
}

// Name returns the source name the frame was read from.
func (f *Frame) Name() string { return f.name }

// NumRows returns the number of data rows.
func (f *Frame) NumRows() int { return int(f.record.NumRows()) }

// Truncated returns how many rows carried fields beyond the header width.
func (f *Frame) Truncated() int { return f.truncated }

// Columns returns the column names in header order.
func (f *Frame) Columns() []string {
	fields := f.record.Schema().Fields()
	out := make([]string, len(fields))
	for i, fd := range fields {
		out[i] = fd.Name
	}
	return out
}

// HasColumn reports whether name is in the header.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Float64s returns a copy of the named column. Null cells are NaN.
func (f *Frame) Float64s(name string) ([]float64, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", f.name, ErrColumnNotFound, name)
	}

	col := f.record.Column(i).(*array.Float64)
	out := make([]float64, col.Len())
	for j := range out {
		if col.IsNull(j) {
			out[j] = math.NaN()
			continue
		}
		out[j] = col.Value(j)
	}
	return out, nil
}

// Record exposes the backing Arrow record. The frame keeps ownership.
func (f *Frame) Record() arrow.Record { return f.record }

// Release frees the Arrow buffers. The frame must not be used afterwards.
func (f *Frame) Release() {
	if f.record != nil {
		f.record.Release()
		f.record = nil
	}
}
