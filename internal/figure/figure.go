// Package figure binds declarative chart definitions to loaded frames.
//
// A Spec names an input CSV, an output HTML file, a rows x cols subplot grid
// and the traces drawn in it. Build checks the spec against a frame and
// produces a Built figure holding one x/y series per trace, ready to render.
package figure

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/frame"
)

// MaxGridSide bounds the rows and cols of a subplot grid.
const MaxGridSide = 6

// ErrInvalidSpec is returned when a Spec fails validation.
var ErrInvalidSpec = errors.New("invalid figure spec")

// Trace is one line drawn in one grid cell.
type Trace struct {
	// Name is the legend label. Defaults to Y.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// X is the x column. Defaults to the time column.
	X string `json:"x,omitempty" yaml:"x,omitempty"`

	// Y is the y column.
	Y string `json:"y" yaml:"y"`

	// Row and Col are the 1-based grid cell. Zero means 1.
	Row int `json:"row,omitempty" yaml:"row,omitempty"`
	Col int `json:"col,omitempty" yaml:"col,omitempty"`
}

// Spec describes one output figure.
type Spec struct {
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`

	// Rows and Cols size the subplot grid. Zero means 1.
	Rows int `json:"rows,omitempty" yaml:"rows,omitempty"`
	Cols int `json:"cols,omitempty" yaml:"cols,omitempty"`

	// SkipRows is passed to the loader for files with a preamble.
	SkipRows int `json:"skip_rows,omitempty" yaml:"skip_rows,omitempty"`

	Traces []Trace `json:"traces" yaml:"traces"`
}

// Normalized returns a copy of s with defaults filled in.
func (s Spec) Normalized() Spec {
	if s.Rows == 0 {
		s.Rows = 1
	}
	if s.Cols == 0 {
		s.Cols = 1
	}

	traces := make([]Trace, len(s.Traces))
	for i, t := range s.Traces {
		if t.X == "" {
			t.X = constants.TimeColumn
		}
		if t.Name == "" {
			t.Name = t.Y
		}
		if t.Row == 0 {
			t.Row = 1
		}
		if t.Col == 0 {
			t.Col = 1
		}
		traces[i] = t
	}
	s.Traces = traces
	return s
}

// Grid reports whether the figure has more than one cell.
func (s Spec) Grid() bool {
	n := s.Normalized()
	return n.Rows*n.Cols > 1
}

// Validate checks the normalized spec.
func (s Spec) Validate() error {
	n := s.Normalized()

	if strings.TrimSpace(n.Input) == "" {
		return fmt.Errorf("%w: input is required", ErrInvalidSpec)
	}
	if strings.TrimSpace(n.Output) == "" {
		return fmt.Errorf("%w: output is required for %s", ErrInvalidSpec, n.Input)
	}
	if !strings.EqualFold(filepath.Ext(n.Output), ".html") {
		return fmt.Errorf("%w: output %q must end in .html", ErrInvalidSpec, n.Output)
	}
	if n.Rows < 1 || n.Rows > MaxGridSide || n.Cols < 1 || n.Cols > MaxGridSide {
		return fmt.Errorf("%w: %s: grid %dx%d out of range 1..%d", ErrInvalidSpec, n.Output, n.Rows, n.Cols, MaxGridSide)
	}
	if n.SkipRows < 0 {
		return fmt.Errorf("%w: %s: skip_rows must be non-negative", ErrInvalidSpec, n.Output)
	}
	if len(n.Traces) == 0 {
		return fmt.Errorf("%w: %s: at least one trace is required", ErrInvalidSpec, n.Output)
	}

	for i, t := range n.Traces {
		if strings.TrimSpace(t.Y) == "" {
			return fmt.Errorf("%w: %s: trace %d has no y column", ErrInvalidSpec, n.Output, i+1)
		}
		if t.Row < 1 || t.Row > n.Rows || t.Col < 1 || t.Col > n.Cols {
			return fmt.Errorf("%w: %s: trace %q cell (%d,%d) outside %dx%d grid",
				ErrInvalidSpec, n.Output, t.Name, t.Row, t.Col, n.Rows, n.Cols)
		}
	}
	return nil
}

// Columns returns the distinct columns the spec reads, in first-use order.
func (s Spec) Columns() []string {
	n := s.Normalized()
	seen := make(map[string]bool)
	var cols []string
	for _, t := range n.Traces {
		for _, c := range []string{t.X, t.Y} {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// Series is a trace bound to data.
type Series struct {
	Name    string
	XColumn string
	YColumn string
	Row     int
	Col     int
	X       []float64
	Y       []float64
}

// Built is a figure ready to render.
type Built struct {
	Spec   Spec
	Series []Series
}

// Build binds spec to f. Every column is checked before any data is copied;
// the returned error lists all missing columns and wraps frame.ErrColumnNotFound.
func Build(spec Spec, f *frame.Frame) (*Built, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	spec = spec.Normalized()

	var missing []string
	for _, c := range spec.Columns() {
		if !f.HasColumn(c) {
			missing = append(missing, fmt.Sprintf("%q", c))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", f.Name(), frame.ErrColumnNotFound, strings.Join(missing, ", "))
	}

	cache := make(map[string][]float64)
	column := func(name string) ([]float64, error) {
		if v, ok := cache[name]; ok {
			return v, nil
		}
		v, err := f.Float64s(name)
		if err != nil {
			return nil, err
		}
		cache[name] = v
		return v, nil
	}

	b := &Built{Spec: spec, Series: make([]Series, 0, len(spec.Traces))}
	for _, t := range spec.Traces {
		x, err := column(t.X)
		if err != nil {
			return nil, err
		}
		y, err := column(t.Y)
		if err != nil {
			return nil, err
		}
		b.Series = append(b.Series, Series{
			Name:    t.Name,
			XColumn: t.X,
			YColumn: t.Y,
			Row:     t.Row,
			Col:     t.Col,
			X:       x,
			Y:       y,
		})
	}
	return b, nil
}

// Cell returns the series assigned to the 1-based grid cell, in spec order.
func (b *Built) Cell(row, col int) []Series {
	var out []Series
	for _, s := range b.Series {
		if s.Row == row && s.Col == col {
			out = append(out, s)
		}
	}
	return out
}

// Points returns the total number of points over all series.
func (b *Built) Points() int {
	n := 0
	for _, s := range b.Series {
		n += len(s.Y)
	}
	return n
}

// Digest is a hex SHA-256 over the series names, cells and values.
// Identical input data yields an identical digest.
func (b *Built) Digest() string {
	h := sha256.New()
	var buf [8]byte
	writeFloats := func(vs []float64) {
		for _, v := range vs {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	for _, s := range b.Series {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d,%d\x00%d\x00", s.Name, s.XColumn, s.YColumn, s.Row, s.Col, len(s.Y))
		writeFloats(s.X)
		writeFloats(s.Y)
	}
	return hex.EncodeToString(h.Sum(nil))
}
