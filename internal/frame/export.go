package frame

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	arrowcsv "github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

// WriteCSV writes the frame as CSV with a header line. Rows are cut to the
// header width and null cells are written empty.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := arrowcsv.NewWriter(w, f.record.Schema(),
		arrowcsv.WithHeader(true),
		arrowcsv.WithNullWriter(""),
	)
	if err := cw.Write(f.record); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := cw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteParquet writes the frame as a Parquet file holding one row group.
func (f *Frame) WriteParquet(w io.Writer) error {
	tbl := array.NewTableFromRecords(f.record.Schema(), []arrow.Record{f.record})
	defer tbl.Release()

	chunk := tbl.NumRows()
	if chunk < 1 {
		chunk = 1
	}

	props := parquet.NewWriterProperties()
	if err := pqarrow.WriteTable(tbl, w, chunk, props, pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
