package frame

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concentrations = `time(seconds),activatory proteins(h),repressory proteins(i),Q proteins(q),Qc proteins(qc)
0.00,10,10,0,0
0.01,12,9,1,0
0.02,15,7,3,1
`

func readString(t *testing.T, data string, opts Options) *Frame {
	t.Helper()
	f, err := Read(strings.NewReader(data), "test.csv", opts)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func TestRead_Basic(t *testing.T) {
	f := readString(t, concentrations, Options{})

	assert.Equal(t, "test.csv", f.Name())
	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, []string{
		"time(seconds)",
		"activatory proteins(h)",
		"repressory proteins(i)",
		"Q proteins(q)",
		"Qc proteins(qc)",
	}, f.Columns())
	assert.Zero(t, f.Truncated())

	ts, err := f.Float64s("time(seconds)")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.01, 0.02}, ts)

	h, err := f.Float64s("activatory proteins(h)")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12, 15}, h)
}

func TestRead_RowOrderPreserved(t *testing.T) {
	f := readString(t, "time(seconds),v\n3,30\n1,10\n2,20\n", Options{})

	ts, err := f.Float64s("time(seconds)")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, ts)
}

func TestRead_MissingColumn(t *testing.T) {
	f := readString(t, concentrations, Options{})

	_, err := f.Float64s("lacI_mRNA")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), "lacI_mRNA")
	assert.False(t, f.HasColumn("lacI_mRNA"))
	assert.True(t, f.HasColumn("Q proteins(q)"))
}

func TestRead_PerBacteriumRowsKeepHeaderWidth(t *testing.T) {
	data := "time(seconds),internal_AI\n0.00,1.5,2.5,3.5\n1.00,1.6,2.6,3.6\n2.00,1.7\n"
	f := readString(t, data, Options{})

	assert.Equal(t, 3, f.NumRows())
	assert.Equal(t, 2, f.Truncated())

	ai, err := f.Float64s("internal_AI")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 1.6, 1.7}, ai)
}

func TestRead_SkipRows(t *testing.T) {
	data := "Dt,0.01\nTime (sec),100\nInitial Conditions, Random\n" +
		"time(seconds),hFieldAvg,iFieldAvg,qFieldAvg,qcFieldAvg\n" +
		"0.00,10,10,0,0\n0.01,10,10,1,1\n"
	f := readString(t, data, Options{SkipRows: 3})

	assert.Equal(t, 2, f.NumRows())
	q, err := f.Float64s("qFieldAvg")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, q)
}

func TestRead_NullsAndCommaDecimals(t *testing.T) {
	data := "time(seconds),v\n0,\n\"0,5\",2\n1, 3\n"
	f := readString(t, data, Options{})

	ts, err := f.Float64s("time(seconds)")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, ts)

	v, err := f.Float64s("v")
	require.NoError(t, err)
	require.Len(t, v, 3)
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, 2.0, v[1])
	assert.Equal(t, 3.0, v[2])
}

func TestRead_BlankAndPrefixedHeaderNames(t *testing.T) {
	f := readString(t, "time(seconds),# Q proteins,\n0,1,2\n", Options{})
	assert.Equal(t, []string{"time(seconds)", "# Q proteins", "column_3"}, f.Columns())
}

func TestRead_BOMHeader(t *testing.T) {
	tests := []struct {
		name string
		data string
		opts Options
	}{
		{"plain", "\ufefftime(seconds),internal_AI\n0,1\n1,2\n", Options{}},
		{"quoted", "\ufeff\"time(seconds)\",internal_AI\n0,1\n1,2\n", Options{}},
		{"before preamble", "\ufeffNbacteria,10\ntime(seconds),internal_AI\n0,1\n1,2\n", Options{SkipRows: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := readString(t, tt.data, tt.opts)
			assert.Equal(t, []string{"time(seconds)", "internal_AI"}, f.Columns())

			x, err := f.Float64s("time(seconds)")
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 1}, x)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		opts    Options
		wantErr string
	}{
		{"empty file", "", Options{}, "file is empty"},
		{"preamble longer than file", "a,b\n", Options{SkipRows: 2}, "preamble"},
		{"short row", "time(seconds),a,b\n0,1\n", Options{}, "line 2 has 2 fields, want 3"},
		{"non numeric cell", "time(seconds),a\n0,abc\n", Options{}, `column "a"`},
		{"duplicate header", "time(seconds),a,a\n0,1,2\n", Options{}, "duplicate column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.data), "bad.csv", tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "bad.csv")
		})
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	f := readString(t, "time(seconds),a\n", Options{})
	assert.Equal(t, 0, f.NumRows())

	a, err := f.Float64s("a")
	require.NoError(t, err)
	assert.Empty(t, a)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lacI_ALL.csv")
	require.NoError(t, os.WriteFile(path, []byte("time(seconds),lacI_mRNA\n0,5,6\n1,7,8\n"), 0644))

	f, err := Load(path, Options{})
	require.NoError(t, err)
	defer f.Release()

	assert.Equal(t, "lacI_ALL.csv", f.Name())
	assert.Equal(t, 2, f.NumRows())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteCSV(t *testing.T) {
	f := readString(t, "time(seconds),internal_AI\n0,1.5,9\n1,,9\n", Options{})

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "time(seconds),internal_AI", lines[0])
	assert.Equal(t, "0,1.5", lines[1])
	assert.Equal(t, "1,", lines[2])
}

func TestWriteParquet(t *testing.T) {
	f := readString(t, concentrations, Options{})

	var buf bytes.Buffer
	require.NoError(t, f.WriteParquet(&buf))

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(buf.Bytes()),
		parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	require.NoError(t, err)
	defer tbl.Release()

	assert.EqualValues(t, 3, tbl.NumRows())
	assert.EqualValues(t, 5, tbl.NumCols())
	assert.Equal(t, "Q proteins(q)", tbl.Schema().Field(3).Name)
}
