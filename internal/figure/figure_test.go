package figure

import (
	"strings"
	"testing"

	"github.com/nvandessel/fliplot/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flipFlopCSV = `time(seconds),activatory proteins(h),repressory proteins(i),Q proteins(q),Qc proteins(qc)
0,10,10,0,0
1,12,9,1,0
2,15,7,3,1
3,16,6,4,1
`

func loadFrame(t *testing.T, data string) *frame.Frame {
	t.Helper()
	f, err := frame.Read(strings.NewReader(data), "flip_flop1.csv", frame.Options{})
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func gridSpec() Spec {
	return Spec{
		Input:  "flip_flop1.csv",
		Output: "concentrations_flip_flop1.html",
		Rows:   2,
		Cols:   2,
		Traces: []Trace{
			{Name: "activatory proteins", Y: "activatory proteins(h)", Row: 1, Col: 1},
			{Name: "repressory proteins", Y: "repressory proteins(i)", Row: 1, Col: 2},
			{Name: "Q proteins", Y: "Q proteins(q)", Row: 2, Col: 1},
			{Name: "Qc proteins", Y: "Qc proteins(qc)", Row: 2, Col: 2},
		},
	}
}

func TestNormalized(t *testing.T) {
	s := Spec{Input: "a.csv", Output: "a.html", Traces: []Trace{{Y: "internal_AI"}}}
	n := s.Normalized()

	assert.Equal(t, 1, n.Rows)
	assert.Equal(t, 1, n.Cols)
	require.Len(t, n.Traces, 1)
	assert.Equal(t, "time(seconds)", n.Traces[0].X)
	assert.Equal(t, "internal_AI", n.Traces[0].Name)
	assert.Equal(t, 1, n.Traces[0].Row)
	assert.Equal(t, 1, n.Traces[0].Col)

	// original untouched
	assert.Equal(t, "", s.Traces[0].X)
	assert.False(t, s.Grid())
	assert.True(t, gridSpec().Grid())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Spec)
		wantErr string
	}{
		{"valid grid", func(s *Spec) {}, ""},
		{"missing input", func(s *Spec) { s.Input = "" }, "input is required"},
		{"missing output", func(s *Spec) { s.Output = " " }, "output is required"},
		{"non html output", func(s *Spec) { s.Output = "out.png" }, "must end in .html"},
		{"grid too large", func(s *Spec) { s.Cols = 7 }, "out of range"},
		{"negative skip", func(s *Spec) { s.SkipRows = -1 }, "skip_rows"},
		{"no traces", func(s *Spec) { s.Traces = nil }, "at least one trace"},
		{"empty y", func(s *Spec) { s.Traces[0].Y = "" }, "no y column"},
		{"cell outside grid", func(s *Spec) { s.Traces[3].Row = 3 }, "outside 2x2 grid"},
		{"uppercase extension", func(s *Spec) { s.Output = "OUT.HTML" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := gridSpec()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSpec)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestColumns(t *testing.T) {
	cols := gridSpec().Columns()
	assert.Equal(t, []string{
		"time(seconds)",
		"activatory proteins(h)",
		"repressory proteins(i)",
		"Q proteins(q)",
		"Qc proteins(qc)",
	}, cols)
}

func TestBuild_PointsPerColumn(t *testing.T) {
	f := loadFrame(t, flipFlopCSV)

	b, err := Build(gridSpec(), f)
	require.NoError(t, err)

	require.Len(t, b.Series, 4)
	for _, s := range b.Series {
		assert.Len(t, s.X, f.NumRows(), s.Name)
		assert.Len(t, s.Y, f.NumRows(), s.Name)
	}
	assert.Equal(t, 16, b.Points())

	q := b.Cell(2, 1)
	require.Len(t, q, 1)
	assert.Equal(t, "Q proteins", q[0].Name)
	assert.Equal(t, []float64{0, 1, 3, 4}, q[0].Y)
	assert.Equal(t, []float64{0, 1, 2, 3}, q[0].X)

	assert.Empty(t, b.Cell(3, 3))
}

func TestBuild_MissingColumns(t *testing.T) {
	f := loadFrame(t, "time(seconds),activatory proteins(h)\n0,1\n")

	_, err := Build(gridSpec(), f)
	require.Error(t, err)
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)
	assert.Contains(t, err.Error(), `"repressory proteins(i)"`)
	assert.Contains(t, err.Error(), `"Qc proteins(qc)"`)
	assert.NotContains(t, err.Error(), `"activatory proteins(h)"`)
}

func TestBuild_InvalidSpec(t *testing.T) {
	f := loadFrame(t, flipFlopCSV)

	s := gridSpec()
	s.Rows = 1
	_, err := Build(s, f)
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestDigest(t *testing.T) {
	f := loadFrame(t, flipFlopCSV)

	a, err := Build(gridSpec(), f)
	require.NoError(t, err)
	b, err := Build(gridSpec(), f)
	require.NoError(t, err)
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Len(t, a.Digest(), 64)

	changed := loadFrame(t, strings.Replace(flipFlopCSV, "3,16,6,4,1", "3,16,6,5,1", 1))
	c, err := Build(gridSpec(), changed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Digest(), c.Digest())
}
