package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/nvandessel/fliplot/internal/figure"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// pixelsPerInch maps Options sizes, given in CSS pixels, onto vg lengths.
const pixelsPerInch = 96

// PNG renders b as a static image with the same grid layout as HTML.
// Non-finite points are dropped.
func PNG(b *figure.Built, o Options) ([]byte, error) {
	o = o.withDefaults()
	spec := b.Spec.Normalized()

	plots := make([][]*plot.Plot, spec.Rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, spec.Cols)
		for c := range plots[r] {
			p, err := cellPlot(b.Cell(r+1, c+1))
			if err != nil {
				return nil, fmt.Errorf("plot %s cell (%d,%d): %w", spec.Output, r+1, c+1, err)
			}
			if !spec.Grid() && spec.Title != "" {
				p.Title.Text = spec.Title
			}
			plots[r][c] = p
		}
	}

	width := vg.Length(o.Width) * vg.Inch / pixelsPerInch
	height := vg.Length(o.Height) * vg.Inch / pixelsPerInch
	img := vgimg.New(width, height)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      spec.Rows,
		Cols:      spec.Cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func cellPlot(series []figure.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = cellTitle(series)
	p.Add(plotter.NewGrid())
	if len(series) == 0 {
		return p, nil
	}

	p.X.Label.Text = series[0].XColumn
	if len(series) == 1 {
		p.Y.Label.Text = series[0].YColumn
	}

	for i, s := range series {
		pts := make(plotter.XYs, 0, len(s.Y))
		for j := range s.Y {
			if !finite(s.X[j]) || !finite(s.Y[j]) {
				continue
			}
			pts = append(pts, plotter.XY{X: s.X[j], Y: s.Y[j]})
		}
		if len(pts) == 0 {
			continue
		}

		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", s.Name, err)
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	return p, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
