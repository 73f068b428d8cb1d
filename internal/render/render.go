// Package render turns built figures into interactive HTML and static PNG files.
package render

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/figure"
)

// Format specifies an output format for a rendered figure.
type Format string

const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
)

// Options controls figure sizing and asset loading.
type Options struct {
	// Width and Height are the full-figure size in pixels; grid cells share it.
	Width  int
	Height int

	// AssetsHost replaces the go-echarts CDN prefix when set.
	AssetsHost string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = constants.DefaultChartWidth
	}
	if o.Height <= 0 {
		o.Height = constants.DefaultChartHeight
	}
	return o
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// chartID derives a stable DOM id from the output file name. go-echarts
// generates a random id otherwise, which would make every render differ.
func chartID(output string) string {
	base := strings.TrimSuffix(output, ".html")
	base = strings.TrimSuffix(base, ".HTML")
	return "fig_" + strings.Trim(nonIdent.ReplaceAllString(base, "_"), "_")
}

// HTML renders b as a self-contained page. A single-cell figure is one line
// chart; a grid figure is one chart per cell arranged rows x cols.
// Rendering the same data twice yields identical bytes.
func HTML(b *figure.Built, o Options) ([]byte, error) {
	o = o.withDefaults()
	spec := b.Spec.Normalized()
	id := chartID(spec.Output)

	var buf bytes.Buffer
	if !spec.Grid() {
		line := lineChart(id, spec.Title, b.Series, o.Width, o.Height, o)
		if err := line.Render(&buf); err != nil {
			return nil, fmt.Errorf("render %s: %w", spec.Output, err)
		}
		return buf.Bytes(), nil
	}

	page := components.NewPage()
	page.PageTitle = pageTitle(spec)
	if o.AssetsHost != "" {
		page.AssetsHost = o.AssetsHost
	}
	page.SetLayout(components.PageFlexLayout)

	cellW := o.Width / spec.Cols
	cellH := o.Height / spec.Rows
	for r := 1; r <= spec.Rows; r++ {
		for c := 1; c <= spec.Cols; c++ {
			series := b.Cell(r, c)
			page.AddCharts(lineChart(fmt.Sprintf("%s_r%dc%d", id, r, c), cellTitle(series), series, cellW, cellH, o))
		}
	}

	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", spec.Output, err)
	}

	// The flex layout wraps by window width; pin it to the declared column count.
	grid := fmt.Sprintf("<style>.box{display:grid !important;grid-template-columns:repeat(%d,max-content);justify-content:center}</style>\n</head>", spec.Cols)
	return []byte(strings.Replace(buf.String(), "</head>", grid, 1)), nil
}

func pageTitle(spec figure.Spec) string {
	if spec.Title != "" {
		return spec.Title
	}
	return strings.TrimSuffix(spec.Output, ".html")
}

func cellTitle(series []figure.Series) string {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

func lineChart(id, title string, series []figure.Series, width, height int, o Options) *charts.Line {
	line := charts.NewLine()

	init := opts.Initialization{
		PageTitle: title,
		ChartID:   id,
		Width:     fmt.Sprintf("%dpx", width),
		Height:    fmt.Sprintf("%dpx", height),
	}
	if o.AssetsHost != "" {
		init.AssetsHost = o.AssetsHost
	}

	xName := constants.TimeColumn
	yName := ""
	if len(series) > 0 {
		xName = series[0].XColumn
	}
	if len(series) == 1 {
		yName = series[0].YColumn
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(len(series) > 1),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: xName,
			Type: "value",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yName,
			Type: "value",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "inside",
			Start: 0,
			End:   100,
		}),
	)

	for _, s := range series {
		line.AddSeries(s.Name, lineData(s),
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
		)
	}
	return line
}

// lineData pairs x and y values. Non-finite values become echarts' "-" gap
// marker since JSON has no NaN.
func lineData(s figure.Series) []opts.LineData {
	data := make([]opts.LineData, len(s.Y))
	for i := range s.Y {
		data[i] = opts.LineData{Value: []interface{}{jsonValue(s.X[i]), jsonValue(s.Y[i])}}
	}
	return data
}

func jsonValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}
