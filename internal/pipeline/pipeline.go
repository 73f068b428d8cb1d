// Package pipeline runs plot scripts: load every input CSV, build every
// figure, then write every output.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nvandessel/fliplot/internal/catalog"
	"github.com/nvandessel/fliplot/internal/config"
	"github.com/nvandessel/fliplot/internal/figure"
	"github.com/nvandessel/fliplot/internal/frame"
	"github.com/nvandessel/fliplot/internal/history"
	"github.com/nvandessel/fliplot/internal/logging"
	"github.com/nvandessel/fliplot/internal/pathutil"
	"github.com/nvandessel/fliplot/internal/render"
)

// Options configures a run.
type Options struct {
	// Root is the directory holding the input CSVs and receiving outputs.
	Root string

	Render render.Options

	// PNG also writes a static image next to every HTML output.
	PNG bool

	Logger  *slog.Logger
	Events  *logging.EventLogger
	History *history.Store
}

// FromConfig returns run options for root with the render settings of cfg.
func FromConfig(root string, cfg *config.FliplotConfig) Options {
	return Options{
		Root: root,
		Render: render.Options{
			Width:      cfg.Render.Width,
			Height:     cfg.Render.Height,
			AssetsHost: cfg.Render.AssetsHost,
		},
		PNG: cfg.Render.PNG,
	}
}

// Output is one written file.
type Output struct {
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Path      string        `json:"path"`
	Format    render.Format `json:"format"`
	Series    int           `json:"series"`
	Points    int           `json:"points"`
	Truncated int           `json:"truncated,omitempty"`
	Digest    string        `json:"digest"`
}

// Result summarizes one script run.
type Result struct {
	RunID    string        `json:"run_id"`
	Script   string        `json:"script"`
	Outputs  []Output      `json:"outputs"`
	Duration time.Duration `json:"duration_ns"`
}

// Built is a figure ready to render together with load statistics.
type Built struct {
	*figure.Built
	Truncated int
}

type rendered struct {
	built  Built
	format render.Format
	path   string
	data   []byte
}

// Load reads every input of script under root and builds every figure.
// Each distinct input file is read once.
func Load(ctx context.Context, root string, script catalog.Script) ([]Built, error) {
	frames := make(map[string]*frame.Frame)
	defer func() {
		for _, f := range frames {
			f.Release()
		}
	}()

	built := make([]Built, 0, len(script.Figures))
	for _, spec := range script.Figures {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := fmt.Sprintf("%s#%d", spec.Input, spec.SkipRows)
		f, ok := frames[key]
		if !ok {
			path, err := pathutil.Resolve(root, spec.Input)
			if err != nil {
				return nil, fmt.Errorf("script %s: %w", script.Name, err)
			}
			f, err = frame.Load(path, frame.Options{SkipRows: spec.SkipRows})
			if err != nil {
				return nil, fmt.Errorf("script %s: %w", script.Name, err)
			}
			frames[key] = f
		}

		b, err := figure.Build(spec, f)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", script.Name, err)
		}
		built = append(built, Built{Built: b, Truncated: f.Truncated()})
	}
	return built, nil
}

// Run executes script. Nothing is written unless every figure loads,
// builds and renders.
func Run(ctx context.Context, script catalog.Script, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	start := time.Now()
	runID := fmt.Sprintf("run-%d", start.UnixNano())

	if err := script.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("running script", "script", script.Name, "figures", len(script.Figures), "root", pathutil.RedactPath(opts.Root))

	built, err := Load(ctx, opts.Root, script)
	if err != nil {
		opts.Events.Log("run_failed", map[string]any{"run_id": runID, "script": script.Name, "stage": "load", "error": err.Error()})
		return nil, err
	}

	var pending []rendered
	for _, b := range built {
		if b.Truncated > 0 {
			logger.Warn("dropped extra fields", "input", b.Spec.Input, "rows", b.Truncated)
		}

		targets := []render.Format{render.FormatHTML}
		if opts.PNG {
			targets = append(targets, render.FormatPNG)
		}
		for _, format := range targets {
			r, err := renderOne(opts.Root, b, format, opts.Render)
			if err != nil {
				opts.Events.Log("run_failed", map[string]any{"run_id": runID, "script": script.Name, "stage": "render", "error": err.Error()})
				return nil, fmt.Errorf("script %s: %w", script.Name, err)
			}
			pending = append(pending, r)
		}
	}

	res := &Result{RunID: runID, Script: script.Name}
	runs := make([]history.Run, 0, len(pending))
	for _, r := range pending {
		if err := render.WriteFile(r.path, r.data); err != nil {
			return nil, fmt.Errorf("script %s: %w", script.Name, err)
		}

		out := Output{
			Input:     r.built.Spec.Input,
			Output:    outputName(r.built.Spec.Output, r.format),
			Path:      r.path,
			Format:    r.format,
			Series:    len(r.built.Series),
			Points:    r.built.Points(),
			Truncated: r.built.Truncated,
			Digest:    r.built.Digest(),
		}
		res.Outputs = append(res.Outputs, out)
		runs = append(runs, history.Run{
			RunID:  runID,
			Script: script.Name,
			Input:  out.Input,
			Output: out.Output,
			Format: string(out.Format),
			Points: out.Points,
			Digest: out.Digest,
		})

		logger.Info("wrote figure", "output", out.Output, "points", out.Points)
		opts.Events.Log("figure_written", map[string]any{
			"run_id": runID,
			"script": script.Name,
			"input":  out.Input,
			"output": out.Output,
			"format": string(out.Format),
			"points": out.Points,
			"digest": out.Digest,
		})
	}

	if opts.History != nil {
		if err := opts.History.Record(ctx, runs...); err != nil {
			// Outputs are already on disk; history is best effort.
			logger.Warn("failed to record history", "error", err)
		}
	}

	res.Duration = time.Since(start)
	opts.Events.Log("run_finished", map[string]any{"run_id": runID, "script": script.Name, "outputs": len(res.Outputs), "duration_ms": res.Duration.Milliseconds()})
	return res, nil
}

func renderOne(root string, b Built, format render.Format, o render.Options) (rendered, error) {
	name := outputName(b.Spec.Output, format)
	path, err := pathutil.Resolve(root, name)
	if err != nil {
		return rendered{}, err
	}

	var data []byte
	switch format {
	case render.FormatPNG:
		data, err = render.PNG(b.Built, o)
	default:
		data, err = render.HTML(b.Built, o)
	}
	if err != nil {
		return rendered{}, err
	}
	return rendered{built: b, format: format, path: path, data: data}, nil
}

// outputName maps a figure's HTML output name to the file written for format.
func outputName(output string, format render.Format) string {
	if format != render.FormatPNG {
		return output
	}
	ext := output[len(output)-len(".html"):]
	return strings.TrimSuffix(output, ext) + ".png"
}

// ScriptSource rebuilds a script's figures from disk on every call.
// It backs the live server.
type ScriptSource struct {
	Root   string
	Script catalog.Script
}

// Figures implements render.Source.
func (s ScriptSource) Figures(ctx context.Context) ([]*figure.Built, error) {
	built, err := Load(ctx, s.Root, s.Script)
	if err != nil {
		return nil, err
	}
	out := make([]*figure.Built, len(built))
	for i, b := range built {
		out[i] = b.Built
	}
	return out, nil
}
