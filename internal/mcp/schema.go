package mcp

import (
	"github.com/nvandessel/fliplot/internal/history"
	"github.com/nvandessel/fliplot/internal/pipeline"
)

// ScriptsInput defines the input for the fliplot_scripts tool.
type ScriptsInput struct{}

// ScriptsOutput defines the output for the fliplot_scripts tool.
type ScriptsOutput struct {
	Scripts []ScriptSummary `json:"scripts" jsonschema:"Known plot scripts sorted by name"`
	Count   int             `json:"count" jsonschema:"Number of scripts"`
}

// ScriptSummary describes one plot script.
type ScriptSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Inputs      []string        `json:"inputs"`
	Figures     []FigureSummary `json:"figures"`
}

// FigureSummary describes one figure of a script.
type FigureSummary struct {
	Output  string   `json:"output"`
	Input   string   `json:"input"`
	Grid    string   `json:"grid"`
	Columns []string `json:"columns"`
}

// RenderInput defines the input for the fliplot_render tool.
type RenderInput struct {
	Script string `json:"script" jsonschema:"Name of the plot script to run (see fliplot_scripts)"`
	PNG    bool   `json:"png,omitempty" jsonschema:"Also write a static PNG next to every HTML file"`
}

// RenderOutput defines the output for the fliplot_render tool.
type RenderOutput struct {
	RunID   string            `json:"run_id" jsonschema:"Identifier of this run in the history"`
	Script  string            `json:"script" jsonschema:"Script that was run"`
	Outputs []pipeline.Output `json:"outputs" jsonschema:"Files written, in figure order"`
	Message string            `json:"message" jsonschema:"Human-readable result message"`
}

// HistoryInput defines the input for the fliplot_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs to return (default 20)"`
}

// HistoryOutput defines the output for the fliplot_history tool.
type HistoryOutput struct {
	Runs  []history.Run `json:"runs" jsonschema:"Recorded outputs, newest first"`
	Count int           `json:"count" jsonschema:"Number of runs returned"`
}
