package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/fliplot/internal/pipeline"
	"github.com/nvandessel/fliplot/internal/ratelimit"
)

// registerTools registers all fliplot tools with the MCP server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fliplot_scripts",
		Description: "List the plot scripts fliplot can run, with the CSV files each one reads and the HTML files it writes",
	}, s.handleScripts)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fliplot_render",
		Description: "Run a plot script in the project directory: load its CSV files and overwrite its HTML charts",
	}, s.handleRender)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fliplot_history",
		Description: "List recently written charts with point counts and chart-data digests",
	}, s.handleHistory)
}

// handleScripts implements the fliplot_scripts tool.
func (s *Server) handleScripts(ctx context.Context, req *sdk.CallToolRequest, args ScriptsInput) (_ *sdk.CallToolResult, _ ScriptsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("fliplot_scripts", start, retErr, sanitizeToolParams(map[string]interface{}{}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fliplot_scripts"); err != nil {
		return nil, ScriptsOutput{}, err
	}

	scripts := s.catalog.All()
	out := ScriptsOutput{Scripts: make([]ScriptSummary, len(scripts)), Count: len(scripts)}
	for i, sc := range scripts {
		sum := ScriptSummary{
			Name:        sc.Name,
			Description: sc.Description,
			Inputs:      sc.Inputs(),
			Figures:     make([]FigureSummary, len(sc.Figures)),
		}
		for j, f := range sc.Figures {
			n := f.Normalized()
			sum.Figures[j] = FigureSummary{
				Output:  n.Output,
				Input:   n.Input,
				Grid:    fmt.Sprintf("%dx%d", n.Rows, n.Cols),
				Columns: n.Columns(),
			}
		}
		out.Scripts[i] = sum
	}
	return nil, out, nil
}

// handleRender implements the fliplot_render tool.
func (s *Server) handleRender(ctx context.Context, req *sdk.CallToolRequest, args RenderInput) (_ *sdk.CallToolResult, _ RenderOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("fliplot_render", start, retErr, sanitizeToolParams(map[string]interface{}{
			"script": args.Script, "png": args.PNG,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fliplot_render"); err != nil {
		return nil, RenderOutput{}, err
	}

	if strings.TrimSpace(args.Script) == "" {
		return nil, RenderOutput{}, fmt.Errorf("'script' parameter is required")
	}
	script, err := s.catalog.Get(args.Script)
	if err != nil {
		return nil, RenderOutput{}, err
	}

	opts := pipeline.FromConfig(s.root, s.settings)
	opts.PNG = opts.PNG || args.PNG
	opts.Logger = s.logger
	opts.Events = s.events
	opts.History = s.history

	res, err := pipeline.Run(ctx, script, opts)
	if err != nil {
		return nil, RenderOutput{}, fmt.Errorf("render %s: %w", script.Name, err)
	}

	names := make([]string, len(res.Outputs))
	for i, o := range res.Outputs {
		names[i] = o.Output
	}
	return nil, RenderOutput{
		RunID:   res.RunID,
		Script:  res.Script,
		Outputs: res.Outputs,
		Message: fmt.Sprintf("Wrote %d file(s): %s", len(names), strings.Join(names, ", ")),
	}, nil
}

// handleHistory implements the fliplot_history tool.
func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("fliplot_history", start, retErr, sanitizeToolParams(map[string]interface{}{
			"limit": args.Limit,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "fliplot_history"); err != nil {
		return nil, HistoryOutput{}, err
	}

	if s.history == nil {
		return nil, HistoryOutput{}, fmt.Errorf("history is disabled (set history.enabled: true)")
	}
	if args.Limit < 0 {
		return nil, HistoryOutput{}, fmt.Errorf("'limit' must not be negative")
	}

	runs, err := s.history.List(ctx, args.Limit)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	return nil, HistoryOutput{Runs: runs, Count: len(runs)}, nil
}
