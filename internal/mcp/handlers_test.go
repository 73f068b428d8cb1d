package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/fliplot/internal/catalog"
	"github.com/nvandessel/fliplot/internal/figure"
)

const lacICSV = "time(seconds),lacI_mRNA\n0,1\n1,2\n2,4\n"

func TestHandleScripts(t *testing.T) {
	server, _ := setupTestServer(t)

	_, out, err := server.handleScripts(context.Background(), nil, ScriptsInput{})
	if err != nil {
		t.Fatalf("handleScripts failed: %v", err)
	}
	if out.Count != 3 || len(out.Scripts) != 3 {
		t.Fatalf("expected 3 built-in scripts, got %d", out.Count)
	}

	var johnson *ScriptSummary
	for i := range out.Scripts {
		if out.Scripts[i].Name == catalog.JohnsonCounter {
			johnson = &out.Scripts[i]
		}
	}
	if johnson == nil {
		t.Fatal("johnson-counter missing")
	}
	if len(johnson.Figures) != 4 {
		t.Errorf("johnson-counter figures = %d, want 4", len(johnson.Figures))
	}
	if johnson.Figures[0].Grid != "2x2" {
		t.Errorf("grid = %q, want 2x2", johnson.Figures[0].Grid)
	}
	if johnson.Figures[0].Columns[0] != "time(seconds)" {
		t.Errorf("first column = %q, want time(seconds)", johnson.Figures[0].Columns[0])
	}
}

func TestHandleRender(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	custom := catalog.Script{
		Name: "lac",
		Figures: []figure.Spec{{
			Title:  "Plot",
			Input:  "lacI_ALL.csv",
			Output: "lacI_result.html",
			Traces: []figure.Trace{{Y: "lacI_mRNA"}},
		}},
	}
	server, err := NewServer(&Config{Name: "test-server", Version: "v1.0.0", Root: tmpDir, Catalog: catalog.New(custom)})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if err := os.WriteFile(filepath.Join(tmpDir, "lacI_ALL.csv"), []byte(lacICSV), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	_, out, err := server.handleRender(context.Background(), nil, RenderInput{Script: "lac"})
	if err != nil {
		t.Fatalf("handleRender failed: %v", err)
	}
	if len(out.Outputs) != 1 || out.Outputs[0].Points != 3 {
		t.Fatalf("unexpected outputs: %+v", out.Outputs)
	}
	if !strings.Contains(out.Message, "lacI_result.html") {
		t.Errorf("message = %q", out.Message)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "lacI_result.html")); err != nil {
		t.Errorf("output not written: %v", err)
	}

	_, hist, err := server.handleHistory(context.Background(), nil, HistoryInput{})
	if err != nil {
		t.Fatalf("handleHistory failed: %v", err)
	}
	if hist.Count != 1 || hist.Runs[0].RunID != out.RunID {
		t.Errorf("unexpected history: %+v", hist)
	}
}

func TestHandleRender_Errors(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{"missing script", "", "'script' parameter is required"},
		{"unknown script", "nope", "unknown script"},
		{"missing inputs", catalog.CoupledRepressilators, "AI_internal_ALL.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := server.handleRender(context.Background(), nil, RenderInput{Script: tt.script})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHandleHistory_NegativeLimit(t *testing.T) {
	server, _ := setupTestServer(t)

	_, _, err := server.handleHistory(context.Background(), nil, HistoryInput{Limit: -1})
	if err == nil {
		t.Fatal("expected error for negative limit")
	}
}

func TestHandleRender_RateLimited(t *testing.T) {
	server, _ := setupTestServer(t)

	var lastErr error
	for i := 0; i < 4; i++ {
		_, _, lastErr = server.handleRender(context.Background(), nil, RenderInput{Script: "nope"})
	}
	if lastErr == nil || !strings.Contains(lastErr.Error(), "rate limit exceeded") {
		t.Errorf("expected rate limit error on 4th call, got %v", lastErr)
	}
}
