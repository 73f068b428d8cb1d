package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/fliplot/internal/catalog"
	"github.com/spf13/cobra"
)

func writeJohnsonInputs(t *testing.T, dir string, rows int) {
	t.Helper()
	cols := []string{"activatory proteins(h)", "repressory proteins(i)", "Q proteins(q)", "Qc proteins(qc)"}
	for _, name := range []string{
		"flip_flop1_concentrations_average.csv",
		"flip_flop2_concentrations_average.csv",
		"flip_flop3_concentrations_average.csv",
		"flip_flop3_concentrations_average_longer.csv",
	} {
		writeFile(t, dir, name, proteinCSV(rows, cols...))
	}
}

func TestScriptCmd_JohnsonCounter(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	writeJohnsonInputs(t, tmpDir, 12)

	out, err := execute(t, []*cobra.Command{newScriptCmd(catalog.JohnsonCounter)}, "johnson-counter", "--root", tmpDir)
	if err != nil {
		t.Fatalf("johnson-counter failed: %v", err)
	}

	for _, name := range []string{
		"concentrations_flip_flop1.html",
		"concentrations_flip_flop2.html",
		"concentrations_flip_flop3.html",
		"concentrations_flip_flop3_longer.html",
	} {
		if _, err := os.Stat(filepath.Join(tmpDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
		if !strings.Contains(out, name) {
			t.Errorf("output does not mention %s:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "48 points") {
		t.Errorf("expected point count in output:\n%s", out)
	}
}

func TestScriptCmd_RerunIsByteIdentical(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	writeJohnsonInputs(t, tmpDir, 5)

	path := filepath.Join(tmpDir, "concentrations_flip_flop2.html")
	var renders [][]byte
	for i := 0; i < 2; i++ {
		if _, err := execute(t, []*cobra.Command{newScriptCmd(catalog.JohnsonCounter)}, "johnson-counter", "--root", tmpDir); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		renders = append(renders, data)
	}
	if !bytes.Equal(renders[0], renders[1]) {
		t.Error("second run produced different HTML")
	}
}

func TestScriptCmd_MissingColumn(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	writeJohnsonInputs(t, tmpDir, 5)
	// no Qc column in the last input
	writeFile(t, tmpDir, "flip_flop3_concentrations_average_longer.csv",
		proteinCSV(5, "activatory proteins(h)", "repressory proteins(i)", "Q proteins(q)"))

	_, err := execute(t, []*cobra.Command{newScriptCmd(catalog.JohnsonCounter)}, "johnson-counter", "--root", tmpDir)
	if err == nil {
		t.Fatal("expected error for missing column")
	}
	if !strings.Contains(err.Error(), "Qc proteins(qc)") {
		t.Errorf("error should name the column: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(tmpDir, "*.html"))
	if len(matches) != 0 {
		t.Errorf("expected no outputs, found %v", matches)
	}
}

func TestRunCmd_ManifestJSON(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	settings := "Nbacteria,10\nSimulation time,100\n" + proteinCSV(4, "qFieldAvg", "qcFieldAvg")
	writeFile(t, tmpDir, "Settings.csv", settings)
	manifest := filepath.Join(tmpDir, "plots.yaml")
	writeFile(t, tmpDir, "plots.yaml", `
scripts:
  - name: settings
    figures:
      - input: Settings.csv
        output: settings.html
        skip_rows: 2
        traces:
          - y: qFieldAvg
`)

	out, err := execute(t, []*cobra.Command{newRunCmd()}, "run", "settings", "--manifest", manifest, "--root", tmpDir, "--json")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var got struct {
		Count   int `json:"count"`
		Results []struct {
			Script  string `json:"script"`
			Outputs []struct {
				Output string `json:"output"`
				Points int    `json:"points"`
			} `json:"outputs"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Count != 1 || got.Results[0].Script != "settings" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if o := got.Results[0].Outputs[0]; o.Output != "settings.html" || o.Points != 4 {
		t.Errorf("unexpected output: %+v", o)
	}
}

func TestRunCmd_UnknownScript(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	_, err := execute(t, []*cobra.Command{newRunCmd()}, "run", "nope", "--root", tmpDir)
	if err == nil || !strings.Contains(err.Error(), "unknown script") {
		t.Errorf("expected unknown script error, got %v", err)
	}
}

func TestRunCmd_PNG(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	writeJohnsonInputs(t, tmpDir, 5)

	if _, err := execute(t, []*cobra.Command{newRunCmd()}, "run", "johnson-counter", "--png", "--root", tmpDir); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(tmpDir, "concentrations_flip_flop1.png"))
	if err != nil {
		t.Fatalf("png not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestScriptCmd_OpenOpensHTMLOutputs(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	writeJohnsonInputs(t, tmpDir, 3)

	var opened []string
	orig := openBrowser
	openBrowser = func(target string) error {
		opened = append(opened, target)
		return nil
	}
	t.Cleanup(func() { openBrowser = orig })

	if _, err := execute(t, []*cobra.Command{newScriptCmd(catalog.JohnsonCounter)}, "johnson-counter", "--open", "--png", "--root", tmpDir); err != nil {
		t.Fatalf("johnson-counter --open failed: %v", err)
	}

	if len(opened) != 4 {
		t.Fatalf("opened %d files, want 4: %v", len(opened), opened)
	}
	for _, p := range opened {
		if !filepath.IsAbs(p) || filepath.Ext(p) != ".html" {
			t.Errorf("unexpected open target %q", p)
		}
	}

	opened = nil
	if _, err := execute(t, []*cobra.Command{newScriptCmd(catalog.JohnsonCounter)}, "johnson-counter", "--root", tmpDir); err != nil {
		t.Fatalf("johnson-counter failed: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("opened %v without --open", opened)
	}
}
