// Package catalog holds the plot scripts fliplot knows how to run.
//
// Three scripts are built in, one per flip-flop model family. Further
// scripts can be declared in a YAML manifest:
//
//	scripts:
//	  - name: settings
//	    figures:
//	      - input: Settings.csv
//	        output: settings.html
//	        skip_rows: 6
//	        traces:
//	          - y: qFieldAvg
package catalog

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/nvandessel/fliplot/internal/figure"
	"github.com/nvandessel/fliplot/internal/pathutil"
	"gopkg.in/yaml.v3"
)

// Script is a named list of figures rendered together.
type Script struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Figures     []figure.Spec `json:"figures" yaml:"figures"`
}

// Manifest is the YAML document read by LoadManifest.
type Manifest struct {
	Scripts []Script `yaml:"scripts"`
}

var scriptName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks the script name, every figure, and that no two figures
// write the same output file.
func (s Script) Validate() error {
	if !scriptName.MatchString(s.Name) {
		return fmt.Errorf("invalid script name %q (lowercase letters, digits and '-')", s.Name)
	}
	if len(s.Figures) == 0 {
		return fmt.Errorf("script %s: no figures", s.Name)
	}

	outputs := make(map[string]bool, len(s.Figures))
	for _, f := range s.Figures {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("script %s: %w", s.Name, err)
		}
		if err := pathutil.CheckName(f.Input); err != nil {
			return fmt.Errorf("script %s: input: %w", s.Name, err)
		}
		if err := pathutil.CheckName(f.Output); err != nil {
			return fmt.Errorf("script %s: output: %w", s.Name, err)
		}
		if outputs[f.Output] {
			return fmt.Errorf("script %s: output %q written twice", s.Name, f.Output)
		}
		outputs[f.Output] = true
	}
	return nil
}

// Inputs returns the distinct input files in first-use order.
func (s Script) Inputs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range s.Figures {
		if !seen[f.Input] {
			seen[f.Input] = true
			out = append(out, f.Input)
		}
	}
	return out
}

// Outputs returns the output files in figure order.
func (s Script) Outputs() []string {
	out := make([]string, len(s.Figures))
	for i, f := range s.Figures {
		out[i] = f.Output
	}
	return out
}

// LoadManifest reads and validates the scripts declared in a YAML file.
func LoadManifest(path string) ([]Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Scripts) == 0 {
		return nil, fmt.Errorf("manifest %s declares no scripts", pathutil.RedactPath(path))
	}

	seen := make(map[string]bool)
	for _, s := range m.Scripts {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("script %s declared twice", s.Name)
		}
		seen[s.Name] = true
	}
	return m.Scripts, nil
}

// Catalog is a set of scripts addressable by name.
type Catalog struct {
	scripts map[string]Script
}

// New builds a catalog from the built-in scripts plus extra.
// Extra scripts replace built-ins of the same name.
func New(extra ...Script) *Catalog {
	c := &Catalog{scripts: make(map[string]Script)}
	for _, s := range Builtin() {
		c.scripts[s.Name] = s
	}
	for _, s := range extra {
		c.scripts[s.Name] = s
	}
	return c
}

// Get returns the named script.
func (c *Catalog) Get(name string) (Script, error) {
	s, ok := c.scripts[name]
	if !ok {
		return Script{}, fmt.Errorf("unknown script %q (known: %v)", name, c.Names())
	}
	return s, nil
}

// Names returns the script names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.scripts))
	for n := range c.scripts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every script sorted by name.
func (c *Catalog) All() []Script {
	names := c.Names()
	out := make([]Script, len(names))
	for i, n := range names {
		out[i] = c.scripts[n]
	}
	return out
}
