// Package config provides unified configuration loading for fliplot.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvandessel/fliplot/internal/constants"
	"gopkg.in/yaml.v3"
)

// FliplotConfig contains all fliplot configuration settings.
type FliplotConfig struct {
	// Render controls chart sizing and output formats.
	Render RenderConfig `json:"render" yaml:"render"`

	// History controls the SQLite run history.
	History HistoryConfig `json:"history" yaml:"history"`

	// Server controls `fliplot serve`.
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// RenderConfig configures figure rendering.
type RenderConfig struct {
	// Width and Height are the full-figure size in CSS pixels.
	// Grid figures split them evenly across cells.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// AssetsHost overrides where the echarts JavaScript is loaded from.
	// Empty uses the go-echarts default CDN.
	AssetsHost string `json:"assets_host,omitempty" yaml:"assets_host,omitempty"`

	// PNG additionally writes a static <output>.png next to every HTML file.
	PNG bool `json:"png" yaml:"png"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	// Enabled records each rendered figure in .fliplot/history.db.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// ServerConfig configures the live chart server.
type ServerConfig struct {
	// OpenBrowser opens the server URL once it is listening.
	OpenBrowser bool `json:"open_browser" yaml:"open_browser"`
}

// LoggingConfig configures fliplot's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables event logging to .fliplot/events.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a FliplotConfig with sensible defaults.
func Default() *FliplotConfig {
	return &FliplotConfig{
		Render: RenderConfig{
			Width:  constants.DefaultChartWidth,
			Height: constants.DefaultChartHeight,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			OpenBrowser: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.fliplot/config.yaml -> environment variables
func Load() (*FliplotConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, constants.StateDirName, constants.ConfigFileName)
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Unset keys keep their defaults.
func LoadFromFile(path string) (*FliplotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Render.AssetsHost = expandEnvVars(config.Render.AssetsHost)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *FliplotConfig) Validate() error {
	if c.Render.Width < constants.MinChartDimension {
		return fmt.Errorf("render.width must be at least %d, got %d", constants.MinChartDimension, c.Render.Width)
	}
	if c.Render.Height < constants.MinChartDimension {
		return fmt.Errorf("render.height must be at least %d, got %d", constants.MinChartDimension, c.Render.Height)
	}

	if h := c.Render.AssetsHost; h != "" && !strings.HasSuffix(h, "/") {
		return fmt.Errorf("render.assets_host must end with '/', got %q", h)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies FLIPLOT_* environment variable overrides to the config.
// Malformed numeric values are ignored.
func applyEnvOverrides(config *FliplotConfig) {
	if v := os.Getenv("FLIPLOT_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Render.Width = n
		}
	}
	if v := os.Getenv("FLIPLOT_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Render.Height = n
		}
	}

	if v := os.Getenv("FLIPLOT_ASSETS_HOST"); v != "" {
		config.Render.AssetsHost = v
	}

	if v := os.Getenv("FLIPLOT_PNG"); v != "" {
		config.Render.PNG = parseBool(v)
	}

	if v := os.Getenv("FLIPLOT_HISTORY"); v != "" {
		config.History.Enabled = parseBool(v)
	}

	if v := os.Getenv("FLIPLOT_OPEN_BROWSER"); v != "" {
		config.Server.OpenBrowser = parseBool(v)
	}

	if v := os.Getenv("FLIPLOT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
