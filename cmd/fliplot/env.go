package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nvandessel/fliplot/internal/catalog"
	"github.com/nvandessel/fliplot/internal/config"
	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/history"
	"github.com/nvandessel/fliplot/internal/logging"
	"github.com/nvandessel/fliplot/internal/pipeline"
	"github.com/spf13/cobra"
)

// runEnv holds what every rendering command needs.
type runEnv struct {
	root     string
	settings *config.FliplotConfig
	logger   *slog.Logger
	events   *logging.EventLogger
	history  *history.Store
}

// loadSettings loads and validates the effective configuration.
func loadSettings() (*config.FliplotConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newRunEnv(cmd *cobra.Command) (*runEnv, error) {
	root, _ := cmd.Flags().GetString("root")

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	env := &runEnv{
		root:     root,
		settings: settings,
		logger:   logging.NewLogger(settings.Logging.Level, cmd.ErrOrStderr()),
		events:   logging.NewEventLogger(filepath.Join(root, constants.StateDirName), settings.Logging.Level),
	}

	if settings.History.Enabled {
		hs, err := history.Open(cmd.Context(), root)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		env.history = hs
	}
	return env, nil
}

// options returns pipeline options; png forces PNG output on.
func (e *runEnv) options(png bool) pipeline.Options {
	opts := pipeline.FromConfig(e.root, e.settings)
	opts.PNG = opts.PNG || png
	opts.Logger = e.logger
	opts.Events = e.events
	opts.History = e.history
	return opts
}

func (e *runEnv) Close() {
	if e.history != nil {
		e.history.Close()
	}
	e.events.Close()
}

// loadCatalog returns the built-in scripts plus those in the --manifest file.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	manifest, _ := cmd.Flags().GetString("manifest")
	if manifest == "" {
		return catalog.New(), nil
	}
	scripts, err := catalog.LoadManifest(manifest)
	if err != nil {
		return nil, err
	}
	return catalog.New(scripts...), nil
}
