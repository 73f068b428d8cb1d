// Package mcp provides an MCP (Model Context Protocol) server for fliplot.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/fliplot/internal/catalog"
	"github.com/nvandessel/fliplot/internal/config"
	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/history"
	"github.com/nvandessel/fliplot/internal/logging"
	"github.com/nvandessel/fliplot/internal/ratelimit"
)

// Server wraps the MCP SDK server and exposes fliplot's scripts as tools.
type Server struct {
	server       *sdk.Server
	catalog      *catalog.Catalog
	settings     *config.FliplotConfig
	root         string
	history      *history.Store
	logger       *slog.Logger
	events       *logging.EventLogger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters

	closeOnce sync.Once
	closeErr  error
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "fliplot")
	Version string // Server version
	Root    string // Directory holding the CSV inputs

	Catalog  *catalog.Catalog      // nil means built-in scripts only
	Settings *config.FliplotConfig // nil means config.Default()
	Logger   *slog.Logger          // must not write to stdout
}

// NewServer creates a new MCP server with fliplot tools.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		catalog:      cat,
		settings:     settings,
		root:         cfg.Root,
		logger:       logger,
		events:       logging.NewEventLogger(filepath.Join(cfg.Root, constants.StateDirName), settings.Logging.Level),
		auditLogger:  NewAuditLogger(cfg.Root),
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	if settings.History.Enabled {
		hs, err := history.Open(context.Background(), cfg.Root)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		s.history = hs
	}

	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	stopSignals := notifySignals(sigChan)
	defer stopSignals()

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close releases the history database and log files. It is safe to call
// more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.history != nil {
			s.closeErr = s.history.Close()
		}
		s.events.Close()
		if err := s.auditLogger.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}
