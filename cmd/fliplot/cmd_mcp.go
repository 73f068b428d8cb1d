package main

import (
	"fmt"
	"os"

	"github.com/nvandessel/fliplot/internal/logging"
	"github.com/nvandessel/fliplot/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
fliplot_scripts, fliplot_render and fliplot_history tools.

Logs go to stderr; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "fliplot",
				Version:  version,
				Root:     root,
				Catalog:  cat,
				Settings: settings,
				Logger:   logging.NewLogger(settings.Logging.Level, os.Stderr),
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
	cmd.Flags().String("manifest", "", "YAML file declaring extra plot scripts")
	return cmd
}
