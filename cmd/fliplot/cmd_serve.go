package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nvandessel/fliplot/internal/pipeline"
	"github.com/nvandessel/fliplot/internal/render"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <script>",
		Short: "Serve a script's charts, re-rendered from the CSVs on every request",
		Long: `Start a local HTTP server that renders the script's figures on demand.
Nothing is written to disk; reload the page after the simulation rewrites
its CSV files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			noOpen, _ := cmd.Flags().GetBool("no-open")

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			script, err := cat.Get(args[0])
			if err != nil {
				return err
			}
			if err := script.Validate(); err != nil {
				return err
			}

			opts := pipeline.FromConfig(root, settings)
			srv := render.NewServer(pipeline.ScriptSource{Root: root, Script: script}, script.Name, opts.Render)
			return runServer(cmd, srv, noOpen || !settings.Server.OpenBrowser)
		},
	}
	cmd.Flags().String("manifest", "", "YAML file declaring extra plot scripts")
	cmd.Flags().Bool("no-open", false, "Do not open a browser")
	return cmd
}

// runServer starts srv and blocks until Ctrl-C.
func runServer(cmd *cobra.Command, srv *render.Server, noOpen bool) error {
	srvCtx, srvCancel := context.WithCancel(cmd.Context())
	defer srvCancel()

	sigCh := make(chan os.Signal, 1)
	stopSignals := notifySignals(sigCh)
	defer stopSignals()

	go func() {
		select {
		case <-sigCh:
			srvCancel()
		case <-srvCtx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx) }()

	if err := waitForListen(srv, errCh, 3*time.Second); err != nil {
		return err
	}
	url := srv.URL()

	fmt.Fprintf(cmd.OutOrStdout(), "Chart server running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := render.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// waitForListen blocks until srv has an address. An error from errCh before
// that is returned as the start failure.
func waitForListen(srv *render.Server, errCh <-chan error, timeout time.Duration) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for srv.Addr() == "" {
		select {
		case err := <-errCh:
			if err == nil {
				return fmt.Errorf("server stopped before listening")
			}
			return fmt.Errorf("server failed to start: %w", err)
		case <-deadline:
			return fmt.Errorf("server failed to start within %s", timeout)
		case <-ticker.C:
		}
	}
	return nil
}
