package main

import (
	"fmt"
	"os"

	"github.com/nvandessel/fliplot/internal/catalog"
	"github.com/spf13/cobra"
)

// Set via -ldflags at release time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fliplot",
		Short: "Render flip-flop simulation CSVs as interactive charts",
		Long: `fliplot loads the CSV time series written by the flip-flop circuit
simulations and renders them as line charts saved to fixed-name HTML files.

Each plot script reads a fixed set of CSV files from the project directory
and overwrites a fixed set of HTML files next to them.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Directory holding the CSV inputs and HTML outputs")

	rootCmd.AddCommand(
		newScriptCmd(catalog.RomanKomac),
		newScriptCmd(catalog.JohnsonCounter),
		newScriptCmd(catalog.CoupledRepressilators),
		newRunCmd(),
		newAllCmd(),
		newListCmd(),
		newServeCmd(),
		newExportCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
