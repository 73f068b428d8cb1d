package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nvandessel/fliplot/internal/catalog"
	"github.com/nvandessel/fliplot/internal/pipeline"
	"github.com/nvandessel/fliplot/internal/render"
	"github.com/spf13/cobra"
)

// newScriptCmd runs one built-in script with no arguments.
func newScriptCmd(name string) *cobra.Command {
	script, err := catalog.New().Get(name)
	if err != nil {
		panic(err) // built-in names are constants
	}

	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Render the %s charts", name),
		Long:  fmt.Sprintf("%s\n\nReads %v and writes %v.", script.Description, script.Inputs(), script.Outputs()),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(cmd, []catalog.Script{script})
		},
	}
	cmd.Flags().Bool("png", false, "Also write a static PNG next to every HTML file")
	cmd.Flags().Bool("open", false, "Open every written HTML file in the browser")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>...",
		Short: "Render one or more plot scripts",
		Long: `Render the named plot scripts. Built-in scripts are always available;
--manifest adds scripts declared in a YAML file.

Examples:
  fliplot run johnson-counter
  fliplot run settings --manifest plots.yaml --png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			scripts := make([]catalog.Script, 0, len(args))
			for _, name := range args {
				s, err := cat.Get(name)
				if err != nil {
					return err
				}
				scripts = append(scripts, s)
			}
			return runScripts(cmd, scripts)
		},
	}
	cmd.Flags().String("manifest", "", "YAML file declaring extra plot scripts")
	cmd.Flags().Bool("png", false, "Also write a static PNG next to every HTML file")
	cmd.Flags().Bool("open", false, "Open every written HTML file in the browser")
	return cmd
}

func newAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Render every built-in plot script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(cmd, catalog.Builtin())
		},
	}
	cmd.Flags().Bool("png", false, "Also write a static PNG next to every HTML file")
	cmd.Flags().Bool("open", false, "Open every written HTML file in the browser")
	return cmd
}

// openBrowser is replaced in tests.
var openBrowser = render.OpenBrowser

// runScripts runs scripts in order and stops at the first failure.
func runScripts(cmd *cobra.Command, scripts []catalog.Script) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	png, _ := cmd.Flags().GetBool("png")
	open, _ := cmd.Flags().GetBool("open")

	env, err := newRunEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	results := make([]*pipeline.Result, 0, len(scripts))
	for _, s := range scripts {
		res, err := pipeline.Run(cmd.Context(), s, env.options(png))
		if err != nil {
			return err
		}
		results = append(results, res)
		if !jsonOut {
			printResult(cmd.OutOrStdout(), res)
		}
		if open {
			openOutputs(cmd, res)
		}
	}

	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
			"results": results,
			"count":   len(results),
		})
	}
	return nil
}

// openOutputs opens each HTML output. Failures are reported, not returned:
// the files are already written.
func openOutputs(cmd *cobra.Command, res *pipeline.Result) {
	for _, o := range res.Outputs {
		if o.Format != render.FormatHTML {
			continue
		}
		if err := openBrowser(o.Path); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open %s: %v\n", o.Output, err)
		}
	}
}

func printResult(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "%s:\n", res.Script)
	for _, o := range res.Outputs {
		fmt.Fprintf(w, "  wrote %-40s %d series, %d points\n", o.Output, o.Series, o.Points)
		if o.Truncated > 0 {
			fmt.Fprintf(w, "  (%s: extra fields dropped on %d rows)\n", o.Input, o.Truncated)
		}
	}
}
