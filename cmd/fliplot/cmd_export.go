package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/frame"
	"github.com/nvandessel/fliplot/internal/pathutil"
	"github.com/nvandessel/fliplot/internal/render"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <csv>",
		Short: "Export a simulation CSV as a clean table",
		Long: `Load a simulation CSV the way the plot scripts do and write it back as a
rectangular CSV or a Parquet file. Extra per-bacterium fields are dropped and
empty cells become nulls.

Examples:
  fliplot export lacI_ALL.csv -o lacI.parquet --format parquet
  fliplot export Settings.csv --skip-rows 6 -o settings.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			formatStr, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			skipRows, _ := cmd.Flags().GetInt("skip-rows")

			format := constants.ExportFormat(formatStr)
			if !format.Valid() {
				return fmt.Errorf("invalid format %q (valid: csv, parquet)", formatStr)
			}
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if skipRows < 0 {
				return fmt.Errorf("--skip-rows must not be negative")
			}

			inPath, err := pathutil.Resolve(root, args[0])
			if err != nil {
				return err
			}
			outPath, err := pathutil.Resolve(root, output)
			if err != nil {
				return err
			}

			f, err := frame.Load(inPath, frame.Options{SkipRows: skipRows})
			if err != nil {
				return err
			}
			defer f.Release()

			var buf bytes.Buffer
			switch format {
			case constants.ExportParquet:
				err = f.WriteParquet(&buf)
			default:
				err = f.WriteCSV(&buf)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", args[0], err)
			}
			if err := render.WriteFile(outPath, buf.Bytes()); err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"input":     args[0],
					"output":    output,
					"format":    format.String(),
					"rows":      f.NumRows(),
					"columns":   f.Columns(),
					"truncated": f.Truncated(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s -> %s (%d rows, %d columns, %s)\n",
				args[0], output, f.NumRows(), len(f.Columns()), format)
			return nil
		},
	}
	cmd.Flags().String("format", string(constants.ExportCSV), "Output format: csv or parquet")
	cmd.Flags().StringP("output", "o", "", "Output file, relative to --root")
	cmd.Flags().Int("skip-rows", 0, "Lines to skip before the header row")
	return cmd
}
