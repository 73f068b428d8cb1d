package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently written charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			output, _ := cmd.Flags().GetString("output")

			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			hs, err := history.Open(cmd.Context(), root)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer hs.Close()

			var runs []history.Run
			if output != "" {
				runs, err = hs.ListOutput(cmd.Context(), output, limit)
			} else {
				runs, err = hs.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No recorded runs.")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %-24s %-40s %7d pts  %.12s\n",
					r.RenderedAt.Local().Format("2006-01-02 15:04:05"), r.Script, r.Output, r.Points, r.Digest)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", constants.DefaultHistoryLimit, "Maximum number of runs to show")
	cmd.Flags().String("output", "", "Only show runs that wrote this file")
	return cmd
}
