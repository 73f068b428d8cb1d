package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plot scripts with their inputs and outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			scripts := cat.All()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"scripts": scripts,
					"count":   len(scripts),
				})
			}

			out := cmd.OutOrStdout()
			for _, s := range scripts {
				fmt.Fprintf(out, "%s\n", s.Name)
				if s.Description != "" {
					fmt.Fprintf(out, "  %s\n", s.Description)
				}
				for _, f := range s.Figures {
					n := f.Normalized()
					cols := make([]string, len(n.Traces))
					for i, t := range n.Traces {
						cols[i] = t.Y
					}
					fmt.Fprintf(out, "  %s <- %s [%dx%d] %s\n", n.Output, n.Input, n.Rows, n.Cols, strings.Join(cols, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().String("manifest", "", "YAML file declaring extra plot scripts")
	return cmd
}
