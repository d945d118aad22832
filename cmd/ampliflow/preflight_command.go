package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ampliflow/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check directories and external tools before running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.CheckAll(cfg, inputDir)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, r := range results {
				if !r.Passed {
					failed++
				}
				rows = append(rows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Check", "OK", "Detail"}, rows, nil))
			if failed > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failed)
			}
			fmt.Fprintln(out, "All preflight checks passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Input directory to include in the checks")
	return cmd
}
