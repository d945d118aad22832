package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ampliflow/internal/logging"
	"ampliflow/internal/samples"
)

// newSamplesCommand resolves the sample set without scheduling anything,
// so operators can verify mapping files before committing to a run.
func newSamplesCommand(ctx *commandContext) *cobra.Command {
	var mappingPath string
	var sampleName string

	cmd := &cobra.Command{
		Use:         "samples <input-dir>",
		Short:       "Resolve and list the samples an input directory would produce",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolution, err := samples.Resolve(args[0], samples.Options{
				MappingPath: mappingPath,
				SampleName:  sampleName,
				Logger:      logging.NewNop(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\n", resolution.Mode)
			if len(resolution.Samples) == 0 {
				fmt.Fprintln(out, "No samples resolved")
				return nil
			}

			rows := make([][]string, 0, len(resolution.Samples))
			for _, s := range resolution.Samples {
				rows = append(rows, []string{s.ID, s.DisplayName, s.InputDir})
			}
			fmt.Fprintln(out, renderTable([]string{"Barcode", "Sample", "Input"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingPath, "sample-map", "", "Tabular file mapping barcode ids to sample names")
	cmd.Flags().StringVar(&sampleName, "sample-name", "", "Display name for single-sample input")
	return cmd
}
