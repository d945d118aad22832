// Package aggregate implements the fan-in operations that reduce keyed
// per-sample artifact collections into cohort-level artifacts: ordered
// concatenation, multi-way variant merge, and report synthesis.
package aggregate

import (
	"fmt"

	"ampliflow/internal/artifact"
	"ampliflow/internal/fasta"
	"ampliflow/internal/services"
)

// Concat combines per-sample consensus sequences into one FASTA. The
// inputs must already be in resolution order; completion order is never
// trusted here, so the combined artifact is deterministic run to run.
// Record headers are rewritten to the sample display name.
func Concat(inputs []artifact.Artifact, displayName func(sampleID string) string, outPath string) error {
	var combined []fasta.Record
	for _, input := range inputs {
		records, err := fasta.ReadFile(input.Path)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "concat", "read consensus", input.SampleID, err)
		}
		name := displayName(input.SampleID)
		for i, record := range records {
			renamed := record
			renamed.Name = name
			if len(records) > 1 {
				renamed.Name = fmt.Sprintf("%s.%d", name, i+1)
			}
			renamed.Description = ""
			combined = append(combined, renamed)
		}
	}
	if err := fasta.WriteFile(outPath, combined); err != nil {
		return services.Wrap(services.ErrExternalTool, "concat", "write combined consensus", outPath, err)
	}
	return nil
}
