// Package report builds the human-readable run report from per-sample
// statistics and the cohort clade assignments.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// SampleRow is one sample's line in the report.
type SampleRow struct {
	Sample    string
	Reads     int
	MeanDepth float64
	Coverage  float64
	Variants  int
	Clade     string
	Notes     string
}

// Report is the synthesized run summary.
type Report struct {
	RunID         string
	SchemeVersion string
	ModelName     string
	MinLength     int
	MaxLength     int
	GeneratedAt   time.Time
	Rows          []SampleRow
	// CladeAvailable is false when the clade assignment input was
	// missing; the report degrades instead of failing.
	CladeAvailable bool
}

// Render writes the report as markdown.
func Render(w io.Writer, r *Report) error {
	header := fmt.Sprintf("# Run report %s\n\n", r.RunID)
	meta := fmt.Sprintf("Scheme %s, model %s, read length %d-%d, generated %s\n\n",
		r.SchemeVersion, r.ModelName, r.MinLength, r.MaxLength,
		r.GeneratedAt.UTC().Format(time.RFC3339))
	if _, err := io.WriteString(w, header+meta); err != nil {
		return err
	}
	if !r.CladeAvailable {
		notice := "Clade assignment was unavailable for this run; the clade column is empty.\n\n"
		if _, err := io.WriteString(w, notice); err != nil {
			return err
		}
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Sample", "Reads", "Mean depth", "Coverage", "Variants", "Clade", "Notes"})
	for _, row := range r.Rows {
		tw.AppendRow(table.Row{
			row.Sample,
			row.Reads,
			fmt.Sprintf("%.1fx", row.MeanDepth),
			fmt.Sprintf("%.1f%%", row.Coverage*100),
			row.Variants,
			row.Clade,
			row.Notes,
		})
	}
	if _, err := io.WriteString(w, tw.RenderMarkdown()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
