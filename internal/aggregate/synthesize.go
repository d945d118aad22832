package aggregate

import (
	"os"
	"strings"
	"time"

	"ampliflow/internal/artifact"
	"ampliflow/internal/report"
	"ampliflow/internal/samples"
	"ampliflow/internal/services"
	"ampliflow/internal/services/nextclade"
)

// SynthesisInput gathers everything the run report draws on. CladePath
// may be empty; the report then degrades instead of failing.
type SynthesisInput struct {
	RunID         string
	SchemeVersion string
	ModelName     string
	MinLength     int
	MaxLength     int

	Samples []samples.Sample
	Depth   *artifact.Set
	ReadQC  *artifact.Set
	Stats   *artifact.Set

	CladePath string
	OutPath   string
}

// Synthesize combines the per-sample statistic sets and the clade result
// into one report artifact. Individual missing or malformed inputs
// degrade the affected row rather than aborting the synthesis.
func Synthesize(in SynthesisInput) error {
	doc := &report.Report{
		RunID:         in.RunID,
		SchemeVersion: in.SchemeVersion,
		ModelName:     in.ModelName,
		MinLength:     in.MinLength,
		MaxLength:     in.MaxLength,
		GeneratedAt:   time.Now(),
	}

	clades := map[string]string{}
	if in.CladePath != "" {
		parsed, err := nextclade.ParseOutput(in.CladePath)
		if err == nil {
			for _, assignment := range parsed.Results {
				clades[assignment.SeqName] = assignment.Clade
			}
			doc.CladeAvailable = true
		}
	}

	for _, sample := range in.Samples {
		row := report.SampleRow{Sample: sample.DisplayName}
		var notes []string

		if summary, err := summarizeDepth(in.Depth, sample.ID); err == nil {
			row.MeanDepth = summary.MeanDepth
			row.Coverage = summary.Coverage
		} else {
			notes = append(notes, "depth unavailable")
		}
		if count, err := countReads(in.ReadQC, sample.ID); err == nil {
			row.Reads = count
		} else {
			notes = append(notes, "read stats unavailable")
		}
		if stats, err := sampleStats(in.Stats, sample.ID); err == nil {
			row.Variants = stats.Variants
		} else {
			notes = append(notes, "variant stats unavailable")
		}
		row.Clade = clades[sample.DisplayName]
		row.Notes = strings.Join(notes, "; ")
		doc.Rows = append(doc.Rows, row)
	}

	out, err := os.Create(in.OutPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "report", "create report", in.OutPath, err)
	}
	if err := report.Render(out, doc); err != nil {
		out.Close()
		return services.Wrap(services.ErrExternalTool, "report", "render report", in.OutPath, err)
	}
	return out.Close()
}

func summarizeDepth(set *artifact.Set, sampleID string) (*report.DepthSummary, error) {
	path, err := findArtifact(set, sampleID, artifact.KindDepth)
	if err != nil {
		return nil, err
	}
	return report.ParseDepthTSV(path)
}

func countReads(set *artifact.Set, sampleID string) (int, error) {
	path, err := findArtifact(set, sampleID, artifact.KindReadQC)
	if err != nil {
		return 0, err
	}
	return report.ParseReadCount(path)
}

func sampleStats(set *artifact.Set, sampleID string) (*report.RunStats, error) {
	path, err := findArtifact(set, sampleID, artifact.KindRunStats)
	if err != nil {
		return nil, err
	}
	return report.ParseRunStats(path)
}

func findArtifact(set *artifact.Set, sampleID string, kind artifact.Kind) (string, error) {
	if set == nil {
		return "", os.ErrNotExist
	}
	for _, a := range set.ForSample(sampleID) {
		if a.Kind == kind {
			return a.Path, nil
		}
	}
	return "", os.ErrNotExist
}
