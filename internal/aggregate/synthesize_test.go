package aggregate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ampliflow/internal/aggregate"
	"ampliflow/internal/artifact"
	"ampliflow/internal/samples"
	"ampliflow/internal/testsupport"
)

func TestSynthesizeBuildsCompleteReport(t *testing.T) {
	dir := t.TempDir()

	depth := filepath.Join(dir, "depth.tsv")
	testsupport.WriteFile(t, depth, "MN908947.3\t1\t100\nMN908947.3\t2\t10\n")
	readqc := filepath.Join(dir, "readqc.tsv")
	testsupport.WriteFile(t, readqc, "file\tformat\ttype\tnum_seqs\nreads.fastq\tFASTQ\tDNA\t1200\n")
	stats := filepath.Join(dir, "stats.json")
	testsupport.WriteFile(t, stats, `{"reads_mapped": 1100, "variants": 7}`)
	clade := filepath.Join(dir, "clades.json")
	testsupport.WriteFile(t, clade, `{"results": [{"seqName": "SampleA", "clade": "20I"}]}`)

	compute := artifact.NewSet("compute")
	compute.Append(
		artifact.Artifact{Kind: artifact.KindDepth, SampleID: "barcode01", Path: depth},
		artifact.Artifact{Kind: artifact.KindRunStats, SampleID: "barcode01", Path: stats},
	)
	qc := artifact.NewSet("readqc")
	qc.Append(artifact.Artifact{Kind: artifact.KindReadQC, SampleID: "barcode01", Path: readqc})

	out := filepath.Join(dir, "report.md")
	err := aggregate.Synthesize(aggregate.SynthesisInput{
		RunID:         "run-1",
		SchemeVersion: "V3",
		ModelName:     "r941_min_high_g360",
		MinLength:     400,
		MaxLength:     700,
		Samples:       []samples.Sample{{ID: "barcode01", DisplayName: "SampleA"}},
		Depth:         compute,
		ReadQC:        qc,
		Stats:         compute,
		CladePath:     clade,
		OutPath:       out,
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	text := string(data)
	for _, want := range []string{"run-1", "SampleA", "1200", "55.0x", "50.0%", "7", "20I"} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "unavailable") {
		t.Fatalf("complete inputs should produce no degradation notes:\n%s", text)
	}
}

func TestSynthesizeDegradesMissingInputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.md")

	err := aggregate.Synthesize(aggregate.SynthesisInput{
		RunID:   "run-2",
		Samples: []samples.Sample{{ID: "barcode01", DisplayName: "SampleA"}},
		Depth:   artifact.NewSet("compute"),
		ReadQC:  artifact.NewSet("readqc"),
		Stats:   artifact.NewSet("compute"),
		OutPath: out,
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"Clade assignment was unavailable",
		"depth unavailable",
		"read stats unavailable",
		"variant stats unavailable",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing degradation note %q:\n%s", want, text)
		}
	}
}
