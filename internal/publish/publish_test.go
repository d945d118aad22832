package publish_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ampliflow/internal/artifact"
	"ampliflow/internal/logging"
	"ampliflow/internal/publish"
	"ampliflow/internal/services"
	"ampliflow/internal/testsupport"
)

func TestPublishCopiesArtifacts(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "results")

	consensus := filepath.Join(srcDir, "consensus.fasta")
	report := filepath.Join(srcDir, "report.md")
	testsupport.WriteFile(t, consensus, ">SampleA\nACGT\n")
	testsupport.WriteFile(t, report, "# Run report\n")

	publisher := publish.New(outDir, logging.NewNop())
	outcomes := publisher.Publish([]artifact.Artifact{
		{Kind: artifact.KindConsensus, Path: consensus},
		{Kind: artifact.KindReport, Path: report},
	})
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("publish %s: %v", o.Artifact.Path, o.Err)
		}
		if _, err := os.Stat(o.Published); err != nil {
			t.Fatalf("published copy missing: %v", err)
		}
	}

	// Source files are never touched.
	if _, err := os.Stat(consensus); err != nil {
		t.Fatalf("source removed: %v", err)
	}
}

func TestPublishOverwritesOnRepeat(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	src := filepath.Join(srcDir, "report.md")
	testsupport.WriteFile(t, src, "first\n")

	publisher := publish.New(outDir, logging.NewNop())
	first := publisher.Publish([]artifact.Artifact{{Kind: artifact.KindReport, Path: src}})
	if first[0].Err != nil {
		t.Fatalf("first publish: %v", first[0].Err)
	}

	testsupport.WriteFile(t, src, "second\n")
	second := publisher.Publish([]artifact.Artifact{{Kind: artifact.KindReport, Path: src}})
	if second[0].Err != nil {
		t.Fatalf("second publish: %v", second[0].Err)
	}

	data, err := os.ReadFile(second[0].Published)
	if err != nil {
		t.Fatalf("read published copy: %v", err)
	}
	if string(data) != "second\n" {
		t.Fatalf("published content = %q, want overwrite", data)
	}
}

func TestPublishIsolatesFailures(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	good := filepath.Join(srcDir, "good.md")
	testsupport.WriteFile(t, good, "ok\n")
	missing := filepath.Join(srcDir, "missing.md")

	publisher := publish.New(outDir, logging.NewNop())
	outcomes := publisher.Publish([]artifact.Artifact{
		{Kind: artifact.KindReport, Path: missing},
		{Kind: artifact.KindReport, Path: good},
	})

	if !errors.Is(outcomes[0].Err, services.ErrPublish) {
		t.Fatalf("missing artifact error = %v, want publish error", outcomes[0].Err)
	}
	if outcomes[1].Err != nil {
		t.Fatalf("healthy artifact should still publish: %v", outcomes[1].Err)
	}
	if _, err := os.Stat(outcomes[1].Published); err != nil {
		t.Fatalf("healthy copy missing: %v", err)
	}
}

func TestPublishUsesArtifactNameWhenSet(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	src := filepath.Join(srcDir, "internal-name.fa")
	testsupport.WriteFile(t, src, ">x\nA\n")

	publisher := publish.New(outDir, logging.NewNop())
	outcomes := publisher.Publish([]artifact.Artifact{
		{Kind: artifact.KindConsensus, Name: "combined.fasta", Path: src},
	})
	if outcomes[0].Err != nil {
		t.Fatalf("publish: %v", outcomes[0].Err)
	}
	if filepath.Base(outcomes[0].Published) != "combined.fasta" {
		t.Fatalf("published name = %s", outcomes[0].Published)
	}
}
