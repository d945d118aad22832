package samples_test

import (
	"errors"
	"path/filepath"
	"testing"

	"ampliflow/internal/logging"
	"ampliflow/internal/samples"
	"ampliflow/internal/services"
	"ampliflow/internal/testsupport"
)

func TestResolveMultiplexedWithoutMapping(t *testing.T) {
	root := testsupport.MultiplexedRun(t, "barcode01", "barcode02")

	resolution, err := samples.Resolve(root, samples.Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolution.Mode != samples.Multiplexed {
		t.Fatalf("expected multiplexed mode, got %s", resolution.Mode)
	}
	if len(resolution.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(resolution.Samples))
	}
	for i, want := range []string{"barcode01", "barcode02"} {
		got := resolution.Samples[i]
		if got.ID != want || got.DisplayName != want {
			t.Fatalf("sample %d = %+v, want identity mapping for %s", i, got, want)
		}
		if got.InputDir != filepath.Join(root, want) {
			t.Fatalf("sample %d input dir = %s", i, got.InputDir)
		}
	}
}

func TestResolveInnerJoinDropsBothSides(t *testing.T) {
	root := testsupport.MultiplexedRun(t, "barcode01", "barcode02")
	mapping := testsupport.WriteMapping(t, t.TempDir(),
		"barcode01,SampleA",
		"barcode03,SampleC",
	)

	resolution, err := samples.Resolve(root, samples.Options{
		MappingPath: mapping,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(resolution.Samples) != 1 {
		t.Fatalf("expected 1 joined sample, got %d", len(resolution.Samples))
	}
	got := resolution.Samples[0]
	if got.ID != "barcode01" || got.DisplayName != "SampleA" {
		t.Fatalf("joined sample = %+v", got)
	}
}

func TestResolveNumericContainerOrdering(t *testing.T) {
	root := testsupport.MultiplexedRun(t, "barcode10", "barcode2", "barcode1")

	resolution, err := samples.Resolve(root, samples.Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	var ids []string
	for _, s := range resolution.Samples {
		ids = append(ids, s.ID)
	}
	want := []string{"barcode1", "barcode2", "barcode10"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("resolution order = %v, want %v", ids, want)
		}
	}
}

func TestResolveIgnoresNonContainerDirectories(t *testing.T) {
	root := testsupport.MultiplexedRun(t, "barcode01")
	testsupport.WriteFastq(t, filepath.Join(root, "unclassified", "reads.fastq"), 2)
	testsupport.WriteFastq(t, filepath.Join(root, "barcode1000", "reads.fastq"), 2)

	resolution, err := samples.Resolve(root, samples.Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(resolution.Samples) != 1 || resolution.Samples[0].ID != "barcode01" {
		t.Fatalf("samples = %+v, want only barcode01", resolution.Samples)
	}
}

func TestResolveSingleSampleDefaultsToDirectoryName(t *testing.T) {
	root := testsupport.SingleSampleRun(t)

	resolution, err := samples.Resolve(root, samples.Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolution.Mode != samples.SingleSample {
		t.Fatalf("expected single-sample mode, got %s", resolution.Mode)
	}
	want := filepath.Base(root)
	got := resolution.Samples[0]
	if got.ID != want || got.DisplayName != want {
		t.Fatalf("sample = %+v, want name %s", got, want)
	}
	if got.InputDir != root {
		t.Fatalf("input dir = %s, want %s", got.InputDir, root)
	}
}

func TestResolveSingleSampleNameOverride(t *testing.T) {
	root := testsupport.SingleSampleRun(t)

	resolution, err := samples.Resolve(root, samples.Options{
		SampleName: "patient-7",
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolution.Samples[0].DisplayName != "patient-7" {
		t.Fatalf("display name = %s", resolution.Samples[0].DisplayName)
	}
}

func TestResolveEmptyInputFails(t *testing.T) {
	_, err := samples.Resolve(t.TempDir(), samples.Options{Logger: logging.NewNop()})
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestResolveEmptyMappingYieldsZeroSamples(t *testing.T) {
	root := testsupport.MultiplexedRun(t, "barcode01")
	mapping := filepath.Join(t.TempDir(), "empty.csv")
	testsupport.WriteFile(t, mapping, "")

	resolution, err := samples.Resolve(root, samples.Options{
		MappingPath: mapping,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(resolution.Samples) != 0 {
		t.Fatalf("expected no samples, got %d", len(resolution.Samples))
	}
}

func TestResolveMappingWithHeaderAndTabs(t *testing.T) {
	root := testsupport.MultiplexedRun(t, "barcode01", "barcode02")
	mapping := filepath.Join(t.TempDir(), "samples.tsv")
	testsupport.WriteFile(t, mapping, "barcode\tsample\nbarcode01\tAlpha\nbarcode02\tBeta\n")

	resolution, err := samples.Resolve(root, samples.Options{
		MappingPath: mapping,
		Logger:      logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(resolution.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(resolution.Samples))
	}
	if resolution.Samples[0].DisplayName != "Alpha" || resolution.Samples[1].DisplayName != "Beta" {
		t.Fatalf("display names = %+v", resolution.Samples)
	}
}

func TestResolveMappingDuplicateIDFails(t *testing.T) {
	root := testsupport.MultiplexedRun(t, "barcode01")
	mapping := testsupport.WriteMapping(t, t.TempDir(),
		"barcode01,First",
		"barcode01,Second",
	)

	_, err := samples.Resolve(root, samples.Options{
		MappingPath: mapping,
		Logger:      logging.NewNop(),
	})
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected resolution error for duplicate id, got %v", err)
	}
}
