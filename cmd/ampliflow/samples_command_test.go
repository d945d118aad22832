package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFastq(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("@r\nACGT\n+\nIIII\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestSamplesCommandListsResolvedSamples(t *testing.T) {
	root := t.TempDir()
	writeFastq(t, filepath.Join(root, "barcode01", "reads.fastq"))
	writeFastq(t, filepath.Join(root, "barcode02", "reads.fastq"))

	mapping := filepath.Join(t.TempDir(), "samples.csv")
	if err := os.WriteFile(mapping, []byte("barcode01,SampleA\nbarcode02,SampleB\n"), 0o644); err != nil {
		t.Fatalf("write mapping: %v", err)
	}

	out, err := runCLI(t, "samples", root, "--sample-map", mapping)
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	requireContains(t, out, "multiplexed")
	requireContains(t, out, "barcode01")
	requireContains(t, out, "SampleA")
	requireContains(t, out, "SampleB")
}

func TestSamplesCommandFailsOnEmptyInput(t *testing.T) {
	if _, err := runCLI(t, "samples", t.TempDir()); err == nil {
		t.Fatal("expected resolution error for empty input")
	}
}

func TestRunCommandRejectsUnknownScheme(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	writeFastq(t, filepath.Join(root, "barcode01", "reads.fastq"))

	_, err := runCLI(t, "run", root, "--scheme-version", "V99")
	if err == nil {
		t.Fatal("expected error for unsupported scheme version")
	}
	requireContains(t, err.Error(), "unsupported scheme version")
}
