package aggregate_test

import (
	"path/filepath"
	"testing"

	"ampliflow/internal/aggregate"
	"ampliflow/internal/artifact"
	"ampliflow/internal/fasta"
	"ampliflow/internal/testsupport"
)

func displayNames(names map[string]string) func(string) string {
	return func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}
}

func TestConcatRenamesAndPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.fa")
	b := filepath.Join(dir, "b.fa")
	testsupport.WriteFile(t, a, ">barcode01/ARTIC/medaka some desc\nACGTACGT\n")
	testsupport.WriteFile(t, b, ">barcode02/ARTIC/medaka\nTTTTGGGG\n")

	out := filepath.Join(dir, "combined.fa")
	inputs := []artifact.Artifact{
		{Kind: artifact.KindConsensus, SampleID: "barcode01", Path: a},
		{Kind: artifact.KindConsensus, SampleID: "barcode02", Path: b},
	}
	err := aggregate.Concat(inputs, displayNames(map[string]string{
		"barcode01": "SampleA",
		"barcode02": "SampleB",
	}), out)
	if err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}

	records, err := fasta.ReadFile(out)
	if err != nil {
		t.Fatalf("read combined: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "SampleA" || records[1].Name != "SampleB" {
		t.Fatalf("headers = %s, %s", records[0].Name, records[1].Name)
	}
	if records[0].Description != "" {
		t.Fatalf("description should be dropped, got %q", records[0].Description)
	}
	if string(records[0].Sequence) != "ACGTACGT" {
		t.Fatalf("sequence = %s", records[0].Sequence)
	}
}

func TestConcatNumbersMultiRecordInputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "multi.fa")
	testsupport.WriteFile(t, in, ">seg1\nAAAA\n>seg2\nCCCC\n")

	out := filepath.Join(dir, "combined.fa")
	inputs := []artifact.Artifact{{Kind: artifact.KindConsensus, SampleID: "barcode01", Path: in}}
	err := aggregate.Concat(inputs, displayNames(map[string]string{"barcode01": "SampleA"}), out)
	if err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}

	records, err := fasta.ReadFile(out)
	if err != nil {
		t.Fatalf("read combined: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "SampleA.1" || records[1].Name != "SampleA.2" {
		t.Fatalf("headers = %s, %s", records[0].Name, records[1].Name)
	}
}

func TestConcatEmptyInputsWritesEmptyFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "combined.fa")
	if err := aggregate.Concat(nil, displayNames(nil), out); err != nil {
		t.Fatalf("Concat returned error: %v", err)
	}
	records, err := fasta.ReadFile(out)
	if err != nil {
		t.Fatalf("read combined: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty output, got %d records", len(records))
	}
}
