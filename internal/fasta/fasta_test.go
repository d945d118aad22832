package fasta_test

import (
	"bytes"
	"strings"
	"testing"

	"ampliflow/internal/fasta"
)

func TestReadParsesHeadersAndSequences(t *testing.T) {
	input := ">seq1 first record\nACGT\nACGT\n\n>seq2\nTTTT\n"
	records, err := fasta.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "seq1" || records[0].Description != "first record" {
		t.Fatalf("record 0 = %+v", records[0])
	}
	if string(records[0].Sequence) != "ACGTACGT" {
		t.Fatalf("record 0 sequence = %s", records[0].Sequence)
	}
	if records[1].Name != "seq2" || string(records[1].Sequence) != "TTTT" {
		t.Fatalf("record 1 = %+v", records[1])
	}
}

func TestReadRejectsDataBeforeHeader(t *testing.T) {
	if _, err := fasta.Read(strings.NewReader("ACGT\n")); err == nil {
		t.Fatal("expected error for sequence before header")
	}
}

func TestWriteWrapsLongSequences(t *testing.T) {
	record := fasta.Record{
		Name:     "long",
		Sequence: bytes.Repeat([]byte("A"), 150),
	}
	var buf bytes.Buffer
	if err := fasta.Write(&buf, []fasta.Record{record}); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != ">long" {
		t.Fatalf("header line = %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 wrapped lines, got %d", len(lines))
	}
	if len(lines[1]) != 70 || len(lines[2]) != 70 || len(lines[3]) != 10 {
		t.Fatalf("wrap widths = %d/%d/%d", len(lines[1]), len(lines[2]), len(lines[3]))
	}

	parsed, err := fasta.Read(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(parsed[0].Sequence) != 150 {
		t.Fatalf("round trip lost sequence: %d", len(parsed[0].Sequence))
	}
}
