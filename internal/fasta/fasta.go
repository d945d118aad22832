// Package fasta implements the minimal FASTA reading and writing the
// aggregation stages need to combine per-sample consensus sequences.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA entry.
type Record struct {
	// Name is the first word of the header line, without the leading '>'.
	Name string
	// Description is the remainder of the header line, if any.
	Description string
	Sequence    []byte
}

const lineWidth = 70

// Read parses every record from r.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var records []Record
	var current *Record
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ">") {
			header := strings.TrimSpace(text[1:])
			if header == "" {
				return nil, fmt.Errorf("line %d: empty record header", line)
			}
			name, description, _ := strings.Cut(header, " ")
			records = append(records, Record{Name: name, Description: description})
			current = &records[len(records)-1]
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: sequence data before first header", line)
		}
		current.Sequence = append(current.Sequence, []byte(text)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadFile parses every record from the named file.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	records, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Write renders records to w, wrapping sequence lines.
func Write(w io.Writer, records []Record) error {
	buf := bufio.NewWriter(w)
	for _, record := range records {
		header := ">" + record.Name
		if record.Description != "" {
			header += " " + record.Description
		}
		if _, err := buf.WriteString(header + "\n"); err != nil {
			return err
		}
		seq := record.Sequence
		for len(seq) > 0 {
			chunk := seq
			if len(chunk) > lineWidth {
				chunk = chunk[:lineWidth]
			}
			if _, err := buf.Write(chunk); err != nil {
				return err
			}
			if err := buf.WriteByte('\n'); err != nil {
				return err
			}
			seq = seq[len(chunk):]
		}
	}
	return buf.Flush()
}

// WriteFile renders records to the named file.
func WriteFile(path string, records []Record) error {
	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
