// Package vcf implements the minimal VCF header and record handling the
// multi-way merge aggregate needs. It preserves unknown meta lines
// verbatim and only interprets the fields the merge keys on.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Header captures the meta section of a VCF file.
type Header struct {
	FileFormat string
	// Contigs lists contig IDs in declaration order. Two files merge only
	// when their contig sets agree; mismatched reference coordinate
	// systems cannot be combined.
	Contigs []string
	// Meta holds every ## line verbatim, in order.
	Meta []string
	// Columns holds the #CHROM header fields.
	Columns []string
}

// Record is one data line of a VCF file.
type Record struct {
	Chrom  string
	Pos    int
	ID     string
	Ref    string
	Alt    string
	Qual   string
	Filter string
	Info   string
	// Rest holds FORMAT and sample columns, if present.
	Rest []string
}

// File is a parsed VCF.
type File struct {
	Header  Header
	Records []Record
}

const minColumns = 8

// Read parses a VCF stream.
func Read(r io.Reader) (*File, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	file := &File{}
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if text == "" {
			continue
		}
		switch {
		case strings.HasPrefix(text, "##"):
			file.Header.Meta = append(file.Header.Meta, text)
			if strings.HasPrefix(text, "##fileformat=") {
				file.Header.FileFormat = strings.TrimPrefix(text, "##fileformat=")
			}
			if id, ok := contigID(text); ok {
				file.Header.Contigs = append(file.Header.Contigs, id)
			}
		case strings.HasPrefix(text, "#"):
			file.Header.Columns = strings.Split(strings.TrimPrefix(text, "#"), "\t")
		default:
			record, err := parseRecord(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			file.Records = append(file.Records, record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return file, nil
}

// ReadFile parses the named VCF file, transparently decompressing
// gzip-suffixed files.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	parsed, err := Read(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}

func contigID(meta string) (string, bool) {
	if !strings.HasPrefix(meta, "##contig=<") {
		return "", false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(meta, "##contig=<"), ">")
	for _, field := range strings.Split(body, ",") {
		if id, ok := strings.CutPrefix(field, "ID="); ok {
			return id, true
		}
	}
	return "", false
}

func parseRecord(text string) (Record, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < minColumns {
		return Record{}, fmt.Errorf("record has %d column(s), want at least %d", len(fields), minColumns)
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("invalid POS %q", fields[1])
	}
	return Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    fields[4],
		Qual:   fields[5],
		Filter: fields[6],
		Info:   fields[7],
		Rest:   append([]string{}, fields[minColumns:]...),
	}, nil
}

// Write renders the file back to w.
func Write(w io.Writer, file *File) error {
	buf := bufio.NewWriter(w)
	for _, meta := range file.Header.Meta {
		if _, err := buf.WriteString(meta + "\n"); err != nil {
			return err
		}
	}
	columns := file.Header.Columns
	if len(columns) == 0 {
		columns = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}
	}
	if _, err := buf.WriteString("#" + strings.Join(columns, "\t") + "\n"); err != nil {
		return err
	}
	for _, record := range file.Records {
		fields := append([]string{
			record.Chrom,
			strconv.Itoa(record.Pos),
			record.ID,
			record.Ref,
			record.Alt,
			record.Qual,
			record.Filter,
			record.Info,
		}, record.Rest...)
		if _, err := buf.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// WriteFile renders the file to the named path.
func WriteFile(path string, file *File) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, file); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
