package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"

	"ampliflow/internal/artifact"
	"ampliflow/internal/services"
	"ampliflow/internal/vcf"
)

// mergedRecord pairs a variant record with the sample that called it.
type mergedRecord struct {
	vcf.Record
	sample string
}

// MergeVCF combines per-sample variant call files into one re-sorted
// cohort VCF. Every input must describe the same reference contigs;
// a mismatch means the calls live in different coordinate systems and
// cannot be combined.
func MergeVCF(inputs []artifact.Artifact, displayName func(sampleID string) string, outPath string) error {
	if len(inputs) == 0 {
		return services.Wrap(services.ErrMergeConflict, "merge", "read variants", "no inputs", nil)
	}

	files := make([]*vcf.File, len(inputs))
	errs := make([]error, len(inputs))
	parallel.Range(0, len(inputs), 0, func(low, high int) {
		for i := low; i < high; i++ {
			files[i], errs[i] = vcf.ReadFile(inputs[i].Path)
		}
	})
	for i, err := range errs {
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "merge", "read variants", inputs[i].SampleID, err)
		}
	}

	reference := files[0].Header
	for i := 1; i < len(files); i++ {
		if err := checkCompatible(reference, files[i].Header); err != nil {
			return services.Wrap(services.ErrMergeConflict, "merge", "check contigs",
				fmt.Sprintf("%s vs %s", inputs[0].SampleID, inputs[i].SampleID), err)
		}
	}

	contigRank := make(map[string]int, len(reference.Contigs))
	for i, contig := range reference.Contigs {
		contigRank[contig] = i
	}

	var merged []mergedRecord
	for i, file := range files {
		sample := displayName(inputs[i].SampleID)
		for _, record := range file.Records {
			tagged := record
			tagged.Info = appendInfo(record.Info, "SAMPLE="+sample)
			merged = append(merged, mergedRecord{Record: tagged, sample: sample})
		}
	}

	psort.StableSort(recordSorter{merged, contigRank})

	out := &vcf.File{Header: mergedHeader(reference)}
	out.Records = make([]vcf.Record, len(merged))
	for i, record := range merged {
		out.Records[i] = record.Record
	}
	if err := vcf.WriteFile(outPath, out); err != nil {
		return services.Wrap(services.ErrExternalTool, "merge", "write combined variants", outPath, err)
	}
	return nil
}

func checkCompatible(a, b vcf.Header) error {
	if len(a.Contigs) != len(b.Contigs) {
		return fmt.Errorf("contig count mismatch: %d vs %d", len(a.Contigs), len(b.Contigs))
	}
	for i := range a.Contigs {
		if a.Contigs[i] != b.Contigs[i] {
			return fmt.Errorf("contig mismatch at position %d: %q vs %q", i, a.Contigs[i], b.Contigs[i])
		}
	}
	return nil
}

func appendInfo(info, entry string) string {
	if info == "" || info == "." {
		return entry
	}
	return info + ";" + entry
}

// mergedHeader keeps the reference meta lines, dropping per-sample column
// layouts since the merged file carries site-level records only.
func mergedHeader(reference vcf.Header) vcf.Header {
	header := vcf.Header{
		FileFormat: reference.FileFormat,
		Contigs:    append([]string{}, reference.Contigs...),
		Meta:       append([]string{}, reference.Meta...),
		Columns:    []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"},
	}
	header.Meta = append(header.Meta, `##INFO=<ID=SAMPLE,Number=1,Type=String,Description="Sample that called the variant">`)
	return header
}

// recordSorter parallel-sorts merged records by contig rank, position,
// and sample name.
type recordSorter struct {
	records []mergedRecord
	rank    map[string]int
}

func (s recordSorter) less(a, b mergedRecord) bool {
	ra, rb := s.rank[a.Chrom], s.rank[b.Chrom]
	if ra != rb {
		return ra < rb
	}
	if a.Pos != b.Pos {
		return a.Pos < b.Pos
	}
	return strings.Compare(a.sample, b.sample) < 0
}

func (s recordSorter) SequentialSort(i, j int) {
	records := s.records[i:j]
	sort.SliceStable(records, func(i, j int) bool {
		return s.less(records[i], records[j])
	})
}

func (s recordSorter) NewTemp() psort.StableSorter {
	return recordSorter{make([]mergedRecord, len(s.records)), s.rank}
}

func (s recordSorter) Len() int {
	return len(s.records)
}

func (s recordSorter) Less(i, j int) bool {
	return s.less(s.records[i], s.records[j])
}

func (s recordSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s.records, p.(recordSorter).records
	return func(i, j, len int) {
		for k := 0; k < len; k++ {
			dst[i+k] = src[j+k]
		}
	}
}
