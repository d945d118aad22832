package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFastq writes a minimal FASTQ file with the given number of reads.
func WriteFastq(t testing.TB, path string, reads int) {
	t.Helper()

	var b strings.Builder
	for i := 0; i < reads; i++ {
		fmt.Fprintf(&b, "@read%d\nACGTACGT\n+\nIIIIIIII\n", i)
	}
	WriteFile(t, path, b.String())
}

// MultiplexedRun builds an input tree with one barcode container per id,
// each holding a single FASTQ file, and returns the root.
func MultiplexedRun(t testing.TB, barcodes ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, barcode := range barcodes {
		WriteFastq(t, filepath.Join(root, barcode, "reads.fastq"), 3)
	}
	return root
}

// SingleSampleRun builds an input directory holding raw read files with no
// container subdirectories.
func SingleSampleRun(t testing.TB) string {
	t.Helper()

	root := t.TempDir()
	WriteFastq(t, filepath.Join(root, "reads.fastq"), 3)
	return root
}

// WriteMapping writes a barcode-to-name mapping file and returns its path.
// Rows are "id,name" pairs.
func WriteMapping(t testing.TB, dir string, rows ...string) string {
	t.Helper()

	path := filepath.Join(dir, "samples.csv")
	WriteFile(t, path, strings.Join(rows, "\n")+"\n")
	return path
}
