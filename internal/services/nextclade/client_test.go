package nextclade

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func stubRun(t *testing.T, mode string) *[][]string {
	t.Helper()

	var captured [][]string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append(captured, append([]string{name}, args...))
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "NEXTCLADE_HELPER_MODE="+mode)
		if mode == "success" {
			// Seed the result document the client validates after the run.
			for i, arg := range args {
				if arg == "--output-json" && i+1 < len(args) {
					if err := os.WriteFile(args[i+1], []byte(`{"results": []}`), 0o644); err != nil {
						t.Fatalf("seed output: %v", err)
					}
				}
			}
		}
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &captured
}

func TestRunBuildsExpectedCommand(t *testing.T) {
	workDir := t.TempDir()
	captured := stubRun(t, "success")

	cli := NewCLI()
	outPath, err := cli.Run(context.Background(), "/work/combined.fa", "/schemes/ref.fasta", "/schemes/primer.bed", workDir)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outPath != filepath.Join(workDir, "clades.json") {
		t.Fatalf("output path = %s", outPath)
	}

	got := (*captured)[0]
	want := []string{
		"nextclade", "run",
		"--output-json", filepath.Join(workDir, "clades.json"),
		"--input-ref", "/schemes/ref.fasta",
		"--input-pcr-primers", "/schemes/primer.bed",
		"/work/combined.fa",
	}
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunOmitsOptionalInputs(t *testing.T) {
	workDir := t.TempDir()
	captured := stubRun(t, "success")

	cli := NewCLI()
	if _, err := cli.Run(context.Background(), "/work/combined.fa", "", "", workDir); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	got := (*captured)[0]
	for _, arg := range got {
		if arg == "--input-ref" || arg == "--input-pcr-primers" {
			t.Fatalf("optional flag present: %v", got)
		}
	}
}

func TestRunFailsOnMalformedOutput(t *testing.T) {
	workDir := t.TempDir()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if err := os.WriteFile(filepath.Join(workDir, "clades.json"), []byte("not json"), 0o644); err != nil {
			t.Fatalf("seed output: %v", err)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "NEXTCLADE_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	if _, err := cli.Run(context.Background(), "/work/combined.fa", "", "", workDir); err == nil {
		t.Fatal("expected error for malformed result document")
	}
}

func TestParseOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clades.json")
	doc := `{"results": [{"seqName": "SampleA", "clade": "20I"}, {"seqName": "SampleB", "clade": "20B"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	parsed, err := ParseOutput(path)
	if err != nil {
		t.Fatalf("ParseOutput returned error: %v", err)
	}
	if len(parsed.Results) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(parsed.Results))
	}
	if parsed.Results[0].SeqName != "SampleA" || parsed.Results[0].Clade != "20I" {
		t.Fatalf("assignment = %+v", parsed.Results[0])
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("NEXTCLADE_HELPER_MODE") {
	case "success":
		os.Exit(0)
	default:
		fmt.Fprintln(os.Stderr, "tool exploded")
		os.Exit(1)
	}
}
