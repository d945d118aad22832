// Package seqkit wraps the read statistics tool used for per-sample
// read QC.
package seqkit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"ampliflow/internal/samples"
	"ampliflow/internal/services"
)

var commandContext = exec.CommandContext

// Client defines the read QC behaviour.
type Client interface {
	Stats(ctx context.Context, inputDir, sampleName, workDir string) (string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the seqkit command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "seqkit"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Stats computes tab-separated read statistics over every read file in
// inputDir and returns the path of the stats artifact.
func (c *CLI) Stats(ctx context.Context, inputDir, sampleName, workDir string) (string, error) {
	if inputDir == "" {
		return "", errors.New("input directory required")
	}
	if workDir == "" {
		return "", errors.New("work directory required")
	}

	reads, err := readFiles(inputDir)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "readqc", "list reads", sampleName, err)
	}
	if len(reads) == 0 {
		return "", services.Wrap(services.ErrExternalTool, "readqc", "list reads",
			fmt.Sprintf("%s: no read files", inputDir), nil)
	}

	args := append([]string{"stats", "-T", "-a"}, reads...)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", services.Wrap(services.ErrExternalTool, "readqc", "run stats",
				strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return "", services.Wrap(services.ErrExternalTool, "readqc", "run stats", sampleName, err)
	}

	outPath := filepath.Join(workDir, sampleName+".readqc.tsv")
	if err := os.WriteFile(outPath, output, 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "readqc", "write stats", outPath, err)
	}
	return outPath, nil
}

func readFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var reads []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if samples.IsReadFile(entry.Name()) {
			reads = append(reads, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(reads)
	return reads, nil
}

var _ Client = (*CLI)(nil)
