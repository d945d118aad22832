// Package artic wraps the per-sample amplicon analysis tool. One call
// covers read filtering and the minion consensus/variant workflow for a
// single sample, blocking until the external process finishes.
package artic

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"ampliflow/internal/services"
)

var commandContext = exec.CommandContext

// Params carries the pipeline parameters the tool needs.
type Params struct {
	MinLength     int
	MaxLength     int
	ModelName     string
	SchemeVersion string
	SchemeDir     string
	Threads       int
}

// Result names the artifacts one sample run produces.
type Result struct {
	Consensus    string
	Variants     string
	VariantIndex string
	Depth        string
	RunStats     string
}

// Client defines the per-sample compute behaviour.
type Client interface {
	Minion(ctx context.Context, inputDir, sampleName, workDir string, params Params) (Result, error)
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

// CLI wraps the artic command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "artic"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Minion filters the sample's reads and runs the consensus/variant
// workflow inside workDir. A non-zero exit or missing output fails the
// invocation.
func (c *CLI) Minion(ctx context.Context, inputDir, sampleName, workDir string, params Params) (Result, error) {
	if inputDir == "" {
		return Result{}, errors.New("input directory required")
	}
	if sampleName == "" {
		return Result{}, errors.New("sample name required")
	}
	if workDir == "" {
		return Result{}, errors.New("work directory required")
	}

	readFile := filepath.Join(workDir, sampleName+".fastq")
	gatherArgs := []string{
		"guppyplex",
		"--min-length", strconv.Itoa(params.MinLength),
		"--max-length", strconv.Itoa(params.MaxLength),
		"--directory", inputDir,
		"--output", readFile,
	}
	if err := c.runCommand(ctx, workDir, gatherArgs); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "compute", "filter reads", sampleName, err)
	}

	minionArgs := []string{
		"minion",
		"--medaka",
		"--medaka-model", params.ModelName,
		"--normalise", "200",
		"--threads", strconv.Itoa(max(params.Threads, 1)),
		"--read-file", readFile,
	}
	if params.SchemeDir != "" {
		minionArgs = append(minionArgs, "--scheme-directory", params.SchemeDir)
	}
	minionArgs = append(minionArgs, "nCoV-2019/"+params.SchemeVersion, sampleName)
	if err := c.runCommand(ctx, workDir, minionArgs); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "compute", "run minion", sampleName, err)
	}

	result := Result{
		Consensus:    filepath.Join(workDir, sampleName+".consensus.fasta"),
		Variants:     filepath.Join(workDir, sampleName+".pass.vcf.gz"),
		VariantIndex: filepath.Join(workDir, sampleName+".pass.vcf.gz.tbi"),
		Depth:        filepath.Join(workDir, sampleName+".depths.tsv"),
		RunStats:     filepath.Join(workDir, sampleName+".stats.json"),
	}
	for _, path := range []string{result.Consensus, result.Variants, result.VariantIndex, result.Depth, result.RunStats} {
		if _, err := os.Stat(path); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "compute", "collect outputs",
				fmt.Sprintf("%s: expected output missing", filepath.Base(path)), err)
		}
	}
	return result, nil
}

func (c *CLI) runCommand(ctx context.Context, workDir string, args []string) error {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := tail(string(output), 2048)
		if detail != "" {
			return fmt.Errorf("%s %s: %w: %s", c.binary, args[0], err, detail)
		}
		return fmt.Errorf("%s %s: %w", c.binary, args[0], err)
	}
	return nil
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}

var _ Client = (*CLI)(nil)
