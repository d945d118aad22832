// Package nextclade wraps the clade assignment tool. It runs once per
// pipeline run, over the combined consensus sequences.
package nextclade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ampliflow/internal/services"
)

var commandContext = exec.CommandContext

// Assignment is one sequence's clade call from the structured output.
type Assignment struct {
	SeqName string `json:"seqName"`
	Clade   string `json:"clade"`
}

// Output is the machine-readable result document.
type Output struct {
	Results []Assignment `json:"results"`
}

// Client defines the clade assignment behaviour.
type Client interface {
	Run(ctx context.Context, consensusPath, referencePath, schemeBed, workDir string) (string, error)
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

// CLI wraps the nextclade command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "nextclade"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Run assigns clades to every sequence in the combined consensus and
// returns the path of the JSON result artifact.
func (c *CLI) Run(ctx context.Context, consensusPath, referencePath, schemeBed, workDir string) (string, error) {
	if consensusPath == "" {
		return "", errors.New("consensus path required")
	}
	if workDir == "" {
		return "", errors.New("work directory required")
	}

	outPath := filepath.Join(workDir, "clades.json")
	args := []string{"run", "--output-json", outPath}
	if referencePath != "" {
		args = append(args, "--input-ref", referencePath)
	}
	if schemeBed != "" {
		args = append(args, "--input-pcr-primers", schemeBed)
	}
	args = append(args, consensusPath)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return "", services.Wrap(services.ErrExternalTool, "clade", "run nextclade", detail, err)
		}
		return "", services.Wrap(services.ErrExternalTool, "clade", "run nextclade", "", err)
	}

	if err := validateOutput(outPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clade", "validate output", outPath, err)
	}
	return outPath, nil
}

func validateOutput(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var parsed Output
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("malformed result document: %w", err)
	}
	return nil
}

// ParseOutput loads a result document from disk.
func ParseOutput(path string) (*Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parsed Output
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &parsed, nil
}

var _ Client = (*CLI)(nil)
