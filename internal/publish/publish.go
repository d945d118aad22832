// Package publish copies designated final artifacts into the stable
// output directory. Publishing is decoupled from the stages that
// produced the artifacts: a publish failure is reported per artifact and
// never invalidates the computation or blocks other artifacts.
package publish

import (
	"log/slog"
	"os"
	"path/filepath"

	"ampliflow/internal/artifact"
	"ampliflow/internal/fileutil"
	"ampliflow/internal/logging"
	"ampliflow/internal/services"
)

// Outcome reports one artifact's publish result.
type Outcome struct {
	Artifact  artifact.Artifact
	Published string
	Err       error
}

// Publisher copies artifacts into a fixed output directory.
type Publisher struct {
	outputDir string
	logger    *slog.Logger
}

// New constructs a Publisher targeting outputDir.
func New(outputDir string, logger *slog.Logger) *Publisher {
	return &Publisher{
		outputDir: outputDir,
		logger:    logging.NewComponentLogger(logger, "publish"),
	}
}

// Publish copies every artifact into the output directory, overwriting
// existing files. The source is never mutated. Each artifact gets its
// own outcome; one failure does not stop the rest.
func (p *Publisher) Publish(artifacts []artifact.Artifact) []Outcome {
	outcomes := make([]Outcome, 0, len(artifacts))
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		wrapped := services.Wrap(services.ErrPublish, "publish", "create output directory", p.outputDir, err)
		for _, a := range artifacts {
			outcomes = append(outcomes, Outcome{Artifact: a, Err: wrapped})
		}
		return outcomes
	}

	for _, a := range artifacts {
		outcomes = append(outcomes, p.publishOne(a))
	}
	return outcomes
}

func (p *Publisher) publishOne(a artifact.Artifact) Outcome {
	name := a.Name
	if name == "" {
		name = filepath.Base(a.Path)
	}
	target := filepath.Join(p.outputDir, name)

	if err := fileutil.CopyFileVerified(a.Path, target); err != nil {
		wrapped := services.Wrap(services.ErrPublish, "publish", "copy artifact", name, err)
		p.logger.Error("artifact publish failed",
			logging.String("artifact", name),
			logging.Error(wrapped))
		return Outcome{Artifact: a, Err: wrapped}
	}

	p.logger.Info("artifact published",
		logging.String("artifact", name),
		logging.String("target", target))
	return Outcome{Artifact: a, Published: target}
}
