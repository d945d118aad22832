// Package pipeline wires sample resolution, the task graph, the
// aggregation stages, and artifact publishing into one batch run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ampliflow/internal/artifact"
	"ampliflow/internal/config"
	"ampliflow/internal/logging"
	"ampliflow/internal/preflight"
	"ampliflow/internal/publish"
	"ampliflow/internal/samples"
	"ampliflow/internal/services"
	"ampliflow/internal/services/artic"
	"ampliflow/internal/services/nextclade"
	"ampliflow/internal/services/seqkit"
	"ampliflow/internal/taskgraph"
)

// Options configures a pipeline run.
type Options struct {
	InputDir    string
	MappingPath string
	SampleName  string

	Config *config.Config
	Logger *slog.Logger

	// Clients override the external tool integrations; nil selects the
	// real CLI clients.
	Compute artic.Client
	ReadQC  seqkit.Client
	Clade   nextclade.Client

	// SkipToolCheck bypasses the preflight binary probe.
	SkipToolCheck bool
}

// Runner executes one batch run.
type Runner struct {
	opts   Options
	cfg    *config.Config
	logger *slog.Logger

	compute artic.Client
	readqc  seqkit.Client
	clade   nextclade.Client
}

// New constructs a Runner.
func New(opts Options) *Runner {
	r := &Runner{
		opts:    opts,
		cfg:     opts.Config,
		logger:  logging.NewComponentLogger(opts.Logger, "pipeline"),
		compute: opts.Compute,
		readqc:  opts.ReadQC,
		clade:   opts.Clade,
	}
	if r.compute == nil {
		r.compute = artic.NewCLI()
	}
	if r.readqc == nil {
		r.readqc = seqkit.NewCLI()
	}
	if r.clade == nil {
		r.clade = nextclade.NewCLI()
	}
	return r
}

// Run executes the whole batch: resolve, scatter, gather, publish. The
// returned RunResult is populated even when individual branches failed;
// the error is non-nil only for failures that abort before or during
// scheduling (resolution, configuration, cancellation).
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	if !r.opts.SkipToolCheck {
		if ok, missing := preflight.RequiredToolsAvailable(); !ok {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "preflight",
				fmt.Sprintf("missing required tools: %v", missing), nil)
		}
	}

	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "prepare directories", "", err)
	}

	// One publisher per output directory at a time.
	lock := flock.New(filepath.Join(r.cfg.Paths.OutputDir, ".ampliflow.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "acquire run lock", "", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "acquire run lock",
			"another run is using this output directory", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	resolution, err := samples.Resolve(r.opts.InputDir, samples.Options{
		MappingPath: r.opts.MappingPath,
		SampleName:  r.opts.SampleName,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	result := &RunResult{RunID: runID, Mode: resolution.Mode}
	if len(resolution.Samples) == 0 {
		logger.Warn("no samples to process; nothing scheduled")
		return result, nil
	}

	workDir := filepath.Join(r.cfg.Paths.WorkDir, runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "create work area", workDir, err)
	}

	params := r.cfg.Params()
	logger.Info("run starting",
		logging.String("mode", resolution.Mode.String()),
		logging.Int("samples", len(resolution.Samples)),
		logging.String("scheme_version", params.SchemeVersion),
		logging.Int("min_length", params.MinLength),
		logging.Int("max_length", params.MaxLength))

	graph := taskgraph.New(taskgraph.Config{
		Workers: params.Workers,
		WorkDir: workDir,
		Logger:  r.logger,
	})

	graphResults, err := graph.Run(ctx, resolution.Samples, r.buildStages(runID, params))
	if err != nil {
		if graphResults != nil {
			result.fill(graphResults)
		}
		return result, err
	}
	result.fill(graphResults)

	publisher := publish.New(r.cfg.Paths.OutputDir, r.logger)
	result.Published = publisher.Publish(finalArtifacts(graphResults))

	logger.Info("run finished",
		logging.Bool("failed", result.Failed()),
		logging.Int("published", len(result.Published)))
	return result, nil
}

// finalArtifacts selects the aggregate outputs whose producing stage
// completed. Failed branches publish nothing; they already reported.
func finalArtifacts(results *taskgraph.Results) []artifact.Artifact {
	var finals []artifact.Artifact
	for _, stage := range []string{StageConsensus, StageVariants, StageClade, StageReport} {
		status, ok := results.CollectStatus(stage)
		if !ok || status.State != taskgraph.Completed {
			continue
		}
		finals = append(finals, results.Set(stage).All()...)
	}
	return finals
}
