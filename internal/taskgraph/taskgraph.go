// Package taskgraph implements the scatter/gather engine that drives a
// pipeline run.
//
// A run fans per-sample stages out over a bounded worker pool, joins
// upstream outputs by sample id, and holds collect-all stages behind a
// barrier until every contributing per-sample task has reached a terminal
// state. Sample resolution happens before the graph starts, so the full
// sample cardinality is known and "all done" is always decidable.
//
// Failure is attributed to the narrowest owner possible: one sample's task
// failure skips only that sample's downstream tasks, while a collect-all
// stage whose required contributor set is incomplete fails with
// services.ErrIncompleteSet instead of aggregating a partial set.
package taskgraph

import (
	"context"
	"log/slog"

	"ampliflow/internal/artifact"
	"ampliflow/internal/samples"
)

// Mode selects how a stage is scheduled.
type Mode int

const (
	// PerSample stages run once per resolved sample, in parallel, as soon
	// as their own sample's inputs are ready.
	PerSample Mode = iota
	// CollectAll stages run once, after every per-sample producer they
	// depend on has completed for every known sample.
	CollectAll
)

func (m Mode) String() string {
	if m == CollectAll {
		return "collect-all"
	}
	return "per-sample"
}

// State tracks a task invocation through its lifecycle.
type State int

const (
	Pending State = iota
	Running
	Completed
	Failed
	// Skipped marks invocations dropped before starting: upstream branch
	// failure or run cancellation.
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == Skipped
}

// Invocation carries one per-sample task's declared inputs.
type Invocation struct {
	Sample samples.Sample
	// Inputs holds, per needed upstream stage, the artifacts joined to
	// this invocation's sample id.
	Inputs  map[string][]artifact.Artifact
	WorkDir string
	Logger  *slog.Logger
}

// Input returns the first upstream artifact of the given kind, if any.
func (inv *Invocation) Input(stage string, kind artifact.Kind) (artifact.Artifact, bool) {
	for _, a := range inv.Inputs[stage] {
		if a.Kind == kind {
			return a, true
		}
	}
	return artifact.Artifact{}, false
}

// Collection carries a collect-all stage's inputs: the complete artifact
// sets of its upstream stages plus the resolved sample order.
type Collection struct {
	// Samples is the full resolved sample set in resolution order.
	Samples []samples.Sample
	// Sets maps upstream stage names to their completed artifact sets.
	// Optional upstreams that failed are absent.
	Sets    map[string]*artifact.Set
	WorkDir string
	Logger  *slog.Logger
}

// SampleIDs returns the resolution-order sample ids.
func (c *Collection) SampleIDs() []string {
	ids := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		ids[i] = s.ID
	}
	return ids
}

// DisplayName returns the display name for a sample id, falling back to
// the id itself.
func (c *Collection) DisplayName(id string) string {
	for _, s := range c.Samples {
		if s.ID == id {
			return s.DisplayName
		}
	}
	return id
}

// Stage declares one unit of the dataflow graph.
type Stage struct {
	Name string
	Mode Mode
	// Needs lists upstream stage names whose outputs this stage consumes.
	// A missing or failed required upstream fails this stage.
	Needs []string
	// OptionalNeeds lists upstreams whose failure degrades this stage's
	// input instead of failing it. Only meaningful for CollectAll stages.
	OptionalNeeds []string

	// RunSample executes one per-sample invocation. Set for PerSample.
	RunSample func(ctx context.Context, inv *Invocation) ([]artifact.Artifact, error)
	// RunCollect executes the single gathered invocation. Set for CollectAll.
	RunCollect func(ctx context.Context, col *Collection) ([]artifact.Artifact, error)
}

// Config controls graph construction.
type Config struct {
	// Workers bounds the number of concurrently running task invocations.
	Workers int
	// WorkDir is the root under which invocations get private work areas.
	WorkDir string
	Logger  *slog.Logger
}

// Graph schedules stage invocations over a worker pool.
type Graph struct {
	workers int
	workDir string
	logger  *slog.Logger
}

// New constructs a Graph. A worker budget below one is raised to one.
func New(cfg Config) *Graph {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Graph{workers: workers, workDir: cfg.WorkDir, logger: cfg.Logger}
}
