package taskgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ampliflow/internal/artifact"
	"ampliflow/internal/logging"
	"ampliflow/internal/samples"
	"ampliflow/internal/services"
)

type run struct {
	graph   *Graph
	logger  *slog.Logger
	workDir string

	samples []samples.Sample
	nodes   []*node
	// perSample and collect index nodes by stage name for barrier checks.
	perSample map[string][]*node
	collect   map[string]*node

	sets map[string]*artifact.Set

	mu    sync.Mutex
	ready chan *node
	wg    sync.WaitGroup
}

// Run executes the stage graph over the resolved sample set and returns
// the per-stage artifact sets and task outcomes. The returned error is
// non-nil only for pre-scheduling validation failures or run cancellation;
// per-branch failures are reported through Results.
func (g *Graph) Run(ctx context.Context, sampleSet []samples.Sample, stages []*Stage) (*Results, error) {
	if err := validateStages(stages); err != nil {
		return nil, err
	}
	if err := validateSamples(sampleSet); err != nil {
		return nil, err
	}

	r := &run{
		graph:     g,
		logger:    logging.NewComponentLogger(g.logger, "taskgraph"),
		workDir:   g.workDir,
		samples:   sampleSet,
		perSample: make(map[string][]*node),
		collect:   make(map[string]*node),
		sets:      make(map[string]*artifact.Set, len(stages)),
	}

	r.nodes = buildNodes(stages, sampleSet)
	for _, n := range r.nodes {
		if n.sample != nil {
			r.perSample[n.stage.Name] = append(r.perSample[n.stage.Name], n)
		} else {
			r.collect[n.stage.Name] = n
		}
	}
	for _, stage := range stages {
		r.sets[stage.Name] = artifact.NewSet(stage.Name)
	}

	r.logger.Info("task graph started",
		logging.Int("stages", len(stages)),
		logging.Int("samples", len(sampleSet)),
		logging.Int("invocations", len(r.nodes)),
		logging.Int("workers", g.workers))

	// Every node flows through the ready channel exactly once, so the
	// capacity bound keeps enqueueing from executing workers non-blocking.
	r.ready = make(chan *node, len(r.nodes))
	r.wg.Add(len(r.nodes))
	for _, n := range r.nodes {
		if n.pending.Load() == 0 {
			r.ready <- n
		}
	}

	var workers sync.WaitGroup
	for i := 0; i < g.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for n := range r.ready {
				r.execute(ctx, n)
			}
		}()
	}

	r.wg.Wait()
	close(r.ready)
	workers.Wait()

	results := &Results{samples: sampleSet, nodes: r.nodes, sets: r.sets}
	if err := ctx.Err(); err != nil {
		r.logger.Warn("task graph cancelled", logging.Error(err))
		return results, err
	}
	r.logger.Info("task graph finished",
		logging.Int("completed", results.countState(Completed)),
		logging.Int("failed", results.countState(Failed)),
		logging.Int("skipped", results.countState(Skipped)))
	return results, nil
}

func validateSamples(sampleSet []samples.Sample) error {
	seen := make(map[string]struct{}, len(sampleSet))
	for _, s := range sampleSet {
		if s.ID == "" {
			return services.Wrap(services.ErrConfiguration, "taskgraph", "validate", "sample with empty id", nil)
		}
		if _, dup := seen[s.ID]; dup {
			return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
				fmt.Sprintf("duplicate sample id %q", s.ID), nil)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// execute drives one node to a terminal state and releases its dependents.
func (r *run) execute(ctx context.Context, n *node) {
	defer r.finish(n)

	if ctx.Err() != nil {
		r.setState(n, Skipped, ctx.Err())
		return
	}

	if n.sample != nil {
		r.executeSample(ctx, n)
		return
	}
	r.executeCollect(ctx, n)
}

func (r *run) executeSample(ctx context.Context, n *node) {
	if failedDep := r.firstIncompleteDep(n); failedDep != nil {
		r.setState(n, Skipped, fmt.Errorf("upstream %s did not complete", failedDep.label()))
		return
	}

	inputs := make(map[string][]artifact.Artifact, len(n.stage.Needs))
	for _, need := range n.stage.Needs {
		joined := r.sets[need].ForSample(n.sample.ID)
		if len(joined) == 0 {
			r.setState(n, Failed, services.Wrap(services.ErrJoin, n.stage.Name, "join inputs",
				fmt.Sprintf("no %s output for sample %s", need, n.sample.ID), nil))
			return
		}
		inputs[need] = joined
	}

	taskCtx := services.WithStage(services.WithSample(ctx, n.sample.ID), n.stage.Name)
	taskLogger := logging.WithContext(taskCtx, r.logger)

	workDir, err := r.ensureWorkDir(n.stage.Name, n.sample.ID)
	if err != nil {
		r.setState(n, Failed, err)
		return
	}

	r.setState(n, Running, nil)
	taskLogger.Info("task started", logging.String(logging.FieldEventType, "task_start"))

	produced, err := n.stage.RunSample(taskCtx, &Invocation{
		Sample:  *n.sample,
		Inputs:  inputs,
		WorkDir: workDir,
		Logger:  taskLogger,
	})
	if err != nil {
		taskLogger.Error("task failed",
			logging.String(logging.FieldEventType, "task_failure"),
			logging.Error(err))
		r.setState(n, Failed, err)
		return
	}
	if ctx.Err() != nil {
		// A cancelled task's partial output must never reach a set.
		r.setState(n, Skipped, ctx.Err())
		return
	}

	r.sets[n.stage.Name].Append(produced...)
	r.setState(n, Completed, nil)
	taskLogger.Info("task completed",
		logging.String(logging.FieldEventType, "task_complete"),
		logging.Int("artifacts", len(produced)))
}

func (r *run) executeCollect(ctx context.Context, n *node) {
	if missing := r.incompleteUpstreams(n.stage.Needs); len(missing) > 0 {
		r.setState(n, Failed, services.Wrap(services.ErrIncompleteSet, n.stage.Name, "gather",
			"dependency set incomplete: "+strings.Join(missing, ", "), nil))
		return
	}

	sets := make(map[string]*artifact.Set, len(n.stage.Needs)+len(n.stage.OptionalNeeds))
	for _, need := range n.stage.Needs {
		sets[need] = r.sets[need]
	}
	for _, need := range n.stage.OptionalNeeds {
		if missing := r.incompleteUpstreams([]string{need}); len(missing) > 0 {
			r.logger.Warn("optional input unavailable; aggregate will degrade",
				logging.String(logging.FieldStage, n.stage.Name),
				logging.String("optional_input", need))
			continue
		}
		sets[need] = r.sets[need]
	}

	taskCtx := services.WithStage(ctx, n.stage.Name)
	taskLogger := logging.WithContext(taskCtx, r.logger)

	workDir, err := r.ensureWorkDir(n.stage.Name, "")
	if err != nil {
		r.setState(n, Failed, err)
		return
	}

	r.setState(n, Running, nil)
	taskLogger.Info("aggregate started", logging.String(logging.FieldEventType, "task_start"))

	produced, err := n.stage.RunCollect(taskCtx, &Collection{
		Samples: r.samples,
		Sets:    sets,
		WorkDir: workDir,
		Logger:  taskLogger,
	})
	if err != nil {
		taskLogger.Error("aggregate failed",
			logging.String(logging.FieldEventType, "task_failure"),
			logging.Error(err))
		r.setState(n, Failed, err)
		return
	}
	if ctx.Err() != nil {
		r.setState(n, Skipped, ctx.Err())
		return
	}

	r.sets[n.stage.Name].Append(produced...)
	r.setState(n, Completed, nil)
	taskLogger.Info("aggregate completed",
		logging.String(logging.FieldEventType, "task_complete"),
		logging.Int("artifacts", len(produced)))
}

// firstIncompleteDep returns the first required upstream node of a
// per-sample invocation that did not complete, or nil.
func (r *run) firstIncompleteDep(n *node) *node {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dep := range n.deps {
		if dep.state != Completed {
			return dep
		}
	}
	return nil
}

// incompleteUpstreams lists, per upstream stage, the invocations that did
// not complete. Empty means the barrier condition holds for those stages.
func (r *run) incompleteUpstreams(needs []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var missing []string
	for _, need := range needs {
		if ups, ok := r.perSample[need]; ok {
			for _, up := range ups {
				if up.state != Completed {
					missing = append(missing, up.label())
				}
			}
			continue
		}
		if up := r.collect[need]; up != nil && up.state != Completed {
			missing = append(missing, up.label())
		}
	}
	return missing
}

func (r *run) setState(n *node, state State, err error) {
	r.mu.Lock()
	n.state = state
	if err != nil {
		n.err = err
	}
	r.mu.Unlock()
}

func (r *run) ensureWorkDir(stage, sampleID string) (string, error) {
	if r.workDir == "" {
		return "", nil
	}
	dir := filepath.Join(r.workDir, stage)
	if sampleID != "" {
		dir = filepath.Join(dir, sampleID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create work area for %s: %w", stage, err)
	}
	return dir, nil
}

// finish releases the node's dependents. Nodes whose pending count hits
// zero are enqueued; their execute call decides run-vs-skip from upstream
// states, so failed branches drain through the same path as healthy ones.
func (r *run) finish(n *node) {
	for _, dependent := range n.dependents {
		if dependent.pending.Add(-1) == 0 {
			r.ready <- dependent
		}
	}
	r.wg.Done()
}
