package pipeline

import (
	"ampliflow/internal/publish"
	"ampliflow/internal/samples"
	"ampliflow/internal/taskgraph"
)

// SampleOutcome summarizes one sample's progress through the per-sample
// stages.
type SampleOutcome struct {
	Sample samples.Sample
	// Stages maps stage name to that sample's terminal state.
	Stages map[string]taskgraph.State
	// Err holds the first failure seen across this sample's stages.
	Err error
}

// AggregateOutcome summarizes one collect-all stage.
type AggregateOutcome struct {
	Stage string
	State taskgraph.State
	Err   error
}

// RunResult is the caller-facing summary of a finished run.
type RunResult struct {
	RunID      string
	Mode       samples.Mode
	Samples    []SampleOutcome
	Aggregates []AggregateOutcome
	Published  []publish.Outcome

	failed bool
}

// Failed reports whether any task invocation failed. Publish errors do not
// count; they are surfaced per outcome instead.
func (r *RunResult) Failed() bool {
	return r.failed
}

func (r *RunResult) fill(results *taskgraph.Results) {
	r.failed = results.Failed()
	r.Samples = r.Samples[:0]
	r.Aggregates = r.Aggregates[:0]

	bySample := make(map[string]*SampleOutcome)
	for _, s := range results.Samples() {
		outcome := &SampleOutcome{Sample: s, Stages: make(map[string]taskgraph.State)}
		bySample[s.ID] = outcome
	}

	for _, status := range results.Statuses() {
		if status.SampleID == "" {
			r.Aggregates = append(r.Aggregates, AggregateOutcome{
				Stage: status.Stage,
				State: status.State,
				Err:   status.Err,
			})
			continue
		}
		outcome, ok := bySample[status.SampleID]
		if !ok {
			continue
		}
		outcome.Stages[status.Stage] = status.State
		if outcome.Err == nil && status.Err != nil {
			outcome.Err = status.Err
		}
	}

	for _, s := range results.Samples() {
		r.Samples = append(r.Samples, *bySample[s.ID])
	}
}
