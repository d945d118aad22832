package taskgraph

import (
	"ampliflow/internal/artifact"
	"ampliflow/internal/samples"
)

// TaskStatus reports the terminal outcome of one invocation.
type TaskStatus struct {
	Stage    string
	SampleID string // empty for collect-all invocations
	State    State
	Err      error
}

// Results exposes the artifact sets and task outcomes of a finished run.
type Results struct {
	samples []samples.Sample
	nodes   []*node
	sets    map[string]*artifact.Set
}

// Samples returns the resolved sample set in resolution order.
func (r *Results) Samples() []samples.Sample {
	out := make([]samples.Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Set returns the artifact set produced by the named stage.
func (r *Results) Set(stage string) *artifact.Set {
	return r.sets[stage]
}

// Statuses returns every invocation outcome in scheduling declaration order.
func (r *Results) Statuses() []TaskStatus {
	out := make([]TaskStatus, 0, len(r.nodes))
	for _, n := range r.nodes {
		status := TaskStatus{Stage: n.stage.Name, State: n.state, Err: n.err}
		if n.sample != nil {
			status.SampleID = n.sample.ID
		}
		out = append(out, status)
	}
	return out
}

// SampleStatus returns the outcome of one per-sample invocation.
func (r *Results) SampleStatus(stage, sampleID string) (TaskStatus, bool) {
	for _, n := range r.nodes {
		if n.stage.Name == stage && n.sample != nil && n.sample.ID == sampleID {
			return TaskStatus{Stage: stage, SampleID: sampleID, State: n.state, Err: n.err}, true
		}
	}
	return TaskStatus{}, false
}

// CollectStatus returns the outcome of a collect-all invocation.
func (r *Results) CollectStatus(stage string) (TaskStatus, bool) {
	for _, n := range r.nodes {
		if n.stage.Name == stage && n.sample == nil {
			return TaskStatus{Stage: stage, State: n.state, Err: n.err}, true
		}
	}
	return TaskStatus{}, false
}

// Failed reports whether any invocation failed.
func (r *Results) Failed() bool {
	return r.countState(Failed) > 0
}

func (r *Results) countState(state State) int {
	count := 0
	for _, n := range r.nodes {
		if n.state == state {
			count++
		}
	}
	return count
}
