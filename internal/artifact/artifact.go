// Package artifact defines the typed outputs that flow between pipeline
// stages and the ordered, keyed collections the gather stages consume.
package artifact

import "sync"

// Kind classifies an artifact payload.
type Kind string

const (
	KindConsensus    Kind = "consensus"
	KindVariants     Kind = "variants"
	KindVariantIndex Kind = "variant-index"
	KindDepth        Kind = "depth"
	KindRunStats     Kind = "run-stats"
	KindReadQC       Kind = "read-qc"
	KindClade        Kind = "clade"
	KindReport       Kind = "report"
)

// Artifact is one stage output. SampleID is empty for aggregate artifacts
// produced by collect-all stages.
type Artifact struct {
	Kind     Kind
	SampleID string
	Name     string
	Path     string
}

// Set accumulates per-sample artifacts of one producing stage. Entries are
// appended as tasks complete, so iteration order is completion order; use
// InOrder to restore resolution order. A Set is safe for concurrent append.
type Set struct {
	mu      sync.Mutex
	stage   string
	entries []Artifact
	byID    map[string][]Artifact
}

// NewSet constructs an empty Set owned by the named stage.
func NewSet(stage string) *Set {
	return &Set{stage: stage, byID: make(map[string][]Artifact)}
}

// Stage names the producing stage.
func (s *Set) Stage() string { return s.stage }

// Append records the artifacts of one completed task.
func (s *Set) Append(artifacts ...Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range artifacts {
		s.entries = append(s.entries, a)
		s.byID[a.SampleID] = append(s.byID[a.SampleID], a)
	}
}

// ForSample returns the artifacts recorded for one sample id.
func (s *Set) ForSample(id string) []Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	got := s.byID[id]
	out := make([]Artifact, len(got))
	copy(out, got)
	return out
}

// All returns every entry in completion order.
func (s *Set) All() []Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Artifact, len(s.entries))
	copy(out, s.entries)
	return out
}

// InOrder returns entries grouped by the supplied sample id order,
// regardless of the order tasks completed in.
func (s *Set) InOrder(ids []string) []Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Artifact, 0, len(s.entries))
	for _, id := range ids {
		out = append(out, s.byID[id]...)
	}
	return out
}

// Complete reports whether every expected sample id has at least one entry.
func (s *Set) Complete(ids []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if len(s.byID[id]) == 0 {
			return false
		}
	}
	return true
}

// Len returns the number of recorded artifacts.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
