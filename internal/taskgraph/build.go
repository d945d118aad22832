package taskgraph

import (
	"fmt"
	"sync/atomic"

	"ampliflow/internal/samples"
	"ampliflow/internal/services"
)

// node is one schedulable task invocation: a (stage, sample) pair for
// per-sample stages or the single gathered invocation of a collect-all
// stage.
type node struct {
	stage  *Stage
	sample *samples.Sample // nil for collect-all nodes

	deps       []*node
	dependents []*node
	pending    atomic.Int32

	// state and err are guarded by the run's mutex.
	state State
	err   error
}

func (n *node) label() string {
	if n.sample != nil {
		return n.stage.Name + "/" + n.sample.ID
	}
	return n.stage.Name
}

// validateStages checks the stage declarations before anything is
// scheduled: unique names, resolvable dependencies, mode-compatible
// wiring, and an acyclic dependency order.
func validateStages(stages []*Stage) error {
	byName := make(map[string]*Stage, len(stages))
	for _, stage := range stages {
		if stage.Name == "" {
			return services.Wrap(services.ErrConfiguration, "taskgraph", "validate", "stage with empty name", nil)
		}
		if _, dup := byName[stage.Name]; dup {
			return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
				fmt.Sprintf("duplicate stage %q", stage.Name), nil)
		}
		switch stage.Mode {
		case PerSample:
			if stage.RunSample == nil {
				return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
					fmt.Sprintf("per-sample stage %q has no RunSample", stage.Name), nil)
			}
			if len(stage.OptionalNeeds) > 0 {
				return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
					fmt.Sprintf("per-sample stage %q declares optional needs", stage.Name), nil)
			}
		case CollectAll:
			if stage.RunCollect == nil {
				return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
					fmt.Sprintf("collect-all stage %q has no RunCollect", stage.Name), nil)
			}
		default:
			return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
				fmt.Sprintf("stage %q has unknown mode", stage.Name), nil)
		}
		byName[stage.Name] = stage
	}

	for _, stage := range stages {
		for _, need := range append(append([]string{}, stage.Needs...), stage.OptionalNeeds...) {
			upstream, ok := byName[need]
			if !ok {
				return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
					fmt.Sprintf("stage %q needs unknown stage %q", stage.Name, need), nil)
			}
			if stage.Mode == PerSample && upstream.Mode == CollectAll {
				return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
					fmt.Sprintf("per-sample stage %q cannot depend on collect-all stage %q", stage.Name, need), nil)
			}
		}
	}

	return checkAcyclic(stages, byName)
}

func checkAcyclic(stages []*Stage, byName map[string]*Stage) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	marks := make(map[string]int, len(stages))

	var visit func(stage *Stage) error
	visit = func(stage *Stage) error {
		switch marks[stage.Name] {
		case visiting:
			return services.Wrap(services.ErrConfiguration, "taskgraph", "validate",
				fmt.Sprintf("dependency cycle through stage %q", stage.Name), nil)
		case done:
			return nil
		}
		marks[stage.Name] = visiting
		for _, need := range append(append([]string{}, stage.Needs...), stage.OptionalNeeds...) {
			if err := visit(byName[need]); err != nil {
				return err
			}
		}
		marks[stage.Name] = done
		return nil
	}

	for _, stage := range stages {
		if err := visit(stage); err != nil {
			return err
		}
	}
	return nil
}

// buildNodes expands stages into schedulable nodes and wires the
// dependency counts the barrier logic relies on: every upstream terminal
// state decrements its dependents, and a node becomes ready exactly when
// its count reaches zero.
func buildNodes(stages []*Stage, sampleSet []samples.Sample) []*node {
	perSample := make(map[string][]*node)
	collect := make(map[string]*node)
	var nodes []*node

	for _, stage := range stages {
		if stage.Mode == PerSample {
			for i := range sampleSet {
				n := &node{stage: stage, sample: &sampleSet[i]}
				perSample[stage.Name] = append(perSample[stage.Name], n)
				nodes = append(nodes, n)
			}
			continue
		}
		n := &node{stage: stage}
		collect[stage.Name] = n
		nodes = append(nodes, n)
	}

	link := func(up, down *node) {
		up.dependents = append(up.dependents, down)
		down.deps = append(down.deps, up)
		down.pending.Add(1)
	}

	for _, stage := range stages {
		needs := append(append([]string{}, stage.Needs...), stage.OptionalNeeds...)
		if stage.Mode == PerSample {
			downs := perSample[stage.Name]
			for _, need := range needs {
				ups := perSample[need]
				// Same index, same sample: per-sample chains join by id.
				for i, down := range downs {
					link(ups[i], down)
				}
			}
			continue
		}
		down := collect[stage.Name]
		for _, need := range needs {
			if ups, ok := perSample[need]; ok {
				for _, up := range ups {
					link(up, down)
				}
				continue
			}
			link(collect[need], down)
		}
	}

	return nodes
}
