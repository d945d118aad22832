// Package samples resolves the raw-read input directory into the canonical
// sample set for a pipeline run.
//
// Two input layouts are supported. A multiplexed run splits reads into
// per-sample container directories following the barcode naming convention
// (barcode01 ... barcode999); a single-sample run keeps raw read files
// directly under the input root. Resolution happens once, eagerly, so the
// task graph always knows the full sample cardinality up front.
package samples

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sample is one unit of input data tracked through the pipeline.
// ID is the stable key (the barcode label in multiplexed runs) and is
// unique within a run; DisplayName need not be. Samples are immutable
// once resolved.
type Sample struct {
	ID          string
	DisplayName string
	InputDir    string
}

// Mode describes how the input directory is laid out.
type Mode int

const (
	// Multiplexed input carries one container directory per sample.
	Multiplexed Mode = iota
	// SingleSample input carries raw read files directly under the root.
	SingleSample
)

func (m Mode) String() string {
	if m == SingleSample {
		return "single-sample"
	}
	return "multiplexed"
}

// numeric-aware collation so barcode2 sorts before barcode10
var containerCollator = collate.New(language.Und, collate.Numeric)

// sortContainers orders container directory names into resolution order.
func sortContainers(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return containerCollator.CompareString(names[i], names[j]) < 0
	})
}
