package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ampliflow/internal/aggregate"
	"ampliflow/internal/artifact"
	"ampliflow/internal/config"
	"ampliflow/internal/services"
	"ampliflow/internal/services/artic"
	"ampliflow/internal/taskgraph"
)

// Stage names used throughout the run.
const (
	StageReadQC    = "readqc"
	StageCompute   = "compute"
	StageConsensus = "consensus"
	StageVariants  = "variants"
	StageClade     = "clade"
	StageReport    = "report"
)

// buildStages declares the dataflow graph: two per-sample scatter stages
// feeding four collect-all gather stages.
func (r *Runner) buildStages(runID string, params config.Params) []*taskgraph.Stage {
	return []*taskgraph.Stage{
		{
			Name: StageReadQC,
			Mode: taskgraph.PerSample,
			RunSample: func(ctx context.Context, inv *taskgraph.Invocation) ([]artifact.Artifact, error) {
				path, err := r.readqc.Stats(ctx, inv.Sample.InputDir, inv.Sample.DisplayName, inv.WorkDir)
				if err != nil {
					return nil, err
				}
				return []artifact.Artifact{
					{Kind: artifact.KindReadQC, SampleID: inv.Sample.ID, Path: path},
				}, nil
			},
		},
		{
			Name: StageCompute,
			Mode: taskgraph.PerSample,
			RunSample: func(ctx context.Context, inv *taskgraph.Invocation) ([]artifact.Artifact, error) {
				result, err := r.compute.Minion(ctx, inv.Sample.InputDir, inv.Sample.DisplayName, inv.WorkDir, artic.Params{
					MinLength:     params.MinLength,
					MaxLength:     params.MaxLength,
					ModelName:     params.ModelName,
					SchemeVersion: params.SchemeVersion,
					SchemeDir:     params.SchemeDir,
					Threads:       1,
				})
				if err != nil {
					return nil, err
				}
				id := inv.Sample.ID
				return []artifact.Artifact{
					{Kind: artifact.KindConsensus, SampleID: id, Path: result.Consensus},
					{Kind: artifact.KindVariants, SampleID: id, Path: result.Variants},
					{Kind: artifact.KindVariantIndex, SampleID: id, Path: result.VariantIndex},
					{Kind: artifact.KindDepth, SampleID: id, Path: result.Depth},
					{Kind: artifact.KindRunStats, SampleID: id, Path: result.RunStats},
				}, nil
			},
		},
		{
			Name:  StageConsensus,
			Mode:  taskgraph.CollectAll,
			Needs: []string{StageCompute},
			RunCollect: func(ctx context.Context, col *taskgraph.Collection) ([]artifact.Artifact, error) {
				inputs := filterKind(col.Sets[StageCompute].InOrder(col.SampleIDs()), artifact.KindConsensus)
				outPath := filepath.Join(col.WorkDir, "consensus.fasta")
				if err := aggregate.Concat(inputs, col.DisplayName, outPath); err != nil {
					return nil, err
				}
				return []artifact.Artifact{{Kind: artifact.KindConsensus, Path: outPath}}, nil
			},
		},
		{
			Name:  StageVariants,
			Mode:  taskgraph.CollectAll,
			Needs: []string{StageCompute},
			RunCollect: func(ctx context.Context, col *taskgraph.Collection) ([]artifact.Artifact, error) {
				set := col.Sets[StageCompute]
				// Variant calls travel as an indexed pair; a call file
				// without its index for the same sample id is a join
				// failure, not something to paper over.
				for _, id := range col.SampleIDs() {
					if err := checkVariantPair(set.ForSample(id), id); err != nil {
						return nil, err
					}
				}
				inputs := filterKind(set.InOrder(col.SampleIDs()), artifact.KindVariants)
				outPath := filepath.Join(col.WorkDir, "variants.vcf")
				if err := aggregate.MergeVCF(inputs, col.DisplayName, outPath); err != nil {
					return nil, err
				}
				return []artifact.Artifact{{Kind: artifact.KindVariants, Path: outPath}}, nil
			},
		},
		{
			Name:  StageClade,
			Mode:  taskgraph.CollectAll,
			Needs: []string{StageConsensus},
			RunCollect: func(ctx context.Context, col *taskgraph.Collection) ([]artifact.Artifact, error) {
				combined := col.Sets[StageConsensus].All()
				if len(combined) == 0 {
					return nil, services.Wrap(services.ErrIncompleteSet, StageClade, "gather", "no combined consensus", nil)
				}
				reference, primers := schemeInputs(params)
				path, err := r.clade.Run(ctx, combined[0].Path, reference, primers, col.WorkDir)
				if err != nil {
					return nil, err
				}
				return []artifact.Artifact{{Kind: artifact.KindClade, Path: path}}, nil
			},
		},
		{
			Name:          StageReport,
			Mode:          taskgraph.CollectAll,
			Needs:         []string{StageCompute, StageReadQC},
			OptionalNeeds: []string{StageClade},
			RunCollect: func(ctx context.Context, col *taskgraph.Collection) ([]artifact.Artifact, error) {
				cladePath := ""
				if cladeSet, ok := col.Sets[StageClade]; ok {
					if all := cladeSet.All(); len(all) > 0 {
						cladePath = all[0].Path
					}
				}
				outPath := filepath.Join(col.WorkDir, "report.md")
				err := aggregate.Synthesize(aggregate.SynthesisInput{
					RunID:         runID,
					SchemeVersion: params.SchemeVersion,
					ModelName:     params.ModelName,
					MinLength:     params.MinLength,
					MaxLength:     params.MaxLength,
					Samples:       col.Samples,
					Depth:         col.Sets[StageCompute],
					ReadQC:        col.Sets[StageReadQC],
					Stats:         col.Sets[StageCompute],
					CladePath:     cladePath,
					OutPath:       outPath,
				})
				if err != nil {
					return nil, err
				}
				return []artifact.Artifact{{Kind: artifact.KindReport, Path: outPath}}, nil
			},
		},
	}
}

func filterKind(artifacts []artifact.Artifact, kind artifact.Kind) []artifact.Artifact {
	var out []artifact.Artifact
	for _, a := range artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func checkVariantPair(artifacts []artifact.Artifact, sampleID string) error {
	var haveCalls, haveIndex bool
	for _, a := range artifacts {
		switch a.Kind {
		case artifact.KindVariants:
			haveCalls = true
		case artifact.KindVariantIndex:
			haveIndex = true
		}
	}
	if !haveCalls || !haveIndex {
		return services.Wrap(services.ErrJoin, StageVariants, "pair variant calls",
			fmt.Sprintf("sample %s is missing its %s", sampleID, pairMissing(haveCalls)), nil)
	}
	return nil
}

func pairMissing(haveCalls bool) string {
	if haveCalls {
		return "index"
	}
	return "call file"
}

// schemeInputs locates the reference sequence and primer descriptor for
// the configured scheme, when a scheme directory is available.
func schemeInputs(params config.Params) (reference, primers string) {
	if params.SchemeDir == "" {
		return "", ""
	}
	base := filepath.Join(params.SchemeDir, "nCoV-2019", params.SchemeVersion)
	reference = filepath.Join(base, "nCoV-2019.reference.fasta")
	primers = filepath.Join(base, "nCoV-2019.primer.bed")
	if _, err := os.Stat(reference); err != nil {
		reference = ""
	}
	if _, err := os.Stat(primers); err != nil {
		primers = ""
	}
	return reference, primers
}
