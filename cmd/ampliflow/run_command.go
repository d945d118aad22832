package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ampliflow/internal/config"
	"ampliflow/internal/logging"
	"ampliflow/internal/pipeline"
	"ampliflow/internal/taskgraph"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		mappingPath   string
		sampleName    string
		outputDir     string
		modelName     string
		minLength     int
		maxLength     int
		schemeVersion string
		workers       int
	)

	cmd := &cobra.Command{
		Use:   "run <input-dir>",
		Short: "Run the analysis pipeline over a sequencing run directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyRunFlags(cfg, cmd, outputDir, modelName, minLength, maxLength, workers)

			if schemeVersion != "" {
				normalized, err := config.NormalizeSchemeVersion(schemeVersion)
				if err != nil {
					_ = cmd.Usage()
					return err
				}
				cfg.Pipeline.SchemeVersion = normalized
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newRunLogger(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := pipeline.New(pipeline.Options{
				InputDir:    args[0],
				MappingPath: mappingPath,
				SampleName:  sampleName,
				Config:      cfg,
				Logger:      logger,
			})
			result, err := runner.Run(runCtx)
			if err != nil {
				return err
			}

			printRunSummary(cmd, result)
			if result.Failed() {
				return fmt.Errorf("run %s finished with failures", result.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mappingPath, "sample-map", "", "Tabular file mapping barcode ids to sample names")
	cmd.Flags().StringVar(&sampleName, "sample-name", "", "Display name for single-sample input")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for published results")
	cmd.Flags().StringVar(&modelName, "model", "", "Basecall model name passed to variant calling")
	cmd.Flags().IntVar(&minLength, "min-length", 0, "Minimum read length filter (0 uses the scheme default)")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum read length filter (0 uses the scheme default)")
	cmd.Flags().StringVar(&schemeVersion, "scheme-version", "", fmt.Sprintf("Primer scheme version (%s)", strings.Join(config.SchemeVersions, ", ")))
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent task budget (0 uses the configured value)")

	return cmd
}

func applyRunFlags(cfg *config.Config, cmd *cobra.Command, outputDir, modelName string, minLength, maxLength, workers int) {
	if outputDir != "" {
		cfg.Paths.OutputDir = outputDir
	}
	if modelName != "" {
		cfg.Pipeline.ModelName = modelName
	}
	if cmd.Flags().Changed("min-length") {
		cfg.Pipeline.MinLength = minLength
	}
	if cmd.Flags().Changed("max-length") {
		cfg.Pipeline.MaxLength = maxLength
	}
	if workers > 0 {
		cfg.Pipeline.Workers = workers
	}
}

func newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "ampliflow.log")},
	})
}

func printRunSummary(cmd *cobra.Command, result *pipeline.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s)\n", result.RunID, result.Mode)

	rows := make([][]string, 0, len(result.Samples))
	for _, s := range result.Samples {
		detail := ""
		if s.Err != nil {
			detail = s.Err.Error()
		}
		rows = append(rows, []string{
			s.Sample.ID,
			s.Sample.DisplayName,
			stageState(s.Stages, pipeline.StageReadQC),
			stageState(s.Stages, pipeline.StageCompute),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Barcode", "Sample", "Read QC", "Analysis", "Detail"},
		rows,
		nil,
	))

	aggRows := make([][]string, 0, len(result.Aggregates))
	for _, a := range result.Aggregates {
		detail := ""
		if a.Err != nil {
			detail = a.Err.Error()
		}
		aggRows = append(aggRows, []string{a.Stage, a.State.String(), detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Aggregate", "State", "Detail"}, aggRows, nil))

	published := 0
	for _, p := range result.Published {
		if p.Err == nil {
			published++
		}
	}
	fmt.Fprintf(out, "Published %d of %d artifacts\n", published, len(result.Published))
}

func stageState(stages map[string]taskgraph.State, name string) string {
	state, ok := stages[name]
	if !ok {
		return "-"
	}
	return state.String()
}
