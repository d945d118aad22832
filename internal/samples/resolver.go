package samples

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ampliflow/internal/logging"
	"ampliflow/internal/services"
)

// containerPattern matches per-sample container directories. The numeric
// suffix is bounded at three digits; anything else is not a container even
// if it otherwise looks like one.
var containerPattern = regexp.MustCompile(`^barcode[0-9]{1,3}$`)

var readSuffixes = []string{".fastq", ".fastq.gz", ".fq", ".fq.gz"}

// Options controls sample resolution.
type Options struct {
	// MappingPath names a tabular id -> display name file. Optional;
	// multiplexed runs without one use the identity mapping.
	MappingPath string
	// SampleName overrides the display name in single-sample mode.
	SampleName string
	Logger     *slog.Logger
}

// Resolution is the outcome of resolving an input root.
type Resolution struct {
	Mode    Mode
	Samples []Sample
}

// Resolve inspects root and produces the run's sample set in resolution
// order. It fails with services.ErrResolution when neither container
// directories nor raw read files are found.
func Resolve(root string, opts Options) (*Resolution, error) {
	logger := logging.NewComponentLogger(opts.Logger, "samples")

	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "samples", "stat input", root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrResolution, "samples", "probe input", fmt.Sprintf("%s is not a directory", root), nil)
	}

	containers, err := findContainers(root)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "samples", "probe containers", root, err)
	}
	if len(containers) > 0 {
		resolved, err := resolveMultiplexed(root, containers, opts, logger)
		if err != nil {
			return nil, err
		}
		return &Resolution{Mode: Multiplexed, Samples: resolved}, nil
	}

	hasReads, err := hasReadFiles(root)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "samples", "probe read files", root, err)
	}
	if !hasReads {
		return nil, services.Wrap(services.ErrResolution, "samples", "probe input", "no input found", nil)
	}

	name := strings.TrimSpace(opts.SampleName)
	if name == "" {
		name = filepath.Base(root)
	}
	logger.Info("resolved single-sample input", logging.String(FieldSampleName, name))
	return &Resolution{
		Mode:    SingleSample,
		Samples: []Sample{{ID: name, DisplayName: name, InputDir: root}},
	}, nil
}

// FieldSampleName is the structured logging key for resolved sample names.
const FieldSampleName = "sample_name"

func resolveMultiplexed(root string, containers []string, opts Options, logger *slog.Logger) ([]Sample, error) {
	mapping, err := loadOrSynthesizeMapping(containers, opts.MappingPath)
	if err != nil {
		return nil, err
	}
	if len(mapping.order) == 0 {
		logger.Warn("sample mapping is empty; no samples will be processed",
			logging.String("mapping", opts.MappingPath))
	}

	onDisk := make(map[string]struct{}, len(containers))
	for _, dir := range containers {
		onDisk[dir] = struct{}{}
	}

	// Inner join between discovered containers and mapping rows. Rows
	// without a directory and directories without a row are both dropped;
	// a mismatch here is a configuration quirk, not an error.
	resolved := make([]Sample, 0, len(containers))
	for _, dir := range containers {
		display, ok := mapping.names[dir]
		if !ok {
			logger.Debug("container has no mapping entry; dropped",
				logging.String("container", dir))
			continue
		}
		resolved = append(resolved, Sample{
			ID:          dir,
			DisplayName: display,
			InputDir:    filepath.Join(root, dir),
		})
	}
	for _, id := range mapping.order {
		if _, ok := onDisk[id]; !ok {
			logger.Debug("mapping entry has no container on disk; dropped",
				logging.String("id", id))
		}
	}

	logger.Info("resolved multiplexed input",
		logging.Int("containers", len(containers)),
		logging.Int("samples", len(resolved)))
	return resolved, nil
}

func findContainers(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var containers []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if containerPattern.MatchString(entry.Name()) {
			containers = append(containers, entry.Name())
		}
	}
	sortContainers(containers)
	return containers, nil
}

func hasReadFiles(root string) (bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsReadFile(entry.Name()) {
			return true, nil
		}
	}
	return false, nil
}

// IsReadFile reports whether the file name looks like a raw sequencing
// read file.
func IsReadFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range readSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
