package testsupport

import (
	"path/filepath"
	"testing"

	"ampliflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Pipeline.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSchemeVersion sets the primer scheme version on the test config.
func WithSchemeVersion(version string) ConfigOption {
	return func(c *config.Config) {
		c.Pipeline.SchemeVersion = version
	}
}

// WithWorkers overrides the worker budget on the test config.
func WithWorkers(workers int) ConfigOption {
	return func(c *config.Config) {
		c.Pipeline.Workers = workers
	}
}
