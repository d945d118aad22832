package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if !ValidSchemeVersion(c.Pipeline.SchemeVersion) {
		return fmt.Errorf("pipeline.scheme_version: unsupported value %q (supported: %s)",
			c.Pipeline.SchemeVersion, strings.Join(SchemeVersions, ", "))
	}
	if c.Pipeline.ModelName == "" {
		return errors.New("pipeline.model_name must be set")
	}
	if c.Pipeline.MinLength < 0 || c.Pipeline.MaxLength < 0 {
		return errors.New("pipeline length filters must be non-negative")
	}
	if c.Pipeline.MinLength > 0 && c.Pipeline.MaxLength > 0 && c.Pipeline.MinLength > c.Pipeline.MaxLength {
		return fmt.Errorf("pipeline.min_length %d exceeds pipeline.max_length %d", c.Pipeline.MinLength, c.Pipeline.MaxLength)
	}
	if c.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
