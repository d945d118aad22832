package config

import "strings"

// normalize expands path fields and canonicalizes enumerated values so the
// rest of the repository never sees raw user input.
func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.OutputDir, &c.Paths.WorkDir, &c.Paths.LogDir, &c.Pipeline.SchemeDir} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Pipeline.ModelName = strings.TrimSpace(c.Pipeline.ModelName)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if scheme := strings.TrimSpace(c.Pipeline.SchemeVersion); scheme != "" {
		canonical, err := NormalizeSchemeVersion(scheme)
		if err == nil {
			c.Pipeline.SchemeVersion = canonical
		} else {
			// Keep the raw value so Validate can report it.
			c.Pipeline.SchemeVersion = scheme
		}
	}
	return nil
}
