package config

const (
	defaultOutputDir     = "~/ampliflow/results"
	defaultWorkDir       = "~/.local/share/ampliflow/work"
	defaultLogDir        = "~/.local/share/ampliflow/logs"
	defaultSchemeVersion = "V3"
	defaultModelName     = "r941_min_high_g360"
	defaultWorkers       = 4
	defaultLogFormat     = "auto"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Pipeline: Pipeline{
			SchemeVersion: defaultSchemeVersion,
			ModelName:     defaultModelName,
			Workers:       defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
