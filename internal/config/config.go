// Package config handles converter tool configuration loading.
package config

// Config holds all sceneconv settings.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig controls how converted scenes are written.
type OutputConfig struct {
	Path   string `yaml:"path"`   // empty means stdout
	Pretty bool   `yaml:"pretty"` // indent the JSON dump
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Path:   "",
			Pretty: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
