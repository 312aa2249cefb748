package config

// Config represents the complete Caliper configuration
type Config struct {
	BaseDir     string        `yaml:"-"`                                                      // Directory containing config file, for resolving relative paths
	Locale      string        `yaml:"locale" env:"CALIPER_LOCALE"`                            // BCP 47 tag for number formatting and error messages
	Systems     []string      `yaml:"systems" env:"CALIPER_SYSTEMS" envSeparator:","`         // Catalog systems to load (si, customary, us)
	Definitions []string      `yaml:"definitions" env:"CALIPER_DEFINITIONS" envSeparator:","` // YAML unit definition files
	Watch       bool          `yaml:"watch" env:"CALIPER_WATCH"`                              // Reload definition files when they change
	Display     DisplayConfig `yaml:"display"`
	Logging     LoggingConfig `yaml:"logging"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// DisplayConfig holds output formatting settings
type DisplayConfig struct {
	Precision int `yaml:"precision" env:"CALIPER_PRECISION"` // Fraction digits shown; -1 shows every significant digit
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CALIPER_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"CALIPER_LOG_FORMAT"` // text, json
	Output string `yaml:"output" env:"CALIPER_LOG_OUTPUT"` // stderr, stdout, or file path
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Listen string `yaml:"listen" env:"CALIPER_METRICS_LISTEN"` // host:port for /metrics; empty disables it
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Locale:  "en",
		Systems: []string{"si", "customary", "us"},
		Display: DisplayConfig{
			Precision: -1,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}
