package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sambeau/caliper/pkg/caliper/catalog"
	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
)

// DefaultFile is the config file looked for in the working directory.
const DefaultFile = "caliper.yaml"

// Load reads configuration with ENV interpolation and CALIPER_* overrides.
// environ holds "KEY=value" pairs, as returned by os.Environ. When no
// config file is found the defaults are used.
func Load(configPath string, environ []string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, environ)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path, which is empty when the defaults were used.
func LoadWithPath(configPath string, environ []string) (*Config, string, error) {
	vars := envMap(environ)
	getenv := func(key string) string { return vars[key] }

	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	cfg := Defaults()
	absPath := ""
	if path != "" {
		absPath, err = filepath.Abs(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
		data = interpolateEnv(data, getenv)
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.BaseDir = filepath.Dir(absPath)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, "", fmt.Errorf("parse env: %w", err)
	}

	// Resolve relative definition paths against the config directory
	if cfg.BaseDir != "" {
		for i, def := range cfg.Definitions {
			if !filepath.IsAbs(def) {
				cfg.Definitions[i] = filepath.Join(cfg.BaseDir, def)
			}
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, absPath, nil
}

func envMap(environ []string) map[string]string {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > CALIPER_CONFIG env > ./caliper.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("CALIPER_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("CALIPER_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	}
	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// Validate checks the whole configuration and reports every problem found.
func Validate(cfg *Config) error {
	var errs []string

	if _, err := language.Parse(cfg.Locale); err != nil {
		errs = append(errs, fmt.Sprintf("invalid locale: %q", cfg.Locale))
	}

	known := make(map[string]bool)
	for _, s := range catalog.Systems() {
		known[s] = true
	}
	for _, s := range cfg.Systems {
		if !known[s] {
			errs = append(errs, fmt.Sprintf("unknown system: %s (must be one of %s)", s, strings.Join(catalog.Systems(), ", ")))
		}
	}

	for i, def := range cfg.Definitions {
		if strings.TrimSpace(def) == "" {
			errs = append(errs, fmt.Sprintf("definitions[%d]: path is required", i))
		}
	}
	if cfg.Watch && len(cfg.Definitions) == 0 {
		errs = append(errs, "watch requires at least one definitions file")
	}

	if cfg.Display.Precision < -1 || cfg.Display.Precision > numeric.Precision {
		errs = append(errs, fmt.Sprintf("invalid display precision: %d (must be -1 to %d)", cfg.Display.Precision, numeric.Precision))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if cfg.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Listen); err != nil {
			errs = append(errs, fmt.Sprintf("invalid metrics listen address: %s", cfg.Metrics.Listen))
		}
	}

	if len(errs) > 0 {
		return cerrors.Newf(cerrors.ClassConfig, "configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
