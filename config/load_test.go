package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "TEST_LOCALE":
			return "fr"
		case "TEST_DIR":
			return "/srv/units"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "locale: ${TEST_LOCALE}",
			expected: "locale: fr",
		},
		{
			name:     "with default (env set)",
			input:    "locale: ${TEST_LOCALE:-en}",
			expected: "locale: fr",
		},
		{
			name:     "with default (env not set)",
			input:    "locale: ${UNSET_VAR:-en}",
			expected: "locale: en",
		},
		{
			name:     "multiple substitutions",
			input:    "path: ${TEST_DIR}/${TEST_LOCALE}.yaml",
			expected: "path: /srv/units/fr.yaml",
		},
		{
			name:     "no substitution needed",
			input:    "static: value",
			expected: "static: value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "caliper.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
locale: ${CALIPER_TEST_LOCALE:-de}
systems: [si, customary]
definitions:
  - units/nautical.yaml
  - /etc/caliper/extra.yaml
watch: true
display:
  precision: 3
logging:
  level: debug
  format: json
`)

	cfg, resolved, err := LoadWithPath(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != path {
		t.Errorf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Locale != "de" {
		t.Errorf("expected locale 'de', got %q", cfg.Locale)
	}
	if len(cfg.Systems) != 2 || cfg.Systems[1] != "customary" {
		t.Errorf("unexpected systems: %v", cfg.Systems)
	}
	if cfg.Definitions[0] != filepath.Join(dir, "units", "nautical.yaml") {
		t.Errorf("relative definition not resolved: %q", cfg.Definitions[0])
	}
	if cfg.Definitions[1] != "/etc/caliper/extra.yaml" {
		t.Errorf("absolute definition changed: %q", cfg.Definitions[1])
	}
	if !cfg.Watch || cfg.Display.Precision != 3 {
		t.Errorf("unexpected watch/precision: %v/%d", cfg.Watch, cfg.Display.Precision)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("unset fields should keep defaults, got output %q", cfg.Logging.Output)
	}
	if cfg.BaseDir != dir {
		t.Errorf("expected base dir %q, got %q", dir, cfg.BaseDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "locale: en\nsystems: [si]\n")

	environ := []string{
		"CALIPER_LOCALE=fr-CA",
		"CALIPER_SYSTEMS=si,customary,us",
		"CALIPER_PRECISION=2",
		"CALIPER_LOG_LEVEL=error",
		"CALIPER_METRICS_LISTEN=127.0.0.1:9100",
		"UNRELATED=1",
	}
	cfg, err := Load(path, environ)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Locale != "fr-CA" {
		t.Errorf("expected locale override, got %q", cfg.Locale)
	}
	if len(cfg.Systems) != 3 {
		t.Errorf("expected 3 systems, got %v", cfg.Systems)
	}
	if cfg.Display.Precision != 2 {
		t.Errorf("expected precision 2, got %d", cfg.Display.Precision)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected log level override, got %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9100" {
		t.Errorf("expected metrics listen override, got %q", cfg.Metrics.Listen)
	}
}

func TestLoad_EnvOverrideInvalid(t *testing.T) {
	if _, err := Load("", []string{"CALIPER_PRECISION=lots"}); err == nil {
		t.Error("expected an error for a non-numeric precision")
	}
	if _, err := Load("", []string{"CALIPER_LOG_FORMAT=xml"}); err == nil {
		t.Error("expected a validation error for the overridden format")
	}
}

func TestLoad_SearchOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "locale: it\n")

	cfg, resolved, err := LoadWithPath("", []string{"CALIPER_CONFIG=" + path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != path || cfg.Locale != "it" {
		t.Errorf("CALIPER_CONFIG not used: %q %q", resolved, cfg.Locale)
	}

	if _, err := Load("", []string{"CALIPER_CONFIG=" + filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("expected an error for a missing CALIPER_CONFIG file")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Error("expected an error for a missing explicit file")
	}
}

func TestLoad_NoFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, resolved, err := LoadWithPath("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != "" {
		t.Errorf("expected no resolved path, got %q", resolved)
	}
	if cfg.Locale != "en" || cfg.BaseDir != "" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "systems: [si\n")
	if _, err := Load(path, nil); err == nil {
		t.Error("expected a parse error")
	}
}
