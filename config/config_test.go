package config

import (
	stderrors "errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Locale != "en" {
		t.Errorf("expected default locale 'en', got %q", cfg.Locale)
	}
	if strings.Join(cfg.Systems, ",") != "si,customary,us" {
		t.Errorf("expected every system by default, got %v", cfg.Systems)
	}
	if cfg.Display.Precision != -1 {
		t.Errorf("expected full precision by default, got %d", cfg.Display.Precision)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected default log level 'warn', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid",
			yaml: "locale: de-CH\nsystems: [si]\ndisplay:\n  precision: 4\nmetrics:\n  listen: \":9100\"\n",
		},
		{
			name:    "bad locale",
			yaml:    "locale: \"not a tag!\"\n",
			wantErr: "invalid locale",
		},
		{
			name:    "unknown system",
			yaml:    "systems: [si, imperial]\n",
			wantErr: "unknown system: imperial (must be one of customary, si, us)",
		},
		{
			name:    "precision too large",
			yaml:    "display:\n  precision: 40\n",
			wantErr: "invalid display precision: 40 (must be -1 to 16)",
		},
		{
			name:    "bad log level",
			yaml:    "logging:\n  level: verbose\n",
			wantErr: "invalid log level: verbose",
		},
		{
			name:    "bad log format",
			yaml:    "logging:\n  format: xml\n",
			wantErr: "invalid log format: xml",
		},
		{
			name:    "watch without definitions",
			yaml:    "watch: true\n",
			wantErr: "watch requires at least one definitions file",
		},
		{
			name:    "bad metrics address",
			yaml:    "metrics:\n  listen: localhost\n",
			wantErr: "invalid metrics listen address: localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			if err := yaml.Unmarshal([]byte(tt.yaml), cfg); err != nil {
				t.Fatalf("Failed to parse config: %v", err)
			}
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
			if !stderrors.Is(err, cerrors.ErrConfig) {
				t.Errorf("expected a config error, got %T", err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Systems = []string{"metric"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := strings.Count(err.Error(), "\n  - "); n != 3 {
		t.Errorf("expected 3 problems, got %d:\n%v", n, err)
	}
}
