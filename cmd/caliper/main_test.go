package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sambeau/caliper/config"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr, nil)
	return code, stdout.String(), stderr.String()
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"convert", []string{"convert", "1", "mi", "km"}, "1 mi = 1.609344 km\n"},
		{"factor", []string{"factor", "mi", "ft"}, "1 mi = 5280 ft\n"},
		{"base", []string{"base", "J"}, "kg·m²/s²\n"},
		{"version", []string{"-V"}, "caliper version " + Version + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, "", tt.args...)
			if code != 0 {
				t.Fatalf("exit code %d, stderr: %s", code, stderr)
			}
			if stdout != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, stdout)
			}
		})
	}
}

func TestList(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "list", "temperature")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	for _, symbol := range []string{"K ", "°C ", "°F ", "°R "} {
		if !strings.Contains(stdout, symbol) {
			t.Errorf("list temperature missing %q:\n%s", symbol, stdout)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"unknown unit", []string{"convert", "1", "mtr", "m"}, 1, "[DEF-0005]"},
		{"dimension mismatch", []string{"convert", "1", "m", "s"}, 1, "[DIM-0004]"},
		{"unknown command", []string{"frobnicate"}, 2, `unknown command "frobnicate"`},
		{"bad flag", []string{"-nope"}, 2, "flag provided but not defined"},
		{"missing config", []string{"-config", "/does/not/exist.yaml", "list"}, 1, "config file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr %q does not contain %q", stderr, tt.stderr)
			}
		})
	}
}

func TestDocs(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "docs", "-title", "Reference")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.HasPrefix(stdout, "# Reference\n") || !strings.Contains(stdout, "## Length") {
		t.Errorf("unexpected markdown:\n%s", stdout)
	}

	code, stdout, _ = runCLI(t, "", "docs", "-html")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, "<table>") {
		t.Errorf("expected an HTML table:\n%s", stdout)
	}
}

func TestREPLFromPipe(t *testing.T) {
	code, stdout, _ := runCLI(t, "factor km m\nbase Hz\nexit\n", "repl")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if stdout != "1 km = 1000 m\n1/s\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "nautical.yaml")
	if err := os.WriteFile(defs, []byte(`
units:
  - symbol: nmi
    name: nautical mile
    type: LENGTH
    conversion: {factor: "1852", unit: m}
`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "caliper.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
locale: de
systems: [si]
definitions: [nautical.yaml]
display:
  precision: 2
`), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCLI(t, "", "-config", cfgPath, "convert", "2.5", "nmi", "m")
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	if stdout != "2,5 nmi = 4.630 m\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	code, _, stderr = runCLI(t, "", "-config", cfgPath, "convert", "1", "ft", "m")
	if code != 1 || !strings.Contains(stderr, "DEF-0005") {
		t.Errorf("customary units should not be loaded: %d %q", code, stderr)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := newLogger(config.LoggingConfig{Level: "debug", Format: "json"}, io.Discard, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if closer != nil {
		t.Error("stderr output should not need closing")
	}
	logger.Debug("hello", "unit", "m")
	if !strings.Contains(buf.String(), `"msg":"hello"`) || !strings.Contains(buf.String(), `"unit":"m"`) {
		t.Errorf("unexpected log line %q", buf.String())
	}

	buf.Reset()
	logger, _, err = newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, io.Discard, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "level=WARN msg=shown") {
		t.Errorf("unexpected log output %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "caliper.log")
	logger, closer, err = newLogger(config.LoggingConfig{Level: "info", Output: path}, io.Discard, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("to file")
	closer.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file content %q", data)
	}

	if _, _, err := newLogger(config.LoggingConfig{Level: "chatty"}, io.Discard, &buf); err == nil {
		t.Error("expected an error for an unknown level")
	}

	var out bytes.Buffer
	buf.Reset()
	logger, closer, err = newLogger(config.LoggingConfig{Level: "info", Output: "stdout"}, &out, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if closer != nil {
		t.Error("stdout output should not need closing")
	}
	logger.Info("to stdout")
	if !strings.Contains(out.String(), "msg=\"to stdout\"") || buf.Len() != 0 {
		t.Errorf("stdout %q, stderr %q", out.String(), buf.String())
	}
}
