package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sambeau/caliper/config"
)

// newLogger builds the process logger from the logging config. The
// returned closer is non-nil when output goes to a file.
func newLogger(cfg config.LoggingConfig, stdout, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var out io.Writer
	var closer io.Closer
	switch cfg.Output {
	case "", "stderr":
		out = stderr
	case "stdout":
		out = stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}
