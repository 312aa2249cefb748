package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sambeau/caliper/config"
	"github.com/sambeau/caliper/pkg/caliper/catalog"
	"github.com/sambeau/caliper/pkg/caliper/format"
	"github.com/sambeau/caliper/pkg/caliper/metrics"
	"github.com/sambeau/caliper/pkg/caliper/repl"
	"github.com/sambeau/caliper/pkg/caliper/unit"
	"github.com/sambeau/caliper/pkg/caliper/watch"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Environ())
	stop()
	os.Exit(code)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `caliper - unit conversion toolkit version %s

Usage:
  caliper [options] [command] [args...]

Commands:
  convert <amount> <from> <to>   Convert an amount between units
  factor <from> <to>             Show the conversion factor between two units
  base <symbol>                  Show the base symbol of a unit
  info <symbol>                  Describe a unit
  list [type]                    List units, optionally of one type
  docs [-html] [-title <t>]      Print the unit catalog as Markdown or HTML
  repl                           Start the interactive shell (default)

Options:
  -config <path>   Config file (default: $CALIPER_CONFIG or ./caliper.yaml)
  -h, --help       Show this help message
  -V, --version    Show version information

Examples:
  caliper convert 212 °F °C
  caliper factor mi km
  caliper list length
  caliper docs -html > units.html
`, Version)
}

// run is main without the process exit, so it can be tested.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, environ []string) int {
	flags := flag.NewFlagSet("caliper", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printHelp(stderr) }
	configFlag := flags.String("config", "", "Config file")
	helpFlag := flags.Bool("h", false, "Show help message")
	helpLongFlag := flags.Bool("help", false, "Show help message")
	versionFlag := flags.Bool("V", false, "Show version information")
	versionLongFlag := flags.Bool("version", false, "Show version information")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *helpFlag || *helpLongFlag {
		printHelp(stdout)
		return 0
	}
	if *versionFlag || *versionLongFlag {
		fmt.Fprintf(stdout, "caliper version %s\n", Version)
		return 0
	}

	cfg, cfgPath, err := config.LoadWithPath(*configFlag, environ)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(ctx, cfg, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()
	if cfgPath != "" {
		a.logger.Debug("config loaded", "path", cfgPath)
	}

	rest := flags.Args()
	cmd := "repl"
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	switch cmd {
	case "convert", "factor", "base", "info", "list":
		result, err := a.session.Eval(cmd + " " + strings.Join(rest, " "))
		if err != nil {
			fmt.Fprintln(stderr, a.session.FormatError(err))
			return 1
		}
		fmt.Fprintln(stdout, result)
		return 0
	case "docs":
		return docsCommand(a, rest, stdout, stderr)
	case "repl":
		if f, ok := stdin.(*os.File); ok && isTerminal(f) {
			repl.Start(a.session, stdout, Version)
			return 0
		}
		if err := repl.Run(a.session, stdin, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", cmd)
		printHelp(stderr)
		return 2
	}
}

func docsCommand(a *app, args []string, stdout, stderr io.Writer) int {
	docsFlags := flag.NewFlagSet("docs", flag.ContinueOnError)
	docsFlags.SetOutput(stderr)
	htmlFlag := docsFlags.Bool("html", false, "Render HTML instead of Markdown")
	titleFlag := docsFlags.String("title", "Units", "Document title")
	if err := docsFlags.Parse(args); err != nil {
		return 2
	}

	units := a.registry.Units()
	if !*htmlFlag {
		fmt.Fprint(stdout, format.CatalogMarkdown(*titleFlag, units))
		return 0
	}
	html, err := format.CatalogHTML(*titleFlag, units)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprint(stdout, html)
	return 0
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// app holds everything a command needs, built from the configuration.
type app struct {
	logger   *slog.Logger
	registry *unit.Registry
	session  *repl.Session
	watcher  *watch.Watcher
	server   *http.Server
	closers  []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (*app, error) {
	a := &app{}
	logger, closer, err := newLogger(cfg.Logging, stdout, stderr)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	opts := []unit.Option{unit.WithLogger(logger)}
	var m *metrics.Metrics
	if cfg.Metrics.Listen != "" {
		promReg := prometheus.NewRegistry()
		m = metrics.New(promReg)
		opts = append(opts, unit.WithObserver(m))
		a.serveMetrics(cfg.Metrics.Listen, promReg)
	}

	a.registry = unit.NewRegistry(opts...)
	if m != nil {
		m.Track(a.registry)
	}
	if err := catalog.Load(a.registry, cfg.Systems...); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.loadDefinitions(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}

	tag, err := format.ParseLocale(cfg.Locale)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session = repl.NewSession(a.registry, format.NewFormatter(tag, cfg.Display.Precision))
	logger.Debug("registry ready", "units", a.registry.Len(), "systems", strings.Join(cfg.Systems, ","))
	return a, nil
}

func (a *app) loadDefinitions(ctx context.Context, cfg *config.Config) error {
	if cfg.Watch {
		w, err := watch.New(a.registry, watch.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.watcher = w
		for _, path := range cfg.Definitions {
			if err := w.Add(path); err != nil {
				return err
			}
		}
		go w.Run(ctx)
		return nil
	}

	for _, path := range cfg.Definitions {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		units, err := catalog.LoadDefinitions(a.registry, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		a.logger.Debug("unit definitions loaded", "path", path, "units", len(units))
	}
	return nil
}

func (a *app) serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)
}

// Close stops background work and releases log files.
func (a *app) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.server.Shutdown(ctx)
		cancel()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	for _, c := range a.closers {
		c.Close()
	}
}
