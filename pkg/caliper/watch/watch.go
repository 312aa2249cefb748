// Package watch reloads YAML unit definition files into a registry when
// they change on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sambeau/caliper/pkg/caliper/catalog"
	"github.com/sambeau/caliper/pkg/caliper/unit"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// Watcher tracks definition files and the units each one registered.
type Watcher struct {
	fs       *fsnotify.Watcher
	registry *unit.Registry
	logger   *slog.Logger
	debounce time.Duration
	onReload func(path string, err error)

	mu     sync.Mutex
	paths  map[string]bool
	files  map[string][]*unit.Unit // units owned by each file
	timers map[string]*time.Timer
	dirs   map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used to report reloads.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets the quiet period before a changed file is reloaded.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook registers fn to be called after every reload attempt.
func WithReloadHook(fn func(path string, err error)) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New creates a watcher that loads definitions into reg.
func New(reg *unit.Registry, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsWatcher,
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce: DefaultDebounce,
		paths:    make(map[string]bool),
		files:    make(map[string][]*unit.Unit),
		timers:   make(map[string]*time.Timer),
		dirs:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add loads path and watches it for changes. The file's directory is
// watched so that editors which replace files on save are noticed.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Reload(abs); err != nil {
		return err
	}

	dir := filepath.Dir(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths[abs] = true
	if w.dirs[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dirs[dir] = true
	w.logger.Info("watching unit definitions", "path", abs)
	return nil
}

// Units returns the units currently registered from path.
func (w *Watcher) Units(path string) []*unit.Unit {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*unit.Unit(nil), w.files[abs]...)
}

// Reload replaces the units registered from path with the file's current
// definitions. A file that no longer exists has its units removed. When
// the new definitions fail to load, the previous units are restored.
func (w *Watcher) Reload(path string) error {
	err := w.reload(path)
	if w.onReload != nil {
		w.onReload(path, err)
	}
	return err
}

func (w *Watcher) reload(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	previous := w.files[path]
	for _, u := range previous {
		w.registry.Unregister(u)
	}
	delete(w.files, path)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if len(previous) > 0 {
			w.logger.Info("unit definitions removed", "path", path, "units", len(previous))
		}
		return nil
	}
	if err != nil {
		w.restore(path, previous)
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	owned, err := catalog.LoadNewDefinitions(w.registry, f)
	if err != nil {
		w.restore(path, previous)
		w.logger.Error("reloading unit definitions", "path", path, "error", err)
		return fmt.Errorf("loading %s: %w", path, err)
	}

	w.files[path] = owned
	w.logger.Info("unit definitions loaded", "path", path, "units", len(owned))
	return nil
}

func (w *Watcher) restore(path string, units []*unit.Unit) {
	kept := units[:0:0]
	for _, u := range units {
		if w.registry.Register(u) {
			kept = append(kept, u)
		}
	}
	if len(kept) > 0 {
		w.files[path] = kept
	}
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.tracked(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.schedule(filepath.Clean(event.Name))
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) tracked(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paths[filepath.Clean(name)]
}

// schedule reloads path once it has been quiet for the debounce period.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		if err := w.Reload(path); err != nil {
			w.logger.Debug("reload failed", "path", path, "error", err)
		}
	})
}

// Close stops pending reloads and releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}
