package unit

import (
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
)

// Lookup kinds reported to an Observer.
const (
	LookupSymbol = "symbol"
	LookupBase   = "base"
	LookupEnum   = "enum"
)

// Observer receives registry events. Implementations must be safe for
// concurrent use; they are called without the registry lock held.
type Observer interface {
	UnitRegistered(u *Unit)
	UnitUnregistered(u *Unit)
	Lookup(kind string, hit bool)
	ConversionResolved(from, to *Unit, err error)
}

type nopObserver struct{}

func (nopObserver) UnitRegistered(*Unit)                   {}
func (nopObserver) UnitUnregistered(*Unit)                 {}
func (nopObserver) Lookup(string, bool)                    {}
func (nopObserver) ConversionResolved(*Unit, *Unit, error) {}

// Registry holds the units of one measurement system, indexed by symbol,
// by base symbol and by enumeration tag. The first unit registered under a
// symbol keeps it; the first unit registered under a base symbol becomes
// that base symbol's representative.
type Registry struct {
	mu       sync.RWMutex
	bySymbol map[string]*Unit
	byBase   map[string]*Unit
	byEnum   map[Enum]*Unit
	indexed  map[*Unit]string // base symbol each unit was indexed under
	one      *Unit
	gen      atomic.Uint64 // bumped on every conversion change

	logger   *slog.Logger
	observer Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the observer notified of registry events.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewRegistry creates an empty registry holding only the unity unit.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bySymbol: make(map[string]*Unit),
		byBase:   make(map[string]*Unit),
		byEnum:   make(map[Enum]*Unit),
		indexed:  make(map[*Unit]string),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.One()
	return r
}

// One returns the unity unit "1", registering it if needed.
func (r *Registry) One() *Unit {
	r.mu.RLock()
	one := r.one
	registered := one != nil && r.bySymbol[one.symbol] == one
	r.mu.RUnlock()
	if registered {
		return one
	}

	u := newUnit(r, TypeUnity, "one", "1", "multiplicative identity", Scalar{})
	u.enum = EnumOne
	r.Register(u)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.bySymbol["1"]; existing != nil {
		r.one = existing
	} else {
		r.one = u
	}
	return r.one
}

// Register adds u to every index it qualifies for. It reports false, and
// changes nothing, when the symbol is already taken or u was created by
// another registry.
func (r *Registry) Register(u *Unit) bool {
	if u == nil || u.symbol == "" {
		return false
	}
	if u.registry != r {
		r.logger.Debug("unit belongs to another registry", "symbol", u.symbol)
		return false
	}
	base, err := u.BaseSymbol()
	if err != nil {
		r.logger.Debug("unit not indexed by base symbol", "symbol", u.symbol, "error", err)
	}

	r.mu.Lock()
	if _, exists := r.bySymbol[u.symbol]; exists {
		r.mu.Unlock()
		r.logger.Debug("symbol already registered", "symbol", u.symbol)
		return false
	}
	r.bySymbol[u.symbol] = u
	if u.enum != "" {
		if _, exists := r.byEnum[u.enum]; !exists {
			r.byEnum[u.enum] = u
		}
	}
	if err == nil {
		r.indexBaseLocked(u, base)
	}
	r.mu.Unlock()

	r.observer.UnitRegistered(u)
	return true
}

func (r *Registry) indexBaseLocked(u *Unit, base string) {
	if _, exists := r.byBase[base]; !exists {
		r.byBase[base] = u
	}
	r.indexed[u] = base
}

// Unregister removes u from every index it is present in.
func (r *Registry) Unregister(u *Unit) {
	if u == nil {
		return
	}
	r.mu.Lock()
	if r.bySymbol[u.symbol] != u {
		r.mu.Unlock()
		return
	}
	delete(r.bySymbol, u.symbol)
	if u.enum != "" && r.byEnum[u.enum] == u {
		delete(r.byEnum, u.enum)
	}
	if base, ok := r.indexed[u]; ok {
		if r.byBase[base] == u {
			delete(r.byBase, base)
		}
		delete(r.indexed, u)
	}
	r.mu.Unlock()

	r.observer.UnitUnregistered(u)
}

// Clear empties every index. The unity unit is registered again on the
// next call to One.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.bySymbol = make(map[string]*Unit)
	r.byBase = make(map[string]*Unit)
	r.byEnum = make(map[Enum]*Unit)
	r.indexed = make(map[*Unit]string)
	r.one = nil
	r.mu.Unlock()
	r.logger.Debug("registry cleared")
}

// reindexBase moves u to its current base symbol after its conversion
// changed.
func (r *Registry) reindexBase(u *Unit) {
	base, err := u.BaseSymbol()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bySymbol[u.symbol] != u {
		return
	}
	if old, ok := r.indexed[u]; ok {
		if old == base && err == nil {
			return
		}
		if r.byBase[old] == u {
			delete(r.byBase, old)
		}
		delete(r.indexed, u)
	}
	if err != nil {
		r.logger.Debug("unit not indexed by base symbol", "symbol", u.symbol, "error", err)
		return
	}
	r.indexBaseLocked(u, base)
}

// Get returns the unit registered under symbol.
func (r *Registry) Get(symbol string) (*Unit, bool) {
	r.mu.RLock()
	u, ok := r.bySymbol[symbol]
	r.mu.RUnlock()
	r.observer.Lookup(LookupSymbol, ok)
	return u, ok
}

// GetEnum returns the unit registered under an enumeration tag.
func (r *Registry) GetEnum(e Enum) (*Unit, bool) {
	r.mu.RLock()
	u, ok := r.byEnum[e]
	r.mu.RUnlock()
	r.observer.Lookup(LookupEnum, ok)
	return u, ok
}

// GetBase returns the representative unit for a base symbol.
func (r *Registry) GetBase(base string) (*Unit, bool) {
	r.mu.RLock()
	u, ok := r.byBase[base]
	r.mu.RUnlock()
	r.observer.Lookup(LookupBase, ok)
	return u, ok
}

// Lookup is like Get but returns an error naming close matches when the
// symbol is unknown.
func (r *Registry) Lookup(symbol string) (*Unit, error) {
	if u, ok := r.Get(symbol); ok {
		return u, nil
	}
	return nil, cerrors.NewUnknownUnit(symbol, r.Symbols())
}

// Symbols returns every registered symbol, sorted.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.bySymbol))
	for s := range r.bySymbol {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Units returns a snapshot of every registered unit, sorted by symbol.
func (r *Registry) Units() []*Unit {
	r.mu.RLock()
	out := make([]*Unit, 0, len(r.bySymbol))
	for _, u := range r.bySymbol {
		out = append(out, u)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].symbol < out[j].symbol })
	return out
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySymbol)
}
