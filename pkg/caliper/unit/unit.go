// Package unit implements units of measure and the algebra over them.
//
// A Unit has one of four shapes: Scalar, Product, Quotient or Power. Every
// unit owns a Conversion to an abscissa unit (itself by default) and may own
// a one-way bridge Conversion into another measurement system. Units are
// created through a Registry, which keeps exactly one instance per symbol.
//
// The Reducer expands any unit into a scaling factor and a set of
// fundamental scalar units with integer exponents; its canonical rendering
// is the unit's base symbol. Conversion factors between compatible units are
// resolved from those reductions, crossing measurement systems through
// bridges where needed.
package unit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
)

// Kind names the algebraic shape of a unit.
type Kind string

const (
	KindScalar   Kind = "scalar"
	KindProduct  Kind = "product"
	KindQuotient Kind = "quotient"
	KindPower    Kind = "power"
)

// Shape is the algebraic structure of a unit. The set of implementations is
// closed: Scalar, Product, Quotient and Power.
type Shape interface {
	Kind() Kind
	sealed()
}

// Scalar is a unit with no internal structure.
type Scalar struct{}

// Product is multiplier × multiplicand.
type Product struct {
	Multiplier   *Unit
	Multiplicand *Unit
}

// Quotient is dividend ÷ divisor.
type Quotient struct {
	Dividend *Unit
	Divisor  *Unit
}

// Power is base raised to a non-zero integer exponent.
type Power struct {
	Base     *Unit
	Exponent int
}

func (Scalar) Kind() Kind   { return KindScalar }
func (Product) Kind() Kind  { return KindProduct }
func (Quotient) Kind() Kind { return KindQuotient }
func (Power) Kind() Kind    { return KindPower }

func (Scalar) sealed()   {}
func (Product) sealed()  {}
func (Quotient) sealed() {}
func (Power) sealed()    {}

// Unit is a unit of measure. Identity fields are fixed at creation; the
// conversion, bridge and cached base symbol may change afterwards and are
// guarded by mu.
type Unit struct {
	registry      *Registry
	typ           Type
	name          string
	symbol        string
	description   string
	shape         Shape
	enum          Enum
	unifiedSymbol string

	mu         sync.RWMutex
	conversion Conversion // nil Abscissa means identity
	bridge     *Conversion
	baseSymbol *string
	baseGen    uint64
}

func newUnit(r *Registry, typ Type, name, symbol, description string, shape Shape) *Unit {
	return &Unit{
		registry:    r,
		typ:         typ,
		name:        name,
		symbol:      symbol,
		description: description,
		shape:       shape,
	}
}

func (u *Unit) Name() string          { return u.name }
func (u *Unit) Symbol() string        { return u.symbol }
func (u *Unit) Description() string   { return u.description }
func (u *Unit) Type() Type            { return u.typ }
func (u *Unit) Shape() Shape          { return u.shape }
func (u *Unit) Kind() Kind            { return u.shape.Kind() }
func (u *Unit) Enum() Enum            { return u.enum }
func (u *Unit) UnifiedSymbol() string { return u.unifiedSymbol }

// Registry returns the registry that created u.
func (u *Unit) Registry() *Registry { return u.registry }

// Conversion returns u's conversion to its abscissa unit.
func (u *Unit) Conversion() Conversion {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.conversion.Abscissa == nil {
		return identity(u)
	}
	return u.conversion
}

// Factor is the scaling factor of u's conversion.
func (u *Unit) Factor() decimal.Decimal { return u.Conversion().Factor }

// Offset is the offset of u's conversion.
func (u *Unit) Offset() decimal.Decimal { return u.Conversion().Offset }

// Abscissa is the unit u converts into.
func (u *Unit) Abscissa() *Unit { return u.Conversion().Abscissa }

// IsTerminal reports whether u is a fundamental scalar: a Scalar unit whose
// abscissa is itself.
func (u *Unit) IsTerminal() bool {
	_, scalar := u.shape.(Scalar)
	return scalar && u.Abscissa() == u
}

// SetConversion replaces u's conversion with y = factor*x + offset into
// abscissa. Offsets are only allowed on scalar units. The cached base symbol
// is discarded and the registry's base-symbol index is refreshed.
func (u *Unit) SetConversion(factor decimal.Decimal, abscissa *Unit, offset decimal.Decimal) error {
	if abscissa == nil {
		return cerrors.New("DEF-0008", map[string]any{"Symbol": u.symbol})
	}
	if !offset.IsZero() && u.Kind() != KindScalar {
		return cerrors.New("DEF-0007", map[string]any{"Symbol": u.symbol, "Shape": u.Kind()})
	}

	if factor.IsZero() {
		return cerrors.New("DEF-0010", map[string]any{"Symbol": u.symbol})
	}

	u.mu.Lock()
	u.conversion = Conversion{
		Factor:   numeric.Round(factor),
		Offset:   numeric.Round(offset),
		Abscissa: abscissa,
	}
	u.baseSymbol = nil
	u.mu.Unlock()

	if u.registry != nil {
		u.registry.gen.Add(1)
		u.registry.reindexBase(u)
	}
	return nil
}

// Bridge returns u's bridge conversion into another measurement system.
func (u *Unit) Bridge() (Conversion, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.bridge == nil {
		return Conversion{}, false
	}
	return *u.bridge, true
}

// SetBridgeConversion sets a one-way bridge y = factor*x + offset from u to
// abscissa in another measurement system. The reverse direction is derived
// when needed; abscissa does not gain a bridge back to u.
func (u *Unit) SetBridgeConversion(factor decimal.Decimal, abscissa *Unit, offset decimal.Decimal) error {
	if abscissa == nil {
		return cerrors.New("DEF-0008", map[string]any{"Symbol": u.symbol})
	}
	if factor.IsZero() {
		return cerrors.New("DEF-0010", map[string]any{"Symbol": u.symbol})
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bridge = &Conversion{
		Factor:   numeric.Round(factor),
		Offset:   numeric.Round(offset),
		Abscissa: abscissa,
	}
	return nil
}

// BaseSymbol returns the canonical base symbol of u, computing and caching
// it on first use. Concurrent first calls may each compute the value; the
// result is identical and the cache write is guarded. The cache is dropped
// when any conversion in u's registry changes.
func (u *Unit) BaseSymbol() (string, error) {
	gen := u.generation()
	u.mu.RLock()
	cached, cachedGen := u.baseSymbol, u.baseGen
	u.mu.RUnlock()
	if cached != nil && cachedGen == gen {
		return *cached, nil
	}

	red, err := Reduce(u)
	if err != nil {
		return "", err
	}
	symbol := red.BaseSymbol()

	u.mu.Lock()
	if u.baseSymbol == nil || u.baseGen != gen {
		u.baseSymbol = &symbol
		u.baseGen = gen
	}
	u.mu.Unlock()
	return symbol, nil
}

func (u *Unit) generation() uint64 {
	if u.registry == nil {
		return 0
	}
	return u.registry.gen.Load()
}

// ClearBaseSymbol discards the cached base symbol.
func (u *Unit) ClearBaseSymbol() {
	u.mu.Lock()
	u.baseSymbol = nil
	u.mu.Unlock()
}

// Equal reports semantic equality: same abscissa symbol, scaling factor and
// offset.
func (u *Unit) Equal(other *Unit) bool {
	if u == other {
		return true
	}
	if u == nil || other == nil {
		return false
	}
	a, b := u.Conversion(), other.Conversion()
	return a.Abscissa.Symbol() == b.Abscissa.Symbol() &&
		a.Factor.Equal(b.Factor) &&
		a.Offset.Equal(b.Offset)
}

// String returns the unit symbol.
func (u *Unit) String() string {
	if u == nil {
		return "<nil>"
	}
	return u.symbol
}

// Describe returns a one-line description including the base symbol. A
// failure to reduce the unit is shown in place of the base symbol rather
// than returned.
func (u *Unit) Describe() string {
	var sb strings.Builder
	sb.WriteString(u.symbol)
	if u.name != "" {
		fmt.Fprintf(&sb, " (%s)", u.name)
	}
	fmt.Fprintf(&sb, " %s %s", u.typ, u.Kind())
	if base, err := u.BaseSymbol(); err == nil {
		fmt.Fprintf(&sb, " base=%s", base)
	} else {
		sb.WriteString(" base=?")
	}
	conv := u.Conversion()
	if conv.Abscissa != u {
		fmt.Fprintf(&sb, " = %s·%s", conv.Factor, conv.Abscissa.symbol)
		if conv.HasOffset() {
			fmt.Fprintf(&sb, " + %s", conv.Offset)
		}
	}
	if b, ok := u.Bridge(); ok {
		fmt.Fprintf(&sb, " bridge %s·%s", b.Factor, b.Abscissa.symbol)
	}
	return sb.String()
}
