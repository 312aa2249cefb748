package unit

import (
	"fmt"
	"strings"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
)

// DefineOption sets an optional attribute of a unit before it is
// registered.
type DefineOption func(*Unit)

// WithEnum tags the unit with a catalog enumeration.
func WithEnum(e Enum) DefineOption {
	return func(u *Unit) { u.enum = e }
}

// WithUnifiedSymbol sets the symbol used to exchange the unit with other
// systems, such as a UCUM code.
func WithUnifiedSymbol(s string) DefineOption {
	return func(u *Unit) { u.unifiedSymbol = s }
}

// CreateScalar defines a scalar unit. Its conversion is the identity until
// SetConversion is called.
func (r *Registry) CreateScalar(typ Type, name, symbol, description string, opts ...DefineOption) (*Unit, error) {
	u, _, err := r.create(typ, name, symbol, description, Scalar{}, opts...)
	return u, err
}

// CreateProduct defines the unit multiplier·multiplicand.
func (r *Registry) CreateProduct(typ Type, name, symbol, description string, multiplier, multiplicand *Unit, opts ...DefineOption) (*Unit, error) {
	if err := requireOperand(symbol, "multiplier", multiplier); err != nil {
		return nil, err
	}
	if err := requireOperand(symbol, "multiplicand", multiplicand); err != nil {
		return nil, err
	}
	u, _, err := r.create(typ, name, symbol, description, Product{Multiplier: multiplier, Multiplicand: multiplicand}, opts...)
	return u, err
}

// CreateQuotient defines the unit dividend/divisor.
func (r *Registry) CreateQuotient(typ Type, name, symbol, description string, dividend, divisor *Unit, opts ...DefineOption) (*Unit, error) {
	if err := requireOperand(symbol, "dividend", dividend); err != nil {
		return nil, err
	}
	if err := requireOperand(symbol, "divisor", divisor); err != nil {
		return nil, err
	}
	u, _, err := r.create(typ, name, symbol, description, Quotient{Dividend: dividend, Divisor: divisor}, opts...)
	return u, err
}

// CreatePower defines the unit base^exponent.
func (r *Registry) CreatePower(typ Type, name, symbol, description string, base *Unit, exponent int, opts ...DefineOption) (*Unit, error) {
	if err := requireOperand(symbol, "base", base); err != nil {
		return nil, err
	}
	if exponent == 0 {
		return nil, cerrors.New("DEF-0006", map[string]any{"Symbol": symbol})
	}
	u, _, err := r.create(typ, name, symbol, description, Power{Base: base, Exponent: exponent}, opts...)
	return u, err
}

func requireOperand(symbol, role string, u *Unit) error {
	if u == nil {
		return cerrors.New("DEF-0003", map[string]any{"Operand": role, "Symbol": symbol})
	}
	return nil
}

// create registers a new unit, or returns the unit already registered under
// symbol when it has the same shape. created reports whether u is new.
func (r *Registry) create(typ Type, name, symbol, description string, shape Shape, opts ...DefineOption) (u *Unit, created bool, err error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, false, cerrors.New("DEF-0001", nil)
	}
	if typ == "" {
		return nil, false, cerrors.New("DEF-0002", map[string]any{"Symbol": symbol})
	}
	if existing, ok := r.Get(symbol); ok {
		u, err := sameShape(existing, shape)
		return u, false, err
	}

	u = newUnit(r, typ, name, symbol, description, shape)
	for _, opt := range opts {
		opt(u)
	}
	if r.Register(u) {
		return u, true, nil
	}

	// Lost a race with a concurrent definition of the same symbol.
	existing, ok := r.Get(symbol)
	if !ok {
		return nil, false, cerrors.New("DEF-0005", map[string]any{"Symbol": symbol})
	}
	u, err = sameShape(existing, shape)
	return u, false, err
}

// sameShape returns existing when it was built from the same shape and
// operands as shape.
func sameShape(existing *Unit, shape Shape) (*Unit, error) {
	if existing.shape != shape {
		return nil, cerrors.New("DEF-0004", map[string]any{
			"Symbol":    existing.symbol,
			"Existing":  shapeString(existing.shape),
			"Requested": shapeString(shape),
		})
	}
	return existing, nil
}

func shapeString(s Shape) string {
	switch s := s.(type) {
	case Product:
		return fmt.Sprintf("product %s·%s", s.Multiplier.symbol, s.Multiplicand.symbol)
	case Quotient:
		return fmt.Sprintf("quotient %s/%s", s.Dividend.symbol, s.Divisor.symbol)
	case Power:
		return fmt.Sprintf("power %s^%d", s.Base.symbol, s.Exponent)
	default:
		return string(s.Kind())
	}
}
