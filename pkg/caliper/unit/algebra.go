package unit

import (
	"strings"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
)

// Multiply returns the product unit u·other, registered under the symbol
// "u·other". A newly registered product converts to the unit already
// registered for its base symbol, if there is one.
func (u *Unit) Multiply(other *Unit) (*Unit, error) {
	return u.compose(other, "multiply")
}

// Divide returns the quotient unit u/other, registered under the symbol
// "u/other". A newly registered quotient converts to the unit already
// registered for its base symbol, if there is one.
func (u *Unit) Divide(other *Unit) (*Unit, error) {
	return u.compose(other, "divide")
}

// Invert returns the reciprocal of u. A quotient has its dividend and
// divisor swapped; any other unit becomes 1/u.
func (u *Unit) Invert() (*Unit, error) {
	if q, ok := u.shape.(Quotient); ok {
		return q.Divisor.Divide(q.Dividend)
	}
	if u.registry == nil {
		return nil, cerrors.New("DEF-0003", map[string]any{"Operand": "a registry", "Symbol": "1/" + u.symbol})
	}
	return u.registry.One().Divide(u)
}

func (u *Unit) compose(other *Unit, op string) (*Unit, error) {
	if other == nil {
		return nil, cerrors.New("DEF-0009", nil)
	}
	for _, operand := range []*Unit{u, other} {
		if off := operand.Offset(); !off.IsZero() {
			return nil, cerrors.New("OFFSET-0001", map[string]any{
				"Operation": op,
				"Symbol":    operand.symbol,
				"Offset":    off.String(),
			})
		}
	}
	r := u.registry
	if r == nil {
		r = other.registry
	}
	if r == nil {
		return nil, cerrors.New("DEF-0003", map[string]any{"Operand": "a registry", "Symbol": u.symbol})
	}

	redA, err := Reduce(u)
	if err != nil {
		return nil, err
	}
	redB, err := Reduce(other)
	if err != nil {
		return nil, err
	}

	var (
		symbol string
		shape  Shape
		merged Reduction
	)
	if op == "multiply" {
		symbol = wrap(u.symbol, "/") + "·" + wrap(other.symbol, "/")
		shape = Product{Multiplier: u, Multiplicand: other}
		merged = Reduction{
			Scale: numeric.Mul(redA.Scale, redB.Scale),
			Terms: merge(redA.Terms, redB.Terms, false),
		}
	} else {
		symbol = wrap(u.symbol, "/") + "/" + wrap(other.symbol, "/·")
		shape = Quotient{Dividend: u, Divisor: other}
		scale, err := numeric.Quo(redA.Scale, redB.Scale)
		if err != nil {
			return nil, cerrors.New("ARITH-0001", map[string]any{"Operation": op + " " + symbol}).WithCause(err)
		}
		merged = Reduction{Scale: scale, Terms: merge(redA.Terms, redB.Terms, true)}
	}

	base := merged.BaseSymbol()
	rep, hasRep := r.GetBase(base)
	typ := TypeUnclassified
	if hasRep {
		typ = rep.typ
	}

	result, created, err := r.create(typ, "", symbol, "", shape)
	if err != nil {
		return nil, err
	}
	// A unit that was already registered keeps its conversion.
	if !created || !hasRep || rep == result {
		return result, nil
	}

	repRed, err := Reduce(rep)
	if err != nil {
		return nil, err
	}
	factor, err := numeric.Quo(merged.Scale, repRed.Scale)
	if err != nil {
		return nil, cerrors.New("ARITH-0001", map[string]any{"Operation": op + " " + symbol}).WithCause(err)
	}
	if err := result.SetConversion(factor, rep, numeric.Zero); err != nil {
		return nil, err
	}
	r.logger.Debug("composed unit converts to registered base unit",
		"symbol", symbol, "base", base, "representative", rep.symbol, "factor", factor.String())
	return result, nil
}

// wrap parenthesizes a compound symbol containing any of chars so that the
// composed symbol reads unambiguously.
func wrap(symbol, chars string) string {
	if strings.ContainsAny(symbol, chars) {
		return "(" + symbol + ")"
	}
	return symbol
}
