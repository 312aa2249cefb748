package unit

import (
	"github.com/shopspring/decimal"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
)

// traverse walks u's conversion chain to its fundamental node, returning
// that node and the product of the scaling factors along the way.
func traverse(u *Unit) (*Unit, decimal.Decimal, error) {
	factor := numeric.One
	current := u
	for hops := 0; ; hops++ {
		conv := current.Conversion()
		if conv.Abscissa == current {
			return current, factor, nil
		}
		if hops >= MaxDepth {
			return nil, decimal.Zero, cerrors.New("LIMIT-0002", map[string]any{
				"Symbol": u.symbol,
				"Limit":  MaxDepth,
			})
		}
		factor = numeric.Mul(factor, conv.Factor)
		current = conv.Abscissa
	}
}

// bridgeFactor finds the factor taking an amount in from into to, where
// both are fundamental nodes of different measurement systems. The bridge
// on from is tried first, then the inverse of the bridge on to.
func bridgeFactor(from, to *Unit) (decimal.Decimal, error) {
	if b, ok := from.Bridge(); ok {
		base, pf, err := traverse(b.Abscissa)
		if err != nil {
			return decimal.Zero, err
		}
		if base == to {
			return numeric.Mul(b.Factor, pf), nil
		}
	}
	if b, ok := to.Bridge(); ok {
		base, pf, err := traverse(b.Abscissa)
		if err != nil {
			return decimal.Zero, err
		}
		if base == from {
			inv, err := numeric.Inv(numeric.Mul(b.Factor, pf))
			if err != nil {
				return decimal.Zero, cerrors.New("ARITH-0001", map[string]any{"Operation": "bridge " + to.symbol}).WithCause(err)
			}
			return inv, nil
		}
	}
	return decimal.Zero, cerrors.New("PATH-0001", map[string]any{
		"From": from.symbol,
		"To":   to.symbol,
	})
}

// scalarFactor is the factor between two units along their conversion
// chains, crossing a bridge when their fundamental nodes differ.
func scalarFactor(from, to *Unit) (decimal.Decimal, error) {
	if from == to {
		return numeric.One, nil
	}
	baseFrom, pathFrom, err := traverse(from)
	if err != nil {
		return decimal.Zero, err
	}
	baseTo, pathTo, err := traverse(to)
	if err != nil {
		return decimal.Zero, err
	}

	factor := pathFrom
	if baseFrom != baseTo {
		bridge, err := bridgeFactor(baseFrom, baseTo)
		if err != nil {
			return decimal.Zero, err
		}
		factor = numeric.Mul(factor, bridge)
	}
	q, err := numeric.Quo(factor, pathTo)
	if err != nil {
		return decimal.Zero, cerrors.New("ARITH-0001", map[string]any{"Operation": "convert " + from.symbol}).WithCause(err)
	}
	return q, nil
}

// ConversionFactor returns k such that an amount in u times k is the same
// amount in target, ignoring offsets.
//
// Both units are reduced to fundamental terms. Each term of u is paired with
// the first term of target, in symbol order, that has the same unit type.
// Paired terms must carry equal exponents.
func (u *Unit) ConversionFactor(target *Unit) (decimal.Decimal, error) {
	factor, err := conversionFactor(u, target)
	if u.registry != nil {
		u.registry.observer.ConversionResolved(u, target, err)
	}
	return factor, err
}

func conversionFactor(from, to *Unit) (decimal.Decimal, error) {
	if to == nil {
		return decimal.Zero, cerrors.New("DEF-0009", nil)
	}
	if from == to {
		return numeric.One, nil
	}

	redFrom, err := Reduce(from)
	if err != nil {
		return decimal.Zero, err
	}
	redTo, err := Reduce(to)
	if err != nil {
		return decimal.Zero, err
	}
	if len(redFrom.Terms) != len(redTo.Terms) {
		return decimal.Zero, cerrors.New("DIM-0001", map[string]any{
			"From":      from.symbol,
			"To":        to.symbol,
			"FromCount": len(redFrom.Terms),
			"ToCount":   len(redTo.Terms),
		})
	}

	factor := numeric.One
	candidates := redTo.SortedTerms()
	for _, tf := range redFrom.SortedTerms() {
		tt, ok := firstOfType(candidates, tf.Unit.typ)
		if !ok {
			return decimal.Zero, cerrors.New("DIM-0004", map[string]any{
				"From": from.symbol,
				"To":   to.symbol,
				"Type": tf.Unit.typ,
			})
		}
		if tf.Exponent != tt.Exponent {
			return decimal.Zero, cerrors.New("DIM-0002", map[string]any{
				"From":         from.symbol,
				"To":           to.symbol,
				"Type":         tf.Unit.typ,
				"FromExponent": tf.Exponent,
				"ToExponent":   tt.Exponent,
			})
		}
		for _, term := range []*Unit{tf.Unit, tt.Unit} {
			if term.Kind() != KindScalar {
				return decimal.Zero, cerrors.New("DIM-0003", map[string]any{
					"From": from.symbol,
					"To":   to.symbol,
					"Term": term.symbol,
				})
			}
		}

		f, err := scalarFactor(tf.Unit, tt.Unit)
		if err != nil {
			return decimal.Zero, err
		}
		f, err = numeric.PowInt(f, tf.Exponent)
		if err != nil {
			return decimal.Zero, cerrors.New("ARITH-0001", map[string]any{"Operation": "convert " + from.symbol}).WithCause(err)
		}
		factor = numeric.Mul(factor, f)
	}

	scale, err := numeric.Quo(redFrom.Scale, redTo.Scale)
	if err != nil {
		return decimal.Zero, cerrors.New("ARITH-0001", map[string]any{"Operation": "convert " + from.symbol}).WithCause(err)
	}
	return numeric.Mul(factor, scale), nil
}

// firstOfType returns the first term with unit type t. Terms sharing a type
// are not checked for a unique pairing.
func firstOfType(terms []Term, t Type) (Term, bool) {
	for _, term := range terms {
		if term.Unit.typ == t {
			return term, true
		}
	}
	return Term{}, false
}
