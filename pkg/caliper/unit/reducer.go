package unit

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
)

// MaxDepth bounds both the reducer's recursion and the number of hops
// taken when walking a conversion chain.
const MaxDepth = 10

// Term is one fundamental unit raised to a non-zero integer exponent.
type Term struct {
	Unit     *Unit
	Exponent int
}

// Reduction is a unit expanded into an aggregate scaling factor and its
// fundamental terms.
type Reduction struct {
	Scale decimal.Decimal
	Terms map[*Unit]int
}

// Reduce expands u into its fundamental scalar units and aggregate scale.
// The unity unit is elided from the terms.
func Reduce(u *Unit) (Reduction, error) {
	if u == nil {
		return Reduction{}, cerrors.New("DEF-0009", nil)
	}
	r := &reducer{
		root:  u,
		scale: numeric.One,
		terms: make(map[*Unit]int),
	}
	if err := r.visit(u, false, 0); err != nil {
		return Reduction{}, err
	}
	return Reduction{Scale: r.scale, Terms: r.terms}, nil
}

type reducer struct {
	root  *Unit
	scale decimal.Decimal
	terms map[*Unit]int
}

func (r *reducer) visit(u *Unit, invert bool, depth int) error {
	if depth > MaxDepth {
		r.terms = make(map[*Unit]int)
		return cerrors.New("LIMIT-0001", map[string]any{
			"Symbol": r.root.symbol,
			"Limit":  MaxDepth,
		})
	}

	conv := u.Conversion()
	if err := r.applyScale(conv.Factor, invert); err != nil {
		return err
	}
	if conv.Abscissa != u {
		return r.visit(conv.Abscissa, invert, depth+1)
	}

	switch s := u.shape.(type) {
	case Scalar:
		r.addTerm(u, invert)
	case Product:
		if err := r.visit(s.Multiplier, invert, depth+1); err != nil {
			return err
		}
		return r.visit(s.Multiplicand, invert, depth+1)
	case Quotient:
		if err := r.visit(s.Dividend, invert, depth+1); err != nil {
			return err
		}
		return r.visit(s.Divisor, !invert, depth+1)
	case Power:
		n := s.Exponent
		inv := invert
		if n < 0 {
			n = -n
			inv = !inv
		}
		for i := 0; i < n; i++ {
			if err := r.visit(s.Base, inv, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *reducer) applyScale(factor decimal.Decimal, invert bool) error {
	if !invert {
		r.scale = numeric.Mul(r.scale, factor)
		return nil
	}
	q, err := numeric.Quo(r.scale, factor)
	if err != nil {
		return cerrors.New("ARITH-0001", map[string]any{"Operation": "reduce " + r.root.symbol}).WithCause(err)
	}
	r.scale = q
	return nil
}

func (r *reducer) addTerm(u *Unit, invert bool) {
	if u.typ == TypeUnity {
		return
	}
	delta := 1
	if invert {
		delta = -1
	}
	if n := r.terms[u] + delta; n != 0 {
		r.terms[u] = n
	} else {
		delete(r.terms, u)
	}
}

// SortedTerms returns the terms ordered by unit symbol.
func (red Reduction) SortedTerms() []Term {
	out := make([]Term, 0, len(red.Terms))
	for u, exp := range red.Terms {
		out = append(out, Term{Unit: u, Exponent: exp})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Unit.symbol < out[j].Unit.symbol
	})
	return out
}

// BaseSymbol renders the terms canonically: numerator and denominator
// sorted by symbol, joined with a middle dot and separated by a slash.
// A denominator with more than one term is parenthesized; an empty
// numerator renders as "1".
func (red Reduction) BaseSymbol() string {
	var num, den []string
	for _, t := range red.SortedTerms() {
		if t.Exponent > 0 {
			num = append(num, termString(t.Unit.symbol, t.Exponent))
		} else {
			den = append(den, termString(t.Unit.symbol, -t.Exponent))
		}
	}

	var sb strings.Builder
	if len(num) == 0 {
		sb.WriteString("1")
	} else {
		sb.WriteString(strings.Join(num, "·"))
	}
	switch len(den) {
	case 0:
	case 1:
		sb.WriteString("/")
		sb.WriteString(den[0])
	default:
		sb.WriteString("/(")
		sb.WriteString(strings.Join(den, "·"))
		sb.WriteString(")")
	}
	return sb.String()
}

func termString(symbol string, exp int) string {
	switch exp {
	case 1:
		return symbol
	case 2:
		return symbol + "²"
	case 3:
		return symbol + "³"
	default:
		return symbol + "^" + strconv.Itoa(exp)
	}
}

// merge combines two term maps, adding b's exponents (or subtracting them
// when negate is set) and dropping terms that cancel.
func merge(a, b map[*Unit]int, negate bool) map[*Unit]int {
	out := make(map[*Unit]int, len(a)+len(b))
	for u, n := range a {
		out[u] = n
	}
	for u, n := range b {
		if negate {
			n = -n
		}
		if sum := out[u] + n; sum != 0 {
			out[u] = sum
		} else {
			delete(out, u)
		}
	}
	return out
}
