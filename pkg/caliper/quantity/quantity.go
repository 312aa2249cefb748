// Package quantity pairs decimal amounts with units and implements the
// arithmetic between them.
package quantity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
	"github.com/sambeau/caliper/pkg/caliper/unit"
)

// Quantity is an amount expressed in a unit. Quantities are values; every
// operation returns a new Quantity.
type Quantity struct {
	amount decimal.Decimal
	unit   *unit.Unit
}

// New creates a quantity. The amount is rounded to the decimal context.
func New(amount decimal.Decimal, u *unit.Unit) (Quantity, error) {
	if u == nil {
		return Quantity{}, cerrors.New("DEF-0009", nil)
	}
	return Quantity{amount: numeric.Round(amount), unit: u}, nil
}

// NewFromString parses amount and looks up symbol in reg.
func NewFromString(reg *unit.Registry, amount, symbol string) (Quantity, error) {
	d, err := numeric.Parse(strings.TrimSpace(amount))
	if err != nil {
		return Quantity{}, cerrors.New("ARITH-0002", map[string]any{"Value": amount}).WithCause(err)
	}
	u, err := reg.Lookup(strings.TrimSpace(symbol))
	if err != nil {
		return Quantity{}, err
	}
	return New(d, u)
}

func (q Quantity) Amount() decimal.Decimal { return q.amount }
func (q Quantity) Unit() *unit.Unit        { return q.unit }

// Convert expresses q in target. Offsets of both units are honored:
// the result is (amount + offset) * factor - target offset.
func (q Quantity) Convert(target *unit.Unit) (Quantity, error) {
	if target == nil {
		return Quantity{}, cerrors.New("DEF-0009", nil)
	}
	if q.unit == target {
		return q, nil
	}
	factor, err := q.unit.ConversionFactor(target)
	if err != nil {
		return Quantity{}, err
	}
	shifted := numeric.Add(q.amount, q.unit.Offset())
	amount := numeric.Sub(numeric.Mul(shifted, factor), target.Offset())
	return Quantity{amount: amount, unit: target}, nil
}

// Add returns q + other in q's unit.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	o, err := other.Convert(q.unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{amount: numeric.Add(q.amount, o.amount), unit: q.unit}, nil
}

// Subtract returns q - other in q's unit.
func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	o, err := other.Convert(q.unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{amount: numeric.Sub(q.amount, o.amount), unit: q.unit}, nil
}

// Multiply returns q × other in the product unit. Neither unit may carry
// an offset.
func (q Quantity) Multiply(other Quantity) (Quantity, error) {
	u, err := q.unit.Multiply(other.unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{amount: numeric.Mul(q.amount, other.amount), unit: u}, nil
}

// Divide returns q ÷ other in the quotient unit. Neither unit may carry
// an offset.
func (q Quantity) Divide(other Quantity) (Quantity, error) {
	u, err := q.unit.Divide(other.unit)
	if err != nil {
		return Quantity{}, err
	}
	amount, err := numeric.Quo(q.amount, other.amount)
	if err != nil {
		return Quantity{}, cerrors.New("ARITH-0001", map[string]any{"Operation": "divide"}).WithCause(err)
	}
	return Quantity{amount: amount, unit: u}, nil
}

// Invert returns 1/q in the reciprocal unit.
func (q Quantity) Invert() (Quantity, error) {
	amount, err := numeric.Inv(q.amount)
	if err != nil {
		return Quantity{}, cerrors.New("ARITH-0001", map[string]any{"Operation": "invert"}).WithCause(err)
	}
	u, err := q.unit.Invert()
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{amount: amount, unit: u}, nil
}

// Compare converts other into q's unit and compares the amounts. It returns
// -1, 0 or +1.
func (q Quantity) Compare(other Quantity) (int, error) {
	o, err := other.Convert(q.unit)
	if err != nil {
		return 0, err
	}
	return q.amount.Cmp(o.amount), nil
}

// String formats the quantity as "<amount> <symbol>".
func (q Quantity) String() string {
	if q.unit == nil {
		return q.amount.String()
	}
	return fmt.Sprintf("%s %s", q.amount.String(), q.unit.Symbol())
}
