package unit

import (
	"github.com/shopspring/decimal"

	"github.com/sambeau/caliper/pkg/caliper/numeric"
)

// Conversion is the affine relation y = Factor*x + Offset taking an amount
// x in the owning unit to an amount y in the Abscissa unit.
type Conversion struct {
	Factor   decimal.Decimal
	Offset   decimal.Decimal
	Abscissa *Unit
}

// identity returns the conversion of a unit to itself.
func identity(u *Unit) Conversion {
	return Conversion{Factor: numeric.One, Offset: numeric.Zero, Abscissa: u}
}

// Apply converts x into the abscissa unit.
func (c Conversion) Apply(x decimal.Decimal) decimal.Decimal {
	return numeric.Add(numeric.Mul(c.Factor, x), c.Offset)
}

// HasOffset reports whether the conversion has a non-zero offset.
func (c Conversion) HasOffset() bool {
	return !c.Offset.IsZero()
}

// IsIdentityOf reports whether c maps u onto itself unchanged.
func (c Conversion) IsIdentityOf(u *Unit) bool {
	return c.Abscissa == u && c.Factor.Equal(numeric.One) && c.Offset.IsZero()
}
