// Package numeric provides the decimal arithmetic context shared by every
// conversion factor, offset and quantity amount.
//
// Results are rounded to Precision significant digits using half-to-even
// rounding, which approximates the IEEE 754 decimal64 context. Division is
// carried out with extra working digits before the final rounding.
package numeric

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Precision is the number of significant digits kept after each operation.
const Precision = 16

// guardDigits are carried by division before rounding to Precision.
const guardDigits = 4

var (
	// Zero is the additive identity.
	Zero = decimal.Zero
	// One is the multiplicative identity.
	One = decimal.NewFromInt(1)
)

// ErrDivisionByZero is returned by Quo and Inv when the divisor is zero.
var ErrDivisionByZero = fmt.Errorf("division by zero")

// Round rounds d to Precision significant digits, half to even.
func Round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	digits := d.NumDigits()
	if digits <= Precision {
		return d
	}
	places := Precision - int(d.Exponent()) - digits
	return d.RoundBank(int32(places))
}

// magnitude returns the power of ten of the most significant digit of d.
func magnitude(d decimal.Decimal) int {
	return int(d.Exponent()) + d.NumDigits() - 1
}

// Add returns a + b.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Add(b))
}

// Sub returns a - b.
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Sub(b))
}

// Mul returns a * b.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// Quo returns a / b.
func Quo(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	if a.IsZero() {
		return decimal.Zero, nil
	}
	// Enough fractional places to hold Precision+guardDigits significant digits.
	places := Precision + guardDigits - (magnitude(a) - magnitude(b))
	if places < 0 {
		places = 0
	}
	return Round(a.DivRound(b, int32(places))), nil
}

// Inv returns 1 / d.
func Inv(d decimal.Decimal) (decimal.Decimal, error) {
	return Quo(One, d)
}

// PowInt raises d to an integer power. Negative powers invert the result.
func PowInt(d decimal.Decimal, n int) (decimal.Decimal, error) {
	if n == 0 {
		return One, nil
	}
	abs := n
	if abs < 0 {
		abs = -abs
	}
	result := One
	for i := 0; i < abs; i++ {
		result = Mul(result, d)
	}
	if n < 0 {
		return Inv(result)
	}
	return result, nil
}

// Parse reads a decimal string such as "0.3048" or "1e-3" and rounds it.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return Round(d), nil
}

// MustParse is like Parse but panics on malformed input.
// It simplifies safe initialization of catalog constants.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Ratio returns num / den, panicking on a zero denominator.
// Intended for constant definitions such as 5/9.
func Ratio(num, den int64) decimal.Decimal {
	d, err := Quo(decimal.NewFromInt(num), decimal.NewFromInt(den))
	if err != nil {
		panic(err)
	}
	return d
}

// ApproxEqual reports whether a and b differ by no more than tolerance
// relative to the larger magnitude of the two.
func ApproxEqual(a, b, tolerance decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	if diff.IsZero() {
		return true
	}
	scale := a.Abs()
	if b.Abs().GreaterThan(scale) {
		scale = b.Abs()
	}
	if scale.LessThan(One) {
		scale = One
	}
	return diff.LessThanOrEqual(tolerance.Mul(scale))
}
