// Package format renders amounts, quantities and unit catalogs for people.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sambeau/caliper/pkg/caliper/quantity"
)

// Formatter formats amounts using the number conventions of a locale.
type Formatter struct {
	tag       language.Tag
	precision int
	printer   *message.Printer
}

// NewFormatter returns a formatter for tag that shows at most precision
// fraction digits. A negative precision shows as many digits as a float64
// carries faithfully.
func NewFormatter(tag language.Tag, precision int) *Formatter {
	return &Formatter{
		tag:       tag,
		precision: precision,
		printer:   message.NewPrinter(tag),
	}
}

// ParseLocale parses a BCP 47 tag such as "en-US" or "de".
func ParseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.English, nil
	}
	return language.Parse(s)
}

// Tag returns the formatter's locale.
func (f *Formatter) Tag() language.Tag { return f.tag }

// Amount formats d with grouping and the locale's decimal separator.
func (f *Formatter) Amount(d decimal.Decimal) string {
	precision := f.precision
	if precision < 0 {
		precision = fractionDigits(d)
	}
	rounded := d.RoundBank(int32(precision))
	return f.printer.Sprintf("%v", number.Decimal(rounded.InexactFloat64(),
		number.MaxFractionDigits(precision)))
}

// floatDigits is how many significant digits survive the trip through
// float64 that x/text formatting requires.
const floatDigits = 15

// fractionDigits returns how many fraction digits of d can be shown
// without exposing float64 representation error.
func fractionDigits(d decimal.Decimal) int {
	whole := d.Abs().Truncate(0)
	n := 0
	if !whole.IsZero() {
		n = len(whole.String())
	}
	if n >= floatDigits {
		return 0
	}
	return floatDigits - n
}

// Quantity formats q as "<amount> <symbol>".
func (f *Formatter) Quantity(q quantity.Quantity) string {
	if q.Unit() == nil {
		return f.Amount(q.Amount())
	}
	return f.Amount(q.Amount()) + " " + q.Unit().Symbol()
}
