package quantity

import (
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sambeau/caliper/pkg/caliper/catalog"
	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
	"github.com/sambeau/caliper/pkg/caliper/unit"
)

var tolerance = decimal.New(1, -12)

func newRegistry(t *testing.T) *unit.Registry {
	t.Helper()
	reg := unit.NewRegistry()
	if err := catalog.Load(reg); err != nil {
		t.Fatal(err)
	}
	return reg
}

func q(t *testing.T, reg *unit.Registry, amount, symbol string) Quantity {
	t.Helper()
	qty, err := NewFromString(reg, amount, symbol)
	if err != nil {
		t.Fatalf("NewFromString(%s, %s): %v", amount, symbol, err)
	}
	return qty
}

func assertAmount(t *testing.T, got Quantity, want string) {
	t.Helper()
	if !numeric.ApproxEqual(got.Amount(), numeric.MustParse(want), tolerance) {
		t.Errorf("amount = %s, want %s", got.Amount(), want)
	}
}

func TestConvert(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		name     string
		amount   string
		from, to string
		expected string
	}{
		{"fahrenheit to celsius", "212", "°F", "°C", "100"},
		{"celsius to fahrenheit", "0", "°C", "°F", "32"},
		{"freezing in kelvin", "32", "°F", "K", "273.15"},
		{"absolute zero", "-273.15", "°C", "°R", "0"},
		{"bridge", "10", "ft", "m", "3.048"},
		{"bridge reverse", "3.048", "m", "ft", "10"},
		{"speed", "36", "km/h", "m/s", "10"},
		{"gallons", "2", "gal", "L", "7.570823568"},
		{"force", "1", "lbf", "N", "4.4482216152605"},
		{"pressure", "101325", "Pa", "N/m²", "101325"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.to == "N/m²" {
				n, _ := reg.Get("N")
				m2, _ := reg.Get("m²")
				if _, err := n.Divide(m2); err != nil {
					t.Fatal(err)
				}
			}
			got, err := q(t, reg, tt.amount, tt.from).Convert(mustGet(t, reg, tt.to))
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			assertAmount(t, got, tt.expected)
			if got.Unit().Symbol() != tt.to {
				t.Errorf("unit = %s, want %s", got.Unit(), tt.to)
			}
		})
	}
}

func mustGet(t *testing.T, reg *unit.Registry, symbol string) *unit.Unit {
	t.Helper()
	u, err := reg.Lookup(symbol)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestConvert_Identity(t *testing.T) {
	reg := newRegistry(t)
	for _, u := range reg.Units() {
		qty, err := New(numeric.MustParse("12.5"), u)
		if err != nil {
			t.Fatal(err)
		}
		got, err := qty.Convert(u)
		if err != nil {
			t.Fatalf("%s: %v", u, err)
		}
		if got != qty {
			t.Errorf("%s: Convert to own unit changed the quantity: %s", u, got)
		}
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	reg := newRegistry(t)

	pairs := [][2]string{
		{"°F", "°C"}, {"°C", "K"}, {"mi", "km"}, {"gal", "m³"}, {"lbm", "g"},
		{"W", "J/s"}, {"ft²", "m²"}, {"fl_oz", "mm³"}, {"Hz", "1/min"},
	}
	mustGet(t, reg, "J").Divide(mustGet(t, reg, "s"))
	mustGet(t, reg, "1").Divide(mustGet(t, reg, "min"))
	mm3, err := reg.CreatePower(unit.TypeVolume, "cubic millimetre", "mm³", "", mustGet(t, reg, "mm"), 3)
	if err != nil || mm3 == nil {
		t.Fatal(err)
	}

	for _, p := range pairs {
		for _, amount := range []string{"0", "1", "-40", "98.6", "123456.789"} {
			start := q(t, reg, amount, p[0])
			there, err := start.Convert(mustGet(t, reg, p[1]))
			if err != nil {
				t.Fatalf("%s -> %s: %v", p[0], p[1], err)
			}
			back, err := there.Convert(start.Unit())
			if err != nil {
				t.Fatalf("%s -> %s: %v", p[1], p[0], err)
			}
			if !numeric.ApproxEqual(back.Amount(), start.Amount(), decimal.New(1, -10)) {
				t.Errorf("%s %s -> %s -> %s", amount, p[0], there, back)
			}
		}
	}
}

func TestConvert_DimensionMismatch(t *testing.T) {
	reg := newRegistry(t)

	_, err := q(t, reg, "1", "m").Convert(mustGet(t, reg, "kg"))
	if !stderrors.Is(err, cerrors.ErrDimensionMismatch) {
		t.Errorf("error = %v, want a dimension mismatch", err)
	}
	_, err = q(t, reg, "1", "m").Convert(nil)
	if !stderrors.Is(err, cerrors.ErrInvalidDefinition) {
		t.Errorf("error = %v, want an invalid definition", err)
	}
}

func TestAddSubtract(t *testing.T) {
	reg := newRegistry(t)

	sum, err := q(t, reg, "1", "m").Add(q(t, reg, "10", "cm"))
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, sum, "1.1")
	if sum.Unit().Symbol() != "m" {
		t.Errorf("sum unit = %s, want m", sum.Unit())
	}

	diff, err := q(t, reg, "1", "ft").Subtract(q(t, reg, "6", "in"))
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, diff, "0.5")

	_, err = q(t, reg, "1", "m").Add(q(t, reg, "1", "s"))
	if !stderrors.Is(err, cerrors.ErrDimensionMismatch) {
		t.Errorf("error = %v, want a dimension mismatch", err)
	}
}

func TestMultiplyDivide(t *testing.T) {
	reg := newRegistry(t)

	area, err := q(t, reg, "3", "m").Multiply(q(t, reg, "4", "m"))
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, area, "12")
	if base, _ := area.Unit().BaseSymbol(); base != "m²" {
		t.Errorf("area base symbol = %q", base)
	}

	speed, err := q(t, reg, "100", "km").Divide(q(t, reg, "2", "h"))
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, speed, "50")
	ms, err := speed.Convert(mustGet(t, reg, "m/s"))
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, ms, "13.88888888888889")

	_, err = q(t, reg, "1", "m").Divide(q(t, reg, "0", "s"))
	if !stderrors.Is(err, cerrors.ErrArithmetic) {
		t.Errorf("error = %v, want an arithmetic error", err)
	}
	_, err = q(t, reg, "20", "°C").Multiply(q(t, reg, "2", "m"))
	if !stderrors.Is(err, cerrors.ErrUnsupportedOffset) {
		t.Errorf("error = %v, want an unsupported offset", err)
	}
}

func TestInvert(t *testing.T) {
	reg := newRegistry(t)

	period, err := q(t, reg, "4", "Hz").Invert()
	if err != nil {
		t.Fatal(err)
	}
	assertAmount(t, period, "0.25")
	if base, _ := period.Unit().BaseSymbol(); base != "s" {
		t.Errorf("inverted unit base symbol = %q, want s", base)
	}

	_, err = q(t, reg, "0", "s").Invert()
	if !stderrors.Is(err, cerrors.ErrArithmetic) {
		t.Errorf("error = %v, want an arithmetic error", err)
	}
}

func TestCompare(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		a, b     [2]string
		expected int
	}{
		{[2]string{"1", "km"}, [2]string{"1", "mi"}, -1},
		{[2]string{"100", "°C"}, [2]string{"212", "°F"}, 0},
		{[2]string{"1", "lbm"}, [2]string{"1", "kg"}, -1},
		{[2]string{"3", "ft"}, [2]string{"1", "yd"}, 0},
		{[2]string{"1", "m"}, [2]string{"3", "ft"}, 1},
	}
	for _, tt := range tests {
		got, err := q(t, reg, tt.a[0], tt.a[1]).Compare(q(t, reg, tt.b[0], tt.b[1]))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.expected {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestNewFromString_Errors(t *testing.T) {
	reg := newRegistry(t)

	_, err := NewFromString(reg, "ten", "m")
	if !stderrors.Is(err, cerrors.ErrArithmetic) {
		t.Errorf("error = %v, want an arithmetic error", err)
	}
	_, err = NewFromString(reg, "10", "mtr")
	if !stderrors.Is(err, &cerrors.CaliperError{Code: "DEF-0005"}) {
		t.Errorf("error = %v, want an unknown unit", err)
	}
	if _, err := New(numeric.One, nil); err == nil {
		t.Error("New with a nil unit should fail")
	}
}

func TestString(t *testing.T) {
	reg := newRegistry(t)
	if got := q(t, reg, "1.50", "kg").String(); got != "1.5 kg" {
		t.Errorf("String() = %q", got)
	}
}
