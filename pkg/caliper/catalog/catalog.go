// Package catalog defines the predefined units of the SI, International
// Customary and US measurement systems, and loads further unit definitions
// from YAML.
//
// Customary units are rooted at the foot, the pound mass and the degree
// Rankine, each bridged into SI by its exact legal definition:
// 1 ft = 0.3048 m, 1 lbm = 0.45359237 kg, 1 °R = 5/9 K.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/unit"
)

// Measurement systems
const (
	SystemSI        = "si"
	SystemCustomary = "customary"
	SystemUS        = "us"
)

// Enumeration tags of the predefined units.
const (
	Metre             unit.Enum = "METRE"
	Kilogram          unit.Enum = "KILOGRAM"
	Second            unit.Enum = "SECOND"
	Kelvin            unit.Enum = "KELVIN"
	Ampere            unit.Enum = "AMPERE"
	Mole              unit.Enum = "MOLE"
	Candela           unit.Enum = "CANDELA"
	Gram              unit.Enum = "GRAM"
	Kilometre         unit.Enum = "KILOMETRE"
	Centimetre        unit.Enum = "CENTIMETRE"
	Millimetre        unit.Enum = "MILLIMETRE"
	Minute            unit.Enum = "MINUTE"
	Hour              unit.Enum = "HOUR"
	Celsius           unit.Enum = "CELSIUS"
	SquareMetre       unit.Enum = "SQUARE_METRE"
	CubicMetre        unit.Enum = "CUBIC_METRE"
	Litre             unit.Enum = "LITRE"
	SecondSquared     unit.Enum = "SECOND_SQUARED"
	MetrePerSecond    unit.Enum = "METRE_PER_SECOND"
	MetrePerSecondSq  unit.Enum = "METRE_PER_SECOND_SQUARED"
	KilometrePerHour  unit.Enum = "KILOMETRE_PER_HOUR"
	Newton            unit.Enum = "NEWTON"
	Joule             unit.Enum = "JOULE"
	Watt              unit.Enum = "WATT"
	Pascal            unit.Enum = "PASCAL"
	Hertz             unit.Enum = "HERTZ"
	Percent           unit.Enum = "PERCENT"
	Foot              unit.Enum = "FOOT"
	Inch              unit.Enum = "INCH"
	Yard              unit.Enum = "YARD"
	Mile              unit.Enum = "MILE"
	PoundMass         unit.Enum = "POUND_MASS"
	Ounce             unit.Enum = "OUNCE"
	Rankine           unit.Enum = "RANKINE"
	Fahrenheit        unit.Enum = "FAHRENHEIT"
	SquareFoot        unit.Enum = "SQUARE_FOOT"
	CubicFoot         unit.Enum = "CUBIC_FOOT"
	CubicInch         unit.Enum = "CUBIC_INCH"
	FootPerSecondSq   unit.Enum = "FOOT_PER_SECOND_SQUARED"
	PoundMassFootPerS unit.Enum = "POUND_MASS_FOOT_PER_SECOND_SQUARED"
	PoundForce        unit.Enum = "POUND_FORCE"
	USGallon          unit.Enum = "US_GALLON"
	USQuart           unit.Enum = "US_QUART"
	USPint            unit.Enum = "US_PINT"
	USFluidOunce      unit.Enum = "US_FLUID_OUNCE"
)

func conv(factor, symbol string) *ConversionSpec {
	return &ConversionSpec{Factor: factor, Unit: symbol}
}

var siUnits = []Definition{
	// Base units
	{Symbol: "m", Name: "metre", Type: "LENGTH", Enum: string(Metre), Unified: "m"},
	{Symbol: "kg", Name: "kilogram", Type: "MASS", Enum: string(Kilogram), Unified: "kg"},
	{Symbol: "s", Name: "second", Type: "TIME", Enum: string(Second), Unified: "s"},
	{Symbol: "K", Name: "kelvin", Type: "TEMPERATURE", Enum: string(Kelvin), Unified: "K"},
	{Symbol: "A", Name: "ampere", Type: "ELECTRIC_CURRENT", Enum: string(Ampere), Unified: "A"},
	{Symbol: "mol", Name: "mole", Type: "SUBSTANCE_AMOUNT", Enum: string(Mole), Unified: "mol"},
	{Symbol: "cd", Name: "candela", Type: "LUMINOUS_INTENSITY", Enum: string(Candela), Unified: "cd"},
	// Scaled units
	{Symbol: "g", Name: "gram", Type: "MASS", Enum: string(Gram), Unified: "g", Conversion: conv("0.001", "kg")},
	{Symbol: "km", Name: "kilometre", Type: "LENGTH", Enum: string(Kilometre), Unified: "km", Conversion: conv("1000", "m")},
	{Symbol: "cm", Name: "centimetre", Type: "LENGTH", Enum: string(Centimetre), Unified: "cm", Conversion: conv("0.01", "m")},
	{Symbol: "mm", Name: "millimetre", Type: "LENGTH", Enum: string(Millimetre), Unified: "mm", Conversion: conv("0.001", "m")},
	{Symbol: "min", Name: "minute", Type: "TIME", Enum: string(Minute), Unified: "min", Conversion: conv("60", "s")},
	{Symbol: "h", Name: "hour", Type: "TIME", Enum: string(Hour), Unified: "h", Conversion: conv("60", "min")},
	{Symbol: "°C", Name: "degree Celsius", Type: "TEMPERATURE", Enum: string(Celsius), Unified: "Cel",
		Conversion: &ConversionSpec{Factor: "1", Offset: "273.15", Unit: "K"}},
	// Derived units
	{Symbol: "m²", Name: "square metre", Type: "AREA", Enum: string(SquareMetre), Unified: "m2", Shape: "power", Operands: []string{"m"}, Exponent: 2},
	{Symbol: "m³", Name: "cubic metre", Type: "VOLUME", Enum: string(CubicMetre), Unified: "m3", Shape: "power", Operands: []string{"m"}, Exponent: 3},
	{Symbol: "L", Name: "litre", Type: "VOLUME", Enum: string(Litre), Unified: "L", Conversion: conv("0.001", "m³")},
	{Symbol: "s²", Name: "second squared", Type: "UNCLASSIFIED", Enum: string(SecondSquared), Unified: "s2", Shape: "power", Operands: []string{"s"}, Exponent: 2},
	{Symbol: "m/s", Name: "metre per second", Type: "VELOCITY", Enum: string(MetrePerSecond), Unified: "m/s", Shape: "quotient", Operands: []string{"m", "s"}},
	{Symbol: "km/h", Name: "kilometre per hour", Type: "VELOCITY", Enum: string(KilometrePerHour), Unified: "km/h", Shape: "quotient", Operands: []string{"km", "h"}},
	{Symbol: "m/s²", Name: "metre per second squared", Type: "ACCELERATION", Enum: string(MetrePerSecondSq), Unified: "m/s2", Shape: "quotient", Operands: []string{"m", "s²"}},
	{Symbol: "N", Name: "newton", Type: "FORCE", Enum: string(Newton), Unified: "N", Shape: "product", Operands: []string{"kg", "m/s²"}},
	{Symbol: "J", Name: "joule", Type: "ENERGY", Enum: string(Joule), Unified: "J", Shape: "product", Operands: []string{"N", "m"}},
	{Symbol: "W", Name: "watt", Type: "POWER", Enum: string(Watt), Unified: "W", Shape: "quotient", Operands: []string{"J", "s"}},
	{Symbol: "Pa", Name: "pascal", Type: "PRESSURE", Enum: string(Pascal), Unified: "Pa", Shape: "quotient", Operands: []string{"N", "m²"}},
	{Symbol: "Hz", Name: "hertz", Type: "FREQUENCY", Enum: string(Hertz), Unified: "Hz", Shape: "quotient", Operands: []string{"1", "s"}},
	{Symbol: "%", Name: "percent", Type: "DIMENSIONLESS", Enum: string(Percent), Unified: "%", Conversion: conv("0.01", "1")},
}

var customaryUnits = []Definition{
	{Symbol: "ft", Name: "foot", Type: "LENGTH", Enum: string(Foot), Unified: "[ft_i]", Bridge: conv("0.3048", "m")},
	{Symbol: "in", Name: "inch", Type: "LENGTH", Enum: string(Inch), Unified: "[in_i]", Conversion: conv("1/12", "ft")},
	{Symbol: "yd", Name: "yard", Type: "LENGTH", Enum: string(Yard), Unified: "[yd_i]", Conversion: conv("3", "ft")},
	{Symbol: "mi", Name: "mile", Type: "LENGTH", Enum: string(Mile), Unified: "[mi_i]", Conversion: conv("5280", "ft")},
	{Symbol: "lbm", Name: "pound mass", Type: "MASS", Enum: string(PoundMass), Unified: "[lb_av]", Bridge: conv("0.45359237", "kg")},
	{Symbol: "oz", Name: "ounce", Type: "MASS", Enum: string(Ounce), Unified: "[oz_av]", Conversion: conv("1/16", "lbm")},
	{Symbol: "°R", Name: "degree Rankine", Type: "TEMPERATURE", Enum: string(Rankine), Unified: "[degR]", Bridge: conv("5/9", "K")},
	{Symbol: "°F", Name: "degree Fahrenheit", Type: "TEMPERATURE", Enum: string(Fahrenheit), Unified: "[degF]",
		Conversion: &ConversionSpec{Factor: "1", Offset: "459.67", Unit: "°R"}},
	{Symbol: "ft²", Name: "square foot", Type: "AREA", Enum: string(SquareFoot), Unified: "[sft_i]", Shape: "power", Operands: []string{"ft"}, Exponent: 2},
	{Symbol: "ft³", Name: "cubic foot", Type: "VOLUME", Enum: string(CubicFoot), Unified: "[cft_i]", Shape: "power", Operands: []string{"ft"}, Exponent: 3},
	{Symbol: "in³", Name: "cubic inch", Type: "VOLUME", Enum: string(CubicInch), Unified: "[cin_i]", Shape: "power", Operands: []string{"in"}, Exponent: 3},
	{Symbol: "ft/s²", Name: "foot per second squared", Type: "ACCELERATION", Enum: string(FootPerSecondSq), Shape: "quotient", Operands: []string{"ft", "s²"}},
	{Symbol: "lbm·ft/s²", Name: "pound mass foot per second squared", Type: "FORCE", Enum: string(PoundMassFootPerS), Shape: "product", Operands: []string{"lbm", "ft/s²"}},
	// Standard gravity 9.80665 m/s² expressed in ft/s².
	{Symbol: "lbf", Name: "pound force", Type: "FORCE", Enum: string(PoundForce), Unified: "[lbf_av]", Conversion: conv("9.80665/0.3048", "lbm·ft/s²")},
}

var usUnits = []Definition{
	{Symbol: "gal", Name: "US gallon", Type: "VOLUME", Enum: string(USGallon), Unified: "[gal_us]", Conversion: conv("231", "in³")},
	{Symbol: "qt", Name: "US quart", Type: "VOLUME", Enum: string(USQuart), Unified: "[qt_us]", Conversion: conv("1/4", "gal")},
	{Symbol: "pt", Name: "US pint", Type: "VOLUME", Enum: string(USPint), Unified: "[pt_us]", Conversion: conv("1/2", "qt")},
	{Symbol: "fl_oz", Name: "US fluid ounce", Type: "VOLUME", Enum: string(USFluidOunce), Unified: "[foz_us]", Conversion: conv("1/16", "pt")},
}

type system struct {
	units    []Definition
	requires []string
}

var systems = map[string]system{
	SystemSI:        {units: siUnits},
	SystemCustomary: {units: customaryUnits, requires: []string{SystemSI}},
	SystemUS:        {units: usUnits, requires: []string{SystemCustomary}},
}

// Systems returns the names of the predefined measurement systems.
func Systems() []string {
	out := make([]string, 0, len(systems))
	for name := range systems {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Definitions returns a copy of the unit definitions of a system.
func Definitions(name string) ([]Definition, error) {
	sys, ok := systems[strings.ToLower(name)]
	if !ok {
		return nil, cerrors.New("CONF-0003", map[string]any{"System": name})
	}
	return append([]Definition(nil), sys.units...), nil
}

// Load defines the units of the named systems in reg, together with the
// systems they are bridged to. With no names, every system is loaded.
func Load(reg *unit.Registry, names ...string) error {
	if len(names) == 0 {
		names = Systems()
	}
	order, err := resolveOrder(names)
	if err != nil {
		return err
	}
	for _, name := range order {
		if _, err := DefineAll(reg, systems[name].units); err != nil {
			return fmt.Errorf("loading %s units: %w", name, err)
		}
	}
	return nil
}

// resolveOrder expands names with their requirements, dependencies first.
func resolveOrder(names []string) ([]string, error) {
	var order []string
	seen := make(map[string]bool)
	var visit func(string) error
	visit = func(name string) error {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			return nil
		}
		sys, ok := systems[name]
		if !ok {
			return cerrors.New("CONF-0003", map[string]any{"System": name})
		}
		seen[name] = true
		for _, req := range sys.requires {
			if err := visit(req); err != nil {
				return err
			}
		}
		order = append(order, name)
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
