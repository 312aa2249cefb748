package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	cerrors "github.com/sambeau/caliper/pkg/caliper/errors"
	"github.com/sambeau/caliper/pkg/caliper/numeric"
	"github.com/sambeau/caliper/pkg/caliper/unit"
)

// Definition describes one unit in terms of units already registered.
// Operands, conversion and bridge targets are referenced by symbol.
type Definition struct {
	Symbol      string          `yaml:"symbol"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Type        string          `yaml:"type"`
	Enum        string          `yaml:"enum,omitempty"`
	Unified     string          `yaml:"unified,omitempty"`
	Shape       string          `yaml:"shape,omitempty"`    // scalar (default), product, quotient, power
	Operands    []string        `yaml:"operands,omitempty"` // two for product and quotient, one for power
	Exponent    int             `yaml:"exponent,omitempty"`
	Conversion  *ConversionSpec `yaml:"conversion,omitempty"`
	Bridge      *ConversionSpec `yaml:"bridge,omitempty"`
}

// ConversionSpec is y = factor*x + offset into the unit named by Unit.
// Factor and offset accept decimals ("0.3048") or ratios ("5/9").
type ConversionSpec struct {
	Factor string `yaml:"factor"`
	Offset string `yaml:"offset,omitempty"`
	Unit   string `yaml:"unit"`
}

// File is the layout of a YAML unit definitions file.
type File struct {
	Units []Definition `yaml:"units"`
}

// Define creates the unit described by d in reg and applies its conversion
// and bridge. A unit registered by this call is unregistered again when its
// conversion or bridge cannot be applied.
func Define(reg *unit.Registry, d Definition) (*unit.Unit, error) {
	u, _, err := define(reg, d)
	return u, err
}

func define(reg *unit.Registry, d Definition) (u *unit.Unit, created bool, err error) {
	typ := unit.Type(strings.ToUpper(strings.TrimSpace(d.Type)))
	if !typ.Known() {
		return nil, false, cerrors.New("CONF-0001", map[string]any{"Type": d.Type})
	}

	// fresh is set only on a unit the registry builds for this call.
	var fresh *unit.Unit
	opts := []unit.DefineOption{func(u *unit.Unit) { fresh = u }}
	if d.Enum != "" {
		opts = append(opts, unit.WithEnum(unit.Enum(d.Enum)))
	}
	if d.Unified != "" {
		opts = append(opts, unit.WithUnifiedSymbol(d.Unified))
	}

	operands, err := lookupAll(reg, d.Operands)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", d.Symbol, err)
	}

	switch shape := strings.ToLower(strings.TrimSpace(d.Shape)); shape {
	case "", string(unit.KindScalar):
		u, err = reg.CreateScalar(typ, d.Name, d.Symbol, d.Description, opts...)
	case string(unit.KindProduct):
		if err := arity(d, operands, 2); err != nil {
			return nil, false, err
		}
		u, err = reg.CreateProduct(typ, d.Name, d.Symbol, d.Description, operands[0], operands[1], opts...)
	case string(unit.KindQuotient):
		if err := arity(d, operands, 2); err != nil {
			return nil, false, err
		}
		u, err = reg.CreateQuotient(typ, d.Name, d.Symbol, d.Description, operands[0], operands[1], opts...)
	case string(unit.KindPower):
		if err := arity(d, operands, 1); err != nil {
			return nil, false, err
		}
		u, err = reg.CreatePower(typ, d.Name, d.Symbol, d.Description, operands[0], d.Exponent, opts...)
	default:
		return nil, false, cerrors.New("CONF-0002", map[string]any{"Shape": d.Shape, "Symbol": d.Symbol})
	}
	if err != nil {
		return nil, false, err
	}
	created = u == fresh

	if err := convert(reg, d, u); err != nil {
		if created {
			reg.Unregister(u)
		}
		return nil, false, err
	}
	return u, created, nil
}

func convert(reg *unit.Registry, d Definition, u *unit.Unit) error {
	if c := d.Conversion; c != nil {
		factor, abscissa, offset, err := resolve(reg, c)
		if err != nil {
			return fmt.Errorf("%s: conversion: %w", d.Symbol, err)
		}
		if err := u.SetConversion(factor, abscissa, offset); err != nil {
			return err
		}
	}
	if b := d.Bridge; b != nil {
		factor, abscissa, offset, err := resolve(reg, b)
		if err != nil {
			return fmt.Errorf("%s: bridge: %w", d.Symbol, err)
		}
		if err := u.SetBridgeConversion(factor, abscissa, offset); err != nil {
			return err
		}
	}
	return nil
}

// DefineAll defines each unit in order, stopping at the first failure.
func DefineAll(reg *unit.Registry, defs []Definition) ([]*unit.Unit, error) {
	out := make([]*unit.Unit, 0, len(defs))
	for _, d := range defs {
		u, err := Define(reg, d)
		if err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, nil
}

// LoadDefinitions reads a YAML definitions file and defines its units.
func LoadDefinitions(reg *unit.Registry, r io.Reader) ([]*unit.Unit, error) {
	f, err := readFile(r)
	if err != nil {
		return nil, err
	}
	return DefineAll(reg, f.Units)
}

// LoadNewDefinitions reads a YAML definitions file, defines its units and
// returns only the units it registered. Units already registered under a
// symbol in the file are shared, not returned. On failure every unit the
// call registered is unregistered again.
func LoadNewDefinitions(reg *unit.Registry, r io.Reader) ([]*unit.Unit, error) {
	f, err := readFile(r)
	if err != nil {
		return nil, err
	}
	var created []*unit.Unit
	for _, d := range f.Units {
		u, isNew, err := define(reg, d)
		if err != nil {
			for i := len(created) - 1; i >= 0; i-- {
				reg.Unregister(created[i])
			}
			return nil, err
		}
		if isNew {
			created = append(created, u)
		}
	}
	return created, nil
}

func readFile(r io.Reader) (File, error) {
	var f File
	data, err := io.ReadAll(r)
	if err != nil {
		return f, fmt.Errorf("reading definitions: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing definitions: %w", err)
	}
	return f, nil
}

func arity(d Definition, operands []*unit.Unit, n int) error {
	if len(operands) != n {
		return cerrors.New("DEF-0003", map[string]any{
			"Operand": fmt.Sprintf("exactly %d operand(s)", n),
			"Symbol":  d.Symbol,
		})
	}
	return nil
}

func lookupAll(reg *unit.Registry, symbols []string) ([]*unit.Unit, error) {
	out := make([]*unit.Unit, 0, len(symbols))
	for _, s := range symbols {
		u, err := reg.Lookup(s)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func resolve(reg *unit.Registry, c *ConversionSpec) (decimal.Decimal, *unit.Unit, decimal.Decimal, error) {
	factor, err := ParseFactor(c.Factor)
	if err != nil {
		return decimal.Zero, nil, decimal.Zero, err
	}
	offset := numeric.Zero
	if c.Offset != "" {
		if offset, err = ParseFactor(c.Offset); err != nil {
			return decimal.Zero, nil, decimal.Zero, err
		}
	}
	abscissa, err := reg.Lookup(c.Unit)
	if err != nil {
		return decimal.Zero, nil, decimal.Zero, err
	}
	return factor, abscissa, offset, nil
}

// ParseFactor reads a decimal ("0.3048", "1e3") or a ratio of decimals
// ("5/9"). An empty string is 1.
func ParseFactor(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return numeric.One, nil
	}
	num, den, isRatio := strings.Cut(s, "/")
	n, err := numeric.Parse(strings.TrimSpace(num))
	if err != nil {
		return decimal.Zero, cerrors.New("ARITH-0002", map[string]any{"Value": s}).WithCause(err)
	}
	if !isRatio {
		return n, nil
	}
	d, err := numeric.Parse(strings.TrimSpace(den))
	if err != nil {
		return decimal.Zero, cerrors.New("ARITH-0002", map[string]any{"Value": s}).WithCause(err)
	}
	q, err := numeric.Quo(n, d)
	if err != nil {
		return decimal.Zero, cerrors.New("ARITH-0001", map[string]any{"Operation": "factor " + s}).WithCause(err)
	}
	return q, nil
}
