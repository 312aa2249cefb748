package unit

import "sort"

// Type classifies a unit by the physical quantity it measures.
type Type string

// Unit types. Fundamental terms are matched on these tags when computing
// conversion factors between derived units.
const (
	TypeUnity             Type = "UNITY"
	TypeLength            Type = "LENGTH"
	TypeMass              Type = "MASS"
	TypeTime              Type = "TIME"
	TypeTemperature       Type = "TEMPERATURE"
	TypeElectricCurrent   Type = "ELECTRIC_CURRENT"
	TypeSubstanceAmount   Type = "SUBSTANCE_AMOUNT"
	TypeLuminousIntensity Type = "LUMINOUS_INTENSITY"
	TypeArea              Type = "AREA"
	TypeVolume            Type = "VOLUME"
	TypeVelocity          Type = "VELOCITY"
	TypeAcceleration      Type = "ACCELERATION"
	TypeForce             Type = "FORCE"
	TypeEnergy            Type = "ENERGY"
	TypePower             Type = "POWER"
	TypePressure          Type = "PRESSURE"
	TypeFrequency         Type = "FREQUENCY"
	TypeDimensionless     Type = "DIMENSIONLESS"
	TypeCurrency          Type = "CURRENCY"
	TypeUnclassified      Type = "UNCLASSIFIED"
)

var knownTypes = map[Type]bool{
	TypeUnity: true, TypeLength: true, TypeMass: true, TypeTime: true,
	TypeTemperature: true, TypeElectricCurrent: true, TypeSubstanceAmount: true,
	TypeLuminousIntensity: true, TypeArea: true, TypeVolume: true,
	TypeVelocity: true, TypeAcceleration: true, TypeForce: true,
	TypeEnergy: true, TypePower: true, TypePressure: true,
	TypeFrequency: true, TypeDimensionless: true, TypeCurrency: true,
	TypeUnclassified: true,
}

// Known reports whether t is one of the predefined unit types.
func (t Type) Known() bool {
	return knownTypes[t]
}

// Types returns every predefined unit type, sorted.
func Types() []Type {
	out := make([]Type, 0, len(knownTypes))
	for t := range knownTypes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Enum identifies a unit from a predefined catalog.
type Enum string

// EnumOne tags the unity unit, the multiplicative identity.
const EnumOne Enum = "ONE"
