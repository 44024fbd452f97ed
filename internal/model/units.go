package model

import "github.com/shopspring/decimal"

// Density crosses the calculation boundary in kg/m³. The material catalog
// keeps g/cm³, so these two functions are the only place the factor lives.

// GPerCm3ToKgPerM3 converts a catalog density to the wire unit.
func GPerCm3ToKgPerM3(gPerCm3 float64) float64 {
	return gPerCm3 * 1000
}

// KgPerM3ToGPerCm3 converts a wire density to the unit the weight formulas use.
func KgPerM3ToGPerCm3(kgPerM3 float64) float64 {
	return kgPerM3 / 1000
}

// GramsToKg converts grams to kilograms.
func GramsToKg(g float64) float64 {
	return g / 1000
}

// KgToGrams converts kilograms to grams.
func KgToGrams(kg float64) float64 {
	return kg * 1000
}

// MassKg returns the mass in kg of volumeMm3 of material at densityKgPerM3.
func MassKg(volumeMm3, densityKgPerM3 float64) float64 {
	volumeCm3 := volumeMm3 / 1000
	return GramsToKg(volumeCm3 * KgPerM3ToGPerCm3(densityKgPerM3))
}

// CurrencyPlaces is the number of decimals kept when money is persisted.
const CurrencyPlaces = 2

// RoundCurrency rounds a money amount half away from zero.
func RoundCurrency(v float64) float64 {
	return RoundTo(v, CurrencyPlaces)
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
