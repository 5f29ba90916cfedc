// Package thomson holds the closed-form relations used to put measured
// ionization cross sections on the reduced (Thomson-scaled) footing.
package thomson

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// ElementaryCharge in C.
	ElementaryCharge = 1.602176634e-19
	// CoulombConstant (ke) in N m^2 C^-2.
	CoulombConstant = 8.9875517923e9

	// Cross sections are stored in units of 1e-20 m^2.
	sigmaScale = 1e-20
)

// ReducedEnergy returns every electron energy divided by the ionization
// potential. Both are expected in the same units (eV).
func ReducedEnergy(energies []float64, ionizationPotential float64) []float64 {
	out := make([]float64, len(energies))
	for i, e := range energies {
		out[i] = e / ionizationPotential
	}
	return out
}

// ReducedCrossSection is f(E/J), the ionization cross section reduced by the
// classical Thomson factor pi q^4 ke^2 n / J^2. Cross sections are taken in
// 1e-20 m^2 and the ionization potential in eV.
func ReducedCrossSection(crossSections []float64, ionizationPotential float64, nValence int) []float64 {
	j := ionizationPotential * ElementaryCharge
	q2 := ElementaryCharge * ElementaryCharge
	factor := sigmaScale * j * j / (float64(nValence) * math.Pi * q2 * q2 * CoulombConstant * CoulombConstant)
	return floats.ScaleTo(make([]float64, len(crossSections)), factor, crossSections)
}

// FitModelOne evaluates a(y+b) / (pi y (y+d)) for every y in x.
func FitModelOne(x []float64, a, b, d float64) []float64 {
	out := make([]float64, len(x))
	for i, y := range x {
		out[i] = (a * (y + b)) / (math.Pi * y * (y + d))
	}
	return out
}

// FitModelTwo evaluates a(y+b) / (pi (y+e) (y+d)) for every y in x.
func FitModelTwo(x []float64, a, b, d, e float64) []float64 {
	out := make([]float64, len(x))
	for i, y := range x {
		out[i] = (a * (y + b)) / (math.Pi * (y + e) * (y + d))
	}
	return out
}
