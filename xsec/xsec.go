// Package xsec defines the cross-section records passed to the plotting and
// sampling helpers, and the ways they are read from maps and files.
package xsec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLengthMismatch means E and Sigma differ in length.
	ErrLengthMismatch = errors.New("energy and cross-section lengths differ")
	// ErrUncertainty means lpu is outside [0, 1] or upu is negative.
	ErrUncertainty = errors.New("uncertainty fraction out of range")
)

// DefaultUncertainty is assumed for a bound that was never measured.
const DefaultUncertainty = 0.5

// Process is a tabulated cross section as found in LXCat files: rows of
// electron energy (eV) and cross section (m^2).
type Process struct {
	Process string       `mapstructure:"process"`
	Kind    string       `mapstructure:"kind"`
	Target  string       `mapstructure:"target"`
	Product string       `mapstructure:"product"`
	Comment string       `mapstructure:"comment"`
	Data    [][2]float64 `mapstructure:"data"`

	// Mass ratio for elastic/effective processes, threshold energy in eV
	// for the others.
	MassRatio float64 `mapstructure:"mass_ratio"`
	Threshold float64 `mapstructure:"threshold"`
}

// Energies returns the first column of Data.
func (p Process) Energies() []float64 {
	out := make([]float64, len(p.Data))
	for i, row := range p.Data {
		out[i] = row[0]
	}
	return out
}

// CrossSections returns the second column of Data.
func (p Process) CrossSections() []float64 {
	out := make([]float64, len(p.Data))
	for i, row := range p.Data {
		out[i] = row[1]
	}
	return out
}

// Curve is a cross section from a NEPC model. Sigma is expressed in units of
// UnitsSigma m^2. UPU and LPU are the upper and lower uncertainty
// fractions; nil means unknown.
type Curve struct {
	Process    string    `mapstructure:"process"`
	Reactants  []string  `mapstructure:"reactants"`
	Products   []string  `mapstructure:"products"`
	E          []float64 `mapstructure:"e"`
	Sigma      []float64 `mapstructure:"sigma"`
	UnitsSigma float64   `mapstructure:"units_sigma"`
	UPU        *float64  `mapstructure:"upu"`
	LPU        *float64  `mapstructure:"lpu"`
}

// Validate checks the invariants the plotting helpers rely on. The lower
// fraction must lie in [0, 1] so the band never crosses zero; the upper
// fraction only has to be non-negative.
func (c Curve) Validate() error {
	if len(c.E) != len(c.Sigma) {
		return fmt.Errorf("%s: %w (%d vs %d)", c.name(), ErrLengthMismatch, len(c.E), len(c.Sigma))
	}
	if c.UnitsSigma <= 0 {
		return fmt.Errorf("%s: units_sigma must be positive, got %g", c.name(), c.UnitsSigma)
	}
	if c.LPU != nil && (*c.LPU < 0 || *c.LPU > 1) {
		return fmt.Errorf("%s: %w: lpu=%g", c.name(), ErrUncertainty, *c.LPU)
	}
	if c.UPU != nil && *c.UPU < 0 {
		return fmt.Errorf("%s: %w: upu=%g", c.name(), ErrUncertainty, *c.UPU)
	}
	return nil
}

// Uncertainty returns the upper and lower fractions, substituting
// DefaultUncertainty for unknown ones. known reports whether both were set.
func (c Curve) Uncertainty() (upper, lower float64, known bool) {
	upper, lower = DefaultUncertainty, DefaultUncertainty
	if c.UPU != nil {
		upper = *c.UPU
	}
	if c.LPU != nil {
		lower = *c.LPU
	}
	return upper, lower, c.UPU != nil && c.LPU != nil
}

// Scaled returns Sigma converted to units of unitsSigma m^2.
func (c Curve) Scaled(unitsSigma float64) []float64 {
	out := make([]float64, len(c.Sigma))
	for i, s := range c.Sigma {
		out[i] = s * c.UnitsSigma / unitsSigma
	}
	return out
}

func (c Curve) name() string {
	if c.Process == "" {
		return "curve"
	}
	return c.Process
}

// ReactionFormatter turns a curve into a human readable reaction.
type ReactionFormatter interface {
	Reaction(c Curve) string
}

// ReactionFunc adapts a function to ReactionFormatter.
type ReactionFunc func(c Curve) string

func (f ReactionFunc) Reaction(c Curve) string { return f(c) }

// DefaultFormatter writes reactions as "e + N2 -> 2e + N2+".
var DefaultFormatter ReactionFormatter = ReactionFunc(formatReaction)

func formatReaction(c Curve) string {
	if len(c.Reactants) == 0 && len(c.Products) == 0 {
		return ""
	}
	return strings.Join(c.Reactants, " + ") + " -> " + strings.Join(c.Products, " + ")
}

// Label is the legend text for a curve: the process name and the reaction,
// empty parts left out.
func Label(c Curve, f ReactionFormatter) string {
	if f == nil {
		f = DefaultFormatter
	}
	var items []string
	for _, s := range []string{c.Process, ":", f.Reaction(c)} {
		if s != "" {
			items = append(items, s)
		}
	}
	return strings.Join(items, " ")
}
