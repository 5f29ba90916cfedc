package thomson

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// FitModel selects one of the rational templates used to fit reduced
// cross sections.
type FitModel int

const (
	// ModelOne is a(y+b) / (pi y (y+d)), see FitModelOne.
	ModelOne FitModel = iota + 1
	// ModelTwo is a(y+b) / (pi (y+e) (y+d)), see FitModelTwo.
	ModelTwo
)

// ErrUnknownModel is returned for a FitModel outside ModelOne and ModelTwo.
var ErrUnknownModel = errors.New("unknown fit model")

// ParseFitModel accepts "one"/"two" (or "1"/"2").
func ParseFitModel(s string) (FitModel, error) {
	switch s {
	case "one", "1":
		return ModelOne, nil
	case "two", "2":
		return ModelTwo, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// NumParams is the number of free coefficients of the template.
func (m FitModel) NumParams() int {
	switch m {
	case ModelOne:
		return 3
	case ModelTwo:
		return 4
	}
	return 0
}

func (m FitModel) String() string {
	switch m {
	case ModelOne:
		return "one"
	case ModelTwo:
		return "two"
	}
	return fmt.Sprintf("FitModel(%d)", int(m))
}

// Eval evaluates the template over x with the coefficients in p
// (a, b, d for ModelOne; a, b, d, e for ModelTwo).
func (m FitModel) Eval(x, p []float64) []float64 {
	switch m {
	case ModelOne:
		return FitModelOne(x, p[0], p[1], p[2])
	case ModelTwo:
		return FitModelTwo(x, p[0], p[1], p[2], p[3])
	}
	return nil
}

// FitResult is the outcome of a least-squares fit.
type FitResult struct {
	Model  FitModel
	Params []float64
	// SSR is the sum of squared residuals at Params.
	SSR float64
}

// Fit finds the coefficients of model that minimise the squared residuals
// against (x, y). A nil initial guess starts every coefficient at 1.
func Fit(model FitModel, x, y, initial []float64) (FitResult, error) {
	n := model.NumParams()
	if n == 0 {
		return FitResult{}, fmt.Errorf("%w: %d", ErrUnknownModel, int(model))
	}
	if len(x) == 0 {
		return FitResult{}, errors.New("fit: no data points")
	}
	if len(x) != len(y) {
		return FitResult{}, fmt.Errorf("fit: x has %d points, y has %d", len(x), len(y))
	}
	if initial == nil {
		initial = make([]float64, n)
		for i := range initial {
			initial[i] = 1
		}
	}
	if len(initial) != n {
		return FitResult{}, fmt.Errorf("fit: model %s takes %d parameters, got %d", model, n, len(initial))
	}

	residual := make([]float64, len(y))
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			floats.SubTo(residual, model.Eval(x, p), y)
			ssr := floats.Dot(residual, residual)
			if math.IsNaN(ssr) {
				return math.Inf(1)
			}
			return ssr
		},
	}
	res, err := optimize.Minimize(problem, initial, nil, &optimize.NelderMead{})
	if err != nil {
		return FitResult{}, fmt.Errorf("fit model %s: %w", model, err)
	}
	return FitResult{Model: model, Params: res.X, SSR: res.F}, nil
}
