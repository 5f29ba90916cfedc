package plotter

import (
	"fmt"

	"nepc/xsec"
)

const (
	// LXCat tables are in m^2; plots show units of 1e-20 m^2 = 1e-16 cm^2.
	lxcatUnits = 1e-20

	energyLabel      = "Electron Energy (eV)"
	lxcatSigmaLabel  = "Cross Section (10^-16 cm^2)"
	panelStyle       = "r-"
	maxPanels        = 6
	panelWidthInches = 5
	figHeightInches  = 10
	bandAlpha        = 0.4

	// DefaultMaxPlots caps PlotModel when ModelOptions.MaxPlots is unset.
	DefaultMaxPlots = 10
)

// Options are the styling choices common to every helper.
type Options struct {
	Line       LineParams
	XLim       Limits
	YLim       Limits
	XLog       bool
	YLog       bool
	ShowLegend bool
	// Filename, when set, is where the result is saved.
	Filename string
}

// DefaultOptions draws 1px lines with a legend and saves nothing.
func DefaultOptions() Options {
	return Options{Line: LineParams{Width: 1}, ShowLegend: true}
}

// ModelOptions extend Options for PlotModel.
type ModelOptions struct {
	Options
	// Process restricts the plot to curves of that process; empty keeps all.
	Process string
	// MaxPlots caps the number of curves; zero or less means DefaultMaxPlots.
	MaxPlots int
	// Figure size in inches.
	Width, Height float64
	// Formatter writes the reaction part of the legend labels.
	Formatter xsec.ReactionFormatter
}

// DefaultModelOptions returns the defaults for PlotModel.
func DefaultModelOptions() ModelOptions {
	return ModelOptions{
		Options:   DefaultOptions(),
		MaxPlots:  DefaultMaxPlots,
		Width:     10,
		Height:    10,
		Formatter: xsec.DefaultFormatter,
	}
}

func configure(ax *Axes, o Options, ylabel string) {
	ax.XLog, ax.YLog = o.XLog, o.YLog
	ax.XLabel, ax.YLabel = energyLabel, ylabel
	ax.XLim, ax.YLim = o.XLim, o.YLim
}

func finish(ax *Axes, o Options, legend LegendPlacement) (*Axes, error) {
	if o.ShowLegend {
		ax.Legend = legend
	}
	if o.Filename != "" {
		if err := ax.Save(o.Filename); err != nil {
			return ax, err
		}
	}
	return ax, nil
}

// PlotLXCat overlays LXCat processes on one Axes, one style per process,
// with cross sections shown in 1e-16 cm^2. A nil ax starts a new one.
func PlotLXCat(ax *Axes, processes []xsec.Process, styles []string, o Options) (*Axes, error) {
	if ax == nil {
		ax = NewAxes()
	}
	if len(styles) < len(processes) {
		return ax, fmt.Errorf("lxcat plot: %d processes but %d line styles", len(processes), len(styles))
	}
	configure(ax, o, lxcatSigmaLabel)
	for i, p := range processes {
		style, err := ParseLineStyle(styles[i])
		if err != nil {
			return ax, err
		}
		if _, err := ax.Plot(p.Energies(), scaleBy(p.CrossSections(), 1/lxcatUnits), style, o.Line, p.Process); err != nil {
			return ax, err
		}
	}
	return finish(ax, o, LegendInside)
}

// PlotLXCatPanels draws each process, at most six, in its own panel of a
// 5 x 10 inch figure, every panel with its own legend.
func PlotLXCatPanels(processes []xsec.Process, o Options) (*Figure, error) {
	if len(processes) > maxPanels {
		processes = processes[:maxPanels]
	}
	n := len(processes)
	fig := &Figure{}
	for i, p := range processes {
		ax := &Axes{
			Width:  panelWidthInches * DPI,
			Height: figHeightInches * DPI / n,
			XLog:   o.XLog,
			YLog:   o.YLog,
			XLim:   o.XLim,
			YLim:   o.YLim,
		}
		if 2*i == n {
			ax.YLabel = lxcatSigmaLabel
		}
		if i == n-1 {
			ax.XLabel = energyLabel
		}
		if _, err := ax.Plot(p.Energies(), scaleBy(p.CrossSections(), 1/lxcatUnits), MustLineStyle(panelStyle), o.Line, p.Process); err != nil {
			return fig, err
		}
		if o.ShowLegend {
			ax.Legend = LegendInside
		}
		fig.Panels = append(fig.Panels, ax)
	}
	if o.Filename != "" {
		if err := fig.Save(o.Filename); err != nil {
			return fig, err
		}
	}
	return fig, nil
}

// PlotRaw draws one energy / cross-section table as given, without unit
// conversion.
func PlotRaw(ax *Axes, data [][2]float64, process, style string, o Options) (*Axes, error) {
	if ax == nil {
		ax = NewAxes()
	}
	ls, err := ParseLineStyle(style)
	if err != nil {
		return ax, err
	}
	configure(ax, o, lxcatSigmaLabel)
	x := make([]float64, len(data))
	y := make([]float64, len(data))
	for i, row := range data {
		x[i], y[i] = row[0], row[1]
	}
	if _, err := ax.Plot(x, y, ls, o.Line, process); err != nil {
		return ax, err
	}
	return finish(ax, o, LegendInside)
}

// PlotModel overlays the curves of a NEPC model in units of unitsSigma m^2,
// each with its uncertainty band. Unknown bounds default to
// xsec.DefaultUncertainty and are shaded grey; measured ones use the
// curve's colour.
func PlotModel(ax *Axes, model []xsec.Curve, unitsSigma float64, o ModelOptions) (*Axes, error) {
	if ax == nil {
		ax = NewAxes()
	}
	if unitsSigma <= 0 {
		return ax, fmt.Errorf("model plot: units_sigma must be positive, got %g", unitsSigma)
	}
	limit := o.MaxPlots
	if limit <= 0 {
		limit = DefaultMaxPlots
	}
	if o.Width > 0 && o.Height > 0 {
		ax.Width, ax.Height = int(o.Width*DPI), int(o.Height*DPI)
	}
	configure(ax, o.Options, fmt.Sprintf("Cross Section (%.0e m^2)", unitsSigma))

	drawn := 0
	for _, c := range model {
		if drawn >= limit {
			break
		}
		if o.Process != "" && c.Process != o.Process {
			continue
		}
		if err := c.Validate(); err != nil {
			return ax, err
		}
		drawn++

		sigma := c.Scaled(unitsSigma)
		color, err := ax.Plot(c.E, sigma, LineStyle{}, o.Line, xsec.Label(c, o.Formatter))
		if err != nil {
			return ax, err
		}
		upper, lower, known := c.Uncertainty()
		fill := Grey
		if known {
			fill = color
		}
		if err := ax.FillBetween(c.E, scaleBy(sigma, 1-lower), scaleBy(sigma, 1+upper), fill, bandAlpha); err != nil {
			return ax, err
		}
	}
	return finish(ax, o.Options, LegendOutside)
}

func scaleBy(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * f
	}
	return out
}
