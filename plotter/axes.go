// Package plotter draws cross-section curves with consistent styling.
//
// An Axes collects lines and shaded bands the way a plotting surface does;
// nothing is rasterised until it is rendered or saved. Saving picks the
// output format from the file extension.
package plotter

import (
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"nepc/internal/logger"
)

// Size of a new Axes in pixels, and the pixel density used to convert
// figure sizes given in inches.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
	DPI           = 100
)

var ErrLengthMismatch = errors.New("x and y lengths differ")

// LegendPlacement selects where, if anywhere, the legend goes.
type LegendPlacement int

const (
	LegendNone LegendPlacement = iota
	// LegendInside boxes the legend in the top left of the plot area.
	LegendInside
	// LegendOutside puts it in a margin left of the plot area.
	LegendOutside
)

// Limits bounds one axis. A nil end is taken from the data.
type Limits struct {
	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`
}

// Range returns Limits with both ends fixed.
func Range(lo, hi float64) Limits {
	return Limits{Min: &lo, Max: &hi}
}

// Auto reports whether both ends follow the data.
func (l Limits) Auto() bool {
	return l.Min == nil && l.Max == nil
}

// Line is one drawn curve.
type Line struct {
	Label  string
	X, Y   []float64
	Color  drawing.Color
	Width  float64
	Dash   []float64
	Marker bool
	NoLine bool
}

// Band is a shaded region between two curves sharing X.
type Band struct {
	X            []float64
	Lower, Upper []float64
	Color        drawing.Color
}

// Axes is the drawing surface passed to and returned by the plotting
// helpers. It is not safe for concurrent use.
type Axes struct {
	Title  string
	XLabel string
	YLabel string
	XLog   bool
	YLog   bool
	XLim   Limits
	YLim   Limits
	Legend LegendPlacement
	Width  int
	Height int

	lines []Line
	bands []Band
	next  int // position in the colour cycle
}

// NewAxes returns an empty Axes of the default size.
func NewAxes() *Axes {
	return &Axes{Width: DefaultWidth, Height: DefaultHeight}
}

// Lines returns the curves drawn so far.
func (ax *Axes) Lines() []Line {
	return append([]Line(nil), ax.lines...)
}

// Bands returns the shaded regions drawn so far.
func (ax *Axes) Bands() []Band {
	return append([]Band(nil), ax.bands...)
}

// Plot adds a curve and returns the colour it was given: the style's own
// colour, or the next one in the cycle.
func (ax *Axes) Plot(x, y []float64, style LineStyle, params LineParams, label string) (drawing.Color, error) {
	if len(x) != len(y) {
		return drawing.Color{}, fmt.Errorf("plot %q: %w (%d vs %d)", label, ErrLengthMismatch, len(x), len(y))
	}
	color := style.Color
	if !style.HasColor {
		color = cycle[ax.next%len(cycle)]
		ax.next++
	}
	width := params.Width
	if width <= 0 {
		width = 1
	}
	ax.lines = append(ax.lines, Line{
		Label:  label,
		X:      x,
		Y:      y,
		Color:  withAlpha(color, params.Alpha),
		Width:  width,
		Dash:   style.Dash,
		Marker: style.Marker,
		NoLine: style.NoLine,
	})
	return color, nil
}

// FillBetween shades the region between lower and upper with the given
// colour at the given opacity.
func (ax *Axes) FillBetween(x, lower, upper []float64, color drawing.Color, alpha float64) error {
	if len(x) != len(lower) || len(x) != len(upper) {
		return fmt.Errorf("fill: %w (%d, %d, %d)", ErrLengthMismatch, len(x), len(lower), len(upper))
	}
	ax.bands = append(ax.bands, Band{X: x, Lower: lower, Upper: upper, Color: withAlpha(color, alpha)})
	return nil
}

// Chart converts the Axes into a go-chart chart. Logarithmic axes are drawn
// by plotting log10 of the values against decade ticks; points that are not
// positive on a logarithmic axis are left out.
func (ax *Axes) Chart() (chart.Chart, error) {
	xs := &scale{log: ax.XLog, lim: ax.XLim}
	ys := &scale{log: ax.YLog, lim: ax.YLim}

	var series, curves []chart.Series
	for _, b := range ax.bands {
		px, py := bandPolygon(b)
		px, py = project(xs, ys, px, py)
		if len(px) < 2 {
			logger.Debugf("plotter: band with %d drawable points skipped", len(px))
			continue
		}
		series = append(series, chart.ContinuousSeries{
			XValues: px,
			YValues: py,
			Style: chart.Style{
				StrokeColor: b.Color,
				StrokeWidth: 0.5,
				FillColor:   b.Color,
			},
		})
	}
	for _, l := range ax.lines {
		px, py := project(xs, ys, l.X, l.Y)
		if dropped := len(l.X) - len(px); dropped > 0 {
			logger.Debugf("plotter: %q lost %d points to the axis scale", l.Label, dropped)
		}
		if len(px) == 0 {
			continue
		}
		style := chart.Style{
			StrokeColor:     l.Color,
			StrokeWidth:     l.Width,
			StrokeDashArray: l.Dash,
		}
		if l.NoLine {
			style.StrokeWidth = chart.Disabled
		}
		if l.Marker {
			style.DotColor = l.Color
			style.DotWidth = 2 * l.Width
		}
		s := chart.ContinuousSeries{Name: l.Label, XValues: px, YValues: py, Style: style}
		series = append(series, s)
		curves = append(curves, s)
	}
	xRange, xTicks := xs.axis()
	yRange, yTicks := ys.axis()
	if len(series) == 0 {
		// go-chart needs a series; an invisible diagonal keeps the empty
		// axes drawable.
		series = append(series, placeholder(xRange, yRange))
	}
	ch := chart.Chart{
		Title:  ax.Title,
		Width:  ax.Width,
		Height: ax.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  ax.XLabel,
			Range: xRange,
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Name:  ax.YLabel,
			Range: yRange,
			Ticks: yTicks,
		},
		Series: series,
	}

	if len(curves) == 0 {
		return ch, nil
	}
	// The legend reads its entries from a chart holding only the curves so
	// that bands do not get legend rows.
	legend := &chart.Chart{Series: curves}
	switch ax.Legend {
	case LegendInside:
		ch.Elements = []chart.Renderable{chart.Legend(legend)}
	case LegendOutside:
		ch.Background.Padding.Left = legendMargin(ax)
		ch.Elements = []chart.Renderable{chart.LegendLeft(legend)}
	}
	return ch, nil
}

func placeholder(xr, yr chart.Range) chart.ContinuousSeries {
	x0, x1 := extent(xr)
	y0, y1 := extent(yr)
	return chart.ContinuousSeries{
		XValues: []float64{x0, x1},
		YValues: []float64{y0, y1},
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			StrokeColor: transparent,
		},
	}
}

func extent(r chart.Range) (float64, float64) {
	if r == nil {
		return 0, 1
	}
	return r.GetMin(), r.GetMax()
}

func legendMargin(ax *Axes) int {
	longest := 0
	for _, l := range ax.lines {
		if len(l.Label) > longest {
			longest = len(l.Label)
		}
	}
	m := 40 + 6*longest
	if m > ax.Width/2 {
		m = ax.Width / 2
	}
	return m
}

// bandPolygon walks the upper edge forwards and the lower edge backwards.
func bandPolygon(b Band) (x, y []float64) {
	n := len(b.X)
	x = make([]float64, 0, 2*n)
	y = make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		x = append(x, b.X[i])
		y = append(y, b.Upper[i])
	}
	for i := n - 1; i >= 0; i-- {
		x = append(x, b.X[i])
		y = append(y, b.Lower[i])
	}
	return x, y
}

func project(xs, ys *scale, x, y []float64) (px, py []float64) {
	px = make([]float64, 0, len(x))
	py = make([]float64, 0, len(y))
	for i := range x {
		vx, okx := xs.apply(x[i])
		vy, oky := ys.apply(y[i])
		if !okx || !oky {
			continue
		}
		xs.observe(vx)
		ys.observe(vy)
		px = append(px, vx)
		py = append(py, vy)
	}
	return px, py
}

type scale struct {
	log      bool
	lim      Limits
	min, max float64
	seen     bool
}

func (s *scale) apply(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if !s.log {
		return v, true
	}
	if v <= 0 {
		return 0, false
	}
	return math.Log10(v), true
}

func (s *scale) observe(v float64) {
	if !s.seen {
		s.min, s.max, s.seen = v, v, true
		return
	}
	s.min = math.Min(s.min, v)
	s.max = math.Max(s.max, v)
}

func (s *scale) bound(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	if v, ok := s.apply(*p); ok {
		return v
	}
	return fallback
}

// axis returns the range and ticks handed to go-chart. A linear axis
// without limits is left to go-chart unless its data span is empty: no
// points give 0..1 and a single value is padded on both sides.
func (s *scale) axis() (chart.Range, []chart.Tick) {
	if !s.seen {
		s.min, s.max = 0, 1
	}
	if !s.log {
		lo := s.bound(s.lim.Min, s.min)
		hi := s.bound(s.lim.Max, s.max)
		if hi > lo && s.seen && s.lim.Auto() {
			return nil, nil
		}
		if hi <= lo {
			lo, hi = widen(lo, hi, s.lim)
		}
		return &chart.ContinuousRange{Min: lo, Max: hi}, nil
	}

	lo := s.bound(s.lim.Min, math.Floor(s.min))
	hi := s.bound(s.lim.Max, math.Ceil(s.max))
	if hi <= lo {
		hi = lo + 1
	}
	ticks := []chart.Tick{{Value: lo, Label: decadeLabel(lo)}}
	for k := math.Floor(lo) + 1; k < hi; k++ {
		ticks = append(ticks, chart.Tick{Value: k, Label: decadeLabel(k)})
	}
	ticks = append(ticks, chart.Tick{Value: hi, Label: decadeLabel(hi)})
	return &chart.ContinuousRange{Min: lo, Max: hi}, ticks
}

// widen opens an empty or inverted linear range, keeping any fixed bound.
func widen(lo, hi float64, lim Limits) (float64, float64) {
	pad := math.Max(math.Abs(lo)*0.1, 0.5)
	switch {
	case lim.Min != nil && lim.Max == nil:
		return lo, lo + 2*pad
	case lim.Min == nil && lim.Max != nil:
		pad = math.Max(math.Abs(hi)*0.1, 0.5)
		return hi - 2*pad, hi
	}
	return lo - pad, lo + pad
}

func decadeLabel(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("1e%d", int(v))
	}
	return fmt.Sprintf("%.3g", math.Pow(10, v))
}
