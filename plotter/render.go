package plotter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/wcharczuk/go-chart/v2"

	"nepc/internal/logger"
)

// Format is an output encoding.
type Format string

const (
	PNG  Format = "png"
	SVG  Format = "svg"
	HTML Format = "html"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatOf derives the output format from a file name's extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return PNG, nil
	case ".svg":
		return SVG, nil
	case ".html", ".htm":
		return HTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
}

// Render writes the Axes to w in the given format.
func (ax *Axes) Render(w io.Writer, format Format) error {
	switch format {
	case PNG, SVG:
		ch, err := ax.Chart()
		if err != nil {
			return err
		}
		provider := chart.PNG
		if format == SVG {
			provider = chart.SVG
		}
		return ch.Render(provider, w)
	case HTML:
		return ax.Echart().Render(w)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Save writes the Axes to filename, the format following the extension.
func (ax *Axes) Save(filename string) error {
	format, err := FormatOf(filename)
	if err != nil {
		return err
	}
	return writeFile(filename, func(w io.Writer) error { return ax.Render(w, format) })
}

func writeFile(filename string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filename, err)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Debugf("plotter: wrote %s (%d bytes)", filename, buf.Len())
	return nil
}

// Echart builds an interactive line chart of the Axes. Bands are drawn as
// their two faint edges.
func (ax *Axes) Echart() *charts.Line {
	axisType := func(log bool) string {
		if log {
			return "log"
		}
		return "value"
	}
	xAxis := opts.XAxis{Name: ax.XLabel, Type: axisType(ax.XLog)}
	if ax.XLim.Min != nil {
		xAxis.Min = *ax.XLim.Min
	}
	if ax.XLim.Max != nil {
		xAxis.Max = *ax.XLim.Max
	}
	yAxis := opts.YAxis{Name: ax.YLabel, Type: axisType(ax.YLog)}
	if ax.YLim.Min != nil {
		yAxis.Min = *ax.YLim.Min
	}
	if ax.YLim.Max != nil {
		yAxis.Max = *ax.YLim.Max
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  fmt.Sprintf("%dpx", ax.Width),
			Height: fmt.Sprintf("%dpx", ax.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: ax.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(ax.Legend != LegendNone)}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
	)

	for _, b := range ax.bands {
		edge := opts.LineStyle{Color: css(b.Color), Type: "dashed", Opacity: opts.Float(0.6)}
		line.AddSeries("", pairs(b.X, b.Upper, ax), charts.WithLineStyleOpts(edge),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
		line.AddSeries("", pairs(b.X, b.Lower, ax), charts.WithLineStyleOpts(edge),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	for _, l := range ax.lines {
		style := opts.LineStyle{Color: css(l.Color), Type: dashType(l.Dash)}
		if l.NoLine {
			style.Opacity = opts.Float(0)
		}
		line.AddSeries(l.Label, pairs(l.X, l.Y, ax), charts.WithLineStyleOpts(style),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(l.Marker)}))
	}
	return line
}

func pairs(x, y []float64, ax *Axes) []opts.LineData {
	xs := &scale{log: ax.XLog}
	ys := &scale{log: ax.YLog}
	data := make([]opts.LineData, 0, len(x))
	for i := range x {
		_, okx := xs.apply(x[i])
		_, oky := ys.apply(y[i])
		if !okx || !oky {
			continue
		}
		data = append(data, opts.LineData{Value: []float64{x[i], y[i]}})
	}
	return data
}

func dashType(dash []float64) string {
	switch len(dash) {
	case 0:
		return "solid"
	case 2:
		if dash[0] < 2 {
			return "dotted"
		}
	}
	return "dashed"
}

// Figure is a vertical stack of panels sharing one output file.
type Figure struct {
	Panels []*Axes
}

// Render writes every panel, stacked top to bottom, to w. PNG panels are
// composited into one image; HTML panels share one page.
func (f *Figure) Render(w io.Writer, format Format) error {
	if len(f.Panels) == 0 {
		return errors.New("plotter: figure has no panels")
	}
	switch format {
	case PNG:
		return f.renderPNG(w)
	case HTML:
		page := components.NewPage()
		for _, ax := range f.Panels {
			page.AddCharts(ax.Echart())
		}
		return page.Render(w)
	}
	return fmt.Errorf("%w: %q for a multi-panel figure", ErrUnsupportedFormat, format)
}

// Save writes the figure to filename.
func (f *Figure) Save(filename string) error {
	format, err := FormatOf(filename)
	if err != nil {
		return err
	}
	return writeFile(filename, func(w io.Writer) error { return f.Render(w, format) })
}

func (f *Figure) renderPNG(w io.Writer) error {
	var imgs []image.Image
	width, height := 0, 0
	for i, ax := range f.Panels {
		var buf bytes.Buffer
		if err := ax.Render(&buf, PNG); err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		b := img.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
		imgs = append(imgs, img)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(canvas, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Over)
		y += b.Dy()
	}
	return png.Encode(w, canvas)
}
