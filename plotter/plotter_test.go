package plotter

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepc/xsec"
)

func ptr(v float64) *float64 { return &v }

func curve(process string, upu, lpu *float64) xsec.Curve {
	return xsec.Curve{
		Process:    process,
		Reactants:  []string{"e", "N2"},
		Products:   []string{"2e", "N2+"},
		E:          []float64{16, 20, 40, 100},
		Sigma:      []float64{0.1, 0.6, 1.6, 2.2},
		UnitsSigma: 1e-20,
		UPU:        upu,
		LPU:        lpu,
	}
}

func lxcatProcesses(n int) []xsec.Process {
	procs := make([]xsec.Process, n)
	for i := range procs {
		procs[i] = xsec.Process{
			Process: fmt.Sprintf("E + Ar -> E + Ar*(%d), Excitation", i),
			Data:    [][2]float64{{11.5, 0}, {15, 1e-21 * float64(i+1)}, {30, 3e-21 * float64(i+1)}},
		}
	}
	return procs
}

func TestPlotModelCapsAtMaxPlots(t *testing.T) {
	model := make([]xsec.Curve, 12)
	for i := range model {
		model[i] = curve("ionization", nil, nil)
	}
	o := DefaultModelOptions()
	o.MaxPlots = 10

	ax, err := PlotModel(nil, model, 1e-20, o)
	require.NoError(t, err)
	assert.Len(t, ax.Lines(), 10)
	assert.Len(t, ax.Bands(), 10)
	assert.Equal(t, LegendOutside, ax.Legend)
	assert.Equal(t, 1000, ax.Width)
	assert.Equal(t, "Cross Section (1e-20 m^2)", ax.YLabel)
	assert.Equal(t, "Electron Energy (eV)", ax.XLabel)
}

func TestPlotModelZeroMaxPlotsUsesDefault(t *testing.T) {
	model := make([]xsec.Curve, 12)
	for i := range model {
		model[i] = curve("ionization", nil, nil)
	}
	ax, err := PlotModel(nil, model, 1e-20, ModelOptions{})
	require.NoError(t, err)
	assert.Len(t, ax.Lines(), DefaultMaxPlots)
	assert.Equal(t, LegendNone, ax.Legend)
}

func TestPlotModelDefaultUncertainty(t *testing.T) {
	ax, err := PlotModel(nil, []xsec.Curve{curve("ionization", nil, nil)}, 1e-20, DefaultModelOptions())
	require.NoError(t, err)

	bands := ax.Bands()
	require.Len(t, bands, 1)
	sigma := ax.Lines()[0].Y
	for i := range sigma {
		assert.InDelta(t, sigma[i]*0.5, bands[0].Lower[i], 1e-12)
		assert.InDelta(t, sigma[i]*1.5, bands[0].Upper[i], 1e-12)
	}
	assert.Equal(t, withAlpha(Grey, bandAlpha), bands[0].Color)
}

func TestPlotModelKnownUncertainty(t *testing.T) {
	c := curve("ionization", ptr(0.2), ptr(0.1))
	ax, err := PlotModel(nil, []xsec.Curve{c}, 1e-20, DefaultModelOptions())
	require.NoError(t, err)

	line := ax.Lines()[0]
	band := ax.Bands()[0]
	assert.Equal(t, withAlpha(line.Color, bandAlpha), band.Color)
	assert.InDelta(t, 1.6*0.9, band.Lower[2], 1e-12)
	assert.InDelta(t, 1.6*1.2, band.Upper[2], 1e-12)
	assert.Equal(t, "ionization : e + N2 -> 2e + N2+", line.Label)

	// Only one bound known still counts as assumed.
	ax, err = PlotModel(nil, []xsec.Curve{curve("ionization", ptr(0.2), nil)}, 1e-20, DefaultModelOptions())
	require.NoError(t, err)
	assert.Equal(t, withAlpha(Grey, bandAlpha), ax.Bands()[0].Color)
}

func TestPlotModelUnitsAndFilter(t *testing.T) {
	model := []xsec.Curve{
		curve("ionization", nil, nil),
		curve("excitation", nil, nil),
		curve("ionization", nil, nil),
	}
	o := DefaultModelOptions()
	o.Process = "excitation"
	o.Formatter = xsec.ReactionFunc(func(xsec.Curve) string { return "" })

	ax, err := PlotModel(nil, model, 1e-21, o)
	require.NoError(t, err)
	lines := ax.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "excitation :", lines[0].Label)
	assert.InDelta(t, 16.0, lines[0].Y[2], 1e-9)
	assert.Equal(t, "Cross Section (1e-21 m^2)", ax.YLabel)
}

func TestPlotModelRejectsBadCurves(t *testing.T) {
	bad := curve("ionization", nil, ptr(1.5))
	_, err := PlotModel(nil, []xsec.Curve{bad}, 1e-20, DefaultModelOptions())
	assert.ErrorIs(t, err, xsec.ErrUncertainty)

	short := curve("ionization", nil, nil)
	short.Sigma = short.Sigma[:2]
	_, err = PlotModel(nil, []xsec.Curve{short}, 1e-20, DefaultModelOptions())
	assert.ErrorIs(t, err, xsec.ErrLengthMismatch)

	_, err = PlotModel(nil, nil, 0, DefaultModelOptions())
	assert.Error(t, err)
}

func TestPlotModelColourCycle(t *testing.T) {
	model := []xsec.Curve{curve("a", nil, nil), curve("b", nil, nil)}
	ax, err := PlotModel(NewAxes(), model, 1e-20, DefaultModelOptions())
	require.NoError(t, err)
	lines := ax.Lines()
	assert.Equal(t, cycle[0], lines[0].Color)
	assert.Equal(t, cycle[1], lines[1].Color)
}

func TestPlotLXCat(t *testing.T) {
	procs := lxcatProcesses(2)
	o := DefaultOptions()
	o.YLim = Range(0, 10)

	ax, err := PlotLXCat(nil, procs, []string{"r-", "b--"}, o)
	require.NoError(t, err)
	lines := ax.Lines()
	require.Len(t, lines, 2)
	assert.InDelta(t, 0.1, lines[0].Y[1], 1e-12)
	assert.InDelta(t, 0.6, lines[1].Y[2], 1e-12)
	assert.Equal(t, shortColors['r'], lines[0].Color)
	assert.Equal(t, []float64{6, 4}, lines[1].Dash)
	assert.Equal(t, procs[1].Process, lines[1].Label)
	assert.Equal(t, lxcatSigmaLabel, ax.YLabel)
	assert.Equal(t, LegendInside, ax.Legend)
	assert.Equal(t, 10.0, *ax.YLim.Max)

	_, err = PlotLXCat(nil, procs, []string{"r-"}, o)
	assert.Error(t, err)

	_, err = PlotLXCat(nil, procs, []string{"r-", "zz"}, o)
	assert.Error(t, err)
}

func TestPlotLXCatPanels(t *testing.T) {
	fig, err := PlotLXCatPanels(lxcatProcesses(8), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, fig.Panels, 6)

	for i, ax := range fig.Panels {
		if i == 3 {
			assert.Equal(t, lxcatSigmaLabel, ax.YLabel)
		} else {
			assert.Empty(t, ax.YLabel)
		}
		if i == 5 {
			assert.Equal(t, energyLabel, ax.XLabel)
		} else {
			assert.Empty(t, ax.XLabel)
		}
		require.Len(t, ax.Lines(), 1)
		assert.Equal(t, shortColors['r'], ax.Lines()[0].Color)
		assert.Equal(t, LegendInside, ax.Legend)
	}

	fig, err = PlotLXCatPanels(lxcatProcesses(3), DefaultOptions())
	require.NoError(t, err)
	for _, ax := range fig.Panels {
		assert.Empty(t, ax.YLabel)
	}
}

func TestPlotRaw(t *testing.T) {
	data := [][2]float64{{1, 0.5}, {2, 0.75}, {3, 1.25}}
	ax, err := PlotRaw(nil, data, "N ionization", "g:", DefaultOptions())
	require.NoError(t, err)
	lines := ax.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, []float64{1, 2, 3}, lines[0].X)
	assert.Equal(t, []float64{0.5, 0.75, 1.25}, lines[0].Y)
	assert.Equal(t, "N ionization", lines[0].Label)

	_, err = PlotRaw(nil, data, "x", "??", DefaultOptions())
	assert.Error(t, err)
}

func TestSaveFormats(t *testing.T) {
	dir := t.TempDir()
	model := []xsec.Curve{curve("ionization", ptr(0.2), ptr(0.1)), curve("excitation", nil, nil)}

	for _, name := range []string{"model.png", "model.svg", "model.html"} {
		t.Run(name, func(t *testing.T) {
			o := DefaultModelOptions()
			o.Filename = filepath.Join(dir, name)
			o.YLog = true
			_, err := PlotModel(nil, model, 1e-20, o)
			require.NoError(t, err)
			info, err := os.Stat(o.Filename)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	o := DefaultModelOptions()
	o.Filename = filepath.Join(dir, "model.bmp")
	_, err := PlotModel(nil, model, 1e-20, o)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSavePNGSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lxcat.png")
	o := DefaultOptions()
	o.Filename = path
	_, err := PlotLXCat(nil, lxcatProcesses(3), []string{"r-", "b--", "k:"}, o)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}

func TestFigureSave(t *testing.T) {
	dir := t.TempDir()
	o := DefaultOptions()
	o.Filename = filepath.Join(dir, "panels.png")
	fig, err := PlotLXCatPanels(lxcatProcesses(4), o)
	require.NoError(t, err)

	f, err := os.Open(o.Filename)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 500, img.Bounds().Dx())
	assert.Equal(t, 4*fig.Panels[0].Height, img.Bounds().Dy())

	assert.NoError(t, fig.Save(filepath.Join(dir, "panels.html")))
	assert.ErrorIs(t, fig.Save(filepath.Join(dir, "panels.svg")), ErrUnsupportedFormat)
	assert.Error(t, (&Figure{}).Save(filepath.Join(dir, "empty.png")))
}

func TestSaveSinglePoint(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.png", "one.svg"} {
		t.Run(name, func(t *testing.T) {
			o := DefaultOptions()
			o.Filename = filepath.Join(dir, name)
			_, err := PlotRaw(nil, [][2]float64{{1, 2}}, "p", "r-", o)
			require.NoError(t, err)
			info, err := os.Stat(o.Filename)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	c := curve("ionization", nil, nil)
	c.E, c.Sigma = []float64{20}, []float64{0.6}
	o := DefaultModelOptions()
	o.Filename = filepath.Join(dir, "model.png")
	o.XLog, o.YLog = true, true
	_, err := PlotModel(nil, []xsec.Curve{c}, 1e-20, o)
	require.NoError(t, err)
}

func TestSaveEmptyAxes(t *testing.T) {
	dir := t.TempDir()
	o := DefaultModelOptions()
	o.Filename = filepath.Join(dir, "empty.png")
	o.Process = "attachment"
	ax, err := PlotModel(nil, []xsec.Curve{curve("ionization", nil, nil)}, 1e-20, o)
	require.NoError(t, err)
	assert.Empty(t, ax.Lines())
	info, err := os.Stat(o.Filename)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	lo := DefaultOptions()
	lo.Filename = filepath.Join(dir, "empty.svg")
	_, err = PlotLXCat(nil, nil, nil, lo)
	require.NoError(t, err)
}

func TestChartErrors(t *testing.T) {
	ax := NewAxes()
	_, err := ax.Plot([]float64{1, 2}, []float64{1}, LineStyle{}, LineParams{}, "x")
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.ErrorIs(t, ax.FillBetween([]float64{1}, nil, []float64{1}, Grey, 0.4), ErrLengthMismatch)
}
