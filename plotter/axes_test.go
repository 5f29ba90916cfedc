package plotter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"
)

func TestParseLineStyle(t *testing.T) {
	ls, err := ParseLineStyle("r-")
	require.NoError(t, err)
	assert.True(t, ls.HasColor)
	assert.Equal(t, shortColors['r'], ls.Color)
	assert.Nil(t, ls.Dash)

	ls, err = ParseLineStyle("b--")
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 4}, ls.Dash)

	ls, err = ParseLineStyle("k-.")
	require.NoError(t, err)
	assert.Len(t, ls.Dash, 4)
	assert.False(t, ls.Marker)

	ls, err = ParseLineStyle("C3:")
	require.NoError(t, err)
	assert.Equal(t, cycle[3], ls.Color)

	ls, err = ParseLineStyle("go")
	require.NoError(t, err)
	assert.True(t, ls.Marker)
	assert.True(t, ls.NoLine)

	ls, err = ParseLineStyle("")
	require.NoError(t, err)
	assert.False(t, ls.HasColor)

	_, err = ParseLineStyle("q~")
	assert.Error(t, err)
}

func TestDecodeLineParams(t *testing.T) {
	p, err := DecodeLineParams(map[string]any{"linewidth": "0.8", "alpha": 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.8, p.Width)
	assert.Equal(t, 0.5, p.Alpha)

	_, err = DecodeLineParams(map[string]any{"colour": "red"})
	assert.Error(t, err)
}

func TestLogScale(t *testing.T) {
	ax := NewAxes()
	ax.YLog = true
	_, err := ax.Plot([]float64{1, 2, 3}, []float64{0, 1e-3, 2e-1}, LineStyle{}, LineParams{}, "c")
	require.NoError(t, err)

	ch, err := ax.Chart()
	require.NoError(t, err)
	require.Len(t, ch.Series, 1)
	s := ch.Series[0].(chart.ContinuousSeries)
	assert.Equal(t, []float64{2, 3}, s.XValues)
	assert.InDelta(t, -3, s.YValues[0], 1e-12)

	require.NotEmpty(t, ch.YAxis.Ticks)
	assert.Equal(t, -3.0, ch.YAxis.Ticks[0].Value)
	assert.Equal(t, "1e-3", ch.YAxis.Ticks[0].Label)
	assert.Equal(t, 0.0, ch.YAxis.Ticks[len(ch.YAxis.Ticks)-1].Value)
	assert.Nil(t, ch.XAxis.Range)
}

func TestLinearLimits(t *testing.T) {
	ax := NewAxes()
	ax.XLim = Limits{Max: ptr(50)}
	_, err := ax.Plot([]float64{1, 2, 3}, []float64{1, 4, 9}, LineStyle{}, LineParams{}, "c")
	require.NoError(t, err)

	ch, err := ax.Chart()
	require.NoError(t, err)
	r := ch.XAxis.Range.(*chart.ContinuousRange)
	assert.Equal(t, 1.0, r.Min)
	assert.Equal(t, 50.0, r.Max)
}

func TestBandsStayOutOfLegend(t *testing.T) {
	ax := NewAxes()
	ax.Legend = LegendInside
	_, err := ax.Plot([]float64{1, 2}, []float64{1, 2}, LineStyle{}, LineParams{}, "c")
	require.NoError(t, err)
	require.NoError(t, ax.FillBetween([]float64{1, 2}, []float64{0.5, 1}, []float64{1.5, 3}, Grey, 0.4))

	ch, err := ax.Chart()
	require.NoError(t, err)
	require.Len(t, ch.Series, 2)
	band := ch.Series[0].(chart.ContinuousSeries)
	assert.Equal(t, []float64{1, 2, 2, 1}, band.XValues)
	assert.Equal(t, []float64{1.5, 3, 1, 0.5}, band.YValues)
	assert.Empty(t, band.Name)
	assert.Len(t, ch.Elements, 1)
}

func TestDegenerateRanges(t *testing.T) {
	ch, err := NewAxes().Chart()
	require.NoError(t, err)
	require.Len(t, ch.Series, 1)
	assert.Empty(t, ch.Elements)
	r := ch.XAxis.Range.(*chart.ContinuousRange)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	ax := NewAxes()
	ax.Legend = LegendInside
	_, err = ax.Plot([]float64{10}, []float64{2}, LineStyle{}, LineParams{}, "c")
	require.NoError(t, err)
	ch, err = ax.Chart()
	require.NoError(t, err)
	r = ch.XAxis.Range.(*chart.ContinuousRange)
	assert.Equal(t, 9.0, r.Min)
	assert.Equal(t, 11.0, r.Max)
	r = ch.YAxis.Range.(*chart.ContinuousRange)
	assert.Equal(t, 1.5, r.Min)
	assert.Equal(t, 2.5, r.Max)

	lo, hi := widen(3, 3, Limits{Min: ptr(3)})
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 4.0, hi)
	lo, hi = widen(8, 2, Limits{Max: ptr(2)})
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 2.0, hi)
}

func TestDecadeLabel(t *testing.T) {
	assert.Equal(t, "1e-20", decadeLabel(-20))
	assert.Equal(t, "1e2", decadeLabel(2))
	assert.Equal(t, "5", decadeLabel(math.Log10(5)))
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("out/plot.PNG")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	f, err = FormatOf("plot.htm")
	require.NoError(t, err)
	assert.Equal(t, HTML, f)

	_, err = FormatOf("plot")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
