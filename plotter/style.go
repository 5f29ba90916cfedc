package plotter

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// LineStyle is a parsed short format string such as "r-", "b--" or "k:".
type LineStyle struct {
	Color    drawing.Color
	HasColor bool
	Dash     []float64
	Marker   bool
	NoLine   bool
}

var shortColors = map[byte]drawing.Color{
	'b': {R: 31, G: 119, B: 180, A: 255},
	'g': {R: 44, G: 160, B: 44, A: 255},
	'r': {R: 214, G: 39, B: 40, A: 255},
	'c': {R: 23, G: 190, B: 207, A: 255},
	'm': {R: 148, G: 103, B: 189, A: 255},
	'y': {R: 188, G: 189, B: 34, A: 255},
	'k': {R: 0, G: 0, B: 0, A: 255},
	'w': {R: 255, G: 255, B: 255, A: 255},
}

// cycle is the colour sequence for lines without an explicit colour.
var cycle = []drawing.Color{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
	{R: 227, G: 119, B: 194, A: 255},
	{R: 127, G: 127, B: 127, A: 255},
	{R: 188, G: 189, B: 34, A: 255},
	{R: 23, G: 190, B: 207, A: 255},
}

// Grey shades uncertainty bands whose bounds are assumed.
var Grey = drawing.Color{R: 128, G: 128, B: 128, A: 255}

var transparent = drawing.Color{R: 255, G: 255, B: 255}

var dashes = map[string][]float64{
	"-":  nil,
	"--": {6, 4},
	":":  {1.5, 3},
	"-.": {6, 3, 1.5, 3},
}

// ParseLineStyle reads a colour letter or "C<digit>", an optional line
// pattern (-, --, :, -.) and an optional point marker (o or .).
func ParseLineStyle(s string) (LineStyle, error) {
	var ls LineStyle
	rest := s
	switch {
	case len(rest) >= 2 && rest[0] == 'C' && rest[1] >= '0' && rest[1] <= '9':
		ls.Color, ls.HasColor = cycle[int(rest[1]-'0')], true
		rest = rest[2:]
	case len(rest) >= 1:
		if c, ok := shortColors[rest[0]]; ok {
			ls.Color, ls.HasColor = c, true
			rest = rest[1:]
		}
	}
	if strings.Contains(rest, "o") {
		ls.Marker = true
		rest = strings.Replace(rest, "o", "", 1)
	} else if strings.HasSuffix(rest, ".") && rest != "-." {
		ls.Marker = true
		rest = rest[:len(rest)-1]
	}
	if rest == "" {
		if ls.Marker {
			ls.NoLine = true
			return ls, nil
		}
		rest = "-"
	}
	d, ok := dashes[rest]
	if !ok {
		return LineStyle{}, fmt.Errorf("unrecognized line style %q", s)
	}
	ls.Dash = d
	return ls, nil
}

// MustLineStyle is ParseLineStyle for literals.
func MustLineStyle(s string) LineStyle {
	ls, err := ParseLineStyle(s)
	if err != nil {
		panic(err)
	}
	return ls
}

// LineParams are the drawing options shared by every line of a call.
type LineParams struct {
	Width float64 `mapstructure:"linewidth"`
	// Alpha is the line opacity in [0, 1]; zero means opaque.
	Alpha float64 `mapstructure:"alpha"`
}

// DecodeLineParams reads line options from a free-form map. Unknown keys
// are rejected.
func DecodeLineParams(m map[string]any) (LineParams, error) {
	var p LineParams
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(m); err != nil {
		return LineParams{}, fmt.Errorf("line params: %w", err)
	}
	return p, nil
}

func withAlpha(c drawing.Color, alpha float64) drawing.Color {
	if alpha <= 0 || alpha > 1 {
		return c
	}
	c.A = uint8(alpha*255 + 0.5)
	return c
}

func css(c drawing.Color) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, float64(c.A)/255)
}
