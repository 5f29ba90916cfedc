// Package collision picks which process an electron undergoes at a given
// energy, weighting every process of a model by its cross section there.
package collision

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/mroth/weightedrand"
	"github.com/wcharczuk/go-chart/v2"

	"nepc/xsec"
)

// ErrNoWeight means no curve can be picked at the requested energy.
var ErrNoWeight = errors.New("no process has a positive cross section at this energy")

// Weights are integers; the largest cross section maps to this value.
const weightResolution = 1_000_000

// Event is one sampled collision.
type Event struct {
	Process string  `json:"process"`
	Energy  float64 `json:"energy"`
}

// Sampler draws collision events at a fixed electron energy.
type Sampler struct {
	energy  float64
	total   float64 // m^2
	chooser *weightedrand.Chooser
}

// NewSampler weights each curve by its cross section, interpolated at
// energy (eV) and converted to m^2. Curves that are not positive there are
// never picked. Events carry the curve's legend label.
func NewSampler(model []xsec.Curve, energy float64) (*Sampler, error) {
	sigmas := make([]float64, len(model))
	largest := 0.0
	for i, c := range model {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		sigmas[i] = Interpolate(c.E, c.Sigma, energy) * c.UnitsSigma
		largest = math.Max(largest, sigmas[i])
	}
	if largest <= 0 {
		return nil, fmt.Errorf("%w (E = %g eV)", ErrNoWeight, energy)
	}

	s := &Sampler{energy: energy}
	labels := eventLabels(model)
	var choices []weightedrand.Choice
	for i := range model {
		if sigmas[i] <= 0 {
			continue
		}
		w := uint(math.Round(sigmas[i] / largest * weightResolution))
		if w == 0 {
			continue
		}
		s.total += sigmas[i]
		choices = append(choices, weightedrand.NewChoice(labels[i], w))
	}
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}
	s.chooser = chooser
	return s, nil
}

// eventLabels names the curves for the tallies: the legend label without
// a dangling separator, numbered from the second repeat on.
func eventLabels(model []xsec.Curve) []string {
	labels := make([]string, len(model))
	seen := make(map[string]int)
	for i, c := range model {
		l := strings.TrimSpace(strings.TrimSuffix(xsec.Label(c, nil), ":"))
		if l == "" {
			l = "curve"
		}
		seen[l]++
		if n := seen[l]; n > 1 {
			l = fmt.Sprintf("%s #%d", l, n)
		}
		labels[i] = l
	}
	return labels
}

// TotalCrossSection is the sum of the weighted cross sections in m^2.
func (s *Sampler) TotalCrossSection() float64 {
	return s.total
}

// Collide draws one event.
func (s *Sampler) Collide() *Event {
	label, _ := s.chooser.Pick().(string)
	return &Event{Process: label, Energy: s.energy}
}

// Sample draws n events.
func (s *Sampler) Sample(n int) Events {
	events := make(Events, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, s.Collide())
	}
	return events
}

// Interpolate evaluates the tabulated cross section at x: linear between
// points, zero below the first energy, flat above the last.
func Interpolate(e, sigma []float64, x float64) float64 {
	n := len(e)
	if n == 0 || x < e[0] {
		return 0
	}
	if x >= e[n-1] {
		return sigma[n-1]
	}
	i := sort.SearchFloat64s(e, x)
	if e[i] == x {
		return sigma[i]
	}
	t := (x - e[i-1]) / (e[i] - e[i-1])
	return sigma[i-1] + t*(sigma[i]-sigma[i-1])
}

type Events []*Event

// CountProcesses returns how many times each process occurred.
func (events Events) CountProcesses() counts {
	pc := make(counts)
	for _, ev := range events {
		pc[ev.Process]++
	}
	return pc
}

// Probabilities returns the share of each process in percent.
func (events Events) Probabilities() probabilities {
	pc := events.CountProcesses()

	sum := 0
	for _, c := range pc {
		sum += c
	}
	probs := make(probabilities)
	for p, c := range pc {
		probs[p] = (float64(c) / float64(sum)) * 100
	}
	return probs
}

type (
	counts        map[string]int
	probabilities map[string]float64
)

// Saves to .json file
func (pc counts) SaveJSON(path string) error {
	return saveJSON(path, pc)
}

// Saves to .json file
func (probs probabilities) SaveJSON(path string) error {
	return saveJSON(path, probs)
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveChart writes a bar chart of the counts to a png file.
func (pc counts) SaveChart(path string) error {
	var values []chart.Value
	most := 0
	for _, p := range sortedKeys(pc) {
		values = append(values, chart.Value{Label: p, Value: float64(pc[p])})
		if pc[p] > most {
			most = pc[p]
		}
	}
	graph := chart.BarChart{
		Title: "Collision processes",
		Background: chart.Style{
			Padding: chart.Box{
				Top: 50,
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: float64(most) * 1.1,
			},
		},
		Width:    1280,
		Height:   720,
		BarWidth: 40,
		Bars:     values,
	}
	return renderPNG(path, graph.Render)
}

// SaveChart writes a donut chart of the shares to a png file.
func (probs probabilities) SaveChart(path string) error {
	var values []chart.Value
	for _, p := range sortedKeys(probs) {
		label := fmt.Sprintf("%s (%.3f)", p, probs[p]) + "%"
		values = append(values, chart.Value{Label: label, Value: probs[p]})
	}
	donut := chart.DonutChart{
		Title:  "Probability of collision",
		Width:  1280,
		Height: 1280,
		Values: values,
	}
	return renderPNG(path, donut.Render)
}

func renderPNG(path string, render func(chart.RendererProvider, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(chart.PNG, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
