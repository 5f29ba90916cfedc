package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nepc/collision"
	"nepc/internal/config"
	"nepc/internal/logger"
	"nepc/lxcat"
	"nepc/plotter"
	"nepc/thomson"
	"nepc/xsec"
)

var errNoCurves = errors.New("no matching curves")

// runJob dispatches one configured job.
func runJob(job config.Job) error {
	if dir := filepath.Dir(job.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	switch job.Kind {
	case config.KindLXCat:
		return runLXCat(job)
	case config.KindLXCatPanels:
		return runLXCatPanels(job)
	case config.KindRaw:
		return runRaw(job)
	case config.KindModel:
		return runModel(job)
	case config.KindFit:
		return runFit(job)
	case config.KindSample:
		return runSample(job)
	}
	return fmt.Errorf("unknown job kind %q", job.Kind)
}

func plotOptions(job config.Job) (plotter.Options, error) {
	params, err := plotter.DecodeLineParams(job.Line)
	if err != nil {
		return plotter.Options{}, err
	}
	return plotter.Options{
		Line:       params,
		XLim:       job.XLim,
		YLim:       job.YLim,
		XLog:       job.XLog,
		YLog:       job.YLog,
		ShowLegend: job.ShowLegend(),
		Filename:   job.Output,
	}, nil
}

func loadLXCat(job config.Job) ([]xsec.Process, error) {
	procs, err := lxcat.ParseFile(job.Input)
	if err != nil {
		return nil, err
	}
	if job.Process != "" {
		procs = lxcat.Filter(procs, job.Process)
	}
	if len(procs) == 0 {
		return nil, fmt.Errorf("%s: %w", job.Input, errNoCurves)
	}
	return procs, nil
}

func runLXCat(job config.Job) error {
	procs, err := loadLXCat(job)
	if err != nil {
		return err
	}
	o, err := plotOptions(job)
	if err != nil {
		return err
	}
	styles := job.Styles
	for i := len(styles); i < len(procs); i++ {
		styles = append(styles, fmt.Sprintf("C%d-", i%10))
	}
	_, err = plotter.PlotLXCat(nil, procs, styles, o)
	return err
}

func runLXCatPanels(job config.Job) error {
	procs, err := loadLXCat(job)
	if err != nil {
		return err
	}
	o, err := plotOptions(job)
	if err != nil {
		return err
	}
	_, err = plotter.PlotLXCatPanels(procs, o)
	return err
}

func runRaw(job config.Job) error {
	data, err := xsec.LoadColumns(job.Input)
	if err != nil {
		return err
	}
	o, err := plotOptions(job)
	if err != nil {
		return err
	}
	style := "-"
	if len(job.Styles) > 0 {
		style = job.Styles[0]
	}
	label := job.Label
	if label == "" {
		label = job.Process
	}
	_, err = plotter.PlotRaw(nil, data, label, style, o)
	return err
}

func runModel(job config.Job) error {
	model, err := xsec.LoadModel(job.Input)
	if err != nil {
		return err
	}
	o, err := plotOptions(job)
	if err != nil {
		return err
	}
	mo := plotter.DefaultModelOptions()
	mo.Options = o
	mo.Process = job.Process
	mo.MaxPlots = job.MaxPlots
	mo.Width, mo.Height = job.Width, job.Height
	_, err = plotter.PlotModel(nil, model, job.UnitsSigma, mo)
	return err
}

type fitReport struct {
	Species string    `json:"species"`
	Process string    `json:"process"`
	Model   string    `json:"model"`
	Params  []float64 `json:"params"`
	SSR     float64   `json:"ssr"`
}

// runFit reduces the first matching model curve with the species constants
// and fits it above threshold. A .json output gets the coefficients, any
// plot format gets the reduced data against the fitted curve.
func runFit(job config.Job) error {
	species, err := thomson.LookupSpecies(job.Species)
	if err != nil {
		return err
	}
	fm, err := thomson.ParseFitModel(job.Model)
	if err != nil {
		return err
	}
	model, err := xsec.LoadModel(job.Input)
	if err != nil {
		return err
	}
	c, err := pickCurve(model, job.Process)
	if err != nil {
		return fmt.Errorf("%s: %w", job.Input, err)
	}

	x := species.ReducedEnergy(c.E)
	y := species.ReducedCrossSection(c.Scaled(1e-20))
	var fx, fy []float64
	for i := range x {
		if x[i] > 1 {
			fx = append(fx, x[i])
			fy = append(fy, y[i])
		}
	}
	res, err := thomson.Fit(fm, fx, fy, job.Initial)
	if err != nil {
		return err
	}
	logger.Infof("fit %s %s (%s): params=%v ssr=%g", species.Symbol, c.Process, res.Model, res.Params, res.SSR)

	if strings.EqualFold(filepath.Ext(job.Output), ".json") {
		data, err := json.MarshalIndent(fitReport{
			Species: species.Symbol,
			Process: c.Process,
			Model:   res.Model.String(),
			Params:  res.Params,
			SSR:     res.SSR,
		}, "", " ")
		if err != nil {
			return err
		}
		return os.WriteFile(job.Output, data, 0o644)
	}

	o, err := plotOptions(job)
	if err != nil {
		return err
	}
	ax := plotter.NewAxes()
	ax.XLabel, ax.YLabel = "E / J", "f(E / J)"
	ax.XLog, ax.YLog = o.XLog, o.YLog
	ax.XLim, ax.YLim = o.XLim, o.YLim
	if o.ShowLegend {
		ax.Legend = plotter.LegendInside
	}
	if _, err := ax.Plot(fx, fy, plotter.MustLineStyle("ko"), o.Line, species.Name); err != nil {
		return err
	}
	if _, err := ax.Plot(fx, fm.Eval(fx, res.Params), plotter.MustLineStyle("r-"), o.Line, "model "+res.Model.String()); err != nil {
		return err
	}
	return ax.Save(job.Output)
}

func pickCurve(model []xsec.Curve, process string) (xsec.Curve, error) {
	for _, c := range model {
		if process == "" || c.Process == process {
			return c, c.Validate()
		}
	}
	return xsec.Curve{}, errNoCurves
}

// runSample draws collisions at the job energy and writes
// <output>-counts.{json,png} and <output>-probs.{json,png}.
func runSample(job config.Job) error {
	model, err := xsec.LoadModel(job.Input)
	if err != nil {
		return err
	}
	s, err := collision.NewSampler(model, job.Energy)
	if err != nil {
		return err
	}
	events := s.Sample(job.Count)
	logger.Infof("sampled %d collisions at %g eV, total cross section %g m^2", len(events), job.Energy, s.TotalCrossSection())

	stem := strings.TrimSuffix(job.Output, filepath.Ext(job.Output))
	counts := events.CountProcesses()
	probs := events.Probabilities()
	for _, save := range []func() error{
		func() error { return counts.SaveJSON(stem + "-counts.json") },
		func() error { return probs.SaveJSON(stem + "-probs.json") },
		func() error { return counts.SaveChart(stem + "-counts.png") },
		func() error { return probs.SaveChart(stem + "-probs.png") },
	} {
		if err := save(); err != nil {
			return err
		}
	}
	return nil
}
