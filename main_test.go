package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepc/internal/config"
	"nepc/plotter"
)

const (
	argonData = "lxcat/testdata/argon.txt"
	n2Model   = "xsec/testdata/model.yaml"
	rawData   = "xsec/testdata/columns.txt"
)

func job(kind, input, output string) config.Job {
	return config.Job{
		Name:       kind,
		Kind:       kind,
		Input:      input,
		Output:     output,
		UnitsSigma: 1e-20,
		MaxPlots:   plotter.DefaultMaxPlots,
		Width:      10,
		Height:     10,
		Model:      "one",
		Count:      1000,
	}
}

func assertWritten(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunPlots(t *testing.T) {
	dir := t.TempDir()

	lx := job(config.KindLXCat, argonData, filepath.Join(dir, "argon.png"))
	lx.YLog = true
	lx.Line = map[string]any{"linewidth": 2}
	require.NoError(t, runJob(lx))
	assertWritten(t, lx.Output)

	panels := job(config.KindLXCatPanels, argonData, filepath.Join(dir, "panels", "argon.html"))
	require.NoError(t, runJob(panels))
	assertWritten(t, panels.Output)

	raw := job(config.KindRaw, rawData, filepath.Join(dir, "raw.svg"))
	raw.Label = "N2 ionization"
	require.NoError(t, runJob(raw))
	assertWritten(t, raw.Output)

	model := job(config.KindModel, n2Model, filepath.Join(dir, "model.png"))
	model.Process = "ionization"
	require.NoError(t, runJob(model))
	assertWritten(t, model.Output)
}

func TestRunLXCatFilter(t *testing.T) {
	dir := t.TempDir()
	j := job(config.KindLXCat, argonData, filepath.Join(dir, "exc.png"))
	j.Process = "excitation"
	require.NoError(t, runJob(j))

	j.Process = "rotation"
	assert.ErrorIs(t, runJob(j), errNoCurves)

	j.Process = ""
	j.Line = map[string]any{"colour": "red"}
	assert.Error(t, runJob(j))
}

func TestRunFit(t *testing.T) {
	dir := t.TempDir()
	j := job(config.KindFit, n2Model, filepath.Join(dir, "fit.json"))
	j.Species = "N2"
	j.Process = "ionization"
	require.NoError(t, runJob(j))

	data, err := os.ReadFile(j.Output)
	require.NoError(t, err)
	var report fitReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "N2", report.Species)
	assert.Equal(t, "ionization", report.Process)
	assert.Len(t, report.Params, 3)

	j.Output = filepath.Join(dir, "fit.png")
	require.NoError(t, runJob(j))
	assertWritten(t, j.Output)

	j.Species = "Xx"
	assert.Error(t, runJob(j))

	j.Species = "N2"
	j.Process = "attachment"
	assert.ErrorIs(t, runJob(j), errNoCurves)
}

func TestRunSample(t *testing.T) {
	dir := t.TempDir()
	j := job(config.KindSample, n2Model, filepath.Join(dir, "sample.json"))
	j.Energy = 50
	require.NoError(t, runJob(j))
	for _, name := range []string{"sample-counts.json", "sample-probs.json", "sample-counts.png", "sample-probs.png"} {
		assertWritten(t, filepath.Join(dir, name))
	}

	j.Energy = 1
	assert.Error(t, runJob(j))
}

func TestRunAllCountsFailures(t *testing.T) {
	dir := t.TempDir()
	jobs := []config.Job{
		job(config.KindRaw, rawData, filepath.Join(dir, "ok.png")),
		job(config.KindRaw, filepath.Join(dir, "missing.txt"), filepath.Join(dir, "bad.png")),
		job("histogram", rawData, filepath.Join(dir, "hist.png")),
	}
	assert.Equal(t, 2, runAll(jobs))
}
