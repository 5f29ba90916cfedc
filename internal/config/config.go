// Package config loads the job file driving the nepc batch runner.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"nepc/plotter"
)

// Job kinds.
const (
	KindLXCat       = "lxcat"
	KindLXCatPanels = "lxcat_panels"
	KindRaw         = "raw"
	KindModel       = "model"
	KindFit         = "fit"
	KindSample      = "sample"
)

var kinds = map[string]bool{
	KindLXCat: true, KindLXCatPanels: true, KindRaw: true,
	KindModel: true, KindFit: true, KindSample: true,
}

// Config is the whole job file.
type Config struct {
	App  AppConfig `mapstructure:"app"`
	Jobs []Job     `mapstructure:"jobs"`
}

// AppConfig holds the process-wide settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	// OutputDir prefixes relative job outputs.
	OutputDir string `mapstructure:"output_dir"`
}

// Job is one plot, fit or sampling run.
type Job struct {
	Name   string `mapstructure:"name"`
	Kind   string `mapstructure:"kind"`
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`

	// Process filters model curves by process name, or LXCat blocks by kind.
	Process string         `mapstructure:"process"`
	Label   string         `mapstructure:"label"`
	Styles  []string       `mapstructure:"styles"`
	Line    map[string]any `mapstructure:"line"`
	XLim    plotter.Limits `mapstructure:"xlim"`
	YLim    plotter.Limits `mapstructure:"ylim"`
	XLog    bool           `mapstructure:"xlog"`
	YLog    bool           `mapstructure:"ylog"`
	Legend  *bool          `mapstructure:"legend"`

	UnitsSigma float64 `mapstructure:"units_sigma"`
	MaxPlots   int     `mapstructure:"max_plots"`
	Width      float64 `mapstructure:"width"`
	Height     float64 `mapstructure:"height"`

	// fit
	Species string    `mapstructure:"species"`
	Model   string    `mapstructure:"model"`
	Initial []float64 `mapstructure:"initial"`

	// sample
	Energy float64 `mapstructure:"energy"`
	Count  int     `mapstructure:"count"`
}

// ShowLegend reports whether the job wants a legend; the default is yes.
func (j Job) ShowLegend() bool {
	return j.Legend == nil || *j.Legend
}

// Load reads the YAML file at path. NEPC_* environment variables override
// scalar app settings, e.g. NEPC_APP_LOG_LEVEL=debug.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NEPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_path", "")
	v.SetDefault("app.output_dir", "")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Jobs {
		j := &c.Jobs[i]
		j.Kind = strings.ToLower(strings.TrimSpace(j.Kind))
		if j.Name == "" {
			j.Name = fmt.Sprintf("%s#%d", j.Kind, i+1)
		}
		if j.UnitsSigma == 0 {
			j.UnitsSigma = 1e-20
		}
		if j.MaxPlots == 0 {
			j.MaxPlots = plotter.DefaultMaxPlots
		}
		if j.Width == 0 {
			j.Width = 10
		}
		if j.Height == 0 {
			j.Height = 10
		}
		if j.Model == "" {
			j.Model = "one"
		}
		if j.Count == 0 {
			j.Count = 10000
		}
		if c.App.OutputDir != "" && j.Output != "" && !filepath.IsAbs(j.Output) {
			j.Output = filepath.Join(c.App.OutputDir, j.Output)
		}
	}
}

func (c *Config) validate() error {
	if len(c.Jobs) == 0 {
		return fmt.Errorf("config: no jobs")
	}
	for _, j := range c.Jobs {
		if !kinds[j.Kind] {
			return fmt.Errorf("job %s: unknown kind %q", j.Name, j.Kind)
		}
		if j.Input == "" {
			return fmt.Errorf("job %s: input is required", j.Name)
		}
		if j.Output == "" {
			return fmt.Errorf("job %s: output is required", j.Name)
		}
		if j.UnitsSigma < 0 {
			return fmt.Errorf("job %s: units_sigma must be positive", j.Name)
		}
		switch j.Kind {
		case KindFit:
			if j.Species == "" {
				return fmt.Errorf("job %s: species is required for a fit", j.Name)
			}
		case KindSample:
			if j.Energy <= 0 {
				return fmt.Errorf("job %s: energy must be positive", j.Name)
			}
			if j.Count < 0 {
				return fmt.Errorf("job %s: count must not be negative", j.Name)
			}
		}
	}
	return nil
}
