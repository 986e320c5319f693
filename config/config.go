// Package config loads artcheck settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/artcheck/chart"
	"github.com/spektr-org/artcheck/engine"
	"github.com/spektr-org/artcheck/locator"
	"github.com/spektr-org/artcheck/schema"
)

// Environment overrides.
const (
	EnvOutputDir  = "ARTCHECK_OUTPUT_DIR"
	EnvPlotFormat = "ARTCHECK_PLOT_FORMAT"
	EnvTolerance  = "ARTCHECK_TOLERANCE"
)

// ErrInvalidConfig is returned by Validate and by bad environment values.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all artcheck configuration.
type Config struct {
	// Check settings
	Window    WindowConfig `yaml:"window"`
	Tolerance float64      `yaml:"tolerance"`

	// Input discovery and parsing
	Input InputConfig `yaml:"input"`

	// Output settings
	Output OutputConfig `yaml:"output"`

	// Optional reference files, relative to the working directory
	BaselineFile string `yaml:"baseline_file"`
	LayoutFile   string `yaml:"layout_file"`
}

// WindowConfig is the inclusive range of comparison years.
type WindowConfig struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// InputConfig configures file discovery and parsing.
type InputConfig struct {
	Pattern       string `yaml:"pattern"`
	DataStartLine *int   `yaml:"data_start_line"` // nil keeps the layout's value
	Sheet         string `yaml:"sheet"`           // xlsx only; empty reads the first sheet
}

// OutputConfig configures reports and plots.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	PlotFormat string `yaml:"plot_format"` // pdf, png, svg
	Plots      bool   `yaml:"plots"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			From: engine.DefaultWindow.From,
			To:   engine.DefaultWindow.To,
		},
		Tolerance: engine.DefaultTolerance,
		Input: InputConfig{
			Pattern: locator.DefaultPattern,
		},
		Output: OutputConfig{
			Dir:        ".",
			PlotFormat: chart.DefaultFormat,
			Plots:      true,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		c.Output.Dir = dir
	}
	if format := os.Getenv(EnvPlotFormat); format != "" {
		c.Output.PlotFormat = format
	}
	if tol := os.Getenv(EnvTolerance); tol != "" {
		v, err := strconv.ParseFloat(tol, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvTolerance, tol)
		}
		c.Tolerance = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Window.To < c.Window.From || c.Window.From <= 0 {
		return fmt.Errorf("%w: window %d-%d", ErrInvalidConfig, c.Window.From, c.Window.To)
	}
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("%w: tolerance %g not in (0, 1)", ErrInvalidConfig, c.Tolerance)
	}
	if c.Input.DataStartLine != nil && *c.Input.DataStartLine < 0 {
		return fmt.Errorf("%w: data_start_line %d", ErrInvalidConfig, *c.Input.DataStartLine)
	}
	if _, err := chart.ParseFormat(c.Output.PlotFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Period returns the comparison window.
func (c *Config) Period() engine.Period {
	return engine.Period{From: c.Window.From, To: c.Window.To}
}

// Layout returns the input layout with the configured overrides applied.
func (c *Config) Layout() (schema.Layout, error) {
	layout := schema.DefaultLayout()
	if c.LayoutFile != "" {
		var err error
		if layout, err = schema.LoadLayout(c.LayoutFile); err != nil {
			return schema.Layout{}, err
		}
	}
	if c.Input.DataStartLine != nil {
		layout.DataStartLine = *c.Input.DataStartLine
	}
	if c.Input.Sheet != "" {
		layout.Sheet = c.Input.Sheet
	}
	return layout, layout.Validate()
}

// Baseline returns the reference series, from BaselineFile when set.
func (c *Config) Baseline() (engine.Baseline, error) {
	if c.BaselineFile == "" {
		return engine.DefaultBaseline(), nil
	}
	return engine.LoadBaseline(c.BaselineFile)
}
