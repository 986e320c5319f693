package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/artcheck/chart"
	"github.com/spektr-org/artcheck/config"
	"github.com/spektr-org/artcheck/engine"
	"github.com/spektr-org/artcheck/helpers"
	"github.com/spektr-org/artcheck/locator"
	"github.com/spektr-org/artcheck/report"
)

// invocation is the parsed positional arguments of the root command.
type invocation struct {
	anchor   engine.Anchor
	root     string
	dem      engine.Demographic
	filtered bool // a demographic argument was given
}

func parseArgs(args []string) (invocation, error) {
	inv := invocation{anchor: engine.DefaultAnchor, root: ".", dem: engine.Total}

	if len(args) > 0 {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return inv, fmt.Errorf("invalid year %q: %w", args[0], err)
		}
		inv.anchor.Year = year
	}
	if len(args) > 1 {
		step, err := strconv.Atoi(args[1])
		if err != nil {
			return inv, fmt.Errorf("invalid time step %q: %w", args[1], err)
		}
		inv.anchor.TimeStep = step
	}
	if len(args) > 2 {
		inv.root = args[2]
	}
	if len(args) > 3 {
		dem, err := engine.ParseDemographic(args[3])
		if err != nil {
			return inv, err
		}
		inv.dem = dem
		inv.filtered = true
	}
	return inv, nil
}

// loadConfig applies flags over the file and environment settings.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = c.outDir
	}
	if cmd.Flags().Changed("plot-format") {
		cfg.Output.PlotFormat = c.plotFormat
	}
	if c.noPlots {
		cfg.Output.Plots = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runChecks: locate -> read -> evaluate -> write reports -> plot.
func (c *cli) runChecks(cmd *cobra.Command, args []string) error {
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	baseline, err := cfg.Baseline()
	if err != nil {
		return err
	}

	files, err := locator.Find(inv.root, cfg.Input.Pattern)
	if err != nil {
		return err
	}
	c.logger.Info("found input files",
		zap.String("root", inv.root),
		zap.Int("count", len(files)),
		zap.String("demographic", string(inv.dem)))

	opts := []engine.Option{
		engine.WithTolerance(cfg.Tolerance),
		engine.WithWindow(cfg.Period()),
		engine.WithBaseline(baseline),
		engine.WithLayout(layout),
		engine.WithLogger(c.logger),
	}

	runs := make([]report.Run, 0, len(files))
	series := make([]engine.RunSeries, 0, len(files))
	for _, file := range files {
		table, err := helpers.ReadRollOut(file, layout)
		if err != nil {
			return err
		}
		eval := engine.Evaluate(table, inv.anchor, inv.dem, opts...)

		runs = append(runs, report.Run{File: file, Evaluation: eval})
		series = append(series, eval.RunSeries(runName(inv.root, file)))

		text := engine.BuildText(eval)
		fmt.Fprintf(c.out, "%s: %s (%s)\n", file, text.Value, text.Period)
		if text.Failed > 0 {
			for _, name := range text.FailedChecks {
				fmt.Fprintf(c.out, "  FAIL %s\n", name)
			}
		}
	}

	writer := report.NewWriter(report.Names(cfg.Output.Dir, inv.dem, inv.filtered), c.logger)
	if err := writer.Write(runs); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "wrote %s\nwrote %s\n", writer.Names().PassFail, writer.Names().Numerics)

	if !cfg.Output.Plots {
		return nil
	}
	return c.plot(cfg, suffix(inv), series, baseline, cfg.Period())
}

// runReplot re-renders the plots of a numerics report.
func (c *cli) runReplot(cmd *cobra.Command, args []string) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := report.ReadNumericsFile(args[0])
	if err != nil {
		return err
	}

	inv := invocation{dem: engine.Total}
	if len(args) > 1 {
		if inv.dem, err = engine.ParseDemographic(args[1]); err != nil {
			return err
		}
		inv.filtered = true
	}

	baseline := n.Baseline
	if len(baseline.Series) == 0 || cfg.BaselineFile != "" {
		if baseline, err = cfg.Baseline(); err != nil {
			return err
		}
	}
	c.logger.Info("replotting numerics report",
		zap.String("file", args[0]),
		zap.Int("runs", len(n.Runs)))

	return c.plot(cfg, suffix(inv), n.Runs, baseline, n.Window)
}

func (c *cli) plot(cfg *config.Config, suffix string, series []engine.RunSeries, baseline engine.Baseline, window engine.Period) error {
	pl := chart.Plotter{
		Dir:    cfg.Output.Dir,
		Suffix: suffix,
		Format: cfg.Output.PlotFormat,
		Logger: c.logger,
	}
	written, err := pl.RenderAll(series, baseline, window)
	for _, path := range written {
		fmt.Fprintf(c.out, "wrote %s\n", path)
	}
	return err
}

func suffix(inv invocation) string {
	if !inv.filtered {
		return ""
	}
	return inv.dem.Suffix()
}

// runName labels a run by its directory relative to the batch root.
func runName(root, file string) string {
	dir := filepath.Dir(file)
	if rel, err := filepath.Rel(root, dir); err == nil && rel != "." {
		return rel
	}
	return filepath.Base(file)
}
