package engine

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig for one ratio metric
// ============================================================================
// One series per run (thin, dashed), the ensemble mean, and the baseline.
// Missing or undefined values are dropped from a series, not zeroed.
// ============================================================================

// Default color palette for run series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

const (
	baselineColor = "#000000"
	meanColor     = "#DC2626"
)

// BuildComparison produces the comparison chart of metric over window.
// Returns nil when no run has a single finite value in the window.
func BuildComparison(metric string, runs []RunSeries, baseline Baseline, window Period) *ChartConfig {
	years := window.Years()
	if len(years) == 0 {
		return nil
	}

	config := &ChartConfig{
		Title:      LabelForMetric(metric) + " " + window.String(),
		XAxis:      "Year",
		YAxis:      LabelForMetric(metric),
		ShowLegend: true,
		ShowGrid:   true,
	}

	hasData := false
	for i, run := range runs {
		s := ChartSeries{
			Name:  run.Name,
			Style: StyleRun,
			Color: defaultColors[i%len(defaultColors)],
		}
		for _, y := range years {
			if v := run.Value(metric, y); isFinite(v) {
				s.Data = append(s.Data, yearPoint(y, v))
			}
		}
		if len(s.Data) > 0 {
			hasData = true
		}
		config.Series = append(config.Series, s)
	}
	if !hasData {
		return nil
	}

	if mean := buildMeanSeries(metric, runs, years); len(mean.Data) > 0 {
		config.Series = append(config.Series, mean)
	}

	ref := ChartSeries{Name: "Baseline", Style: StyleBaseline, Color: baselineColor}
	for _, y := range years {
		if v, ok := baseline.Value(metric, y); ok {
			ref.Data = append(ref.Data, yearPoint(y, v))
		}
	}
	if len(ref.Data) > 0 {
		config.Series = append(config.Series, ref)
	}
	return config
}

func buildMeanSeries(metric string, runs []RunSeries, years []int) ChartSeries {
	s := ChartSeries{Name: "Mean", Style: StyleMean, Color: meanColor}
	for _, y := range years {
		var vals []float64
		for _, run := range runs {
			if v := run.Value(metric, y); isFinite(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		s.Data = append(s.Data, yearPoint(y, RoundTo2(stat.Mean(vals, nil))))
	}
	return s
}

func yearPoint(year int, v float64) ChartPoint {
	return ChartPoint{Label: strconv.Itoa(year), X: float64(year), Value: v}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
