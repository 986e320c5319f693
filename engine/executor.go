package engine

import (
	"math"

	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR — Runs the check catalog over one Input Table
// ============================================================================
// Entry point: Evaluate(table, anchor, demographic, opts...)
//
// Pipeline:
//   1. non_negative — every metric, every monthly row
//   2. Aggregate year ends for the demographic group
//   3. baseline     — every window year × ratio metric
//   4. monotonic    — every ratio metric across the window
//   5. Collect numeric observations for the numerics report
//
// A failing check is recorded and evaluation carries on. The same table and
// options always produce the same Evaluation.
// ============================================================================

// Evaluate runs the full check catalog against a table.
//
// Options:
//   - WithTolerance(tol) — accepted relative deviation (default 0.10)
//   - WithWindow(period) — comparison years (default 2014–2019)
//   - WithBaseline(b)    — reference series (default Miami 2019 profile)
//   - WithLayout(l)      — flow metrics summed over each year
//   - WithLogger(l)      — zap logger (default no-op)
func Evaluate(t Table, anchor Anchor, dem Demographic, opts ...Option) *Evaluation {
	cfg := applyOptions(opts)
	log := cfg.Logger.With(zap.String("demographic", string(dem)))

	eval := &Evaluation{
		Demographic: dem,
		Window:      cfg.Window,
	}

	log.Debug("evaluating table",
		zap.Int("rows", t.Len()),
		zap.Int("year_ends", YearEnds(t).Len()),
		zap.Int("anchor_year", anchor.Year),
		zap.Int("anchor_step", anchor.TimeStep))

	// 1. Range checks on the raw monthly values
	for _, metric := range t.Metrics() {
		values := MetricValues(t, metric, dem)
		passed, lowest := CheckNonNegative(values)
		eval.Results = append(eval.Results, CheckResult{
			Kind:        KindNonNegative,
			Metric:      metric,
			Demographic: dem,
			Passed:      passed,
			Observed:    []float64{lowest},
			Expected:    Bound{Lower: 0, Upper: math.Inf(1)},
		})
	}

	// 2. Year-end aggregation
	eval.Years = YearlyRows(t, anchor, dem, cfg.FlowMetrics)
	byYear := make(map[int]YearRow, len(eval.Years))
	for _, row := range eval.Years {
		byYear[row.Year] = row
	}

	// 3. Baseline deviation per window year
	for _, metric := range RatioMetrics {
		if !cfg.Window.covers(cfg.Baseline.Years(metric)) {
			log.Warn("baseline has no values in window",
				zap.String("metric", metric),
				zap.Stringer("window", cfg.Window))
		}
	}
	for _, year := range cfg.Window.Years() {
		row, found := byYear[year]
		for _, metric := range RatioMetrics {
			observed := math.NaN()
			if found {
				observed = row.Ratio(metric)
			}
			ref, hasRef := cfg.Baseline.Value(metric, year)
			eval.Observations = append(eval.Observations, Observation{
				Metric:      metric,
				Year:        year,
				Value:       observed,
				Baseline:    ref,
				HasBaseline: hasRef,
			})
			if !hasRef {
				continue
			}

			result := CheckResult{
				Kind:        KindBaseline,
				Metric:      metric,
				Demographic: dem,
				Period:      Period{From: year, To: year},
			}
			result.Passed, result.Expected = CheckWithinBaseline(observed, ref, cfg.Tolerance)
			if found {
				result.Observed = []float64{observed}
			}
			eval.Results = append(eval.Results, result)
		}
		if !found {
			log.Warn("window year missing from table", zap.Int("year", year))
		}
	}

	// 4. Monotonic trend across the window
	for _, metric := range RatioMetrics {
		series := eval.Series(metric)
		eval.Results = append(eval.Results, CheckResult{
			Kind:        KindMonotonic,
			Metric:      metric,
			Demographic: dem,
			Period:      cfg.Window,
			Passed:      CheckMonotonic(series),
			Observed:    series,
			Expected:    Bound{Lower: math.Inf(-1), Upper: math.Inf(1)},
		})
	}

	for _, r := range eval.Results {
		if !r.Passed {
			log.Debug("check failed",
				zap.String("check", r.Name()),
				zap.Float64s("observed", r.Observed))
		}
	}
	log.Info("evaluation complete",
		zap.Int("checks", len(eval.Results)),
		zap.Int("passed", eval.Passed()))

	return eval
}

// Series returns a ratio metric's observed values over the window, in year
// order, NaN for missing years.
func (e *Evaluation) Series(metric string) []float64 {
	years := e.Window.Years()
	values := make([]float64, 0, len(years))
	for _, y := range years {
		v := math.NaN()
		for _, o := range e.Observations {
			if o.Metric == metric && o.Year == y {
				v = o.Value
				break
			}
		}
		values = append(values, v)
	}
	return values
}

// RunSeries packages the window observations under a run name for plotting.
func (e *Evaluation) RunSeries(name string) RunSeries {
	rs := RunSeries{Name: name, Values: make(map[string]map[int]float64)}
	for _, o := range e.Observations {
		if rs.Values[o.Metric] == nil {
			rs.Values[o.Metric] = make(map[int]float64)
		}
		rs.Values[o.Metric][o.Year] = o.Value
	}
	return rs
}
