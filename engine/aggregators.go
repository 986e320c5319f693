package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ============================================================================
// AGGREGATORS — Monthly rows → calendar years
// ============================================================================
// Time steps are months. A row closes a year when its time step is a
// multiple of 12. Flow metrics (new diagnoses, enrollments) are summed over
// the months of the year and reset after each year end; stock metrics are
// read from the year-end row.
// ============================================================================

// MonthsPerYear is the number of time steps in one simulated year.
const MonthsPerYear = 12

// Anchor ties a time step to a calendar year.
type Anchor struct {
	Year     int `json:"year"`
	TimeStep int `json:"timeStep"`
}

// DefaultAnchor matches the CDM default of time step 12 being 1990.
var DefaultAnchor = Anchor{Year: 1990, TimeStep: 12}

// CalendarYear converts a time step to its calendar year.
func (a Anchor) CalendarYear(step int) int {
	return a.Year - (a.TimeStep/MonthsPerYear - step/MonthsPerYear)
}

// IsYearEnd reports whether a time step closes a simulated year.
func IsYearEnd(step int) bool {
	return step%MonthsPerYear == 0
}

// YearEnds returns the rows that close a simulated year.
func YearEnds(t Table) Table {
	indices := make([]int, 0, t.Len()/MonthsPerYear+1)
	for i := 0; i < t.Len(); i++ {
		if IsYearEnd(t.TimeStep(i)) {
			indices = append(indices, i)
		}
	}
	return newSubTable(t, indices)
}

// YearlyRows aggregates a monthly table into one row per year end.
// flow lists the metrics summed over the year; every other metric is taken
// from the year-end row.
func YearlyRows(t Table, anchor Anchor, dem Demographic, flow map[string]bool) []YearRow {
	metrics := t.Metrics()
	running := make(map[string]float64, len(flow))

	var rows []YearRow
	for i := 0; i < t.Len(); i++ {
		for m := range flow {
			running[m] += t.Value(i, m, dem)
		}

		step := t.TimeStep(i)
		if !IsYearEnd(step) {
			continue
		}

		totals := make(map[string]float64, len(metrics))
		for _, m := range metrics {
			if flow[m] {
				totals[m] = running[m]
			} else {
				totals[m] = t.Value(i, m, dem)
			}
		}
		rows = append(rows, YearRow{
			Year:     anchor.CalendarYear(step),
			TimeStep: step,
			Totals:   totals,
		})

		for m := range running {
			running[m] = 0
		}
	}
	return rows
}

// MetricValues returns every row's value of a metric for one group.
func MetricValues(t Table, metric string, dem Demographic) []float64 {
	values := make([]float64, t.Len())
	for i := range values {
		values[i] = t.Value(i, metric, dem)
	}
	return values
}

// MinValue returns the smallest value, or NaN for an empty slice.
func MinValue(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Min(values)
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatFraction renders a value with two decimals, "NA" when not finite.
func FormatFraction(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return fmt.Sprintf("%.2f", RoundTo2(v))
}

// LabelForMetric returns the axis label of a ratio metric.
func LabelForMetric(metric string) string {
	switch metric {
	case RatioInCare:
		return "In Care%"
	case RatioSuppressedVL:
		return "Suppressed VL%"
	case RatioCareWithin30:
		return "In Care Within 30 Days%"
	default:
		return metric
	}
}
