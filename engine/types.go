package engine

import (
	"math"
	"strconv"

	"github.com/spektr-org/artcheck/schema"
)

// ============================================================================
// ENGINE TYPES — Records, yearly rows, check results, render-ready output
// ============================================================================

// ============================================================================
// RECORD — One monthly row of an ARTRollOut export
// ============================================================================

// Record is a single monthly data row.
// Strata maps a metric key to its per-stratum values in schema.Strata order.
type Record struct {
	TimeStep   int                  `json:"timeStep"`
	Population float64              `json:"population"`
	Strata     map[string][]float64 `json:"strata"`
}

// ============================================================================
// YEARLY ROW — Year-end aggregate for one demographic group
// ============================================================================

// Ratio metric keys. They double as plot file stems.
const (
	RatioInCare       = "in_care"
	RatioSuppressedVL = "supp_vl"
	RatioCareWithin30 = "in_care_within30"
)

// RatioMetrics lists the care-continuum ratios in report column order.
var RatioMetrics = []string{RatioInCare, RatioSuppressedVL, RatioCareWithin30}

// enrollmentEpsilon keeps the within-30-days ratio finite for years without
// new diagnoses.
const enrollmentEpsilon = 0.0001

// YearRow holds one calendar year of aggregated metrics.
type YearRow struct {
	Year     int                `json:"year"`
	TimeStep int                `json:"timeStep"` // time step of the year-end row
	Totals   map[string]float64 `json:"totals"`
}

// Ratio returns the named care-continuum ratio.
// Unknown names and zero denominators yield NaN.
func (r YearRow) Ratio(name string) float64 {
	switch name {
	case RatioInCare:
		return safeDiv(r.Totals[schema.MetricInCare], r.Totals[schema.MetricDetected])
	case RatioSuppressedVL:
		return safeDiv(r.Totals[schema.MetricSuppressedVL], r.Totals[schema.MetricDetected])
	case RatioCareWithin30:
		return safeDiv(r.Totals[schema.MetricEnrolledIn30], r.Totals[schema.MetricNewDiagnosis]+enrollmentEpsilon)
	default:
		return math.NaN()
	}
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// ============================================================================
// CHECK RESULT — Outcome of one catalog entry
// ============================================================================

// CheckKind names a check family in the catalog.
type CheckKind string

const (
	KindNonNegative CheckKind = "non_negative"
	KindBaseline    CheckKind = "baseline"
	KindMonotonic   CheckKind = "monotonic"
)

// Bound is the accepted interval of a check. Open on both ends for
// baseline checks; Lower only for non-negative checks.
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Period is the year span a check covers. Zero means all time steps.
type Period struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// IsAllTime reports whether the check covered every row.
func (p Period) IsAllTime() bool { return p.From == 0 && p.To == 0 }

// String renders "-" for all time, "2014" for one year, "2014-2019" for a span.
func (p Period) String() string {
	switch {
	case p.IsAllTime():
		return "-"
	case p.From == p.To:
		return strconv.Itoa(p.From)
	default:
		return strconv.Itoa(p.From) + "-" + strconv.Itoa(p.To)
	}
}

// Years lists every year of the period in order.
func (p Period) Years() []int {
	if p.IsAllTime() || p.To < p.From {
		return nil
	}
	years := make([]int, 0, p.To-p.From+1)
	for y := p.From; y <= p.To; y++ {
		years = append(years, y)
	}
	return years
}

// covers reports whether any of years falls inside the period.
func (p Period) covers(years []int) bool {
	for _, y := range years {
		if y >= p.From && y <= p.To {
			return true
		}
	}
	return false
}

// CheckResult records pass/fail plus the numeric evidence of one check.
type CheckResult struct {
	Kind        CheckKind   `json:"kind"`
	Metric      string      `json:"metric"`
	Demographic Demographic `json:"demographic"`
	Period      Period      `json:"period"`
	Passed      bool        `json:"passed"`
	Observed    []float64   `json:"observed"`
	Expected    Bound       `json:"expected"`
}

// Name returns a stable identifier such as "baseline/in_care/2014".
func (c CheckResult) Name() string {
	return string(c.Kind) + "/" + c.Metric + "/" + c.Period.String()
}

// Observation is one metric value reported in the numerics file.
type Observation struct {
	Metric      string  `json:"metric"`
	Year        int     `json:"year"`
	Value       float64 `json:"value"`
	Baseline    float64 `json:"baseline"`
	HasBaseline bool    `json:"hasBaseline"`
}

// ============================================================================
// EVALUATION — Everything produced for one input table
// ============================================================================

// Evaluation is the evaluator's output for one input file.
type Evaluation struct {
	Demographic  Demographic   `json:"demographic"`
	Window       Period        `json:"window"`
	Years        []YearRow     `json:"years"`
	Results      []CheckResult `json:"results"`
	Observations []Observation `json:"observations"`
}

// Passed counts passing results.
func (e *Evaluation) Passed() int {
	n := 0
	for _, r := range e.Results {
		if r.Passed {
			n++
		}
	}
	return n
}

// ============================================================================
// RUN SERIES — Per-file ratio values over the window, used for plots
// ============================================================================

// RunSeries holds one run's ratio values keyed by metric then year.
type RunSeries struct {
	Name   string                     `json:"name"`
	Values map[string]map[int]float64 `json:"values"`
}

// Value returns the run's value for metric in year, NaN when absent.
func (s RunSeries) Value(metric string, year int) float64 {
	if byYear, ok := s.Values[metric]; ok {
		if v, ok := byYear[year]; ok {
			return v
		}
	}
	return math.NaN()
}

// ============================================================================
// CHART TYPES
// ============================================================================

// Series styles understood by the chart renderer.
const (
	StyleRun      = "run"
	StyleBaseline = "baseline"
	StyleMean     = "mean"
)

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Style string       `json:"style"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Value float64 `json:"value"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines a flat text table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"` // header labels
	Rows    [][]string `json:"rows"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is a one-line run summary.
type TextData struct {
	Value        string   `json:"value"`
	Failed       int      `json:"failed"`
	Period       string   `json:"period"`
	FailedChecks []string `json:"failedChecks,omitempty"`
}
