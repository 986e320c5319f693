package engine

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/artcheck/schema"
)

// 6 non_negative + 6 years × 3 baseline + 3 monotonic
const fullCatalog = 6 + 18 + 3

func TestAnchorCalendarYear(t *testing.T) {
	a := Anchor{Year: 1990, TimeStep: 600}
	assert.Equal(t, 1990, a.CalendarYear(600))
	assert.Equal(t, 1990, a.CalendarYear(611))
	assert.Equal(t, 1989, a.CalendarYear(588))
	assert.Equal(t, 2014, a.CalendarYear(888))

	assert.Equal(t, 2014, testAnchor.CalendarYear(yearEndStep(2014)))
	assert.True(t, IsYearEnd(0))
	assert.True(t, IsYearEnd(300))
	assert.False(t, IsYearEnd(301))
}

func TestYearlyRowsSumsFlowMetrics(t *testing.T) {
	table := baselineTable(2015)
	assert.Equal(t, 2, YearEnds(table).Len())

	flow := map[string]bool{schema.MetricNewDiagnosis: true, schema.MetricEnrolledIn30: true}
	rows := YearlyRows(table, testAnchor, Total, flow)
	require.Len(t, rows, 2)

	assert.Equal(t, 2014, rows[0].Year)
	assert.Equal(t, yearEndStep(2014), rows[0].TimeStep)
	assert.Equal(t, 2015, rows[1].Year)

	for _, r := range rows {
		assert.InDelta(t, 120, r.Totals[schema.MetricNewDiagnosis], 1e-9, "12 months × 10, reset each year")
		assert.InDelta(t, 1000, r.Totals[schema.MetricDetected], 1e-9, "stock read at year end")
	}
	assert.InDelta(t, 0.67, rows[0].Ratio(RatioInCare), 1e-9)
	assert.InDelta(t, 0.57, rows[1].Ratio(RatioSuppressedVL), 1e-9)
	assert.InDelta(t, 0.68, rows[1].Ratio(RatioCareWithin30), 1e-5)
	assert.True(t, math.IsNaN(rows[0].Ratio("unknown")))
}

func TestYearRowRatioZeroDetected(t *testing.T) {
	row := YearRow{Totals: map[string]float64{schema.MetricInCare: 5}}
	assert.True(t, math.IsNaN(row.Ratio(RatioInCare)))
	assert.Equal(t, 0.0, row.Ratio(RatioCareWithin30), "epsilon keeps the ratio defined")
}

func TestEvaluateAllPass(t *testing.T) {
	eval := Evaluate(baselineTable(2019), testAnchor, Total)

	require.Len(t, eval.Results, fullCatalog)
	assert.Equal(t, fullCatalog, eval.Passed())
	assert.Len(t, eval.Observations, 18)
	assert.Len(t, eval.Years, 6)

	// Catalog order: range checks, then baseline per year, then trends.
	assert.Equal(t, KindNonNegative, eval.Results[0].Kind)
	assert.Equal(t, schema.MetricInfected, eval.Results[0].Metric)
	assert.Equal(t, "baseline/in_care/2014", eval.Results[6].Name())
	assert.Equal(t, "baseline/supp_vl/2014", eval.Results[7].Name())
	assert.Equal(t, "monotonic/in_care_within30/2014-2019", eval.Results[fullCatalog-1].Name())
}

func TestEvaluateRecordsFailuresAndContinues(t *testing.T) {
	records := baselineRecords(2019)
	for i := range records {
		if records[i].TimeStep == yearEndStep(2016) {
			records[i].Strata[schema.MetricInCare] = split(400) // 0.40 vs 0.70
		}
	}
	table := NewSliceTable(records, schema.DefaultLayout().MetricKeys()...)

	eval := Evaluate(table, testAnchor, Total)
	require.Len(t, eval.Results, fullCatalog, "a failure never stops the catalog")

	var failed []string
	for _, r := range eval.Results {
		if !r.Passed {
			failed = append(failed, r.Name())
		}
	}
	assert.Equal(t, []string{"baseline/in_care/2016", "monotonic/in_care/2014-2019"}, failed)

	for _, r := range eval.Results {
		if r.Name() == "baseline/in_care/2016" {
			require.Len(t, r.Observed, 1)
			assert.InDelta(t, 0.40, r.Observed[0], 1e-9)
			assert.InDelta(t, 0.63, r.Expected.Lower, 1e-9)
			assert.InDelta(t, 0.77, r.Expected.Upper, 1e-9)
		}
	}
}

func TestEvaluateNonNegativePerDemographic(t *testing.T) {
	records := baselineRecords(2019)
	block := split(1500)
	block[9] = -500 // other non-hispanic
	records[3].Strata[schema.MetricInfected] = block
	table := NewSliceTable(records, schema.DefaultLayout().MetricKeys()...)

	total := Evaluate(table, testAnchor, Total)
	assert.True(t, total.Results[0].Passed, "gender split is untouched")

	other := Evaluate(table, testAnchor, Other)
	first := other.Results[0]
	assert.Equal(t, KindNonNegative, first.Kind)
	assert.False(t, first.Passed)
	assert.InDelta(t, -500+0.1*1500, first.Observed[0], 1e-9)
	assert.Equal(t, Other, first.Demographic)
}

func TestEvaluateMissingWindowYear(t *testing.T) {
	eval := Evaluate(baselineTable(2018), testAnchor, Total)
	require.Len(t, eval.Results, fullCatalog)

	for _, r := range eval.Results {
		switch {
		case r.Kind == KindBaseline && r.Period.From == 2019:
			assert.False(t, r.Passed, r.Name())
			assert.Empty(t, r.Observed, r.Name())
		case r.Kind == KindMonotonic:
			assert.False(t, r.Passed, r.Name())
		default:
			assert.True(t, r.Passed, r.Name())
		}
	}
	assert.True(t, math.IsNaN(eval.Series(RatioInCare)[5]))
}

func TestEvaluateOptions(t *testing.T) {
	b := Baseline{Series: map[string]map[int]float64{
		RatioInCare: {2014: 0.70, 2015: 0.80},
	}}
	eval := Evaluate(baselineTable(2015), testAnchor, Total,
		WithBaseline(b),
		WithWindow(Period{From: 2014, To: 2015}),
		WithTolerance(0.05),
		WithLayout(schema.DefaultLayout()),
		WithLogger(nil),
	)

	var baselineChecks []CheckResult
	for _, r := range eval.Results {
		if r.Kind == KindBaseline {
			baselineChecks = append(baselineChecks, r)
		}
	}
	require.Len(t, baselineChecks, 2, "only metrics with a reference are checked")
	assert.True(t, baselineChecks[0].Passed, "0.67 inside 0.665–0.735")
	assert.False(t, baselineChecks[1].Passed, "0.68 outside 0.76–0.84")
}

func TestEvaluateIsDeterministic(t *testing.T) {
	records := baselineRecords(2018)
	records[0].Strata[schema.MetricDetected] = split(-1)
	table := NewSliceTable(records, schema.DefaultLayout().MetricKeys()...)

	first := Evaluate(table, testAnchor, White)
	second := Evaluate(table, testAnchor, White)
	if diff := cmp.Diff(first, second, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("Evaluate not deterministic (-first +second):\n%s", diff)
	}
}

func TestRunSeries(t *testing.T) {
	eval := Evaluate(baselineTable(2019), testAnchor, Total)
	rs := eval.RunSeries("run-1")
	assert.Equal(t, "run-1", rs.Name)
	assert.InDelta(t, 0.73, rs.Value(RatioInCare, 2019), 1e-9)
	assert.True(t, math.IsNaN(rs.Value(RatioInCare, 2030)))
	assert.True(t, math.IsNaN(rs.Value("unknown", 2019)))
}
