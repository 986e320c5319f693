package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/artcheck/engine"
)

func sampleEvaluation(inCare2014 float64) *engine.Evaluation {
	window := engine.Period{From: 2014, To: 2015}
	return &engine.Evaluation{
		Demographic: engine.Total,
		Window:      window,
		Results: []engine.CheckResult{
			{Kind: engine.KindNonNegative, Metric: "infected", Passed: true},
			{Kind: engine.KindBaseline, Metric: engine.RatioInCare, Period: engine.Period{From: 2014, To: 2014}, Passed: false},
			{Kind: engine.KindMonotonic, Metric: engine.RatioInCare, Period: window, Passed: true},
		},
		Observations: []engine.Observation{
			{Metric: engine.RatioInCare, Year: 2014, Value: inCare2014, Baseline: 0.67, HasBaseline: true},
			{Metric: engine.RatioInCare, Year: 2015, Value: math.NaN(), Baseline: 0.68, HasBaseline: true},
			{Metric: engine.RatioSuppressedVL, Year: 2014, Value: 0.5, HasBaseline: false},
		},
	}
}

func TestNames(t *testing.T) {
	plain := Names("out", engine.Total, false)
	assert.Equal(t, filepath.Join("out", "check_summary_passfail.txt"), plain.PassFail)
	assert.Equal(t, filepath.Join("out", "check_summary_numerics.txt"), plain.Numerics)

	white := Names("out", engine.White, true)
	assert.Equal(t, filepath.Join("out", "check_summary_passfail_WHITE.txt"), white.PassFail)
	assert.Equal(t, filepath.Join("out", "check_summary_numerics_WHITE.txt"), white.Numerics)

	total := Names("", engine.Total, true)
	assert.Equal(t, "check_summary_passfail_TOTAL.txt", total.PassFail)
}

func TestWriterFormat(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(Names(dir, engine.Total, false), nil)
	require.NoError(t, w.Write([]Run{
		{File: "run_1/ARTRollOut.xls", Evaluation: sampleEvaluation(0.7)},
	}))

	passfail, err := os.ReadFile(w.Names().PassFail)
	require.NoError(t, err)
	assert.Equal(t, "run_1/ARTRollOut.xls\n"+
		"Check\tMetric\tPeriod\tResult\n"+
		"non_negative\tinfected\t-\tPASS\n"+
		"baseline\tin_care\t2014\tFAIL\n"+
		"monotonic\tin_care\t2014-2015\tPASS\n"+
		"\n", string(passfail))

	numerics, err := os.ReadFile(w.Names().Numerics)
	require.NoError(t, err)
	assert.Equal(t, "run_1/ARTRollOut.xls\n"+
		"Metric\tYear\tObserved\tBaseline\n"+
		"in_care\t2014\t0.70\t0.67\n"+
		"in_care\t2015\tNA\t0.68\n"+
		"supp_vl\t2014\t0.50\tNA\n"+
		"\n", string(numerics))
}

func TestWriterOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(Names(filepath.Join(dir, "nested"), engine.Black, true), nil)
	runs := []Run{
		{File: "a/ARTRollOut.xls", Evaluation: sampleEvaluation(0.7)},
		{File: "b/ARTRollOut.xls", Evaluation: sampleEvaluation(0.6)},
	}

	require.NoError(t, w.Write(runs))
	first, err := os.ReadFile(w.Names().PassFail)
	require.NoError(t, err)

	require.NoError(t, w.Write(runs))
	second, err := os.ReadFile(w.Names().PassFail)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 2, strings.Count(string(second), "Check\tMetric"))
	assert.True(t, strings.HasSuffix(w.Names().PassFail, "_BLACK.txt"))
}

func TestReadNumericsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(Names(dir, engine.Total, false), nil)
	require.NoError(t, w.Write([]Run{
		{File: "a/ARTRollOut.xls", Evaluation: sampleEvaluation(0.7)},
		{File: "b/ARTRollOut.xls", Evaluation: sampleEvaluation(0.6)},
	}))

	n, err := ReadNumericsFile(w.Names().Numerics)
	require.NoError(t, err)
	require.Len(t, n.Runs, 2)

	assert.Equal(t, "a/ARTRollOut.xls", n.Runs[0].Name)
	assert.Equal(t, "b/ARTRollOut.xls", n.Runs[1].Name)
	assert.Equal(t, 0.7, n.Runs[0].Value(engine.RatioInCare, 2014))
	assert.Equal(t, 0.6, n.Runs[1].Value(engine.RatioInCare, 2014))
	assert.True(t, math.IsNaN(n.Runs[0].Value(engine.RatioInCare, 2015)))
	assert.Equal(t, 0.5, n.Runs[0].Value(engine.RatioSuppressedVL, 2014))

	v, ok := n.Baseline.Value(engine.RatioInCare, 2015)
	assert.True(t, ok)
	assert.Equal(t, 0.68, v)
	_, ok = n.Baseline.Value(engine.RatioSuppressedVL, 2014)
	assert.False(t, ok)

	assert.Equal(t, engine.Period{From: 2014, To: 2015}, n.Window)
	assert.Equal(t, w.Names().Numerics, n.Baseline.Source)
}

func TestReadNumericsErrors(t *testing.T) {
	_, err := ReadNumerics(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrEmptyReport)

	_, err = ReadNumerics(strings.NewReader("a.xls\nMetric\tYear\tObserved\tBaseline\nin_care\tsoon\t0.1\t0.2\n"))
	assert.ErrorIs(t, err, ErrMalformedReport)
	assert.Contains(t, err.Error(), "line 3")

	_, err = ReadNumerics(strings.NewReader("a.xls\nheader\nin_care\t2014\t0.1\n"))
	assert.ErrorIs(t, err, ErrMalformedReport)

	_, err = ReadNumericsFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
