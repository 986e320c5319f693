package engine

import (
	"github.com/spektr-org/artcheck/schema"
)

// ── Test Data ─────────────────────────────────────────────────────────────────

// testAnchor puts the 2014 year end at time step 300.
var testAnchor = Anchor{Year: 1990, TimeStep: 12}

// split spreads a total over the 11 strata so that the gender pair and the
// six ethnicity columns each add back up to total.
func split(total float64) []float64 {
	return []float64{
		0.6 * total, 0.4 * total, // male, female
		0.3 * total, 0.1 * total, 0.2 * total, // msm, msmw, msw
		0.3 * total, 0.1 * total, // black
		0.2 * total, 0.2 * total, // white
		0.1 * total, 0.1 * total, // other
	}
}

// monthRecord builds a row whose yearly ratios equal the given values:
// in care and suppressed VL against 1000 detected, 10 new diagnoses a month.
func monthRecord(step int, inCare, suppressed, within30 float64) Record {
	return Record{
		TimeStep:   step,
		Population: 100000,
		Strata: map[string][]float64{
			schema.MetricInfected:     split(1500),
			schema.MetricDetected:     split(1000),
			schema.MetricInCare:       split(inCare * 1000),
			schema.MetricNewDiagnosis: split(10),
			schema.MetricEnrolledIn30: split(within30 * 10),
			schema.MetricSuppressedVL: split(suppressed * 1000),
		},
	}
}

// baselineRecords builds monthly rows from the first month of 2014 through
// the year end of lastYear, sitting exactly on the default baseline.
func baselineRecords(lastYear int) []Record {
	b := DefaultBaseline()
	var records []Record
	for year := 2014; year <= lastYear; year++ {
		end := (year - 1989) * MonthsPerYear
		for step := end - MonthsPerYear + 1; step <= end; step++ {
			inCare, _ := b.Value(RatioInCare, year)
			supp, _ := b.Value(RatioSuppressedVL, year)
			within, _ := b.Value(RatioCareWithin30, year)
			records = append(records, monthRecord(step, inCare, supp, within))
		}
	}
	return records
}

func baselineTable(lastYear int) Table {
	return NewSliceTable(baselineRecords(lastYear), schema.DefaultLayout().MetricKeys()...)
}

// yearEndStep returns the time step closing a calendar year under testAnchor.
func yearEndStep(year int) int {
	return (year - 1989) * MonthsPerYear
}
