package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces the report tables of one Evaluation
// ============================================================================
// Pass/fail table: one row per check.
// Numerics table:  one row per metric observation.
// ============================================================================

// Result labels written to the pass/fail report.
const (
	LabelPass = "PASS"
	LabelFail = "FAIL"
)

// BuildPassFailTable produces one row per check result, in catalog order.
func BuildPassFailTable(title string, eval *Evaluation) *TableData {
	columns := []string{"Check", "Metric", "Period", "Result"}

	rows := make([][]string, 0, len(eval.Results))
	for _, r := range eval.Results {
		rows = append(rows, []string{
			string(r.Kind),
			r.Metric,
			r.Period.String(),
			PassFail(r.Passed),
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
	}
}

// BuildNumericsTable produces one row per observation with two-decimal
// values. Years without a reference show "NA" in the baseline column.
func BuildNumericsTable(title string, eval *Evaluation) *TableData {
	columns := []string{"Metric", "Year", "Observed", "Baseline"}

	rows := make([][]string, 0, len(eval.Observations))
	for _, o := range eval.Observations {
		ref := "NA"
		if o.HasBaseline {
			ref = FormatFraction(o.Baseline)
		}
		rows = append(rows, []string{
			o.Metric,
			fmt.Sprintf("%d", o.Year),
			FormatFraction(o.Value),
			ref,
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
	}
}

// PassFail maps a check outcome to its report label.
func PassFail(passed bool) string {
	if passed {
		return LabelPass
	}
	return LabelFail
}
