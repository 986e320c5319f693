package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER — One-line summary of an Evaluation
// ============================================================================

// BuildText summarizes an evaluation, e.g. "22/24 checks passed".
func BuildText(eval *Evaluation) *TextData {
	passed := eval.Passed()
	total := len(eval.Results)

	var failed []string
	for _, r := range eval.Results {
		if !r.Passed {
			failed = append(failed, r.Name())
		}
	}

	return &TextData{
		Value:        fmt.Sprintf("%d/%d checks passed", passed, total),
		Failed:       total - passed,
		Period:       DerivePeriod(eval.Years),
		FailedChecks: failed,
	}
}

// DerivePeriod builds a human-readable span of the simulated years.
func DerivePeriod(rows []YearRow) string {
	if len(rows) == 0 {
		return "No data"
	}
	earliest, latest := rows[0].Year, rows[0].Year
	for _, r := range rows[1:] {
		if r.Year < earliest {
			earliest = r.Year
		}
		if r.Year > latest {
			latest = r.Year
		}
	}
	if earliest == latest {
		return fmt.Sprintf("%d", earliest)
	}
	return fmt.Sprintf("%d – %d", earliest, latest)
}
