package engine

import "math"

// ============================================================================
// CHECKS — Pure pass/fail rules
// ============================================================================
// Each rule maps a value (or a short series) to pass/fail plus evidence.
// NaN never passes: a missing year or an undefined ratio is a failure.
// ============================================================================

// DefaultTolerance is the accepted relative deviation from the baseline.
const DefaultTolerance = 0.10

// CheckNonNegative fails iff any value is strictly negative.
// It returns the smallest value as evidence.
func CheckNonNegative(values []float64) (bool, float64) {
	if len(values) == 0 {
		return true, math.NaN()
	}
	lowest := MinValue(values)
	for _, v := range values {
		if math.IsNaN(v) {
			return false, lowest
		}
	}
	return lowest >= 0, lowest
}

// BaselineBound returns the open interval baseline ± tolerance·baseline.
func BaselineBound(baseline, tolerance float64) Bound {
	lo := baseline - tolerance*baseline
	hi := baseline + tolerance*baseline
	if lo > hi {
		lo, hi = hi, lo
	}
	return Bound{Lower: lo, Upper: hi}
}

// CheckWithinBaseline passes iff observed lies strictly inside the bound.
func CheckWithinBaseline(observed, baseline, tolerance float64) (bool, Bound) {
	b := BaselineBound(baseline, tolerance)
	return b.Lower < observed && observed < b.Upper, b
}

// CheckMonotonic fails iff any later value is strictly less than an earlier
// one, or any value is NaN.
func CheckMonotonic(values []float64) bool {
	highest := math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || v < highest {
			return false
		}
		highest = v
	}
	return true
}
