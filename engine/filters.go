package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spektr-org/artcheck/schema"
)

// ============================================================================
// DEMOGRAPHIC FILTERS — Collapse a QoI block to one demographic group
// ============================================================================
// A QoI block carries 11 strata. A demographic filter picks the strata that
// make up a group and sums them. TOTAL is the gender split, which covers
// everyone exactly once.
// ============================================================================

// Demographic is a racial/ethnic group used to filter QoI blocks.
type Demographic string

const (
	Total    Demographic = "TOTAL"
	White    Demographic = "WHITE"
	Black    Demographic = "BLACK"
	Hispanic Demographic = "HISPANIC"
	Other    Demographic = "OTHER"
)

// Demographics lists every supported group.
var Demographics = []Demographic{White, Black, Hispanic, Other, Total}

// ErrUnknownDemographic is returned for group names outside Demographics.
var ErrUnknownDemographic = errors.New("engine: unknown demographic type")

var demographicStrata = map[Demographic][]string{
	Total: {schema.StratumMale, schema.StratumFemale},
	White: {schema.StratumWhiteNonHisp, schema.StratumWhiteHisp},
	Black: {schema.StratumBlackNonHisp, schema.StratumBlackHisp},
	Other: {schema.StratumOtherNonHisp, schema.StratumOtherHisp},
	// CDM reports HISPANIC as black + white hispanic; other hispanic is
	// counted under OTHER only.
	Hispanic: {schema.StratumBlackHisp, schema.StratumWhiteHisp},
}

// strataIndex maps a stratum key to its column inside a QoI block.
var strataIndex = func() map[string]int {
	idx := make(map[string]int, len(schema.Strata))
	for i, s := range schema.Strata {
		idx[s] = i
	}
	return idx
}()

// ParseDemographic resolves a case-insensitive group name.
// An empty string selects Total.
func ParseDemographic(s string) (Demographic, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Total, nil
	}
	d := Demographic(s)
	if _, ok := demographicStrata[d]; !ok {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDemographic, s, demographicList())
	}
	return d, nil
}

// Suffix returns the DEMSTR used to namespace output files, e.g. "_WHITE".
func (d Demographic) Suffix() string {
	if d == "" {
		return ""
	}
	return "_" + string(d)
}

// Strata returns the stratum keys that make up the group.
func (d Demographic) Strata() []string {
	return demographicStrata[d]
}

// Sum collapses one QoI block to the group's total.
// The block must hold schema.StrataPerBlock values.
func (d Demographic) Sum(block []float64) float64 {
	var total float64
	for _, s := range d.Strata() {
		total += block[strataIndex[s]]
	}
	return total
}

func demographicList() string {
	names := make([]string, len(Demographics))
	for i, d := range Demographics {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
