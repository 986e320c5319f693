package engine

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// BASELINE — Reference care-continuum series
// ============================================================================
// Source: HIV Integrated Epidemiological Profile, Florida, 2019 (Miami).
//
// year    in_care    suppressed_VL    in_care_within_30
// 2014     0.67           0.52            0.64
// 2015     0.68           0.57            0.68
// 2016     0.70           0.59            0.70
// 2017     0.71           0.60            0.79
// 2018     0.72           0.62            0.84
// 2019     0.73           0.62            0.85
// ============================================================================

// ErrInvalidBaseline is returned when a baseline file has no usable series.
var ErrInvalidBaseline = errors.New("engine: invalid baseline")

// Baseline maps a ratio metric to its reference value per calendar year.
type Baseline struct {
	Source string                     `yaml:"source"`
	Series map[string]map[int]float64 `yaml:"series"`
}

// DefaultBaseline returns the Miami care-continuum reference.
func DefaultBaseline() Baseline {
	return Baseline{
		Source: "HIV Integrated Epidemiological Profile, Florida, 2019 (Miami)",
		Series: map[string]map[int]float64{
			RatioInCare: {
				2014: 0.67, 2015: 0.68, 2016: 0.70, 2017: 0.71, 2018: 0.72, 2019: 0.73,
			},
			RatioSuppressedVL: {
				2014: 0.52, 2015: 0.57, 2016: 0.59, 2017: 0.60, 2018: 0.62, 2019: 0.62,
			},
			RatioCareWithin30: {
				2014: 0.64, 2015: 0.68, 2016: 0.70, 2017: 0.79, 2018: 0.84, 2019: 0.85,
			},
		},
	}
}

// DefaultWindow is the comparison window covered by DefaultBaseline.
var DefaultWindow = Period{From: 2014, To: 2019}

// Value returns the reference value for metric in year.
func (b Baseline) Value(metric string, year int) (float64, bool) {
	byYear, ok := b.Series[metric]
	if !ok {
		return 0, false
	}
	v, ok := byYear[year]
	return v, ok
}

// Years lists the years with a reference value for metric, ascending.
func (b Baseline) Years(metric string) []int {
	years := make([]int, 0, len(b.Series[metric]))
	for y := range b.Series[metric] {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LoadBaseline reads a YAML baseline file.
//
//	source: Miami 2019
//	series:
//	  in_care: {2014: 0.67, 2015: 0.68}
//	  supp_vl: {2014: 0.52, 2015: 0.57}
func LoadBaseline(path string) (Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Baseline{}, fmt.Errorf("failed to read baseline: %w", err)
	}
	return ParseBaseline(data)
}

// ParseBaseline decodes YAML baseline bytes.
func ParseBaseline(data []byte) (Baseline, error) {
	var b Baseline
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Baseline{}, fmt.Errorf("failed to parse baseline YAML: %w", err)
	}
	if len(b.Series) == 0 {
		return Baseline{}, fmt.Errorf("%w: no series", ErrInvalidBaseline)
	}
	for metric, byYear := range b.Series {
		if len(byYear) == 0 {
			return Baseline{}, fmt.Errorf("%w: series %q is empty", ErrInvalidBaseline, metric)
		}
	}
	return b, nil
}
