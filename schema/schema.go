package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// LAYOUT — Describes the shape of an ARTRollOut data row
// ============================================================================
// Every data row of an ARTRollOut export is a flat list of numbers:
//   [time step, population, ..., QoI block, QoI block, ...]
// Each QoI block holds StrataPerBlock columns in Strata order.
// helpers uses the layout to slice rows; engine uses metric keys to look
// values up.
// ============================================================================

// Metric keys of the default layout.
const (
	MetricInfected     = "infected"
	MetricDetected     = "detected"
	MetricInCare       = "in_care"
	MetricNewDiagnosis = "new_diagnosis"
	MetricEnrolledIn30 = "enrolled_in_30"
	MetricSuppressedVL = "suppressed_vl"
)

// Stratum keys, in column order inside a QoI block.
const (
	StratumMale         = "male"
	StratumFemale       = "female"
	StratumMSM          = "msm"
	StratumMSMW         = "msmw"
	StratumMSW          = "msw"
	StratumBlackNonHisp = "black_non_hispanic"
	StratumBlackHisp    = "black_hispanic"
	StratumWhiteNonHisp = "white_non_hispanic"
	StratumWhiteHisp    = "white_hispanic"
	StratumOtherNonHisp = "other_non_hispanic"
	StratumOtherHisp    = "other_hispanic"
)

// Strata lists the stratum keys of a QoI block in column order:
// gender [0:2], orientation [2:5], ethnicity [5:11].
var Strata = []string{
	StratumMale, StratumFemale,
	StratumMSM, StratumMSMW, StratumMSW,
	StratumBlackNonHisp, StratumBlackHisp,
	StratumWhiteNonHisp, StratumWhiteHisp,
	StratumOtherNonHisp, StratumOtherHisp,
}

// StrataPerBlock is the number of columns in one QoI block.
const StrataPerBlock = 11

// ErrInvalidLayout is returned when a layout cannot describe a data row.
var ErrInvalidLayout = errors.New("schema: invalid layout")

// Layout describes where values live in one ARTRollOut data row.
type Layout struct {
	Name             string        `yaml:"name"`
	TimeColumn       int           `yaml:"time_column"`
	PopulationColumn int           `yaml:"population_column"`
	DataStartLine    int           `yaml:"data_start_line"` // zero-based index of the first data line
	Sheet            string        `yaml:"sheet,omitempty"` // xlsx only; empty = first sheet
	Metrics          []MetricBlock `yaml:"metrics"`
}

// MetricBlock is one QoI block of StrataPerBlock columns.
type MetricBlock struct {
	Key         string `yaml:"key"`
	DisplayName string `yaml:"display_name"`
	Offset      int    `yaml:"offset"`
	// Flow metrics are monthly counts summed over the year; stock metrics are
	// read at the year-end row.
	Flow bool `yaml:"flow,omitempty"`
}

// DefaultLayout returns the layout written by the CDM ARTRollOut exporter.
func DefaultLayout() Layout {
	return Layout{
		Name:             "ARTRollOut",
		TimeColumn:       0,
		PopulationColumn: 1,
		DataStartLine:    4,
		Metrics: []MetricBlock{
			{Key: MetricInfected, DisplayName: "Infected", Offset: 6},
			{Key: MetricDetected, DisplayName: "Detected", Offset: 17},
			{Key: MetricInCare, DisplayName: "In Care", Offset: 28},
			{Key: MetricNewDiagnosis, DisplayName: "New Diagnosis", Offset: 39, Flow: true},
			{Key: MetricEnrolledIn30, DisplayName: "Enrolled Within 30 Days", Offset: 50, Flow: true},
			{Key: MetricSuppressedVL, DisplayName: "Suppressed VL", Offset: 61},
		},
	}
}

// Width returns the minimum number of columns a data row must carry.
func (l Layout) Width() int {
	w := l.TimeColumn + 1
	if l.PopulationColumn+1 > w {
		w = l.PopulationColumn + 1
	}
	for _, m := range l.Metrics {
		if end := m.Offset + StrataPerBlock; end > w {
			w = end
		}
	}
	return w
}

// MetricKeys returns all metric keys in layout order.
func (l Layout) MetricKeys() []string {
	keys := make([]string, len(l.Metrics))
	for i, m := range l.Metrics {
		keys[i] = m.Key
	}
	return keys
}

// Columns lists every column index the layout reads: time, population, then
// each block's strata in order. Columns outside the list are ignored.
func (l Layout) Columns() []int {
	cols := make([]int, 0, 2+len(l.Metrics)*StrataPerBlock)
	cols = append(cols, l.TimeColumn, l.PopulationColumn)
	for _, m := range l.Metrics {
		for s := 0; s < StrataPerBlock; s++ {
			cols = append(cols, m.Offset+s)
		}
	}
	return cols
}

// Validate checks that the layout can be applied to a row.
func (l Layout) Validate() error {
	if l.TimeColumn < 0 || l.PopulationColumn < 0 || l.DataStartLine < 0 {
		return fmt.Errorf("%w: negative column or line index", ErrInvalidLayout)
	}
	if len(l.Metrics) == 0 {
		return fmt.Errorf("%w: no metrics", ErrInvalidLayout)
	}
	seen := make(map[string]bool, len(l.Metrics))
	for _, m := range l.Metrics {
		if m.Key == "" {
			return fmt.Errorf("%w: metric without key", ErrInvalidLayout)
		}
		if seen[m.Key] {
			return fmt.Errorf("%w: duplicate metric %q", ErrInvalidLayout, m.Key)
		}
		seen[m.Key] = true
		if m.Offset < 0 {
			return fmt.Errorf("%w: metric %q has negative offset", ErrInvalidLayout, m.Key)
		}
	}
	return nil
}

// LoadLayout reads a YAML layout file. Fields left out keep their defaults.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout: %w", err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes YAML layout bytes on top of DefaultLayout.
func ParseLayout(data []byte) (Layout, error) {
	l := DefaultLayout()
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("failed to parse layout YAML: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}
