package engine

import "sort"

// ============================================================================
// TABLE VIEW — Read-only access to monthly records
// ============================================================================
// The evaluator never owns reader data. It reads through this interface.
//
// Implementations:
//   SliceTable — wraps []Record (text exports, xlsx workbooks, tests)
//   SubTable   — index subset of a parent table (zero-copy)
// ============================================================================

// Table provides indexed access to the Input Table.
// Value collapses a metric's strata to one demographic group.
type Table interface {
	Len() int
	TimeStep(index int) int
	Value(index int, metric string, dem Demographic) float64
	Metrics() []string // available metric keys
}

// ============================================================================
// SLICE TABLE — wraps []Record
// ============================================================================

// SliceTable wraps a []Record slice as a Table.
type SliceTable struct {
	records []Record
	metrics []string
}

// NewSliceTable creates a Table from a []Record slice.
// Metrics are listed in the order given; with none, they are collected from
// the records.
func NewSliceTable(records []Record, metrics ...string) Table {
	t := &SliceTable{records: records, metrics: metrics}
	if len(t.metrics) == 0 {
		t.cacheMetrics()
	}
	return t
}

func (t *SliceTable) cacheMetrics() {
	seen := make(map[string]bool)
	for _, r := range t.records {
		for k := range r.Strata {
			if !seen[k] {
				seen[k] = true
				t.metrics = append(t.metrics, k)
			}
		}
	}
	sort.Strings(t.metrics)
}

func (t *SliceTable) Len() int { return len(t.records) }

func (t *SliceTable) TimeStep(i int) int {
	if i < 0 || i >= len(t.records) {
		return 0
	}
	return t.records[i].TimeStep
}

func (t *SliceTable) Value(i int, metric string, dem Demographic) float64 {
	if i < 0 || i >= len(t.records) {
		return 0
	}
	block, ok := t.records[i].Strata[metric]
	if !ok {
		return 0
	}
	return dem.Sum(block)
}

func (t *SliceTable) Metrics() []string { return t.metrics }

// ============================================================================
// SUB TABLE — index subset (zero-copy)
// ============================================================================

// SubTable is a subset of a parent Table.
// Holds indices into the parent — no data copy.
type SubTable struct {
	parent  Table
	indices []int
}

func newSubTable(parent Table, indices []int) Table {
	return &SubTable{parent: parent, indices: indices}
}

func (t *SubTable) Len() int { return len(t.indices) }

func (t *SubTable) TimeStep(i int) int {
	if i < 0 || i >= len(t.indices) {
		return 0
	}
	return t.parent.TimeStep(t.indices[i])
}

func (t *SubTable) Value(i int, metric string, dem Demographic) float64 {
	if i < 0 || i >= len(t.indices) {
		return 0
	}
	return t.parent.Value(t.indices[i], metric, dem)
}

func (t *SubTable) Metrics() []string { return t.parent.Metrics() }
