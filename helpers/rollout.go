package helpers

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/artcheck/engine"
	"github.com/spektr-org/artcheck/schema"
)

// ============================================================================
// ROLLOUT HELPER — Parses ARTRollOut exports into []engine.Record
// ============================================================================
// The CDM writes "ARTRollOut.xls" as whitespace-separated text, not as a
// real workbook. Files that are actual OOXML workbooks (.xlsx) are read with
// excelize. Legacy BIFF workbooks are rejected.
// Both encodings skip layout.DataStartLine header lines, then slice every
// row through the layout.
// ============================================================================

var (
	// ErrUnsupportedFormat is returned for legacy binary .xls workbooks.
	ErrUnsupportedFormat = errors.New("helpers: unsupported spreadsheet format")
	// ErrMalformedRow is returned when a data row is shorter than the layout.
	ErrMalformedRow = errors.New("helpers: malformed data row")
	// ErrNoRows is returned when a file holds no data rows.
	ErrNoRows = errors.New("helpers: no data rows")
)

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Format is the detected encoding of an input file.
type Format string

const (
	FormatText     Format = "text"
	FormatWorkbook Format = "xlsx"
	FormatBIFF     Format = "biff"
)

// DetectFormat sniffs the encoding from the leading bytes.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatWorkbook
	case bytes.HasPrefix(data, ole2Magic):
		return FormatBIFF
	default:
		return FormatText
	}
}

// ReadRollOut reads one ARTRollOut file into a table with metrics in layout
// order.
func ReadRollOut(path string, layout schema.Layout) (engine.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	table, err := ParseRollOutTable(data, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ParseRollOut parses ARTRollOut bytes in any supported encoding.
func ParseRollOut(data []byte, layout schema.Layout) ([]engine.Record, error) {
	switch DetectFormat(data) {
	case FormatWorkbook:
		rows, err := workbookRows(data, layout.Sheet)
		if err != nil {
			return nil, err
		}
		return parseRows(rows, layout, cellValues)
	case FormatBIFF:
		return nil, fmt.Errorf("%w: binary .xls workbook, export as text or .xlsx", ErrUnsupportedFormat)
	default:
		rows, err := textRows(data)
		if err != nil {
			return nil, err
		}
		return parseRows(rows, layout, fieldValues)
	}
}

// ParseRollOutTable parses bytes into an engine.Table with metrics in layout
// order.
func ParseRollOutTable(data []byte, layout schema.Layout) (engine.Table, error) {
	records, err := ParseRollOut(data, layout)
	if err != nil {
		return nil, err
	}
	return engine.NewSliceTable(records, layout.MetricKeys()...), nil
}

// ============================================================================
// ENCODINGS
// ============================================================================

// textRows splits a text export into whitespace-separated fields per line.
func textRows(data []byte) ([][]string, error) {
	var rows [][]string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		rows = append(rows, strings.Fields(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan text export: %w", err)
	}
	return rows, nil
}

// workbookRows reads every row of one sheet, the first sheet when empty.
func workbookRows(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// ============================================================================
// ROW PARSING
// ============================================================================
// Text rows are whitespace separated, so only their numeric fields count and
// position is taken from the order of those numbers. Workbook rows are
// positional: each layout column is read from its own cell.
// ============================================================================

// rowDecoder turns one raw row into values indexed by column. ok is false for
// rows without data (blank lines, labels).
type rowDecoder func(cells []string, layout schema.Layout) (values []float64, ok bool, err error)

func parseRows(rows [][]string, layout schema.Layout, decode rowDecoder) ([]engine.Record, error) {
	var records []engine.Record
	for i := layout.DataStartLine; i < len(rows); i++ {
		values, ok, err := decode(rows[i], layout)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !ok {
			continue
		}

		rec := engine.Record{
			TimeStep:   int(values[layout.TimeColumn]),
			Population: values[layout.PopulationColumn],
			Strata:     make(map[string][]float64, len(layout.Metrics)),
		}
		for _, m := range layout.Metrics {
			block := make([]float64, schema.StrataPerBlock)
			copy(block, values[m.Offset:m.Offset+schema.StrataPerBlock])
			rec.Strata[m.Key] = block
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

// fieldValues decodes a text row. Labels are dropped before positions are
// counted.
func fieldValues(fields []string, layout schema.Layout) ([]float64, bool, error) {
	values := numericFields(fields)
	if len(values) == 0 {
		return nil, false, nil
	}
	if width := layout.Width(); len(values) < width {
		return nil, false, fmt.Errorf("%w: %d values, want at least %d",
			ErrMalformedRow, len(values), width)
	}
	return values, true, nil
}

// cellValues decodes a workbook row cell by cell. A row with no numeric cell
// is skipped; otherwise every column the layout reads must hold a number.
func cellValues(cells []string, layout schema.Layout) ([]float64, bool, error) {
	if len(numericFields(cells)) == 0 {
		return nil, false, nil
	}

	values := make([]float64, layout.Width())
	for _, col := range layout.Columns() {
		cell := ""
		if col < len(cells) {
			cell = strings.TrimSpace(cells[col])
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		if cell == "" {
			return nil, false, fmt.Errorf("%w: column %s is empty", ErrMalformedRow, name)
		}
		v, ok := parseNumber(cell)
		if !ok {
			return nil, false, fmt.Errorf("%w: column %s holds %q", ErrMalformedRow, name, cell)
		}
		values[col] = v
	}
	return values, true, nil
}

// numericFields keeps the fields that parse as finite numbers, in order.
// Labels and empty cells are dropped.
func numericFields(fields []string) []float64 {
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		if v, ok := parseNumber(strings.TrimSpace(f)); ok {
			values = append(values, v)
		}
	}
	return values
}

// parseNumber accepts finite numbers only; "Inf" and "NaN" read as labels.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
