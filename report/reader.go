package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spektr-org/artcheck/engine"
)

var (
	// ErrMalformedReport is returned when a numerics report cannot be parsed.
	ErrMalformedReport = errors.New("report: malformed numerics report")
	// ErrEmptyReport is returned when a numerics report holds no runs.
	ErrEmptyReport = errors.New("report: empty numerics report")
)

// Numerics is a numerics report read back from disk.
type Numerics struct {
	Runs     []engine.RunSeries
	Baseline engine.Baseline
	Window   engine.Period
}

// ReadNumericsFile opens and parses a numerics report.
func ReadNumericsFile(path string) (*Numerics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open numerics report: %w", err)
	}
	defer f.Close()

	n, err := ReadNumerics(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	n.Baseline.Source = path
	return n, nil
}

// ReadNumerics parses the block format written by Writer. Each block becomes
// one RunSeries named after its path line. Baseline values are merged across
// blocks; the first value seen for a metric and year wins.
func ReadNumerics(r io.Reader) (*Numerics, error) {
	n := &Numerics{
		Baseline: engine.Baseline{Series: make(map[string]map[int]float64)},
	}

	var (
		current *engine.RunSeries
		header  bool
		lineNo  int
	)
	flush := func() {
		if current != nil {
			n.Runs = append(n.Runs, *current)
			current = nil
		}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case current == nil:
			current = &engine.RunSeries{Name: line, Values: make(map[string]map[int]float64)}
			header = true
		case header:
			header = false
		default:
			if err := n.addRow(current, line); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedReport, lineNo, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read numerics report: %w", err)
	}
	flush()

	if len(n.Runs) == 0 {
		return nil, ErrEmptyReport
	}
	return n, nil
}

func (n *Numerics) addRow(run *engine.RunSeries, line string) error {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return fmt.Errorf("want 4 fields, got %d", len(fields))
	}

	metric := fields[0]
	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad year %q", fields[1])
	}
	observed, err := parseFraction(fields[2])
	if err != nil {
		return err
	}
	ref, err := parseFraction(fields[3])
	if err != nil {
		return err
	}

	if run.Values[metric] == nil {
		run.Values[metric] = make(map[int]float64)
	}
	run.Values[metric][year] = observed

	if !math.IsNaN(ref) {
		if n.Baseline.Series[metric] == nil {
			n.Baseline.Series[metric] = make(map[int]float64)
		}
		if _, seen := n.Baseline.Series[metric][year]; !seen {
			n.Baseline.Series[metric][year] = ref
		}
	}
	n.extendWindow(year)
	return nil
}

func (n *Numerics) extendWindow(year int) {
	if n.Window.IsAllTime() {
		n.Window = engine.Period{From: year, To: year}
		return
	}
	if year < n.Window.From {
		n.Window.From = year
	}
	if year > n.Window.To {
		n.Window.To = year
	}
}

// parseFraction reads a two-decimal value; "NA" reads as NaN.
func parseFraction(s string) (float64, error) {
	if s == "NA" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	return v, nil
}
