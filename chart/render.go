// Package chart renders engine.ChartConfig comparison charts to image files
// with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/artcheck/engine"
)

// ============================================================================
// CHART RENDERER
// ============================================================================
// Series styles:
//   run:      thin dashed line, no legend entry
//   mean:     solid line in its own color, legend entry
//   baseline: solid line, legend entry
// Series without points are skipped. A series is broken where a year is
// missing; a point with no neighbor is drawn as a marker. Output format
// follows the extension.
// ============================================================================

var (
	// ErrUnsupportedFormat is returned for plot formats other than pdf, png, svg.
	ErrUnsupportedFormat = errors.New("chart: unsupported plot format")
	// ErrNoChart is returned when there is nothing to draw.
	ErrNoChart = errors.New("chart: no data to plot")
)

// Supported output formats.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
	FormatSVG = "svg"
)

// DefaultFormat is used when no plot format is configured.
const DefaultFormat = FormatPDF

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

var (
	runWidth  = vg.Points(0.5)
	lineWidth = vg.Points(1.5)
	runDashes = []vg.Length{vg.Points(4), vg.Points(2)}
)

// ParseFormat normalizes a plot format name.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch f {
	case "":
		return DefaultFormat, nil
	case FormatPDF, FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FileName returns dir/<metric><suffix>.<format>, e.g. "out/in_care_WHITE.pdf".
func FileName(dir, metric, suffix, format string) string {
	return filepath.Join(dir, metric+suffix+"."+format)
}

// Render draws cfg to path.
func Render(cfg *engine.ChartConfig, path string) error {
	if cfg == nil {
		return ErrNoChart
	}
	if _, err := ParseFormat(filepath.Ext(path)); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	if cfg.ShowGrid {
		p.Add(plotter.NewGrid())
	}

	var ticks []plot.Tick
	seen := make(map[float64]bool)
	drawn := 0
	for _, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		style := lineStyle(s)
		for i, seg := range segments(s.Data) {
			thumb, err := addSegment(p, seg, style)
			if err != nil {
				return fmt.Errorf("failed to build series %q: %w", s.Name, err)
			}
			if i == 0 && cfg.ShowLegend && s.Style != engine.StyleRun {
				p.Legend.Add(s.Name, thumb)
			}
		}
		for _, pt := range s.Data {
			if !seen[pt.X] {
				seen[pt.X] = true
				ticks = append(ticks, plot.Tick{Value: pt.X, Label: pt.Label})
			}
		}
		drawn++
	}
	if drawn == 0 {
		return ErrNoChart
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Legend.Top = true

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plot directory: %w", err)
		}
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

func lineStyle(s engine.ChartSeries) draw.LineStyle {
	style := draw.LineStyle{Color: parseHex(s.Color), Width: lineWidth}
	if s.Style == engine.StyleRun {
		style.Width = runWidth
		style.Dashes = runDashes
	}
	return style
}

// segments splits points into runs of consecutive years.
func segments(data []engine.ChartPoint) [][]engine.ChartPoint {
	var out [][]engine.ChartPoint
	start := 0
	for i := 1; i <= len(data); i++ {
		if i == len(data) || data[i].X-data[i-1].X > 1 {
			out = append(out, data[start:i])
			start = i
		}
	}
	return out
}

// addSegment draws one segment as a line, or as a marker when it holds a
// single point.
func addSegment(p *plot.Plot, seg []engine.ChartPoint, style draw.LineStyle) (plot.Thumbnailer, error) {
	xys := make(plotter.XYs, len(seg))
	for i, pt := range seg {
		xys[i].X = pt.X
		xys[i].Y = pt.Value
	}

	if len(seg) == 1 {
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  style.Color,
			Radius: vg.Points(2),
			Shape:  draw.CircleGlyph{},
		}
		p.Add(sc)
		return sc, nil
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle = style
	p.Add(line)
	return line, nil
}

// parseHex reads "#RRGGBB"; anything else falls back to black.
func parseHex(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// ============================================================================
// COMPARISON SET
// ============================================================================

// Plotter renders one comparison chart per ratio metric.
type Plotter struct {
	Dir    string
	Suffix string
	Format string
	Logger *zap.Logger
}

// RenderAll builds and renders the comparison chart of every ratio metric.
// Metrics without data are logged and skipped. It returns the written paths.
func (pl Plotter) RenderAll(runs []engine.RunSeries, baseline engine.Baseline, window engine.Period) ([]string, error) {
	logger := pl.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	format, err := ParseFormat(pl.Format)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, metric := range engine.RatioMetrics {
		cfg := engine.BuildComparison(metric, runs, baseline, window)
		if cfg == nil {
			logger.Warn("no data to plot", zap.String("metric", metric))
			continue
		}
		path := FileName(pl.Dir, metric, pl.Suffix, format)
		if err := Render(cfg, path); err != nil {
			return written, err
		}
		logger.Debug("plot written", zap.String("path", path))
		written = append(written, path)
	}
	return written, nil
}
