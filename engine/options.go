package engine

import (
	"go.uber.org/zap"

	"github.com/spektr-org/artcheck/schema"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Evaluate()
// ============================================================================

// Option configures evaluator behavior via functional options pattern.
type Option func(*config)

type config struct {
	Tolerance   float64
	Window      Period
	Baseline    Baseline
	FlowMetrics map[string]bool // summed over the year instead of read at year end
	Logger      *zap.Logger
}

// WithTolerance sets the accepted relative deviation from the baseline.
func WithTolerance(tolerance float64) Option {
	return func(c *config) {
		c.Tolerance = tolerance
	}
}

// WithWindow sets the comparison years, e.g. Period{From: 2014, To: 2019}.
func WithWindow(window Period) Option {
	return func(c *config) {
		c.Window = window
	}
}

// WithBaseline replaces the built-in care-continuum reference.
func WithBaseline(b Baseline) Option {
	return func(c *config) {
		c.Baseline = b
	}
}

// WithLayout takes the flow metrics from a layout.
func WithLayout(l schema.Layout) Option {
	return func(c *config) {
		c.FlowMetrics = make(map[string]bool)
		for _, m := range l.Metrics {
			if m.Flow {
				c.FlowMetrics[m.Key] = true
			}
		}
	}
}

// WithLogger routes evaluator logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Tolerance: DefaultTolerance,
		Window:    DefaultWindow,
		Baseline:  DefaultBaseline(),
		FlowMetrics: map[string]bool{
			schema.MetricNewDiagnosis: true,
			schema.MetricEnrolledIn30: true,
		},
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
