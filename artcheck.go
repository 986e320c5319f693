// Package artcheck validates ARTRollOut output of the CDM simulation against
// the Miami HIV care-continuum profile.
//
// Usage:
//
//	import "github.com/spektr-org/artcheck/engine"
//
//	table, err := helpers.ReadRollOut(path, schema.DefaultLayout())
//	eval := engine.Evaluate(table, anchor, engine.Total,
//	    engine.WithTolerance(0.10),
//	)
//
// Records come from helpers (text exports or xlsx workbooks), checks run in
// engine, report writes the pass/fail and numerics files and chart renders
// the 2014-2019 comparison plots.
package artcheck
