// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when net/http/pprof is imported in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	OptimizeTotal   = expvar.NewInt("seatify_optimize_total")
	ImportTotal     = expvar.NewInt("seatify_import_total")
	ExportTotal     = expvar.NewInt("seatify_export_total")
	AdviseTotal     = expvar.NewInt("seatify_advise_total")
	ViolationsTotal = expvar.NewInt("seatify_violations_total")
	CleanupCleared  = expvar.NewInt("seatify_cleanup_cleared_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
