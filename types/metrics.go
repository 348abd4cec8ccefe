package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Implementations should be thread-safe: statements on different
// connections report concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/odbc/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	env, _ := odbc.NewEnvironment(unixodbc.New(),
//	    odbc.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Handles
	// ----------------------

	// IncHandleOpened increments the counter of handles allocated.
	IncHandleOpened(kind HandleKind)

	// IncHandleReleased increments the counter of handles released.
	IncHandleReleased(kind HandleKind)

	// ----------------------
	// Execution
	// ----------------------

	// IncExecuteTotal increments the total statement executions counter.
	IncExecuteTotal()

	// IncExecuteError increments the failed executions counter.
	IncExecuteError()

	// ObserveExecuteDuration records an execution duration in seconds,
	// including the data-at-execution round-trip.
	ObserveExecuteDuration(seconds float64)

	// AddDeferredBytes adds to the count of bytes streamed with SQLPutData.
	AddDeferredBytes(n int)

	// ----------------------
	// Results
	// ----------------------

	// IncFetchTotal increments the counter of rows fetched.
	IncFetchTotal()

	// IncGetDataRegrow increments the counter of variable-length cells that
	// did not fit the probe buffer and needed a second retrieval.
	IncGetDataRegrow()

	// ----------------------
	// Errors
	// ----------------------

	// IncDriverError increments the driver error counter for a SQLSTATE.
	IncDriverError(state string)
}
