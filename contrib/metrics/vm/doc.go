// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "odbc":
//
//	collector := vm.New()
//	env, _ := odbc.NewEnvironment(unixodbc.New(),
//	    odbc.WithMetrics(collector),
//	)
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//
// # Metrics Provided
//
// Handles:
//   - {prefix}_handles_opened_total{kind} - Counter of allocated handles
//   - {prefix}_handles_released_total{kind} - Counter of released handles
//   - {prefix}_handles_open{kind} - Gauge of handles currently allocated
//
// Execution:
//   - {prefix}_execute_total - Counter of statement executions
//   - {prefix}_execute_errors_total - Counter of failed executions
//   - {prefix}_execute_duration_seconds - Histogram of execution latencies
//   - {prefix}_deferred_bytes_total - Counter of bytes streamed with SQLPutData
//
// Results:
//   - {prefix}_fetch_total - Counter of rows fetched
//   - {prefix}_getdata_regrow_total - Counter of cells that outgrew the probe buffer
//
// Errors:
//   - {prefix}_driver_errors_total{state} - Counter of driver errors by SQLSTATE
//
// # Performance Notes
//
// Fixed-label metrics are pre-created at initialization using the NewXXX
// pattern. Driver errors are labelled by SQLSTATE, which is open-ended, so
// those counters are created lazily with GetOrCreateCounter.
package vm
