package vm

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/odbc/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "odbc"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set.
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

var handleKinds = [...]types.HandleKind{types.HandleEnv, types.HandleDbc, types.HandleStmt}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Handle metrics, indexed by HandleKind-1
	handlesOpened   [3]*metrics.Counter
	handlesReleased [3]*metrics.Counter
	handlesOpen     [3]atomic.Int64

	// Execution metrics
	executeTotal    *metrics.Counter
	executeErrors   *metrics.Counter
	executeDuration *metrics.Histogram
	deferredBytes   *metrics.Counter

	// Result metrics
	fetchTotal    *metrics.Counter
	getDataRegrow *metrics.Counter
}

var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "odbc",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all fixed-label metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	for i, kind := range handleKinds {
		c.handlesOpened[i] = c.set.NewCounter(fmt.Sprintf(`%s_handles_opened_total{kind="%s"}`, p, kind))
		c.handlesReleased[i] = c.set.NewCounter(fmt.Sprintf(`%s_handles_released_total{kind="%s"}`, p, kind))
		open := &c.handlesOpen[i]
		c.set.NewGauge(fmt.Sprintf(`%s_handles_open{kind="%s"}`, p, kind), func() float64 {
			return float64(open.Load())
		})
	}

	c.executeTotal = c.set.NewCounter(p + "_execute_total")
	c.executeErrors = c.set.NewCounter(p + "_execute_errors_total")
	c.executeDuration = c.set.NewHistogram(p + "_execute_duration_seconds")
	c.deferredBytes = c.set.NewCounter(p + "_deferred_bytes_total")

	c.fetchTotal = c.set.NewCounter(p + "_fetch_total")
	c.getDataRegrow = c.set.NewCounter(p + "_getdata_regrow_total")
}

// Set returns the metrics set the collector registers with.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

func kindIndex(kind types.HandleKind) int {
	i := int(kind) - 1
	if i < 0 || i >= len(handleKinds) {
		return -1
	}

	return i
}

// ----------------------
// Handles
// ----------------------

// IncHandleOpened increments the allocated handles counter.
func (c *Collector) IncHandleOpened(kind types.HandleKind) {
	if i := kindIndex(kind); i >= 0 {
		c.handlesOpened[i].Inc()
		c.handlesOpen[i].Add(1)
	}
}

// IncHandleReleased increments the released handles counter.
func (c *Collector) IncHandleReleased(kind types.HandleKind) {
	if i := kindIndex(kind); i >= 0 {
		c.handlesReleased[i].Inc()
		c.handlesOpen[i].Add(-1)
	}
}

// ----------------------
// Execution
// ----------------------

// IncExecuteTotal increments the executions counter.
func (c *Collector) IncExecuteTotal() {
	c.executeTotal.Inc()
}

// IncExecuteError increments the failed executions counter.
func (c *Collector) IncExecuteError() {
	c.executeErrors.Inc()
}

// ObserveExecuteDuration records an execution duration in seconds.
func (c *Collector) ObserveExecuteDuration(seconds float64) {
	c.executeDuration.Update(seconds)
}

// AddDeferredBytes adds to the streamed bytes counter.
func (c *Collector) AddDeferredBytes(n int) {
	if n > 0 {
		c.deferredBytes.Add(n)
	}
}

// ----------------------
// Results
// ----------------------

// IncFetchTotal increments the fetched rows counter.
func (c *Collector) IncFetchTotal() {
	c.fetchTotal.Inc()
}

// IncGetDataRegrow increments the probe overflow counter.
func (c *Collector) IncGetDataRegrow() {
	c.getDataRegrow.Inc()
}

// ----------------------
// Errors
// ----------------------

// IncDriverError increments the driver error counter for a SQLSTATE.
func (c *Collector) IncDriverError(state string) {
	if state == "" {
		state = "unknown"
	}
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_driver_errors_total{state=%q}`, c.prefix, state)).Inc()
}
