package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/odbc/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithNamespace sets the metric namespace.
//
// Default: "odbc"
//
// Parameters:
//   - namespace: The namespace prepended to every metric name
//
// Returns:
//   - Option: A configuration option
func WithNamespace(namespace string) Option {
	return func(c *Collector) {
		c.namespace = namespace
	}
}

// WithRegisterer sets the registry the collector's metrics are added to.
//
// Parameters:
//   - reg: The registerer to use instead of prometheus.DefaultRegisterer
//
// Returns:
//   - Option: A configuration option
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Collector) {
		c.reg = reg
	}
}

// WithBuckets sets the histogram buckets of the execution duration metric.
//
// Default: prometheus.DefBuckets
func WithBuckets(buckets []float64) Option {
	return func(c *Collector) {
		c.buckets = buckets
	}
}

// Collector implements types.MetricsCollector using Prometheus client_golang.
//
// Thread-safe for concurrent use.
type Collector struct {
	reg       prometheus.Registerer
	namespace string
	buckets   []float64

	handlesOpened   *prometheus.CounterVec
	handlesReleased *prometheus.CounterVec
	handlesOpen     *prometheus.GaugeVec

	executeTotal    prometheus.Counter
	executeErrors   prometheus.Counter
	executeDuration prometheus.Histogram
	deferredBytes   prometheus.Counter

	fetchTotal    prometheus.Counter
	getDataRegrow prometheus.Counter

	driverErrors *prometheus.CounterVec
}

var _ types.MetricsCollector = (*Collector)(nil)

// New creates a collector and registers its metrics.
//
// Registration panics if a metric of the same name is already registered,
// the same as prometheus.MustRegister.
//
// Parameters:
//   - opts: Configuration options
//
// Returns:
//   - *Collector: A new metrics collector ready for use
func New(opts ...Option) *Collector {
	c := &Collector{
		reg:       prometheus.DefaultRegisterer,
		namespace: "odbc",
		buckets:   prometheus.DefBuckets,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.initMetrics()

	return c
}

func (c *Collector) initMetrics() {
	ns := c.namespace

	c.handlesOpened = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "handles_opened_total", Help: "Native handles allocated.",
	}, []string{"kind"})
	c.handlesReleased = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "handles_released_total", Help: "Native handles released.",
	}, []string{"kind"})
	c.handlesOpen = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns, Name: "handles_open", Help: "Native handles currently allocated.",
	}, []string{"kind"})

	c.executeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "execute_total", Help: "Statement executions.",
	})
	c.executeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "execute_errors_total", Help: "Failed statement executions.",
	})
	c.executeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns, Name: "execute_duration_seconds", Help: "Statement execution latency.",
		Buckets: c.buckets,
	})
	c.deferredBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "deferred_bytes_total", Help: "Bytes streamed with SQLPutData.",
	})

	c.fetchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "fetch_total", Help: "Rows fetched.",
	})
	c.getDataRegrow = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "getdata_regrow_total", Help: "Cells that overflowed the probe buffer.",
	})

	c.driverErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "driver_errors_total", Help: "Driver failures by SQLSTATE.",
	}, []string{"state"})

	c.reg.MustRegister(
		c.handlesOpened, c.handlesReleased, c.handlesOpen,
		c.executeTotal, c.executeErrors, c.executeDuration, c.deferredBytes,
		c.fetchTotal, c.getDataRegrow,
		c.driverErrors,
	)
}

// ----------------------
// Handles
// ----------------------

// IncHandleOpened increments the allocated handles counter.
func (c *Collector) IncHandleOpened(kind types.HandleKind) {
	c.handlesOpened.WithLabelValues(kind.String()).Inc()
	c.handlesOpen.WithLabelValues(kind.String()).Inc()
}

// IncHandleReleased increments the released handles counter.
func (c *Collector) IncHandleReleased(kind types.HandleKind) {
	c.handlesReleased.WithLabelValues(kind.String()).Inc()
	c.handlesOpen.WithLabelValues(kind.String()).Dec()
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
	c.executeDuration.Observe(seconds)
}

// AddDeferredBytes adds to the streamed bytes counter.
func (c *Collector) AddDeferredBytes(n int) {
	if n > 0 {
		c.deferredBytes.Add(float64(n))
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
	c.driverErrors.WithLabelValues(state).Inc()
}
