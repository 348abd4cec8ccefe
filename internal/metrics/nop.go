// Package metrics provides internal metrics utilities for the odbc module.
package metrics

import "github.com/arloliu/odbc/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Handles
// ----------------------

// IncHandleOpened discards the metric.
func (m *NopMetrics) IncHandleOpened(_ types.HandleKind) {}

// IncHandleReleased discards the metric.
func (m *NopMetrics) IncHandleReleased(_ types.HandleKind) {}

// ----------------------
// Execution
// ----------------------

// IncExecuteTotal discards the metric.
func (m *NopMetrics) IncExecuteTotal() {}

// IncExecuteError discards the metric.
func (m *NopMetrics) IncExecuteError() {}

// ObserveExecuteDuration discards the metric.
func (m *NopMetrics) ObserveExecuteDuration(_ float64) {}

// AddDeferredBytes discards the metric.
func (m *NopMetrics) AddDeferredBytes(_ int) {}

// ----------------------
// Results
// ----------------------

// IncFetchTotal discards the metric.
func (m *NopMetrics) IncFetchTotal() {}

// IncGetDataRegrow discards the metric.
func (m *NopMetrics) IncGetDataRegrow() {}

// ----------------------
// Errors
// ----------------------

// IncDriverError discards the metric.
func (m *NopMetrics) IncDriverError(_ string) {}
