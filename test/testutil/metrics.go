package testutil

import (
	"maps"
	"slices"
	"sync"

	"github.com/arloliu/odbc/types"
)

// MetricsSnapshot holds the counters recorded by a TestMetricsCollector.
type MetricsSnapshot struct {
	HandlesOpened   map[types.HandleKind]int
	HandlesReleased map[types.HandleKind]int

	ExecuteTotal    int
	ExecuteErrors   int
	ExecuteDuration []float64
	DeferredBytes   int

	FetchTotal    int
	GetDataRegrow int

	DriverErrors map[string]int
}

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertion.
type TestMetricsCollector struct {
	mu sync.Mutex
	MetricsSnapshot
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		MetricsSnapshot: MetricsSnapshot{
			HandlesOpened:   make(map[types.HandleKind]int),
			HandlesReleased: make(map[types.HandleKind]int),
			DriverErrors:    make(map[string]int),
		},
	}
}

// Snapshot returns a deep copy of the collector's counters, safe to inspect
// while the collector keeps recording.
func (m *TestMetricsCollector) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.MetricsSnapshot
	out.HandlesOpened = maps.Clone(m.HandlesOpened)
	out.HandlesReleased = maps.Clone(m.HandlesReleased)
	out.ExecuteDuration = slices.Clone(m.ExecuteDuration)
	out.DriverErrors = maps.Clone(m.DriverErrors)

	return out
}

// ----------------------
// Handles
// ----------------------

func (m *TestMetricsCollector) IncHandleOpened(kind types.HandleKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandlesOpened[kind]++
}

func (m *TestMetricsCollector) IncHandleReleased(kind types.HandleKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandlesReleased[kind]++
}

// ----------------------
// Execution
// ----------------------

func (m *TestMetricsCollector) IncExecuteTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecuteTotal++
}

func (m *TestMetricsCollector) IncExecuteError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecuteErrors++
}

func (m *TestMetricsCollector) ObserveExecuteDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecuteDuration = append(m.ExecuteDuration, seconds)
}

func (m *TestMetricsCollector) AddDeferredBytes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeferredBytes += n
}

// ----------------------
// Results
// ----------------------

func (m *TestMetricsCollector) IncFetchTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchTotal++
}

func (m *TestMetricsCollector) IncGetDataRegrow() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetDataRegrow++
}

// ----------------------
// Errors
// ----------------------

func (m *TestMetricsCollector) IncDriverError(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DriverErrors[state]++
}
