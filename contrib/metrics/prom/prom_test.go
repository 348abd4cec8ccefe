package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/odbc/types"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithNamespace("test"), WithRegisterer(reg))

	c.IncHandleOpened(types.HandleStmt)
	c.IncHandleOpened(types.HandleStmt)
	c.IncHandleReleased(types.HandleStmt)
	c.IncExecuteTotal()
	c.IncExecuteTotal()
	c.IncExecuteError()
	c.ObserveExecuteDuration(0.25)
	c.AddDeferredBytes(10)
	c.AddDeferredBytes(-1)
	c.IncFetchTotal()
	c.IncGetDataRegrow()
	c.IncDriverError("42000")
	c.IncDriverError("")

	assert.InDelta(t, 2, testutil.ToFloat64(c.handlesOpened.WithLabelValues("stmt")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.handlesReleased.WithLabelValues("stmt")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.handlesOpen.WithLabelValues("stmt")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.executeTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.executeErrors), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(c.deferredBytes), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.fetchTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.getDataRegrow), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.driverErrors.WithLabelValues("42000")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.driverErrors.WithLabelValues("unknown")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_execute_duration_seconds")
	assert.Contains(t, names, "test_handles_open")
}

func TestCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegisterer(reg))

	assert.Panics(t, func() {
		New(WithRegisterer(reg))
	})
}
