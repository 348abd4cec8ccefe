package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arloliu/odbc/types"
)

func TestMetricsCollector_SnapshotIsDetached(t *testing.T) {
	m := NewTestMetricsCollector()
	m.IncHandleOpened(types.HandleStmt)
	m.IncDriverError("23000")
	m.ObserveExecuteDuration(0.5)

	snap := m.Snapshot()

	m.IncHandleOpened(types.HandleStmt)
	m.IncDriverError("23000")
	m.ObserveExecuteDuration(1)
	m.IncFetchTotal()

	assert.Equal(t, 1, snap.HandlesOpened[types.HandleStmt])
	assert.Equal(t, 1, snap.DriverErrors["23000"])
	assert.Equal(t, []float64{0.5}, snap.ExecuteDuration)
	assert.Zero(t, snap.FetchTotal)

	assert.Equal(t, 2, m.Snapshot().HandlesOpened[types.HandleStmt])
}
