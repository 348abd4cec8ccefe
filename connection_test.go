package odbc

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/odbc/driver/sqlite"
	"github.com/arloliu/odbc/test/testutil"
	"github.com/arloliu/odbc/types"
)

func countRows(t *testing.T, conn *Connection, table string) int64 {
	t.Helper()

	st, err := conn.Execute("SELECT count(*) FROM " + table)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Fetch()
	require.NoError(t, err)
	n, _, err := st.GetInt64(1)
	require.NoError(t, err)

	return n
}

func TestConnection_Info(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))

	assert.Equal(t, "SQLite", conn.ServerName())
	assert.True(t, strings.HasPrefix(conn.ServerVersion(), "3."), conn.ServerVersion())
	assert.NotEmpty(t, conn.DriverVersion())
	assert.NotNil(t, conn.Environment())
	assert.True(t, conn.IsAlive())
}

func TestConnection_Tables(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))

	names, err := conn.Tables()
	require.NoError(t, err)
	assert.Empty(t, names)

	mustExec(t, conn, "CREATE TABLE zeta (id INTEGER)")
	mustExec(t, conn, "CREATE TABLE alpha (id INTEGER)")
	mustExec(t, conn, "CREATE VIEW beta AS SELECT id FROM alpha")

	names, err = conn.Tables()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestConnection_ManualCommit(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t), WithAutoCommit(false))
	mustExec(t, conn, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, conn.Commit())

	ins := execPrepared(t, conn, "INSERT INTO t VALUES (?)", Int32(1))
	require.NoError(t, ins.Close())
	assert.EqualValues(t, 1, countRows(t, conn, "t"))

	require.NoError(t, conn.Rollback())
	assert.EqualValues(t, 0, countRows(t, conn, "t"))

	ins = execPrepared(t, conn, "INSERT INTO t VALUES (?)", Int32(2))
	require.NoError(t, ins.Close())
	require.NoError(t, conn.Commit())
	require.NoError(t, conn.Rollback())
	assert.EqualValues(t, 1, countRows(t, conn, "t"))
}

func TestConnection_SetAutoCommitCommitsPending(t *testing.T) {
	drv := testutil.NewSQLiteDriver(t)
	conn := newTestConn(t, drv)
	mustExec(t, conn, "CREATE TABLE t (id INTEGER)")

	require.NoError(t, conn.SetAutoCommit(false))
	mustExec(t, conn, "INSERT INTO t VALUES (1)")
	require.NoError(t, conn.SetAutoCommit(true))

	other := newTestConn(t, drv)
	assert.EqualValues(t, 1, countRows(t, other, "t"))
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	drv := testutil.NewSQLiteDriver(t)

	conn, err := Connect(drv, testutil.TestDSN, "", "")
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.False(t, conn.IsAlive())

	_, err = conn.Execute("SELECT 1")
	assert.ErrorIs(t, err, types.ErrClosed)
	assert.ErrorIs(t, conn.Commit(), types.ErrClosed)
	_, err = conn.Tables()
	assert.ErrorIs(t, err, types.ErrClosed)
}

func TestEnvironment_DataSources(t *testing.T) {
	dir := t.TempDir()
	drv := sqlite.New(
		sqlite.WithDataSource("orders", filepath.Join(dir, "orders.db"), "order history"),
		sqlite.WithDataSource("users", filepath.Join(dir, "users.db"), "user accounts"),
	)

	env, err := NewEnvironment(drv)
	require.NoError(t, err)
	defer env.Close()

	names, err := env.DataSources()
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, names)

	// The listing restarts from the first entry on every call.
	names, err = env.DataSources()
	require.NoError(t, err)
	assert.Len(t, names, 2)

	conn, err := env.Connect("users", "", "")
	require.NoError(t, err)
	assert.True(t, conn.IsAlive())
	require.NoError(t, conn.Close())

	// The environment outlives a connection it did not create for it.
	names, err = env.DataSources()
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestEnvironment_Config(t *testing.T) {
	env, err := NewEnvironment(testutil.NewSQLiteDriver(t), WithProbeSize(-1), WithPutDataChunkSize(64))
	require.NoError(t, err)
	defer env.Close()

	cfg := env.Config()
	assert.Equal(t, DefaultProbeSize, cfg.ProbeSize)
	assert.Equal(t, 64, cfg.PutDataChunkSize)
	assert.Equal(t, ODBCVersion3, cfg.ODBCVersion)
	assert.Equal(t, PoolingOnePerDriver, cfg.Pooling)
	assert.True(t, cfg.AutoCommit)
	assert.NotNil(t, cfg.Logger)
	assert.NotNil(t, cfg.Metrics)
}
