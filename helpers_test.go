package odbc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/test/testutil"
)

// newTestConn connects to a fresh database through a (possibly hooked) API.
func newTestConn(t *testing.T, a api.API, opts ...Option) *Connection {
	t.Helper()

	conn, err := Connect(a, testutil.TestDSN, "", "", opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, conn.Close())
	})

	return conn
}

func mustExec(t *testing.T, conn *Connection, sql string) {
	t.Helper()

	st, err := conn.Execute(sql)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

// execPrepared prepares sql, binds args in order and executes it once.
func execPrepared(t *testing.T, conn *Connection, sql string, args ...Value) *Statement {
	t.Helper()

	st, err := conn.Prepare(sql)
	require.NoError(t, err)
	for i, v := range args {
		require.NoError(t, st.BindParameter(i+1, v))
	}
	require.NoError(t, st.Execute())

	return st
}

// rebind resets st and executes it again with new arguments.
func rebind(t *testing.T, st *Statement, args ...Value) {
	t.Helper()

	require.NoError(t, st.CloseCursor())
	for i, v := range args {
		require.NoError(t, st.BindParameter(i+1, v))
	}
	require.NoError(t, st.Execute())
}
