//go:build cgo && unixodbc

package integration_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/odbc"
	"github.com/arloliu/odbc/types"
)

func TestConnectInfo(t *testing.T) {
	conn := connect(t)

	assert.True(t, conn.IsAlive())
	assert.NotEmpty(t, conn.ServerName())
	assert.NotEmpty(t, conn.DriverVersion())

	sources, err := conn.Environment().DataSources()
	require.NoError(t, err)
	assert.Contains(t, sources, source.dsn)
}

func TestPreparedRoundTrip(t *testing.T) {
	conn := connect(t)
	table := tempTable(t, conn, "id INTEGER, n VARCHAR(2000)")

	ins, err := conn.Prepare("INSERT INTO " + table + " (id, n) VALUES (?, ?)")
	require.NoError(t, err)
	defer ins.Close()

	values := map[int32]odbc.Value{
		1: odbc.Text("hello"),
		2: odbc.Text(strings.Repeat("long ", 300)),
		3: odbc.NullOf(types.KindText),
		4: odbc.Text(""),
	}
	for id, v := range values {
		require.NoError(t, ins.BindParameter(1, odbc.Int32(id)))
		require.NoError(t, ins.BindParameter(2, v))
		require.NoError(t, ins.Execute())
	}

	sel, err := conn.Prepare("SELECT n FROM " + table + " WHERE id = ?")
	require.NoError(t, err)
	defer sel.Close()

	for id, want := range values {
		require.NoError(t, sel.CloseCursor())
		require.NoError(t, sel.BindParameter(1, odbc.Int32(id)))
		require.NoError(t, sel.Execute())

		res, err := sel.Fetch()
		require.NoError(t, err)
		require.Equal(t, types.FetchSuccess, res)

		got, ok, err := sel.GetText(1)
		require.NoError(t, err)
		if want.IsNull() {
			assert.False(t, ok, "id %d", id)
			continue
		}
		assert.True(t, ok, "id %d", id)
		assert.Equal(t, want.Any(), got, "id %d", id)
	}
}

func TestNullIntegerIsAbsent(t *testing.T) {
	conn := connect(t)
	table := tempTable(t, conn, "id INTEGER, v INTEGER")

	ins, err := conn.Prepare("INSERT INTO " + table + " (id, v) VALUES (?, ?)")
	require.NoError(t, err)
	defer ins.Close()
	require.NoError(t, ins.BindArgs(1, nil))
	require.NoError(t, ins.Execute())

	sel, err := conn.Execute("SELECT v FROM " + table)
	require.NoError(t, err)
	defer sel.Close()

	_, err = sel.Fetch()
	require.NoError(t, err)
	v, ok, err := sel.GetInt32(1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestTablesListsCreatedTable(t *testing.T) {
	conn := connect(t)
	table := tempTable(t, conn, "id INTEGER")

	names, err := conn.Tables()
	require.NoError(t, err)

	found := false
	for _, n := range names {
		if strings.EqualFold(n, table) {
			found = true
		}
	}
	assert.True(t, found, "%s not in %v", table, names)
}

func TestTransaction(t *testing.T) {
	conn := connect(t)
	table := tempTable(t, conn, "id INTEGER")

	require.NoError(t, conn.SetAutoCommit(false))
	defer func() { _ = conn.SetAutoCommit(true) }()

	exec(t, conn, "INSERT INTO "+table+" (id) VALUES (1)", false)
	require.NoError(t, conn.Rollback())

	sel, err := conn.Execute("SELECT count(*) FROM " + table)
	require.NoError(t, err)
	defer sel.Close()
	_, err = sel.Fetch()
	require.NoError(t, err)

	n, _, err := sel.GetInt64(1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
