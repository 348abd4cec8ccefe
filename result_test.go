package odbc

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/test/testutil"
	"github.com/arloliu/odbc/types"
)

const testProbe = 16

// probeFixture holds a connection whose API counts GetData calls.
type probeFixture struct {
	hooked  *testutil.HookedAPI
	metrics *testutil.TestMetricsCollector
	conn    *Connection
}

func newProbeFixture(t *testing.T) *probeFixture {
	t.Helper()

	hooked := testutil.NewHookedAPI(testutil.NewSQLiteDriver(t))
	collector := testutil.NewTestMetricsCollector()
	conn := newTestConn(t, hooked, WithProbeSize(testProbe), WithMetrics(collector))
	mustExec(t, conn, "CREATE TABLE cells (id INTEGER, s TEXT, w NVARCHAR(100), b BLOB)")

	return &probeFixture{hooked: hooked, metrics: collector, conn: conn}
}

// selectRow inserts one row and positions a cursor on it.
func (f *probeFixture) selectRow(t *testing.T, id int32, s, w string, b []byte) *Statement {
	t.Helper()

	ins := execPrepared(t, f.conn, "INSERT INTO cells VALUES (?, ?, ?, ?)", Int32(id), Text(s), Text(w), Bytes(b))
	require.NoError(t, ins.Close())

	sel := execPrepared(t, f.conn, "SELECT s, w, b FROM cells WHERE id = ?", Int32(id))
	t.Cleanup(func() { _ = sel.Close() })

	res, err := sel.Fetch()
	require.NoError(t, err)
	require.Equal(t, types.FetchSuccess, res)

	return sel
}

func TestGetData_ProbeBoundary(t *testing.T) {
	f := newProbeFixture(t)

	tests := []struct {
		name      string
		n         int
		wantCalls int
	}{
		{"below probe", testProbe - 1, 1},
		{"exactly probe", testProbe, 1},
		{"above probe", testProbe + 1, 2},
		{"far above probe", testProbe * 10, 2},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("t", tt.n)
			raw := []byte(strings.Repeat("\x01", tt.n))
			sel := f.selectRow(t, int32(i), text, "", raw)

			f.hooked.ResetCalls()
			got, ok, err := sel.GetText(1)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, text, got)
			assert.Equal(t, tt.wantCalls, f.hooked.Calls("GetData"))

			f.hooked.ResetCalls()
			gotBytes, ok, err := sel.GetBytes(3)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, raw, gotBytes)
			assert.Equal(t, tt.wantCalls, f.hooked.Calls("GetData"))
		})
	}
}

func TestGetData_SizedProbe(t *testing.T) {
	f := newProbeFixture(t)

	tests := []struct {
		name      string
		estimate  int
		wantCalls int
	}{
		{"estimate covers value", 128, 1},
		{"estimate exact", 100, 1},
		{"estimate short", 50, 2},
		{"no estimate uses configured probe", 0, 2},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("s", 100)
			raw := []byte(strings.Repeat("\x02", 100))
			sel := f.selectRow(t, int32(500+i), text, "", raw)

			f.hooked.ResetCalls()
			got, ok, err := sel.GetTextSized(1, tt.estimate)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, text, got)
			assert.Equal(t, tt.wantCalls, f.hooked.Calls("GetData"))

			f.hooked.ResetCalls()
			gotBytes, ok, err := sel.GetBytesSized(3, tt.estimate)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, raw, gotBytes)
			assert.Equal(t, tt.wantCalls, f.hooked.Calls("GetData"))
		})
	}
}

func TestGetData_WideProbeBoundary(t *testing.T) {
	f := newProbeFixture(t)

	// The probe holds testProbe bytes of UTF-16, i.e. testProbe/2 units.
	tests := []struct {
		chars     int
		wantCalls int
	}{
		{testProbe/2 - 1, 1},
		{testProbe / 2, 1},
		{testProbe/2 + 1, 2},
	}

	for i, tt := range tests {
		text := strings.Repeat("w", tt.chars)
		sel := f.selectRow(t, int32(100+i), "", text, nil)

		f.hooked.ResetCalls()
		got, ok, err := sel.GetWideText(2)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, text, got, "%d chars", tt.chars)
		assert.Equal(t, tt.wantCalls, f.hooked.Calls("GetData"), "%d chars", tt.chars)
	}
}

func TestGetData_MultiByteAcrossProbe(t *testing.T) {
	f := newProbeFixture(t)

	// Each rune is two bytes in UTF-8, so the probe splits one of them.
	text := strings.Repeat("é", testProbe)
	wide := strings.Repeat("✓", testProbe)
	sel := f.selectRow(t, 1, text, wide, nil)

	got, ok, err := sel.GetText(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, text, got)

	gotWide, ok, err := sel.GetWideText(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, wide, gotWide)

	assert.Equal(t, 2, f.metrics.Snapshot().GetDataRegrow)
}

func TestGetData_EmptyAndNull(t *testing.T) {
	f := newProbeFixture(t)
	sel := f.selectRow(t, 1, "", "", []byte{})

	s, ok, err := sel.GetText(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, s)

	b, ok, err := sel.GetBytes(3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, b)
	assert.Empty(t, b)

	ins := execPrepared(t, f.conn, "INSERT INTO cells VALUES (?, ?, ?, ?)",
		Int32(2), NullOf(types.KindText), NullOf(types.KindText), NullOf(types.KindBytes))
	require.NoError(t, ins.Close())

	rebind(t, sel, Int32(2))
	_, err = sel.Fetch()
	require.NoError(t, err)

	s, ok, err = sel.GetText(1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s)

	b, ok, err = sel.GetBytes(3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, b)
}

func TestGetData_UnknownLengthDrains(t *testing.T) {
	hooked := testutil.NewHookedAPI(testutil.NewSQLiteDriver(t))
	next := hooked.API
	hooked.OnGetData = func(stmt api.Handle, col uint16, cType api.CType, buf unsafe.Pointer, bufLen int64, ind *int64) api.Return {
		rc := next.GetData(stmt, col, cType, buf, bufLen, ind)
		if rc == api.SQL_SUCCESS_WITH_INFO {
			*ind = api.SQL_NO_TOTAL
		}

		return rc
	}

	conn := newTestConn(t, hooked, WithProbeSize(testProbe))
	mustExec(t, conn, "CREATE TABLE long (v TEXT)")

	text := strings.Repeat("0123456789", 10)
	ins := execPrepared(t, conn, "INSERT INTO long VALUES (?)", Text(text))
	require.NoError(t, ins.Close())

	sel, err := conn.Execute("SELECT v FROM long")
	require.NoError(t, err)
	_, err = sel.Fetch()
	require.NoError(t, err)

	got, ok, err := sel.GetText(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, text, got)
	// Probe, 32 bytes, then the final 52.
	assert.Equal(t, 3, hooked.Calls("GetData"))
}

func TestGetData_MisreportedLength(t *testing.T) {
	text := strings.Repeat("0123456789", 10)

	tests := []struct {
		name     string
		reported int64
		calls    int
	}{
		{"under-reported drains the rest", 40, 3},
		{"over-reported trims to delivered", 120, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hooked := testutil.NewHookedAPI(testutil.NewSQLiteDriver(t))
			next := hooked.API
			first := true
			hooked.OnGetData = func(stmt api.Handle, col uint16, cType api.CType, buf unsafe.Pointer, bufLen int64, ind *int64) api.Return {
				rc := next.GetData(stmt, col, cType, buf, bufLen, ind)
				if first && rc == api.SQL_SUCCESS_WITH_INFO {
					first = false
					*ind = tt.reported
				}

				return rc
			}

			conn := newTestConn(t, hooked, WithProbeSize(testProbe))
			mustExec(t, conn, "CREATE TABLE long (v TEXT)")
			ins := execPrepared(t, conn, "INSERT INTO long VALUES (?)", Text(text))
			require.NoError(t, ins.Close())

			sel, err := conn.Execute("SELECT v FROM long")
			require.NoError(t, err)
			_, err = sel.Fetch()
			require.NoError(t, err)

			got, ok, err := sel.GetText(1)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, text, got)
			assert.Equal(t, tt.calls, hooked.Calls("GetData"))
		})
	}
}

func TestGetData_CellReadOnce(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))

	sel, err := conn.Execute("SELECT 'once' AS v")
	require.NoError(t, err)
	_, err = sel.Fetch()
	require.NoError(t, err)

	v, ok, err := sel.GetText(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "once", v)

	_, _, err = sel.GetText(1)
	require.Error(t, err)
}

func TestGetData_ColumnOrdinal(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))

	sel, err := conn.Execute("SELECT 1 AS one")
	require.NoError(t, err)
	_, err = sel.Fetch()
	require.NoError(t, err)

	_, _, err = sel.GetInt32(0)
	require.ErrorIs(t, err, types.ErrOrdinalRange)

	_, err = sel.DescribeColumn(0)
	require.ErrorIs(t, err, types.ErrOrdinalRange)

	_, _, err = sel.GetInt32(2)
	var derr *types.DriverError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "07009", derr.State)
}

func TestDescribeColumns(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))
	mustExec(t, conn, "CREATE TABLE d (id BIGINT, name VARCHAR(40), label NVARCHAR(10), data BLOB, ratio DOUBLE, flag BOOLEAN)")

	sel, err := conn.Execute("SELECT id, name, label, data, ratio, flag FROM d")
	require.NoError(t, err)
	defer sel.Close()

	assert.Equal(t, StateHasResults, sel.State())

	n, err := sel.NumResultColumns()
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	cols, err := sel.DescribeColumns()
	require.NoError(t, err)
	require.Len(t, cols, 6)

	want := []struct {
		name string
		typ  types.ColumnType
	}{
		{"id", types.ColumnBigInt},
		{"name", types.ColumnVarChar},
		{"label", types.ColumnWVarChar},
		{"data", types.ColumnVarBinary},
		{"ratio", types.ColumnDouble},
		{"flag", types.ColumnBit},
	}
	for i, w := range want {
		assert.Equal(t, i+1, cols[i].Ordinal)
		assert.Equal(t, w.name, cols[i].Name)
		assert.Equal(t, w.typ, cols[i].Type, w.name)
	}

	res, err := sel.Fetch()
	require.NoError(t, err)
	assert.Equal(t, types.FetchNoMoreRows, res)
}

func TestGetText_Encoding(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t), WithTextEncoding(charmap.Windows1252))
	mustExec(t, conn, "CREATE TABLE legacy (v TEXT)")

	// "café" in Windows-1252.
	ins := execPrepared(t, conn, "INSERT INTO legacy VALUES (CAST(? AS TEXT))", Bytes([]byte{'c', 'a', 'f', 0xE9}))
	require.NoError(t, ins.Close())

	sel, err := conn.Execute("SELECT v, v FROM legacy")
	require.NoError(t, err)
	defer sel.Close()
	_, err = sel.Fetch()
	require.NoError(t, err)

	got, ok, err := sel.GetText(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "café", got)

	raw, ok, err := sel.GetTextEncoded(2, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "caf\xe9", raw)
}
