package odbc

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/odbc/test/testutil"
	"github.com/arloliu/odbc/types"
)

type roundTripCase struct {
	name   string
	decl   string
	kind   types.Kind
	values []Value
	read   func(s *Statement) (Value, error)
}

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}

	return b
}

func roundTripCases() []roundTripCase {
	return []roundTripCase{
		{"bool", "BOOLEAN", types.KindBool, []Value{Bool(false), Bool(true)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetBool(1); return asValue(v, ok, err, Bool, types.KindBool) }},
		{"int8", "TINYINT", types.KindInt8, []Value{Int8(math.MinInt8), Int8(math.MaxInt8), Int8(0)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetInt8(1); return asValue(v, ok, err, Int8, types.KindInt8) }},
		{"int16", "SMALLINT", types.KindInt16, []Value{Int16(math.MinInt16), Int16(math.MaxInt16)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetInt16(1); return asValue(v, ok, err, Int16, types.KindInt16) }},
		{"int32", "INT", types.KindInt32, []Value{Int32(math.MinInt32), Int32(math.MaxInt32)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetInt32(1); return asValue(v, ok, err, Int32, types.KindInt32) }},
		{"int64", "BIGINT", types.KindInt64, []Value{Int64(math.MinInt64), Int64(math.MaxInt64)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetInt64(1); return asValue(v, ok, err, Int64, types.KindInt64) }},
		{"uint8", "SMALLINT", types.KindUint8, []Value{Uint8(0), Uint8(math.MaxUint8)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetUint8(1); return asValue(v, ok, err, Uint8, types.KindUint8) }},
		{"uint16", "INTEGER", types.KindUint16, []Value{Uint16(0), Uint16(math.MaxUint16)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetUint16(1); return asValue(v, ok, err, Uint16, types.KindUint16) }},
		{"uint32", "BIGINT", types.KindUint32, []Value{Uint32(0), Uint32(math.MaxUint32)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetUint32(1); return asValue(v, ok, err, Uint32, types.KindUint32) }},
		{"uint64", "UNSIGNED BIG INT", types.KindUint64, []Value{Uint64(0), Uint64(math.MaxUint64)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetUint64(1); return asValue(v, ok, err, Uint64, types.KindUint64) }},
		{"float32", "REAL", types.KindFloat32, []Value{Float32(-math.MaxFloat32), Float32(math.MaxFloat32), Float32(math.SmallestNonzeroFloat32)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetFloat32(1); return asValue(v, ok, err, Float32, types.KindFloat32) }},
		{"float64", "DOUBLE", types.KindFloat64, []Value{Float64(-math.MaxFloat64), Float64(math.MaxFloat64), Float64(math.SmallestNonzeroFloat64)},
			func(s *Statement) (Value, error) { v, ok, err := s.GetFloat64(1); return asValue(v, ok, err, Float64, types.KindFloat64) }},
		{"text", "TEXT", types.KindText, []Value{Text(""), Text("héllo wörld ✓"), Text(strings.Repeat("x", 1000))},
			func(s *Statement) (Value, error) { v, ok, err := s.GetText(1); return asValue(v, ok, err, Text, types.KindText) }},
		{"bytes", "BLOB", types.KindBytes, []Value{Bytes([]byte{}), Bytes(allBytes())},
			func(s *Statement) (Value, error) { v, ok, err := s.GetBytes(1); return asValue(v, ok, err, Bytes, types.KindBytes) }},
		{"uuid", "UUID", types.KindUUID, []Value{UUID(uuid.Nil), UUID(uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"))},
			func(s *Statement) (Value, error) { v, ok, err := s.GetUUID(1); return asValue(v, ok, err, UUID, types.KindUUID) }},
	}
}

func TestRoundTrip_MinMaxNull(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))

	for _, tc := range roundTripCases() {
		t.Run(tc.name, func(t *testing.T) {
			table := "rt_" + tc.name
			mustExec(t, conn, fmt.Sprintf("CREATE TABLE %s (id INTEGER, v %s)", table, tc.decl))

			values := append(append([]Value(nil), tc.values...), NullOf(tc.kind))

			ins, err := conn.Prepare(fmt.Sprintf("INSERT INTO %s (id, v) VALUES (?, ?)", table))
			require.NoError(t, err)
			defer ins.Close()

			for i, v := range values {
				require.NoError(t, ins.BindParameter(1, Int32(int32(i))))
				require.NoError(t, ins.BindParameter(2, v))
				require.NoError(t, ins.Execute())
			}

			sel := execPrepared(t, conn, fmt.Sprintf("SELECT v FROM %s WHERE id = ?", table), Int32(0))
			defer sel.Close()

			for i, want := range values {
				if i > 0 {
					rebind(t, sel, Int32(int32(i)))
				}

				res, err := sel.Fetch()
				require.NoError(t, err)
				require.Equal(t, types.FetchSuccess, res)

				got, err := tc.read(sel)
				require.NoError(t, err)
				assert.Equal(t, want, got, "row %d", i)
			}
		})
	}
}

func TestRoundTrip_NullIsNotZero(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))
	mustExec(t, conn, "CREATE TABLE t (id INTEGER, n INTEGER)")

	ins := execPrepared(t, conn, "INSERT INTO t (id, n) VALUES (?, ?)", Int32(1), Null())
	require.NoError(t, ins.Close())
	ins = execPrepared(t, conn, "INSERT INTO t (id, n) VALUES (?, ?)", Int32(2), Int32(0))
	require.NoError(t, ins.Close())

	sel := execPrepared(t, conn, "SELECT n FROM t WHERE id = ?", Int32(1))
	res, err := sel.Fetch()
	require.NoError(t, err)
	require.Equal(t, types.FetchSuccess, res)

	n, ok, err := sel.GetInt32(1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, n)

	rebind(t, sel, Int32(2))
	_, err = sel.Fetch()
	require.NoError(t, err)

	n, ok, err = sel.GetInt32(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, n)
}

func TestRoundTrip_GetValue(t *testing.T) {
	conn := newTestConn(t, testutil.NewSQLiteDriver(t))
	mustExec(t, conn, `CREATE TABLE typed (
		b BOOLEAN, i8 TINYINT, i16 SMALLINT, i32 MEDIUMINT, i64 INTEGER,
		f32 REAL, f64 DOUBLE, s VARCHAR(20), w NVARCHAR(20), raw BLOB, id UUID, d DECIMAL(10,2)
	)`)

	id := uuid.New()
	ins := execPrepared(t, conn, "INSERT INTO typed VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		Bool(true), Int8(-1), Int16(-2), Int32(-3), Int64(-4),
		Float32(0.5), Float64(0.25), Text("narrow"), Text("wide ✓"), Bytes([]byte{9, 8}), UUID(id), Text("12.50"))
	require.NoError(t, ins.Close())

	sel, err := conn.Execute("SELECT * FROM typed")
	require.NoError(t, err)
	_, err = sel.Fetch()
	require.NoError(t, err)

	want := []Value{
		Bool(true), Int8(-1), Int16(-2), Int32(-3), Int64(-4),
		Float32(0.5), Float64(0.25), Text("narrow"), Text("wide ✓"), Bytes([]byte{9, 8}), UUID(id), Text("12.5"),
	}
	for i, w := range want {
		got, err := sel.GetValue(i + 1)
		require.NoError(t, err, "column %d", i+1)
		assert.Equal(t, w, got, "column %d", i+1)
	}
}
