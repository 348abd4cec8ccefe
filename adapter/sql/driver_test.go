package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/odbc"
	"github.com/arloliu/odbc/test/testutil"
	"github.com/arloliu/odbc/types"
)

type item struct {
	ID     int64          `db:"id"`
	Name   string         `db:"name"`
	Price  float64        `db:"price"`
	Data   []byte         `db:"data"`
	Active bool           `db:"active"`
	Note   sql.NullString `db:"note"`
}

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	drv := testutil.NewSQLiteDriver(t)
	db, err := Open(drv, "DSN="+testutil.TestDSN)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	x := sqlx.NewDb(db, "odbc")
	x.MustExec(`CREATE TABLE items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL,
		data BLOB,
		active BOOLEAN,
		note TEXT
	)`)

	return x
}

func TestDB_ExecAndSelect(t *testing.T) {
	db := openTestDB(t)

	res, err := db.Exec("INSERT INTO items (id, name, price, data, active, note) VALUES (?, ?, ?, ?, ?, ?)",
		1, "widget", 2.5, []byte{0x00, 0x01, 0xFF}, true, nil)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = res.LastInsertId()
	require.ErrorIs(t, err, ErrLastInsertID)

	db.MustExec("INSERT INTO items (id, name, price, data, active, note) VALUES (?, ?, ?, ?, ?, ?)",
		2, "gadget", 10.0, []byte{}, false, "fragile")

	var items []item
	require.NoError(t, db.Select(&items, "SELECT id, name, price, data, active, note FROM items ORDER BY id"))
	require.Len(t, items, 2)

	assert.Equal(t, item{ID: 1, Name: "widget", Price: 2.5, Data: []byte{0x00, 0x01, 0xFF}, Active: true}, items[0])
	assert.Equal(t, int64(2), items[1].ID)
	assert.False(t, items[1].Active)
	assert.Empty(t, items[1].Data)
	assert.Equal(t, sql.NullString{String: "fragile", Valid: true}, items[1].Note)

	var one item
	require.NoError(t, db.Get(&one, "SELECT id, name, price, data, active, note FROM items WHERE id = ?", 2))
	assert.Equal(t, "gadget", one.Name)
}

func TestDB_NamedExec(t *testing.T) {
	db := openTestDB(t)

	_, err := db.NamedExec(`INSERT INTO items (id, name, price, active) VALUES (:id, :name, :price, :active)`,
		map[string]any{"id": 7, "name": "named", "price": 1.25, "active": true})
	require.NoError(t, err)

	var name string
	require.NoError(t, db.Get(&name, "SELECT name FROM items WHERE id = ?", 7))
	assert.Equal(t, "named", name)
}

func TestDB_NativeWidthsAndUUID(t *testing.T) {
	db := openTestDB(t)
	db.MustExec("CREATE TABLE widths (i8 TINYINT, u16 INTEGER, id UUID)")

	id := uuid.New()
	db.MustExec("INSERT INTO widths VALUES (?, ?, ?)", int8(-128), uint16(65535), id)

	var (
		i8  int8
		u16 uint16
		got string
	)
	require.NoError(t, db.QueryRow("SELECT i8, u16, id FROM widths").Scan(&i8, &u16, &got))
	assert.Equal(t, int8(-128), i8)
	assert.Equal(t, uint16(65535), u16)
	assert.Equal(t, id.String(), got)
}

func TestDB_TimeIsSentAsText(t *testing.T) {
	db := openTestDB(t)

	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	db.MustExec("INSERT INTO items (id, name) VALUES (?, ?)", 1, ts)

	var name string
	require.NoError(t, db.Get(&name, "SELECT name FROM items WHERE id = 1"))
	assert.Equal(t, "2024-05-06T07:08:09Z", name)
}

func TestDB_UpdateNoRows(t *testing.T) {
	db := openTestDB(t)

	res, err := db.Exec("UPDATE items SET name = ? WHERE id = ?", "none", 99)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDB_Transactions(t *testing.T) {
	db := openTestDB(t)

	tx, err := db.Beginx()
	require.NoError(t, err)
	tx.MustExec("INSERT INTO items (id, name) VALUES (?, ?)", 1, "rolled back")
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM items"))
	assert.Equal(t, 0, count)

	tx, err = db.Beginx()
	require.NoError(t, err)
	tx.MustExec("INSERT INTO items (id, name) VALUES (?, ?)", 2, "committed")
	require.NoError(t, tx.Commit())

	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM items"))
	assert.Equal(t, 1, count)

	_, err = db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelSerializable})
	require.Error(t, err)
}

func TestDB_ColumnTypes(t *testing.T) {
	db := openTestDB(t)
	db.MustExec("INSERT INTO items (id, name) VALUES (1, 'x')")

	rows, err := db.Query("SELECT id, name, data FROM items")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "BIGINT", cols[0].DatabaseTypeName())
	assert.Equal(t, "VARCHAR", cols[1].DatabaseTypeName())
	assert.Equal(t, "VARBINARY", cols[2].DatabaseTypeName())
}

func TestDB_ContextCancel(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := db.QueryContext(ctx,
		"WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM c) SELECT COUNT(*) FROM c")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var derr *types.DriverError
	if errors.As(err, &derr) {
		assert.True(t, derr.IsCancel())
	}

	// The connection is usable again afterwards.
	var one int
	require.NoError(t, db.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestDB_NamedArgumentsRejected(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec("INSERT INTO items (id, name) VALUES (?, ?)", sql.Named("id", 1), "x")
	require.Error(t, err)
}

func TestDriver_Register(t *testing.T) {
	drv := testutil.NewSQLiteDriver(t)
	Register("odbc-test-register", drv, odbc.WithProbeSize(16))

	db, err := sql.Open("odbc-test-register", "DSN="+testutil.TestDSN)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	var v string
	require.NoError(t, db.QueryRow("SELECT ?", "a value longer than sixteen bytes").Scan(&v))
	assert.Equal(t, "a value longer than sixteen bytes", v)
}

func TestDriver_OpenUnknownDSN(t *testing.T) {
	drv := testutil.NewSQLiteDriver(t)
	db, err := Open(drv, "DSN=missing")
	require.NoError(t, err)
	defer db.Close()

	err = db.Ping()
	require.Error(t, err)

	var derr *types.DriverError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "IM002", derr.State)
}
