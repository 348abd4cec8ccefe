package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/arloliu/odbc/api"
)

const (
	driverVersion = "01.00.0000"
	driverName    = "odbc-sqlite"
	dbmsName      = "SQLite"
)

type dbcState struct {
	diagnostics

	env api.Handle

	// txMu serializes transaction bookkeeping between statements of the
	// connection.
	txMu       sync.Mutex
	db         *sql.DB
	conn       *sql.Conn
	dsn        string
	version    string
	inTx       bool
	autocommit bool
}

func (d *Driver) dbc(h api.Handle) *dbcState {
	c, _ := d.lookup(h).(*dbcState)
	if c != nil {
		c.clearDiags()
	}

	return c
}

// Connect implements api.API.
func (d *Driver) Connect(dbc api.Handle, dsn, _, _ string) api.Return {
	c := d.dbc(dbc)
	if c == nil {
		return api.SQL_INVALID_HANDLE
	}
	if c.conn != nil {
		return c.fail("08002", "Connection name in use")
	}

	path := dsn
	if src, ok := d.source(dsn); ok {
		path = src.Path
	} else if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		return c.fail("IM002", "Data source name not found and no default driver specified: "+dsn)
	}

	db, err := sql.Open(engineName, path)
	if err != nil {
		return c.fail("08001", err.Error())
	}

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return c.fail("08001", err.Error())
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return c.fail("08001", err.Error())
	}

	var version string
	if err := conn.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return c.fail("08001", err.Error())
	}

	c.db, c.conn, c.dsn, c.version = db, conn, dsn, version
	c.autocommit = true

	return api.SQL_SUCCESS
}

// Disconnect implements api.API.
func (d *Driver) Disconnect(dbc api.Handle) api.Return {
	c := d.dbc(dbc)
	if c == nil {
		return api.SQL_INVALID_HANDLE
	}
	if c.conn == nil {
		return c.fail("08003", "Connection not open")
	}

	c.disconnect()

	return api.SQL_SUCCESS
}

func (c *dbcState) disconnect() {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	if c.conn == nil {
		return
	}
	if c.inTx {
		_, _ = c.conn.ExecContext(context.Background(), "ROLLBACK")
		c.inTx = false
	}
	_ = c.conn.Close()
	_ = c.db.Close()
	c.conn, c.db = nil, nil
}

// SetConnectAttr implements api.API.
func (d *Driver) SetConnectAttr(dbc api.Handle, attr int32, value uintptr) api.Return {
	c := d.dbc(dbc)
	if c == nil {
		return api.SQL_INVALID_HANDLE
	}

	switch attr {
	case api.SQL_ATTR_AUTOCOMMIT:
		if c.conn == nil {
			return c.fail("08003", "Connection not open")
		}
		on := value != api.SQL_AUTOCOMMIT_OFF
		if on && !c.autocommit {
			// Switching autocommit back on commits the open transaction.
			if rc := c.endTran(api.SQL_COMMIT); !api.Succeeded(rc) {
				return rc
			}
		}
		c.txMu.Lock()
		c.autocommit = on
		c.txMu.Unlock()

		return api.SQL_SUCCESS
	}

	return c.fail("HY092", "Invalid attribute/option identifier")
}

// GetConnectAttr implements api.API.
func (d *Driver) GetConnectAttr(dbc api.Handle, attr int32) (uintptr, api.Return) {
	c := d.dbc(dbc)
	if c == nil {
		return 0, api.SQL_INVALID_HANDLE
	}

	switch attr {
	case api.SQL_ATTR_AUTOCOMMIT:
		if c.autocommit {
			return api.SQL_AUTOCOMMIT_ON, api.SQL_SUCCESS
		}
		return api.SQL_AUTOCOMMIT_OFF, api.SQL_SUCCESS
	case api.SQL_ATTR_CONNECTION_DEAD:
		if c.conn == nil || c.conn.PingContext(context.Background()) != nil {
			return api.SQL_CD_TRUE, api.SQL_SUCCESS
		}
		return api.SQL_CD_FALSE, api.SQL_SUCCESS
	}

	return 0, c.fail("HY092", "Invalid attribute/option identifier")
}

// GetInfo implements api.API.
func (d *Driver) GetInfo(dbc api.Handle, infoType uint16, buf []byte) (int16, api.Return) {
	c := d.dbc(dbc)
	if c == nil {
		return 0, api.SQL_INVALID_HANDLE
	}

	var value string
	switch infoType {
	case api.SQL_DRIVER_VER:
		value = driverVersion
	case api.SQL_DRIVER_NAME:
		value = driverName
	case api.SQL_DBMS_NAME:
		value = dbmsName
	case api.SQL_DBMS_VER:
		if c.conn == nil {
			return 0, c.fail("08003", "Connection not open")
		}
		value = c.version
	case api.SQL_DATA_SOURCE_NAME:
		value = c.dsn
	default:
		return 0, c.fail("HY096", "Information type out of range")
	}

	if !putCString(buf, value) {
		return int16(len(value)), c.warn("01004", "String data, right truncated")
	}

	return int16(len(value)), api.SQL_SUCCESS
}

// EndTran implements api.API.
func (d *Driver) EndTran(kind api.HandleType, h api.Handle, completion int16) api.Return {
	switch kind {
	case api.SQL_HANDLE_DBC:
		c := d.dbc(h)
		if c == nil {
			return api.SQL_INVALID_HANDLE
		}
		if c.conn == nil {
			return c.fail("08003", "Connection not open")
		}
		return c.endTran(completion)

	case api.SQL_HANDLE_ENV:
		if d.env(h) == nil {
			return api.SQL_INVALID_HANDLE
		}
		rc := api.SQL_SUCCESS
		for _, c := range d.connectionsOf(h) {
			if r := c.endTran(completion); !api.Succeeded(r) {
				rc = r
			}
		}
		return rc
	}

	return api.SQL_INVALID_HANDLE
}

func (d *Driver) connectionsOf(env api.Handle) []*dbcState {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*dbcState
	for _, state := range d.handles {
		if c, ok := state.(*dbcState); ok && c.env == env && c.conn != nil {
			out = append(out, c)
		}
	}

	return out
}

func (c *dbcState) endTran(completion int16) api.Return {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	if !c.inTx {
		return api.SQL_SUCCESS
	}

	stmt := "COMMIT"
	if completion == api.SQL_ROLLBACK {
		stmt = "ROLLBACK"
	} else if completion != api.SQL_COMMIT {
		return c.fail("HY012", "Invalid transaction operation code")
	}

	if _, err := c.conn.ExecContext(context.Background(), stmt); err != nil {
		return c.fail(sqlState(err), err.Error())
	}
	c.inTx = false

	return api.SQL_SUCCESS
}

// beginIfNeeded opens the implicit transaction of manual-commit mode.
func (c *dbcState) beginIfNeeded(ctx context.Context, text string) error {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	if c.autocommit || c.inTx || isTxControl(text) {
		return nil
	}

	if _, err := c.conn.ExecContext(ctx, "BEGIN"); err != nil {
		return err
	}
	c.inTx = true

	return nil
}
