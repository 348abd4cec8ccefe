package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/arloliu/odbc"
)

// ErrTxActive is returned by BeginTx while a transaction is already open.
var ErrTxActive = errors.New("odbc: transaction already active on this connection")

// Conn implements driver.Conn over an odbc.Connection.
type Conn struct {
	driver *Driver
	conn   *odbc.Connection
	inTx   bool
}

var (
	_ driver.Conn               = (*Conn)(nil)
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.ConnBeginTx        = (*Conn)(nil)
	_ driver.Pinger             = (*Conn)(nil)
	_ driver.SessionResetter    = (*Conn)(nil)
	_ driver.NamedValueChecker  = (*Conn)(nil)
)

// Connection returns the underlying odbc connection.
func (c *Conn) Connection() *odbc.Connection {
	return c.conn
}

// Prepare implements driver.Conn.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext.
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}

	return &Stmt{conn: c, stmt: st}, nil
}

// Close implements driver.Conn. Open statements are released with it.
func (c *Conn) Close() error {
	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()

	return c.conn.Close()
}

// Begin implements driver.Conn.
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx by switching autocommit off until
// the transaction ends.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sql.IsolationLevel(opts.Isolation) != sql.LevelDefault {
		return nil, errors.New("odbc: only the default isolation level is supported")
	}
	if c.inTx {
		return nil, ErrTxActive
	}

	if err := c.conn.SetAutoCommit(false); err != nil {
		return nil, err
	}
	c.inTx = true

	return &Tx{conn: c}, nil
}

// Ping implements driver.Pinger.
func (c *Conn) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.conn.IsAlive() {
		return driver.ErrBadConn
	}

	return nil
}

// ResetSession implements driver.SessionResetter.
func (c *Conn) ResetSession(ctx context.Context) error {
	if c.inTx {
		return driver.ErrBadConn
	}

	return c.Ping(ctx)
}

// CheckNamedValue implements driver.NamedValueChecker. Values the core can
// bind natively pass through unchanged so their exact width survives;
// everything else goes through the default database/sql conversion.
func (c *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	if _, ok := nv.Value.(time.Time); ok {
		return nil
	}
	if _, err := odbc.ValueOf(nv.Value); err == nil {
		return nil
	}

	return driver.ErrSkip
}

// Tx implements driver.Tx.
type Tx struct {
	conn *Conn
}

var _ driver.Tx = (*Tx)(nil)

// Commit implements driver.Tx.
func (t *Tx) Commit() error {
	return t.end(t.conn.conn.Commit)
}

// Rollback implements driver.Tx.
func (t *Tx) Rollback() error {
	return t.end(t.conn.conn.Rollback)
}

func (t *Tx) end(complete func() error) error {
	if !t.conn.inTx {
		return sql.ErrTxDone
	}

	var result *multierror.Error
	if err := complete(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := t.conn.conn.SetAutoCommit(true); err != nil {
		result = multierror.Append(result, err)
	}
	t.conn.inTx = false

	return result.ErrorOrNil()
}
