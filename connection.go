package odbc

import (
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/types"
)

// infoBufferLen bounds string-valued SQLGetInfo results.
const infoBufferLen = 256

// Connection is a session with one data source.
//
// A Connection owns the statements created from it and refers back to the
// Environment it was opened from. Like statements, it is not safe for
// concurrent use.
type Connection struct {
	*handle

	env       *Environment
	ownsEnv   bool
	connected bool

	statements map[*Statement]struct{}

	driverVersion string
	serverVersion string
	serverName    string
}

// Connect opens an environment and a connection to dsn in one step.
// Closing the returned connection also closes the environment.
//
// Parameters:
//   - a: The call-level API
//   - dsn: Data source name
//   - user: User name, may be empty
//   - password: Password, may be empty
//   - opts: Configuration options
//
// Returns:
//   - *Connection: The open connection
//   - error: *types.AllocationError or *types.DriverError
func Connect(a api.API, dsn, user, password string, opts ...Option) (*Connection, error) {
	env, err := NewEnvironment(a, opts...)
	if err != nil {
		return nil, err
	}

	conn, err := env.Connect(dsn, user, password)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	conn.ownsEnv = true

	return conn, nil
}

// DriverVersion returns the driver version reported at connect time.
func (c *Connection) DriverVersion() string { return c.driverVersion }

// ServerVersion returns the DBMS version reported at connect time.
func (c *Connection) ServerVersion() string { return c.serverVersion }

// ServerName returns the DBMS product name reported at connect time.
func (c *Connection) ServerName() string { return c.serverName }

// Environment returns the environment the connection was opened from.
func (c *Connection) Environment() *Environment { return c.env }

func (c *Connection) usable() error {
	if c.released {
		return types.ErrClosed
	}

	return nil
}

// loadInfo reads the identity strings once, right after connecting.
func (c *Connection) loadInfo() {
	c.driverVersion = c.info(api.SQL_DRIVER_VER)
	c.serverVersion = c.info(api.SQL_DBMS_VER)
	c.serverName = c.info(api.SQL_DBMS_NAME)
}

func (c *Connection) info(infoType uint16) string {
	var buf [infoBufferLen]byte

	n, rc := c.api.GetInfo(c.raw, infoType, buf[:])
	if !api.Succeeded(rc) {
		c.cfg.Logger.Debug("info item unavailable", "type", infoType)
		return ""
	}

	s := cString(buf[:min(max(int(n), 0), len(buf)-1)])
	if !utf8.ValidString(s) {
		return ""
	}

	return s
}

// IsAlive reports whether the driver still considers the connection usable.
func (c *Connection) IsAlive() bool {
	if c.released || !c.connected {
		return false
	}

	dead, rc := c.api.GetConnectAttr(c.raw, api.SQL_ATTR_CONNECTION_DEAD)
	if !api.Succeeded(rc) {
		return false
	}

	return dead == api.SQL_CD_FALSE
}

// Prepare compiles sql into a statement that can be bound and executed.
//
// Parameters:
//   - sql: Statement text with '?' parameter markers
//
// Returns:
//   - *Statement: The prepared statement in StateIdle
//   - error: *types.AllocationError or *types.DriverError
func (c *Connection) Prepare(sql string) (*Statement, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	s, err := newStatement(c, sql)
	if err != nil {
		return nil, err
	}

	rc := c.api.Prepare(s.raw, sql)
	if err := s.check("SQLPrepare", rc); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Execute runs sql once without parameters.
//
// Parameters:
//   - sql: Statement text
//
// Returns:
//   - *Statement: The executed statement, positioned before its first row
//     if it produced a result set
//   - error: *types.AllocationError or *types.DriverError
func (c *Connection) Execute(sql string) (*Statement, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	s, err := newStatement(c, sql)
	if err != nil {
		return nil, err
	}

	err = s.run("SQLExecDirect", func() api.Return {
		return c.api.ExecDirect(s.raw, sql)
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Tables returns the names of the tables visible through the connection.
//
// Returns:
//   - []string: Table names in driver order
//   - error: *types.DriverError on failure
func (c *Connection) Tables() ([]string, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	s, err := newStatement(c, "")
	if err != nil {
		return nil, err
	}
	defer s.Close()

	err = s.run("SQLTables", func() api.Return {
		return c.api.Tables(s.raw, "", "", "%", "TABLE")
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		res, err := s.Fetch()
		if err != nil {
			return nil, err
		}
		if res != types.FetchSuccess {
			return names, nil
		}

		// TABLE_NAME is the third column of every SQLTables result.
		name, ok, err := s.GetText(3)
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, name)
		}
	}
}

// SetAutoCommit switches the connection between autocommit and manual
// transaction mode.
//
// Parameters:
//   - enabled: true to commit every statement on its own
//
// Returns:
//   - error: *types.DriverError on failure
func (c *Connection) SetAutoCommit(enabled bool) error {
	if err := c.usable(); err != nil {
		return err
	}

	value := api.SQL_AUTOCOMMIT_OFF
	if enabled {
		value = api.SQL_AUTOCOMMIT_ON
	}

	rc := c.api.SetConnectAttr(c.raw, api.SQL_ATTR_AUTOCOMMIT, value)

	return c.check("SQLSetConnectAttr", rc)
}

// Commit commits the current transaction.
func (c *Connection) Commit() error {
	return c.endTran(api.SQL_COMMIT)
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback() error {
	return c.endTran(api.SQL_ROLLBACK)
}

func (c *Connection) endTran(completion int16) error {
	if err := c.usable(); err != nil {
		return err
	}

	rc := c.api.EndTran(api.SQL_HANDLE_DBC, c.raw, completion)

	return c.check("SQLEndTran", rc)
}

// Close closes every statement of the connection, disconnects and releases
// the connection handle. If the connection was created by Connect, its
// environment is closed too. Cleanup continues past failures; all of them
// are returned together.
//
// Returns:
//   - error: nil, or a *multierror.Error listing every failure
func (c *Connection) Close() error {
	if c.released {
		return nil
	}

	var result *multierror.Error

	for s := range c.statements {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.connected {
		c.connected = false
		if err := c.check("SQLDisconnect", c.api.Disconnect(c.raw)); err != nil {
			result = multierror.Append(result, err)
		}
		c.cfg.Logger.Info("disconnected", "server", c.serverName)
	}

	if err := c.release(); err != nil {
		result = multierror.Append(result, err)
	}
	delete(c.env.connections, c)

	if c.ownsEnv {
		if err := c.env.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}
