package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"

	"github.com/arloliu/odbc"
	"github.com/arloliu/odbc/api"
)

// Driver implements driver.Driver and driver.DriverContext over one
// odbc.Environment, created on first use and shared by every connection.
type Driver struct {
	api  api.API
	opts []odbc.Option

	// mu serializes environment-level calls; connections come and go on
	// database/sql's pool goroutines.
	mu  sync.Mutex
	env *odbc.Environment
}

var (
	_ driver.Driver        = (*Driver)(nil)
	_ driver.DriverContext = (*Driver)(nil)
)

// NewDriver creates a driver over a call-level API.
//
// Parameters:
//   - a: The call-level API, e.g. unixodbc.New()
//   - opts: Options applied to the environment and every connection
//
// Returns:
//   - *Driver: A driver ready to be registered or used with OpenDB
func NewDriver(a api.API, opts ...odbc.Option) *Driver {
	return &Driver{api: a, opts: opts}
}

// Register makes a driver available under name for sql.Open.
//
// Like sql.Register, it panics if called twice with the same name.
func Register(name string, a api.API, opts ...odbc.Option) {
	sql.Register(name, NewDriver(a, opts...))
}

// Open returns a *sql.DB for a connection string. The environment behind it
// is released when the DB is closed.
//
// Parameters:
//   - a: The call-level API
//   - dsn: A connection string accepted by ParseDSN
//   - opts: Options applied to the environment
//
// Returns:
//   - *sql.DB: The database handle
//   - error: If the connection string is invalid
func Open(a api.API, dsn string, opts ...odbc.Option) (*sql.DB, error) {
	d := NewDriver(a, opts...)

	c, err := d.connector(dsn)
	if err != nil {
		return nil, err
	}
	c.ownsDriver = true

	return sql.OpenDB(c), nil
}

// Open implements driver.Driver.
func (d *Driver) Open(name string) (driver.Conn, error) {
	c, err := d.connector(name)
	if err != nil {
		return nil, err
	}

	return c.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext.
func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	return d.connector(name)
}

func (d *Driver) connector(name string) (*Connector, error) {
	dsn, err := ParseDSN(name)
	if err != nil {
		return nil, err
	}

	return &Connector{driver: d, dsn: dsn}, nil
}

// environment returns the shared environment. Callers hold d.mu.
func (d *Driver) environment() (*odbc.Environment, error) {
	if d.env != nil {
		return d.env, nil
	}

	env, err := odbc.NewEnvironment(d.api, d.opts...)
	if err != nil {
		return nil, err
	}
	d.env = env

	return env, nil
}

// Close releases the environment and every connection still open on it.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.env == nil {
		return nil
	}
	err := d.env.Close()
	d.env = nil

	return err
}

// Connector implements driver.Connector for one parsed connection string.
type Connector struct {
	driver     *Driver
	dsn        DSN
	ownsDriver bool
}

var _ driver.Connector = (*Connector)(nil)

// Connect implements driver.Connector.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := c.driver
	d.mu.Lock()
	defer d.mu.Unlock()

	env, err := d.environment()
	if err != nil {
		return nil, err
	}

	conn, err := env.Connect(c.dsn.Name, c.dsn.User, c.dsn.Password)
	if err != nil {
		return nil, err
	}

	return &Conn{driver: d, conn: conn}, nil
}

// Driver implements driver.Connector.
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// Close releases the driver's environment when the connector was created
// by Open. sql.DB.Close calls it.
func (c *Connector) Close() error {
	if !c.ownsDriver {
		return nil
	}

	return c.driver.Close()
}
