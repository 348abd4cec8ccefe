package odbc

import (
	"github.com/hashicorp/go-multierror"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/types"
)

// dataSourceNameLen bounds data source names and descriptions.
const dataSourceNameLen = 256

// Environment is the root of the handle hierarchy.
//
// All connections opened from an Environment must be closed before it;
// Close enforces this by closing any that are still open.
type Environment struct {
	*handle

	connections map[*Connection]struct{}
}

// NewEnvironment allocates an environment over a call-level API and
// declares the configured ODBC behavior version on it.
//
// The first environment created over a given API also applies the
// process-wide connection pooling preference.
//
// Parameters:
//   - a: The call-level API, e.g. unixodbc.New() or sqlite.New()
//   - opts: Configuration options
//
// Returns:
//   - *Environment: The environment
//   - error: types.ErrNilAPI, *types.AllocationError or *types.DriverError
func NewEnvironment(a api.API, opts ...Option) (*Environment, error) {
	if a == nil {
		return nil, types.ErrNilAPI
	}

	cfg := newConfig(opts)
	applyPooling(a, cfg)

	h, err := openHandle(a, cfg, types.HandleEnv, nil)
	if err != nil {
		return nil, err
	}

	rc := a.SetEnvAttr(h.raw, api.SQL_ATTR_ODBC_VERSION, uintptr(cfg.ODBCVersion))
	if err := h.check("SQLSetEnvAttr", rc); err != nil {
		_ = h.release()
		return nil, err
	}

	cfg.Logger.Debug("environment initialized", "odbcVersion", uintptr(cfg.ODBCVersion))

	return &Environment{
		handle:      h,
		connections: make(map[*Connection]struct{}),
	}, nil
}

// Config returns the configuration shared by the environment's connections.
func (e *Environment) Config() *Config {
	return e.cfg
}

// Connect opens a connection to a data source.
//
// A connection handle allocated for a failed attempt is released before
// Connect returns.
//
// Parameters:
//   - dsn: Data source name
//   - user: User name, may be empty
//   - password: Password, may be empty
//
// Returns:
//   - *Connection: The open connection
//   - error: *types.AllocationError or *types.DriverError
func (e *Environment) Connect(dsn, user, password string) (*Connection, error) {
	if e.released {
		return nil, types.ErrClosed
	}

	h, err := openHandle(e.api, e.cfg, types.HandleDbc, e.handle)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		handle:     h,
		env:        e,
		statements: make(map[*Statement]struct{}),
	}

	rc := e.api.Connect(h.raw, dsn, user, password)
	if err := h.check("SQLConnect", rc); err != nil {
		_ = h.release()
		return nil, err
	}
	c.connected = true
	e.connections[c] = struct{}{}

	if !e.cfg.AutoCommit {
		if err := c.SetAutoCommit(false); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	c.loadInfo()
	e.cfg.Logger.Info("connected",
		"dsn", dsn,
		"server", c.serverName,
		"serverVersion", c.serverVersion,
		"driverVersion", c.driverVersion,
	)

	return c, nil
}

// DataSources lists the names of the data sources the driver manager knows.
//
// Returns:
//   - []string: Data source names
//   - error: *types.DriverError on failure
func (e *Environment) DataSources() ([]string, error) {
	if e.released {
		return nil, types.ErrClosed
	}

	var names []string
	direction := api.SQL_FETCH_FIRST

	for {
		var name, desc [dataSourceNameLen]byte

		n, _, rc := e.api.DataSources(e.raw, direction, name[:], desc[:])
		if rc == api.SQL_NO_DATA {
			return names, nil
		}
		if err := e.check("SQLDataSources", rc); err != nil {
			return nil, err
		}

		names = append(names, cString(name[:min(max(int(n), 0), len(name)-1)]))
		direction = api.SQL_FETCH_NEXT
	}
}

// Close closes every connection still open on the environment and then
// releases the environment handle.
//
// Returns:
//   - error: nil, or a *multierror.Error listing every failure
func (e *Environment) Close() error {
	if e.released {
		return nil
	}

	var result *multierror.Error

	for c := range e.connections {
		// A connection that owns this environment would close it again.
		c.ownsEnv = false
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := e.release(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
