package sqlite

import (
	"sync"

	"github.com/arloliu/odbc/api"
)

// DataSource is a named SQLite database.
type DataSource struct {
	Name        string
	Path        string
	Description string
}

// Option configures a Driver.
type Option func(*Driver)

// WithDataSource registers a data source name.
//
// Parameters:
//   - name: Name passed to Connect
//   - path: SQLite database path or URI
//   - description: Text reported by SQLDataSources
//
// Returns:
//   - Option: A configuration option
func WithDataSource(name, path, description string) Option {
	return func(d *Driver) {
		d.sources = append(d.sources, DataSource{Name: name, Path: path, Description: description})
	}
}

// Driver is an in-process ODBC driver backed by SQLite.
//
// Driver is safe for concurrent use by handles on different connections;
// calls on a single statement follow ODBC's one-caller rule except Cancel.
type Driver struct {
	mu      sync.Mutex
	next    api.Handle
	handles map[api.Handle]any
	sources []DataSource

	pooling     uintptr
	poolingSets int
}

var _ api.API = (*Driver)(nil)

// New creates a driver.
//
// Parameters:
//   - opts: Configuration options (e.g., WithDataSource)
//
// Returns:
//   - *Driver: A driver ready for AllocHandle
func New(opts ...Option) *Driver {
	d := &Driver{handles: make(map[api.Handle]any)}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// PoolingSets returns how many times the process-wide pooling attribute
// was set, and the last value.
func (d *Driver) PoolingSets() (int, uintptr) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.poolingSets, d.pooling
}

// OpenHandles returns the number of allocated handles.
func (d *Driver) OpenHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.handles)
}

// ----------------------
// Diagnostics
// ----------------------

type diag struct {
	state  string
	native int32
	msg    string
}

// diagnostics is the diagnostic area shared by every handle kind.
type diagnostics struct {
	dmu   sync.Mutex
	diags []diag
}

func (d *diagnostics) clearDiags() {
	d.dmu.Lock()
	d.diags = d.diags[:0]
	d.dmu.Unlock()
}

func (d *diagnostics) post(state, msg string) {
	d.dmu.Lock()
	d.diags = append(d.diags, diag{state: state, msg: "[odbc-sqlite] " + msg})
	d.dmu.Unlock()
}

// fail records an error record and returns SQL_ERROR.
func (d *diagnostics) fail(state, msg string) api.Return {
	d.post(state, msg)
	return api.SQL_ERROR
}

// warn records a warning record and returns SQL_SUCCESS_WITH_INFO.
func (d *diagnostics) warn(state, msg string) api.Return {
	d.post(state, msg)
	return api.SQL_SUCCESS_WITH_INFO
}

func (d *diagnostics) record(rec int) (diag, bool) {
	d.dmu.Lock()
	defer d.dmu.Unlock()

	if rec < 1 || rec > len(d.diags) {
		return diag{}, false
	}

	return d.diags[rec-1], true
}

type diagHolder interface {
	area() *diagnostics
}

func (d *diagnostics) area() *diagnostics { return d }

// ----------------------
// Handle table
// ----------------------

type envState struct {
	diagnostics

	version  uintptr
	dsCursor int
}

func (d *Driver) lookup(h api.Handle) any {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.handles[h]
}

func (d *Driver) env(h api.Handle) *envState {
	e, _ := d.lookup(h).(*envState)
	if e != nil {
		e.clearDiags()
	}

	return e
}

func (d *Driver) register(state any) api.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.next++
	d.handles[d.next] = state

	return d.next
}

// AllocHandle implements api.API.
func (d *Driver) AllocHandle(kind api.HandleType, parent api.Handle) (api.Handle, api.Return) {
	switch kind {
	case api.SQL_HANDLE_ENV:
		if parent != api.SQL_NULL_HANDLE {
			return api.SQL_NULL_HANDLE, api.SQL_ERROR
		}
		return d.register(&envState{}), api.SQL_SUCCESS

	case api.SQL_HANDLE_DBC:
		e := d.env(parent)
		if e == nil {
			return api.SQL_NULL_HANDLE, api.SQL_INVALID_HANDLE
		}
		if e.version == 0 {
			return api.SQL_NULL_HANDLE, e.fail("HY010", "ODBC version not set on environment")
		}
		return d.register(&dbcState{env: parent}), api.SQL_SUCCESS

	case api.SQL_HANDLE_STMT:
		c := d.dbc(parent)
		if c == nil {
			return api.SQL_NULL_HANDLE, api.SQL_INVALID_HANDLE
		}
		if c.conn == nil {
			return api.SQL_NULL_HANDLE, c.fail("08003", "Connection not open")
		}
		return d.register(&stmtState{dbc: c}), api.SQL_SUCCESS
	}

	return api.SQL_NULL_HANDLE, api.SQL_ERROR
}

// FreeHandle implements api.API.
func (d *Driver) FreeHandle(kind api.HandleType, h api.Handle) api.Return {
	d.mu.Lock()
	state, ok := d.handles[h]
	if ok {
		delete(d.handles, h)
	}
	d.mu.Unlock()

	if !ok {
		return api.SQL_INVALID_HANDLE
	}

	switch s := state.(type) {
	case *dbcState:
		if kind != api.SQL_HANDLE_DBC {
			return api.SQL_INVALID_HANDLE
		}
		s.disconnect()
	case *stmtState:
		if kind != api.SQL_HANDLE_STMT {
			return api.SQL_INVALID_HANDLE
		}
		s.abort()
	case *envState:
		if kind != api.SQL_HANDLE_ENV {
			return api.SQL_INVALID_HANDLE
		}
	}

	return api.SQL_SUCCESS
}

// GetDiagRec implements api.API.
func (d *Driver) GetDiagRec(_ api.HandleType, h api.Handle, rec int16, state, msg []byte) (int32, int16, api.Return) {
	holder, ok := d.lookup(h).(diagHolder)
	if !ok {
		return 0, 0, api.SQL_INVALID_HANDLE
	}

	r, ok := holder.area().record(int(rec))
	if !ok {
		return 0, 0, api.SQL_NO_DATA
	}

	putCString(state, r.state)
	putCString(msg, r.msg)

	return r.native, int16(len(r.msg)), api.SQL_SUCCESS
}

// putCString copies s into buf as a NUL-terminated string, truncating as
// needed. It reports whether s fit.
func putCString(buf []byte, s string) bool {
	if len(buf) == 0 {
		return len(s) == 0
	}

	n := copy(buf[:len(buf)-1], s)
	buf[n] = 0

	return n == len(s)
}

// ----------------------
// Environment
// ----------------------

// SetEnvAttr implements api.API.
func (d *Driver) SetEnvAttr(env api.Handle, attr int32, value uintptr) api.Return {
	if env == api.SQL_NULL_HANDLE {
		if attr != api.SQL_ATTR_CONNECTION_POOLING {
			return api.SQL_ERROR
		}
		d.mu.Lock()
		d.pooling = value
		d.poolingSets++
		d.mu.Unlock()

		return api.SQL_SUCCESS
	}

	e := d.env(env)
	if e == nil {
		return api.SQL_INVALID_HANDLE
	}

	switch attr {
	case api.SQL_ATTR_ODBC_VERSION:
		if value != api.SQL_OV_ODBC3 && value != api.SQL_OV_ODBC3_80 {
			return e.fail("HY024", "Invalid attribute value")
		}
		e.version = value
		return api.SQL_SUCCESS
	case api.SQL_ATTR_CONNECTION_POOLING:
		return e.fail("HY092", "Connection pooling is a process-wide attribute")
	}

	return e.fail("HY092", "Invalid attribute/option identifier")
}

// DataSources implements api.API.
func (d *Driver) DataSources(env api.Handle, direction uint16, name, desc []byte) (int16, int16, api.Return) {
	e := d.env(env)
	if e == nil {
		return 0, 0, api.SQL_INVALID_HANDLE
	}

	switch direction {
	case api.SQL_FETCH_FIRST:
		e.dsCursor = 0
	case api.SQL_FETCH_NEXT:
	default:
		return 0, 0, e.fail("HY103", "Invalid retrieval code")
	}

	d.mu.Lock()
	if e.dsCursor >= len(d.sources) {
		d.mu.Unlock()
		return 0, 0, api.SQL_NO_DATA
	}
	src := d.sources[e.dsCursor]
	d.mu.Unlock()
	e.dsCursor++

	rc := api.SQL_SUCCESS
	okName := putCString(name, src.Name)
	okDesc := putCString(desc, src.Description)
	if !okName || !okDesc {
		rc = e.warn("01004", "String data, right truncated")
	}

	return int16(len(src.Name)), int16(len(src.Description)), rc
}

func (d *Driver) source(name string) (DataSource, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, src := range d.sources {
		if src.Name == name {
			return src, true
		}
	}

	return DataSource{}, false
}
