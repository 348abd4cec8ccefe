package sqlite

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unsafe"

	"github.com/arloliu/odbc/api"
)

type binding struct {
	cType   api.CType
	sqlType api.SQLType
	value   unsafe.Pointer
	bufLen  int64
	ind     *int64
}

type phase int

const (
	phaseIdle phase = iota
	phaseNeedData
	phaseCursor
)

type stmtState struct {
	diagnostics

	dbc *dbcState

	// mu guards everything below against Cancel from another goroutine.
	mu sync.Mutex

	text      string
	prepared  bool
	numParams int
	params    map[uint16]*binding

	phase    phase
	args     []any
	pending  []uint16
	current  uint16
	received []byte
	cancel   context.CancelFunc

	result   *resultSet
	rowCount int64
}

func (d *Driver) stmt(h api.Handle) *stmtState {
	s, _ := d.lookup(h).(*stmtState)
	if s != nil {
		s.clearDiags()
	}

	return s
}

// abort cancels any in-flight execution and drops the cursor.
func (s *stmtState) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.resetExecution()
	s.result = nil
}

func (s *stmtState) resetExecution() {
	s.phase = phaseIdle
	s.args = nil
	s.pending = nil
	s.current = 0
	s.received = nil
}

// Prepare implements api.API.
func (d *Driver) Prepare(stmt api.Handle, text string) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	return s.prepare(text)
}

func (s *stmtState) prepare(text string) api.Return {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseIdle {
		return s.fail("24000", "Invalid cursor state")
	}
	if s.dbc.conn == nil {
		return s.fail("08003", "Connection not open")
	}

	ps, err := s.dbc.conn.PrepareContext(context.Background(), text)
	if err != nil {
		return s.fail(sqlState(err), err.Error())
	}
	_ = ps.Close()

	s.text = text
	s.prepared = true
	s.numParams = countParams(text)
	s.result = nil

	return api.SQL_SUCCESS
}

// ExecDirect implements api.API.
func (d *Driver) ExecDirect(stmt api.Handle, text string) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	if rc := s.prepare(text); !api.Succeeded(rc) {
		return rc
	}

	return s.execute()
}

// NumParams implements api.API.
func (d *Driver) NumParams(stmt api.Handle) (int16, api.Return) {
	s := d.stmt(stmt)
	if s == nil {
		return 0, api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.prepared {
		return 0, s.fail("HY010", "Function sequence error")
	}

	return int16(s.numParams), api.SQL_SUCCESS
}

// BindParameter implements api.API.
func (d *Driver) BindParameter(stmt api.Handle, ordinal uint16, ioType int16, cType api.CType, sqlType api.SQLType,
	_ uint64, _ int16, value unsafe.Pointer, bufLen int64, ind *int64,
) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ordinal == 0 {
		return s.fail("07009", "Invalid descriptor index")
	}
	if ioType != api.SQL_PARAM_INPUT {
		return s.fail("HYC00", "Optional feature not implemented")
	}
	if !supportedCType(cType) {
		return s.fail("HY003", "Invalid application buffer type")
	}
	if s.params == nil {
		s.params = make(map[uint16]*binding)
	}
	s.params[ordinal] = &binding{cType: cType, sqlType: sqlType, value: value, bufLen: bufLen, ind: ind}

	return api.SQL_SUCCESS
}

// Execute implements api.API.
func (d *Driver) Execute(stmt api.Handle) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	return s.execute()
}

// execute reads every bound parameter and either runs the statement or
// enters the need-data phase for data-at-execution parameters.
func (s *stmtState) execute() api.Return {
	s.mu.Lock()

	if !s.prepared {
		s.mu.Unlock()
		return s.fail("HY010", "Function sequence error")
	}
	if s.phase != phaseIdle {
		s.mu.Unlock()
		return s.fail("24000", "Invalid cursor state")
	}

	args := make([]any, s.numParams)
	var pending []uint16

	for i := range args {
		ord := uint16(i + 1)
		b, ok := s.params[ord]
		if !ok {
			s.mu.Unlock()
			return s.fail("07002", "COUNT field incorrect")
		}

		ind := b.bufLen
		if b.ind != nil {
			ind = *b.ind
		}

		switch {
		case ind == api.SQL_NULL_DATA:
			args[i] = nil
		case api.IsDataAtExec(ind):
			pending = append(pending, ord)
		default:
			v, err := readParam(b, ind)
			if err != nil {
				s.mu.Unlock()
				return s.fail("HY090", err.Error())
			}
			args[i] = v
		}
	}

	if len(pending) > 0 {
		s.phase = phaseNeedData
		s.args = args
		s.pending = pending
		s.current = 0
		s.mu.Unlock()

		return api.SQL_NEED_DATA
	}
	s.mu.Unlock()

	return s.run(args)
}

// run executes the statement text with args and materializes any result.
func (s *stmtState) run(args []any) api.Return {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	text := s.text
	s.mu.Unlock()

	res, affected, err := s.dbc.run(ctx, text, args)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = nil

	if err != nil {
		s.resetExecution()
		if ctx.Err() != nil || isInterrupt(err) {
			return s.fail("HY008", "Operation canceled")
		}
		return s.fail(sqlState(err), err.Error())
	}

	s.resetExecution()
	s.result = res
	s.rowCount = affected
	if res != nil {
		s.phase = phaseCursor
		return api.SQL_SUCCESS
	}

	if affected == 0 && isSearched(text) {
		return api.SQL_NO_DATA
	}

	return api.SQL_SUCCESS
}

func (c *dbcState) run(ctx context.Context, text string, args []any) (*resultSet, int64, error) {
	if c.conn == nil {
		return nil, 0, errors.New("connection not open")
	}
	if err := c.beginIfNeeded(ctx, text); err != nil {
		return nil, 0, err
	}

	if returnsRows(text) {
		rows, err := c.conn.QueryContext(ctx, text, args...)
		if err != nil {
			return nil, 0, err
		}
		res, err := materialize(rows)
		if err != nil {
			return nil, 0, err
		}
		return res, -1, nil
	}

	r, err := c.conn.ExecContext(ctx, text, args...)
	if err != nil {
		return nil, 0, err
	}
	n, err := r.RowsAffected()
	if err != nil {
		n = -1
	}

	return nil, n, nil
}

// ParamData implements api.API.
func (d *Driver) ParamData(stmt api.Handle) (unsafe.Pointer, api.Return) {
	s := d.stmt(stmt)
	if s == nil {
		return nil, api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()

	if s.phase != phaseNeedData {
		s.mu.Unlock()
		return nil, s.fail("HY010", "Function sequence error")
	}

	if s.current != 0 {
		b := s.params[s.current]
		v, err := deferredValue(b.cType, s.received)
		if err != nil {
			s.resetExecution()
			s.mu.Unlock()
			return nil, s.fail("22018", err.Error())
		}
		s.args[s.current-1] = v
		s.current = 0
		s.received = nil
	}

	if len(s.pending) > 0 {
		s.current = s.pending[0]
		s.pending = s.pending[1:]
		s.received = []byte{}
		token := s.params[s.current].value
		s.mu.Unlock()

		return token, api.SQL_NEED_DATA
	}

	args := s.args
	s.mu.Unlock()

	return nil, s.run(args)
}

// PutData implements api.API.
func (d *Driver) PutData(stmt api.Handle, data []byte) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseNeedData || s.current == 0 {
		return s.fail("HY010", "Function sequence error")
	}
	s.received = append(s.received, data...)

	return api.SQL_SUCCESS
}

// Cancel implements api.API. It is safe to call while another goroutine
// is blocked in Execute, ExecDirect or ParamData on the same statement.
func (d *Driver) Cancel(stmt api.Handle) api.Return {
	s, _ := d.lookup(stmt).(*stmtState)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		return api.SQL_SUCCESS
	}
	if s.phase == phaseNeedData {
		s.resetExecution()
	}

	return api.SQL_SUCCESS
}

// FreeStmt implements api.API.
func (d *Driver) FreeStmt(stmt api.Handle, option uint16) api.Return {
	if option == api.SQL_DROP {
		return d.FreeHandle(api.SQL_HANDLE_STMT, stmt)
	}

	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch option {
	case api.SQL_CLOSE:
		if s.phase == phaseNeedData {
			return s.fail("HY010", "Function sequence error")
		}
		s.phase = phaseIdle
		s.result = nil
	case api.SQL_UNBIND:
	case api.SQL_RESET_PARAMS:
		s.params = nil
	default:
		return s.fail("HY092", "Invalid attribute/option identifier")
	}

	return api.SQL_SUCCESS
}

// RowCount implements api.API.
func (d *Driver) RowCount(stmt api.Handle) (int64, api.Return) {
	s := d.stmt(stmt)
	if s == nil {
		return 0, api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.prepared {
		return 0, s.fail("HY010", "Function sequence error")
	}

	return s.rowCount, api.SQL_SUCCESS
}

// MoreResults implements api.API. SQLite statements produce at most one
// result set, so this always closes the cursor and reports SQL_NO_DATA.
func (d *Driver) MoreResults(stmt api.Handle) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == phaseNeedData {
		return s.fail("HY010", "Function sequence error")
	}
	s.phase = phaseIdle
	s.result = nil

	return api.SQL_NO_DATA
}

// Tables implements api.API.
//
// The result has the standard SQLTables columns TABLE_CAT, TABLE_SCHEM,
// TABLE_NAME, TABLE_TYPE and REMARKS. Catalog and schema are ignored.
func (d *Driver) Tables(stmt api.Handle, _, _, table, tableType string) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	if table == "" {
		table = "%"
	}

	var typeFilter []string
	for _, t := range strings.Split(tableType, ",") {
		t = strings.ToLower(strings.Trim(strings.TrimSpace(t), "'"))
		if t == "table" || t == "view" {
			typeFilter = append(typeFilter, "'"+t+"'")
		}
	}
	if len(typeFilter) == 0 {
		typeFilter = []string{"'table'", "'view'"}
	}

	text := `SELECT NULL AS TABLE_CAT, NULL AS TABLE_SCHEM, name AS TABLE_NAME,
		upper(type) AS TABLE_TYPE, NULL AS REMARKS
		FROM sqlite_master
		WHERE type IN (` + strings.Join(typeFilter, ",") + `)
		AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		AND name LIKE ?
		ORDER BY name`

	s.mu.Lock()
	if s.phase != phaseIdle {
		s.mu.Unlock()
		return s.fail("24000", "Invalid cursor state")
	}
	s.text = text
	s.prepared = true
	s.numParams = 1
	s.mu.Unlock()

	return s.run([]any{table})
}
