package odbc

import (
	"runtime"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/types"
)

// StatementState is the execution state of a statement.
type StatementState int

const (
	// StateIdle means the statement can be bound and executed.
	StateIdle StatementState = iota
	// StateExecuting means a native execute call is in flight.
	StateExecuting
	// StateNeedData means the driver is collecting deferred parameters.
	StateNeedData
	// StateHasResults means a cursor is open over a result set.
	StateHasResults
	// StateNoResults means the last execution produced no result set.
	StateNoResults
	// StateError means the last execution failed; CloseCursor resets it.
	StateError
)

// String returns the string representation of the StatementState.
func (st StatementState) String() string {
	switch st {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateNeedData:
		return "need-data"
	case StateHasResults:
		return "has-results"
	case StateNoResults:
		return "no-results"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// executable reports whether Execute may be called in this state.
func (st StatementState) executable() bool {
	return st == StateIdle || st == StateNoResults
}

// Statement is a prepared or directly executed SQL statement.
//
// A Statement owns its native handle, its parameter arena and its
// deferred-parameter table. It is not safe for concurrent use, with one
// exception: Cancel may be called from another goroutine while Execute or
// Fetch is blocked.
type Statement struct {
	*handle

	conn  *Connection
	text  string
	state StatementState

	// numParams is -1 until the driver has been asked.
	numParams int

	arena    []paramSlot
	deferred map[uint16]deferredParam
	pinner   runtime.Pinner
}

func newStatement(c *Connection, text string) (*Statement, error) {
	h, err := openHandle(c.api, c.cfg, types.HandleStmt, c.handle)
	if err != nil {
		return nil, err
	}

	s := &Statement{
		handle:    h,
		conn:      c,
		text:      text,
		numParams: -1,
	}
	c.statements[s] = struct{}{}

	return s, nil
}

func (s *Statement) usable() error {
	if s.released {
		return types.ErrClosed
	}

	return nil
}

// State returns the statement's execution state.
func (s *Statement) State() StatementState {
	return s.state
}

// Text returns the SQL text the statement was created with.
func (s *Statement) Text() string {
	return s.text
}

// NumParams returns the number of parameter markers in the statement.
//
// The driver is asked once; the answer is cached for the statement's lifetime.
//
// Returns:
//   - int: The parameter count
//   - error: *types.DriverError if the driver cannot describe parameters
func (s *Statement) NumParams() (int, error) {
	if err := s.usable(); err != nil {
		return 0, err
	}
	if s.numParams >= 0 {
		return s.numParams, nil
	}

	n, rc := s.api.NumParams(s.raw)
	if err := s.check("SQLNumParams", rc); err != nil {
		return 0, err
	}
	s.numParams = int(n)

	return s.numParams, nil
}

// Cancel asks the driver to abort the statement's in-flight call.
//
// Cancel is the only Statement method that may be called concurrently with
// another. The blocked call returns a *types.DriverError whose IsCancel
// reports true; the statement must then be reset with CloseCursor.
//
// Returns:
//   - error: *types.DriverError if the driver rejected the request
func (s *Statement) Cancel() error {
	if err := s.usable(); err != nil {
		return err
	}

	rc := s.api.Cancel(s.raw)

	return s.check("SQLCancel", rc)
}

// CloseCursor discards any pending results and returns the statement to
// StateIdle so it can be executed again. Parameter bindings are kept.
//
// Returns:
//   - error: *types.DriverError if the driver failed to close the cursor
func (s *Statement) CloseCursor() error {
	if err := s.usable(); err != nil {
		return err
	}

	if s.state == StateNeedData || s.state == StateError {
		// An execution aborted mid data-at-execution only leaves the
		// need-data state through SQLCancel.
		_ = s.api.Cancel(s.raw)
	}

	rc := s.api.FreeStmt(s.raw, api.SQL_CLOSE)
	if err := s.check("SQLFreeStmt", rc); err != nil {
		return err
	}
	s.state = StateIdle

	return nil
}

// ResetParameters drops every parameter binding and frees the arena.
//
// Returns:
//   - error: *types.DriverError if the driver failed to reset bindings
func (s *Statement) ResetParameters() error {
	if err := s.usable(); err != nil {
		return err
	}

	rc := s.api.FreeStmt(s.raw, api.SQL_RESET_PARAMS)
	if err := s.check("SQLFreeStmt", rc); err != nil {
		return err
	}
	s.releaseArena()

	return nil
}

// RowCount returns the number of rows affected by the last execution.
//
// Returns:
//   - int64: The affected row count, or -1 if the driver does not know
//   - error: *types.DriverError on failure
func (s *Statement) RowCount() (int64, error) {
	if err := s.usable(); err != nil {
		return 0, err
	}

	n, rc := s.api.RowCount(s.raw)
	if err := s.check("SQLRowCount", rc); err != nil {
		return 0, err
	}

	return n, nil
}

// MoreResults advances to the next result set of a batch or procedure call.
//
// Returns:
//   - types.MoreResult: MoreSuccess if another result is positioned
//   - error: *types.DriverError on failure
func (s *Statement) MoreResults() (types.MoreResult, error) {
	if err := s.usable(); err != nil {
		return types.MoreNoData, err
	}

	rc := s.api.MoreResults(s.raw)
	switch rc {
	case api.SQL_SUCCESS, api.SQL_SUCCESS_WITH_INFO:
		if err := s.settleResults(); err != nil {
			return types.MoreNoData, err
		}
		return types.MoreSuccess, nil
	case api.SQL_NO_DATA:
		s.state = StateNoResults
		return types.MoreNoData, nil
	case api.SQL_STILL_EXECUTING:
		return types.MoreStillExecuting, nil
	case api.SQL_PARAM_DATA_AVAILABLE:
		return types.MoreParamDataAvailable, nil
	}

	s.state = StateError

	return types.MoreNoData, s.check("SQLMoreResults", rc)
}

// Close releases the statement's native handle and its parameter arena.
// Calling Close more than once is a no-op.
//
// Returns:
//   - error: *types.DriverError if the native free failed
func (s *Statement) Close() error {
	if s.released {
		return nil
	}

	err := s.release()
	s.releaseArena()
	delete(s.conn.statements, s)

	return err
}
