package api

import "unsafe"

// Handle is an opaque native handle. The zero value is SQL_NULL_HANDLE.
type Handle uintptr

// Return is a native SQLRETURN code.
type Return int16

// HandleType is a SQL_HANDLE_* tag.
type HandleType int16

// CType is a SQL_C_* tag naming the application buffer layout.
type CType int16

// SQLType is a SQL_* tag naming the server-side data type.
type SQLType int16

// API is the call-level surface of an ODBC driver manager.
//
// Implementations must allow Cancel to be called from a goroutine other
// than the one blocked in Execute, ExecDirect, ParamData or Fetch. All other
// methods follow ODBC's single-caller-per-handle discipline.
type API interface {
	// ----------------------
	// Handles
	// ----------------------

	// AllocHandle allocates a handle of the given type under parent.
	AllocHandle(kind HandleType, parent Handle) (Handle, Return)

	// FreeHandle releases a handle.
	FreeHandle(kind HandleType, h Handle) Return

	// GetDiagRec reads diagnostic record rec (1-based) attached to h.
	// state receives the NUL-terminated SQLSTATE and msg the message text;
	// msgLen is the full message length, which may exceed len(msg).
	GetDiagRec(kind HandleType, h Handle, rec int16, state, msg []byte) (native int32, msgLen int16, rc Return)

	// ----------------------
	// Environment
	// ----------------------

	// SetEnvAttr sets an integer-valued environment attribute. A zero env
	// handle addresses process-wide attributes such as connection pooling.
	SetEnvAttr(env Handle, attr int32, value uintptr) Return

	// DataSources enumerates configured data sources. direction is
	// SQL_FETCH_FIRST or SQL_FETCH_NEXT.
	DataSources(env Handle, direction uint16, name, desc []byte) (nameLen, descLen int16, rc Return)

	// ----------------------
	// Connection
	// ----------------------

	// Connect opens a connection to a data source.
	Connect(dbc Handle, dsn, user, password string) Return

	// Disconnect closes the connection.
	Disconnect(dbc Handle) Return

	// SetConnectAttr sets an integer-valued connection attribute.
	SetConnectAttr(dbc Handle, attr int32, value uintptr) Return

	// GetConnectAttr reads an integer-valued connection attribute.
	GetConnectAttr(dbc Handle, attr int32) (uintptr, Return)

	// GetInfo reads a string-valued information item into buf and returns
	// its full length.
	GetInfo(dbc Handle, infoType uint16, buf []byte) (int16, Return)

	// EndTran commits or rolls back the transaction on a connection or on
	// every connection of an environment.
	EndTran(kind HandleType, h Handle, completion int16) Return

	// ----------------------
	// Statement preparation and execution
	// ----------------------

	// Prepare compiles a statement for later Execute calls.
	Prepare(stmt Handle, text string) Return

	// ExecDirect prepares and executes a statement in one call.
	ExecDirect(stmt Handle, text string) Return

	// Execute executes a prepared statement.
	Execute(stmt Handle) Return

	// NumParams returns the number of parameter markers in the statement.
	NumParams(stmt Handle) (int16, Return)

	// BindParameter binds an application buffer to a parameter marker.
	// value and ind must remain valid (and pinned) until the parameter is
	// rebound, reset or the statement is freed: the driver reads them at
	// execute time, not during this call.
	BindParameter(stmt Handle, ordinal uint16, ioType int16, cType CType, sqlType SQLType,
		columnSize uint64, decimalDigits int16, value unsafe.Pointer, bufLen int64, ind *int64) Return

	// ParamData advances the data-at-execution protocol. When it returns
	// SQL_NEED_DATA, token is the value pointer that was bound for the
	// parameter the driver wants next.
	ParamData(stmt Handle) (token unsafe.Pointer, rc Return)

	// PutData sends one chunk of a data-at-execution parameter.
	PutData(stmt Handle, data []byte) Return

	// Cancel aborts the statement's in-flight operation.
	Cancel(stmt Handle) Return

	// ----------------------
	// Results
	// ----------------------

	// NumResultCols returns the number of columns in the result set.
	NumResultCols(stmt Handle) (int16, Return)

	// DescribeCol describes result column col (1-based). name receives the
	// column label; nameLen is its full length.
	DescribeCol(stmt Handle, col uint16, name []byte) (nameLen int16, dataType SQLType,
		columnSize uint64, decimalDigits int16, nullable int16, rc Return)

	// Fetch advances the cursor to the next row.
	Fetch(stmt Handle) Return

	// GetData retrieves (part of) a cell of the current row. For character
	// and binary targets *ind receives the number of bytes that were
	// available before this call, even if buf was too small.
	GetData(stmt Handle, col uint16, cType CType, buf unsafe.Pointer, bufLen int64, ind *int64) Return

	// RowCount returns the number of rows affected by the last statement.
	RowCount(stmt Handle) (int64, Return)

	// MoreResults advances to the next result set.
	MoreResults(stmt Handle) Return

	// FreeStmt closes the cursor, unbinds or resets parameters.
	FreeStmt(stmt Handle, option uint16) Return

	// Tables runs a catalog query for tables matching the given patterns.
	Tables(stmt Handle, catalog, schema, table, tableType string) Return
}

// Succeeded reports whether rc is SQL_SUCCESS or SQL_SUCCESS_WITH_INFO.
func Succeeded(rc Return) bool {
	return rc&^1 == 0
}

// LenDataAtExec encodes a data-at-execution indicator that also carries the
// exact length of the value, as SQL_LEN_DATA_AT_EXEC(length) does in C.
func LenDataAtExec(length int) int64 {
	return SQL_LEN_DATA_AT_EXEC_OFFSET - int64(length)
}

// IsDataAtExec reports whether a length indicator requests data-at-execution.
func IsDataAtExec(ind int64) bool {
	return ind == SQL_DATA_AT_EXEC || ind <= SQL_LEN_DATA_AT_EXEC_OFFSET
}

// DataAtExecLength decodes the length carried by a SQL_LEN_DATA_AT_EXEC
// indicator, or -1 for a bare SQL_DATA_AT_EXEC.
func DataAtExecLength(ind int64) int64 {
	if ind <= SQL_LEN_DATA_AT_EXEC_OFFSET {
		return SQL_LEN_DATA_AT_EXEC_OFFSET - ind
	}

	return -1
}
