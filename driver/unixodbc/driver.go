//go:build cgo && unixodbc

package unixodbc

/*
#cgo LDFLAGS: -lodbc
#include <stdlib.h>
#include <stdint.h>
#include <sql.h>
#include <sqlext.h>

static SQLHANDLE toHandle(uintptr_t h) { return (SQLHANDLE)h; }
static SQLPOINTER toPointer(uintptr_t v) { return (SQLPOINTER)v; }
*/
import "C"

import (
	"unsafe"

	"github.com/arloliu/odbc/api"
)

// Driver calls the unixODBC driver manager.
type Driver struct{}

var _ api.API = (*Driver)(nil)

// New returns the unixODBC call-level API.
func New() *Driver {
	return &Driver{}
}

func handle(h api.Handle) C.SQLHANDLE {
	return C.toHandle(C.uintptr_t(h))
}

func ret(rc C.SQLRETURN) api.Return {
	return api.Return(rc)
}

// cstring returns a C copy of s, or nil for the empty string. The caller
// frees it with C.free.
func cstring(s string) *C.SQLCHAR {
	if s == "" {
		return nil
	}

	return (*C.SQLCHAR)(unsafe.Pointer(C.CString(s)))
}

func free(p *C.SQLCHAR) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

func ntsLen(p *C.SQLCHAR) C.SQLSMALLINT {
	if p == nil {
		return 0
	}

	return C.SQL_NTS
}

func bufPtr(b []byte) *C.SQLCHAR {
	if len(b) == 0 {
		return nil
	}

	return (*C.SQLCHAR)(unsafe.Pointer(&b[0]))
}

// ----------------------
// Handles
// ----------------------

// AllocHandle implements api.API.
func (d *Driver) AllocHandle(kind api.HandleType, parent api.Handle) (api.Handle, api.Return) {
	var out C.SQLHANDLE
	rc := C.SQLAllocHandle(C.SQLSMALLINT(kind), handle(parent), &out)

	return api.Handle(uintptr(unsafe.Pointer(out))), ret(rc)
}

// FreeHandle implements api.API.
func (d *Driver) FreeHandle(kind api.HandleType, h api.Handle) api.Return {
	return ret(C.SQLFreeHandle(C.SQLSMALLINT(kind), handle(h)))
}

// GetDiagRec implements api.API.
func (d *Driver) GetDiagRec(kind api.HandleType, h api.Handle, rec int16, state, msg []byte) (int32, int16, api.Return) {
	if len(state) < 6 {
		return 0, 0, api.SQL_ERROR
	}

	var native C.SQLINTEGER
	var msgLen C.SQLSMALLINT
	rc := C.SQLGetDiagRec(C.SQLSMALLINT(kind), handle(h), C.SQLSMALLINT(rec),
		bufPtr(state), &native, bufPtr(msg), C.SQLSMALLINT(len(msg)), &msgLen)

	return int32(native), int16(msgLen), ret(rc)
}

// ----------------------
// Environment
// ----------------------

// SetEnvAttr implements api.API.
func (d *Driver) SetEnvAttr(env api.Handle, attr int32, value uintptr) api.Return {
	return ret(C.SQLSetEnvAttr(handle(env), C.SQLINTEGER(attr), C.toPointer(C.uintptr_t(value)), C.SQL_IS_UINTEGER))
}

// DataSources implements api.API.
func (d *Driver) DataSources(env api.Handle, direction uint16, name, desc []byte) (int16, int16, api.Return) {
	var nameLen, descLen C.SQLSMALLINT
	rc := C.SQLDataSources(handle(env), C.SQLUSMALLINT(direction),
		bufPtr(name), C.SQLSMALLINT(len(name)), &nameLen,
		bufPtr(desc), C.SQLSMALLINT(len(desc)), &descLen)

	return int16(nameLen), int16(descLen), ret(rc)
}

// ----------------------
// Connection
// ----------------------

// Connect implements api.API.
func (d *Driver) Connect(dbc api.Handle, dsn, user, password string) api.Return {
	cdsn, cuser, cpw := cstring(dsn), cstring(user), cstring(password)
	defer free(cdsn)
	defer free(cuser)
	defer free(cpw)

	return ret(C.SQLConnect(handle(dbc), cdsn, ntsLen(cdsn), cuser, ntsLen(cuser), cpw, ntsLen(cpw)))
}

// Disconnect implements api.API.
func (d *Driver) Disconnect(dbc api.Handle) api.Return {
	return ret(C.SQLDisconnect(handle(dbc)))
}

// SetConnectAttr implements api.API.
func (d *Driver) SetConnectAttr(dbc api.Handle, attr int32, value uintptr) api.Return {
	return ret(C.SQLSetConnectAttr(handle(dbc), C.SQLINTEGER(attr), C.toPointer(C.uintptr_t(value)), C.SQL_IS_UINTEGER))
}

// GetConnectAttr implements api.API.
func (d *Driver) GetConnectAttr(dbc api.Handle, attr int32) (uintptr, api.Return) {
	var v C.SQLUINTEGER
	rc := C.SQLGetConnectAttr(handle(dbc), C.SQLINTEGER(attr), C.SQLPOINTER(unsafe.Pointer(&v)), C.SQL_IS_UINTEGER, nil)

	return uintptr(v), ret(rc)
}

// GetInfo implements api.API.
func (d *Driver) GetInfo(dbc api.Handle, infoType uint16, buf []byte) (int16, api.Return) {
	var n C.SQLSMALLINT
	rc := C.SQLGetInfo(handle(dbc), C.SQLUSMALLINT(infoType),
		C.SQLPOINTER(unsafe.Pointer(bufPtr(buf))), C.SQLSMALLINT(len(buf)), &n)

	return int16(n), ret(rc)
}

// EndTran implements api.API.
func (d *Driver) EndTran(kind api.HandleType, h api.Handle, completion int16) api.Return {
	return ret(C.SQLEndTran(C.SQLSMALLINT(kind), handle(h), C.SQLSMALLINT(completion)))
}

// ----------------------
// Statements
// ----------------------

// Prepare implements api.API.
func (d *Driver) Prepare(stmt api.Handle, text string) api.Return {
	ctext := cstring(text)
	defer free(ctext)

	return ret(C.SQLPrepare(handle(stmt), ctext, C.SQL_NTS))
}

// ExecDirect implements api.API.
func (d *Driver) ExecDirect(stmt api.Handle, text string) api.Return {
	ctext := cstring(text)
	defer free(ctext)

	return ret(C.SQLExecDirect(handle(stmt), ctext, C.SQL_NTS))
}

// Execute implements api.API.
func (d *Driver) Execute(stmt api.Handle) api.Return {
	return ret(C.SQLExecute(handle(stmt)))
}

// NumParams implements api.API.
func (d *Driver) NumParams(stmt api.Handle) (int16, api.Return) {
	var n C.SQLSMALLINT
	rc := C.SQLNumParams(handle(stmt), &n)

	return int16(n), ret(rc)
}

// BindParameter implements api.API. value and ind must point to pinned
// memory that contains no Go pointers.
func (d *Driver) BindParameter(stmt api.Handle, ordinal uint16, ioType int16, cType api.CType, sqlType api.SQLType,
	columnSize uint64, decimalDigits int16, value unsafe.Pointer, bufLen int64, ind *int64,
) api.Return {
	rc := C.SQLBindParameter(handle(stmt), C.SQLUSMALLINT(ordinal), C.SQLSMALLINT(ioType),
		C.SQLSMALLINT(cType), C.SQLSMALLINT(sqlType), C.SQLULEN(columnSize), C.SQLSMALLINT(decimalDigits),
		C.SQLPOINTER(value), C.SQLLEN(bufLen), (*C.SQLLEN)(unsafe.Pointer(ind)))

	return ret(rc)
}

// ParamData implements api.API.
func (d *Driver) ParamData(stmt api.Handle) (unsafe.Pointer, api.Return) {
	var token C.SQLPOINTER
	rc := C.SQLParamData(handle(stmt), &token)

	return unsafe.Pointer(token), ret(rc)
}

// PutData implements api.API.
func (d *Driver) PutData(stmt api.Handle, data []byte) api.Return {
	var p C.SQLPOINTER
	if len(data) > 0 {
		p = C.SQLPOINTER(unsafe.Pointer(&data[0]))
	}

	return ret(C.SQLPutData(handle(stmt), p, C.SQLLEN(len(data))))
}

// Cancel implements api.API.
func (d *Driver) Cancel(stmt api.Handle) api.Return {
	return ret(C.SQLCancel(handle(stmt)))
}

// FreeStmt implements api.API.
func (d *Driver) FreeStmt(stmt api.Handle, option uint16) api.Return {
	return ret(C.SQLFreeStmt(handle(stmt), C.SQLUSMALLINT(option)))
}

// Tables implements api.API.
func (d *Driver) Tables(stmt api.Handle, catalog, schema, table, tableType string) api.Return {
	ccat, cschema, ctable, ctype := cstring(catalog), cstring(schema), cstring(table), cstring(tableType)
	defer free(ccat)
	defer free(cschema)
	defer free(ctable)
	defer free(ctype)

	return ret(C.SQLTables(handle(stmt),
		ccat, ntsLen(ccat), cschema, ntsLen(cschema), ctable, ntsLen(ctable), ctype, ntsLen(ctype)))
}

// ----------------------
// Results
// ----------------------

// NumResultCols implements api.API.
func (d *Driver) NumResultCols(stmt api.Handle) (int16, api.Return) {
	var n C.SQLSMALLINT
	rc := C.SQLNumResultCols(handle(stmt), &n)

	return int16(n), ret(rc)
}

// DescribeCol implements api.API.
func (d *Driver) DescribeCol(stmt api.Handle, col uint16, name []byte) (int16, api.SQLType, uint64, int16, int16, api.Return) {
	var (
		nameLen  C.SQLSMALLINT
		dataType C.SQLSMALLINT
		size     C.SQLULEN
		digits   C.SQLSMALLINT
		nullable C.SQLSMALLINT
	)
	rc := C.SQLDescribeCol(handle(stmt), C.SQLUSMALLINT(col), bufPtr(name), C.SQLSMALLINT(len(name)),
		&nameLen, &dataType, &size, &digits, &nullable)

	return int16(nameLen), api.SQLType(dataType), uint64(size), int16(digits), int16(nullable), ret(rc)
}

// Fetch implements api.API.
func (d *Driver) Fetch(stmt api.Handle) api.Return {
	return ret(C.SQLFetch(handle(stmt)))
}

// GetData implements api.API.
func (d *Driver) GetData(stmt api.Handle, col uint16, cType api.CType, buf unsafe.Pointer, bufLen int64, ind *int64) api.Return {
	rc := C.SQLGetData(handle(stmt), C.SQLUSMALLINT(col), C.SQLSMALLINT(cType),
		C.SQLPOINTER(buf), C.SQLLEN(bufLen), (*C.SQLLEN)(unsafe.Pointer(ind)))

	return ret(rc)
}

// RowCount implements api.API.
func (d *Driver) RowCount(stmt api.Handle) (int64, api.Return) {
	var n C.SQLLEN
	rc := C.SQLRowCount(handle(stmt), &n)

	return int64(n), ret(rc)
}

// MoreResults implements api.API.
func (d *Driver) MoreResults(stmt api.Handle) api.Return {
	return ret(C.SQLMoreResults(handle(stmt)))
}
