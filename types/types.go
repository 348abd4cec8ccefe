// Package types provides shared types and errors for the odbc library.
//
// This is a "leaf" package with no imports from other odbc packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"strconv"
)

// HandleKind identifies a level of the native handle hierarchy.
type HandleKind int16

// Handle kinds, numerically equal to the driver's SQL_HANDLE_* tags.
const (
	HandleEnv  HandleKind = 1
	HandleDbc  HandleKind = 2
	HandleStmt HandleKind = 3
)

// String returns the string representation of the HandleKind.
func (k HandleKind) String() string {
	switch k {
	case HandleEnv:
		return "env"
	case HandleDbc:
		return "dbc"
	case HandleStmt:
		return "stmt"
	default:
		return "handle(" + strconv.Itoa(int(k)) + ")"
	}
}

// Kind tags the scalar kind carried by a parameter value.
//
// The set is closed: binding dispatch is a switch over Kind, never a
// runtime type probe.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindText
	KindBytes
	KindUUID
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindText:    "text",
	KindBytes:   "bytes",
	KindUUID:    "uuid",
}

// String returns the string representation of the Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsVariableLength reports whether values of this kind are transmitted
// with data-at-execution rather than copied into the parameter arena.
func (k Kind) IsVariableLength() bool {
	return k == KindText || k == KindBytes || k == KindUUID
}

// FetchResult is the outcome of advancing a cursor by one row.
type FetchResult int

const (
	// FetchSuccess indicates a row is positioned and its cells can be read.
	FetchSuccess FetchResult = iota
	// FetchNoMoreRows indicates the cursor is past the last row.
	FetchNoMoreRows
	// FetchStillExecuting indicates an asynchronous statement has not finished.
	FetchStillExecuting
)

// String returns the string representation of the FetchResult.
func (r FetchResult) String() string {
	switch r {
	case FetchSuccess:
		return "success"
	case FetchNoMoreRows:
		return "no-more-rows"
	case FetchStillExecuting:
		return "still-executing"
	default:
		return "fetch(" + strconv.Itoa(int(r)) + ")"
	}
}

// MoreResult is the outcome of advancing to the next result set.
type MoreResult int

const (
	MoreSuccess MoreResult = iota
	MoreNoData
	MoreStillExecuting
	MoreParamDataAvailable
)

// Nullability describes whether a result column admits NULL.
type Nullability int16

// Nullability values, numerically equal to SQL_NO_NULLS, SQL_NULLABLE
// and SQL_NULLABLE_UNKNOWN.
const (
	NoNulls         Nullability = 0
	Nullable        Nullability = 1
	NullableUnknown Nullability = 2
)

// ColumnDescription describes one result column.
//
// It is produced on demand by Statement.DescribeColumn and is not cached
// across re-execution of the statement.
type ColumnDescription struct {
	// Ordinal is the 1-based column number.
	Ordinal int

	// Name is the column label. Empty if the driver returned bytes
	// that are not valid UTF-8.
	Name string

	// Type is the driver's SQL type tag for the column.
	Type ColumnType

	// Size is the declared column size (characters, digits or bytes).
	Size uint64

	// DecimalDigits is the declared scale for exact numeric and time types.
	DecimalDigits int

	// Nullable tells whether the column can hold NULL.
	Nullable Nullability
}

// Sentinel errors for common failure scenarios.
var (
	// ErrClosed indicates an operation was attempted on a released handle.
	ErrClosed = errors.New("odbc: handle is closed")

	// ErrNilAPI indicates that a nil call-level API was provided.
	ErrNilAPI = errors.New("odbc: call-level API cannot be nil")

	// ErrCursorOpen indicates the statement holds an open cursor or an
	// aborted execution and must be reset with CloseCursor before reuse.
	ErrCursorOpen = errors.New("odbc: statement must be reset with CloseCursor before reuse")

	// ErrOrdinalRange indicates a parameter or column ordinal outside [1, n].
	ErrOrdinalRange = errors.New("odbc: ordinal out of range")

	// ErrUnsupportedValue indicates a Go value outside the bindable value set.
	ErrUnsupportedValue = errors.New("odbc: unsupported value type")

	// ErrNoDeferredEntry indicates the driver requested data for a parameter
	// that has no entry in the deferred-parameter table.
	ErrNoDeferredEntry = errors.New("odbc: no deferred parameter for requested token")
)

// StateCanceled is the SQLSTATE drivers report for a canceled operation.
const StateCanceled = "HY008"

// DriverError reports a failure status returned by the driver.
//
// State and Message come from the first diagnostic record attached to the
// failing handle.
type DriverError struct {
	// Op is the native entry point that failed (e.g. "SQLExecute").
	Op string

	// State is the 5-character SQLSTATE.
	State string

	// NativeCode is the driver-specific error code.
	NativeCode int32

	// Message is the driver's diagnostic text, truncated to a bounded buffer.
	Message string
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	return "odbc: " + e.Op + " failed: [" + e.State + "] " + e.Message
}

// IsCancel reports whether the failure is the result of a cancel request.
func (e *DriverError) IsCancel() bool {
	return e.State == StateCanceled
}

// BindingError reports a contract violation at the parameter binding surface.
type BindingError struct {
	// Ordinal is the 1-based parameter number being bound.
	Ordinal int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	return "odbc: bind parameter " + strconv.Itoa(e.Ordinal) + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BindingError) Unwrap() error {
	return e.Cause
}

// AllocationError reports that the driver manager refused a handle allocation.
type AllocationError struct {
	// Kind is the level of the handle that could not be allocated.
	Kind HandleKind

	// Code is the native return code of the allocation call.
	Code int16

	// Cause is the diagnostic from the parent handle, if one was available.
	Cause error
}

// Error implements the error interface.
func (e *AllocationError) Error() string {
	msg := "odbc: allocate " + e.Kind.String() + " handle failed with code " + strconv.Itoa(int(e.Code))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *AllocationError) Unwrap() error {
	return e.Cause
}

// ProtocolError reports a broken data-at-execution round-trip: the driver
// asked for a parameter the statement never deferred.
type ProtocolError struct {
	// Ordinal is the parameter resolved from the driver's token, or 0 if
	// the token did not address any arena slot.
	Ordinal int

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return "odbc: data-at-execution for parameter " + strconv.Itoa(e.Ordinal) + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ProtocolError) Unwrap() error {
	return e.Cause
}
