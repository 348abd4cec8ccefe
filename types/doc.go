// Package types provides shared types and error definitions for the odbc library.
//
// This is a leaf package with zero odbc imports to prevent import cycles.
// All packages in odbc can safely import this package.
//
// # Types
//
// Kind tags the closed set of scalar kinds a parameter value can carry:
//
//	KindNull, KindBool,
//	KindInt8, KindInt16, KindInt32, KindInt64,
//	KindUint8, KindUint16, KindUint32, KindUint64,
//	KindFloat32, KindFloat64,
//	KindText, KindBytes, KindUUID
//
// ColumnType mirrors the driver's SQL type tags as reported by SQLDescribeCol,
// and ColumnDescription bundles one result column's metadata.
//
// # Errors
//
// Four struct errors make up the error taxonomy:
//
//   - DriverError: the driver returned a failure status; carries the SQLSTATE and message
//   - BindingError: contract violation at the parameter binding surface
//   - AllocationError: the driver manager refused to allocate a handle
//   - ProtocolError: the data-at-execution round-trip asked for an unknown parameter
//
// Sentinel errors are provided for common failure scenarios:
//
//   - ErrClosed: The handle was already released
//   - ErrNilAPI: A nil call-level API was provided
//   - ErrCursorOpen: The statement must be reset with CloseCursor before reuse
//   - ErrOrdinalRange: A parameter or column ordinal is out of range
//   - ErrUnsupportedValue: A Go value has no binding in the closed value set
//   - ErrNoDeferredEntry: The driver requested data for a parameter that was not deferred
package types
