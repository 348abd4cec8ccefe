// Package api describes the native ODBC call-level surface consumed by the
// odbc marshaling core.
//
// The API interface mirrors the C entry points one-to-one: handles are
// opaque words, every call returns a SQLRETURN code, and buffers whose
// lifetime must outlive a single call (bound parameters and their length
// indicators) are passed as raw pointers. Diagnostics are read back with
// GetDiagRec rather than returned as Go errors; turning return codes into
// errors is the caller's job.
//
// Two implementations ship with the module:
//
//   - driver/unixodbc: cgo bindings against the unixODBC driver manager
//   - driver/sqlite: an in-process driver over SQLite with ODBC semantics
//
// Constant names follow sql.h and sqlext.h so they can be cross-referenced
// with the ODBC documentation.
package api
