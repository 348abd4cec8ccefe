// Package sqlite implements api.API in-process on top of SQLite.
//
// The driver follows ODBC call-level semantics closely enough to exercise
// the odbc package without a driver manager: SQLSTATE diagnostic records,
// parameters read from bound pointers at execute time, the SQL_NEED_DATA /
// SQLParamData / SQLPutData round-trip for data-at-execution parameters,
// SQLGetData that truncates into the caller's buffer while reporting the
// full remaining length, and SQLCancel from another goroutine.
//
// The default engine is the pure-Go modernc.org/sqlite. Build with
// -tags cgo_sqlite to use github.com/mattn/go-sqlite3 instead.
//
// # Data Sources
//
// Connect resolves the DSN against the data sources registered with
// WithDataSource. A DSN that is not registered is accepted verbatim if it
// is ":memory:" or a "file:" URI; anything else fails with IM002.
//
//	drv := sqlite.New(sqlite.WithDataSource("app", "/var/lib/app.db", "application db"))
//	conn, err := odbc.Connect(drv, "app", "", "")
//
// # Type Mapping
//
// Result column types are derived from the declared column type using
// SQLite's affinity rules (BIGINT, INTEGER and INT8 are SQL_BIGINT; INT is
// SQL_INTEGER; TEXT and CHAR are SQL_VARCHAR; NCHAR and NVARCHAR are
// SQL_WVARCHAR; BLOB is SQL_VARBINARY; UUID is SQL_GUID) or, for
// expressions, from the storage class of the first non-NULL value.
// Unsigned 64-bit parameters are stored as the int64 with the same bit
// pattern, so they round-trip through SQL_C_UBIGINT.
package sqlite
