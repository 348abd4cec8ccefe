// Package sql exposes the odbc core as a database/sql driver.
//
// The driver is the narrow upward interface that query builders, ORMs and
// struct scanners consume. It adds no marshaling of its own: arguments are
// converted to odbc.Value and bound through Statement.BindParameter, and
// cells are read with Statement.GetValue.
//
// Example:
//
//	db, err := sqladapter.Open(unixodbc.New(), "DSN=warehouse;UID=app;PWD=secret")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// Or, with a registered driver name:
//
//	sqladapter.Register("odbc", unixodbc.New())
//	db, err := sql.Open("odbc", "DSN=warehouse")
//
// Limitations:
//   - Positional "?" parameters only; named arguments are rejected
//   - time.Time arguments are sent as RFC 3339 text
//   - LastInsertId is not supported
//   - Only the default isolation level is accepted by BeginTx
//
// Context cancellation is mapped to SQLCancel issued from a watcher
// goroutine while the statement executes.
package sql
