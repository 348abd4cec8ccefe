// Package odbc marshals typed Go values into and out of an ODBC call-level
// API.
//
// The package owns the three-level handle hierarchy (Environment, then
// Connection, then Statement), binds parameters, drives statement
// execution including the data-at-execution round-trip, and retrieves
// result cells, growing buffers for values whose size the driver only
// reveals while they are being read.
//
// The native surface is abstracted by api.API. Use driver/unixodbc to talk
// to a real driver manager, or driver/sqlite for an in-process database
// that follows the same call-level semantics.
//
// # Basic Usage
//
//	conn, err := odbc.Connect(unixodbc.New(), "mydsn", "user", "secret")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	ins, _ := conn.Prepare("INSERT INTO t (id, n) VALUES (?, ?)")
//	_ = ins.BindParameter(1, odbc.Int32(1))
//	_ = ins.BindParameter(2, odbc.Text("hello"))
//	if err := ins.Execute(); err != nil {
//	    log.Fatal(err)
//	}
//
//	sel, _ := conn.Prepare("SELECT n FROM t WHERE id = ?")
//	_ = sel.BindArgs(int32(1))
//	_ = sel.Execute()
//	for {
//	    res, err := sel.Fetch()
//	    if err != nil || res != types.FetchSuccess {
//	        break
//	    }
//	    n, ok, _ := sel.GetText(1) // ok is false for NULL
//	}
//
// # Parameter Binding
//
// Parameters are Values, a closed tagged union over NULL, bool, signed and
// unsigned integers of every width, float32, float64, text, bytes and
// UUID. Fixed-width values are copied into a per-statement arena that is
// pinned for the lifetime of the statement, because the driver reads it
// during Execute rather than during the bind call. Text, bytes and UUIDs
// are deferred: the driver requests them during Execute and they are
// streamed with SQLPutData.
//
// # Error Handling
//
// Every native return code is checked at the call site. Failures are typed:
//
//   - *types.DriverError: the driver returned an error status (SQLSTATE and message)
//   - *types.BindingError: bad ordinal, unsupported value, or parameter count probe failure
//   - *types.AllocationError: the driver manager refused a handle
//   - *types.ProtocolError: the driver asked for a parameter that was never deferred
//
//	var derr *types.DriverError
//	if errors.As(err, &derr) && derr.IsCancel() {
//	    // canceled from another goroutine via Statement.Cancel
//	}
//
// After a failed execution the statement is in StateError and must be
// reset with CloseCursor before it is executed again.
//
// # Concurrency
//
// Handles follow ODBC's single-caller discipline: a Connection and its
// statements must not be used from several goroutines at once. The only
// exception is Statement.Cancel, which may be called while another
// goroutine is blocked in Execute or Fetch.
package odbc
