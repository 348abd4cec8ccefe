// Package integration_test provides end-to-end tests of the core against a
// real driver manager.
//
// # Running Integration Tests
//
// The tests link against unixODBC and need a configured data source. They
// are compiled only with cgo and the unixodbc build tag, and are skipped
// when no data source is named:
//
//	ODBC_TEST_DSN=pg ODBC_TEST_USER=odbc ODBC_TEST_PASSWORD=secret \
//	    go test -tags unixodbc ./test/integration/...
//
// Set SKIP_INTEGRATION_TESTS=1 or pass -short to skip them explicitly.
//
// The tests create and drop their own tables and use only INTEGER and
// VARCHAR columns, so any DBMS with an ODBC driver will do.
package integration_test
