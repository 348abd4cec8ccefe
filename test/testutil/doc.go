// Package testutil provides test utilities for odbc testing.
//
// # Fault Injection
//
// [HookedAPI] wraps any api.API. Every call is forwarded to the wrapped
// implementation unless a hook is set for it, and calls to the hooked
// entry points are counted:
//
//	drv := testutil.NewSQLiteDriver(t)
//	hooked := testutil.NewHookedAPI(drv)
//	hooked.OnParamData = func(stmt api.Handle) (unsafe.Pointer, api.Return) {
//	    return nil, api.SQL_NEED_DATA // a token no parameter was bound to
//	}
//
// # Databases
//
// NewSQLiteDriver returns the in-process driver/sqlite driver with a data
// source named TestDSN backed by a fresh file in the test's temp dir.
//
// # Metrics
//
// [TestMetricsCollector] records every metric call for assertions.
package testutil
