package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arloliu/odbc/driver/sqlite"
)

// TestDSN is the data source name registered by NewSQLiteDriver.
const TestDSN = "test"

// NewSQLiteDriver returns an in-process driver with TestDSN pointing at a
// new database file that is removed when the test ends.
func NewSQLiteDriver(tb testing.TB) *sqlite.Driver {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.db")

	return sqlite.New(sqlite.WithDataSource(TestDSN, path, "test database"))
}
