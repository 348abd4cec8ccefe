//go:build cgo && unixodbc

package integration_test

import (
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/arloliu/odbc"
	"github.com/arloliu/odbc/driver/unixodbc"
)

// source holds the data source shared by every integration test.
var source struct {
	dsn      string
	user     string
	password string
}

// TestMain resolves the data source from the environment. Without one the
// package reports success without running anything.
func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		return
	}

	if os.Getenv("SKIP_INTEGRATION_TESTS") == "1" {
		fmt.Println("Skipping integration tests (SKIP_INTEGRATION_TESTS=1)")

		return
	}

	source.dsn = os.Getenv("ODBC_TEST_DSN")
	source.user = os.Getenv("ODBC_TEST_USER")
	source.password = os.Getenv("ODBC_TEST_PASSWORD")
	if source.dsn == "" {
		fmt.Println("Skipping integration tests (ODBC_TEST_DSN not set)")

		return
	}

	os.Exit(m.Run())
}

// connect opens a connection to the shared data source.
func connect(t *testing.T, opts ...odbc.Option) *odbc.Connection {
	t.Helper()

	conn, err := odbc.Connect(unixodbc.New(), source.dsn, source.user, source.password, opts...)
	if err != nil {
		t.Fatalf("connect to %s: %v", source.dsn, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// tempTable creates a table with a name unique to the test and drops it
// when the test ends.
func tempTable(t *testing.T, conn *odbc.Connection, columns string) string {
	t.Helper()

	name := fmt.Sprintf("odbc_it_%d", os.Getpid())
	for i, r := range t.Name() {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			name += string(r)
		}
		if i > 20 {
			break
		}
	}

	exec(t, conn, "DROP TABLE "+name, true)
	exec(t, conn, "CREATE TABLE "+name+" ("+columns+")", false)
	t.Cleanup(func() { exec(t, conn, "DROP TABLE "+name, true) })

	return name
}

func exec(t *testing.T, conn *odbc.Connection, sql string, tolerate bool) {
	t.Helper()

	st, err := conn.Execute(sql)
	if err != nil {
		if tolerate {
			return
		}
		t.Fatalf("%s: %v", sql, err)
	}
	_ = st.Close()
}
