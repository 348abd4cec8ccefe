//go:build cgo_sqlite

package sqlite

import (
	_ "github.com/mattn/go-sqlite3"
)

// engineName is the database/sql driver name of the SQLite engine.
const engineName = "sqlite3"
