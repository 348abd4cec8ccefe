//go:build !cgo_sqlite

package sqlite

import (
	_ "modernc.org/sqlite"
)

// engineName is the database/sql driver name of the SQLite engine.
const engineName = "sqlite"
