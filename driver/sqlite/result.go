package sqlite

import (
	"database/sql"
	"strings"
	"time"
	"unsafe"

	"github.com/arloliu/odbc/api"
)

type column struct {
	name     string
	sqlType  api.SQLType
	size     uint64
	digits   int16
	nullable int16
}

// resultSet is a fully materialized query result with a cursor over it.
type resultSet struct {
	columns []column
	rows    [][]any
	row     int

	// Per-column SQLGetData progress for the current row.
	offsets map[uint16]int
	done    map[uint16]bool
}

func materialize(rows *sql.Rows) (*resultSet, error) {
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	res := &resultSet{row: -1}
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			// Copy driver-owned memory and normalize storage classes.
			switch x := v.(type) {
			case []byte:
				vals[i] = append([]byte{}, x...)
			case time.Time:
				vals[i] = x.Format("2006-01-02 15:04:05.999999999")
			}
		}
		res.rows = append(res.rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res.columns = make([]column, len(names))
	for i, name := range names {
		res.columns[i] = describe(name, colTypes[i], res.rows, i)
	}

	return res, nil
}

func describe(name string, ct *sql.ColumnType, rows [][]any, idx int) column {
	col := column{name: name, nullable: api.SQL_NULLABLE_UNKNOWN}

	if nullable, ok := ct.Nullable(); ok {
		col.nullable = api.SQL_NO_NULLS
		if nullable {
			col.nullable = api.SQL_NULLABLE
		}
	}

	col.sqlType = declaredType(ct.DatabaseTypeName())
	if col.sqlType == api.SQL_UNKNOWN_TYPE {
		col.sqlType = inferredType(rows, idx)
	}

	switch col.sqlType {
	case api.SQL_BIT:
		col.size = 1
	case api.SQL_TINYINT:
		col.size = 3
	case api.SQL_SMALLINT:
		col.size = 5
	case api.SQL_INTEGER:
		col.size = 10
	case api.SQL_BIGINT:
		col.size = 19
	case api.SQL_REAL:
		col.size = 7
	case api.SQL_FLOAT, api.SQL_DOUBLE:
		col.size = 15
	case api.SQL_GUID:
		col.size = 36
	default:
		if length, ok := ct.Length(); ok && length > 0 && length < 1<<31 {
			col.size = uint64(length)
		} else {
			col.size = uint64(maxWidth(rows, idx))
		}
	}

	return col
}

// declaredType maps a declared column type to an SQL type tag following
// SQLite's affinity rules. It returns SQL_UNKNOWN_TYPE for expressions.
func declaredType(decl string) api.SQLType {
	t := strings.ToUpper(strings.TrimSpace(decl))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch {
	case t == "":
		return api.SQL_UNKNOWN_TYPE
	case t == "INTEGER" || strings.Contains(t, "BIGINT") || t == "INT8":
		return api.SQL_BIGINT
	case strings.Contains(t, "TINYINT"):
		return api.SQL_TINYINT
	case strings.Contains(t, "SMALLINT") || t == "INT2":
		return api.SQL_SMALLINT
	case strings.Contains(t, "INT"):
		return api.SQL_INTEGER
	case t == "BOOL" || t == "BOOLEAN" || t == "BIT":
		return api.SQL_BIT
	case t == "UUID" || t == "GUID" || t == "UNIQUEIDENTIFIER":
		return api.SQL_GUID
	case strings.HasPrefix(t, "NCHAR") || strings.HasPrefix(t, "NVARCHAR") || t == "NTEXT" ||
		strings.HasPrefix(t, "NATIONAL"):
		return api.SQL_WVARCHAR
	case strings.Contains(t, "CHAR") || strings.Contains(t, "CLOB") || strings.Contains(t, "TEXT"):
		return api.SQL_VARCHAR
	case strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY"):
		return api.SQL_VARBINARY
	case t == "REAL" || t == "FLOAT4":
		return api.SQL_REAL
	case strings.Contains(t, "FLOA") || strings.Contains(t, "DOUB"):
		return api.SQL_DOUBLE
	case strings.HasPrefix(t, "DEC") || t == "NUMERIC":
		return api.SQL_DECIMAL
	case t == "DATE":
		return api.SQL_TYPE_DATE
	case t == "TIME":
		return api.SQL_TYPE_TIME
	case t == "DATETIME" || t == "TIMESTAMP":
		return api.SQL_TYPE_TIMESTAMP
	}

	return api.SQL_VARCHAR
}

// inferredType derives a type tag from the first non-NULL value of a column.
func inferredType(rows [][]any, idx int) api.SQLType {
	for _, row := range rows {
		switch row[idx].(type) {
		case nil:
			continue
		case int64:
			return api.SQL_BIGINT
		case float64:
			return api.SQL_DOUBLE
		case []byte:
			return api.SQL_VARBINARY
		case bool:
			return api.SQL_BIT
		default:
			return api.SQL_VARCHAR
		}
	}

	return api.SQL_VARCHAR
}

func maxWidth(rows [][]any, idx int) int {
	width := 0
	for _, row := range rows {
		width = max(width, len(textOf(row[idx])))
	}

	return max(width, 1)
}

func (s *stmtState) cursor() (*resultSet, api.Return) {
	if s.result == nil {
		return nil, s.fail("24000", "Invalid cursor state")
	}

	return s.result, api.SQL_SUCCESS
}

// NumResultCols implements api.API.
func (d *Driver) NumResultCols(stmt api.Handle) (int16, api.Return) {
	s := d.stmt(stmt)
	if s == nil {
		return 0, api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return 0, api.SQL_SUCCESS
	}

	return int16(len(s.result.columns)), api.SQL_SUCCESS
}

// DescribeCol implements api.API.
func (d *Driver) DescribeCol(stmt api.Handle, col uint16, name []byte) (int16, api.SQLType, uint64, int16, int16, api.Return) {
	s := d.stmt(stmt)
	if s == nil {
		return 0, 0, 0, 0, 0, api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, rc := s.cursor()
	if res == nil {
		return 0, 0, 0, 0, 0, rc
	}
	if col < 1 || int(col) > len(res.columns) {
		return 0, 0, 0, 0, 0, s.fail("07009", "Invalid descriptor index")
	}

	c := res.columns[col-1]
	rc = api.SQL_SUCCESS
	if !putCString(name, c.name) {
		rc = s.warn("01004", "String data, right truncated")
	}

	return int16(len(c.name)), c.sqlType, c.size, c.digits, c.nullable, rc
}

// Fetch implements api.API.
func (d *Driver) Fetch(stmt api.Handle) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, rc := s.cursor()
	if res == nil {
		return rc
	}

	if res.row < len(res.rows) {
		res.row++
	}
	if res.row >= len(res.rows) {
		return api.SQL_NO_DATA
	}
	res.offsets = make(map[uint16]int)
	res.done = make(map[uint16]bool)

	return api.SQL_SUCCESS
}

// GetData implements api.API.
//
// Character and binary targets are returned piecewise: each call copies as
// much of the remaining value as fits (leaving room for the terminator of
// character targets), sets *ind to the number of bytes that remained before
// the call and returns SQL_SUCCESS_WITH_INFO with SQLSTATE 01004 while data
// is left. Once a value has been fully returned, further calls for the
// column return SQL_NO_DATA.
func (d *Driver) GetData(stmt api.Handle, col uint16, cType api.CType, buf unsafe.Pointer, bufLen int64, ind *int64) api.Return {
	s := d.stmt(stmt)
	if s == nil {
		return api.SQL_INVALID_HANDLE
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, rc := s.cursor()
	if res == nil {
		return rc
	}
	if res.row < 0 || res.row >= len(res.rows) {
		return s.fail("24000", "Invalid cursor state")
	}
	if col < 1 || int(col) > len(res.columns) {
		return s.fail("07009", "Invalid descriptor index")
	}
	if res.done[col] {
		return api.SQL_NO_DATA
	}

	v := res.rows[res.row][col-1]
	if v == nil {
		if ind == nil {
			return s.fail("22002", "Indicator variable required but not supplied")
		}
		*ind = api.SQL_NULL_DATA
		res.done[col] = true

		return api.SQL_SUCCESS
	}

	if cType == api.SQL_C_DEFAULT {
		cType = defaultCType(res.columns[col-1].sqlType)
	}

	var data []byte
	term := 0

	switch cType {
	case api.SQL_C_CHAR:
		data, term = []byte(textOf(v)), 1
	case api.SQL_C_WCHAR:
		wide, err := utf16le.NewEncoder().Bytes([]byte(textOf(v)))
		if err != nil {
			return s.fail("22018", err.Error())
		}
		data, term = wide, 2
	case api.SQL_C_BINARY:
		data = binaryOf(v)
	default:
		width, err := writeFixed(cType, v, buf, bufLen)
		if err != nil {
			return s.fail(err.state, err.msg)
		}
		if ind != nil {
			*ind = width
		}
		res.done[col] = true

		return api.SQL_SUCCESS
	}

	rest := data[res.offsets[col]:]
	if ind != nil {
		*ind = int64(len(rest))
	}

	capacity := max(int(bufLen)-term, 0)
	if term == 2 {
		capacity &^= 1
	}
	n := min(len(rest), capacity)
	if n > 0 {
		copy(unsafe.Slice((*byte)(buf), n), rest[:n])
	}
	if term > 0 && int(bufLen) >= n+term {
		clear(unsafe.Slice((*byte)(unsafe.Add(buf, n)), term))
	}
	res.offsets[col] += n

	if n < len(rest) {
		return s.warn("01004", "String data, right truncated")
	}
	res.done[col] = true

	return api.SQL_SUCCESS
}

func defaultCType(t api.SQLType) api.CType {
	switch t {
	case api.SQL_BIT:
		return api.SQL_C_BIT
	case api.SQL_TINYINT:
		return api.SQL_C_STINYINT
	case api.SQL_SMALLINT:
		return api.SQL_C_SSHORT
	case api.SQL_INTEGER:
		return api.SQL_C_SLONG
	case api.SQL_BIGINT:
		return api.SQL_C_SBIGINT
	case api.SQL_REAL:
		return api.SQL_C_FLOAT
	case api.SQL_FLOAT, api.SQL_DOUBLE:
		return api.SQL_C_DOUBLE
	case api.SQL_BINARY, api.SQL_VARBINARY, api.SQL_LONGVARBINARY:
		return api.SQL_C_BINARY
	case api.SQL_WCHAR, api.SQL_WVARCHAR, api.SQL_WLONGVARCHAR:
		return api.SQL_C_WCHAR
	default:
		return api.SQL_C_CHAR
	}
}
