package sqlite

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/odbc/api"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func supportedCType(t api.CType) bool {
	switch t {
	case api.SQL_C_CHAR, api.SQL_C_WCHAR, api.SQL_C_BINARY, api.SQL_C_BIT,
		api.SQL_C_STINYINT, api.SQL_C_UTINYINT,
		api.SQL_C_SHORT, api.SQL_C_SSHORT, api.SQL_C_USHORT,
		api.SQL_C_LONG, api.SQL_C_SLONG, api.SQL_C_ULONG,
		api.SQL_C_SBIGINT, api.SQL_C_UBIGINT,
		api.SQL_C_FLOAT, api.SQL_C_DOUBLE:
		return true
	}

	return false
}

// ----------------------
// Parameters
// ----------------------

// readParam reads a bound parameter from application memory.
func readParam(b *binding, ind int64) (any, error) {
	p := b.value
	if p == nil {
		if ind == 0 {
			return variable(b.cType, nil)
		}
		return nil, errors.New("parameter buffer is null")
	}

	switch b.cType {
	case api.SQL_C_BIT:
		if *(*uint8)(p) != 0 {
			return int64(1), nil
		}
		return int64(0), nil
	case api.SQL_C_STINYINT:
		return int64(*(*int8)(p)), nil
	case api.SQL_C_UTINYINT:
		return int64(*(*uint8)(p)), nil
	case api.SQL_C_SHORT, api.SQL_C_SSHORT:
		return int64(*(*int16)(p)), nil
	case api.SQL_C_USHORT:
		return int64(*(*uint16)(p)), nil
	case api.SQL_C_LONG, api.SQL_C_SLONG:
		return int64(*(*int32)(p)), nil
	case api.SQL_C_ULONG:
		return int64(*(*uint32)(p)), nil
	case api.SQL_C_SBIGINT:
		return *(*int64)(p), nil
	case api.SQL_C_UBIGINT:
		return int64(*(*uint64)(p)), nil
	case api.SQL_C_FLOAT:
		return float64(*(*float32)(p)), nil
	case api.SQL_C_DOUBLE:
		return *(*float64)(p), nil
	}

	n := ind
	if n == api.SQL_NTS {
		n = 0
		for n < b.bufLen && *(*byte)(unsafe.Add(p, n)) != 0 {
			n++
		}
	}
	if n < 0 {
		return nil, fmt.Errorf("invalid string or buffer length %d", n)
	}

	return variable(b.cType, unsafe.Slice((*byte)(p), n))
}

// deferredValue converts the bytes collected with SQLPutData.
func deferredValue(cType api.CType, data []byte) (any, error) {
	return variable(cType, data)
}

func variable(cType api.CType, data []byte) (any, error) {
	switch cType {
	case api.SQL_C_CHAR:
		return string(data), nil
	case api.SQL_C_BINARY:
		return append([]byte{}, data...), nil
	case api.SQL_C_WCHAR:
		decoded, err := utf16le.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		return string(decoded), nil
	}

	return nil, fmt.Errorf("C type %d cannot carry variable-length data", cType)
}

// ----------------------
// Results
// ----------------------

// textOf renders a stored value as character data.
func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return strings.ToUpper(hex.EncodeToString(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

// binaryOf renders a stored value as binary data.
func binaryOf(v any) []byte {
	switch x := v.(type) {
	case []byte:
		return x
	case string:
		return []byte(x)
	case int64:
		return binary.LittleEndian.AppendUint64(nil, uint64(x))
	case float64:
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(x))
	default:
		return []byte(textOf(x))
	}
}

type convError struct {
	state string
	msg   string
}

var (
	errOutOfRange = &convError{"22003", "Numeric value out of range"}
	errBadCast    = &convError{"22018", "Invalid character value for cast specification"}
	errBufferSize = &convError{"HY090", "Invalid string or buffer length"}
)

func asInt(v any) (int64, *convError) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		if math.IsNaN(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, errOutOfRange
		}
		return int64(x), nil
	case string, []byte:
		s := strings.TrimSpace(textOfRaw(x))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errBadCast
		}
		return asInt(f)
	}

	return 0, errBadCast
}

func asUint(v any) (uint64, *convError) {
	if x, ok := v.(string); ok {
		if n, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64); err == nil {
			return n, nil
		}
	}

	// SQLite has no unsigned 64-bit storage; UBIGINT parameters are stored
	// with the same bit pattern as int64.
	n, cerr := asInt(v)

	return uint64(n), cerr
}

func asFloat(v any) (float64, *convError) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string, []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(textOfRaw(x)), 64)
		if err != nil {
			return 0, errBadCast
		}
		return f, nil
	}

	return 0, errBadCast
}

func textOfRaw(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}

	return v.(string)
}

func inRange(n, lo, hi int64) *convError {
	if n < lo || n > hi {
		return errOutOfRange
	}

	return nil
}

// writeFixed converts v to a fixed-width C type and stores it at buf.
func writeFixed(cType api.CType, v any, buf unsafe.Pointer, bufLen int64) (int64, *convError) {
	width := fixedWidth(cType)
	if width == 0 {
		return 0, &convError{"HY003", "Invalid application buffer type"}
	}
	if buf == nil || bufLen < width {
		return 0, errBufferSize
	}

	switch cType {
	case api.SQL_C_FLOAT, api.SQL_C_DOUBLE:
		f, cerr := asFloat(v)
		if cerr != nil {
			return 0, cerr
		}
		if cType == api.SQL_C_DOUBLE {
			*(*float64)(buf) = f
			return width, nil
		}
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return 0, errOutOfRange
		}
		*(*float32)(buf) = float32(f)
		return width, nil

	case api.SQL_C_UBIGINT:
		u, cerr := asUint(v)
		if cerr != nil {
			return 0, cerr
		}
		*(*uint64)(buf) = u
		return width, nil
	}

	n, cerr := asInt(v)
	if cerr != nil {
		return 0, cerr
	}

	switch cType {
	case api.SQL_C_BIT:
		if cerr = inRange(n, 0, 1); cerr == nil {
			*(*uint8)(buf) = uint8(n)
		}
	case api.SQL_C_STINYINT:
		if cerr = inRange(n, math.MinInt8, math.MaxInt8); cerr == nil {
			*(*int8)(buf) = int8(n)
		}
	case api.SQL_C_UTINYINT:
		if cerr = inRange(n, 0, math.MaxUint8); cerr == nil {
			*(*uint8)(buf) = uint8(n)
		}
	case api.SQL_C_SHORT, api.SQL_C_SSHORT:
		if cerr = inRange(n, math.MinInt16, math.MaxInt16); cerr == nil {
			*(*int16)(buf) = int16(n)
		}
	case api.SQL_C_USHORT:
		if cerr = inRange(n, 0, math.MaxUint16); cerr == nil {
			*(*uint16)(buf) = uint16(n)
		}
	case api.SQL_C_LONG, api.SQL_C_SLONG:
		if cerr = inRange(n, math.MinInt32, math.MaxInt32); cerr == nil {
			*(*int32)(buf) = int32(n)
		}
	case api.SQL_C_ULONG:
		if cerr = inRange(n, 0, math.MaxUint32); cerr == nil {
			*(*uint32)(buf) = uint32(n)
		}
	case api.SQL_C_SBIGINT:
		*(*int64)(buf) = n
	}
	if cerr != nil {
		return 0, cerr
	}

	return width, nil
}

func fixedWidth(cType api.CType) int64 {
	switch cType {
	case api.SQL_C_BIT, api.SQL_C_STINYINT, api.SQL_C_UTINYINT:
		return 1
	case api.SQL_C_SHORT, api.SQL_C_SSHORT, api.SQL_C_USHORT:
		return 2
	case api.SQL_C_LONG, api.SQL_C_SLONG, api.SQL_C_ULONG, api.SQL_C_FLOAT:
		return 4
	case api.SQL_C_SBIGINT, api.SQL_C_UBIGINT, api.SQL_C_DOUBLE:
		return 8
	}

	return 0
}

// ----------------------
// Statement text
// ----------------------

// countParams counts '?' markers outside string literals, quoted
// identifiers and comments.
func countParams(text string) int {
	n := 0
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '?':
			n++
		case '\'', '"', '`':
			i = skipQuoted(text, i, c)
		case '[':
			i = skipQuoted(text, i, ']')
		case '-':
			if i+1 < len(text) && text[i+1] == '-' {
				for i < len(text) && text[i] != '\n' {
					i++
				}
			}
		case '/':
			if i+1 < len(text) && text[i+1] == '*' {
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return n
				}
				i += end + 3
			}
		}
	}

	return n
}

// skipQuoted returns the index of the closing quote of the literal opened
// at text[start]. Doubled quotes inside the literal are escapes and are
// consumed as two consecutive literals.
func skipQuoted(text string, start int, closing byte) int {
	end := strings.IndexByte(text[start+1:], closing)
	if end < 0 {
		return len(text)
	}

	return start + 1 + end
}

// firstKeyword returns the upper-cased first word of a statement, skipping
// leading whitespace, comments and parentheses.
func firstKeyword(text string) string {
	for {
		text = strings.TrimLeft(text, " \t\r\n(")
		switch {
		case strings.HasPrefix(text, "--"):
			if i := strings.IndexByte(text, '\n'); i >= 0 {
				text = text[i+1:]
				continue
			}
			return ""
		case strings.HasPrefix(text, "/*"):
			if i := strings.Index(text, "*/"); i >= 0 {
				text = text[i+2:]
				continue
			}
			return ""
		}
		break
	}

	end := strings.IndexFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_')
	})
	if end < 0 {
		end = len(text)
	}

	return strings.ToUpper(text[:end])
}

func returnsRows(text string) bool {
	switch firstKeyword(text) {
	case "SELECT", "WITH", "VALUES", "PRAGMA", "EXPLAIN":
		return true
	}

	return strings.Contains(strings.ToUpper(text), "RETURNING")
}

// isSearched reports whether the statement is an UPDATE or DELETE, which
// report SQL_NO_DATA when they affect no rows.
func isSearched(text string) bool {
	switch firstKeyword(text) {
	case "UPDATE", "DELETE":
		return true
	}

	return false
}

func isTxControl(text string) bool {
	switch firstKeyword(text) {
	case "BEGIN", "COMMIT", "END", "ROLLBACK", "SAVEPOINT", "RELEASE":
		return true
	}

	return false
}

// ----------------------
// Errors
// ----------------------

// sqlState maps an engine error to a SQLSTATE.
func sqlState(err error) string {
	if errors.Is(err, context.Canceled) {
		return "HY008"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"):
		return "42S02"
	case strings.Contains(msg, "no such column"):
		return "42S22"
	case strings.Contains(msg, "already exists"):
		return "42S01"
	case strings.Contains(msg, "syntax error"), strings.Contains(msg, "incomplete input"):
		return "42000"
	case strings.Contains(msg, "constraint failed"):
		return "23000"
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "busy"):
		return "HYT00"
	case strings.Contains(msg, "interrupted"):
		return "HY008"
	}

	return "HY000"
}

func isInterrupt(err error) bool {
	return sqlState(err) == "HY008"
}
