package odbc

import (
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/types"
)

// maxColumnNameLen bounds the column label buffer handed to SQLDescribeCol.
const maxColumnNameLen = 256

// Terminator widths the driver appends to character data.
const (
	charTerm  = 1
	wcharTerm = 2
)

var probePool bytebufferpool.Pool

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// NumResultColumns returns the number of columns in the current result set.
//
// Returns:
//   - int: Column count, 0 if the statement produced no result set
//   - error: *types.DriverError on failure
func (s *Statement) NumResultColumns() (int, error) {
	if err := s.usable(); err != nil {
		return 0, err
	}

	n, rc := s.api.NumResultCols(s.raw)
	if err := s.check("SQLNumResultCols", rc); err != nil {
		return 0, err
	}

	return int(n), nil
}

// DescribeColumn describes one column of the current result set.
//
// A column label the driver returns in something other than valid UTF-8 is
// reported as an empty Name rather than an error.
//
// Parameters:
//   - ordinal: 1-based column number
//
// Returns:
//   - types.ColumnDescription: The description
//   - error: *types.DriverError on failure
func (s *Statement) DescribeColumn(ordinal int) (types.ColumnDescription, error) {
	if err := s.columnUsable(ordinal); err != nil {
		return types.ColumnDescription{}, err
	}

	var name [maxColumnNameLen]byte
	nameLen, dataType, size, digits, nullable, rc := s.api.DescribeCol(s.raw, uint16(ordinal), name[:])
	if err := s.check("SQLDescribeCol", rc); err != nil {
		return types.ColumnDescription{}, err
	}

	n := min(max(int(nameLen), 0), len(name)-1)
	label := cString(name[:n])
	if !utf8.ValidString(label) {
		label = ""
	}

	return types.ColumnDescription{
		Ordinal:       ordinal,
		Name:          label,
		Type:          types.ColumnType(dataType),
		Size:          size,
		DecimalDigits: int(digits),
		Nullable:      types.Nullability(nullable),
	}, nil
}

// DescribeColumns describes every column of the current result set.
//
// Returns:
//   - []types.ColumnDescription: One description per column, in order
//   - error: *types.DriverError on failure
func (s *Statement) DescribeColumns() ([]types.ColumnDescription, error) {
	n, err := s.NumResultColumns()
	if err != nil {
		return nil, err
	}

	cols := make([]types.ColumnDescription, n)
	for i := range cols {
		if cols[i], err = s.DescribeColumn(i + 1); err != nil {
			return nil, err
		}
	}

	return cols, nil
}

// Fetch advances the cursor to the next row.
//
// Returns:
//   - types.FetchResult: FetchSuccess, FetchNoMoreRows or FetchStillExecuting
//   - error: *types.DriverError for any other driver status
func (s *Statement) Fetch() (types.FetchResult, error) {
	if err := s.usable(); err != nil {
		return types.FetchNoMoreRows, err
	}

	rc := s.api.Fetch(s.raw)
	switch rc {
	case api.SQL_SUCCESS, api.SQL_SUCCESS_WITH_INFO:
		s.cfg.Metrics.IncFetchTotal()
		return types.FetchSuccess, nil
	case api.SQL_NO_DATA:
		return types.FetchNoMoreRows, nil
	case api.SQL_STILL_EXECUTING:
		return types.FetchStillExecuting, nil
	}

	return types.FetchNoMoreRows, s.check("SQLFetch", rc)
}

func (s *Statement) columnUsable(ordinal int) error {
	if err := s.usable(); err != nil {
		return err
	}
	if ordinal < 1 || ordinal > 0xFFFF {
		return fmt.Errorf("%w: column %d", types.ErrOrdinalRange, ordinal)
	}

	return nil
}

// ----------------------
// Fixed-width retrieval
// ----------------------

type fixed interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// getFixed reads a cell into a buffer sized exactly for T.
func getFixed[T fixed](s *Statement, ordinal int, cType api.CType) (T, bool, error) {
	var v T
	if err := s.columnUsable(ordinal); err != nil {
		return v, false, err
	}

	var ind int64
	rc := s.api.GetData(s.raw, uint16(ordinal), cType, unsafe.Pointer(&v), int64(unsafe.Sizeof(v)), &ind)
	if err := s.check("SQLGetData", rc); err != nil {
		return v, false, err
	}
	if ind == api.SQL_NULL_DATA {
		var zero T
		return zero, false, nil
	}

	return v, true, nil
}

// GetInt8 reads a column as a signed 8-bit integer. The boolean result is
// false when the cell is NULL.
func (s *Statement) GetInt8(ordinal int) (int8, bool, error) {
	return getFixed[int8](s, ordinal, api.SQL_C_STINYINT)
}

// GetInt16 reads a column as a signed 16-bit integer.
func (s *Statement) GetInt16(ordinal int) (int16, bool, error) {
	return getFixed[int16](s, ordinal, api.SQL_C_SSHORT)
}

// GetInt32 reads a column as a signed 32-bit integer.
func (s *Statement) GetInt32(ordinal int) (int32, bool, error) {
	return getFixed[int32](s, ordinal, api.SQL_C_SLONG)
}

// GetInt64 reads a column as a signed 64-bit integer.
func (s *Statement) GetInt64(ordinal int) (int64, bool, error) {
	return getFixed[int64](s, ordinal, api.SQL_C_SBIGINT)
}

// GetInt reads a column as a signed 64-bit integer converted to int.
func (s *Statement) GetInt(ordinal int) (int, bool, error) {
	v, ok, err := s.GetInt64(ordinal)
	return int(v), ok, err
}

// GetUint8 reads a column as an unsigned 8-bit integer.
func (s *Statement) GetUint8(ordinal int) (uint8, bool, error) {
	return getFixed[uint8](s, ordinal, api.SQL_C_UTINYINT)
}

// GetUint16 reads a column as an unsigned 16-bit integer.
func (s *Statement) GetUint16(ordinal int) (uint16, bool, error) {
	return getFixed[uint16](s, ordinal, api.SQL_C_USHORT)
}

// GetUint32 reads a column as an unsigned 32-bit integer.
func (s *Statement) GetUint32(ordinal int) (uint32, bool, error) {
	return getFixed[uint32](s, ordinal, api.SQL_C_ULONG)
}

// GetUint64 reads a column as an unsigned 64-bit integer.
func (s *Statement) GetUint64(ordinal int) (uint64, bool, error) {
	return getFixed[uint64](s, ordinal, api.SQL_C_UBIGINT)
}

// GetUint reads a column as an unsigned 64-bit integer converted to uint.
func (s *Statement) GetUint(ordinal int) (uint, bool, error) {
	v, ok, err := s.GetUint64(ordinal)
	return uint(v), ok, err
}

// GetFloat32 reads a column as a single precision float.
func (s *Statement) GetFloat32(ordinal int) (float32, bool, error) {
	return getFixed[float32](s, ordinal, api.SQL_C_FLOAT)
}

// GetFloat64 reads a column as a double precision float.
func (s *Statement) GetFloat64(ordinal int) (float64, bool, error) {
	return getFixed[float64](s, ordinal, api.SQL_C_DOUBLE)
}

// GetBool reads a column as a bit.
func (s *Statement) GetBool(ordinal int) (bool, bool, error) {
	v, ok, err := getFixed[uint8](s, ordinal, api.SQL_C_BIT)
	return v != 0, ok, err
}

// ----------------------
// Variable-length retrieval
// ----------------------

// getVarData retrieves a character or binary cell whose length is unknown.
//
// The first call reads into a pooled probe buffer of probe payload bytes
// (Config.ProbeSize when probe is not positive) plus the terminator the driver appends for cType. The
// driver reports the full length even when it truncates, so a value that
// did not fit is completed by exactly one more call that writes the
// remaining bytes behind the probe prefix in a buffer sized to the value.
func (s *Statement) getVarData(ordinal int, cType api.CType, term, probe int) ([]byte, bool, error) {
	if err := s.columnUsable(ordinal); err != nil {
		return nil, false, err
	}

	if probe <= 0 {
		probe = s.cfg.ProbeSize
	}
	if term == wcharTerm && probe%2 != 0 {
		probe++
	}

	bb := probePool.Get()
	defer probePool.Put(bb)
	if cap(bb.B) < probe+term {
		bb.B = make([]byte, probe+term)
	}
	buf := bb.B[:probe+term]

	col := uint16(ordinal)
	var ind int64
	rc := s.api.GetData(s.raw, col, cType, unsafe.Pointer(&buf[0]), int64(len(buf)), &ind)
	if err := s.check("SQLGetData", rc); err != nil {
		return nil, false, err
	}

	switch {
	case ind == api.SQL_NULL_DATA:
		return nil, false, nil
	case ind == api.SQL_NO_TOTAL:
		out, err := s.drainVarData(col, cType, term, buf[:probe])
		return out, err == nil, err
	case ind < 0:
		return nil, false, &types.DriverError{Op: "SQLGetData", Message: fmt.Sprintf("invalid length indicator %d", ind)}
	}

	total := int(ind)
	if total <= probe {
		out := make([]byte, total)
		copy(out, buf[:total])

		return out, true, nil
	}

	out := make([]byte, total+term)
	copy(out, buf[:probe])

	var rest int64
	rc = s.api.GetData(s.raw, col, cType, unsafe.Pointer(&out[probe]), int64(total-probe+term), &rest)
	if err := s.check("SQLGetData", rc); err != nil {
		return nil, false, err
	}

	s.cfg.Metrics.IncGetDataRegrow()
	s.cfg.Logger.Debug("cell exceeded probe buffer", "column", ordinal, "probe", probe, "length", total)

	remaining := int64(total - probe)
	switch {
	case rest == remaining:
		return out[:total], true, nil
	case rest == api.SQL_NO_TOTAL || rest > remaining:
		// The cell grew past the length reported by the probe.
		data, err := s.drainVarData(col, cType, term, out[:total])
		return data, err == nil, err
	case rest >= 0:
		return out[:probe+int(rest)], true, nil
	default:
		return nil, false, &types.DriverError{Op: "SQLGetData", Message: fmt.Sprintf("invalid length indicator %d", rest)}
	}
}

// drainVarData finishes a cell whose driver could not report its length,
// doubling the read size until the driver signals the end of the data.
func (s *Statement) drainVarData(col uint16, cType api.CType, term int, prefix []byte) ([]byte, error) {
	out := append([]byte(nil), prefix...)
	size := max(len(prefix), 1)

	for {
		size *= 2
		chunk := make([]byte, size+term)

		var ind int64
		rc := s.api.GetData(s.raw, col, cType, unsafe.Pointer(&chunk[0]), int64(len(chunk)), &ind)
		if rc == api.SQL_NO_DATA {
			return out, nil
		}
		if err := s.check("SQLGetData", rc); err != nil {
			return nil, err
		}

		if ind == api.SQL_NO_TOTAL || int(ind) > size {
			out = append(out, chunk[:size]...)
			continue
		}

		return append(out, chunk[:ind]...), nil
	}
}

// GetBytes reads a binary cell. The boolean result is false when the cell
// is NULL; a present zero-length value yields an empty, non-nil slice.
func (s *Statement) GetBytes(ordinal int) ([]byte, bool, error) {
	return s.getVarData(ordinal, api.SQL_C_BINARY, 0, 0)
}

// GetBytesSized reads a binary cell using estimatedSize as the probe
// capacity instead of Config.ProbeSize. A non-positive estimate keeps the
// configured probe.
//
// Parameters:
//   - ordinal: 1-based column number
//   - estimatedSize: Expected length of the value in bytes
//
// Returns:
//   - []byte: The value
//   - bool: false when the cell is NULL
//   - error: *types.DriverError on failure
func (s *Statement) GetBytesSized(ordinal, estimatedSize int) ([]byte, bool, error) {
	return s.getVarData(ordinal, api.SQL_C_BINARY, 0, estimatedSize)
}

// GetText reads a character cell and decodes it with Config.TextEncoding.
func (s *Statement) GetText(ordinal int) (string, bool, error) {
	return s.GetTextEncoded(ordinal, s.cfg.TextEncoding)
}

// GetTextEncoded reads a character cell and decodes it with enc.
//
// Parameters:
//   - ordinal: 1-based column number
//   - enc: Encoding of the bytes the driver returns
//
// Returns:
//   - string: The decoded text
//   - bool: false when the cell is NULL
//   - error: *types.DriverError or a decoding error
func (s *Statement) GetTextEncoded(ordinal int, enc encoding.Encoding) (string, bool, error) {
	return s.getText(ordinal, enc, 0)
}

// GetTextSized reads a character cell like GetText, probing with
// estimatedSize bytes instead of Config.ProbeSize. Callers that know a
// column holds large values avoid the second driver call this way.
func (s *Statement) GetTextSized(ordinal, estimatedSize int) (string, bool, error) {
	return s.getText(ordinal, s.cfg.TextEncoding, estimatedSize)
}

func (s *Statement) getText(ordinal int, enc encoding.Encoding, probe int) (string, bool, error) {
	raw, ok, err := s.getVarData(ordinal, api.SQL_C_CHAR, charTerm, probe)
	if err != nil || !ok {
		return "", ok, err
	}

	if enc == nil || enc == unicode.UTF8 {
		return string(raw), true, nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false, fmt.Errorf("odbc: decode column %d: %w", ordinal, err)
	}

	return string(decoded), true, nil
}

// GetWideText reads a character cell as UTF-16LE and converts it to UTF-8.
func (s *Statement) GetWideText(ordinal int) (string, bool, error) {
	raw, ok, err := s.getVarData(ordinal, api.SQL_C_WCHAR, wcharTerm, 0)
	if err != nil || !ok {
		return "", ok, err
	}

	decoded, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false, fmt.Errorf("odbc: decode column %d: %w", ordinal, err)
	}

	return string(decoded), true, nil
}

// GetUUID reads a cell holding a UUID in its canonical text form.
func (s *Statement) GetUUID(ordinal int) (uuid.UUID, bool, error) {
	text, ok, err := s.GetText(ordinal)
	if err != nil || !ok {
		return uuid.Nil, ok, err
	}

	id, err := uuid.Parse(text)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("odbc: column %d: %w", ordinal, err)
	}

	return id, true, nil
}

// GetValue reads a cell with the getter matching the column's SQL type.
//
// Exact numerics, dates, times and any type without a native Go
// counterpart are returned as text.
//
// Parameters:
//   - ordinal: 1-based column number
//
// Returns:
//   - Value: The cell, NullOf the column's kind when the cell is NULL
//   - error: *types.DriverError on failure
func (s *Statement) GetValue(ordinal int) (Value, error) {
	desc, err := s.DescribeColumn(ordinal)
	if err != nil {
		return Value{}, err
	}

	return s.getTyped(desc)
}

func (s *Statement) getTyped(desc types.ColumnDescription) (Value, error) {
	n := desc.Ordinal

	switch desc.Type {
	case types.ColumnBit:
		v, ok, err := s.GetBool(n)
		return asValue(v, ok, err, Bool, types.KindBool)
	case types.ColumnTinyInt:
		v, ok, err := s.GetInt8(n)
		return asValue(v, ok, err, Int8, types.KindInt8)
	case types.ColumnSmallInt:
		v, ok, err := s.GetInt16(n)
		return asValue(v, ok, err, Int16, types.KindInt16)
	case types.ColumnInteger:
		v, ok, err := s.GetInt32(n)
		return asValue(v, ok, err, Int32, types.KindInt32)
	case types.ColumnBigInt:
		v, ok, err := s.GetInt64(n)
		return asValue(v, ok, err, Int64, types.KindInt64)
	case types.ColumnReal:
		v, ok, err := s.GetFloat32(n)
		return asValue(v, ok, err, Float32, types.KindFloat32)
	case types.ColumnFloat, types.ColumnDouble:
		v, ok, err := s.GetFloat64(n)
		return asValue(v, ok, err, Float64, types.KindFloat64)
	case types.ColumnGUID:
		v, ok, err := s.GetUUID(n)
		return asValue(v, ok, err, UUID, types.KindUUID)
	}

	switch {
	case desc.Type.IsBinary():
		v, ok, err := s.GetBytes(n)
		return asValue(v, ok, err, Bytes, types.KindBytes)
	case desc.Type.IsWide():
		v, ok, err := s.GetWideText(n)
		return asValue(v, ok, err, Text, types.KindText)
	default:
		v, ok, err := s.GetText(n)
		return asValue(v, ok, err, Text, types.KindText)
	}
}

func asValue[T any](v T, ok bool, err error, ctor func(T) Value, kind types.Kind) (Value, error) {
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return NullOf(kind), nil
	}

	return ctor(v), nil
}
