package odbc

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/arloliu/odbc/types"
)

// Value is a closed tagged union over the scalar kinds that can be bound
// as statement parameters or read back from result columns.
//
// Exactly one payload field is meaningful, selected by Kind. A Value of
// KindNull, including the zero Value, is SQL NULL; NullOf records the
// intended kind so the driver can be told the type of the null.
type Value struct {
	kind   types.Kind
	b      bool
	i      int64
	u      uint64
	f      float64
	s      string
	bytes  []byte
	id     uuid.UUID
	nullOf types.Kind
}

// Null returns an untyped SQL NULL.
func Null() Value {
	return Value{kind: types.KindNull}
}

// NullOf returns a SQL NULL that binds with the type tags of kind.
func NullOf(kind types.Kind) Value {
	return Value{kind: types.KindNull, nullOf: kind}
}

func Bool(v bool) Value       { return Value{kind: types.KindBool, b: v} }
func Int8(v int8) Value       { return Value{kind: types.KindInt8, i: int64(v)} }
func Int16(v int16) Value     { return Value{kind: types.KindInt16, i: int64(v)} }
func Int32(v int32) Value     { return Value{kind: types.KindInt32, i: int64(v)} }
func Int64(v int64) Value     { return Value{kind: types.KindInt64, i: v} }
func Uint8(v uint8) Value     { return Value{kind: types.KindUint8, u: uint64(v)} }
func Uint16(v uint16) Value   { return Value{kind: types.KindUint16, u: uint64(v)} }
func Uint32(v uint32) Value   { return Value{kind: types.KindUint32, u: uint64(v)} }
func Uint64(v uint64) Value   { return Value{kind: types.KindUint64, u: v} }
func Float32(v float32) Value { return Value{kind: types.KindFloat32, f: float64(v)} }
func Float64(v float64) Value { return Value{kind: types.KindFloat64, f: v} }
func Text(v string) Value     { return Value{kind: types.KindText, s: v} }
func UUID(v uuid.UUID) Value  { return Value{kind: types.KindUUID, id: v} }

// Bytes returns a binary value. A nil slice is a zero-length value, not
// NULL; use Null or NullOf(types.KindBytes) for NULL.
func Bytes(v []byte) Value {
	return Value{kind: types.KindBytes, bytes: v}
}

// Kind returns the value's tag.
func (v Value) Kind() types.Kind {
	return v.kind
}

// IsNull reports whether the value is SQL NULL.
func (v Value) IsNull() bool {
	return v.kind == types.KindNull
}

// NullKind returns the kind a NULL was declared with, or KindNull.
func (v Value) NullKind() types.Kind {
	return v.nullOf
}

// Any returns the payload as a Go value of the matching type, or nil for NULL.
func (v Value) Any() any {
	switch v.kind {
	case types.KindBool:
		return v.b
	case types.KindInt8:
		return int8(v.i)
	case types.KindInt16:
		return int16(v.i)
	case types.KindInt32:
		return int32(v.i)
	case types.KindInt64:
		return v.i
	case types.KindUint8:
		return uint8(v.u)
	case types.KindUint16:
		return uint16(v.u)
	case types.KindUint32:
		return uint32(v.u)
	case types.KindUint64:
		return v.u
	case types.KindFloat32:
		return float32(v.f)
	case types.KindFloat64:
		return v.f
	case types.KindText:
		return v.s
	case types.KindBytes:
		return v.bytes
	case types.KindUUID:
		return v.id
	default:
		return nil
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.IsNull() {
		return "NULL"
	}

	return fmt.Sprintf("%s(%v)", v.kind, v.Any())
}

// payload returns the bytes sent for a variable-length kind.
func (v Value) payload() []byte {
	switch v.kind {
	case types.KindText:
		return []byte(v.s)
	case types.KindBytes:
		return v.bytes
	case types.KindUUID:
		return []byte(v.id.String())
	default:
		return nil
	}
}

// ValueOf converts a Go value into a Value.
//
// The accepted set is closed: nil, bool, the sized integer and float types,
// int and uint (bound as 64-bit), string, []byte, uuid.UUID, a Value, and the
// database/sql Null wrappers for those types.
//
// Parameters:
//   - x: The Go value
//
// Returns:
//   - Value: The tagged value
//   - error: types.ErrUnsupportedValue for anything outside the set
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int8:
		return Int8(v), nil
	case int16:
		return Int16(v), nil
	case int32:
		return Int32(v), nil
	case int64:
		return Int64(v), nil
	case int:
		return Int64(int64(v)), nil
	case uint8:
		return Uint8(v), nil
	case uint16:
		return Uint16(v), nil
	case uint32:
		return Uint32(v), nil
	case uint64:
		return Uint64(v), nil
	case uint:
		return Uint64(uint64(v)), nil
	case float32:
		return Float32(v), nil
	case float64:
		return Float64(v), nil
	case string:
		return Text(v), nil
	case []byte:
		if v == nil {
			return NullOf(types.KindBytes), nil
		}
		return Bytes(v), nil
	case uuid.UUID:
		return UUID(v), nil
	case uuid.NullUUID:
		if !v.Valid {
			return NullOf(types.KindUUID), nil
		}
		return UUID(v.UUID), nil
	case sql.NullBool:
		if !v.Valid {
			return NullOf(types.KindBool), nil
		}
		return Bool(v.Bool), nil
	case sql.NullByte:
		if !v.Valid {
			return NullOf(types.KindUint8), nil
		}
		return Uint8(v.Byte), nil
	case sql.NullInt16:
		if !v.Valid {
			return NullOf(types.KindInt16), nil
		}
		return Int16(v.Int16), nil
	case sql.NullInt32:
		if !v.Valid {
			return NullOf(types.KindInt32), nil
		}
		return Int32(v.Int32), nil
	case sql.NullInt64:
		if !v.Valid {
			return NullOf(types.KindInt64), nil
		}
		return Int64(v.Int64), nil
	case sql.NullFloat64:
		if !v.Valid {
			return NullOf(types.KindFloat64), nil
		}
		return Float64(v.Float64), nil
	case sql.NullString:
		if !v.Valid {
			return NullOf(types.KindText), nil
		}
		return Text(v.String), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", types.ErrUnsupportedValue, x)
	}
}
