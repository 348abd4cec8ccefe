package odbc

import (
	"unsafe"

	"github.com/arloliu/odbc/api"
	"github.com/arloliu/odbc/types"
)

// paramSlot is one entry of the parameter arena.
//
// The driver keeps pointers to ind and to one payload field between
// SQLBindParameter and the end of execution, so each field has a single
// fixed type: a slot bound as int16 is read through the i16 field and never
// through the storage of another width.
type paramSlot struct {
	ind   int64
	token uint16

	b   uint8
	i8  int8
	u8  uint8
	i16 int16
	u16 uint16
	i32 int32
	u32 uint32
	i64 int64
	u64 uint64
	f32 float32
	f64 float64
}

// deferredParam is a variable-length value awaiting SQLParamData.
type deferredParam struct {
	data  []byte
	cType api.CType
}

// typeTags is the C-type / SQL-type pair bound for each kind.
var typeTags = [...]struct {
	c   api.CType
	sql api.SQLType
}{
	types.KindNull:    {api.SQL_C_CHAR, api.SQL_VARCHAR},
	types.KindBool:    {api.SQL_C_BIT, api.SQL_BIT},
	types.KindInt8:    {api.SQL_C_STINYINT, api.SQL_TINYINT},
	types.KindInt16:   {api.SQL_C_SSHORT, api.SQL_SMALLINT},
	types.KindInt32:   {api.SQL_C_SLONG, api.SQL_INTEGER},
	types.KindInt64:   {api.SQL_C_SBIGINT, api.SQL_BIGINT},
	types.KindUint8:   {api.SQL_C_UTINYINT, api.SQL_SMALLINT},
	types.KindUint16:  {api.SQL_C_USHORT, api.SQL_INTEGER},
	types.KindUint32:  {api.SQL_C_ULONG, api.SQL_BIGINT},
	types.KindUint64:  {api.SQL_C_UBIGINT, api.SQL_BIGINT},
	types.KindFloat32: {api.SQL_C_FLOAT, api.SQL_REAL},
	types.KindFloat64: {api.SQL_C_DOUBLE, api.SQL_DOUBLE},
	types.KindText:    {api.SQL_C_CHAR, api.SQL_VARCHAR},
	types.KindBytes:   {api.SQL_C_BINARY, api.SQL_VARBINARY},
	types.KindUUID:    {api.SQL_C_CHAR, api.SQL_VARCHAR},
}

// ensureArena sizes the arena to the statement's parameter count, asking
// the driver for the count the first time it is needed.
func (s *Statement) ensureArena() error {
	if s.arena != nil {
		return nil
	}

	n, err := s.NumParams()
	if err != nil {
		return err
	}

	s.arena = make([]paramSlot, n)
	for i := range s.arena {
		s.arena[i].token = uint16(i + 1)
		s.arena[i].ind = api.SQL_NULL_DATA
	}
	if n > 0 {
		s.pinner.Pin(&s.arena[0])
	}
	s.deferred = make(map[uint16]deferredParam)

	return nil
}

// releaseArena unpins and drops the arena. The native side must have
// forgotten the bindings (SQL_RESET_PARAMS or handle free) first.
func (s *Statement) releaseArena() {
	s.pinner.Unpin()
	s.arena = nil
	s.deferred = nil
}

// BindParameter binds a value to a 1-based parameter ordinal.
//
// Fixed-width values are copied into the statement's parameter arena and
// read by the driver at execute time. Text, bytes and UUIDs are copied into
// the deferred-parameter table and streamed to the driver on request during
// Execute. Binding an ordinal again replaces the previous value.
//
// Parameters:
//   - ordinal: Parameter number in [1, NumParams()]
//   - v: The value
//
// Returns:
//   - error: *types.BindingError on an out-of-range ordinal, a failed
//     parameter count probe or a driver rejection
func (s *Statement) BindParameter(ordinal int, v Value) error {
	if err := s.usable(); err != nil {
		return err
	}
	if err := s.ensureArena(); err != nil {
		return &types.BindingError{Ordinal: ordinal, Cause: err}
	}
	if ordinal < 1 || ordinal > len(s.arena) {
		return &types.BindingError{Ordinal: ordinal, Cause: types.ErrOrdinalRange}
	}

	// A NULL binds with the tags of the kind it was declared with.
	kind := v.kind
	if v.IsNull() {
		kind = v.nullOf
	}
	if int(v.kind) >= len(typeTags) || int(kind) >= len(typeTags) {
		return &types.BindingError{Ordinal: ordinal, Cause: types.ErrUnsupportedValue}
	}

	slot := &s.arena[ordinal-1]
	key := uint16(ordinal)
	tags := typeTags[kind]

	var (
		ptr        unsafe.Pointer
		bufLen     int64
		columnSize uint64
		digits     int16
	)

	switch v.kind {
	case types.KindNull:
		delete(s.deferred, key)
		slot.ind = api.SQL_NULL_DATA
		columnSize = 1
	case types.KindBool:
		slot.b = 0
		if v.b {
			slot.b = 1
		}
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.b), 1, 1
	case types.KindInt8:
		slot.i8 = int8(v.i)
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.i8), 1, 3
	case types.KindInt16:
		slot.i16 = int16(v.i)
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.i16), 2, 5
	case types.KindInt32:
		slot.i32 = int32(v.i)
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.i32), 4, 10
	case types.KindInt64:
		slot.i64 = v.i
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.i64), 8, 19
	case types.KindUint8:
		slot.u8 = uint8(v.u)
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.u8), 1, 3
	case types.KindUint16:
		slot.u16 = uint16(v.u)
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.u16), 2, 5
	case types.KindUint32:
		slot.u32 = uint32(v.u)
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.u32), 4, 10
	case types.KindUint64:
		slot.u64 = v.u
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.u64), 8, 20
	case types.KindFloat32:
		slot.f32 = float32(v.f)
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.f32), 4, 7
	case types.KindFloat64:
		slot.f64 = v.f
		ptr, bufLen, columnSize = unsafe.Pointer(&slot.f64), 8, 15
	case types.KindText, types.KindBytes, types.KindUUID:
		data := append([]byte(nil), v.payload()...)
		s.deferred[key] = deferredParam{data: data, cType: tags.c}
		slot.ind = api.LenDataAtExec(len(data))
		ptr = unsafe.Pointer(&slot.token)
		columnSize = uint64(max(len(data), 1))
	}

	if !v.IsNull() && !v.kind.IsVariableLength() {
		delete(s.deferred, key)
		slot.ind = bufLen
	}

	rc := s.api.BindParameter(s.raw, key, api.SQL_PARAM_INPUT, tags.c, tags.sql,
		columnSize, digits, ptr, bufLen, &slot.ind)
	if err := s.check("SQLBindParameter", rc); err != nil {
		return &types.BindingError{Ordinal: ordinal, Cause: err}
	}

	return nil
}

// BindArgs binds args to ordinals 1..len(args) using ValueOf.
//
// Parameters:
//   - args: Go values from the set accepted by ValueOf
//
// Returns:
//   - error: *types.BindingError naming the first ordinal that failed
func (s *Statement) BindArgs(args ...any) error {
	for i, arg := range args {
		v, err := ValueOf(arg)
		if err != nil {
			return &types.BindingError{Ordinal: i + 1, Cause: err}
		}
		if err := s.BindParameter(i+1, v); err != nil {
			return err
		}
	}

	return nil
}

// slotForToken resolves the value pointer returned by SQLParamData to the
// arena slot whose token field it addresses.
func (s *Statement) slotForToken(token unsafe.Pointer) (*paramSlot, bool) {
	for i := range s.arena {
		if unsafe.Pointer(&s.arena[i].token) == token {
			return &s.arena[i], true
		}
	}

	return nil, false
}
