package odbc

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/odbc/types"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, types.KindNull, v.Kind())
	assert.Nil(t, v.Any())
	assert.Equal(t, "NULL", v.String())

	n := NullOf(types.KindInt32)
	assert.True(t, n.IsNull())
	assert.Equal(t, types.KindInt32, n.NullKind())
}

func TestValue_ZeroLengthIsNotNull(t *testing.T) {
	assert.False(t, Text("").IsNull())
	assert.False(t, Bytes(nil).IsNull())
	assert.False(t, Int64(0).IsNull())
}

func TestValueOf(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name string
		in   any
		kind types.Kind
		want any
	}{
		{"nil", nil, types.KindNull, nil},
		{"bool", true, types.KindBool, true},
		{"int8", int8(-3), types.KindInt8, int8(-3)},
		{"int16", int16(-300), types.KindInt16, int16(-300)},
		{"int32", int32(7), types.KindInt32, int32(7)},
		{"int64", int64(-7), types.KindInt64, int64(-7)},
		{"int", 42, types.KindInt64, int64(42)},
		{"uint8", uint8(255), types.KindUint8, uint8(255)},
		{"uint16", uint16(65535), types.KindUint16, uint16(65535)},
		{"uint32", uint32(1), types.KindUint32, uint32(1)},
		{"uint64", uint64(1 << 63), types.KindUint64, uint64(1 << 63)},
		{"uint", uint(9), types.KindUint64, uint64(9)},
		{"float32", float32(1.5), types.KindFloat32, float32(1.5)},
		{"float64", 2.25, types.KindFloat64, 2.25},
		{"string", "hi", types.KindText, "hi"},
		{"bytes", []byte{1, 2}, types.KindBytes, []byte{1, 2}},
		{"uuid", id, types.KindUUID, id},
		{"value", Int16(5), types.KindInt16, int16(5)},
		{"valid NullString", sql.NullString{String: "x", Valid: true}, types.KindText, "x"},
		{"valid NullInt32", sql.NullInt32{Int32: 3, Valid: true}, types.KindInt32, int32(3)},
		{"valid NullUUID", uuid.NullUUID{UUID: id, Valid: true}, types.KindUUID, id},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.Any())
		})
	}
}

func TestValueOf_InvalidNullablesKeepKind(t *testing.T) {
	tests := []struct {
		in   any
		kind types.Kind
	}{
		{sql.NullBool{}, types.KindBool},
		{sql.NullByte{}, types.KindUint8},
		{sql.NullInt16{}, types.KindInt16},
		{sql.NullInt32{}, types.KindInt32},
		{sql.NullInt64{}, types.KindInt64},
		{sql.NullFloat64{}, types.KindFloat64},
		{sql.NullString{}, types.KindText},
		{uuid.NullUUID{}, types.KindUUID},
		{[]byte(nil), types.KindBytes},
	}

	for _, tt := range tests {
		v, err := ValueOf(tt.in)
		require.NoError(t, err)
		assert.True(t, v.IsNull(), "%T", tt.in)
		assert.Equal(t, tt.kind, v.NullKind(), "%T", tt.in)
	}
}

func TestValueOf_Unsupported(t *testing.T) {
	for _, in := range []any{struct{}{}, complex(1, 2), []int{1}, map[string]int{}} {
		_, err := ValueOf(in)
		require.ErrorIs(t, err, types.ErrUnsupportedValue, "%T", in)
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "int32(7)", Int32(7).String())
	assert.Equal(t, "text(hi)", Text("hi").String())
}

func TestValue_UUIDPayloadIsCanonicalText(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, []byte("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), UUID(id).payload())
}
