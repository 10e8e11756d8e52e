package convert

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name  string
		input string
		typ   reflect.Type
		want  any
	}{
		{"string", "hello", reflect.TypeOf(""), "hello"},
		{"int", "42", reflect.TypeOf(0), 42},
		{"int8", "-7", reflect.TypeOf(int8(0)), int8(-7)},
		{"uint16", "9", reflect.TypeOf(uint16(0)), uint16(9)},
		{"float64", "1.5", reflect.TypeOf(0.0), 1.5},
		{"bool", "true", reflect.TypeOf(false), true},
		{"uuid", id.String(), reflect.TypeOf(uuid.UUID{}), id},
		{"duration", "1s", reflect.TypeOf(time.Duration(0)), time.Second},
		{"bytes", "raw", reflect.TypeOf([]byte(nil)), []byte("raw")},
		{"any", "x", reflect.TypeOf((*any)(nil)).Elem(), "x"},
		{"json map", `{"a":1}`, reflect.TypeOf(map[string]int{}), map[string]int{"a": 1}},
		{"json slice", `[1,2]`, reflect.TypeOf([]int{}), []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromString(tt.input, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestFromString_Errors(t *testing.T) {
	_, err := FromString("abc", reflect.TypeOf(0))
	assert.Error(t, err)

	_, err = FromString("300", reflect.TypeOf(int8(0)))
	assert.Error(t, err)

	_, err = FromString("not-a-uuid", reflect.TypeOf(uuid.UUID{}))
	assert.Error(t, err)

	_, err = FromString("{", reflect.TypeOf(map[string]any{}))
	assert.Error(t, err)
}

func TestFromStrings(t *testing.T) {
	got, err := FromStrings([]string{"1", "2", "3"}, reflect.TypeOf([]int{}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got.Interface())

	got, err = FromStrings([]string{"first", "second"}, reflect.TypeOf(""))
	require.NoError(t, err)
	assert.Equal(t, "first", got.Interface())

	got, err = FromStrings(nil, reflect.TypeOf(0))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Interface())
}

func TestAssign(t *testing.T) {
	type label string

	tests := []struct {
		name    string
		value   any
		typ     reflect.Type
		want    any
		wantErr bool
	}{
		{"nil to zero int", nil, reflect.TypeOf(0), 0, false},
		{"nil to zero string", nil, reflect.TypeOf(""), "", false},
		{"assignable", "x", reflect.TypeOf(""), "x", false},
		{"into interface", 5, reflect.TypeOf((*any)(nil)).Elem(), 5, false},
		{"int64 to int", int64(3), reflect.TypeOf(0), 3, false},
		{"int to float", 2, reflect.TypeOf(0.0), 2.0, false},
		{"string kind", "a", reflect.TypeOf(label("")), label("a"), false},
		{"int to string rejected", 65, reflect.TypeOf(""), nil, true},
		{"string to int rejected", "1", reflect.TypeOf(0), nil, true},
		{"whole float to int8", 12.0, reflect.TypeOf(int8(0)), int8(12), false},
		{"float overflows int8", float64(370), reflect.TypeOf(int8(0)), nil, true},
		{"fraction to int", 1.5, reflect.TypeOf(0), nil, true},
		{"int overflows uint8", 256, reflect.TypeOf(uint8(0)), nil, true},
		{"negative to uint", -1, reflect.TypeOf(uint(0)), nil, true},
		{"large uint to int64", uint64(1 << 63), reflect.TypeOf(int64(0)), nil, true},
		{"float64 overflows float32", 1e300, reflect.TypeOf(float32(0)), nil, true},
		{"NaN to int", math.NaN(), reflect.TypeOf(0), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assign(tt.value, tt.typ)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestNillable(t *testing.T) {
	assert.True(t, Nillable(reflect.TypeOf([]int{})))
	assert.True(t, Nillable(reflect.TypeOf(map[string]int{})))
	assert.True(t, Nillable(reflect.TypeOf((*int)(nil))))
	assert.False(t, Nillable(reflect.TypeOf(0)))
	assert.False(t, Nillable(reflect.TypeOf("")))
}
