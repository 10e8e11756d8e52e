package dynapi

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

func returning(name, returns string, params ...descriptor.Parameter) (descriptor.Method, []descriptor.Parameter) {
	m := descriptor.NewMethod(name, name, descriptor.GET)
	m.Returns = returns
	return m, params
}

func TestZeroValueWithoutDispatcher(t *testing.T) {
	tests := []struct {
		returns string
		want    any
	}{
		{"String", ""},
		{"int", 0},
		{"boolean", false},
		{"double", 0.0},
		{"[]string", []string(nil)},
		{"any", nil},
		{"void", nil},
		{"Mono", Mono{}},
	}

	for _, tt := range tests {
		t.Run(tt.returns, func(t *testing.T) {
			pool := newTestPool(t)
			m, _ := returning("get", tt.returns)
			handle, err := openSession(t, pool, "com.example.Zero", ProfileEndpoint).
				AddSyntheticMethod(m, nil).
				Materialize()
			require.NoError(t, err)

			// New leaves the dispatcher field nil
			got, err := handle.New().Invoke("get")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectProfileNeverDispatches(t *testing.T) {
	pool := newTestPool(t)
	m, params := returning("get", "int", descriptor.Param("id", "int"))
	handle, err := openSession(t, pool, "com.example.Obj", ProfileObject).
		AddSyntheticMethod(m, nil, params...).
		Materialize()
	require.NoError(t, err)

	assert.False(t, handle.HasDispatcherConstructor())
	_, err = handle.NewWithDispatcher(&recorder{})
	assert.ErrorIs(t, err, ErrMaterialization)

	got, err := handle.New().Invoke("get", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Nil(t, handle.New().Dispatcher())
}

func TestDispatchResultCast(t *testing.T) {
	tests := []struct {
		name    string
		returns string
		result  any
		want    any
		wantErr bool
	}{
		{"exact", "String", "x", "x", false},
		{"numeric widening", "int64", 7, int64(7), false},
		{"nil to zero", "int", nil, 0, false},
		{"any passes through", "any", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"void drops result", "void", "ignored", nil, false},
		{"mismatch", "int", "seven", nil, true},
		{"whole float narrows", "int8", float64(12), int8(12), false},
		{"float out of range", "int8", float64(370), nil, true},
		{"fraction to int", "int", 2.5, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newTestPool(t)
			m, _ := returning("get", tt.returns)
			inst, err := openSession(t, pool, "com.example.Cast", ProfileEndpoint).
				AddSyntheticMethod(m, nil).
				Instantiate(&recorder{result: tt.result})
			require.NoError(t, err)

			got, err := inst.Invoke("get")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDispatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatchErrorIsLoggedAndReturned(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	pool, err := NewPool(WithLogger(zap.New(core)))
	require.NoError(t, err)

	boom := errors.New("boom")
	m, params := returning("save", "String", descriptor.Param("body", "String").In(descriptor.SourceBody))
	inst, err := openSession(t, pool, "com.example.Fail", ProfileEndpoint).
		AddSyntheticMethod(m, nil, params...).
		Instantiate(&recorder{err: boom})
	require.NoError(t, err)

	_, err = inst.Invoke("save", "payload")
	assert.Same(t, boom, err, "the dispatcher error is returned unchanged")

	entries := logs.FilterMessage("method failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "com.example.Fail", fields["type"])
	assert.Equal(t, "save(string)", fields["method"])
	assert.Equal(t, "boom", fields["error"])
}

func TestDispatchPanicIsLoggedAndRepanicked(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	pool, err := NewPool(WithLogger(zap.New(core)))
	require.NoError(t, err)

	m, _ := returning("explode", "void")
	inst, err := openSession(t, pool, "com.example.Panic", ProfileEndpoint).
		AddSyntheticMethod(m, nil).
		Instantiate(DispatcherFunc(func(*Instance, *Method, []any) (any, error) {
			panic("kaboom")
		}))
	require.NoError(t, err)

	assert.PanicsWithValue(t, "kaboom", func() {
		_, _ = inst.Invoke("explode")
	})
	assert.Equal(t, 1, logs.FilterMessage("method panicked").Len())
}

func TestDispatcherCalledOncePerInvocation(t *testing.T) {
	pool := newTestPool(t)
	rec := &recorder{result: "ok"}

	m := descriptor.NewMethod("search", "search", descriptor.GET)
	inst, err := openSession(t, pool, "com.example.Once", ProfileEndpoint).
		AddSyntheticMethod(m, nil,
			descriptor.Param("q", "String"),
			descriptor.Param("limit", "int"),
			descriptor.Param("exact", "boolean"),
		).
		Instantiate(rec)
	require.NoError(t, err)

	_, err = inst.Invoke("search", "go", 10, true)
	require.NoError(t, err)
	_, err = inst.Invoke("search", "rust", int64(3), false)
	require.NoError(t, err, "numeric arguments are converted to the parameter type")

	require.Equal(t, 2, rec.count())
	assert.Equal(t, []any{"go", 10, true}, rec.calls[0].args)
	assert.Equal(t, []any{"rust", 3, false}, rec.calls[1].args)
	assert.Equal(t, "search", rec.calls[0].method.Name())
	assert.Equal(t,
		[]reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[int](), reflect.TypeFor[bool]()},
		rec.calls[0].method.ParamTypes())
}

func TestInvokeOverloads(t *testing.T) {
	pool := newTestPool(t)
	table := (&MethodTable{}).
		Handle("find", func(_ *Instance, m *Method, args []any) (any, error) {
			return m.Signature(), nil
		})

	inst, err := openSession(t, pool, "com.example.Over", ProfileEndpoint).
		AddSyntheticMethod(descriptor.NewMethod("find", "a", descriptor.GET), nil, descriptor.Param("id", "int")).
		AddSyntheticMethod(descriptor.NewMethod("find", "b", descriptor.GET), nil, descriptor.Param("name", "String")).
		AddSyntheticMethod(descriptor.NewMethod("find", "c", descriptor.GET), nil,
			descriptor.Param("name", "String"), descriptor.Param("limit", "int")).
		Instantiate(table)
	require.NoError(t, err)

	got, err := inst.Invoke("find", 1)
	require.NoError(t, err)
	assert.Equal(t, "find(int)", got)

	got, err = inst.Invoke("find", "bob")
	require.NoError(t, err)
	assert.Equal(t, "find(string)", got)

	got, err = inst.Invoke("find", "bob", 3)
	require.NoError(t, err)
	assert.Equal(t, "find(string, int)", got)

	got, err = inst.Invoke("find", int32(9))
	require.NoError(t, err)
	assert.Equal(t, "find(int)", got, "converted when no exact overload matches")

	_, err = inst.Invoke("find", 1, 2, 3)
	assert.ErrorIs(t, err, ErrMethodNotFound)
	_, err = inst.Invoke("nothing")
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

func TestMethodTableFallback(t *testing.T) {
	pool := newTestPool(t)
	fallback := &recorder{result: "fallback"}
	table := &MethodTable{Fallback: fallback}

	inst, err := openSession(t, pool, "com.example.Table", ProfileEndpoint).
		AddSyntheticMethod(descriptor.NewMethod("other", "o", descriptor.GET), nil).
		Instantiate(table)
	require.NoError(t, err)

	got, err := inst.Invoke("other")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.Equal(t, 1, fallback.count())

	empty := &MethodTable{}
	got, err = empty.Dispatch(inst, inst.Type().Methods()[0], nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCallChecksOwnerAndArity(t *testing.T) {
	pool := newTestPool(t)
	a, err := openSession(t, pool, "com.example.A", ProfileEndpoint).
		AddSyntheticMethod(descriptor.NewMethod("get", "get", descriptor.GET), nil, descriptor.Param("id", "int")).
		Instantiate(&recorder{})
	require.NoError(t, err)
	b, err := openSession(t, pool, "com.example.B", ProfileEndpoint).
		AddSyntheticMethod(descriptor.NewMethod("get", "get", descriptor.GET), nil, descriptor.Param("id", "int")).
		Instantiate(&recorder{})
	require.NoError(t, err)

	_, err = a.Call(b.Type().Methods()[0], []any{1})
	assert.ErrorIs(t, err, ErrMethodNotFound)

	_, err = a.Call(a.Type().Methods()[0], nil)
	assert.ErrorIs(t, err, ErrDispatch)

	_, err = a.Call(a.Type().Methods()[0], []any{"not a number"})
	assert.ErrorIs(t, err, ErrDispatch)

	_, err = a.Call(nil, nil)
	assert.ErrorIs(t, err, ErrMethodNotFound)
}

func TestInstanceFields(t *testing.T) {
	pool := newTestPool(t)
	handle, err := openSession(t, pool, "com.example.Fields", ProfileEndpoint).
		AddFieldValue("UUID", "uid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8").
		AddFieldValue("int", "count", "12").
		AddField("[]string", "tags").
		Materialize()
	require.NoError(t, err)

	first := handle.New()
	second := handle.New()
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Same(t, handle, first.Type())

	uid, err := first.Field("uid")
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), uid)

	require.NoError(t, first.SetField("count", int64(5)))
	count, _ := first.Field("count")
	assert.Equal(t, 5, count)
	count, _ = second.Field("count")
	assert.Equal(t, 12, count, "instances do not share field storage")

	assert.Error(t, first.SetField("count", "five"))
	assert.ErrorIs(t, first.SetField("missing", 1), ErrFieldNotFound)
	_, err = first.Field("missing")
	assert.ErrorIs(t, err, ErrFieldNotFound)

	tags, _ := first.Field("tags")
	assert.Nil(t, tags)

	f, err := handle.Field("uid")
	require.NoError(t, err)
	assert.Equal(t, Public, f.Visibility())
	_, err = handle.Field("nope")
	assert.ErrorIs(t, err, ErrFieldNotFound)
}

func TestMethodIDsAreStable(t *testing.T) {
	build := func(pool *Pool) *TypeHandle {
		h, err := openSession(t, pool, "com.example.Stable", ProfileEndpoint).
			AddSyntheticMethod(descriptor.NewMethod("get", "get", descriptor.GET), nil, descriptor.Param("id", "int")).
			AddSyntheticMethod(descriptor.NewMethod("put", "put", descriptor.PUT), nil).
			Materialize()
		require.NoError(t, err)
		return h
	}

	one := build(newTestPool(t))
	two := build(newTestPool(t))

	require.Len(t, one.Methods(), 2)
	for i := range one.Methods() {
		assert.Equal(t, one.Methods()[i].ID(), two.Methods()[i].ID())
	}
	assert.NotEqual(t, one.Methods()[0].ID(), one.Methods()[1].ID())

	m, ok := one.MethodByID(one.Methods()[1].ID())
	require.True(t, ok)
	assert.Equal(t, "put()", m.Signature())
	assert.Same(t, one, m.Owner())
}

func TestHandleIsIsolatedFromSession(t *testing.T) {
	pool := newTestPool(t)
	s := openSession(t, pool, "com.example.Iso", ProfileEndpoint).
		AddSyntheticMethod(descriptor.NewMethod("get", "get", descriptor.GET), nil)
	def := s.Build()

	handle, err := s.Materialize()
	require.NoError(t, err)

	// mutating the consumed definition does not reach the handle
	def.records.Attach(metadata.Create("Marker").Build())
	assert.False(t, handle.Annotations().Has("Marker"))
}
