package codegen

import (
	"go/parser"
	"go/token"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

type hidden struct{}

func greeter(t *testing.T) *dynapi.TypeHandle {
	t.Helper()
	pool, err := dynapi.NewPool()
	require.NoError(t, err)
	require.NoError(t, dynapi.RegisterType[time.Time](pool.Resolver(), "Instant"))

	method := func(name, returns string) descriptor.Method {
		return descriptor.Method{
			Name:    name,
			Returns: returns,
			Mapping: descriptor.Mapping{Paths: []string{name}, Verbs: []descriptor.Verb{descriptor.GET}},
		}
	}

	s, err := pool.Open("com.example.GreeterApi", dynapi.ProfileEndpoint)
	require.NoError(t, err)
	h, err := s.
		AddSyntheticMethod(method("hello", "String"), nil, descriptor.PathParam("name", "String")).
		AddSyntheticMethod(method("hello", "String"), nil, descriptor.PathParam("times", "int")).
		AddSyntheticMethod(method("remove", "void"), nil, descriptor.PathParam("type", "int")).
		AddSyntheticMethod(method("at", "Instant"), nil, descriptor.Param("when", "Instant")).
		AddSyntheticMethod(method("instance", "[]String"), nil).
		Materialize()
	require.NoError(t, err)
	return h
}

func TestData(t *testing.T) {
	data, err := Data(greeter(t), "api")
	require.NoError(t, err)

	assert.Equal(t, "GreeterApi", data.TypeName)
	assert.Equal(t, "com.example.GreeterApi", data.QualifiedName)
	assert.Equal(t, []string{"time"}, data.Imports)

	require.Len(t, data.Methods, 5)
	assert.Equal(t, MethodData{
		GoName:    "Hello",
		Signature: "hello(string)",
		Params:    []ParamData{{Name: "name", GoType: "string"}},
		Returns:   "string",
	}, data.Methods[0])
	assert.Equal(t, "Hello2", data.Methods[1].GoName)
	assert.Equal(t, []ParamData{{Name: "typeArg", GoType: "int"}}, data.Methods[2].Params)
	assert.Empty(t, data.Methods[2].Returns)
	assert.Equal(t, "time.Time", data.Methods[3].Returns)
	assert.Equal(t, "Instance2", data.Methods[4].GoName)
	assert.Equal(t, "[]string", data.Methods[4].Returns)
}

func TestDataFailures(t *testing.T) {
	_, err := Data(nil, "api")
	assert.Error(t, err)

	_, err = Data(greeter(t), "not-a-package")
	assert.ErrorContains(t, err, "invalid package name")
}

func TestRender(t *testing.T) {
	src, err := Render(greeter(t), "api")
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "greeterapi.go", src, parser.ParseComments)
	require.NoError(t, err)

	out := string(src)
	for _, want := range []string{
		"// Code generated by dynapi. DO NOT EDIT.",
		"package api",
		`"time"`,
		`const GreeterApiType = "com.example.GreeterApi"`,
		"func NewGreeterApi(inst *dynapi.Instance) *GreeterApi {",
		"func (x *GreeterApi) Hello(name string) (string, error) {",
		"func (x *GreeterApi) Remove(typeArg int) error {",
		`case "hello(int)":`,
		"return h.Hello2(dynapi.Arg[int](args, 0))",
		"return nil, h.Remove(dynapi.Arg[int](args, 0))",
		"func GreeterApiDispatcher(h GreeterApiHandler) dynapi.Dispatcher {",
	} {
		assert.Contains(t, out, want)
	}
}

func TestGoTypeNames(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeFor[string](), "string"},
		{reflect.TypeFor[any](), "any"},
		{reflect.TypeFor[[]map[string]*int](), "[]map[string]*int"},
		{reflect.TypeFor[[2]bool](), "[2]bool"},
		{reflect.TypeFor[dynapi.Mono](), "dynapi.Mono"},
		{reflect.TypeFor[dynapi.ServerRequest](), "dynapi.ServerRequest"},
		{reflect.TypeFor[hidden](), "any"},
		{reflect.TypeFor[[]time.Duration](), "[]time.Duration"},
		{nil, "any"},
	}
	g := &goTypes{imports: make(map[string]bool)}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.name(tt.typ))
	}
	assert.Equal(t, []string{"time"}, g.list())
}

func TestParamName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"name", "name"},
		{"type", "typeArg"},
		{"func", "funcArg"},
		{"err", "errArg"},
		{"x", "xArg"},
		{"", "arg2"},
		{"not-ident", "arg2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, paramName(tt.name, 2), tt.name)
	}
}
