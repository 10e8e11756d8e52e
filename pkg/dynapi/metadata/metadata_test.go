package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

func TestBuilder_AllValueKinds(t *testing.T) {
	nested := Create(ApiResponse).Int("code", 200).Build()

	r := Create("Everything").
		String("s", "text").
		Strings("ss", "a", "b").
		Bool("b", true).
		Int("i", 7).
		Enum("e", "POST").
		Enums("es", "GET", "PUT").
		Type("t", "string").
		Record("r", nested).
		Records("rs", nested, nested).
		Build()

	assert.Equal(t, Kind("Everything"), r.Kind())
	assert.Len(t, r.Members(), 9)
	assert.Equal(t, "text", r.GetString("s"))
	assert.Equal(t, []string{"a", "b"}, r.GetStrings("ss"))
	assert.True(t, r.GetBool("b"))
	assert.Equal(t, 7, r.GetInt("i"))
	assert.Equal(t, "POST", r.GetString("e"))
	assert.Equal(t, []string{"GET", "PUT"}, r.GetStrings("es"))
	assert.Equal(t, "string", r.GetString("t"))

	got, ok := r.GetRecord("r")
	require.True(t, ok)
	assert.Equal(t, 200, got.GetInt("code"))
	assert.Len(t, r.GetRecords("rs"), 2)

	v, ok := r.Get("t")
	require.True(t, ok)
	assert.Equal(t, TypeValueKind, v.Kind())
}

func TestBuilder_Defaults(t *testing.T) {
	r := Create("Empty").Build()

	assert.Equal(t, "fallback", r.GetString("missing", "fallback"))
	assert.True(t, r.GetBool("missing", true))
	assert.Equal(t, 3, r.GetInt("missing", 3))
	assert.Nil(t, r.GetStrings("missing"))
	assert.Equal(t, "@Empty", r.String())
}

func TestBuilder_AddReplacesAndBuildIsolates(t *testing.T) {
	b := Create(Qualifier).String("value", "first")
	first := b.Build()
	b.String("value", "second")
	second := b.Build()

	assert.Equal(t, "first", first.GetString("value"))
	assert.Equal(t, "second", second.GetString("value"))
	assert.Len(t, second.Members(), 1)
}

func TestRecord_String(t *testing.T) {
	r := Create(PostMapping).Strings("value", "say/{word}").Enum("method", "POST").Bool("x", false).Build()
	assert.Equal(t, `@PostMapping(value={"say/{word}"}, method=POST, x=false)`, r.String())
}

func TestSet_AttachReplacesSameKind(t *testing.T) {
	var s Set
	s.Attach(NewQualifier("a"), NewAutowired(true))
	s.Attach(NewQualifier("b"))

	require.Equal(t, 2, s.Len())
	all := s.All()
	assert.Equal(t, Qualifier, all[0].Kind())
	assert.Equal(t, "b", all[0].GetString("value"))
	assert.Equal(t, Autowired, all[1].Kind())

	assert.True(t, s.Remove(Qualifier))
	assert.False(t, s.Remove(Qualifier))
	assert.False(t, s.Has(Qualifier))
}

type paramTarget struct {
	params []*Set
}

func (p *paramTarget) ParamAnnotations(index int) (*Set, error) {
	if index < 0 || index >= len(p.params) {
		return nil, assert.AnError
	}
	return p.params[index], nil
}

func TestMarkParameter(t *testing.T) {
	target := &paramTarget{params: []*Set{{}, {}}}

	require.NoError(t, MarkParameter(target, 1, NewParamName("text")))
	assert.Equal(t, 0, target.params[0].Len())
	assert.True(t, target.params[1].Has(ParamName))
	assert.Error(t, MarkParameter(target, 5, NewParamName("x")))
}

func TestMappingKindFor(t *testing.T) {
	tests := []struct {
		name  string
		verbs []descriptor.Verb
		want  Kind
	}{
		{"get", []descriptor.Verb{descriptor.GET}, GetMapping},
		{"post", []descriptor.Verb{descriptor.POST}, PostMapping},
		{"put", []descriptor.Verb{descriptor.PUT}, PutMapping},
		{"delete", []descriptor.Verb{descriptor.DELETE}, DeleteMapping},
		{"patch", []descriptor.Verb{descriptor.PATCH}, PatchMapping},
		{"head falls back", []descriptor.Verb{descriptor.HEAD}, GetMapping},
		{"several verbs", []descriptor.Verb{descriptor.POST, descriptor.GET}, RequestMapping},
		{"no verbs", nil, RequestMapping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MappingKindFor(tt.verbs))
		})
	}
}

func TestMapping_RoundTripsVerbs(t *testing.T) {
	multi := Mapping(descriptor.Mapping{
		Paths: []string{"say2/{word}", "say3/{word}"},
		Verbs: []descriptor.Verb{descriptor.POST, descriptor.GET},
	})
	assert.Equal(t, RequestMapping, multi.Kind())
	assert.Equal(t, []string{"POST", "GET"}, multi.GetStrings("method"))

	decoded, ok := MappingOf(multi)
	require.True(t, ok)
	assert.Equal(t, []string{"say2/{word}", "say3/{word}"}, decoded.Paths)
	assert.Equal(t, []descriptor.Verb{descriptor.POST, descriptor.GET}, decoded.Verbs)

	single := Mapping(descriptor.Mapping{Paths: []string{"x"}, Verbs: []descriptor.Verb{descriptor.DELETE}})
	assert.False(t, single.Has("method"))
	decoded, _ = MappingOf(single)
	assert.Equal(t, []descriptor.Verb{descriptor.DELETE}, decoded.Verbs)

	head := Mapping(descriptor.Mapping{Paths: []string{"x"}, Verbs: []descriptor.Verb{descriptor.HEAD}})
	assert.Equal(t, GetMapping, head.Kind())
	decoded, _ = MappingOf(head)
	assert.Equal(t, []descriptor.Verb{descriptor.HEAD}, decoded.Verbs)

	_, ok = MappingOf(NewResponseBody())
	assert.False(t, ok)
}

func TestSimpleMapping(t *testing.T) {
	r := SimpleMapping("say/{word}", descriptor.POST, "application/json")

	assert.Equal(t, PostMapping, r.Kind())
	assert.Equal(t, []string{"say/{word}"}, r.GetStrings("value"))
	assert.Equal(t, "POST", r.GetString("method"))
	assert.Equal(t, []string{"application/json"}, r.GetStrings("produces"))
}

func TestBinding(t *testing.T) {
	withoutJSON := Binding(descriptor.Binding{UID: "100212"})
	assert.Equal(t, "100212", withoutJSON.GetString("uid"))
	assert.False(t, withoutJSON.Has("json"))

	withJSON := Binding(descriptor.Binding{UID: "1", JSON: `{"a":1}`, Notes: "ignored"})
	b, ok := BindingOf(withJSON)
	require.True(t, ok)
	assert.Equal(t, descriptor.Binding{UID: "1", JSON: `{"a":1}`}, b)
}

func TestParamSource(t *testing.T) {
	tests := []struct {
		name        string
		param       descriptor.Parameter
		kind        Kind
		wantName    bool
		wantDefault string
	}{
		{"query with default", descriptor.Param("text", "string").WithDefault(" hi "), RequestParam, true, "hi"},
		{"path ignores default", descriptor.Parameter{Name: "word", Type: "string", Source: descriptor.SourcePath, Default: "x"}, PathVariable, true, ""},
		{"header", descriptor.Param("X-Id", "string").In(descriptor.SourceHeader), RequestHeader, true, ""},
		{"cookie", descriptor.Param("sid", "string").In(descriptor.SourceCookie).WithDefault("none"), CookieValue, true, "none"},
		{"matrix", descriptor.Param("m", "string").In(descriptor.SourceMatrix), MatrixVariable, true, ""},
		{"attribute", descriptor.Param("a", "string").In(descriptor.SourceAttribute), RequestAttribute, true, ""},
		{"part", descriptor.Param("file", "[]byte").In(descriptor.SourcePart), RequestPart, true, ""},
		{"body has no name", descriptor.Param("payload", "map[string]any").In(descriptor.SourceBody), RequestBody, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParamSource(tt.param)
			assert.Equal(t, tt.kind, r.Kind())
			assert.Equal(t, tt.wantName, r.Has("name"))
			assert.Equal(t, tt.wantDefault, r.GetString("defaultValue"))
		})
	}
}

func TestParameterOf(t *testing.T) {
	var s Set
	s.Attach(ParamRecords(descriptor.Param("page", "int").In(descriptor.SourceHeader).WithDefault("1"))...)

	p, ok := ParameterOf(&s)
	require.True(t, ok)
	assert.Equal(t, "page", p.Name)
	assert.Equal(t, descriptor.SourceHeader, p.Source)
	assert.Equal(t, "1", p.Default)
	assert.False(t, p.Required)

	_, ok = ParameterOf(&Set{})
	assert.False(t, ok)
}

func TestMethodDocs(t *testing.T) {
	t.Run("value-returning method", func(t *testing.T) {
		records := MethodDocs("sayHello", "greets", "string", []descriptor.Parameter{descriptor.Param("text", "string")})
		require.Len(t, records, 3)

		op := records[0]
		assert.Equal(t, ApiOperation, op.Kind())
		assert.Equal(t, "Method : sayHello", op.GetString("value"))
		assert.Equal(t, "greets", op.GetString("notes"))
		assert.Equal(t, "string", op.GetString("response"))

		params := records[1].GetRecords("value")
		require.Len(t, params, 1)
		assert.Equal(t, "text", params[0].GetString("name"))
		assert.Equal(t, "query", params[0].GetString("paramType"))

		responses := records[2].GetRecords("value")
		require.Len(t, responses, 1)
		assert.Equal(t, 0, responses[0].GetInt("code"))
		assert.Equal(t, "Invoke Success", responses[0].GetString("message"))
	})

	t.Run("void method without params", func(t *testing.T) {
		records := MethodDocs("ping", "", VoidType, nil)
		require.Len(t, records, 1)
		assert.Equal(t, VoidType, records[0].GetString("response"))
	})

	t.Run("empty return defaults to void", func(t *testing.T) {
		records := MethodDocs("ping", "", "", nil)
		assert.Equal(t, VoidType, records[0].GetString("response"))
	})
}
