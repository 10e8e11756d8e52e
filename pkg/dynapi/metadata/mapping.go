package metadata

import (
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

var verbKinds = map[descriptor.Verb]Kind{
	descriptor.GET:    GetMapping,
	descriptor.POST:   PostMapping,
	descriptor.PUT:    PutMapping,
	descriptor.DELETE: DeleteMapping,
	descriptor.PATCH:  PatchMapping,
}

// MappingKindFor picks the record kind for a verb list: one of the five
// single-verb kinds, or RequestMapping for zero or several verbs. Single
// verbs without a dedicated kind fall back to GetMapping.
func MappingKindFor(verbs []descriptor.Verb) Kind {
	if len(verbs) != 1 {
		return RequestMapping
	}
	if kind, ok := verbKinds[verbs[0]]; ok {
		return kind
	}
	return GetMapping
}

// Mapping builds the route mapping record for a mapping descriptor
func Mapping(m descriptor.Mapping) Record {
	kind := MappingKindFor(m.Verbs)
	b := Create(kind).
		StringIf("name", m.Name).
		Strings("value", m.Paths...)

	switch {
	case kind == RequestMapping && len(m.Verbs) > 0:
		b.Enums("method", verbNames(m.Verbs)...)
	case len(m.Verbs) == 1 && verbKinds[m.Verbs[0]] == "":
		// fallback kind: keep the real verb
		b.Enum("method", string(m.Verbs[0]))
	}

	return b.StringsIf("params", m.Params).
		StringsIf("headers", m.Headers).
		StringsIf("consumes", m.Consumes).
		StringsIf("produces", m.Produces).
		Build()
}

// TypeMapping builds the RequestMapping record placed on a type; it
// prefixes the paths of every method mapping
func TypeMapping(m descriptor.Mapping) Record {
	b := Create(RequestMapping).
		StringIf("name", m.Name).
		Strings("value", m.Paths...)
	if len(m.Verbs) > 0 {
		b.Enums("method", verbNames(m.Verbs)...)
	}
	return b.StringsIf("params", m.Params).
		StringsIf("headers", m.Headers).
		StringsIf("consumes", m.Consumes).
		StringsIf("produces", m.Produces).
		Build()
}

// SimpleMapping builds the single-verb record used by quick method
// definitions: one path, the verb and one produced content type
func SimpleMapping(path string, verb descriptor.Verb, contentType string) Record {
	b := Create(MappingKindFor([]descriptor.Verb{verb})).
		Strings("value", path).
		Enum("method", string(verb))
	if contentType != "" {
		b.Strings("produces", contentType)
	}
	return b.Build()
}

// MappingOf decodes a mapping record back into a descriptor
func MappingOf(r Record) (descriptor.Mapping, bool) {
	if !IsMapping(r.Kind()) {
		return descriptor.Mapping{}, false
	}
	m := descriptor.Mapping{
		Name:     r.GetString("name"),
		Paths:    r.GetStrings("value"),
		Params:   r.GetStrings("params"),
		Headers:  r.GetStrings("headers"),
		Consumes: r.GetStrings("consumes"),
		Produces: r.GetStrings("produces"),
	}
	if names := r.GetStrings("method"); len(names) > 0 {
		for _, n := range names {
			m.Verbs = append(m.Verbs, descriptor.Verb(n))
		}
		return m, true
	}
	for verb, kind := range verbKinds {
		if kind == r.Kind() {
			m.Verbs = []descriptor.Verb{verb}
		}
	}
	return m, true
}

// FindMapping returns the first mapping record of a set
func FindMapping(s *Set) (Record, bool) {
	for _, r := range s.All() {
		if IsMapping(r.Kind()) {
			return r, true
		}
	}
	return Record{}, false
}

func verbNames(verbs []descriptor.Verb) []string {
	names := make([]string, len(verbs))
	for i, v := range verbs {
		names[i] = string(v)
	}
	return names
}

// Binding builds the WebBound record; the json member is present only when
// the binding carries a payload
func Binding(b descriptor.Binding) Record {
	return Create(WebBound).
		String("uid", b.UID).
		StringIf("json", b.JSON).
		Build()
}

// BindingOf decodes a WebBound record
func BindingOf(r Record) (descriptor.Binding, bool) {
	if r.Kind() != WebBound {
		return descriptor.Binding{}, false
	}
	return descriptor.Binding{UID: r.GetString("uid"), JSON: r.GetString("json")}, true
}

func NewController(name string) Record {
	return Create(Controller).String("value", name).Build()
}

func NewRestController(name string) Record {
	return Create(RestController).String("value", name).Build()
}

func NewResponseBody() Record {
	return Create(ResponseBody).Build()
}

// NewAutowired marks a field for dependency injection
func NewAutowired(required bool) Record {
	return Create(Autowired).Bool("required", required).Build()
}

// NewQualifier names the candidate to inject
func NewQualifier(name string) Record {
	return Create(Qualifier).String("value", name).Build()
}

func NewConfiguration(name string) Record {
	return Create(Configuration).String("value", name).Build()
}

// NewBean describes a component factory entry
func NewBean(names []string, autowire, initMethod, destroyMethod string) Record {
	return Create(Bean).
		Strings("name", names...).
		Enum("autowire", autowire).
		String("initMethod", initMethod).
		String("destroyMethod", destroyMethod).
		Build()
}

func NewLazy(lazy bool) Record {
	return Create(Lazy).Bool("value", lazy).Build()
}

func NewScope(scopeName, proxyMode string) Record {
	return Create(Scope).String("scopeName", scopeName).Enum("proxyMode", proxyMode).Build()
}
