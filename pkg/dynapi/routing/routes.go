// Package routing reads the route metadata of a materialized type and
// turns HTTP requests into method arguments. It is the reference consumer
// of the records the session attaches; any router can be built on it.
package routing

import (
	"fmt"
	"reflect"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// Route is one routed method. Paths are already joined with the type-level
// prefix. An empty Verbs list matches every verb.
type Route struct {
	Verbs    []descriptor.Verb
	Paths    []Path
	Method   *dynapi.Method
	Binding  *descriptor.Binding
	Params   []Param
	Produces []string
	Consumes []string
}

// Param is a method parameter together with where its value comes from
type Param struct {
	descriptor.Parameter
	Type reflect.Type
}

// Routes returns a route for every method of h that carries a mapping
// record, in declaration order. Methods without one (accessors, compiled
// methods) are skipped.
func Routes(h *dynapi.TypeHandle) ([]Route, error) {
	var prefix descriptor.Mapping
	if r, ok := h.Record(metadata.RequestMapping); ok {
		prefix, _ = metadata.MappingOf(r)
	}
	var typeBinding *descriptor.Binding
	if r, ok := h.Record(metadata.WebBound); ok {
		b, _ := metadata.BindingOf(r)
		typeBinding = &b
	}

	var routes []Route
	for _, m := range h.Methods() {
		record, ok := metadata.FindMapping(m.Annotations())
		if !ok {
			continue
		}
		mapping, _ := metadata.MappingOf(record)

		route := Route{
			Verbs:    mapping.Verbs,
			Paths:    joinPaths(prefix.Paths, mapping.Paths),
			Method:   m,
			Binding:  typeBinding,
			Produces: firstNonEmpty(mapping.Produces, prefix.Produces),
			Consumes: firstNonEmpty(mapping.Consumes, prefix.Consumes),
		}
		if len(route.Verbs) == 0 {
			route.Verbs = prefix.Verbs
		}
		if r, ok := m.Annotations().Get(metadata.WebBound); ok {
			b, _ := metadata.BindingOf(r)
			route.Binding = &b
		}

		params, err := paramsOf(m)
		if err != nil {
			return nil, err
		}
		route.Params = params
		routes = append(routes, route)
	}
	return routes, nil
}

func paramsOf(m *dynapi.Method) ([]Param, error) {
	declared := m.Params()
	params := make([]Param, len(declared))
	for i, p := range declared {
		set, err := m.ParamAnnotations(i)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", m.Signature(), err)
		}
		d, ok := metadata.ParameterOf(set)
		if !ok {
			d = descriptor.Param(p.Name, p.TypeName)
		}
		if d.Name == "" {
			d.Name = p.Name
		}
		d.Type = p.TypeName
		params[i] = Param{Parameter: d, Type: p.Type}
	}
	return params, nil
}

func joinPaths(prefixes, paths []string) []Path {
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}
	if len(paths) == 0 {
		paths = []string{""}
	}
	out := make([]Path, 0, len(prefixes)*len(paths))
	for _, prefix := range prefixes {
		for _, path := range paths {
			out = append(out, Path(Join(prefix, path)))
		}
	}
	return out
}

func firstNonEmpty(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

// Matches reports whether the route answers verb
func (r Route) Matches(verb descriptor.Verb) bool {
	if len(r.Verbs) == 0 {
		return true
	}
	for _, v := range r.Verbs {
		if v == verb {
			return true
		}
	}
	return false
}

// String renders the route as "GET,POST /a|/b -> sig"
func (r Route) String() string {
	verbs := "*"
	if len(r.Verbs) > 0 {
		verbs = ""
		for i, v := range r.Verbs {
			if i > 0 {
				verbs += ","
			}
			verbs += string(v)
		}
	}
	paths := ""
	for i, p := range r.Paths {
		if i > 0 {
			paths += "|"
		}
		paths += string(p)
	}
	return fmt.Sprintf("%s %s -> %s", verbs, paths, r.Method)
}
