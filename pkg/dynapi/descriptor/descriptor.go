// Package descriptor holds the plain data descriptors a caller uses to
// describe endpoint methods: route mappings, bindings, parameters and
// documentation entries.
package descriptor

import (
	"fmt"
	"strings"
)

// Verb is an HTTP request method
type Verb string

const (
	GET     Verb = "GET"
	HEAD    Verb = "HEAD"
	POST    Verb = "POST"
	PUT     Verb = "PUT"
	PATCH   Verb = "PATCH"
	DELETE  Verb = "DELETE"
	OPTIONS Verb = "OPTIONS"
	TRACE   Verb = "TRACE"
)

// Verbs lists every known verb in declaration order
var Verbs = []Verb{GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS, TRACE}

// ParseVerb converts a case-insensitive verb name
func ParseVerb(s string) (Verb, error) {
	v := Verb(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Verbs {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown HTTP verb: %s", s)
}

// Source is where a request parameter value is read from
type Source int

const (
	SourceParam Source = iota // query string or form value
	SourceCookie
	SourceMatrix
	SourcePath
	SourceAttribute
	SourceBody
	SourceHeader
	SourcePart
)

// String returns the string representation of the source
func (s Source) String() string {
	switch s {
	case SourceParam:
		return "param"
	case SourceCookie:
		return "cookie"
	case SourceMatrix:
		return "matrix"
	case SourcePath:
		return "path"
	case SourceAttribute:
		return "attribute"
	case SourceBody:
		return "body"
	case SourceHeader:
		return "header"
	case SourcePart:
		return "part"
	default:
		return "unknown"
	}
}

// ParseSource converts a source name such as "path" or "header"
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "param", "query":
		return SourceParam, nil
	case "cookie":
		return SourceCookie, nil
	case "matrix":
		return SourceMatrix, nil
	case "path":
		return SourcePath, nil
	case "attribute", "attr":
		return SourceAttribute, nil
	case "body":
		return SourceBody, nil
	case "header":
		return SourceHeader, nil
	case "part", "multipart":
		return SourcePart, nil
	default:
		return 0, fmt.Errorf("unknown parameter source: %s", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AcceptsDefault reports whether the source supports a default value
func (s Source) AcceptsDefault() bool {
	switch s {
	case SourceCookie, SourceMatrix, SourceHeader, SourceParam:
		return true
	default:
		return false
	}
}

// DocParamType maps the source to the documentation parameter type
func (s Source) DocParamType() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceHeader:
		return "header"
	case SourceBody:
		return "body"
	case SourcePart:
		return "form"
	case SourceCookie:
		return "cookie"
	default:
		return "query"
	}
}

// Mapping describes how a method or type is routed
type Mapping struct {
	Name     string   `json:"name,omitempty"`
	Paths    []string `json:"paths,omitempty"`
	Verbs    []Verb   `json:"verbs,omitempty" validate:"dive,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS TRACE"`
	Params   []string `json:"params,omitempty"`
	Headers  []string `json:"headers,omitempty"`
	Consumes []string `json:"consumes,omitempty"`
	Produces []string `json:"produces,omitempty"`
}

// Binding associates a method or type with an external identifier and payload
type Binding struct {
	UID   string `json:"uid" validate:"required"`
	JSON  string `json:"json,omitempty" validate:"omitempty,json"`
	Notes string `json:"notes,omitempty"`
}

// Parameter describes one method parameter
type Parameter struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Source      Source `json:"source"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Param is shorthand for a required query parameter
func Param(name, typeName string) Parameter {
	return Parameter{Name: name, Type: typeName, Source: SourceParam, Required: true}
}

// PathParam is shorthand for a path variable
func PathParam(name, typeName string) Parameter {
	return Parameter{Name: name, Type: typeName, Source: SourcePath, Required: true}
}

// In returns a copy of the parameter read from source
func (p Parameter) In(source Source) Parameter {
	p.Source = source
	return p
}

// WithDefault returns a copy of the parameter with a default value; a
// parameter with a default is optional
func (p Parameter) WithDefault(value string) Parameter {
	p.Default = value
	p.Required = false
	return p
}

// Method describes a full endpoint method in one value
type Method struct {
	Name         string  `json:"name" validate:"required"`
	Mapping      Mapping `json:"mapping"`
	ResponseBody bool    `json:"responseBody"`
	Returns      string  `json:"returns,omitempty"`
}

// NewMethod builds a method with one path and the given verbs
func NewMethod(name, path string, verbs ...Verb) Method {
	m := Method{Name: name, Mapping: Mapping{Verbs: verbs}}
	if path != "" {
		m.Mapping.Paths = []string{path}
	}
	return m
}

// Operation is the documentation summary of a method
type Operation struct {
	Summary  string `json:"summary"`
	Notes    string `json:"notes,omitempty"`
	Response string `json:"response,omitempty"`
}

// ImplicitParam is the documentation entry for one parameter
type ImplicitParam struct {
	Name            string `json:"name"`
	Value           string `json:"value,omitempty"`
	DefaultValue    string `json:"defaultValue,omitempty"`
	AllowableValues string `json:"allowableValues,omitempty"`
	Required        bool   `json:"required"`
	Access          string `json:"access,omitempty"`
	AllowMultiple   bool   `json:"allowMultiple"`
	DataType        string `json:"dataType,omitempty"`
	ParamType       string `json:"paramType,omitempty"`
	Example         string `json:"example,omitempty"`
	Format          string `json:"format,omitempty"`
	ReadOnly        bool   `json:"readOnly"`
}

// DocParam derives the documentation entry for a parameter
func DocParam(p Parameter) ImplicitParam {
	return ImplicitParam{
		Name:          p.Name,
		Value:         p.Description,
		DefaultValue:  p.Default,
		Required:      p.Required,
		DataType:      p.Type,
		ParamType:     p.Source.DocParamType(),
		AllowMultiple: strings.HasPrefix(p.Type, "[]"),
	}
}

// Response is the documentation entry for one response code
type Response struct {
	Code              int    `json:"code"`
	Message           string `json:"message"`
	Response          string `json:"response,omitempty"`
	Reference         string `json:"reference,omitempty"`
	ResponseContainer string `json:"responseContainer,omitempty"`
}
