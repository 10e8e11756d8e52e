// Package codegen renders a materialized type as static Go source: a
// struct forwarding to an instance, a handler interface and a switch-based
// dispatcher routing calls back to that interface.
package codegen

import (
	"bytes"
	"fmt"
	"go/token"
	"reflect"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/toyz/dynapi/internal/utils"
	"github.com/toyz/dynapi/pkg/dynapi"
)

const dynapiPkgPath = "github.com/toyz/dynapi/pkg/dynapi"

// FileData is the template input for one rendered type
type FileData struct {
	Package       string
	TypeName      string
	QualifiedName string
	Imports       []string
	Methods       []MethodData
}

// MethodData describes one forwarding method
type MethodData struct {
	GoName    string
	Signature string
	Params    []ParamData
	// Returns is the Go result type, empty for void methods
	Returns string
}

// ParamData is a parameter in Go syntax
type ParamData struct {
	Name   string
	GoType string
}

var funcs = template.FuncMap{
	"params": func(params []ParamData) string {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = p.Name + " " + p.GoType
		}
		return strings.Join(parts, ", ")
	},
	"names": func(params []ParamData) string {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = p.Name
		}
		return strings.Join(parts, ", ")
	},
	"args": func(params []ParamData) string {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = fmt.Sprintf("dynapi.Arg[%s](args, %d)", p.GoType, i)
		}
		return strings.Join(parts, ", ")
	},
	"results": func(m MethodData) string {
		if m.Returns == "" {
			return "error"
		}
		return "(" + m.Returns + ", error)"
	},
}

var fileTemplate = template.Must(template.New("file").Funcs(funcs).Parse(`// Code generated by dynapi. DO NOT EDIT.

package {{.Package}}

import (
	"fmt"
{{range .Imports}}	{{printf "%q" .}}
{{end}}
	"github.com/toyz/dynapi/pkg/dynapi"
)

// {{.TypeName}}Type is the materialized type name
const {{.TypeName}}Type = {{printf "%q" .QualifiedName}}

// {{.TypeName}} forwards calls to a {{.QualifiedName}} instance
type {{.TypeName}} struct {
	inst *dynapi.Instance
}

// New{{.TypeName}} wraps inst
func New{{.TypeName}}(inst *dynapi.Instance) *{{.TypeName}} {
	return &{{.TypeName}}{inst: inst}
}

// Instance returns the wrapped instance
func (x *{{.TypeName}}) Instance() *dynapi.Instance { return x.inst }

func (x *{{.TypeName}}) call(sig string, args ...any) (any, error) {
	m, _ := x.inst.Type().MethodBySignature(sig)
	return x.inst.Call(m, args)
}
{{range .Methods}}
// {{.GoName}} calls {{.Signature}}
func (x *{{$.TypeName}}) {{.GoName}}({{params .Params}}) {{results .}} {
{{- if .Returns}}
	out, err := x.call({{printf "%q" .Signature}}{{if .Params}}, {{names .Params}}{{end}})
	if err != nil {
		var zero {{.Returns}}
		return zero, err
	}
	return dynapi.As[{{.Returns}}](out), nil
{{- else}}
	_, err := x.call({{printf "%q" .Signature}}{{if .Params}}, {{names .Params}}{{end}})
	return err
{{- end}}
}
{{end}}
// {{.TypeName}}Handler answers calls made on {{.QualifiedName}}
type {{.TypeName}}Handler interface {
{{- range .Methods}}
	{{.GoName}}({{params .Params}}) {{results .}}
{{- end}}
}

// {{.TypeName}}Dispatcher routes dispatched calls to h by method signature
func {{.TypeName}}Dispatcher(h {{.TypeName}}Handler) dynapi.Dispatcher {
	return dynapi.DispatcherFunc(func(_ *dynapi.Instance, m *dynapi.Method, args []any) (any, error) {
		switch m.Signature() {
{{- range .Methods}}
		case {{printf "%q" .Signature}}:
{{- if .Returns}}
			return h.{{.GoName}}({{args .Params}})
{{- else}}
			return nil, h.{{.GoName}}({{args .Params}})
{{- end}}
{{- end}}
		default:
			return nil, fmt.Errorf("%s: no handler for %s", {{.TypeName}}Type, m.Signature())
		}
	})
}
`))

// Render emits a formatted Go file declaring h in package pkg
func Render(h *dynapi.TypeHandle, pkg string) ([]byte, error) {
	data, err := Data(h, pkg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, utils.WrapGenerateError(h.Name(), err)
	}
	src, err := utils.FormatGoCode(strings.ToLower(data.TypeName)+".go", buf.Bytes())
	if err != nil {
		return nil, utils.WrapGenerateError(h.Name(), err)
	}
	return src, nil
}

// Data builds the template input for h
func Data(h *dynapi.TypeHandle, pkg string) (*FileData, error) {
	if h == nil {
		return nil, fmt.Errorf("type handle cannot be nil")
	}
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name '%s'", pkg)
	}

	g := &goTypes{imports: make(map[string]bool)}
	data := &FileData{
		Package:       pkg,
		TypeName:      exported(dynapi.SimpleName(h.Name())),
		QualifiedName: h.Name(),
	}

	// Instance is taken by the accessor
	seen := map[string]int{"Instance": 1}
	for _, m := range h.Methods() {
		md := MethodData{GoName: exported(m.Name()), Signature: m.Signature()}
		if n := seen[md.GoName]; n > 0 {
			seen[md.GoName] = n + 1
			md.GoName = fmt.Sprintf("%s%d", md.GoName, n+1)
		} else {
			seen[md.GoName] = 1
		}
		if m.Returns() {
			md.Returns = g.name(m.ReturnType())
		}
		for i, p := range m.Params() {
			md.Params = append(md.Params, ParamData{Name: paramName(p.Name, i), GoType: g.name(p.Type)})
		}
		data.Methods = append(data.Methods, md)
	}
	data.Imports = g.list()
	return data, nil
}

type goTypes struct {
	imports map[string]bool
}

// name spells t in Go syntax. Unexported named types, and types from
// packages the file cannot import, become any.
func (g *goTypes) name(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	if t.Name() == "" {
		switch t.Kind() {
		case reflect.Slice:
			return "[]" + g.name(t.Elem())
		case reflect.Array:
			return fmt.Sprintf("[%d]%s", t.Len(), g.name(t.Elem()))
		case reflect.Pointer:
			return "*" + g.name(t.Elem())
		case reflect.Map:
			return "map[" + g.name(t.Key()) + "]" + g.name(t.Elem())
		case reflect.Interface:
			if t.NumMethod() == 0 {
				return "any"
			}
		}
		return t.String()
	}

	path := t.PkgPath()
	switch {
	case path == "":
		return t.Name()
	case path == dynapiPkgPath:
		return "dynapi." + t.Name()
	case !token.IsExported(t.Name()) || strings.Contains(path, "/internal"):
		return "any"
	}
	g.imports[path] = true
	return t.String()
}

func (g *goTypes) list() []string {
	var out []string
	for path := range g.imports {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func exported(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

var reservedParams = map[string]bool{"x": true, "out": true, "err": true, "zero": true, "dynapi": true, "fmt": true}

func paramName(name string, index int) string {
	switch {
	case token.IsKeyword(name) || reservedParams[name]:
		return name + "Arg"
	case !token.IsIdentifier(name):
		return fmt.Sprintf("arg%d", index)
	}
	return name
}
