package dynapi

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// Visibility of a declared field
type Visibility int

const (
	Private Visibility = iota
	Protected
	Public
)

// String returns the declaration keyword for the visibility
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "private"
	}
}

// MethodState tracks how far a method has been assembled
type MethodState int

const (
	Declared MethodState = iota
	BodyAssigned
	TrapAssigned
	MetadataAttached
	Ready
)

// String returns the string representation of the state
func (s MethodState) String() string {
	switch s {
	case Declared:
		return "declared"
	case BodyAssigned:
		return "body-assigned"
	case TrapAssigned:
		return "trap-assigned"
	case MetadataAttached:
		return "metadata-attached"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Definition is the mutable description of a type under construction. It
// is owned by one Session and evicted from its Pool when materialized.
type Definition struct {
	name       string
	profile    *Profile
	base       *BaseType
	fields     []*FieldDef
	methods    []*MethodDef
	records    metadata.Set
	dispatcher bool // a constructor taking a dispatcher is available
	docs       bool
}

// Name returns the fully-qualified type name
func (d *Definition) Name() string { return d.name }

// Profile returns the profile the definition was opened with
func (d *Definition) Profile() ProfileName { return d.profile.Name }

// Base returns the base type
func (d *Definition) Base() *BaseType { return d.base }

// Annotations returns the type-level records
func (d *Definition) Annotations() *metadata.Set { return &d.records }

// DocsEnabled reports whether methods added now receive documentation records
func (d *Definition) DocsEnabled() bool { return d.docs }

// HasDispatcherConstructor reports whether the type will be constructible
// with a dispatcher
func (d *Definition) HasDispatcherConstructor() bool { return d.dispatcher }

// Fields returns the fields in declaration order, inherited fields first
func (d *Definition) Fields() []*FieldDef {
	return append([]*FieldDef{}, d.fields...)
}

// Methods returns the methods in declaration order
func (d *Definition) Methods() []*MethodDef {
	return append([]*MethodDef{}, d.methods...)
}

// Field finds a field by name
func (d *Definition) Field(name string) (*FieldDef, error) {
	if f := d.field(name); f != nil {
		return f, nil
	}
	return nil, errors.NewFieldNotFoundError(d.name, name)
}

// Method finds a method by name and parameter types
func (d *Definition) Method(name string, paramTypes ...reflect.Type) (*MethodDef, error) {
	sig := signature(name, paramTypes)
	if m := d.method(sig); m != nil {
		return m, nil
	}
	return nil, errors.NewMethodNotFoundError(d.name, sig)
}

// MethodsNamed returns every overload of name
func (d *Definition) MethodsNamed(name string) []*MethodDef {
	var out []*MethodDef
	for _, m := range d.methods {
		if m.name == name {
			out = append(out, m)
		}
	}
	return out
}

func (d *Definition) field(name string) *FieldDef {
	for _, f := range d.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (d *Definition) method(sig string) *MethodDef {
	for _, m := range d.methods {
		if m.Signature() == sig {
			return m
		}
	}
	return nil
}

// removeField drops a declared field; inherited fields stay
func (d *Definition) removeField(name string) bool {
	for i, f := range d.fields {
		if f.name == name && !f.inherited {
			d.fields = append(d.fields[:i], d.fields[i+1:]...)
			return true
		}
	}
	return false
}

func (d *Definition) removeMethod(sig string) bool {
	for i, m := range d.methods {
		if m.Signature() == sig {
			d.methods = append(d.methods[:i], d.methods[i+1:]...)
			return true
		}
	}
	return false
}

// FieldDef is a field of a definition
type FieldDef struct {
	name       string
	typeName   string
	typ        reflect.Type
	visibility Visibility
	initial    reflect.Value
	inherited  bool
	records    metadata.Set
}

func (f *FieldDef) Name() string               { return f.name }
func (f *FieldDef) TypeName() string           { return f.typeName }
func (f *FieldDef) Type() reflect.Type         { return f.typ }
func (f *FieldDef) Visibility() Visibility     { return f.visibility }
func (f *FieldDef) Inherited() bool            { return f.inherited }
func (f *FieldDef) Annotations() *metadata.Set { return &f.records }

// Initial returns the initializer value, if any
func (f *FieldDef) Initial() (any, bool) {
	if !f.initial.IsValid() {
		return nil, false
	}
	return f.initial.Interface(), true
}

// ParamDef is one parameter of a method definition
type ParamDef struct {
	Name     string
	TypeName string
	Type     reflect.Type
	records  metadata.Set
}

// Annotations returns the parameter records
func (p *ParamDef) Annotations() *metadata.Set { return &p.records }

// MethodDef is a method of a definition
type MethodDef struct {
	name       string
	params     []*ParamDef
	returnName string
	returns    reflect.Type
	body       Body
	state      MethodState
	records    metadata.Set
	descriptor *descriptor.Method
	source     string
}

func (m *MethodDef) Name() string               { return m.name }
func (m *MethodDef) ReturnTypeName() string     { return m.returnName }
func (m *MethodDef) ReturnType() reflect.Type   { return m.returns }
func (m *MethodDef) State() MethodState         { return m.state }
func (m *MethodDef) Annotations() *metadata.Set { return &m.records }

// Params returns the parameters in order
func (m *MethodDef) Params() []*ParamDef {
	return append([]*ParamDef{}, m.params...)
}

// ParamTypes returns the parameter types in order
func (m *MethodDef) ParamTypes() []reflect.Type {
	types := make([]reflect.Type, len(m.params))
	for i, p := range m.params {
		types[i] = p.Type
	}
	return types
}

// Signature is the name plus the canonical parameter type list
func (m *MethodDef) Signature() string {
	return signature(m.name, m.ParamTypes())
}

// Descriptor returns the method descriptor a synthetic method was built from
func (m *MethodDef) Descriptor() (descriptor.Method, bool) {
	if m.descriptor == nil {
		return descriptor.Method{}, false
	}
	return *m.descriptor, true
}

// Source returns the declaration text of a compiled method
func (m *MethodDef) Source() string { return m.source }

// ParamAnnotations returns the record set of the parameter at index
func (m *MethodDef) ParamAnnotations(index int) (*metadata.Set, error) {
	if index < 0 || index >= len(m.params) {
		return nil, fmt.Errorf("method %s has no parameter %d", m.Signature(), index)
	}
	return &m.params[index].records, nil
}

// advance moves the method to the next state; states cannot be skipped
func (m *MethodDef) advance(to MethodState) error {
	if to != m.state+1 {
		return fmt.Errorf("method %s: cannot move from %s to %s", m.Signature(), m.state, to)
	}
	m.state = to
	return nil
}

func signature(name string, types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = TypeName(t)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(names, ", "))
}

// SimpleName returns the last segment of a qualified type name in lower
// camel case, e.g. "com.example.HelloApi" becomes "helloApi"
func SimpleName(typeName string) string {
	name := typeName
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func simpleName(typeName string) string { return SimpleName(typeName) }
