package dynapi

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/toyz/dynapi/internal/convert"
	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// TypeHandle is a materialized type. It is immutable and safe for
// concurrent use; instances are created with New or NewWithDispatcher.
type TypeHandle struct {
	name            string
	profile         ProfileName
	base            string
	fields          []*Field
	methods         []*Method
	records         *metadata.Set
	dispatcherField string
	dispatcherCtor  bool
}

// Name returns the fully-qualified type name
func (h *TypeHandle) Name() string { return h.name }

// Profile returns the profile the type was defined with
func (h *TypeHandle) Profile() ProfileName { return h.profile }

// Base returns the base type name
func (h *TypeHandle) Base() string { return h.base }

// Annotations returns the type-level records
func (h *TypeHandle) Annotations() *metadata.Set { return h.records }

// Record returns the type-level record of a kind
func (h *TypeHandle) Record(kind metadata.Kind) (metadata.Record, bool) {
	return h.records.Get(kind)
}

// DispatcherField is the field synthesized bodies read, or "" when the
// base has none
func (h *TypeHandle) DispatcherField() string { return h.dispatcherField }

// HasDispatcherConstructor reports whether NewWithDispatcher is available
func (h *TypeHandle) HasDispatcherConstructor() bool { return h.dispatcherCtor }

// Fields returns the fields in declaration order
func (h *TypeHandle) Fields() []*Field {
	return append([]*Field{}, h.fields...)
}

// Field finds a field by name
func (h *TypeHandle) Field(name string) (*Field, error) {
	for _, f := range h.fields {
		if f.name == name {
			return f, nil
		}
	}
	return nil, errors.NewFieldNotFoundError(h.name, name)
}

// Methods returns the methods in declaration order
func (h *TypeHandle) Methods() []*Method {
	return append([]*Method{}, h.methods...)
}

// LookupMethod finds a method by name and exact parameter types
func (h *TypeHandle) LookupMethod(name string, paramTypes ...reflect.Type) (*Method, error) {
	sig := signature(name, paramTypes)
	for _, m := range h.methods {
		if m.signature == sig {
			return m, nil
		}
	}
	return nil, errors.NewMethodNotFoundError(h.name, sig)
}

// MethodByID finds a method by its stable id
func (h *TypeHandle) MethodByID(id uuid.UUID) (*Method, bool) {
	for _, m := range h.methods {
		if m.id == id {
			return m, true
		}
	}
	return nil, false
}

// MethodBySignature finds a method by its canonical signature, e.g. "hello(string)"
func (h *TypeHandle) MethodBySignature(sig string) (*Method, bool) {
	for _, m := range h.methods {
		if m.signature == sig {
			return m, true
		}
	}
	return nil, false
}

// MethodsNamed returns every overload of name in declaration order
func (h *TypeHandle) MethodsNamed(name string) []*Method {
	var out []*Method
	for _, m := range h.methods {
		if m.name == name {
			out = append(out, m)
		}
	}
	return out
}

// New creates an instance with field initializers applied and no dispatcher
func (h *TypeHandle) New() *Instance {
	inst := &Instance{
		id:     uuid.New(),
		handle: h,
		fields: make(map[string]reflect.Value, len(h.fields)),
	}
	for _, f := range h.fields {
		v := reflect.New(f.typ).Elem()
		if f.initial.IsValid() {
			v.Set(f.initial)
		}
		inst.fields[f.name] = v
	}
	return inst
}

// NewWithDispatcher creates an instance whose synthesized methods forward to d
func (h *TypeHandle) NewWithDispatcher(d Dispatcher) (*Instance, error) {
	if !h.dispatcherCtor || h.dispatcherField == "" {
		return nil, errors.NewMaterializationError(h.name, "type has no dispatcher constructor")
	}
	inst := h.New()
	if err := inst.SetField(h.dispatcherField, d); err != nil {
		return nil, err
	}
	return inst, nil
}

// Field is a field of a materialized type
type Field struct {
	name       string
	typeName   string
	typ        reflect.Type
	visibility Visibility
	initial    reflect.Value
	inherited  bool
	records    *metadata.Set
}

func (f *Field) Name() string               { return f.name }
func (f *Field) TypeName() string           { return f.typeName }
func (f *Field) Type() reflect.Type         { return f.typ }
func (f *Field) Visibility() Visibility     { return f.visibility }
func (f *Field) Inherited() bool            { return f.inherited }
func (f *Field) Annotations() *metadata.Set { return f.records }

// Param is a parameter of a materialized method
type Param struct {
	Name     string
	TypeName string
	Type     reflect.Type
	records  *metadata.Set
}

// Annotations returns the parameter records
func (p Param) Annotations() *metadata.Set { return p.records }

// Method is a method of a materialized type. It is what a Dispatcher
// receives to identify the call.
type Method struct {
	id         uuid.UUID
	owner      *TypeHandle
	name       string
	signature  string
	params     []Param
	returnName string
	returns    reflect.Type
	records    *metadata.Set
	body       Body
}

// ID is stable for a given type name and signature
func (m *Method) ID() uuid.UUID { return m.id }

func (m *Method) Name() string               { return m.name }
func (m *Method) Signature() string          { return m.signature }
func (m *Method) Owner() *TypeHandle         { return m.owner }
func (m *Method) ReturnType() reflect.Type   { return m.returns }
func (m *Method) ReturnTypeName() string     { return m.returnName }
func (m *Method) Annotations() *metadata.Set { return m.records }

// Returns reports whether the method produces a value
func (m *Method) Returns() bool { return m.returns != VoidType }

// Params returns the parameters in order
func (m *Method) Params() []Param {
	return append([]Param{}, m.params...)
}

// ParamTypes returns the parameter types in order
func (m *Method) ParamTypes() []reflect.Type {
	types := make([]reflect.Type, len(m.params))
	for i, p := range m.params {
		types[i] = p.Type
	}
	return types
}

// ParamAnnotations returns the records of parameter index
func (m *Method) ParamAnnotations(index int) (*metadata.Set, error) {
	if index < 0 || index >= len(m.params) {
		return nil, fmt.Errorf("method %s has no parameter %d", m.signature, index)
	}
	return m.params[index].records, nil
}

// accepts reports whether args fit the parameters without conversion
func (m *Method) accepts(args []any) bool {
	if len(args) != len(m.params) {
		return false
	}
	for i, a := range args {
		t := m.params[i].Type
		if a == nil {
			if !convert.Nillable(t) {
				return false
			}
			continue
		}
		if !reflect.TypeOf(a).AssignableTo(t) {
			return false
		}
	}
	return true
}

func methodID(typeName, sig string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(typeName+"#"+sig))
}

// Instance is one object of a materialized type
type Instance struct {
	id     uuid.UUID
	handle *TypeHandle

	mu     sync.RWMutex
	fields map[string]reflect.Value
}

// ID returns the instance id
func (i *Instance) ID() uuid.UUID { return i.id }

// Type returns the handle the instance was created from
func (i *Instance) Type() *TypeHandle { return i.handle }

// Field returns the current value of a field
func (i *Instance) Field(name string) (any, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.fields[name]
	if !ok {
		return nil, errors.NewFieldNotFoundError(i.handle.name, name)
	}
	return v.Interface(), nil
}

// SetField assigns a field, converting numeric values to the field type
func (i *Instance) SetField(name string, value any) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	cur, ok := i.fields[name]
	if !ok {
		return errors.NewFieldNotFoundError(i.handle.name, name)
	}
	v, err := convert.Assign(value, cur.Type())
	if err != nil {
		return fmt.Errorf("field %s.%s: %w", i.handle.name, name, err)
	}
	cur.Set(v)
	return nil
}

// Dispatcher returns the dispatcher the instance forwards to, if any
func (i *Instance) Dispatcher() Dispatcher {
	if i.handle.dispatcherField == "" {
		return nil
	}
	v, err := i.Field(i.handle.dispatcherField)
	if err != nil {
		return nil
	}
	d, _ := v.(Dispatcher)
	return d
}

// Invoke calls the overload of name that accepts args. An overload whose
// parameter types match exactly wins; otherwise the first overload the
// arguments can be converted to is used.
func (i *Instance) Invoke(name string, args ...any) (any, error) {
	overloads := i.handle.MethodsNamed(name)
	for _, m := range overloads {
		if m.accepts(args) {
			return i.Call(m, args)
		}
	}
	for _, m := range overloads {
		if len(m.params) != len(args) {
			continue
		}
		if coerced, err := coerceArgs(m, args); err == nil {
			return m.body(i, coerced)
		}
	}

	types := make([]reflect.Type, len(args))
	for n, a := range args {
		types[n] = reflect.TypeOf(a)
	}
	return nil, errors.NewMethodNotFoundError(i.handle.name, signature(name, types))
}

// Call invokes m with args in declaration order
func (i *Instance) Call(m *Method, args []any) (any, error) {
	if m == nil || m.owner != i.handle {
		return nil, errors.NewMethodNotFoundError(i.handle.name, fmt.Sprint(m))
	}
	coerced, err := coerceArgs(m, args)
	if err != nil {
		return nil, err
	}
	return m.body(i, coerced)
}

func coerceArgs(m *Method, args []any) ([]any, error) {
	if len(args) != len(m.params) {
		return nil, errors.NewDispatchError(m.owner.name, m.signature,
			fmt.Sprintf("expected %d arguments, got %d", len(m.params), len(args)))
	}
	out := make([]any, len(args))
	for n, a := range args {
		v, err := convert.Assign(a, m.params[n].Type)
		if err != nil {
			return nil, errors.NewDispatchError(m.owner.name, m.signature,
				fmt.Sprintf("argument %d (%s)", n, m.params[n].Name)).WithCause(err)
		}
		out[n] = v.Interface()
	}
	return out, nil
}

// String implements fmt.Stringer
func (m *Method) String() string {
	if m == nil {
		return "<nil>"
	}
	return m.signature
}
