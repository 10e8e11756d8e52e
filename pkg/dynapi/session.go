package dynapi

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/internal/convert"
	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// Session edits one Definition. It holds the definition's name lease from
// Open until Materialize, Discard or Release. A Session is not safe for
// concurrent use.
//
// Mutators return the session so calls can be chained. The first failure
// is kept and reported by Err and Materialize; mutators called after it do
// nothing.
type Session struct {
	pool   *Pool
	def    *Definition
	logger *zap.Logger
	err      error
	done     bool
	released bool
}

// Injection requests Autowired (and optionally Qualifier) records on a field
type Injection struct {
	Required  bool
	Qualifier string
}

// Autowire builds an Injection
func Autowire(required bool, qualifier string) Injection {
	return Injection{Required: required, Qualifier: qualifier}
}

func (in Injection) records() []metadata.Record {
	records := []metadata.Record{metadata.NewAutowired(in.Required)}
	if in.Qualifier != "" {
		records = append(records, metadata.NewQualifier(in.Qualifier))
	}
	return records
}

// Name returns the name of the definition being edited
func (s *Session) Name() string { return s.def.name }

// Err returns the first error recorded by a mutator
func (s *Session) Err() error { return s.err }

// Build returns the definition as it currently stands
func (s *Session) Build() *Definition { return s.def }

// ready reports whether a mutator may run, recording AlreadyMaterialized
// when the session is finished
func (s *Session) ready() bool {
	if s.done {
		if s.err == nil {
			s.err = s.spent()
		}
		return false
	}
	return s.err == nil
}

func (s *Session) fail(err error) *Session {
	if s.err == nil {
		s.err = err
		s.logger.Debug("session operation failed", zap.Error(err))
	}
	return s
}

// AddField declares a field of the named type. An Injection marks the
// field for autowiring.
func (s *Session) AddField(typeName, name string, injection ...Injection) *Session {
	if !s.ready() {
		return s
	}
	t, err := s.pool.resolver.Resolve(typeName)
	if err != nil {
		return s.fail(err)
	}
	f := &FieldDef{name: name, typeName: typeName, typ: t, visibility: Private}
	for _, in := range injection {
		f.records.Attach(in.records()...)
	}
	return s.addField(f)
}

// AddFieldValue declares a public field initialized from its string form
func (s *Session) AddFieldValue(typeName, name, value string) *Session {
	if !s.ready() {
		return s
	}
	t, err := s.pool.resolver.Resolve(typeName)
	if err != nil {
		return s.fail(err)
	}
	v, err := convert.FromString(value, t)
	if err != nil {
		return s.fail(errors.NewCompilationError(fmt.Sprintf("%s %s = %q", typeName, name, value), err))
	}
	return s.addField(&FieldDef{name: name, typeName: typeName, typ: t, visibility: Public, initial: v})
}

// AddFieldFromSource compiles a field declaration such as "public int k = 3;"
func (s *Session) AddFieldFromSource(src string) *Session {
	if !s.ready() {
		return s
	}
	f, err := s.compileField(src)
	if err != nil {
		return s.fail(err)
	}
	return s.addField(f)
}

func (s *Session) addField(f *FieldDef) *Session {
	if f.name == "" {
		return s.fail(errors.NewInvalidDescriptorError("field", fmt.Errorf("field name cannot be empty")))
	}
	if f.typ == VoidType {
		return s.fail(errors.NewTypeResolutionError(f.typeName, fmt.Errorf("field %s cannot be void", f.name)))
	}
	if s.def.field(f.name) != nil {
		return s.fail(errors.NewDuplicateFieldError(s.def.name, f.name))
	}
	s.def.fields = append(s.def.fields, f)
	s.logger.Debug("field added", zap.String("field", f.name), zap.String("fieldType", f.typeName))
	return s
}

// InjectDispatcher marks the inherited dispatcher field for autowiring
func (s *Session) InjectDispatcher(required bool, qualifier string) *Session {
	if !s.ready() {
		return s
	}
	field := s.def.base.DispatcherField
	if field == "" {
		return s.fail(errors.NewFieldNotFoundError(s.def.name, DispatcherFieldName).
			WithContext("base", s.def.base.Name))
	}
	f, err := s.def.Field(field)
	if err != nil {
		return s.fail(err)
	}
	f.records.Attach(Autowire(required, qualifier).records()...)
	return s
}

// RemoveField drops a field. Removing an absent field does nothing.
func (s *Session) RemoveField(name string) *Session {
	if !s.ready() {
		return s
	}
	if s.def.removeField(name) {
		s.logger.Debug("field removed", zap.String("field", name))
	}
	return s
}

// AddMethodFromSource compiles a method declaration. Compiled methods run
// their own body instead of forwarding to the dispatcher.
func (s *Session) AddMethodFromSource(src string) *Session {
	if !s.ready() {
		return s
	}
	m, err := s.compileMethod(src)
	if err != nil {
		return s.fail(err)
	}
	if s.def.method(m.Signature()) != nil {
		return s.fail(errors.NewDuplicateMethodError(s.def.name, m.Signature()))
	}
	sig := m.Signature()
	m.body = trap(s.logger, s.def.name, sig, m.body)
	for _, step := range []MethodState{BodyAssigned, TrapAssigned, MetadataAttached, Ready} {
		if err := m.advance(step); err != nil {
			return s.fail(errors.NewMaterializationError(s.def.name, err.Error()))
		}
	}
	s.def.methods = append(s.def.methods, m)
	s.logger.Debug("method compiled", zap.String("method", sig))
	return s
}

// AddSyntheticMethod declares a route-mapped method whose body forwards
// to the instance's dispatcher. Documentation records are attached when
// docs are enabled at the time of the call.
func (s *Session) AddSyntheticMethod(m descriptor.Method, binding *descriptor.Binding, params ...descriptor.Parameter) *Session {
	if !s.ready() {
		return s
	}
	if err := m.Validate(); err != nil {
		return s.fail(errors.NewInvalidDescriptorError("method", err))
	}
	var records []metadata.Record
	if binding != nil {
		if err := binding.Validate(); err != nil {
			return s.fail(errors.NewInvalidDescriptorError("binding", err))
		}
		records = append(records, metadata.Binding(*binding))
	}
	records = append(records, metadata.Mapping(m.Mapping))
	if m.ResponseBody {
		records = append(records, metadata.NewResponseBody())
	}
	return s.synthesize(m, records, binding, params, false)
}

// AddSimpleMethod declares a single-verb method returning any whose
// mapping produces contentType
func (s *Session) AddSimpleMethod(name, path string, verb descriptor.Verb, contentType string, binding *descriptor.Binding, params ...descriptor.Parameter) *Session {
	if !s.ready() {
		return s
	}
	m := descriptor.NewMethod(name, path, verb)
	if contentType != "" {
		m.Mapping.Produces = []string{contentType}
	}
	if err := m.Validate(); err != nil {
		return s.fail(errors.NewInvalidDescriptorError("method", err))
	}
	var records []metadata.Record
	if binding != nil {
		if err := binding.Validate(); err != nil {
			return s.fail(errors.NewInvalidDescriptorError("binding", err))
		}
		records = append(records, metadata.Binding(*binding))
	}
	records = append(records, metadata.SimpleMapping(path, verb, contentType))
	return s.synthesize(m, records, binding, params, false)
}

// synthesize runs a new method through every state before appending it, so
// a failure leaves the definition untouched. Accessors get neither
// parameter nor documentation records.
func (s *Session) synthesize(desc descriptor.Method, records []metadata.Record, binding *descriptor.Binding, params []descriptor.Parameter, accessor bool) *Session {
	for _, p := range params {
		if err := p.Validate(); err != nil {
			return s.fail(errors.NewInvalidDescriptorError("parameter", err))
		}
	}

	returnName := desc.Returns
	if returnName == "" {
		returnName = "any"
	}
	returns, err := s.pool.resolver.Resolve(returnName)
	if err != nil {
		return s.fail(err)
	}

	m := &MethodDef{
		name:       desc.Name,
		returnName: returnName,
		returns:    returns,
		descriptor: &desc,
	}
	for _, p := range params {
		t, err := s.pool.resolver.Resolve(p.Type)
		if err != nil {
			return s.fail(err)
		}
		if t == VoidType {
			return s.fail(errors.NewInvalidDescriptorError("parameter",
				fmt.Errorf("parameter %s cannot be void", p.Name)))
		}
		m.params = append(m.params, &ParamDef{Name: p.Name, TypeName: p.Type, Type: t})
	}

	sig := m.Signature()
	if s.def.method(sig) != nil {
		return s.fail(errors.NewDuplicateMethodError(s.def.name, sig))
	}

	m.body = forwardingBody(s.def.name, s.def.base.DispatcherField, m)
	if err := m.advance(BodyAssigned); err != nil {
		return s.fail(errors.NewMaterializationError(s.def.name, err.Error()))
	}

	m.body = trap(s.logger, s.def.name, sig, m.body)
	if err := m.advance(TrapAssigned); err != nil {
		return s.fail(errors.NewMaterializationError(s.def.name, err.Error()))
	}

	metadata.Mark(m, records...)
	if !accessor {
		for i, p := range params {
			if err := metadata.MarkParameter(m, i, metadata.ParamRecords(p)...); err != nil {
				return s.fail(errors.NewInvalidDescriptorError("parameter", err))
			}
		}
	}
	if s.def.docs && !accessor {
		notes := ""
		if binding != nil {
			notes = binding.Notes
		}
		metadata.Mark(m, metadata.MethodDocs(desc.Name, notes, returnName, params)...)
	}
	if err := m.advance(MetadataAttached); err != nil {
		return s.fail(errors.NewMaterializationError(s.def.name, err.Error()))
	}

	if err := m.advance(Ready); err != nil {
		return s.fail(errors.NewMaterializationError(s.def.name, err.Error()))
	}
	s.def.methods = append(s.def.methods, m)
	s.logger.Debug("method synthesized", zap.String("method", sig), zap.Int("records", m.records.Len()))
	return s
}

// RemoveMethod drops the method with the given name and parameter type
// names. Removing an absent method does nothing.
func (s *Session) RemoveMethod(name string, paramTypes ...string) *Session {
	if !s.ready() {
		return s
	}
	types := make([]reflect.Type, len(paramTypes))
	for i, tn := range paramTypes {
		t, err := s.pool.resolver.Resolve(tn)
		if err != nil {
			// no method can have an unresolvable parameter type
			return s
		}
		types[i] = t
	}
	sig := signature(name, types)
	if s.def.removeMethod(sig) {
		s.logger.Debug("method removed", zap.String("method", sig))
	}
	return s
}

// Bind attaches a WebBound record to the type
func (s *Session) Bind(b descriptor.Binding) *Session {
	if !s.ready() {
		return s
	}
	if err := b.Validate(); err != nil {
		return s.fail(errors.NewInvalidDescriptorError("binding", err))
	}
	s.def.records.Attach(metadata.Binding(b))
	return s
}

// Controller attaches a Controller record to the type
func (s *Session) Controller(name string) *Session {
	return s.Annotate(metadata.NewController(name))
}

// RestController attaches a RestController record to the type
func (s *Session) RestController(name string) *Session {
	return s.Annotate(metadata.NewRestController(name))
}

// RequestMapping attaches a type-level route mapping
func (s *Session) RequestMapping(m descriptor.Mapping) *Session {
	if !s.ready() {
		return s
	}
	if err := m.Validate(); err != nil {
		return s.fail(errors.NewInvalidDescriptorError("mapping", err))
	}
	s.def.records.Attach(metadata.TypeMapping(m))
	return s
}

// EnableDocs attaches an Api record and turns on documentation records
// for methods added from now on
func (s *Session) EnableDocs(tags ...string) *Session {
	if !s.ready() {
		return s
	}
	s.def.records.Remove(metadata.ApiIgnore)
	s.def.records.Attach(metadata.NewApi(tags...))
	s.def.docs = true
	return s
}

// DisableDocs attaches an ApiIgnore record and stops adding documentation
// records to new methods. Methods already added keep theirs.
func (s *Session) DisableDocs() *Session {
	if !s.ready() {
		return s
	}
	s.def.records.Remove(metadata.Api)
	s.def.records.Attach(metadata.NewApiIgnore())
	s.def.docs = false
	return s
}

// Annotate attaches records to the type
func (s *Session) Annotate(records ...metadata.Record) *Session {
	if !s.ready() {
		return s
	}
	metadata.Mark(s.def, records...)
	return s
}

// AnnotateField attaches records to a field
func (s *Session) AnnotateField(name string, records ...metadata.Record) *Session {
	if !s.ready() {
		return s
	}
	f, err := s.def.Field(name)
	if err != nil {
		return s.fail(err)
	}
	metadata.Mark(f, records...)
	return s
}

// AnnotateMethod attaches records to every overload of name
func (s *Session) AnnotateMethod(name string, records ...metadata.Record) *Session {
	if !s.ready() {
		return s
	}
	overloads := s.def.MethodsNamed(name)
	if len(overloads) == 0 {
		return s.fail(errors.NewMethodNotFoundError(s.def.name, name))
	}
	for _, m := range overloads {
		metadata.Mark(m, records...)
	}
	return s
}

// AnnotateParameter attaches records to parameter index of every overload
// of name that has it
func (s *Session) AnnotateParameter(name string, index int, records ...metadata.Record) *Session {
	if !s.ready() {
		return s
	}
	marked := false
	for _, m := range s.def.MethodsNamed(name) {
		if metadata.MarkParameter(m, index, records...) == nil {
			marked = true
		}
	}
	if !marked {
		return s.fail(errors.NewMethodNotFoundError(s.def.name, fmt.Sprintf("%s[param %d]", name, index)))
	}
	return s
}

// Discard evicts the definition without loading it
func (s *Session) Discard() {
	if s.done {
		return
	}
	s.finish()
	s.logger.Debug("definition discarded")
}

// Release gives the name back while keeping the definition pending, so a
// later Open with WithReuse can continue editing it
func (s *Session) Release() {
	if s.done {
		return
	}
	s.done = true
	s.released = true
	s.pool.release(s.def.name)
	s.logger.Debug("session released")
}

// spent is the error for a session that can no longer be used
func (s *Session) spent() error {
	if s.released {
		return errors.NewSessionReleasedError(s.def.name)
	}
	return errors.NewAlreadyMaterializedError(s.def.name)
}

// finish evicts the definition and ends the session
func (s *Session) finish() {
	s.done = true
	s.pool.evict(s.def.name)
	s.pool.release(s.def.name)
}
