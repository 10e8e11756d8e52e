package dynapi

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// Materialize loads the definition into an immutable TypeHandle registered
// with the pool. The definition is evicted and the name lease released
// whether or not loading succeeds; the session cannot be used afterwards.
func (s *Session) Materialize() (*TypeHandle, error) {
	if s.done {
		return nil, s.spent()
	}
	defer s.finish()

	if s.err != nil {
		return nil, s.err
	}
	if _, loaded := s.pool.loaded.Get(s.def.name); loaded {
		return nil, errors.NewMaterializationError(s.def.name, "a type with this name is already loaded")
	}

	var problems []string
	for _, m := range s.def.methods {
		if m.state != Ready {
			problems = append(problems, fmt.Sprintf("method %s is %s", m.Signature(), m.state))
		}
	}
	if len(problems) > 0 {
		return nil, errors.NewMaterializationError(s.def.name, "methods not ready").
			WithContext("methods", problems)
	}

	handle := s.def.handle()
	if err := s.pool.loaded.Register(handle.name, handle); err != nil {
		return nil, errors.NewMaterializationError(s.def.name, err.Error())
	}

	s.logger.Info("type materialized",
		zap.String("base", handle.base),
		zap.Int("fields", len(handle.fields)),
		zap.Int("methods", len(handle.methods)))
	return handle, nil
}

// Instantiate adds the dispatcher constructor, materializes and returns one
// instance bound to d. Types whose base has no dispatcher field cannot be
// instantiated this way.
func (s *Session) Instantiate(d Dispatcher) (*Instance, error) {
	if s.done {
		return nil, errors.NewAlreadyMaterializedError(s.def.name)
	}
	if !s.def.base.HasDispatcher() {
		s.finish()
		return nil, errors.NewMaterializationError(s.def.name,
			fmt.Sprintf("base %s has no dispatcher field", s.def.base.Name))
	}
	s.def.dispatcher = true

	handle, err := s.Materialize()
	if err != nil {
		return nil, err
	}
	return handle.NewWithDispatcher(d)
}

// handle copies the definition into its immutable loaded form
func (d *Definition) handle() *TypeHandle {
	h := &TypeHandle{
		name:            d.name,
		profile:         d.profile.Name,
		base:            d.base.Name,
		records:         d.records.Clone(),
		dispatcherField: d.base.DispatcherField,
		dispatcherCtor:  d.dispatcher,
	}
	for _, f := range d.fields {
		h.fields = append(h.fields, &Field{
			name:       f.name,
			typeName:   f.typeName,
			typ:        f.typ,
			visibility: f.visibility,
			initial:    f.initial,
			inherited:  f.inherited,
			records:    f.records.Clone(),
		})
	}
	for _, m := range d.methods {
		sig := m.Signature()
		method := &Method{
			id:         methodID(d.name, sig),
			owner:      h,
			name:       m.name,
			signature:  sig,
			returnName: m.returnName,
			returns:    m.returns,
			records:    m.records.Clone(),
			body:       m.body,
		}
		for _, p := range m.params {
			method.params = append(method.params, Param{
				Name:     p.Name,
				TypeName: p.TypeName,
				Type:     p.Type,
				records:  p.records.Clone(),
			})
		}
		h.methods = append(h.methods, method)
	}
	return h
}

// ensure the holder interfaces stay satisfied
var (
	_ metadata.Holder      = (*Definition)(nil)
	_ metadata.Holder      = (*FieldDef)(nil)
	_ metadata.ParamHolder = (*MethodDef)(nil)
)
