package manifest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
	"github.com/toyz/dynapi/pkg/dynapi/registry"
)

// Open starts a session for t and replays every declaration in it. The
// returned session is not materialized; its Err holds the first failure.
func (t TypeSpec) Open(ctx context.Context, pool *dynapi.Pool) (*dynapi.Session, error) {
	var opts []dynapi.OpenOption
	if t.Reuse {
		opts = append(opts, dynapi.WithReuse())
	}

	var (
		s   *dynapi.Session
		err error
	)
	if t.Base != "" {
		s, err = pool.OpenBase(t.Name, t.Base, opts...)
	} else {
		profile, perr := dynapi.ParseProfile(t.Profile)
		if perr != nil {
			return nil, perr
		}
		s, err = pool.OpenContext(ctx, t.Name, profile, opts...)
	}
	if err != nil {
		return nil, err
	}

	if err := t.apply(s); err != nil {
		s.Discard()
		return nil, err
	}
	return s, nil
}

func (t TypeSpec) apply(s *dynapi.Session) error {
	if t.Controller != "" {
		s.Controller(t.Controller)
	}
	if t.RestController != "" {
		s.RestController(t.RestController)
	}
	if t.Mapping != nil {
		m, err := t.Mapping.descriptor()
		if err != nil {
			return err
		}
		s.RequestMapping(m)
	}
	if t.Binding != nil {
		s.Bind(t.Binding.descriptor())
	}
	if t.Dispatcher != nil {
		s.InjectDispatcher(t.Dispatcher.Required, t.Dispatcher.Qualifier)
	}
	if t.Docs != nil {
		if t.Docs.Enabled {
			s.EnableDocs(t.Docs.Tags...)
		} else {
			s.DisableDocs()
		}
	}

	for _, f := range t.Fields {
		switch {
		case f.Source != "":
			s.AddFieldFromSource(f.Source)
		case f.Value != nil:
			s.AddFieldValue(f.Type, f.Name, *f.Value)
		case f.Inject != nil:
			s.AddField(f.Type, f.Name, dynapi.Autowire(f.Inject.Required, f.Inject.Qualifier))
		default:
			s.AddField(f.Type, f.Name)
		}
	}

	for _, m := range t.Methods {
		if m.Source != "" {
			s.AddMethodFromSource(m.Source)
			continue
		}
		desc, binding, params, err := m.descriptors()
		if err != nil {
			return err
		}
		s.AddSyntheticMethod(desc, binding, params...)
	}

	var accessorBinding *descriptor.Binding
	if t.Accessors.Binding != nil {
		b := t.Accessors.Binding.descriptor()
		accessorBinding = &b
	}
	if t.Accessors.Single {
		s.AddSingleAccessor(accessorBinding)
	}
	if t.Accessors.Multi {
		s.AddMultiAccessor(accessorBinding)
	}

	for _, name := range t.Remove.Fields {
		s.RemoveField(name)
	}
	for _, sig := range t.Remove.Methods {
		name, types := splitSignature(sig)
		s.RemoveMethod(name, types...)
	}
	if t.Remove.Accessors {
		s.RemoveSingleAccessor().RemoveMultiAccessor()
	}
	return s.Err()
}

// Materialize opens, replays and materializes every type in order. An
// entry followed by a reuse entry of the same name is released instead, so
// the later entry continues its definition and only the last one loads.
// It stops at the first failure; types already materialized stay loaded.
func (m *Manifest) Materialize(ctx context.Context, pool *dynapi.Pool) ([]*dynapi.TypeHandle, error) {
	handles := make([]*dynapi.TypeHandle, 0, len(m.Types))
	for i, t := range m.Types {
		s, err := t.Open(ctx, pool)
		if err != nil {
			return handles, fmt.Errorf("type %s: %w", t.Name, err)
		}
		if m.superseded(i) {
			s.Release()
			continue
		}
		h, err := s.Materialize()
		if err != nil {
			return handles, fmt.Errorf("type %s: %w", t.Name, err)
		}
		pool.Logger().Debug("manifest type ready", zap.String("type", h.Name()))
		handles = append(handles, h)
	}
	return handles, nil
}

// superseded reports whether a later reuse entry continues entry i
func (m *Manifest) superseded(i int) bool {
	for _, later := range m.Types[i+1:] {
		if later.Name == m.Types[i].Name && later.Reuse {
			return true
		}
	}
	return false
}

// Register adds each handle to reg with the component options of the entry
// that materialized it. handles must be in manifest order, as returned by
// Materialize.
func (m *Manifest) Register(reg registry.Registry, handles []*dynapi.TypeHandle, dispatcher dynapi.Dispatcher) error {
	entries := make([]TypeSpec, 0, len(m.Types))
	for i, t := range m.Types {
		if !m.superseded(i) {
			entries = append(entries, t)
		}
	}
	for i, h := range handles {
		if i >= len(entries) {
			break
		}
		opts := entries[i].Component.options()
		if h.HasDispatcherConstructor() && dispatcher != nil {
			opts = append(opts, registry.WithDispatcher(dispatcher))
		}
		if _, err := reg.Register(h, opts...); err != nil {
			return err
		}
	}
	return nil
}

func (c *ComponentSpec) options() []registry.Option {
	if c == nil {
		return nil
	}
	var opts []registry.Option
	if c.Name != "" {
		opts = append(opts, registry.WithName(c.Name))
	}
	if c.Scope != "" {
		opts = append(opts, registry.WithScope(registry.Scope(c.Scope)))
	}
	if c.Lazy {
		opts = append(opts, registry.Lazy(true))
	}
	if c.AutowireCandidate != nil {
		opts = append(opts, registry.AutowireCandidate(*c.AutowireCandidate))
	}
	return opts
}

func (m MappingSpec) descriptor() (descriptor.Mapping, error) {
	out := descriptor.Mapping{
		Name:     m.Name,
		Paths:    m.Paths,
		Params:   m.Params,
		Headers:  m.Headers,
		Consumes: m.Consumes,
		Produces: m.Produces,
	}
	for _, v := range m.Verbs {
		verb, err := descriptor.ParseVerb(v)
		if err != nil {
			return out, err
		}
		out.Verbs = append(out.Verbs, verb)
	}
	return out, nil
}

func (b BindingSpec) descriptor() descriptor.Binding {
	return descriptor.Binding{UID: b.UID, JSON: b.JSON, Notes: b.Notes}
}

func (m MethodSpec) descriptors() (descriptor.Method, *descriptor.Binding, []descriptor.Parameter, error) {
	mapping, err := m.Mapping.descriptor()
	if err != nil {
		return descriptor.Method{}, nil, nil, fmt.Errorf("method %s: %w", m.Name, err)
	}
	desc := descriptor.Method{
		Name:         m.Name,
		Mapping:      mapping,
		ResponseBody: m.ResponseBody,
		Returns:      m.Returns,
	}

	var binding *descriptor.Binding
	if m.Binding != nil {
		b := m.Binding.descriptor()
		binding = &b
	}

	params := make([]descriptor.Parameter, 0, len(m.Params))
	for _, p := range m.Params {
		source, err := descriptor.ParseSource(p.Source)
		if err != nil {
			return desc, nil, nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		param := descriptor.Parameter{
			Name:        p.Name,
			Type:        p.Type,
			Source:      source,
			Default:     p.Default,
			Required:    p.Default == "",
			Description: p.Description,
		}
		if p.Required != nil {
			param.Required = *p.Required
		}
		params = append(params, param)
	}
	return desc, binding, params, nil
}

// splitSignature turns "find(int, String)" into its name and parameter
// type names. A bare name has no parameters.
func splitSignature(sig string) (string, []string) {
	name, rest, ok := strings.Cut(sig, "(")
	if !ok {
		return strings.TrimSpace(sig), nil
	}
	var types []string
	for _, t := range strings.Split(strings.TrimSuffix(strings.TrimSpace(rest), ")"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return strings.TrimSpace(name), types
}
