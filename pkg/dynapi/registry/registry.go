// Package registry keeps materialized types under component names and
// hands out instances according to their scope.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/pkg/dynapi"
	"github.com/toyz/dynapi/pkg/dynapi/metadata"
)

// Scope controls how many instances a component produces
type Scope string

const (
	// Singleton components share one instance
	Singleton Scope = "singleton"
	// Prototype components produce a new instance on every Get
	Prototype Scope = "prototype"
)

// ErrNotRegistered is returned by Get for unknown component names
var ErrNotRegistered = errors.New("component is not registered")

// Definition describes one registered component
type Definition struct {
	Name              string
	Handle            *dynapi.TypeHandle
	Scope             Scope
	Lazy              bool
	AutowireCandidate bool

	dispatcher dynapi.Dispatcher
	once       sync.Once
	instance   *dynapi.Instance
	err        error
}

// Dispatcher returns the dispatcher instances of this component are built with
func (d *Definition) Dispatcher() dynapi.Dispatcher { return d.dispatcher }

// Option configures a registration
type Option func(*Definition)

// WithName overrides the default lower-camel simple name
func WithName(name string) Option {
	return func(d *Definition) { d.Name = name }
}

// WithScope sets the component scope
func WithScope(scope Scope) Option {
	return func(d *Definition) { d.Scope = scope }
}

// Lazy defers singleton construction to the first Get
func Lazy(lazy bool) Option {
	return func(d *Definition) { d.Lazy = lazy }
}

// AutowireCandidate controls whether Candidates reports the component
func AutowireCandidate(candidate bool) Option {
	return func(d *Definition) { d.AutowireCandidate = candidate }
}

// WithDispatcher sets the dispatcher passed to NewWithDispatcher
func WithDispatcher(dispatcher dynapi.Dispatcher) Option {
	return func(d *Definition) { d.dispatcher = dispatcher }
}

// Registry stores component definitions by name
type Registry interface {
	// Register adds a component for the handle
	Register(handle *dynapi.TypeHandle, opts ...Option) (*Definition, error)
	// Get returns an instance of the named component
	Get(name string) (*dynapi.Instance, error)
	// Definition returns the named component definition
	Definition(name string) (*Definition, bool)
	// Candidates lists autowire candidates for a type or base type name
	Candidates(typeName string) []string
	// Names lists every registered component name
	Names() []string
	// Preinstantiate builds every eager singleton
	Preinstantiate() error
}

type componentRegistry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
	logger      *zap.Logger
}

// New creates an empty registry. A nil logger disables logging.
func New(logger *zap.Logger) Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &componentRegistry{
		definitions: make(map[string]*Definition),
		logger:      logger.Named("registry"),
	}
}

// Register adds a component. Scope and laziness default to the Scope and
// Lazy records on the type, then to an eager singleton.
func (r *componentRegistry) Register(handle *dynapi.TypeHandle, opts ...Option) (*Definition, error) {
	if handle == nil {
		return nil, fmt.Errorf("component type handle cannot be nil")
	}

	def := &Definition{
		Name:              dynapi.SimpleName(handle.Name()),
		Handle:            handle,
		Scope:             Singleton,
		AutowireCandidate: true,
	}
	if rec, ok := handle.Record(metadata.Scope); ok {
		if s := rec.GetString("scopeName"); s != "" {
			def.Scope = Scope(s)
		}
	}
	if rec, ok := handle.Record(metadata.Lazy); ok {
		def.Lazy = rec.GetBool("value", true)
	}
	for _, opt := range opts {
		opt(def)
	}

	if def.Name == "" {
		return nil, fmt.Errorf("component name cannot be empty")
	}
	if def.Scope != Singleton && def.Scope != Prototype {
		return nil, fmt.Errorf("component '%s': unsupported scope '%s'", def.Name, def.Scope)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.definitions[def.Name]; exists {
		return nil, fmt.Errorf("component '%s' is already registered for type '%s'", def.Name, existing.Handle.Name())
	}
	r.definitions[def.Name] = def

	r.logger.Debug("component registered",
		zap.String("name", def.Name),
		zap.String("type", handle.Name()),
		zap.String("scope", string(def.Scope)),
		zap.Bool("lazy", def.Lazy))
	return def, nil
}

// Get returns the shared instance of a singleton or a fresh prototype instance
func (r *componentRegistry) Get(name string) (*dynapi.Instance, error) {
	def, ok := r.Definition(name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotRegistered, name)
	}
	if def.Scope == Prototype {
		return construct(def)
	}
	def.once.Do(func() {
		def.instance, def.err = construct(def)
	})
	return def.instance, def.err
}

func construct(def *Definition) (*dynapi.Instance, error) {
	if def.dispatcher == nil {
		return def.Handle.New(), nil
	}
	inst, err := def.Handle.NewWithDispatcher(def.dispatcher)
	if err != nil {
		return nil, fmt.Errorf("component '%s': %w", def.Name, err)
	}
	return inst, nil
}

func (r *componentRegistry) Definition(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, exists := r.definitions[name]
	return def, exists
}

// Candidates matches the handle name and the base type name
func (r *componentRegistry) Candidates(typeName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, def := range r.definitions {
		if !def.AutowireCandidate {
			continue
		}
		if def.Handle.Name() == typeName || def.Handle.Base() == typeName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *componentRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *componentRegistry) Preinstantiate() error {
	var errs []error
	for _, name := range r.Names() {
		def, _ := r.Definition(name)
		if def.Scope != Singleton || def.Lazy {
			continue
		}
		if _, err := r.Get(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
