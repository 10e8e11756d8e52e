package dynapi

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/internal/utils"
)

// Pool caches definitions that are being built and remembers the types it
// has loaded. Each name is guarded by a lease so that only one Session
// edits a definition at a time; concurrent opens on the same name wait.
type Pool struct {
	mu      sync.Mutex
	leases  map[string]*lease
	pending map[string]*Definition

	loaded   *utils.BaseRegistry[string, *TypeHandle]
	profiles *utils.BaseRegistry[ProfileName, *Profile]
	bases    *utils.BaseRegistry[string, *BaseType]

	resolver *TypeResolver
	logger   *zap.Logger
}

// lease is a per-name mutex that can be waited on with a context. refs
// counts holders plus waiters so the entry can be dropped once unused.
type lease struct {
	ch   chan struct{}
	refs int
}

// PoolOption configures a Pool
type PoolOption func(*poolConfig)

type poolConfig struct {
	logger    *zap.Logger
	resolver  *TypeResolver
	cacheSize int
}

// WithLogger sets the logger used by the pool, its sessions and the
// synthesized method traps
func WithLogger(logger *zap.Logger) PoolOption {
	return func(c *poolConfig) {
		c.logger = logger
	}
}

// WithResolver shares a type resolver between pools
func WithResolver(r *TypeResolver) PoolOption {
	return func(c *poolConfig) {
		c.resolver = r
	}
}

// WithTypeCacheSize bounds the composite type-name cache of the default resolver
func WithTypeCacheSize(size int) PoolOption {
	return func(c *poolConfig) {
		c.cacheSize = size
	}
}

// NewPool creates a pool with the builtin base types and profiles registered
func NewPool(opts ...PoolOption) (*Pool, error) {
	cfg := &poolConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.resolver == nil {
		r, err := NewTypeResolver(cfg.cacheSize)
		if err != nil {
			return nil, err
		}
		cfg.resolver = r
	}

	p := &Pool{
		leases:   make(map[string]*lease),
		pending:  make(map[string]*Definition),
		loaded:   utils.NewBaseRegistry[string, *TypeHandle]("loaded type"),
		profiles: utils.NewBaseRegistry[ProfileName, *Profile]("profile"),
		bases:    utils.NewBaseRegistry[string, *BaseType]("base type"),
		resolver: cfg.resolver,
		logger:   cfg.logger,
	}
	p.loaded.SetValidator(utils.NoDuplicateValidator[string, *TypeHandle]("type name"))
	p.profiles.SetValidator(utils.ChainValidators(
		utils.NoDuplicateValidator[ProfileName, *Profile]("profile"),
		utils.NotNilValueValidator[ProfileName, Profile]("profile"),
	))
	p.bases.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[*BaseType]("base type"),
		utils.NoDuplicateValidator[string, *BaseType]("base type"),
		utils.NotNilValueValidator[string, BaseType]("base type"),
	))

	for _, b := range builtinBases() {
		if err := p.RegisterBase(b); err != nil {
			return nil, err
		}
	}
	for _, prof := range builtinProfiles() {
		if err := p.RegisterProfile(prof); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Resolver returns the pool's type resolver
func (p *Pool) Resolver() *TypeResolver { return p.resolver }

// Logger returns the pool's logger
func (p *Pool) Logger() *zap.Logger { return p.logger }

// RegisterBase adds a base type sessions can derive from. Field types must resolve.
func (p *Pool) RegisterBase(b *BaseType) error {
	if b == nil {
		return fmt.Errorf("base type cannot be nil")
	}
	for _, f := range b.Fields {
		if _, err := p.resolver.Resolve(f.TypeName); err != nil {
			return err
		}
	}
	if b.DispatcherField != "" && !b.hasField(b.DispatcherField) {
		return fmt.Errorf("base type %s: dispatcher field %q is not declared", b.Name, b.DispatcherField)
	}
	return p.bases.Register(b.Name, b)
}

// RegisterProfile adds a profile that Open can select
func (p *Pool) RegisterProfile(prof *Profile) error {
	if prof == nil {
		return fmt.Errorf("profile cannot be nil")
	}
	if prof.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	return p.profiles.Register(prof.Name, prof)
}

// Profiles lists registered profile names in registration order
func (p *Pool) Profiles() []ProfileName { return p.profiles.List() }

// Pending returns the cached definition for name, if one exists
func (p *Pool) Pending(name string) (*Definition, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.pending[name]
	return d, ok
}

// Loaded returns the handle of a materialized type
func (p *Pool) Loaded(name string) (*TypeHandle, bool) {
	return p.loaded.Get(name)
}

// LoadedNames lists materialized types in load order
func (p *Pool) LoadedNames() []string { return p.loaded.List() }

// Len returns the number of pending definitions
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// OpenOption configures a single Open call
type OpenOption func(*openConfig)

type openConfig struct {
	reuse bool
}

// WithReuse continues editing a pending definition left behind by a
// released session instead of failing with DuplicateType
func WithReuse() OpenOption {
	return func(c *openConfig) {
		c.reuse = true
	}
}

// Open starts a session for name with the given profile. It blocks while
// another session holds the name.
func (p *Pool) Open(name string, profile ProfileName, opts ...OpenOption) (*Session, error) {
	return p.OpenContext(context.Background(), name, profile, opts...)
}

// OpenContext is Open with cancellation while waiting for the name
func (p *Pool) OpenContext(ctx context.Context, name string, profile ProfileName, opts ...OpenOption) (*Session, error) {
	prof, ok := p.profiles.Get(profile)
	if !ok {
		return nil, errors.NewTypeResolutionError(string(profile), fmt.Errorf("unknown profile"))
	}
	return p.open(ctx, name, prof, prof.Base, opts)
}

// OpenBase starts a session deriving from a registered base type without
// any profile records or accessors
func (p *Pool) OpenBase(name, baseName string, opts ...OpenOption) (*Session, error) {
	prof := &Profile{Name: ProfileName("base:" + baseName), Base: baseName}
	return p.open(context.Background(), name, prof, baseName, opts)
}

func (p *Pool) open(ctx context.Context, name string, prof *Profile, baseName string, opts []OpenOption) (*Session, error) {
	if name == "" {
		return nil, errors.NewTypeResolutionError(name, fmt.Errorf("type name cannot be empty"))
	}
	cfg := &openConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	base, ok := p.bases.Get(baseName)
	if !ok {
		return nil, errors.NewTypeResolutionError(baseName, fmt.Errorf("base type is not registered"))
	}

	if err := p.acquire(ctx, name); err != nil {
		return nil, err
	}

	p.mu.Lock()
	def, exists := p.pending[name]
	switch {
	case exists && !cfg.reuse:
		p.mu.Unlock()
		p.release(name)
		return nil, errors.NewDuplicateTypeError(name)
	case exists && def.base != base:
		p.mu.Unlock()
		p.release(name)
		return nil, errors.NewDuplicateTypeError(name).
			WithContext("base", def.base.Name)
	case !exists:
		var err error
		def, err = p.newDefinition(name, prof, base)
		if err != nil {
			p.mu.Unlock()
			p.release(name)
			return nil, err
		}
		p.pending[name] = def
	}
	p.mu.Unlock()

	p.logger.Debug("session opened",
		zap.String("type", name),
		zap.String("base", base.Name),
		zap.Bool("reused", exists))

	return &Session{pool: p, def: def, logger: p.logger.With(zap.String("type", name))}, nil
}

func (p *Pool) newDefinition(name string, prof *Profile, base *BaseType) (*Definition, error) {
	def := &Definition{
		name:       name,
		profile:    prof,
		base:       base,
		dispatcher: base.DispatcherConstructor,
	}
	for _, f := range base.Fields {
		t, err := p.resolver.Resolve(f.TypeName)
		if err != nil {
			return nil, err
		}
		def.fields = append(def.fields, &FieldDef{
			name:       f.Name,
			typeName:   f.TypeName,
			typ:        t,
			visibility: Protected,
			inherited:  true,
		})
	}
	def.records.Attach(prof.initialRecords(name)...)
	return def, nil
}

// acquire takes the lease for name, waiting until it is free or ctx is done
func (p *Pool) acquire(ctx context.Context, name string) error {
	p.mu.Lock()
	l, ok := p.leases[name]
	if !ok {
		l = &lease{ch: make(chan struct{}, 1)}
		p.leases[name] = l
	}
	l.refs++
	p.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		p.mu.Lock()
		p.unref(name, l)
		p.mu.Unlock()
		return ctx.Err()
	}
}

// release gives the lease for name back
func (p *Pool) release(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.leases[name]
	if !ok {
		return
	}
	<-l.ch
	p.unref(name, l)
}

func (p *Pool) unref(name string, l *lease) {
	l.refs--
	if l.refs == 0 {
		delete(p.leases, name)
	}
}

// evict drops the pending definition for name
func (p *Pool) evict(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, name)
}

func (b *BaseType) hasField(name string) bool {
	for _, f := range b.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
