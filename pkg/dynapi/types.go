package dynapi

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/internal/utils"
)

type void struct{}

// VoidType is the resolved type of "void": methods returning it produce no value
var VoidType = reflect.TypeFor[void]()

// TypeAliases maps convenient and Java-style names to registered type names
var TypeAliases = map[string]string{
	"String":      "string",
	"Object":      "any",
	"object":      "any",
	"interface{}": "any",
	"Integer":     "int",
	"Long":        "int64",
	"long":        "int64",
	"Short":       "int16",
	"short":       "int16",
	"Boolean":     "bool",
	"boolean":     "bool",
	"Double":      "float64",
	"double":      "float64",
	"float":       "float64",
	"Float":       "float32",
	"UUID":        "uuid.UUID",
}

const defaultCompositeCacheSize = 256

// TypeResolver maps type names used in descriptors and declaration text to
// reflect types. Composite names ([]T, *T, map[K]V, T[]) are parsed on
// demand and cached.
type TypeResolver struct {
	named     *utils.BaseRegistry[string, reflect.Type]
	composite *lru.Cache[string, reflect.Type]
}

// NewTypeResolver creates a resolver preloaded with the builtin types
func NewTypeResolver(cacheSize int) (*TypeResolver, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCompositeCacheSize
	}
	cache, err := lru.New[string, reflect.Type](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create type cache: %w", err)
	}

	r := &TypeResolver{
		named:     utils.NewBaseRegistry[string, reflect.Type]("type"),
		composite: cache,
	}
	r.named.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[reflect.Type]("type name"),
		utils.NoDuplicateValidator[string, reflect.Type]("type name"),
		func(key string, value reflect.Type, _ map[string]reflect.Type) error {
			if value == nil {
				return fmt.Errorf("type '%s' cannot be nil", key)
			}
			return nil
		},
	))

	for name, t := range builtinTypes() {
		r.named.Set(name, t)
	}
	return r, nil
}

func builtinTypes() map[string]reflect.Type {
	return map[string]reflect.Type{
		"void":          VoidType,
		"string":        reflect.TypeFor[string](),
		"bool":          reflect.TypeFor[bool](),
		"int":           reflect.TypeFor[int](),
		"int8":          reflect.TypeFor[int8](),
		"int16":         reflect.TypeFor[int16](),
		"int32":         reflect.TypeFor[int32](),
		"int64":         reflect.TypeFor[int64](),
		"uint":          reflect.TypeFor[uint](),
		"uint8":         reflect.TypeFor[uint8](),
		"uint16":        reflect.TypeFor[uint16](),
		"uint32":        reflect.TypeFor[uint32](),
		"uint64":        reflect.TypeFor[uint64](),
		"byte":          reflect.TypeFor[byte](),
		"rune":          reflect.TypeFor[rune](),
		"float32":       reflect.TypeFor[float32](),
		"float64":       reflect.TypeFor[float64](),
		"any":           reflect.TypeFor[any](),
		"error":         reflect.TypeFor[error](),
		"uuid.UUID":     reflect.TypeFor[uuid.UUID](),
		"time.Time":     reflect.TypeFor[time.Time](),
		"time.Duration": reflect.TypeFor[time.Duration](),
		"Dispatcher":    reflect.TypeFor[Dispatcher](),
		"ServerRequest": reflect.TypeFor[ServerRequest](),
		"Mono":          reflect.TypeFor[Mono](),
		"Flux":          reflect.TypeFor[Flux](),
	}
}

// Register adds a named type. Names must be unique.
func (r *TypeResolver) Register(name string, t reflect.Type) error {
	return r.named.Register(name, t)
}

// RegisterType registers T under name
func RegisterType[T any](r *TypeResolver, name string) error {
	return r.Register(name, reflect.TypeFor[T]())
}

// Resolve returns the type for a name, failing with a TypeResolutionFailure
func (r *TypeResolver) Resolve(name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewTypeResolutionError(name, fmt.Errorf("empty type name"))
	}
	if t, ok := r.lookup(name); ok {
		return t, nil
	}
	if t, ok := r.composite.Get(name); ok {
		return t, nil
	}

	t, err := r.parseComposite(name)
	if err != nil {
		return nil, errors.NewTypeResolutionError(name, err)
	}
	r.composite.Add(name, t)
	return t, nil
}

// MustResolve is Resolve for builtin names that cannot fail
func (r *TypeResolver) MustResolve(name string) reflect.Type {
	t, err := r.Resolve(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Has reports whether name resolves
func (r *TypeResolver) Has(name string) bool {
	_, err := r.Resolve(name)
	return err == nil
}

// Names lists the registered (non-composite) type names
func (r *TypeResolver) Names() []string {
	return r.named.List()
}

func (r *TypeResolver) lookup(name string) (reflect.Type, bool) {
	if alias, ok := TypeAliases[name]; ok {
		name = alias
	}
	return r.named.Get(name)
}

func (r *TypeResolver) parseComposite(name string) (reflect.Type, error) {
	switch {
	case strings.HasPrefix(name, "[]"):
		elem, err := r.resolveElem(name[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasSuffix(name, "[]"):
		elem, err := r.resolveElem(strings.TrimSuffix(name, "[]"))
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(name, "*"):
		elem, err := r.resolveElem(name[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(name, "map["):
		end := closingBracket(name, len("map"))
		if end < 0 {
			return nil, fmt.Errorf("unbalanced brackets in %q", name)
		}
		key, err := r.resolveElem(name[len("map["):end])
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, fmt.Errorf("map key %s is not comparable", key)
		}
		value, err := r.resolveElem(name[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, value), nil
	}
	return nil, fmt.Errorf("unknown type")
}

func (r *TypeResolver) resolveElem(name string) (reflect.Type, error) {
	t, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	if t == VoidType {
		return nil, fmt.Errorf("void cannot be used as an element type")
	}
	return t, nil
}

// closingBracket returns the index of the ']' matching the '[' at open
func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// TypeName is the canonical name used in method signatures
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t == VoidType {
		return "void"
	}
	return t.String()
}
