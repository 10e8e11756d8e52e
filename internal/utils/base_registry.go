package utils

import (
	"fmt"
	"sync"
)

// RegistryValidator checks an entry against the existing ones before it is stored
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry is a locked map that remembers insertion order. The pool
// keeps its loaded types, profiles and base types in one each.
type BaseRegistry[K comparable, V any] struct {
	mu        sync.RWMutex
	items     map[K]V
	order     []K
	validator RegistryValidator[K, V]
	name      string
}

// NewBaseRegistry creates an empty registry; name prefixes validation errors
func NewBaseRegistry[K comparable, V any](name string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{items: make(map[K]V), name: name}
}

// SetValidator installs the check Register runs
func (r *BaseRegistry[K, V]) SetValidator(validator RegistryValidator[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = validator
}

// Register validates and stores value under key
func (r *BaseRegistry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return fmt.Errorf("%s registry: %w", r.name, err)
		}
	}
	r.store(key, value)
	return nil
}

// Set stores value without validation, replacing any earlier entry
func (r *BaseRegistry[K, V]) Set(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(key, value)
}

func (r *BaseRegistry[K, V]) store(key K, value V) {
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
	}
	r.items[key] = value
}

// Get returns the value stored under key
func (r *BaseRegistry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.items[key]
	return value, ok
}

// Has reports whether key is stored
func (r *BaseRegistry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// List returns the keys in insertion order
func (r *BaseRegistry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]K{}, r.order...)
}

// Len returns the number of entries
func (r *BaseRegistry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// NotEmptyKeyValidator rejects the empty string key
func NotEmptyKeyValidator[V any](what string) RegistryValidator[string, V] {
	return func(key string, _ V, _ map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

// NotNilValueValidator rejects nil pointer values
func NotNilValueValidator[K comparable, V any](what string) RegistryValidator[K, *V] {
	return func(_ K, value *V, _ map[K]*V) error {
		if value == nil {
			return fmt.Errorf("%s cannot be nil", what)
		}
		return nil
	}
}

// NoDuplicateValidator rejects keys that are already stored
func NoDuplicateValidator[K comparable, V any](what string) RegistryValidator[K, V] {
	return func(key K, _ V, existing map[K]V) error {
		if _, ok := existing[key]; ok {
			return fmt.Errorf("%s '%v' is already registered", what, key)
		}
		return nil
	}
}

// ChainValidators runs validators in order and stops at the first error
func ChainValidators[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(key, value, existing); err != nil {
				return err
			}
		}
		return nil
	}
}
