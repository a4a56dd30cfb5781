/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/docmapper/errors"
)

// Factory creates a fresh, empty instance of a registered type.
type Factory func() any

// Discriminator configures how the concrete type of an embedded element is
// picked from its raw document.
type Discriminator struct {
	// Field is the raw document field holding the type suffix. Empty disables lookup.
	Field string
	// Prefix is prepended to the field value to form the type name.
	Prefix string
	// Default is used when Field is unset or absent from the document.
	Default string
}

// TypeRegistry maps type names to factories whose products implement T.
type TypeRegistry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewTypeRegistry creates an empty registry for types implementing T.
func NewTypeRegistry[T any]() *TypeRegistry[T] {
	return &TypeRegistry[T]{
		factories: make(map[string]Factory),
	}
}

// Register associates name with factory. The factory is invoked once to check
// that its product implements T; a non-conforming factory or a duplicate name
// is a configuration error.
func (r *TypeRegistry[T]) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return errors.NewConfigurationError("type registry", "name and factory are required")
	}
	if _, ok := factory().(T); !ok {
		var zero *T
		return errors.NewConfigurationError("type registry", "%s does not implement %s", name, typeName(zero))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.NewConfigurationError("type registry", "type %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is like Register but panics on error. Intended for init-time registration.
func (r *TypeRegistry[T]) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Registered reports whether name has a factory.
func (r *TypeRegistry[T]) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered type names in sorted order.
func (r *TypeRegistry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the concrete type name for raw under d: Prefix followed by the
// discriminator value when the field is present, d.Default otherwise. An
// empty discriminator value counts as absent. The resolved name must be
// registered.
func (r *TypeRegistry[T]) Resolve(raw map[string]any, d Discriminator) (string, error) {
	name := d.Default
	if d.Field != "" {
		if v, ok := raw[d.Field]; ok && v != nil && v != "" {
			name = d.Prefix + fmt.Sprint(v)
		}
	}
	if name == "" {
		return "", errors.NewConfigurationError("type registry", "no element type configured")
	}
	if !r.Registered(name) {
		return "", errors.NewConfigurationError("type registry", "%s is not a registered embedded document type", name)
	}
	return name, nil
}

// New instantiates the type registered under name.
func (r *TypeRegistry[T]) New(name string) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, errors.NewConfigurationError("type registry", "%s is not a registered embedded document type", name)
	}
	obj, ok := factory().(T)
	if !ok {
		return zero, errors.NewConfigurationError("type registry", "%s does not implement %s", name, typeName(&zero))
	}
	return obj, nil
}

// Instantiate resolves the type of raw and returns a fresh instance of it along with its name.
func (r *TypeRegistry[T]) Instantiate(raw map[string]any, d Discriminator) (T, string, error) {
	name, err := r.Resolve(raw, d)
	if err != nil {
		var zero T
		return zero, "", err
	}
	obj, err := r.New(name)
	return obj, name, err
}

func typeName[T any](p *T) string {
	return fmt.Sprintf("%T", p)[1:]
}
