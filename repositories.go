/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docmapper

import (
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/model"
	"github.com/suparena/docmapper/provider"
)

// Repositories holds the repositories of record type T by name.
type Repositories[T model.Record] struct {
	mu    sync.RWMutex
	repos map[string]*model.Repository[T]
}

// NewRepositories creates a new Repositories for type T
func NewRepositories[T model.Record]() *Repositories[T] {
	return &Repositories[T]{
		repos: make(map[string]*model.Repository[T]),
	}
}

// Register adds a repository with the given name
func (rs *Repositories[T]) Register(name string, repo *model.Repository[T]) error {
	if repo == nil {
		return errors.NewConfigurationError("repositories", "repository %q is nil", name)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.repos[name]; exists {
		return errors.NewAlreadyExistsError("repository", name)
	}
	rs.repos[name] = repo
	return nil
}

// Get retrieves a repository by name
func (rs *Repositories[T]) Get(name string) (*model.Repository[T], error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	repo, exists := rs.repos[name]
	if !exists {
		return nil, errors.NewNotFoundError("repository", name)
	}
	return repo, nil
}

// Remove deletes a repository by name
func (rs *Repositories[T]) Remove(name string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.repos[name]; !exists {
		return errors.NewNotFoundError("repository", name)
	}
	delete(rs.repos, name)
	return nil
}

// List returns the registered names in sorted order
func (rs *Repositories[T]) List() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	names := make([]string, 0, len(rs.repos))
	for name := range rs.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry keeps one Repositories per record type.
type Registry struct {
	mu    sync.Mutex
	byTyp map[reflect.Type]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byTyp: make(map[reflect.Type]any)}
}

// RepositoriesOf returns the Repositories for record type T, creating it if necessary.
func RepositoriesOf[T model.Record](r *Registry) *Repositories[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	typ := reflect.TypeOf((*T)(nil)).Elem()
	if rs, exists := r.byTyp[typ]; exists {
		return rs.(*Repositories[T])
	}
	rs := NewRepositories[T]()
	r.byTyp[typ] = rs
	return rs
}

// RegisterRepository registers repo for type T under name.
func RegisterRepository[T model.Record](r *Registry, name string, repo *model.Repository[T]) error {
	return RepositoriesOf[T](r).Register(name, repo)
}

// GetRepository returns the repository of type T registered under name.
func GetRepository[T model.Record](r *Registry, name string) (*model.Repository[T], error) {
	return RepositoriesOf[T](r).Get(name)
}

// RemoveRepository unregisters the repository of type T registered under name.
func RemoveRepository[T model.Record](r *Registry, name string) error {
	return RepositoriesOf[T](r).Remove(name)
}

// ListRepositories lists the names registered for type T.
func ListRepositories[T model.Record](r *Registry) []string {
	return RepositoriesOf[T](r).List()
}

// NewProvider returns a provider over the repository of type T registered under name.
func NewProvider[T model.Record](r *Registry, name string, opts ...provider.Option) (*provider.Provider[T], error) {
	repo, err := GetRepository[T](r, name)
	if err != nil {
		return nil, err
	}
	return provider.New[T](repo, append([]provider.Option{provider.WithID(name)}, opts...)...)
}
