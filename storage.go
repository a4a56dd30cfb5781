/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docmapper

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"

	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/errors"
)

// Storage manages the document stores of an application by collection name.
type Storage interface {
	// RegisterStore registers a store under a collection name (for example, "galleries").
	RegisterStore(name string, store datastore.DocumentStore) error
	// Store retrieves the store registered for name.
	Store(name string) (datastore.DocumentStore, error)
	// RemoveStore unregisters name and closes its store when it can be closed.
	RemoveStore(ctx context.Context, name string) error
	// Names lists the registered collection names in sorted order.
	Names() []string
	// Close closes every registered store that can be closed and empties the manager.
	Close(ctx context.Context) error
}

// closer is implemented by stores holding a connection, such as the MongoDB store.
type closer interface {
	Close(ctx context.Context) error
}

// storageManager is a thread-safe implementation of the Storage interface.
type storageManager struct {
	mu     sync.RWMutex
	stores map[string]datastore.DocumentStore
}

// NewStorage creates and returns a new Storage implementation.
func NewStorage() Storage {
	return &storageManager{
		stores: make(map[string]datastore.DocumentStore),
	}
}

// RegisterStore stores the provided store under the given name.
func (sm *storageManager) RegisterStore(name string, store datastore.DocumentStore) error {
	if name == "" || store == nil {
		return errors.NewConfigurationError("storage", "name and store are required")
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.stores[name]; exists {
		return errors.NewAlreadyExistsError("store", name)
	}
	sm.stores[name] = store
	return nil
}

// Store retrieves the store associated with the given name.
func (sm *storageManager) Store(name string) (datastore.DocumentStore, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	store, exists := sm.stores[name]
	if !exists {
		return nil, errors.NewNotFoundError("store", name)
	}
	return store, nil
}

func (sm *storageManager) RemoveStore(ctx context.Context, name string) error {
	sm.mu.Lock()
	store, exists := sm.stores[name]
	delete(sm.stores, name)
	sm.mu.Unlock()

	if !exists {
		return errors.NewNotFoundError("store", name)
	}
	if c, ok := store.(closer); ok {
		return c.Close(ctx)
	}
	return nil
}

func (sm *storageManager) Names() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	names := make([]string, 0, len(sm.stores))
	for name := range sm.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (sm *storageManager) Close(ctx context.Context) error {
	sm.mu.Lock()
	stores := sm.stores
	sm.stores = make(map[string]datastore.DocumentStore)
	sm.mu.Unlock()

	var errs []error
	for _, store := range stores {
		if c, ok := store.(closer); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return stderrors.Join(errs...)
}
