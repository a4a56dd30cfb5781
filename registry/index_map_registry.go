/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sync"
)

// IndexMapRegistry associates collections with their key index maps
// (e.g. {"PK": "GALLERY#{_id}", "SK": "GALLERY#{_id}"}).
type IndexMapRegistry struct {
	mu   sync.RWMutex
	maps map[string]map[string]string
}

// NewIndexMapRegistry creates an empty IndexMapRegistry.
func NewIndexMapRegistry() *IndexMapRegistry {
	return &IndexMapRegistry{
		maps: make(map[string]map[string]string),
	}
}

// RegisterIndexMap associates a collection with a given index map (PK, SK, etc.).
func (r *IndexMapRegistry) RegisterIndexMap(collection string, idxMap map[string]string) {
	cp := make(map[string]string, len(idxMap))
	for k, v := range idxMap {
		cp[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps[collection] = cp
}

// GetIndexMap retrieves the index map for a collection, if any.
func (r *IndexMapRegistry) GetIndexMap(collection string) (map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maps[collection]
	return m, ok
}
