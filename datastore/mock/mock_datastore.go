/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory DocumentStore for testing
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/storagemodels"
)

// DocumentStore is an in-memory implementation of datastore.DocumentStore.
// Documents are kept in insertion order; filtering, sorting and windowing use
// the storagemodels helpers so results match the real backends.
type DocumentStore struct {
	mu       sync.RWMutex
	keyField string
	keys     []string
	docs     map[string]storagemodels.Document

	findFunc    func(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error)
	findError   error
	countError  error
	insertError error
	deleteError error

	findCalls  []*storagemodels.Criteria
	countCalls []*storagemodels.Criteria
}

// New creates an empty mock store keyed by "_id".
func New() *DocumentStore {
	return &DocumentStore{
		keyField: "_id",
		docs:     make(map[string]storagemodels.Document),
	}
}

// WithKeyField sets the document field used as the key
func (m *DocumentStore) WithKeyField(field string) *DocumentStore {
	m.keyField = field
	return m
}

// WithFindFunc sets a custom find function for testing
func (m *DocumentStore) WithFindFunc(f func(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error)) *DocumentStore {
	m.findFunc = f
	return m
}

// WithFindError makes Find operations return an error
func (m *DocumentStore) WithFindError(err error) *DocumentStore {
	m.findError = err
	return m
}

// WithCountError makes Count operations return an error
func (m *DocumentStore) WithCountError(err error) *DocumentStore {
	m.countError = err
	return m
}

// WithInsertError makes Insert operations return an error
func (m *DocumentStore) WithInsertError(err error) *DocumentStore {
	m.insertError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DocumentStore) WithDeleteError(err error) *DocumentStore {
	m.deleteError = err
	return m
}

// Find returns copies of the matching documents.
func (m *DocumentStore) Find(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error) {
	m.mu.Lock()
	m.findCalls = append(m.findCalls, c.Clone())
	m.mu.Unlock()

	if m.findError != nil {
		return nil, m.findError
	}
	if m.findFunc != nil {
		return m.findFunc(ctx, c)
	}

	docs := m.match(c)
	if c != nil {
		storagemodels.SortDocuments(docs, c.Sort)
		docs = storagemodels.Window(docs, c.Offset, c.Limit)
	}
	return docs, nil
}

// Count returns the number of documents matching the filter of c.
func (m *DocumentStore) Count(ctx context.Context, c *storagemodels.Criteria) (int64, error) {
	m.mu.Lock()
	m.countCalls = append(m.countCalls, c.Clone())
	m.mu.Unlock()

	if m.countError != nil {
		return 0, m.countError
	}
	return int64(len(m.match(c))), nil
}

// Insert stores a copy of doc under its key field.
func (m *DocumentStore) Insert(ctx context.Context, doc storagemodels.Document) error {
	if m.insertError != nil {
		return m.insertError
	}

	key := m.extractKey(doc)
	if key == "" {
		return errors.NewValidationError(m.keyField, "unable to extract key from document")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[key]; exists {
		return errors.NewAlreadyExistsError("document", key)
	}
	m.keys = append(m.keys, key)
	m.docs[key] = doc.Clone()
	return nil
}

// Delete removes a document by key
func (m *DocumentStore) Delete(ctx context.Context, key string) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[key]; !exists {
		return errors.NewNotFoundError("document", key)
	}
	delete(m.docs, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Stream delivers the matching documents in insertion order, in pages of
// opts.PageSize.
func (m *DocumentStore) Stream(ctx context.Context, c *storagemodels.Criteria, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult, options.BufferSize)

	go func() {
		defer close(resultChan)

		docs := m.match(c)
		pageSize := int(options.PageSize)
		if pageSize <= 0 {
			pageSize = len(docs) + 1
		}

		for i, doc := range docs {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult{
				Item: doc,
				Meta: storagemodels.StreamMeta{
					Index:      int64(i),
					PageNumber: i/pageSize + 1,
					Timestamp:  time.Now(),
				},
			}:
			}
		}
	}()

	return resultChan
}

// Helper methods for testing

// Seed inserts docs, panicking on duplicate keys.
func (m *DocumentStore) Seed(docs ...storagemodels.Document) *DocumentStore {
	for _, doc := range docs {
		if err := m.Insert(context.Background(), doc); err != nil {
			panic(err)
		}
	}
	return m
}

// Documents returns copies of all stored documents in insertion order.
func (m *DocumentStore) Documents() []storagemodels.Document {
	return m.match(nil)
}

// Len returns the number of stored documents
func (m *DocumentStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Clear removes all documents and recorded calls
func (m *DocumentStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = nil
	m.docs = make(map[string]storagemodels.Document)
	m.findCalls = nil
	m.countCalls = nil
}

// FindCalls returns snapshots of the criteria passed to Find.
func (m *DocumentStore) FindCalls() []*storagemodels.Criteria {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*storagemodels.Criteria(nil), m.findCalls...)
}

// CountCalls returns snapshots of the criteria passed to Count.
func (m *DocumentStore) CountCalls() []*storagemodels.Criteria {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*storagemodels.Criteria(nil), m.countCalls...)
}

// LastFind returns the criteria of the most recent Find call, or nil.
func (m *DocumentStore) LastFind() *storagemodels.Criteria {
	calls := m.FindCalls()
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

// LastCount returns the criteria of the most recent Count call, or nil.
func (m *DocumentStore) LastCount() *storagemodels.Criteria {
	calls := m.CountCalls()
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

func (m *DocumentStore) match(c *storagemodels.Criteria) []storagemodels.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filter storagemodels.Document
	if c != nil {
		filter = c.Filter
	}

	results := make([]storagemodels.Document, 0, len(m.keys))
	for _, key := range m.keys {
		doc := m.docs[key]
		if storagemodels.Match(doc, filter) {
			results = append(results, doc.Clone())
		}
	}
	return results
}

func (m *DocumentStore) extractKey(doc storagemodels.Document) string {
	v, ok := doc[m.keyField]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
