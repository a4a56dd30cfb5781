/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/storagemodels"
)

// DefaultKeyField is the attribute holding a record's key.
const DefaultKeyField = "_id"

// Repository finds, counts and inserts records of type T in one collection.
//
// It carries an accumulated scope: criteria added through Scope apply to the
// next FindAll or Count and are reset by it.
type Repository[T Record] struct {
	store     datastore.DocumentStore
	newRecord func() T
	keyField  string
	logger    datastore.Logger

	defaultScope *storagemodels.Criteria
	scope        *storagemodels.Criteria
}

type repositoryConfig struct {
	defaultScope *storagemodels.Criteria
	keyField     string
	logger       datastore.Logger
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*repositoryConfig) error

// WithDefaultScope sets the criteria every fresh scope starts from.
func WithDefaultScope(c *storagemodels.Criteria) RepositoryOption {
	return func(cfg *repositoryConfig) error {
		cfg.defaultScope = c.Clone()
		return nil
	}
}

// WithRepositoryKeyField sets the attribute used as the document key.
func WithRepositoryKeyField(field string) RepositoryOption {
	return func(cfg *repositoryConfig) error {
		if field == "" {
			return errors.NewConfigurationError("repository", "key field must not be empty")
		}
		cfg.keyField = field
		return nil
	}
}

// WithRepositoryLogger sets the logger.
func WithRepositoryLogger(logger datastore.Logger) RepositoryOption {
	return func(cfg *repositoryConfig) error {
		cfg.logger = logger
		return nil
	}
}

// NewRepository returns a repository storing the records made by newRecord in store.
func NewRepository[T Record](store datastore.DocumentStore, newRecord func() T, opts ...RepositoryOption) (*Repository[T], error) {
	if store == nil {
		return nil, errors.NewConfigurationError("repository", "document store is required")
	}
	if newRecord == nil {
		return nil, errors.NewConfigurationError("repository", "record constructor is required")
	}

	cfg := &repositoryConfig{keyField: DefaultKeyField}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Repository[T]{
		store:        store,
		newRecord:    newRecord,
		keyField:     cfg.keyField,
		logger:       datastore.OrNop(cfg.logger),
		defaultScope: cfg.defaultScope,
	}, nil
}

// Model returns a fresh record, used to inspect declared attributes.
func (r *Repository[T]) Model() T {
	return r.newRecord()
}

// KeyField returns the key attribute name.
func (r *Repository[T]) KeyField() string {
	return r.keyField
}

// Store returns the underlying document store.
func (r *Repository[T]) Store() datastore.DocumentStore {
	return r.store
}

// DbCriteria returns the live accumulated scope, creating it from the default
// scope when none is active. The returned pointer is shared.
func (r *Repository[T]) DbCriteria() *storagemodels.Criteria {
	if r.scope == nil {
		if r.defaultScope != nil {
			r.scope = r.defaultScope.Clone()
		} else {
			r.scope = storagemodels.NewCriteria()
		}
	}
	return r.scope
}

// Scope merges c into the accumulated scope.
func (r *Repository[T]) Scope(c *storagemodels.Criteria) *Repository[T] {
	r.DbCriteria().MergeWith(c)
	return r
}

// ResetScope drops the accumulated scope. The next DbCriteria starts over
// from the default scope.
func (r *Repository[T]) ResetScope() {
	r.scope = nil
}

// FindAll returns the records matching the accumulated scope merged with c.
// c is left untouched and the scope is reset.
func (r *Repository[T]) FindAll(ctx context.Context, c *storagemodels.Criteria) ([]T, error) {
	criteria := r.DbCriteria().Clone().MergeWith(c)
	r.ResetScope()

	docs, err := r.store.Find(ctx, criteria)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := r.Populate(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	r.logger.Debug("found records", "count", len(records), "limit", criteria.Limit, "offset", criteria.Offset)
	return records, nil
}

// FindOne returns the first record matching the scope merged with c, or a
// NotFound error.
func (r *Repository[T]) FindOne(ctx context.Context, c *storagemodels.Criteria) (T, error) {
	criteria := c.Clone()
	if criteria == nil {
		criteria = storagemodels.NewCriteria()
	}
	criteria.SetLimit(1)

	var zero T
	records, err := r.FindAll(ctx, criteria)
	if err != nil {
		return zero, err
	}
	if len(records) == 0 {
		return zero, errors.NewNotFoundError(recordName(zero), fmt.Sprint(criteria.Filter))
	}
	return records[0], nil
}

// Count returns the number of documents matching the accumulated scope
// merged with c.
//
// Count merges the scope into c itself and resets the scope, so c is modified
// by the call. Callers that keep c must clone it first.
func (r *Repository[T]) Count(ctx context.Context, c *storagemodels.Criteria) (int64, error) {
	if c == nil {
		c = storagemodels.NewCriteria()
	}
	c.MergeWith(r.DbCriteria())
	r.ResetScope()

	return r.store.Count(ctx, c)
}

// Populate returns a new record holding the attributes of doc, with its
// embedded arrays in typed form.
func (r *Repository[T]) Populate(doc storagemodels.Document) (T, error) {
	rec := r.newRecord()
	if err := SetAttributes(rec, doc); err != nil {
		var zero T
		return zero, err
	}
	if err := InitEmbeddedDocuments(rec); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to initialize embedded documents of %s: %w", recordName(rec), err)
	}
	return rec, nil
}

// Insert validates rec, assigns a key when it has none, and stores its document.
// An invalid record is reported as a ValidationError naming the first failing attribute.
func (r *Repository[T]) Insert(ctx context.Context, rec T) error {
	valid, err := Validate(rec, true)
	if err != nil {
		return err
	}
	if !valid {
		errs := rec.Errors()
		return errors.NewValidationError(errs.Attributes()[0], errs.String())
	}

	if key, ok := Attribute(rec, r.keyField); !ok || key == nil || key == "" {
		if err := SetAttributes(rec, storagemodels.Document{r.keyField: uuid.NewString()}); err != nil {
			return err
		}
	}

	doc, err := ToDocument(rec)
	if err != nil {
		return err
	}
	if err := r.store.Insert(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert %s: %w", recordName(rec), err)
	}
	r.logger.Debug("inserted record", "type", recordName(rec), "key", doc[r.keyField])
	return nil
}

// Delete removes the document stored under key.
func (r *Repository[T]) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}
