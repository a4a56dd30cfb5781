/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/docmapper/storagemodels"
)

// DocumentStore is the persistence collaborator: find, count and insert
// operations over already-serialized documents of one collection.
type DocumentStore interface {
	// Find returns the raw documents matching c, honoring its sort, limit and offset.
	Find(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error)

	// Count returns the number of documents matching the filter of c. Sort,
	// limit and offset are ignored.
	Count(ctx context.Context, c *storagemodels.Criteria) (int64, error)

	// Insert stores doc. A document whose key already exists yields an
	// AlreadyExists error.
	Insert(ctx context.Context, doc storagemodels.Document) error

	// Delete removes the document with the given key.
	Delete(ctx context.Context, key string) error
}

// Streamer is implemented by stores able to deliver a collection in pages
// without materializing it.
type Streamer interface {
	Stream(ctx context.Context, c *storagemodels.Criteria, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult
}

// Logger is the minimal logging surface used across docmapper. A nil Logger
// disables logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
