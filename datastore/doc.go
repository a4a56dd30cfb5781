/*
Package datastore defines the persistence contract consumed by docmapper.

The main interface is DocumentStore, which works on raw documents of a single
collection:

	type DocumentStore interface {
	    Find(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error)
	    Count(ctx context.Context, c *storagemodels.Criteria) (int64, error)
	    Insert(ctx context.Context, doc storagemodels.Document) error
	    Delete(ctx context.Context, key string) error
	}

Stores that can page through a collection lazily also implement Streamer.

Implementations:
  - mongo: MongoDB, one store per collection
  - ddb: DynamoDB with single-table design and index-map key macros
  - mock: in-memory implementation for testing

Typed records are produced one level up, by model.Repository.
*/
package datastore
