/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/storagemodels"
)

// Collection is the subset of *mongo.Collection used by Store.
type Collection interface {
	Name() string
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongodriver.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongodriver.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongodriver.DeleteResult, error)
}

// Store is a DocumentStore backed by one MongoDB collection.
type Store struct {
	coll   Collection
	client *mongodriver.Client
	logger datastore.Logger
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
func WithLogger(logger datastore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// New creates a Store over an existing collection handle.
func New(coll Collection, opts ...Option) (*Store, error) {
	if coll == nil {
		return nil, errors.NewConfigurationError("mongo store", "collection is required")
	}
	s := &Store{coll: coll}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = datastore.OrNop(s.logger)
	return s, nil
}

// Open connects to uri and returns a Store for database.collection. The
// connection is released by Close.
func Open(ctx context.Context, uri, database, collection string, opts ...Option) (*Store, error) {
	if database == "" || collection == "" {
		return nil, errors.NewConfigurationError("mongo store", "database and collection are required")
	}
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	s, err := New(client.Database(database).Collection(collection), opts...)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s.client = client
	return s, nil
}

// Close disconnects the client opened by Open. It is a no-op for stores built with New.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Find returns the documents matching c.
func (s *Store) Find(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error) {
	start := time.Now()
	cursor, err := s.coll.Find(ctx, filterOf(c), findOptions(c))
	if err != nil {
		s.logger.Error("mongo find failed", "collection", s.coll.Name(), "error", err.Error())
		return nil, fmt.Errorf("find in %s: %w", s.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var results []storagemodels.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding document from %s: %w", s.coll.Name(), err)
		}
		results = append(results, normalizeDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", s.coll.Name(), err)
	}

	s.logger.Debug("mongo find", "collection", s.coll.Name(), "results", len(results), "duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

// Count returns the number of documents matching the filter of c.
func (s *Store) Count(ctx context.Context, c *storagemodels.Criteria) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, filterOf(c))
	if err != nil {
		s.logger.Error("mongo count failed", "collection", s.coll.Name(), "error", err.Error())
		return 0, fmt.Errorf("count in %s: %w", s.coll.Name(), err)
	}
	return n, nil
}

// Insert stores doc. Duplicate keys are reported as AlreadyExists errors.
func (s *Store) Insert(ctx context.Context, doc storagemodels.Document) error {
	if _, err := s.coll.InsertOne(ctx, toBSON(doc)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return errors.NewAlreadyExistsError(s.coll.Name(), fmt.Sprint(doc["_id"]))
		}
		return fmt.Errorf("insert into %s: %w", s.coll.Name(), err)
	}
	s.logger.Debug("mongo insert", "collection", s.coll.Name(), "id", doc["_id"])
	return nil
}

// Delete removes the document whose _id is key.
func (s *Store) Delete(ctx context.Context, key string) error {
	res, err := s.coll.DeleteOne(ctx, idFilter(key))
	if err != nil {
		return fmt.Errorf("delete from %s: %w", s.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return errors.NewNotFoundError(s.coll.Name(), key)
	}
	return nil
}

func findOptions(c *storagemodels.Criteria) *options.FindOptions {
	opts := options.Find()
	if c == nil {
		return opts
	}
	if c.Limit > 0 {
		opts.SetLimit(c.Limit)
	}
	if c.Offset > 0 {
		opts.SetSkip(c.Offset)
	}
	if len(c.Sort) > 0 {
		sort := make(bson.D, 0, len(c.Sort))
		for _, sf := range c.Sort {
			sort = append(sort, bson.E{Key: sf.Field, Value: int(sf.Direction)})
		}
		opts.SetSort(sort)
	}
	if len(c.Select) > 0 {
		projection := bson.M{}
		for _, f := range c.Select {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	}
	return opts
}

// filterOf translates the filter of c. Hex strings on _id also match the
// equivalent ObjectID, since results expose ObjectIDs as hex strings.
func filterOf(c *storagemodels.Criteria) bson.M {
	if c == nil || len(c.Filter) == 0 {
		return bson.M{}
	}
	filter := toBSON(c.Filter)
	if id, ok := c.Filter["_id"].(string); ok {
		filter["_id"] = idFilter(id)["_id"]
	}
	return filter
}

func idFilter(key string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(key); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{key, oid}}}
	}
	return bson.M{"_id": key}
}
