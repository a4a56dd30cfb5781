/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/storagemodels"
)

var (
	_ datastore.DocumentStore = (*Store)(nil)
	_ datastore.Streamer      = (*Store)(nil)
	_ Collection              = (*mongodriver.Collection)(nil)
)

type fakeCollection struct {
	docs      []interface{}
	findErrs  []error
	countErr  error
	insertErr error
	deleted   int64

	findCalls  int
	lastFilter interface{}
	lastOpts   *options.FindOptions
	inserted   interface{}
}

func (f *fakeCollection) Name() string { return "galleries" }

func (f *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongodriver.Cursor, error) {
	f.findCalls++
	f.lastFilter = filter
	if len(opts) > 0 {
		f.lastOpts = opts[0]
	}
	if len(f.findErrs) > 0 {
		err := f.findErrs[0]
		f.findErrs = f.findErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return mongodriver.NewCursorFromDocuments(f.docs, nil, nil)
}

func (f *fakeCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	f.lastFilter = filter
	return int64(len(f.docs)), f.countErr
}

func (f *fakeCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongodriver.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = document
	return &mongodriver.InsertOneResult{}, nil
}

func (f *fakeCollection) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongodriver.DeleteResult, error) {
	f.lastFilter = filter
	return &mongodriver.DeleteResult{DeletedCount: f.deleted}, nil
}

func TestFindOptions(t *testing.T) {
	c := storagemodels.NewCriteria().
		SetLimit(20).
		SetOffset(40).
		SetSort([]storagemodels.SortField{
			{Field: "name", Direction: storagemodels.SortDesc},
			{Field: "address.zip", Direction: storagemodels.SortAsc},
		})
	c.Select = []string{"name"}

	opts := findOptions(c)
	require.NotNil(t, opts.Limit)
	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, bson.D{{Key: "name", Value: -1}, {Key: "address.zip", Value: 1}}, opts.Sort)
	assert.Equal(t, bson.M{"name": 1}, opts.Projection)

	empty := findOptions(storagemodels.NewCriteria())
	assert.Nil(t, empty.Limit)
	assert.Nil(t, empty.Skip)
	assert.Nil(t, empty.Sort)
}

func TestFilterOf(t *testing.T) {
	oid := primitive.NewObjectID()

	filter := filterOf(storagemodels.NewCriteria().
		AddCond("_id", oid.Hex()).
		AddCond("size", storagemodels.Document{"$gte": 3}))

	assert.Equal(t, bson.M{"$in": bson.A{oid.Hex(), oid}}, filter["_id"])
	assert.Equal(t, bson.M{"$gte": 3}, filter["size"])

	assert.Equal(t, bson.M{"_id": "plain-key"}, idFilter("plain-key"))
	assert.Equal(t, bson.M{}, filterOf(nil))
}

func TestNormalize(t *testing.T) {
	oid := primitive.NewObjectID()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	doc := normalizeDocument(bson.M{
		"_id":     oid,
		"created": primitive.NewDateTimeFromTime(at),
		"address": bson.D{{Key: "zip", Value: "10115"}},
		"shapes":  bson.A{bson.M{"type": "Circle"}, map[string]any{"type": "Square"}},
	})

	assert.Equal(t, oid.Hex(), doc["_id"])
	assert.True(t, at.Equal(doc["created"].(time.Time)))
	assert.Equal(t, storagemodels.Document{"zip": "10115"}, doc["address"])
	assert.Equal(t, []any{
		storagemodels.Document{"type": "Circle"},
		storagemodels.Document{"type": "Square"},
	}, doc["shapes"])
}

func TestToBSON(t *testing.T) {
	out := toBSON(storagemodels.Document{
		"name":   "g",
		"shapes": []any{storagemodels.Document{"type": "Circle", "points": []any{map[string]any{"x": 1}}}},
	})

	assert.Equal(t, bson.M{
		"name":   "g",
		"shapes": bson.A{bson.M{"type": "Circle", "points": bson.A{bson.M{"x": 1}}}},
	}, out)
}

func TestStoreOperations(t *testing.T) {
	ctx := context.Background()
	oid := primitive.NewObjectID()

	coll := &fakeCollection{
		docs: []interface{}{
			bson.M{"_id": oid, "name": "first", "shapes": bson.A{bson.M{"type": "Circle", "radius": 5}}},
			bson.M{"_id": "second", "name": "second"},
		},
	}
	store, err := New(coll)
	require.NoError(t, err)

	t.Run("find", func(t *testing.T) {
		docs, err := store.Find(ctx, storagemodels.NewCriteria().SetLimit(2))
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, oid.Hex(), docs[0]["_id"])
		shapes := docs[0]["shapes"].([]any)
		assert.Equal(t, "Circle", shapes[0].(storagemodels.Document)["type"])
		assert.Equal(t, int64(2), *coll.lastOpts.Limit)
	})

	t.Run("count", func(t *testing.T) {
		n, err := store.Count(ctx, storagemodels.NewCriteria().AddCond("name", "first"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, bson.M{"name": "first"}, coll.lastFilter)
	})

	t.Run("insert", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, storagemodels.Document{"_id": "x", "tags": []any{"a"}}))
		assert.Equal(t, bson.M{"_id": "x", "tags": bson.A{"a"}}, coll.inserted)

		coll.insertErr = mongodriver.WriteException{
			WriteErrors: mongodriver.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
		}
		err := store.Insert(ctx, storagemodels.Document{"_id": "x"})
		assert.True(t, errors.IsAlreadyExists(err))
		coll.insertErr = nil
	})

	t.Run("delete", func(t *testing.T) {
		coll.deleted = 0
		assert.True(t, errors.IsNotFound(store.Delete(ctx, "missing")))

		coll.deleted = 1
		assert.NoError(t, store.Delete(ctx, "second"))
		assert.Equal(t, bson.M{"_id": "second"}, coll.lastFilter)
	})

	t.Run("store errors propagate", func(t *testing.T) {
		boom := stderrors.New("boom")
		coll.countErr = boom
		_, err := store.Count(ctx, nil)
		assert.ErrorIs(t, err, boom)
		coll.countErr = nil
	})
}

func TestStoreStream(t *testing.T) {
	ctx := context.Background()

	coll := &fakeCollection{
		docs:     []interface{}{bson.M{"_id": "a"}, bson.M{"_id": "b"}, bson.M{"_id": "c"}},
		findErrs: []error{stderrors.New("transient")},
	}
	store, err := New(coll)
	require.NoError(t, err)

	var progress []storagemodels.StreamProgress
	var ids []any
	for result := range store.Stream(ctx, nil,
		storagemodels.WithRetryBackoff(time.Millisecond),
		storagemodels.WithPageSize(10),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) { progress = append(progress, p) }),
	) {
		require.NoError(t, result.Error)
		ids = append(ids, result.Item["_id"])
	}

	assert.Equal(t, []any{"a", "b", "c"}, ids)
	assert.Equal(t, 2, coll.findCalls)
	assert.Equal(t, int32(10), *coll.lastOpts.BatchSize)
	require.Len(t, progress, 1)
	assert.Equal(t, int64(3), progress[0].ItemsProcessed)

	t.Run("gives up after max retries", func(t *testing.T) {
		coll := &fakeCollection{findErrs: []error{stderrors.New("down"), stderrors.New("down")}}
		store, err := New(coll)
		require.NoError(t, err)

		var results []storagemodels.StreamResult
		for r := range store.Stream(ctx, nil, storagemodels.WithMaxRetries(1), storagemodels.WithRetryBackoff(time.Millisecond)) {
			results = append(results, r)
		}
		require.Len(t, results, 1)
		assert.Error(t, results[0].Error)
		assert.Equal(t, 2, coll.findCalls)
	})
}

func TestNewRequiresCollection(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.IsConfigurationError(err))
}
