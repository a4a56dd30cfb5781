/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/datastore/mock"
	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/storagemodels"
)

var (
	_ datastore.DocumentStore = (*mock.DocumentStore)(nil)
	_ datastore.Streamer      = (*mock.DocumentStore)(nil)
)

func seeded() *mock.DocumentStore {
	return mock.New().Seed(
		storagemodels.Document{"_id": "1", "name": "One", "rank": 3},
		storagemodels.Document{"_id": "2", "name": "Two", "rank": 1},
		storagemodels.Document{"_id": "3", "name": "Three", "rank": 2},
	)
}

func TestMockDocumentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		mockStore := mock.New()

		doc := storagemodels.Document{"_id": "123", "name": "Test"}
		if err := mockStore.Insert(ctx, doc); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		// stored copy is isolated from the caller
		doc["name"] = "Changed"

		found, err := mockStore.Find(ctx, storagemodels.NewCriteria().AddCond("_id", "123"))
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if len(found) != 1 || found[0]["name"] != "Test" {
			t.Fatalf("Retrieved document mismatch: %+v", found)
		}

		if err := mockStore.Insert(ctx, storagemodels.Document{"_id": "123"}); !errors.IsAlreadyExists(err) {
			t.Fatalf("Expected already exists error, got: %v", err)
		}

		if err := mockStore.Delete(ctx, "123"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := mockStore.Delete(ctx, "123"); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}

		if err := mockStore.Insert(ctx, storagemodels.Document{"name": "keyless"}); !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error, got: %v", err)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		findErr := stderrors.New("find failed")
		countErr := stderrors.New("count failed")
		insertErr := errors.NewValidationError("name", "required")
		deleteErr := stderrors.New("delete failed")

		mockStore := seeded().
			WithFindError(findErr).
			WithCountError(countErr).
			WithInsertError(insertErr).
			WithDeleteError(deleteErr)

		if _, err := mockStore.Find(ctx, nil); err != findErr {
			t.Fatalf("Expected find error, got: %v", err)
		}
		if _, err := mockStore.Count(ctx, nil); err != countErr {
			t.Fatalf("Expected count error, got: %v", err)
		}
		if err := mockStore.Insert(ctx, storagemodels.Document{"_id": "9"}); err != insertErr {
			t.Fatalf("Expected insert error, got: %v", err)
		}
		if err := mockStore.Delete(ctx, "1"); err != deleteErr {
			t.Fatalf("Expected delete error, got: %v", err)
		}
	})

	t.Run("FindAndCount", func(t *testing.T) {
		mockStore := seeded()

		c := storagemodels.NewCriteria().
			AddCond("rank", storagemodels.Document{"$gte": 2}).
			SetSort([]storagemodels.SortField{{Field: "rank", Direction: storagemodels.SortAsc}})

		n, err := mockStore.Count(ctx, c)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if n != 2 {
			t.Fatalf("Expected count 2, got %d", n)
		}

		c.SetLimit(1).SetOffset(1)
		found, err := mockStore.Find(ctx, c)
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if len(found) != 1 || found[0]["_id"] != "1" {
			t.Fatalf("Expected document 1, got %+v", found)
		}

		last := mockStore.LastFind()
		if last == nil || last.Limit != 1 || last.Offset != 1 {
			t.Fatalf("Expected recorded find criteria, got %+v", last)
		}
		if last == c {
			t.Fatalf("Recorded criteria must be a snapshot")
		}
		if got := mockStore.LastCount(); got == nil || got.Limit != 0 {
			t.Fatalf("Expected count snapshot without limit, got %+v", got)
		}
	})

	t.Run("CustomFindFunction", func(t *testing.T) {
		mockStore := mock.New().WithFindFunc(func(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error) {
			return []storagemodels.Document{{"_id": "1", "name": "Filtered"}}, nil
		})

		results, err := mockStore.Find(ctx, storagemodels.NewCriteria())
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(results))
		}
		if len(mockStore.FindCalls()) != 1 {
			t.Fatalf("Expected the call to be recorded")
		}
	})

	t.Run("Stream", func(t *testing.T) {
		mockStore := seeded()

		streamCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		defer cancel()

		count := 0
		pages := map[int]bool{}
		for result := range mockStore.Stream(streamCtx, nil, storagemodels.WithPageSize(2)) {
			if result.Error != nil {
				t.Fatalf("Stream error: %v", result.Error)
			}
			pages[result.Meta.PageNumber] = true
			count++
		}
		if count != 3 {
			t.Fatalf("Expected 3 streamed items, got %d", count)
		}
		if len(pages) != 2 {
			t.Fatalf("Expected 2 pages, got %d", len(pages))
		}
	})

	t.Run("HelperMethods", func(t *testing.T) {
		mockStore := seeded()

		if mockStore.Len() != 3 {
			t.Fatalf("Expected len 3, got %d", mockStore.Len())
		}
		if docs := mockStore.Documents(); docs[0]["_id"] != "1" || docs[2]["_id"] != "3" {
			t.Fatalf("Expected insertion order, got %+v", docs)
		}

		mockStore.Clear()
		if mockStore.Len() != 0 {
			t.Fatalf("Expected len 0 after clear, got %d", mockStore.Len())
		}
		if mockStore.LastFind() != nil {
			t.Fatalf("Expected recorded calls to be cleared")
		}
	})

	t.Run("CustomKeyField", func(t *testing.T) {
		mockStore := mock.New().WithKeyField("email")
		if err := mockStore.Insert(ctx, storagemodels.Document{"email": "ada@example.com"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if err := mockStore.Delete(ctx, "ada@example.com"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	})
}
