/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docmapper/storagemodels"
)

func streamPages(t *testing.T) [][]map[string]types.AttributeValue {
	return [][]map[string]types.AttributeValue{
		{item(t, map[string]any{"_id": "a"}), item(t, map[string]any{"_id": "b"})},
		{item(t, map[string]any{"_id": "c"})},
	}
}

// TestStreamWithOptions tests the streaming with various options
func TestStreamWithOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("PageSize", func(t *testing.T) {
		client := &fakeClient{pages: streamPages(t)}
		ds := newTestStore(t, client)

		count := 0
		for result := range ds.Stream(ctx, nil, storagemodels.WithPageSize(2), storagemodels.WithBufferSize(1)) {
			if result.Error != nil {
				t.Fatalf("Unexpected error: %v", result.Error)
			}
			count++
		}

		if count != 3 {
			t.Fatalf("Expected 3 items, got %d", count)
		}
		if *client.scanInputs[0].Limit != 2 {
			t.Errorf("Expected page limit 2, got %d", *client.scanInputs[0].Limit)
		}
	})

	t.Run("ProgressHandler", func(t *testing.T) {
		ds := newTestStore(t, &fakeClient{pages: streamPages(t)})

		var progressCalled int32
		var last storagemodels.StreamProgress
		progressHandler := func(p storagemodels.StreamProgress) {
			atomic.AddInt32(&progressCalled, 1)
			last = p
		}

		for range ds.Stream(ctx, nil, storagemodels.WithProgressHandler(progressHandler)) {
			// Just consume
		}

		if atomic.LoadInt32(&progressCalled) != 2 {
			t.Errorf("Expected progress after each of 2 pages, got %d", progressCalled)
		}
		if last.ItemsProcessed != 3 || last.PagesProcessed != 2 {
			t.Errorf("Unexpected final progress: %+v", last)
		}
	})

	t.Run("RetriesThrottledPages", func(t *testing.T) {
		client := &fakeClient{
			pages:    streamPages(t),
			pageErrs: []error{&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}},
		}
		ds := newTestStore(t, client)

		count := 0
		for result := range ds.Stream(ctx, nil, storagemodels.WithRetryBackoff(time.Millisecond)) {
			if result.Error != nil {
				t.Fatalf("Unexpected error: %v", result.Error)
			}
			count++
		}
		if count != 3 {
			t.Fatalf("Expected 3 items after retry, got %d", count)
		}
		if len(client.scanInputs) != 3 {
			t.Errorf("Expected 3 scan calls, got %d", len(client.scanInputs))
		}
	})

	t.Run("ErrorHandler", func(t *testing.T) {
		client := &fakeClient{pages: streamPages(t), pageErrs: []error{fmt.Errorf("access denied")}}
		ds := newTestStore(t, client)

		errorCount := 0
		errorHandler := func(err error) bool {
			errorCount++
			return false // Stop on error
		}

		var results []storagemodels.StreamResult
		for result := range ds.Stream(ctx, nil,
			storagemodels.WithErrorHandler(errorHandler),
			storagemodels.WithMaxRetries(0),
		) {
			results = append(results, result)
		}

		if errorCount != 1 {
			t.Errorf("Expected error handler to be called once, got %d", errorCount)
		}
		if len(results) != 1 || results[0].Error == nil {
			t.Fatalf("Expected a single error result, got %+v", results)
		}
	})

	t.Run("InvalidFilter", func(t *testing.T) {
		ds := newTestStore(t, &fakeClient{})
		c := storagemodels.NewCriteria().AddCond("name", storagemodels.Document{"$regex": "a"})

		var results []storagemodels.StreamResult
		for result := range ds.Stream(ctx, c) {
			results = append(results, result)
		}
		if len(results) != 1 || results[0].Error == nil {
			t.Fatalf("Expected a single error result, got %+v", results)
		}
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		ds := newTestStore(t, &fakeClient{pages: streamPages(t)})

		cancelCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		received := 0
		for range ds.Stream(cancelCtx, nil, storagemodels.WithBufferSize(0)) {
			received++
			cancel()
		}

		if received == 0 || received > 2 {
			t.Errorf("Expected the stream to stop shortly after cancellation, got %d items", received)
		}
	})
}

// TestStreamRetryLogic tests the retry classification
func TestStreamRetryLogic(t *testing.T) {
	err1 := &types.ProvisionedThroughputExceededException{}
	if !isRetryableError(err1) {
		t.Error("ProvisionedThroughputExceededException should be retryable")
	}

	err2 := fmt.Errorf("wrapped: %w", &types.RequestLimitExceeded{})
	if !isRetryableError(err2) {
		t.Error("RequestLimitExceeded should be retryable")
	}

	err3 := fmt.Errorf("some other error")
	if isRetryableError(err3) {
		t.Error("Generic error should not be retryable")
	}
}

// TestStreamMetadata tests that metadata is correctly populated
func TestStreamMetadata(t *testing.T) {
	ds := newTestStore(t, &fakeClient{pages: streamPages(t)})

	var lastIndex int64 = -1
	startTime := time.Now()
	pages := map[int]int{}

	for result := range ds.Stream(context.Background(), nil) {
		if result.Error != nil {
			t.Errorf("Unexpected error: %v", result.Error)
			continue
		}

		if result.Meta.Index <= lastIndex {
			t.Errorf("Index should be increasing: got %d after %d", result.Meta.Index, lastIndex)
		}
		lastIndex = result.Meta.Index
		pages[result.Meta.PageNumber]++

		if result.Meta.Timestamp.Before(startTime) {
			t.Error("Timestamp should be after test start time")
		}
		if result.Item["_id"] == nil {
			t.Error("Item should carry its _id")
		}
	}

	if pages[1] != 2 || pages[2] != 1 {
		t.Errorf("Unexpected page distribution: %v", pages)
	}
}
