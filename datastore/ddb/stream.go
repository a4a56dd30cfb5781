/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docmapper/storagemodels"
)

// Stream pages through the documents matching c with configurable options.
// Sort, limit and offset of c are not applied.
func (d *DynamodbDocumentStore) Stream(ctx context.Context, c *storagemodels.Criteria, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.ApplyStreamOptions(opts...)

	req, err := d.buildRequest(c, "")
	if err != nil {
		failed := make(chan storagemodels.StreamResult, 1)
		failed <- storagemodels.StreamResult{Error: err}
		close(failed)
		return failed
	}

	// Create buffered result channel
	resultCh := make(chan storagemodels.StreamResult, options.BufferSize)
	if options.PageSize > 0 {
		req.limit = &options.PageSize
	}

	// Start streaming in background
	go d.streamWorker(ctx, req, options, resultCh)

	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *DynamodbDocumentStore) streamWorker(
	ctx context.Context,
	req *pageRequest,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult,
) {
	defer close(resultCh)

	// Initialize progress tracking
	var itemIndex int64
	var pageNumber int
	startTime := time.Now()
	var errs []error
	var mu sync.Mutex

	// Progress reporting helper
	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: atomic.LoadInt64(&itemIndex),
			PagesProcessed: pageNumber,
			LastKey:        lastKeyDocument(lastKey),
			Errors:         errs,
			StartTime:      startTime,
		}

		elapsed := time.Since(startTime).Seconds()
		if elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}

		options.ProgressHandler(progress)
	}

	fail := func(err error) {
		d.logger.Error("dynamodb stream failed", "collection", d.collection, "error", err.Error())
		select {
		case <-ctx.Done():
		case resultCh <- storagemodels.StreamResult{
			Error: err,
			Meta: storagemodels.StreamMeta{
				Index:      atomic.LoadInt64(&itemIndex),
				PageNumber: pageNumber,
				Timestamp:  time.Now(),
			},
		}:
		}
	}

	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Execute page with retry logic
		out, err := d.fetchPageWithRetry(ctx, req, lastEvaluatedKey, options)
		if err != nil {
			if options.ErrorHandler == nil || !options.ErrorHandler(err) {
				fail(err)
				return
			}
			// Record error and skip to the end; the page cursor cannot advance past a failed page
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}

		pageNumber++

		// Process items in current page
		for _, item := range out.items {
			result := storagemodels.StreamResult{
				Meta: storagemodels.StreamMeta{
					Index:      atomic.LoadInt64(&itemIndex),
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}
			result.Item, result.Error = d.itemToDocument(item)
			atomic.AddInt64(&itemIndex, 1)

			// Send result
			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}

			// Record any item-level errors
			if result.Error != nil {
				mu.Lock()
				errs = append(errs, result.Error)
				mu.Unlock()
			}
		}

		// Report progress after each page
		reportProgress(out.lastKey)

		// Check for more pages
		if len(out.lastKey) == 0 {
			break
		}
		lastEvaluatedKey = out.lastKey
	}

	d.logger.Info("dynamodb stream completed",
		"collection", d.collection,
		"items", atomic.LoadInt64(&itemIndex),
		"pages", pageNumber,
		"duration_ms", time.Since(startTime).Milliseconds())
}

// fetchPageWithRetry executes one page with configurable retry logic
func (d *DynamodbDocumentStore) fetchPageWithRetry(
	ctx context.Context,
	req *pageRequest,
	startKey map[string]types.AttributeValue,
	options storagemodels.StreamOptions,
) (*page, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		// Check context before retry
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := d.fetchPage(ctx, req, startKey)
		if err == nil {
			return out, nil
		}

		lastErr = err

		// Check if error is retryable
		if !isRetryableError(err) {
			return nil, err
		}

		// Don't sleep after last attempt
		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			d.logger.Warn("retrying dynamodb page", "collection", d.collection, "attempt", attempt+1, "backoff", backoff.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("page failed after %d retries: %w", options.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if stderrors.As(err, &throughput) || stderrors.As(err, &limit) || stderrors.As(err, &internal) {
		return true
	}

	// Check for AWS SDK retryable errors
	var awsErr interface{ IsRetryable() bool }
	if stderrors.As(err, &awsErr) {
		return awsErr.IsRetryable()
	}

	return false
}

func lastKeyDocument(key map[string]types.AttributeValue) storagemodels.Document {
	if len(key) == 0 {
		return nil
	}
	var raw map[string]any
	if err := attributevalue.UnmarshalMap(key, &raw); err != nil {
		return nil
	}
	return normalizeMap(raw)
}
