/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/suparena/docmapper/storagemodels"
)

// Stream delivers the documents matching c over a cursor fetched in batches of
// opts.PageSize. Opening the cursor is retried with backoff.
func (s *Store) Stream(ctx context.Context, c *storagemodels.Criteria, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult, options.BufferSize)

	go func() {
		defer close(resultChan)

		progress := storagemodels.StreamProgress{StartTime: time.Now()}

		cursor, err := s.openCursor(ctx, c, options)
		if err != nil {
			s.sendError(ctx, resultChan, err)
			return
		}
		defer cursor.Close(ctx)

		page := 1
		for cursor.Next(ctx) {
			var raw bson.M
			result := storagemodels.StreamResult{
				Meta: storagemodels.StreamMeta{
					Index:      progress.ItemsProcessed,
					PageNumber: page,
					Timestamp:  time.Now(),
				},
			}
			if err := cursor.Decode(&raw); err != nil {
				result.Error = fmt.Errorf("decoding document from %s: %w", s.coll.Name(), err)
				progress.Errors = append(progress.Errors, result.Error)
				if options.ErrorHandler != nil && !options.ErrorHandler(result.Error) {
					s.sendError(ctx, resultChan, result.Error)
					return
				}
			} else {
				result.Item = normalizeDocument(raw)
				progress.LastKey = storagemodels.Document{"_id": result.Item["_id"]}
			}

			select {
			case <-ctx.Done():
				return
			case resultChan <- result:
			}
			progress.ItemsProcessed++

			if cursor.RemainingBatchLength() == 0 {
				progress.PagesProcessed = page
				s.reportProgress(options, &progress)
				page++
			}
		}

		if err := cursor.Err(); err != nil && ctx.Err() == nil {
			s.sendError(ctx, resultChan, fmt.Errorf("iterating %s: %w", s.coll.Name(), err))
			return
		}

		s.logger.Info("mongo stream completed",
			"collection", s.coll.Name(),
			"items", progress.ItemsProcessed,
			"duration_ms", time.Since(progress.StartTime).Milliseconds())
	}()

	return resultChan
}

func (s *Store) openCursor(ctx context.Context, c *storagemodels.Criteria, options storagemodels.StreamOptions) (*mongodriver.Cursor, error) {
	findOpts := findOptions(c)
	if options.PageSize > 0 {
		findOpts.SetBatchSize(options.PageSize)
	}

	var lastErr error
	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := options.RetryBackoff * time.Duration(1<<uint(attempt-1))
			s.logger.Warn("retrying mongo stream", "collection", s.coll.Name(), "attempt", attempt, "backoff", backoff.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		cursor, err := s.coll.Find(ctx, filterOf(c), findOpts)
		if err == nil {
			return cursor, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("opening cursor on %s after %d attempts: %w", s.coll.Name(), options.MaxRetries+1, lastErr)
}

func (s *Store) reportProgress(options storagemodels.StreamOptions, progress *storagemodels.StreamProgress) {
	if options.ProgressHandler == nil {
		return
	}
	if elapsed := time.Since(progress.StartTime).Seconds(); elapsed > 0 {
		progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
	}
	options.ProgressHandler(*progress)
}

func (s *Store) sendError(ctx context.Context, resultChan chan<- storagemodels.StreamResult, err error) {
	s.logger.Error("mongo stream failed", "collection", s.coll.Name(), "error", err.Error())
	select {
	case <-ctx.Done():
	case resultChan <- storagemodels.StreamResult{Error: err}:
	}
}
