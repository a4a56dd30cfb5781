/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docmapper

import (
	"context"
	"fmt"

	"github.com/suparena/docmapper/config"
	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/datastore/ddb"
	"github.com/suparena/docmapper/datastore/mock"
	"github.com/suparena/docmapper/datastore/mongo"
	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/processor"
)

// OpenStore connects to the store of the configured collection. The memory
// backend keeps documents in process and starts empty. A MongoDB store must
// be closed by the caller; Storage.Close does that for registered stores.
func OpenStore(ctx context.Context, cfg *config.Config, logger datastore.Logger) (datastore.DocumentStore, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("storage", "config is required")
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return mock.New().WithKeyField(cfg.KeyField), nil

	case config.BackendMongo:
		return mongo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Collection, mongo.WithLogger(logger))

	case config.BackendDynamoDB:
		indexMaps, err := processor.LoadIndexMaps(cfg.IndexMaps)
		if err != nil {
			return nil, err
		}
		client, err := ddb.NewDynamoDBClient(ctx,
			cfg.DynamoDB.AccessKey,
			cfg.DynamoDB.SecretKey,
			cfg.DynamoDB.Region,
			cfg.DynamoDB.Endpoint,
		)
		if err != nil {
			return nil, err
		}
		opts := []ddb.Option{ddb.WithLogger(logger)}
		if cfg.DynamoDB.PageSize > 0 {
			opts = append(opts, ddb.WithPageSize(cfg.DynamoDB.PageSize))
		}
		return ddb.NewDynamodbDocumentStore(client, cfg.DynamoDB.Table, cfg.Collection, indexMaps, opts...)
	}
	return nil, errors.NewConfigurationError("storage", "unknown backend %q", cfg.Backend)
}

// Open connects to the configured store and registers it in s under the
// configured collection name.
func Open(ctx context.Context, s Storage, cfg *config.Config, logger datastore.Logger) (datastore.DocumentStore, error) {
	if s == nil || cfg == nil {
		return nil, errors.NewConfigurationError("storage", "storage and config are required")
	}
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}

	name := cfg.Collection
	if name == "" {
		name = cfg.Backend
	}
	if err := s.RegisterStore(name, store); err != nil {
		if c, ok := store.(closer); ok {
			_ = c.Close(ctx)
		}
		return nil, err
	}
	return store, nil
}
