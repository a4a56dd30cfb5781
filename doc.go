/*
Package docmapper maps stored documents to typed Go records and back.

Records are plain structs that embed model.Base. Arrays of sub-documents are
declared as model.EmbeddedArray fields and resolved to concrete types
through a type registry, keyed by a discriminator attribute of each stored
element. Reading a record turns its raw arrays into typed documents,
serializing turns them back, and validation reports element errors on the
owning record under "field.index.attribute".

Key Features:
  - Generic repositories over MongoDB, DynamoDB or an in-memory store
  - Polymorphic embedded documents resolved through a type registry
  - Paginated, sortable result providers with a single total count per page set
  - Struct tag validation (govalidator) with named formats (strfmt)
  - YAML configuration and DynamoDB key layouts read from OpenAPI documents
  - Semantic error types and thread-safe store management

Basic Usage:

	cfg, _ := config.Load("docmapper.yaml")

	storage := docmapper.NewStorage()
	defer storage.Close(ctx)
	store, _ := docmapper.Open(ctx, storage, cfg, nil)

	types := samples.NewTypes()
	repo, _ := model.NewRepository(store, func() *samples.Gallery {
		return samples.NewGallery(types)
	})

	registry := docmapper.NewRegistry()
	_ = docmapper.RegisterRepository(registry, cfg.Collection, repo)

	p, _ := docmapper.NewProvider[*samples.Gallery](registry, cfg.Collection)
	galleries, err := p.Data(ctx)
*/
package docmapper
