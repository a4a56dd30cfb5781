/*
Package ddb provides a DynamoDB implementation of the DocumentStore interface.

The DynamodbDocumentStore supports:
  - Single-table design: every item carries a Collection attribute
  - Macro-based key expansion (e.g., "GALLERY#{_id}") from an index map
  - Criteria filters compiled to filter expressions
  - Query instead of Scan when a filter pins the table or a GSI partition key
  - Streaming with retry logic

Key Features:

Macro Expansion:
Keys use macros that are replaced with document field values:

	indexMaps.RegisterIndexMap("galleries", map[string]string{
	    "PK":     "GALLERY#{_id}",  // Becomes "GALLERY#5f0c..."
	    "SK":     "GALLERY#{_id}",
	    "GSI1PK": "OWNER#{owner}",  // Queried through GSI1 when filtering on owner
	})

A key whose template references a missing field is left unset.

Filtering:
Literal conditions and the $eq, $ne, $gt, $gte, $lt, $lte, $in, $nin and $exists operators
are supported. Sorting, offset and limit are applied in memory after all pages
have been read, since DynamoDB limits apply before filtering.

Streaming:

	results := store.Stream(ctx, criteria,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)

Integration tests run against a real table with -tags integration.
*/
package ddb
