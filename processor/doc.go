/*
Package processor reads DynamoDB key layouts from an OpenAPI specification.

Schemas declare their key templates with the x-dynamodb-indexmap vendor
extension and may name their collection with x-docmapper-collection:

	components:
	  schemas:
	    Gallery:
	      type: object
	      x-docmapper-collection: galleries
	      x-dynamodb-indexmap:
	        PK: "GALLERY#{_id}"
	        SK: "GALLERY#{_id}"
	        GSI1PK: "OWNER#{owner}"
	        GSI1SK: "GALLERY#{created_at}"
	      properties:
	        _id:
	          type: string

LoadIndexMaps turns such a document into a registry.IndexMapRegistry that
the DynamoDB store resolves its macro keys from. Schemas without the
extension are ignored.
*/
package processor
