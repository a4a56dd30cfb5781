/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/suparena/docmapper/storagemodels"
)

// normalizeDocument converts a decoded BSON document to the driver-agnostic
// raw form: nested documents become Documents, arrays become []any,
// ObjectIDs become hex strings and DateTimes become time.Time.
func normalizeDocument(m bson.M) storagemodels.Document {
	doc := make(storagemodels.Document, len(m))
	for k, v := range m {
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch tv := v.(type) {
	case bson.M:
		return normalizeDocument(tv)
	case map[string]any:
		return normalizeDocument(bson.M(tv))
	case bson.D:
		doc := make(storagemodels.Document, len(tv))
		for _, e := range tv {
			doc[e.Key] = normalize(e.Value)
		}
		return doc
	case bson.A:
		return normalizeSlice(tv)
	case []any:
		return normalizeSlice(tv)
	case primitive.ObjectID:
		return tv.Hex()
	case primitive.DateTime:
		return tv.Time().UTC()
	case primitive.Decimal128:
		return tv.String()
	case primitive.Binary:
		return tv.Data
	default:
		return v
	}
}

func normalizeSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = normalize(item)
	}
	return out
}

// toBSON converts raw documents (and anything nested in them) to bson.M / bson.A.
func toBSON(doc storagemodels.Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = toBSONValue(v)
	}
	return out
}

func toBSONValue(v any) any {
	if doc, ok := storagemodels.AsDocument(v); ok {
		return toBSON(doc)
	}
	switch tv := v.(type) {
	case []any:
		out := make(bson.A, len(tv))
		for i, item := range tv {
			out[i] = toBSONValue(item)
		}
		return out
	case []storagemodels.Document:
		out := make(bson.A, len(tv))
		for i, item := range tv {
			out[i] = toBSON(item)
		}
		return out
	default:
		return v
	}
}
