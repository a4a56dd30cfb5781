/*
Package mongo provides a MongoDB implementation of datastore.DocumentStore.

A Store wraps one collection. Criteria filters are passed to the server as-is
(operator documents such as {"$gt": 5} are native MongoDB syntax); sort,
limit, offset and projection map to find options.

	store, err := mongo.Open(ctx, "mongodb://localhost:27017", "app", "galleries",
	    mongo.WithLogger(logger))
	if err != nil {
	    return err
	}
	defer store.Close(ctx)

Results are normalized to the driver-agnostic raw form: nested documents are
storagemodels.Document, arrays are []any, ObjectIDs are hex strings and
DateTimes are time.Time values.

Store also implements datastore.Streamer on top of a batched cursor.
*/
package mongo
