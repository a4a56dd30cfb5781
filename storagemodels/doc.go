/*
Package storagemodels defines the data structures shared by docmapper's stores,
record framework and provider.

Key Types:

Document:
The raw form of a record or embedded sub-document, as stored:

	doc := storagemodels.Document{
	    "_id":  "g1",
	    "name": "Shapes",
	    "shapes": []any{
	        storagemodels.Document{"type": "Circle", "radius": 5.0},
	    },
	}
	zip, ok := doc.Lookup("address.zip")

Criteria:
The query descriptor (filter, sort, limit, offset, projection):

	c := storagemodels.NewCriteria().
	    AddCond("owner", "ada").
	    AddCond("size", storagemodels.Document{"$gte": 3}).
	    SetSort([]storagemodels.SortField{{Field: "name", Direction: storagemodels.SortDesc}}).
	    SetLimit(20)

Criteria values are mutable and shared by pointer; Clone before handing one to
an operation that may reset it.

Match, SortDocuments and Window evaluate a Criteria in memory for stores that
cannot do so natively.

StreamResult / StreamOptions:
Results and configuration for streaming reads:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
