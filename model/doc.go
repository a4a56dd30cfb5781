/*
Package model is the record framework of docmapper: typed records backed by
raw documents, their validation, and the synchronization of embedded
document collections.

A record embeds Base and declares its attributes with mapstructure tags:

	type Gallery struct {
	    model.Base `mapstructure:",squash"`

	    ID     string              `mapstructure:"_id"`
	    Name   string              `mapstructure:"name" valid:"required"`
	    Shapes model.EmbeddedArray `mapstructure:"shapes" valid:"-"`
	}

	func NewGallery(types *model.Types) *Gallery {
	    g := &Gallery{}
	    g.Attach(model.NewEmbeddedArrays(g, &g.Shapes, types, model.ArrayConfig{
	        Field:       "shapes",
	        DocType:     "Shape",
	        ClassField:  "type",
	        ClassPrefix: "Shape_",
	    }))
	    return g
	}

Embedded Arrays:
An EmbeddedArray holds either raw documents or typed EmbeddedDocuments. The
EmbeddedArrays synchronizer attached for each such field moves it between the
two forms at fixed lifecycle points:

  - Populate and InitEmbeddedDocuments convert raw elements to typed ones,
    resolving each element's type from the discriminator field
  - ToDocument flips the field to raw form for the duration of the
    serialization and restores the typed elements afterwards
  - Validate converts raw elements first, then validates every element and
    merges failures into the owner's Errors under "field.index.attribute"

Conversion is recursive: an element that itself carries embedded arrays is
synchronized before it is stored in its owner's field.

Repositories:
Repository binds a record type to a datastore.DocumentStore and keeps the
accumulated query scope used by the provider package.

Records, their embedded arrays and repository scopes are not safe for
concurrent use.
*/
package model
