/*
Package registry manages type registration and index mapping for docmapper.

The registry system enables:
  - Polymorphic embedded collections whose element type is chosen per element
  - Dynamic type resolution from a discriminator field, without reflection
  - Flexible key patterns through index maps for key-value backends

Type Registry:
Maps type names to factories. Registration fails unless the factory's product
implements the registry's capability:

	types := registry.NewTypeRegistry[model.EmbeddedDocument]()
	types.MustRegister("Shape_Circle", func() any { return &Circle{} })

	d := registry.Discriminator{Field: "type", Prefix: "Shape_", Default: "Shape"}
	name, err := types.Resolve(map[string]any{"type": "Circle", "radius": 5}, d)
	// name == "Shape_Circle"

Index Map Registry:
Associates collections with key patterns:

	indexMaps := registry.NewIndexMapRegistry()
	indexMaps.RegisterIndexMap("galleries", map[string]string{
	    "PK": "GALLERY#{_id}",
	    "SK": "GALLERY#{_id}",
	})

Both registries are thread-safe and are meant to be populated during
initialization and passed explicitly to the components that need them.
*/
package registry
