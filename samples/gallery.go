/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package samples

import (
	"time"

	"github.com/suparena/docmapper/model"
)

// Gallery holds a polymorphic array of shapes keyed by their "type" attribute.
type Gallery struct {
	model.Base `mapstructure:",squash"`

	ID        string              `mapstructure:"_id"`
	Name      string              `mapstructure:"name" valid:"required,length(1|120)"`
	Owner     string              `mapstructure:"owner,omitempty"`
	Tags      []string            `mapstructure:"tags,omitempty" valid:"-"`
	CreatedAt *time.Time          `mapstructure:"created_at,omitempty"`
	Shapes    model.EmbeddedArray `mapstructure:"shapes,omitempty" valid:"-"`
}

// NewGallery returns a Gallery whose shapes resolve through types.
func NewGallery(types *model.Types) *Gallery {
	g := &Gallery{}
	g.Embed(model.NewEmbeddedArrays(g, &g.Shapes, types, model.ArrayConfig{
		Field:       "shapes",
		DocType:     TypeShape,
		ClassField:  "type",
		ClassPrefix: ShapePrefix,
	}))
	return g
}

// Circles returns the circles among the typed shapes.
func (g *Gallery) Circles() []*Circle {
	var out []*Circle
	for _, doc := range g.Shapes.Documents() {
		if c, ok := doc.(*Circle); ok {
			out = append(out, c)
		}
	}
	return out
}
