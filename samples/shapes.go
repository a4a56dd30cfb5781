/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package samples

import (
	"github.com/suparena/docmapper/model"
)

// Shape is the base of every gallery shape. A stored shape without a type
// decodes as a plain Shape.
type Shape struct {
	model.EmbeddedBase `mapstructure:",squash"`

	Type  string `mapstructure:"type,omitempty"`
	Color string `mapstructure:"color,omitempty" valid:"hexcolor"`
}

// Circle is stored with type "Circle".
type Circle struct {
	Shape `mapstructure:",squash"`

	Radius float64 `mapstructure:"radius" valid:"required,range(1|1000)"`
}

// Square is stored with type "Square".
type Square struct {
	Shape `mapstructure:",squash"`

	Side float64 `mapstructure:"side" valid:"required"`
}

func (s *Square) ValidateAttributes(errs *model.Errors) {
	if s.Side < 0 {
		errs.Add("side", "side must be positive")
	}
}

// Polygon is stored with type "Polygon" and carries its own array of points.
type Polygon struct {
	Shape `mapstructure:",squash"`

	Label  string              `mapstructure:"label" valid:"required"`
	Points model.EmbeddedArray `mapstructure:"points,omitempty" valid:"-"`
}

// NewPolygon returns a Polygon whose points resolve through types.
func NewPolygon(types *model.Types) *Polygon {
	p := &Polygon{}
	p.Embed(model.NewEmbeddedArrays(p, &p.Points, types, model.ArrayConfig{
		Field:   "points",
		DocType: TypePoint,
	}))
	return p
}

func (p *Polygon) ValidateAttributes(errs *model.Errors) {
	if n := len(p.Points); n > 0 && n < 3 {
		errs.Add("points", "a polygon needs at least 3 points")
	}
}

// Point is a vertex of a Polygon.
type Point struct {
	model.EmbeddedBase `mapstructure:",squash"`

	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}
