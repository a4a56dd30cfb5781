/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/suparena/docmapper/model"
)

type Shape struct {
	model.EmbeddedBase `mapstructure:",squash"`

	Type  string `mapstructure:"type"`
	Color string `mapstructure:"color,omitempty"`
}

type Circle struct {
	Shape `mapstructure:",squash"`

	Radius float64 `mapstructure:"radius" valid:"required,range(1|100)"`
}

type Square struct {
	Shape `mapstructure:",squash"`

	Side float64 `mapstructure:"side" valid:"required"`

	validated bool
}

func (s *Square) ValidateAttributes(errs *model.Errors) {
	s.validated = true
}

type Point struct {
	model.EmbeddedBase `mapstructure:",squash"`

	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y" valid:"range(0|100)"`
}

type Polygon struct {
	Shape `mapstructure:",squash"`

	Label  string              `mapstructure:"label" valid:"required"`
	Points model.EmbeddedArray `mapstructure:"points,omitempty" valid:"-"`
}

func newPolygon(types *model.Types) *Polygon {
	p := &Polygon{}
	p.Embed(model.NewEmbeddedArrays(p, &p.Points, types, model.ArrayConfig{
		Field:   "points",
		DocType: "Point",
	}))
	return p
}

type Gallery struct {
	model.Base `mapstructure:",squash"`

	ID        string              `mapstructure:"_id"`
	Name      string              `mapstructure:"name" valid:"required"`
	OwnerName string              `mapstructure:"owner,omitempty"`
	CreatedAt *time.Time          `mapstructure:"created_at,omitempty"`
	Shapes    model.EmbeddedArray `mapstructure:"shapes,omitempty" valid:"-"`
}

func newGallery(types *model.Types) *Gallery {
	g := &Gallery{}
	g.Embed(model.NewEmbeddedArrays(g, &g.Shapes, types, model.ArrayConfig{
		Field:       "shapes",
		DocType:     "Shape",
		ClassField:  "type",
		ClassPrefix: "Shape_",
	}))
	return g
}

type Address struct {
	model.EmbeddedBase `mapstructure:",squash"`

	City string `mapstructure:"city" valid:"length(0|255)"`
	Zip  string `mapstructure:"zip" valid:"length(0|10)"`
}

type User struct {
	model.Base `mapstructure:",squash"`

	ID      string  `mapstructure:"_id"`
	Email   string  `mapstructure:"email" valid:"required"`
	Address Address `mapstructure:"address"`
}

func (u *User) EmbeddedDocuments() map[string]model.Record {
	return map[string]model.Record{"address": &Address{}}
}

func (u *User) ValidateAttributes(errs *model.Errors) {
	model.ValidateFormat(errs, "email", "email", u.Email)
}

func newTypes(t *testing.T) *model.Types {
	t.Helper()
	types := model.NewTypes()
	require.NoError(t, types.Register("Shape", func() any { return &Shape{} }))
	require.NoError(t, types.Register("Shape_Circle", func() any { return &Circle{} }))
	require.NoError(t, types.Register("Shape_Square", func() any { return &Square{} }))
	require.NoError(t, types.Register("Shape_Polygon", func() any { return newPolygon(types) }))
	require.NoError(t, types.Register("Point", func() any { return &Point{} }))
	return types
}
