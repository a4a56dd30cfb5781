/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docmapper/model"
	"github.com/suparena/docmapper/storagemodels"
)

func TestValidateAggregatesElementErrors(t *testing.T) {
	types := newTypes(t)
	g := populateGallery(t, types, []any{
		storagemodels.Document{"type": "Circle", "radius": 5.0},
		storagemodels.Document{"type": "Circle"},
		storagemodels.Document{"type": "Square", "side": 3.0},
	})

	valid, err := model.Validate(g, true)
	require.NoError(t, err)
	assert.False(t, valid)

	assert.Equal(t, map[string][]string{
		"shapes.1.radius": {"non zero value required"},
	}, g.Errors().All())

	// every element was validated, including the one after the failure
	assert.False(t, g.Shapes[0].(model.Record).Errors().HasErrors())
	assert.True(t, g.Shapes[1].(model.Record).Errors().HasErrors())
	assert.True(t, g.Shapes[2].(*Square).validated)
}

func TestValidateNestedArrays(t *testing.T) {
	types := newTypes(t)
	g := populateGallery(t, types, []any{
		storagemodels.Document{
			"type": "Polygon",
			"points": []any{
				storagemodels.Document{"x": 1.0, "y": 1.0},
				storagemodels.Document{"x": 1.0, "y": 500.0},
			},
		},
	})

	valid, err := model.Validate(g, true)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, []string{"shapes.0.label", "shapes.0.points.1.y"}, g.Errors().Attributes())
	assert.Contains(t, g.Errors().First("shapes.0.points.1.y"), "range(0|100)")
}

func TestValidateConvertsRawArrays(t *testing.T) {
	types := newTypes(t)
	g := newGallery(types)
	g.Name = "raw"
	g.Shapes = model.EmbeddedArray{
		storagemodels.Document{"type": "Circle", "radius": 500.0},
		storagemodels.Document{"type": "Square", "side": 1.0},
	}

	valid, err := model.Validate(g, true)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.False(t, g.Shapes.IsRaw())
	assert.Same(t, g, g.Shapes[0].(*Circle).Owner())
	assert.Equal(t, []string{"shapes.0.radius"}, g.Errors().Attributes())
}

func TestValidateConvertsAppendedRawElements(t *testing.T) {
	types := newTypes(t)
	g := populateGallery(t, types, []any{storagemodels.Document{"type": "Circle", "radius": 5.0}})
	g.Shapes = append(g.Shapes, storagemodels.Document{"type": "Circle", "radius": 500.0})

	valid, err := model.Validate(g, true)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, []string{"shapes.1.radius"}, g.Errors().Attributes())

	circle, ok := g.Shapes[1].(*Circle)
	require.True(t, ok, "expected *Circle, got %T", g.Shapes[1])
	assert.Same(t, g, circle.Owner())
}

func TestValidateClearsPreviousErrors(t *testing.T) {
	types := newTypes(t)
	g := populateGallery(t, types, []any{storagemodels.Document{"type": "Circle"}})

	valid, err := model.Validate(g, true)
	require.NoError(t, err)
	require.False(t, valid)

	g.Shapes[0].(*Circle).Radius = 3
	valid, err = model.Validate(g, true)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.False(t, g.Errors().HasErrors())
	assert.False(t, g.Shapes[0].(*Circle).Errors().HasErrors())

	// without clearing, earlier messages on the owner stay
	g.Errors().Add("name", "taken")
	valid, err = model.Validate(g, false)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, []string{"taken"}, g.Errors().Get("name"))
}

func TestValidateUnknownElementType(t *testing.T) {
	types := newTypes(t)
	g := newGallery(types)
	g.Name = "bad"
	g.Shapes = model.EmbeddedArray{storagemodels.Document{"type": "Hexagon"}}

	_, err := model.Validate(g, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Shape_Hexagon")
}

func TestValidateAttributePaths(t *testing.T) {
	u := &User{
		Email:   "not-an-email",
		Address: Address{City: "Berlin", Zip: strings.Repeat("9", 12)},
	}

	valid, err := model.Validate(u, true)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, []string{"address.zip", "email"}, u.Errors().Attributes())
	assert.Equal(t, "not-an-email is not a valid email", u.Errors().First("email"))

	u = &User{Email: "ada@example.com", Address: Address{Zip: "10115"}}
	valid, err = model.Validate(u, true)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestValidateFormat(t *testing.T) {
	errs := model.NewErrors()

	assert.True(t, model.ValidateFormat(errs, "email", "email", "ada@example.com"))
	assert.True(t, model.ValidateFormat(errs, "email", "email", ""))
	assert.True(t, model.ValidateFormat(errs, "id", "uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, errs.HasErrors())

	assert.False(t, model.ValidateFormat(errs, "id", "uuid", "nope"))
	assert.False(t, model.ValidateFormat(errs, "x", "no-such-format", "value"))
	assert.Equal(t, []string{"id", "x"}, errs.Attributes())
}
