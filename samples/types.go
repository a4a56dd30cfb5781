/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package samples

import (
	"bytes"
	_ "embed"

	"github.com/suparena/docmapper/model"
	"github.com/suparena/docmapper/processor"
	"github.com/suparena/docmapper/registry"
)

// Registered type names.
const (
	ShapePrefix = "Shape_"

	TypeShape       = "Shape"
	TypeCircle      = ShapePrefix + "Circle"
	TypeSquare      = ShapePrefix + "Square"
	TypePolygon     = ShapePrefix + "Polygon"
	TypePoint       = "Point"
	TypeUserAddress = "UserAddress"
)

// Collection names.
const (
	CollectionGalleries = "galleries"
	CollectionUsers     = "users"
	CollectionImages    = "images"
)

//go:embed openapi.yaml
var openAPI []byte

// RegisterTypes registers every embedded document type of this package.
// Types holding arrays of their own (Polygon) resolve them through types.
func RegisterTypes(types *model.Types) error {
	factories := []struct {
		name    string
		factory registry.Factory
	}{
		{TypeShape, func() any { return &Shape{} }},
		{TypeCircle, func() any { return &Circle{} }},
		{TypeSquare, func() any { return &Square{} }},
		{TypePolygon, func() any { return NewPolygon(types) }},
		{TypePoint, func() any { return &Point{} }},
		{TypeUserAddress, func() any { return &UserAddress{} }},
	}
	for _, f := range factories {
		if err := types.Register(f.name, f.factory); err != nil {
			return err
		}
	}
	return nil
}

// NewTypes returns a registry holding the types of this package.
func NewTypes() *model.Types {
	types := model.NewTypes()
	if err := RegisterTypes(types); err != nil {
		panic(err)
	}
	return types
}

// IndexMaps returns the DynamoDB key layout of the sample collections.
func IndexMaps() (*registry.IndexMapRegistry, error) {
	maps, err := processor.ParseIndexMaps(bytes.NewReader(openAPI))
	if err != nil {
		return nil, err
	}
	reg := registry.NewIndexMapRegistry()
	processor.Register(reg, maps)
	return reg, nil
}
