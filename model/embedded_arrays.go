/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"

	"github.com/suparena/docmapper/registry"
	"github.com/suparena/docmapper/storagemodels"
)

// Types resolves and instantiates embedded document types.
type Types = registry.TypeRegistry[EmbeddedDocument]

// NewTypes returns an empty embedded document type registry.
func NewTypes() *Types {
	return registry.NewTypeRegistry[EmbeddedDocument]()
}

// EmbeddedArray is an attribute holding a list of embedded documents, either
// raw (storagemodels.Document) or typed (EmbeddedDocument). Tag such fields
// with valid:"-"; their elements are validated by the synchronizer.
type EmbeddedArray []any

// IsRaw reports whether the array holds raw documents, judged by its first element.
func (a EmbeddedArray) IsRaw() bool {
	if len(a) == 0 {
		return false
	}
	_, ok := storagemodels.AsDocument(a[0])
	return ok
}

// Documents returns the typed elements of the array.
func (a EmbeddedArray) Documents() []EmbeddedDocument {
	docs := make([]EmbeddedDocument, 0, len(a))
	for _, v := range a {
		if doc, ok := v.(EmbeddedDocument); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// ArrayConfig describes one embedded array field.
type ArrayConfig struct {
	// Field is the attribute name, used as the prefix of merged error keys.
	Field string
	// DocType is the element type used when ClassField is unset or missing.
	DocType string
	// ClassField names the element attribute whose value selects the type.
	ClassField string
	// ClassPrefix is prepended to the ClassField value.
	ClassPrefix string
}

func (c ArrayConfig) discriminator() registry.Discriminator {
	return registry.Discriminator{Field: c.ClassField, Prefix: c.ClassPrefix, Default: c.DocType}
}

// EmbeddedArrays keeps one embedded array field of an owner in the right form
// across loading, validation and serialization. Each field of each record
// has its own instance.
type EmbeddedArrays struct {
	owner Record
	field *EmbeddedArray
	types *Types
	cfg   ArrayConfig

	cache  EmbeddedArray
	cached bool
}

// NewEmbeddedArrays returns a synchronizer for field, which must point into owner.
func NewEmbeddedArrays(owner Record, field *EmbeddedArray, types *Types, cfg ArrayConfig) *EmbeddedArrays {
	return &EmbeddedArrays{
		owner: owner,
		field: field,
		types: types,
		cfg:   cfg,
	}
}

// Field returns the attribute name of the synchronized field.
func (a *EmbeddedArrays) Field() string {
	return a.cfg.Field
}

// Attach runs when the synchronizer is attached to its owner.
func (a *EmbeddedArrays) Attach() error {
	return a.ParseExistingArray()
}

// AfterEmbeddedDocsInit runs once the owner's attributes have been populated.
func (a *EmbeddedArrays) AfterEmbeddedDocsInit() error {
	return a.ParseExistingArray()
}

// ParseExistingArray converts every raw element of the field to a typed
// document owned by the synchronizer's owner. Elements that are already
// typed are kept, so repeated calls leave the field unchanged.
func (a *EmbeddedArrays) ParseExistingArray() error {
	values := *a.field
	if !hasRaw(values) {
		return nil
	}

	docs := make(EmbeddedArray, len(values))
	for i, v := range values {
		raw, ok := storagemodels.AsDocument(v)
		if !ok {
			docs[i] = v
			continue
		}
		doc, err := a.instantiate(raw)
		if err != nil {
			return fmt.Errorf("%s.%d: %w", a.cfg.Field, i, err)
		}
		docs[i] = doc
	}
	*a.field = docs
	return nil
}

func (a *EmbeddedArrays) instantiate(raw storagemodels.Document) (EmbeddedDocument, error) {
	if a.types == nil {
		return nil, fmt.Errorf("no type registry for embedded array %q", a.cfg.Field)
	}
	doc, _, err := a.types.Instantiate(raw, a.cfg.discriminator())
	if err != nil {
		return nil, err
	}
	if err := SetAttributes(doc, raw); err != nil {
		return nil, err
	}
	doc.SetOwner(a.owner)

	for _, nested := range doc.EmbeddedArrays() {
		if err := nested.ParseExistingArray(); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// BeforeToArray replaces the typed elements with their raw documents and
// keeps the typed elements until AfterToArray.
func (a *EmbeddedArrays) BeforeToArray() error {
	values := *a.field
	if values == nil {
		return nil
	}

	raw := make(EmbeddedArray, len(values))
	for i, v := range values {
		rec, ok := v.(Record)
		if !ok {
			raw[i] = v
			continue
		}
		doc, err := ToDocument(rec)
		if err != nil {
			return fmt.Errorf("%s.%d: %w", a.cfg.Field, i, err)
		}
		raw[i] = doc
	}

	a.cache = values
	a.cached = true
	*a.field = raw
	return nil
}

// AfterToArray restores the elements saved by BeforeToArray.
func (a *EmbeddedArrays) AfterToArray() {
	if !a.cached {
		return
	}
	*a.field = a.cache
	a.cache = nil
	a.cached = false
}

// BeforeValidate converts any raw element to typed form and clears the
// errors of the typed ones.
func (a *EmbeddedArrays) BeforeValidate() error {
	if err := a.ParseExistingArray(); err != nil {
		return err
	}
	for _, v := range *a.field {
		if rec, ok := v.(Record); ok {
			rec.Errors().Clear()
		}
	}
	return nil
}

// AfterValidate validates every element and merges the errors of failing
// ones into the owner under "field.index". A failing element does not stop
// the validation of the others.
func (a *EmbeddedArrays) AfterValidate() error {
	for i, v := range *a.field {
		rec, ok := v.(Record)
		if !ok {
			continue
		}
		valid, err := Validate(rec, false)
		if err != nil {
			return fmt.Errorf("%s.%d: %w", a.cfg.Field, i, err)
		}
		if !valid {
			a.owner.Errors().Merge(fmt.Sprintf("%s.%d", a.cfg.Field, i), rec.Errors())
		}
	}
	return nil
}

func hasRaw(values EmbeddedArray) bool {
	for _, v := range values {
		if _, ok := storagemodels.AsDocument(v); ok {
			return true
		}
	}
	return false
}

// InitEmbeddedDocuments signals every synchronizer of rec that its attributes
// have been populated.
func InitEmbeddedDocuments(rec Record) error {
	for _, a := range rec.EmbeddedArrays() {
		if err := a.AfterEmbeddedDocsInit(); err != nil {
			return err
		}
	}
	return nil
}

// ParseExistingArrays converts the raw elements of every embedded array of
// rec, outside of the regular lifecycle.
func ParseExistingArrays(rec Record) error {
	for _, a := range rec.EmbeddedArrays() {
		if err := a.ParseExistingArray(); err != nil {
			return err
		}
	}
	return nil
}
