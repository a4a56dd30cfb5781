/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

// Record is a typed object backed by a document.
type Record interface {
	// Errors returns the record's validation messages.
	Errors() *Errors
	// EmbeddedArrays returns the synchronizers attached to the record, one per
	// embedded array field.
	EmbeddedArrays() []*EmbeddedArrays
}

// EmbeddedDocument is a record stored inline inside an owning record.
type EmbeddedDocument interface {
	Record
	SetOwner(owner Record)
	Owner() Record
}

// EmbeddedDeclarer is implemented by records holding single embedded
// documents. The map goes from attribute name to an instance of the
// embedded type, which is used to enumerate its attribute names.
type EmbeddedDeclarer interface {
	EmbeddedDocuments() map[string]Record
}

// AttributeValidator is implemented by records with rules that struct tags
// cannot express. It runs after the tag rules and before embedded arrays are
// validated.
type AttributeValidator interface {
	ValidateAttributes(errs *Errors)
}

// Base implements Record. Embed it with a squash tag:
//
//	model.Base `mapstructure:",squash"`
type Base struct {
	errs   Errors
	arrays []*EmbeddedArrays
}

// Errors returns the record's validation messages.
func (b *Base) Errors() *Errors {
	return &b.errs
}

// EmbeddedArrays returns the attached synchronizers in attachment order.
func (b *Base) EmbeddedArrays() []*EmbeddedArrays {
	return b.arrays
}

// Embed registers synchronizers without converting their fields. Constructors
// use it while the fields are still empty.
func (b *Base) Embed(arrays ...*EmbeddedArrays) {
	b.arrays = append(b.arrays, arrays...)
}

// Attach registers synchronizers and converts any raw elements already held
// by their fields.
func (b *Base) Attach(arrays ...*EmbeddedArrays) error {
	b.Embed(arrays...)
	for _, a := range arrays {
		if err := a.Attach(); err != nil {
			return err
		}
	}
	return nil
}

// EmbeddedBase implements EmbeddedDocument.
type EmbeddedBase struct {
	Base

	// owner is used for contextual lookups only
	owner Record
}

// SetOwner sets the record this document is embedded in.
func (e *EmbeddedBase) SetOwner(owner Record) {
	e.owner = owner
}

// Owner returns the record this document is embedded in, or nil.
func (e *EmbeddedBase) Owner() Record {
	return e.owner
}
