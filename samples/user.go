/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package samples

import (
	"github.com/suparena/docmapper/model"
)

// UserAddress is a postal address embedded in a User.
type UserAddress struct {
	model.EmbeddedBase `mapstructure:",squash"`

	City      string `mapstructure:"city,omitempty" valid:"length(0|255)"`
	Street    string `mapstructure:"street,omitempty" valid:"length(0|255)"`
	Apartment string `mapstructure:"apartment,omitempty" valid:"length(0|10)"`
	Zip       string `mapstructure:"zip,omitempty" valid:"length(0|10)"`
}

// User has one primary address and any number of further addresses.
type User struct {
	model.Base `mapstructure:",squash"`

	ID        string              `mapstructure:"_id"`
	Email     string              `mapstructure:"email" valid:"required"`
	Name      string              `mapstructure:"name,omitempty"`
	Address   UserAddress         `mapstructure:"address"`
	Addresses model.EmbeddedArray `mapstructure:"addresses,omitempty" valid:"-"`
}

// NewUser returns a User whose addresses resolve through types.
func NewUser(types *model.Types) *User {
	u := &User{}
	u.Embed(model.NewEmbeddedArrays(u, &u.Addresses, types, model.ArrayConfig{
		Field:   "addresses",
		DocType: TypeUserAddress,
	}))
	return u
}

// EmbeddedDocuments declares the primary address so its attributes can be
// sorted on as "address.<attribute>".
func (u *User) EmbeddedDocuments() map[string]model.Record {
	return map[string]model.Record{"address": &UserAddress{}}
}

func (u *User) ValidateAttributes(errs *model.Errors) {
	model.ValidateFormat(errs, "email", "email", u.Email)
}
