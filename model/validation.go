/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"
	"reflect"

	"github.com/asaskevich/govalidator"
	"github.com/go-openapi/strfmt"
)

// Validate checks rec and its embedded documents, recording failures in
// rec.Errors(). It reports whether rec has no errors afterwards.
//
// The order is fixed: errors are cleared when clearErrors is set, embedded
// arrays are brought to typed form, the valid struct tags are checked, the
// AttributeValidator hook runs, and finally every embedded element is
// validated with its errors merged into rec.
//
// Failing rules never produce an error; the returned error reports problems
// such as an unresolvable embedded type.
func Validate(rec Record, clearErrors bool) (bool, error) {
	errs := rec.Errors()
	if clearErrors {
		errs.Clear()
	}

	arrays := rec.EmbeddedArrays()
	for _, a := range arrays {
		if err := a.BeforeValidate(); err != nil {
			return false, err
		}
	}

	if err := validateStruct(rec, errs); err != nil {
		return false, err
	}

	if v, ok := rec.(AttributeValidator); ok {
		v.ValidateAttributes(errs)
	}

	for _, a := range arrays {
		if err := a.AfterValidate(); err != nil {
			return false, err
		}
	}

	return !errs.HasErrors(), nil
}

// ValidateFormat checks value against a named strfmt format ("email",
// "uri", "uuid", "date-time", ...) and records a message for attribute when
// it does not conform. Empty values are accepted.
func ValidateFormat(errs *Errors, attribute, format, value string) bool {
	if value == "" {
		return true
	}
	if !strfmt.Default.ContainsName(format) {
		errs.Add(attribute, fmt.Sprintf("unknown format %q", format))
		return false
	}
	if !strfmt.Default.Validates(format, value) {
		errs.Add(attribute, fmt.Sprintf("%s is not a valid %s", value, format))
		return false
	}
	return true
}

func validateStruct(rec Record, errs *Errors) error {
	_, err := govalidator.ValidateStruct(rec)
	if err == nil {
		return nil
	}

	t := reflect.TypeOf(rec)
	var unexpected error
	collectValidationErrors(err, func(e govalidator.Error) {
		path := append(append([]string(nil), e.Path...), e.Name)
		errs.Add(attributePath(t, path), e.Err.Error())
	}, func(other error) {
		if unexpected == nil {
			unexpected = other
		}
	})
	if unexpected != nil {
		return fmt.Errorf("failed to validate %s: %w", recordName(rec), unexpected)
	}
	return nil
}

func collectValidationErrors(err error, onField func(govalidator.Error), onOther func(error)) {
	switch e := err.(type) {
	case govalidator.Errors:
		for _, inner := range e.Errors() {
			collectValidationErrors(inner, onField, onOther)
		}
	case govalidator.Error:
		onField(e)
	default:
		onOther(err)
	}
}
