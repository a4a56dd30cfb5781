/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/suparena/docmapper/storagemodels"
)

const tagName = "mapstructure"

// SetAttributes assigns the values of doc to the matching attributes of rec.
// Attributes absent from doc keep their value. Nothing but the fields is
// touched: embedded arrays receive the raw elements as they are and are
// converted by the synchronizer later.
func SetAttributes(rec Record, doc storagemodels.Document) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     rec,
		TagName:    tagName,
		Squash:     true,
		ZeroFields: true,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to create attribute decoder: %w", err)
	}
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("failed to set attributes on %s: %w", recordName(rec), err)
	}
	return nil
}

// Attributes returns the current attribute values of rec as a Document.
// Embedded arrays are returned in whatever form they currently hold; use
// ToDocument for the storable raw form.
func Attributes(rec Record) (storagemodels.Document, error) {
	out := map[string]interface{}{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: tagName,
		Squash:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attribute encoder: %w", err)
	}
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("failed to read attributes of %s: %w", recordName(rec), err)
	}
	return normalizeDocument(out), nil
}

// Attribute returns the value at a dotted attribute path such as "address.zip".
func Attribute(rec Record, path string) (any, bool) {
	doc, err := Attributes(rec)
	if err != nil {
		return nil, false
	}
	return doc.Lookup(path)
}

// ToDocument serializes rec for storage. Every embedded array is flipped to
// raw form for the duration of the call and restored before it returns.
func ToDocument(rec Record) (storagemodels.Document, error) {
	arrays := rec.EmbeddedArrays()
	for i, a := range arrays {
		if err := a.BeforeToArray(); err != nil {
			for _, done := range arrays[:i] {
				done.AfterToArray()
			}
			return nil, err
		}
	}
	defer func() {
		for _, a := range arrays {
			a.AfterToArray()
		}
	}()

	return Attributes(rec)
}

// AttributeNames returns the declared attribute names of rec in sorted order.
// Names come from the mapstructure tags; squashed embedded structs contribute
// their own attributes.
func AttributeNames(rec any) []string {
	t := reflect.TypeOf(rec)
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	names := attributeNames(t)
	sort.Strings(names)
	return names
}

func attributeNames(t reflect.Type) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name, skip := attributeKey(f)
		if skip {
			continue
		}
		if st, ok := squashed(f); ok {
			names = append(names, attributeNames(st)...)
			continue
		}
		names = append(names, name)
	}
	return names
}

// attributeKey returns the attribute name of a struct field and whether the
// field is excluded from the attributes.
func attributeKey(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get(tagName)
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "-" {
		return "", true
	}
	if name == "" {
		name = f.Name
	}
	return name, false
}

func squashed(f reflect.StructField) (reflect.Type, bool) {
	if !f.Anonymous {
		return nil, false
	}
	t := f.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}

// attributePath maps a path of Go field names, as reported by the validator,
// to the dotted attribute path.
func attributePath(t reflect.Type, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			parts = append(parts, name)
			t = nil
			continue
		}
		f, ok := t.FieldByName(name)
		if !ok {
			parts = append(parts, name)
			t = nil
			continue
		}
		t = f.Type
		if _, ok := squashed(f); ok {
			continue
		}
		key, _ := attributeKey(f)
		parts = append(parts, key)
	}
	return strings.Join(parts, ".")
}

func normalizeDocument(m map[string]interface{}) storagemodels.Document {
	doc := make(storagemodels.Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case *time.Time:
		if tv == nil {
			return nil
		}
		return *tv
	case EmbeddedArray:
		if tv == nil {
			return nil
		}
		return normalizeSlice(tv)
	case []any:
		return normalizeSlice(tv)
	case storagemodels.Document:
		return normalizeDocument(tv)
	case map[string]interface{}:
		return normalizeDocument(tv)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil
	}
	return v
}

func normalizeSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = normalizeValue(item)
	}
	return out
}

func recordName(rec any) string {
	name := fmt.Sprintf("%T", rec)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
