/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"
	"sort"
	"strings"
)

// Errors collects validation messages per attribute. The zero value is ready to use.
type Errors struct {
	byAttribute map[string][]string
}

// NewErrors returns an empty error collection.
func NewErrors() *Errors {
	return &Errors{}
}

// Add records message for attribute.
func (e *Errors) Add(attribute, message string) {
	if e.byAttribute == nil {
		e.byAttribute = make(map[string][]string)
	}
	e.byAttribute[attribute] = append(e.byAttribute[attribute], message)
}

// Get returns the messages recorded for attribute.
func (e *Errors) Get(attribute string) []string {
	return e.byAttribute[attribute]
}

// First returns the first message recorded for attribute, or "".
func (e *Errors) First(attribute string) string {
	if msgs := e.byAttribute[attribute]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// All returns a copy of every recorded message keyed by attribute.
func (e *Errors) All() map[string][]string {
	out := make(map[string][]string, len(e.byAttribute))
	for k, v := range e.byAttribute {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// HasErrors reports whether any message was recorded.
func (e *Errors) HasErrors() bool {
	return len(e.byAttribute) > 0
}

// Len returns the number of attributes with errors.
func (e *Errors) Len() int {
	return len(e.byAttribute)
}

// Attributes returns the attributes with errors in sorted order.
func (e *Errors) Attributes() []string {
	attrs := make([]string, 0, len(e.byAttribute))
	for k := range e.byAttribute {
		attrs = append(attrs, k)
	}
	sort.Strings(attrs)
	return attrs
}

// Clear drops every message.
func (e *Errors) Clear() {
	e.byAttribute = nil
}

// Merge copies the messages of other into e. A non-empty prefix is joined to
// each attribute with a dot, so merging a shape's errors under "shapes.1"
// yields keys such as "shapes.1.radius".
func (e *Errors) Merge(prefix string, other *Errors) {
	if other == nil || e == other {
		return
	}
	for attr, msgs := range other.byAttribute {
		key := attr
		if prefix != "" {
			key = prefix + "." + attr
		}
		for _, msg := range msgs {
			e.Add(key, msg)
		}
	}
}

// String renders the collection as "attr: msg; attr: msg" in attribute order.
func (e *Errors) String() string {
	var parts []string
	for _, attr := range e.Attributes() {
		for _, msg := range e.byAttribute[attr] {
			parts = append(parts, fmt.Sprintf("%s: %s", attr, msg))
		}
	}
	return strings.Join(parts, "; ")
}
