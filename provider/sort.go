/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package provider

import (
	"regexp"
	"strings"

	"github.com/suparena/docmapper/storagemodels"
)

var orderSegment = regexp.MustCompile(`(?i)^(.*?)(\s+(desc|asc))?$`)

// ParseOrder converts an order clause such as "name desc, age" into sort
// fields. A segment without a direction sorts ascending, and a segment that
// does not parse is used whole as an ascending field. A repeated field keeps
// its first position and takes its last direction.
func ParseOrder(order string) []storagemodels.SortField {
	var fields []storagemodels.SortField
	seen := map[string]int{}
	for _, seg := range strings.Split(order, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		field, direction := seg, storagemodels.SortAsc
		if m := orderSegment.FindStringSubmatch(seg); m != nil && m[1] != "" {
			field = m[1]
			if strings.EqualFold(m[3], "desc") {
				direction = storagemodels.SortDesc
			}
		}
		if i, ok := seen[field]; ok {
			fields[i].Direction = direction
			continue
		}
		seen[field] = len(fields)
		fields = append(fields, storagemodels.SortField{Field: field, Direction: direction})
	}
	return fields
}

// FormatOrder renders sort fields as an order clause, the inverse of ParseOrder.
func FormatOrder(fields []storagemodels.SortField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Direction == storagemodels.SortDesc {
			parts = append(parts, f.Field+" desc")
		} else {
			parts = append(parts, f.Field)
		}
	}
	return strings.Join(parts, ", ")
}

// Sort holds the requested order of a provider and the attributes it may sort on.
type Sort struct {
	// Attributes lists the sortable attributes. Empty accepts every attribute.
	Attributes []string
	// DefaultOrder is used when no order was requested or none of it is sortable.
	DefaultOrder string

	order string
}

// NewSort returns a Sort accepting attrs.
func NewSort(attrs ...string) *Sort {
	return &Sort{Attributes: append([]string(nil), attrs...)}
}

// SetOrder sets the requested order clause.
func (s *Sort) SetOrder(clause string) {
	s.order = clause
}

// Order returns the requested order clause.
func (s *Sort) Order() string {
	return s.order
}

// Accepts reports whether field may be sorted on.
func (s *Sort) Accepts(field string) bool {
	if len(s.Attributes) == 0 {
		return true
	}
	for _, attr := range s.Attributes {
		if attr == field {
			return true
		}
	}
	return false
}

// Allow adds attrs to the sortable attributes.
func (s *Sort) Allow(attrs ...string) {
	for _, attr := range attrs {
		if !s.allows(attr) {
			s.Attributes = append(s.Attributes, attr)
		}
	}
}

func (s *Sort) allows(attr string) bool {
	for _, a := range s.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// Directions returns the requested sort fields that are sortable.
func (s *Sort) Directions() []storagemodels.SortField {
	var out []storagemodels.SortField
	for _, f := range ParseOrder(s.order) {
		if s.Accepts(f.Field) {
			out = append(out, f)
		}
	}
	return out
}

// OrderBy returns the order clause to apply: the sortable part of the
// requested order, or DefaultOrder when nothing sortable was requested.
func (s *Sort) OrderBy() string {
	if dirs := s.Directions(); len(dirs) > 0 {
		return FormatOrder(dirs)
	}
	return s.DefaultOrder
}
