/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// SortDirection is the store-native sort token for one field.
type SortDirection int

// Sort directions use the document store's native tokens.
const (
	SortAsc  SortDirection = 1
	SortDesc SortDirection = -1
)

// String returns "asc" or "desc".
func (d SortDirection) String() string {
	if d == SortDesc {
		return "desc"
	}
	return "asc"
}

// SortField is one (field, direction) pair of a sort specification.
// Field may be a dotted path into an embedded document (e.g. "address.zip").
type SortField struct {
	Field     string
	Direction SortDirection
}

// Criteria is the query descriptor handed to a DocumentStore.
//
// A Criteria is mutable: providers and repositories set limit, offset and sort
// on it in place. Use Clone before any operation that may reset it.
type Criteria struct {
	// Filter holds conditions keyed by (dotted) field path. A value is either a
	// literal (equality) or an operator Document such as {"$gt": 5}.
	Filter Document
	// Sort is the ordered sort specification.
	Sort []SortField
	// Limit caps the number of returned documents; 0 means no limit.
	Limit int64
	// Offset skips that many matching documents.
	Offset int64
	// Select restricts the returned fields; empty means all fields.
	Select []string
}

// NewCriteria returns an empty Criteria.
func NewCriteria() *Criteria {
	return &Criteria{Filter: Document{}}
}

// AddCond adds an equality or operator condition on field.
func (c *Criteria) AddCond(field string, value any) *Criteria {
	if c.Filter == nil {
		c.Filter = Document{}
	}
	c.Filter[field] = value
	return c
}

// SetLimit sets the limit.
func (c *Criteria) SetLimit(limit int64) *Criteria {
	c.Limit = limit
	return c
}

// SetOffset sets the offset.
func (c *Criteria) SetOffset(offset int64) *Criteria {
	c.Offset = offset
	return c
}

// SetSort replaces the sort specification.
func (c *Criteria) SetSort(sort []SortField) *Criteria {
	c.Sort = append([]SortField(nil), sort...)
	return c
}

// Clone returns a deep copy of c. A nil Criteria clones to nil.
func (c *Criteria) Clone() *Criteria {
	if c == nil {
		return nil
	}
	return &Criteria{
		Filter: c.Filter.Clone(),
		Sort:   append([]SortField(nil), c.Sort...),
		Limit:  c.Limit,
		Offset: c.Offset,
		Select: append([]string(nil), c.Select...),
	}
}

// MergeWith merges other into c in place and returns c.
//
// Filter conditions are unioned with other winning on conflicting keys. A
// non-zero limit or offset in other overrides c. A sort field of other
// replaces the direction of the same field in c and is appended otherwise.
// Select lists are unioned.
func (c *Criteria) MergeWith(other *Criteria) *Criteria {
	if other == nil {
		return c
	}
	if len(other.Filter) > 0 {
		if c.Filter == nil {
			c.Filter = Document{}
		}
		for k, v := range other.Filter {
			c.Filter[k] = cloneValue(v)
		}
	}
	if other.Limit > 0 {
		c.Limit = other.Limit
	}
	if other.Offset > 0 {
		c.Offset = other.Offset
	}
	for _, sf := range other.Sort {
		if i := c.sortIndex(sf.Field); i >= 0 {
			c.Sort[i].Direction = sf.Direction
			continue
		}
		c.Sort = append(c.Sort, sf)
	}
	for _, f := range other.Select {
		if !contains(c.Select, f) {
			c.Select = append(c.Select, f)
		}
	}
	return c
}

// IsEmpty reports whether c carries no filter, sort, window or projection.
func (c *Criteria) IsEmpty() bool {
	return c == nil || (len(c.Filter) == 0 && len(c.Sort) == 0 && c.Limit == 0 && c.Offset == 0 && len(c.Select) == 0)
}

func (c *Criteria) sortIndex(field string) int {
	for i, sf := range c.Sort {
		if sf.Field == field {
			return i
		}
	}
	return -1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
