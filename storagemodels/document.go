/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Document is the raw form of a stored record or embedded sub-document.
type Document map[string]any

// AsDocument converts v to a Document if it is a map keyed by strings.
// Driver-specific named map types (bson.M and friends) are accepted too.
func AsDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	doc := make(Document, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		doc[iter.Key().String()] = iter.Value().Interface()
	}
	return doc, true
}

// Clone returns a deep copy of d; nested maps and slices are copied too.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// Lookup resolves a dotted path such as "address.zip".
func (d Document) Lookup(path string) (any, bool) {
	var cur any = d
	for _, part := range strings.Split(path, ".") {
		doc, ok := AsDocument(cur)
		if !ok {
			return nil, false
		}
		cur, ok = doc[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case Document:
		return tv.Clone()
	case map[string]any:
		return map[string]any(Document(tv).Clone())
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = cloneValue(item)
		}
		return out
	case []Document:
		out := make([]Document, len(tv))
		for i, item := range tv {
			out[i] = item.Clone()
		}
		return out
	default:
		return v
	}
}

// Match reports whether doc satisfies every condition of filter.
// Supported operators are $eq, $ne, $gt, $gte, $lt, $lte, $in, $nin and $exists.
func Match(doc Document, filter Document) bool {
	for path, cond := range filter {
		val, found := doc.Lookup(path)
		if ops, ok := AsDocument(cond); ok && isOperatorDoc(ops) {
			for op, arg := range ops {
				if !matchOperator(op, val, found, arg) {
					return false
				}
			}
			continue
		}
		if !found || compareValues(val, cond) != 0 {
			return false
		}
	}
	return true
}

func isOperatorDoc(d Document) bool {
	if len(d) == 0 {
		return false
	}
	for k := range d {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func matchOperator(op string, val any, found bool, arg any) bool {
	switch op {
	case "$eq":
		return found && compareValues(val, arg) == 0
	case "$ne":
		return !found || compareValues(val, arg) != 0
	case "$gt":
		return found && compareValues(val, arg) > 0
	case "$gte":
		return found && compareValues(val, arg) >= 0
	case "$lt":
		return found && compareValues(val, arg) < 0
	case "$lte":
		return found && compareValues(val, arg) <= 0
	case "$in":
		return found && inList(val, arg)
	case "$nin":
		rv := reflect.ValueOf(arg)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		return !found || !inList(val, arg)
	case "$exists":
		want, ok := arg.(bool)
		return ok && found == want
	default:
		return false
	}
}

func inList(val, list any) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if compareValues(val, rv.Index(i).Interface()) == 0 {
			return true
		}
	}
	return false
}

// SortDocuments sorts docs in place according to sortSpec. Missing fields sort first.
func SortDocuments(docs []Document, sortSpec []SortField) {
	if len(sortSpec) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, sf := range sortSpec {
			vi, _ := docs[i].Lookup(sf.Field)
			vj, _ := docs[j].Lookup(sf.Field)

			c := compareValues(vi, vj)
			if c == 0 {
				continue
			}
			if sf.Direction == SortDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Window applies offset and limit to docs. A zero limit means no limit.
func Window(docs []Document, offset, limit int64) []Document {
	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(docs)) {
		return []Document{}
	}
	docs = docs[offset:]
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

// compareValues orders two raw values: nil < numbers < strings < everything
// else. Numbers compare numerically, strings lexically, times chronologically
// and booleans false first. Any other pair compares by its printed form.
func compareValues(a, b any) int {
	if ra, rb := valueRank(a), valueRank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch a.(type) {
	case nil:
		return 0
	case string:
		return strings.Compare(a.(string), b.(string))
	}

	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func valueRank(v any) int {
	if v == nil {
		return 0
	}
	if _, ok := toFloat(v); ok {
		return 1
	}
	if _, ok := v.(string); ok {
		return 2
	}
	return 3
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
