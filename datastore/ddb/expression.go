/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/storagemodels"
)

var comparators = map[string]string{
	"$eq":  "=",
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
}

// expressionBuilder accumulates conditions with their attribute name and
// value placeholders (#n0, :v0, ...).
type expressionBuilder struct {
	conditions []string
	names      map[string]string
	values     map[string]types.AttributeValue
	nameIdx    map[string]string
}

func newExpressionBuilder() *expressionBuilder {
	return &expressionBuilder{
		names:   make(map[string]string),
		values:  make(map[string]types.AttributeValue),
		nameIdx: make(map[string]string),
	}
}

// name returns the placeholder path for a dotted attribute path.
func (b *expressionBuilder) name(path string) string {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		placeholder, ok := b.nameIdx[part]
		if !ok {
			placeholder = fmt.Sprintf("#n%d", len(b.nameIdx))
			b.nameIdx[part] = placeholder
			b.names[placeholder] = part
		}
		parts[i] = placeholder
	}
	return strings.Join(parts, ".")
}

func (b *expressionBuilder) value(v any) (string, error) {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal filter value %v: %w", v, err)
	}
	placeholder := fmt.Sprintf(":v%d", len(b.values))
	b.values[placeholder] = av
	return placeholder, nil
}

func (b *expressionBuilder) compare(path, op string, v any) error {
	placeholder, err := b.value(v)
	if err != nil {
		return err
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s %s %s", b.name(path), op, placeholder))
	return nil
}

// addFilter compiles a Criteria filter. Paths and operators are visited in
// sorted order so equal filters yield equal expressions.
func (b *expressionBuilder) addFilter(filter storagemodels.Document) error {
	paths := make([]string, 0, len(filter))
	for path := range filter {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		cond := filter[path]
		ops, ok := operatorDocument(cond)
		if !ok {
			if err := b.compare(path, "=", cond); err != nil {
				return err
			}
			continue
		}

		opNames := make([]string, 0, len(ops))
		for op := range ops {
			opNames = append(opNames, op)
		}
		sort.Strings(opNames)

		for _, op := range opNames {
			if err := b.addOperator(path, op, ops[op]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *expressionBuilder) addOperator(path, op string, arg any) error {
	if cmp, ok := comparators[op]; ok {
		return b.compare(path, cmp, arg)
	}

	switch op {
	case "$ne":
		placeholder, err := b.value(arg)
		if err != nil {
			return err
		}
		name := b.name(path)
		b.conditions = append(b.conditions, fmt.Sprintf("(attribute_not_exists(%s) OR %s <> %s)", name, name, placeholder))
		return nil
	case "$in":
		list, err := b.list(path, op, arg)
		if err != nil {
			return err
		}
		b.conditions = append(b.conditions, fmt.Sprintf("%s IN (%s)", b.name(path), list))
		return nil
	case "$nin":
		list, err := b.list(path, op, arg)
		if err != nil {
			return err
		}
		name := b.name(path)
		b.conditions = append(b.conditions, fmt.Sprintf("(attribute_not_exists(%s) OR NOT %s IN (%s))", name, name, list))
		return nil
	case "$exists":
		want, ok := arg.(bool)
		if !ok {
			return errors.NewValidationError(path, "$exists requires a boolean")
		}
		fn := "attribute_not_exists"
		if want {
			fn = "attribute_exists"
		}
		b.conditions = append(b.conditions, fmt.Sprintf("%s(%s)", fn, b.name(path)))
		return nil
	default:
		return errors.NewValidationError(path, fmt.Sprintf("unsupported filter operator %s", op))
	}
}

// list binds every value of arg and returns the joined placeholders.
func (b *expressionBuilder) list(path, op string, arg any) (string, error) {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", errors.NewValidationError(path, op+" requires a list of values")
	}
	if rv.Len() == 0 {
		return "", errors.NewValidationError(path, op+" requires at least one value")
	}
	placeholders := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		placeholder, err := b.value(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		placeholders[i] = placeholder
	}
	return strings.Join(placeholders, ", "), nil
}

func (b *expressionBuilder) expression() *string {
	if len(b.conditions) == 0 {
		return nil
	}
	return aws.String(strings.Join(b.conditions, " AND "))
}

func operatorDocument(v any) (storagemodels.Document, bool) {
	doc, ok := storagemodels.AsDocument(v)
	if !ok || len(doc) == 0 {
		return nil, false
	}
	for k := range doc {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return doc, true
}
