/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docmapper/storagemodels"
)

// pageRequest is a Scan, or a Query when the filter pins a partition key.
type pageRequest struct {
	indexName    *string
	keyCondition *string
	filter       *string
	names        map[string]string
	values       map[string]types.AttributeValue
	sel          types.Select
	limit        *int32
}

func (r *pageRequest) operation() string {
	if r.keyCondition == nil {
		return "scan"
	}
	if r.indexName != nil {
		return "query:" + *r.indexName
	}
	return "query"
}

type page struct {
	items   []map[string]types.AttributeValue
	count   int32
	lastKey map[string]types.AttributeValue
}

// buildRequest compiles c into a page request restricted to the store's collection.
func (d *DynamodbDocumentStore) buildRequest(c *storagemodels.Criteria, sel types.Select) (*pageRequest, error) {
	var filter storagemodels.Document
	if c != nil {
		filter = c.Filter
	}

	b := newExpressionBuilder()
	req := &pageRequest{sel: sel, limit: aws.Int32(d.pageSize)}

	if attr, index, value, ok := d.planKeyQuery(filter); ok {
		placeholder, err := b.value(value)
		if err != nil {
			return nil, err
		}
		req.keyCondition = aws.String(fmt.Sprintf("%s = %s", b.name(attr), placeholder))
		req.indexName = index
	}

	if err := b.compare(CollectionAttribute, "=", d.collection); err != nil {
		return nil, err
	}
	if err := b.addFilter(filter); err != nil {
		return nil, err
	}

	req.filter = b.expression()
	req.names = b.names
	req.values = b.values
	return req, nil
}

// planKeyQuery finds a partition key (the table's PK, then each GSI) whose
// template macros are all bound by literal equality conditions in filter.
func (d *DynamodbDocumentStore) planKeyQuery(filter storagemodels.Document) (attr string, index *string, value string, ok bool) {
	if len(filter) == 0 {
		return "", nil, "", false
	}
	if v, bound := bindTemplate(d.indexMap["PK"], filter); bound {
		return "PK", nil, v, true
	}
	for _, g := range d.gsis {
		template, declared := d.indexMap[g.PartitionKeyName]
		if !declared {
			continue
		}
		if v, bound := bindTemplate(template, filter); bound {
			return g.PartitionKeyName, aws.String(g.IndexName), v, true
		}
	}
	return "", nil, "", false
}

// bindTemplate expands template from literal equality conditions. Templates
// without macros are never bound since they would match the whole table.
func bindTemplate(template string, filter storagemodels.Document) (string, bool) {
	macros := macroPattern.FindAllStringSubmatch(template, -1)
	if len(macros) == 0 {
		return "", false
	}
	expanded := template
	for _, m := range macros {
		cond, present := filter[m[1]]
		if !present || cond == nil {
			return "", false
		}
		if _, isOp := operatorDocument(cond); isOp {
			return "", false
		}
		switch cond.(type) {
		case string, int, int32, int64, float64, bool:
		default:
			return "", false
		}
		expanded = strings.Replace(expanded, m[0], fmt.Sprint(cond), 1)
	}
	return expanded, true
}

// fetchPage executes one Scan or Query page starting after startKey.
func (d *DynamodbDocumentStore) fetchPage(ctx context.Context, req *pageRequest, startKey map[string]types.AttributeValue) (*page, error) {
	if req.keyCondition != nil {
		out, err := d.client.Query(ctx, &sdk.QueryInput{
			TableName:                 &d.tableName,
			IndexName:                 req.indexName,
			KeyConditionExpression:    req.keyCondition,
			FilterExpression:          req.filter,
			ExpressionAttributeNames:  req.names,
			ExpressionAttributeValues: req.values,
			ExclusiveStartKey:         startKey,
			Select:                    req.sel,
			Limit:                     req.limit,
		})
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		return &page{items: out.Items, count: out.Count, lastKey: out.LastEvaluatedKey}, nil
	}

	out, err := d.client.Scan(ctx, &sdk.ScanInput{
		TableName:                 &d.tableName,
		FilterExpression:          req.filter,
		ExpressionAttributeNames:  req.names,
		ExpressionAttributeValues: req.values,
		ExclusiveStartKey:         startKey,
		Select:                    req.sel,
		Limit:                     req.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}
	return &page{items: out.Items, count: out.Count, lastKey: out.LastEvaluatedKey}, nil
}
