/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docmapper/registry"
)

var _ Client = (*sdk.Client)(nil)

// fakeClient serves scripted pages. Page i carries LastEvaluatedKey {"PK": "<i+1>"}
// unless it is the last one.
type fakeClient struct {
	mu sync.Mutex

	pages    [][]map[string]types.AttributeValue
	pageErrs []error

	scanInputs   []*sdk.ScanInput
	queryInputs  []*sdk.QueryInput
	putInputs    []*sdk.PutItemInput
	deleteInputs []*sdk.DeleteItemInput

	putErr    error
	deleteErr error
}

func (f *fakeClient) nextPage(startKey map[string]types.AttributeValue) (items []map[string]types.AttributeValue, lastKey map[string]types.AttributeValue, err error) {
	if len(f.pageErrs) > 0 {
		err, f.pageErrs = f.pageErrs[0], f.pageErrs[1:]
		if err != nil {
			return nil, nil, err
		}
	}
	idx := 0
	if k, ok := startKey["PK"].(*types.AttributeValueMemberS); ok {
		idx, _ = strconv.Atoi(k.Value)
	}
	if idx >= len(f.pages) {
		return nil, nil, nil
	}
	if idx+1 < len(f.pages) {
		lastKey = map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: strconv.Itoa(idx + 1)}}
	}
	return f.pages[idx], lastKey, nil
}

func (f *fakeClient) Scan(ctx context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanInputs = append(f.scanInputs, in)
	items, lastKey, err := f.nextPage(in.ExclusiveStartKey)
	if err != nil {
		return nil, err
	}
	return &sdk.ScanOutput{Items: items, Count: int32(len(items)), LastEvaluatedKey: lastKey}, nil
}

func (f *fakeClient) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryInputs = append(f.queryInputs, in)
	items, lastKey, err := f.nextPage(in.ExclusiveStartKey)
	if err != nil {
		return nil, err
	}
	return &sdk.QueryOutput{Items: items, Count: int32(len(items)), LastEvaluatedKey: lastKey}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putInputs = append(f.putInputs, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteInputs = append(f.deleteInputs, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &sdk.DeleteItemOutput{}, nil
}

func galleryIndexMaps() *registry.IndexMapRegistry {
	maps := registry.NewIndexMapRegistry()
	maps.RegisterIndexMap("galleries", map[string]string{
		"PK":     "GALLERY#{_id}",
		"SK":     "GALLERY#{_id}",
		"GSI1PK": "OWNER#{owner}",
	})
	return maps
}

func newTestStore(t *testing.T, client *fakeClient, opts ...Option) *DynamodbDocumentStore {
	t.Helper()
	store, err := NewDynamodbDocumentStore(client, "docs", "galleries", galleryIndexMaps(), opts...)
	require.NoError(t, err)
	return store
}

func item(t *testing.T, doc map[string]any) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(doc)
	require.NoError(t, err)
	return av
}
