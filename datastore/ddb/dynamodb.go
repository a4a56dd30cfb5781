/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docmapper/datastore"
	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/registry"
	"github.com/suparena/docmapper/storagemodels"
)

// CollectionAttribute tags every item with the collection it belongs to.
const CollectionAttribute = "Collection"

// Client is the subset of the DynamoDB API used by the store.
type Client interface {
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

// DynamodbDocumentStore implements datastore.DocumentStore for one collection
// of a single DynamoDB table.
type DynamodbDocumentStore struct {
	client     Client
	tableName  string
	collection string
	indexMap   map[string]string
	gsis       []GSIConfig
	pageSize   int32
	logger     datastore.Logger
}

// Option defines a functional option for configuring DynamodbDocumentStore.
type Option func(*DynamodbDocumentStore) error

// WithLogger sets the logger for the store.
func WithLogger(logger datastore.Logger) Option {
	return func(d *DynamodbDocumentStore) error {
		d.logger = logger
		return nil
	}
}

// WithGSIs replaces the secondary indexes the store may query.
func WithGSIs(gsis ...GSIConfig) Option {
	return func(d *DynamodbDocumentStore) error {
		for _, g := range gsis {
			if g.IndexName == "" || g.PartitionKeyName == "" {
				return errors.NewConfigurationError("dynamodb store", "GSI requires an index name and a partition key")
			}
		}
		d.gsis = append([]GSIConfig(nil), gsis...)
		return nil
	}
}

// WithPageSize sets the number of items read per Scan or Query page.
func WithPageSize(size int32) Option {
	return func(d *DynamodbDocumentStore) error {
		if size <= 0 {
			return errors.NewConfigurationError("dynamodb store", "page size must be positive")
		}
		d.pageSize = size
		return nil
	}
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	if doc, ok := keysInput.(storagemodels.Document); ok {
		keysInput = map[string]any(doc)
	}
	// Convert keysInput to a map of attribute values
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))

	for fieldName, template := range indexMap {
		complete := true
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			// macro is something like "{_id}"
			key := strings.Trim(macro, "{}")

			val, ok := av[key]
			if !ok {
				complete = false
				return ""
			}

			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				// NULL, binary, sets, lists and maps do not make usable keys
				complete = false
				return ""
			}
		})
		// a key with an unresolved macro is no key at all
		if !complete {
			expanded = ""
		}
		res[fieldName] = expanded
	}

	return res, nil
}

// NewDynamoDBClient initializes a DynamoDB client. Empty credentials fall back
// to the default AWS credential chain; a non-empty endpoint overrides the
// service endpoint (e.g. DynamoDB Local).
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, endpoint string) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if awsAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// NewDynamodbDocumentStore constructs a store for collection. The collection
// must have an index map in indexMaps with at least a "PK" template.
func NewDynamodbDocumentStore(client Client, tableName, collection string, indexMaps *registry.IndexMapRegistry, opts ...Option) (*DynamodbDocumentStore, error) {
	if client == nil || tableName == "" || collection == "" {
		return nil, errors.NewConfigurationError("dynamodb store", "client, table name and collection are required")
	}
	if indexMaps == nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoIndexMap, collection)
	}
	indexMap, ok := indexMaps.GetIndexMap(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoIndexMap, collection)
	}
	if indexMap["PK"] == "" {
		return nil, errors.NewConfigurationError("dynamodb store", "index map for %s has no PK template", collection)
	}

	d := &DynamodbDocumentStore{
		client:     client,
		tableName:  tableName,
		collection: collection,
		indexMap:   indexMap,
		gsis:       DefaultGSIConfigs(),
		pageSize:   100,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = datastore.OrNop(d.logger)
	return d, nil
}

// Find reads every page matching the filter of c, then sorts, windows and
// projects the documents in memory.
func (d *DynamodbDocumentStore) Find(ctx context.Context, c *storagemodels.Criteria) ([]storagemodels.Document, error) {
	req, err := d.buildRequest(c, "")
	if err != nil {
		return nil, err
	}

	var docs []storagemodels.Document
	var startKey map[string]types.AttributeValue
	pages := 0
	for {
		page, err := d.fetchPage(ctx, req, startKey)
		if err != nil {
			return nil, err
		}
		pages++
		for _, item := range page.items {
			doc, err := d.itemToDocument(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
		if len(page.lastKey) == 0 {
			break
		}
		startKey = page.lastKey
	}

	d.logger.Debug("dynamodb find", "collection", d.collection, "operation", req.operation(), "pages", pages, "matched", len(docs))

	if c != nil {
		storagemodels.SortDocuments(docs, c.Sort)
		docs = storagemodels.Window(docs, c.Offset, c.Limit)
		if len(c.Select) > 0 {
			for i, doc := range docs {
				docs[i] = project(doc, c.Select)
			}
		}
	}
	return docs, nil
}

// Count returns the number of items matching the filter of c.
func (d *DynamodbDocumentStore) Count(ctx context.Context, c *storagemodels.Criteria) (int64, error) {
	req, err := d.buildRequest(c, types.SelectCount)
	if err != nil {
		return 0, err
	}

	var total int64
	var startKey map[string]types.AttributeValue
	for {
		page, err := d.fetchPage(ctx, req, startKey)
		if err != nil {
			return 0, err
		}
		total += int64(page.count)
		if len(page.lastKey) == 0 {
			return total, nil
		}
		startKey = page.lastKey
	}
}

// Insert stores doc with its expanded keys. An item with the same PK yields an
// AlreadyExists error.
func (d *DynamodbDocumentStore) Insert(ctx context.Context, doc storagemodels.Document) error {
	expanded, err := expandMacros(d.indexMap, doc)
	if err != nil {
		return err
	}
	key, err := d.buildKeyFromExpanded(expanded)
	if err != nil {
		return errors.NewValidationError("_id", err.Error())
	}

	av, err := attributevalue.MarshalMap(map[string]any(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	for k, v := range expanded {
		if v != "" {
			av[k] = &types.AttributeValueMemberS{Value: v}
		}
	}
	av[CollectionAttribute] = &types.AttributeValueMemberS{Value: d.collection}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &d.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewAlreadyExistsError(d.collection, keyString(key))
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}

	d.logger.Debug("dynamodb insert", "collection", d.collection, "key", keyString(key))
	return nil
}

// Delete removes the item whose key macros expand from key.
func (d *DynamodbDocumentStore) Delete(ctx context.Context, key string) error {
	keyMap, err := d.buildKeyFromExpanded(expandStringKey(d.indexMap, key))
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}

	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:           &d.tableName,
		Key:                 keyMap,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return errors.NewNotFoundError(d.collection, key)
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// buildKeyFromExpanded builds the primary key from the expanded index map.
// PK is required; SK is included when the index map declares one.
func (d *DynamodbDocumentStore) buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk := expanded["PK"]
	if pk == "" {
		return nil, fmt.Errorf("expanded index map missing valid PK")
	}
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
	}
	if _, hasSK := d.indexMap["SK"]; hasSK {
		sk := expanded["SK"]
		if sk == "" {
			return nil, fmt.Errorf("expanded index map missing valid SK")
		}
		key["SK"] = &types.AttributeValueMemberS{Value: sk}
	}
	return key, nil
}

// expandStringKey replaces every macro in the PK and SK templates with key.
func expandStringKey(indexMap map[string]string, key string) map[string]string {
	expanded := make(map[string]string, 2)
	for _, field := range []string{"PK", "SK"} {
		if template, ok := indexMap[field]; ok {
			expanded[field] = macroPattern.ReplaceAllLiteralString(template, key)
		}
	}
	return expanded
}

// itemToDocument strips the key and collection attributes and converts the
// item to the raw document form.
func (d *DynamodbDocumentStore) itemToDocument(item map[string]types.AttributeValue) (storagemodels.Document, error) {
	attrs := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		if _, isKey := d.indexMap[k]; isKey || k == CollectionAttribute {
			continue
		}
		attrs[k] = v
	}

	var raw map[string]any
	if err := attributevalue.UnmarshalMap(attrs, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return normalizeMap(raw), nil
}

func normalizeMap(m map[string]any) storagemodels.Document {
	doc := make(storagemodels.Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return normalizeMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func project(doc storagemodels.Document, fields []string) storagemodels.Document {
	out := storagemodels.Document{}
	if id, ok := doc["_id"]; ok {
		out["_id"] = id
	}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

func keyString(key map[string]types.AttributeValue) string {
	pk, _ := key["PK"].(*types.AttributeValueMemberS)
	sk, _ := key["SK"].(*types.AttributeValueMemberS)
	switch {
	case pk == nil:
		return ""
	case sk == nil:
		return pk.Value
	default:
		return pk.Value + "|" + sk.Value
	}
}
