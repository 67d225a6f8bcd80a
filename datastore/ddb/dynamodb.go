/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	seederrors "github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/model"
	"github.com/suparena/entityseed/registry"
)

// EntityTypeAttribute is injected into every item so records of different
// types can share one table.
const EntityTypeAttribute = "EntityType"

// Client is the part of the DynamoDB API the store uses. *dynamodb.Client
// satisfies it.
type Client interface {
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

// DynamodbDataStore implements datastore.DataStore[T] by using AWS DynamoDB as the underlying data store.
type DynamodbDataStore[T any] struct {
	client    Client
	tableName string
	schema    *model.Schema[T]
	opts      options
}

// Option configures a DynamodbDataStore.
type Option func(*options)

type options struct {
	indexMap   map[string]string
	createOnly bool
	lookup     *lookupIndex
	attrNames  map[string]string
	logger     *slog.Logger
}

type lookupIndex struct {
	gsi      GSIConfig
	template string
}

// WithIndexMap sets the key templates written with every item, e.g.
// {"PK": "USER#{id}", "SK": "PROFILE"}. Without it the map registered for T
// in the registry package is used.
func WithIndexMap(indexMap map[string]string) Option {
	return func(o *options) {
		o.indexMap = indexMap
	}
}

// WithCreateOnly makes Persist fail with an already exists error instead of
// overwriting an item with the same primary key.
func WithCreateOnly() Option {
	return func(o *options) {
		o.createOnly = true
	}
}

// WithLookupIndex makes FindBy query a GSI instead of scanning. template is
// expanded against the filter to produce the GSI partition key value, e.g.
// "EMAIL#{email}". Filters that cannot fill every macro fall back to a scan.
func WithLookupIndex(gsi GSIConfig, template string) Option {
	return func(o *options) {
		o.lookup = &lookupIndex{gsi: gsi, template: template}
	}
}

// WithAttributeNames maps schema fields to item attribute names. Fields not
// listed are stored under their own name.
func WithAttributeNames(names map[string]string) Option {
	return func(o *options) {
		o.attrNames = make(map[string]string, len(names))
		for field, attr := range names {
			o.attrNames[model.NormalizeKey(field)] = attr
		}
	}
}

// WithLogger sets the logger requests are traced to at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros fills every template of indexMap with attribute values of av.
// It also reports macros that had no value.
func expandMacros(indexMap map[string]string, av map[string]types.AttributeValue) (map[string]string, []string) {
	res := make(map[string]string, len(indexMap))
	var missing []string

	for fieldName, template := range indexMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			// macro is something like "{id}"
			key := strings.Trim(macro, "{}")

			val, ok := av[key]
			if !ok {
				val, ok = av[model.NormalizeKey(key)]
			}
			if !ok {
				missing = append(missing, key)
				return ""
			}

			// Convert 'val' (types.AttributeValue) into a string.
			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				// NULL, binary, sets and documents have no key form
				missing = append(missing, key)
				return ""
			}
		})
		res[fieldName] = expanded
	}

	return res, missing
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used
// when accessKey is set, otherwise the default AWS credential chain. endpoint
// overrides the service URL (DynamoDB Local, LocalStack).
func NewDynamoDBClient(ctx context.Context, region, accessKey, secretKey, endpoint string) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	slog.Debug("DynamoDB client initialized.", "region", region, "endpoint", endpoint)
	return client, nil
}

// NewDynamodbDataStore constructs a new DynamodbDataStore for type T over
// tableName. Schema fields become item attributes.
func NewDynamodbDataStore[T any](client Client, tableName string, schema *model.Schema[T], opts ...Option) (*DynamodbDataStore[T], error) {
	if client == nil {
		return nil, seederrors.NewValidationError("client", "a DynamoDB client is required")
	}
	if tableName == "" {
		return nil, seederrors.NewValidationError("table", "a table name is required")
	}
	if schema == nil {
		return nil, seederrors.NewValidationError("schema", "a schema is required")
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &DynamodbDataStore[T]{
		client:    client,
		tableName: tableName,
		schema:    schema,
		opts:      o,
	}, nil
}

// Schema returns the schema items are read through.
func (d *DynamodbDataStore[T]) Schema() *model.Schema[T] {
	return d.schema
}

// Construct builds an unsaved record.
func (d *DynamodbDataStore[T]) Construct(_ context.Context, attrs model.Attributes) (*T, error) {
	return d.schema.New(attrs)
}

// Persist stores record, expanding the index map into key attributes and
// tagging the item with its entity type. A record without identity gets a
// random UUID first.
func (d *DynamodbDataStore[T]) Persist(ctx context.Context, record *T) (*T, error) {
	indexMap := d.opts.indexMap
	if indexMap == nil {
		var ok bool
		if indexMap, ok = registry.GetIndexMap[T](); !ok {
			return nil, fmt.Errorf("%w for %s", seederrors.ErrNoIndexMap, d.schema.Name())
		}
	}

	if identity := d.schema.Identity(); identity != "" {
		if _, set := d.schema.IdentityValue(record); !set {
			if err := d.schema.Set(record, identity, uuid.NewString()); err != nil {
				return nil, err
			}
		}
	}

	av, err := d.marshalRecord(record)
	if err != nil {
		return nil, err
	}

	// Macros name schema fields, which may be stored under other names
	expanded, missing := expandMacros(indexMap, d.fieldValues(av))
	if len(missing) > 0 {
		return nil, seederrors.NewValidationError(strings.Join(missing, ","), "index map macro has no value")
	}

	// Insert the expanded fields as PK, SK, etc.
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	av[EntityTypeAttribute] = &types.AttributeValueMemberS{Value: d.schema.Name()}

	input := &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      av,
	}
	if d.opts.createOnly {
		input.ConditionExpression = aws.String("attribute_not_exists(PK)")
	}

	d.opts.logger.DebugContext(ctx, "Putting item.", "table", d.tableName, "entityType", d.schema.Name(), "pk", expanded["PK"])
	if _, err := d.client.PutItem(ctx, input); err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, fmt.Errorf("PutItem failed: %w: %w", seederrors.NewAlreadyExistsError(d.schema.Name(), expanded["PK"]), err)
		}
		return nil, fmt.Errorf("PutItem failed: %w", err)
	}
	return record, nil
}

// FindBy returns the first item of this entity type whose attributes equal
// every filter value, or (nil, nil). It queries the lookup index when one is
// configured and the filter fills its template, and scans otherwise.
func (d *DynamodbDataStore[T]) FindBy(ctx context.Context, filter model.Attributes) (*T, error) {
	typed, err := d.typedFilter(filter)
	if err != nil {
		return nil, err
	}

	names := map[string]string{"#et": EntityTypeAttribute}
	values := map[string]types.AttributeValue{
		":et": &types.AttributeValueMemberS{Value: d.schema.Name()},
	}
	conditions := []string{"#et = :et"}
	for i, field := range typed.Keys() {
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		v, err := d.marshalValue(typed[field])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter %s: %w", field, err)
		}
		names[name] = d.attrName(field)
		values[value] = v
		conditions = append(conditions, fmt.Sprintf("%s = %s", name, value))
	}
	filterExpr := strings.Join(conditions, " AND ")

	if d.opts.lookup != nil {
		if pk, ok := d.lookupKey(typed); ok {
			return d.queryIndex(ctx, pk, filterExpr, names, values)
		}
	}
	return d.scan(ctx, filterExpr, names, values)
}

func (d *DynamodbDataStore[T]) queryIndex(ctx context.Context, pk, filterExpr string, names map[string]string, values map[string]types.AttributeValue) (*T, error) {
	gsi := d.opts.lookup.gsi
	names["#pk"] = gsi.PartitionKeyName
	values[":pk"] = &types.AttributeValueMemberS{Value: pk}

	d.opts.logger.DebugContext(ctx, "Querying index.", "table", d.tableName, "index", gsi.IndexName, "pk", pk)
	paginator := sdk.NewQueryPaginator(d.client, &sdk.QueryInput{
		TableName:                 &d.tableName,
		IndexName:                 aws.String(gsi.IndexName),
		KeyConditionExpression:    aws.String("#pk = :pk"),
		FilterExpression:          aws.String(filterExpr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}
		if len(page.Items) > 0 {
			return d.unmarshalRecord(page.Items[0])
		}
	}
	return nil, nil
}

func (d *DynamodbDataStore[T]) scan(ctx context.Context, filterExpr string, names map[string]string, values map[string]types.AttributeValue) (*T, error) {
	d.opts.logger.DebugContext(ctx, "Scanning table.", "table", d.tableName, "filter", filterExpr)
	paginator := sdk.NewScanPaginator(d.client, &sdk.ScanInput{
		TableName:                 &d.tableName,
		FilterExpression:          aws.String(filterExpr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		if len(page.Items) > 0 {
			return d.unmarshalRecord(page.Items[0])
		}
	}
	return nil, nil
}

// typedFilter coerces filter values to the field types of T, so a YAML
// string "42" compares equal to a stored number.
func (d *DynamodbDataStore[T]) typedFilter(filter model.Attributes) (model.Attributes, error) {
	normalized, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	probe, err := d.schema.New(normalized)
	if err != nil {
		return nil, err
	}
	typed := make(model.Attributes, len(normalized))
	for k := range normalized {
		v, _ := d.schema.Get(probe, k)
		typed[k] = v
	}
	return typed, nil
}

func (d *DynamodbDataStore[T]) lookupKey(typed model.Attributes) (string, bool) {
	av := make(map[string]types.AttributeValue, len(typed))
	for field, v := range typed {
		mv, err := d.marshalValue(v)
		if err != nil {
			return "", false
		}
		av[field] = mv
		av[d.attrName(field)] = mv
	}
	expanded, missing := expandMacros(map[string]string{"pk": d.opts.lookup.template}, av)
	if len(missing) > 0 {
		return "", false
	}
	return expanded["pk"], true
}

// fieldValues re-keys a marshalled item by schema field name.
func (d *DynamodbDataStore[T]) fieldValues(av map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(av))
	for _, field := range d.schema.Fields() {
		if v, ok := av[d.attrName(field)]; ok {
			out[field] = v
		}
	}
	return out
}

func (d *DynamodbDataStore[T]) attrName(field string) string {
	if name, ok := d.opts.attrNames[field]; ok {
		return name
	}
	return field
}

func (d *DynamodbDataStore[T]) marshalRecord(record *T) (map[string]types.AttributeValue, error) {
	values := d.schema.Values(record)
	item := make(map[string]any, len(values))
	for field, v := range values {
		if isNil(v) {
			continue
		}
		item[d.attrName(field)] = v
	}
	av, err := attributevalue.MarshalMapWithOptions(item, func(o *attributevalue.EncoderOptions) {
		o.UseEncodingMarshalers = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", d.schema.Name(), err)
	}
	return av, nil
}

func (d *DynamodbDataStore[T]) marshalValue(v any) (types.AttributeValue, error) {
	return attributevalue.MarshalWithOptions(v, func(o *attributevalue.EncoderOptions) {
		o.UseEncodingMarshalers = true
	})
}

func (d *DynamodbDataStore[T]) unmarshalRecord(item map[string]types.AttributeValue) (*T, error) {
	var raw map[string]any
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	attrs := make(model.Attributes, len(raw))
	for _, field := range d.schema.Fields() {
		if v, ok := raw[d.attrName(field)]; ok {
			attrs[field] = v
		}
	}
	return d.schema.New(attrs)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
