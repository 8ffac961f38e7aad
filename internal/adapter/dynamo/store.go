// Package dynamo implements the document store on one DynamoDB table keyed
// by collection (hash) and id (range). User fields live in a nested "data"
// map so they never collide with the key attributes.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

const (
	attrCollection = "collection"
	attrID         = "id"
	attrCreatedAt  = "createdAt"
	attrData       = "data"
)

// Client is the subset of *dynamodb.Client the store uses.
type Client interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store is a docstore.Store on DynamoDB. Ordering and cursors are applied in
// process after the collection partition has been read.
type Store struct {
	client Client
	table  string
	now    func() time.Time
}

// New creates a Store on the given table.
func New(client Client, table string) *Store {
	return &Store{client: client, table: table, now: time.Now}
}

func key(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrCollection: &types.AttributeValueMemberS{Value: collection},
		attrID:         &types.AttributeValueMemberS{Value: id},
	}
}

// Create puts a new item, refusing to overwrite an existing id.
func (s *Store) Create(ctx context.Context, collection string, fields docstore.Record) (string, error) {
	id := uuid.NewString()
	data, err := marshalData(fields)
	if err != nil {
		return "", fmt.Errorf("%s: marshal: %w", collection, err)
	}

	item := key(collection, id)
	item[attrCreatedAt] = nanos(s.now())
	item[attrData] = data

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": attrID,
		},
	})
	if err != nil {
		return "", mapError(err, collection, id)
	}
	return id, nil
}

// Get reads one item with a consistent read.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key(collection, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, mapError(err, collection, id)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
	}
	return unmarshalItem(out.Item)
}

// Put replaces the data of an item, keeping createdAt when it exists.
func (s *Store) Put(ctx context.Context, collection, id string, fields docstore.Record) error {
	data, err := marshalData(fields)
	if err != nil {
		return fmt.Errorf("%s %s: marshal: %w", collection, id, err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              key(collection, id),
		UpdateExpression: aws.String("SET #data = :data, #created = if_not_exists(#created, :now)"),
		ExpressionAttributeNames: map[string]string{
			"#data":    attrData,
			"#created": attrCreatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":data": data,
			":now":  nanos(s.now()),
		},
	})
	if err != nil {
		return mapError(err, collection, id)
	}
	return nil
}

// Update sets or merges data under a condition expression built from the
// precondition.
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Record, opts docstore.UpdateOptions) error {
	names := map[string]string{"#id": attrID, "#data": attrData}
	values := map[string]types.AttributeValue{}

	var set []string
	if opts.MergeOnly {
		i := 0
		for field, v := range fields {
			if field == docstore.FieldID || field == docstore.FieldCreatedAt {
				continue
			}
			av, err := attributevalue.Marshal(v)
			if err != nil {
				return fmt.Errorf("%s %s: marshal %s: %w", collection, id, field, err)
			}
			n, p := "#u"+strconv.Itoa(i), ":u"+strconv.Itoa(i)
			names[n] = field
			values[p] = av
			set = append(set, "#data."+n+" = "+p)
			i++
		}
	} else {
		data, err := marshalData(fields)
		if err != nil {
			return fmt.Errorf("%s %s: marshal: %w", collection, id, err)
		}
		values[":data"] = data
		set = append(set, "#data = :data")
	}
	if len(set) == 0 {
		// Nothing to write; still report a missing item or failed precondition.
		rec, err := s.Get(ctx, collection, id)
		if err != nil {
			return err
		}
		if !docstore.Satisfies(rec, opts.Precondition) {
			return fmt.Errorf("%s %s: precondition failed: %w", collection, id, domain.ErrConflict)
		}
		return nil
	}

	conds := []string{"attribute_exists(#id)"}
	for i, field := range slices.Sorted(maps.Keys(opts.Precondition)) {
		n, p := "#p"+strconv.Itoa(i), ":p"+strconv.Itoa(i)
		names[n] = field
		cond, err := dataCondition(n, p, opts.Precondition[field], values)
		if err != nil {
			return fmt.Errorf("%s %s: marshal precondition %s: %w", collection, id, field, err)
		}
		conds = append(conds, cond)
	}

	in := &dynamodb.UpdateItemInput{
		TableName:                           aws.String(s.table),
		Key:                                 key(collection, id),
		UpdateExpression:                    aws.String("SET " + strings.Join(set, ", ")),
		ConditionExpression:                 aws.String(strings.Join(conds, " AND ")),
		ExpressionAttributeNames:            names,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}
	if len(values) > 0 {
		in.ExpressionAttributeValues = values
	}

	if _, err := s.client.UpdateItem(ctx, in); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			if len(ccf.Item) == 0 {
				return fmt.Errorf("%s %s: %w", collection, id, domain.ErrNotFound)
			}
			return fmt.Errorf("%s %s: precondition failed: %w", collection, id, domain.ErrConflict)
		}
		return mapError(err, collection, id)
	}
	return nil
}

// dataCondition renders "data field holds want" for the attribute name n and
// value placeholder p. An OrAbsent value also accepts a missing attribute or
// a NULL.
func dataCondition(n, p string, want any, values map[string]types.AttributeValue) (string, error) {
	opt, orAbsent := want.(docstore.OrAbsent)
	if orAbsent {
		want = opt.Value
	}
	av, err := attributevalue.Marshal(want)
	if err != nil {
		return "", err
	}
	values[p] = av

	path := "#data." + n
	if !orAbsent {
		return path + " = " + p, nil
	}
	values[":null"] = &types.AttributeValueMemberS{Value: "NULL"}
	return "(attribute_not_exists(" + path + ") OR attribute_type(" + path + ", :null) OR " + path + " = " + p + ")", nil
}

// Query reads the collection partition with the equality filters pushed
// down, then orders and pages in process.
func (s *Store) Query(ctx context.Context, q docstore.Query) (docstore.Result, error) {
	names := map[string]string{"#c": attrCollection}
	values := map[string]types.AttributeValue{
		":c": &types.AttributeValueMemberS{Value: q.Collection},
	}

	var filters []string
	for i, f := range q.Filters {
		n, p := "#f"+strconv.Itoa(i), ":f"+strconv.Itoa(i)
		switch f.Field {
		case docstore.FieldID:
			av, err := attributevalue.Marshal(f.Value)
			if err != nil {
				return docstore.Result{}, fmt.Errorf("%s: marshal filter %s: %w", q.Collection, f.Field, err)
			}
			names[n] = attrID
			values[p] = av
			filters = append(filters, n+" = "+p)
		case docstore.FieldCreatedAt:
			t, ok := f.Value.(time.Time)
			if !ok {
				return docstore.Result{}, fmt.Errorf("%s: createdAt filter %v: %w", q.Collection, f.Value, domain.ErrValidation)
			}
			names[n] = attrCreatedAt
			values[p] = nanos(t)
			filters = append(filters, n+" = "+p)
		default:
			names["#data"] = attrData
			names[n] = f.Field
			cond, err := dataCondition(n, p, f.Value, values)
			if err != nil {
				return docstore.Result{}, fmt.Errorf("%s: marshal filter %s: %w", q.Collection, f.Field, err)
			}
			filters = append(filters, cond)
		}
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String("#c = :c"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	if len(filters) > 0 {
		in.FilterExpression = aws.String(strings.Join(filters, " AND "))
	}

	var candidates []docstore.Record
	for {
		out, err := s.client.Query(ctx, in)
		if err != nil {
			return docstore.Result{}, mapError(err, q.Collection, "query")
		}
		for _, item := range out.Items {
			rec, err := unmarshalItem(item)
			if err != nil {
				return docstore.Result{}, err
			}
			candidates = append(candidates, rec)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}

	if q.OrderBy.Field == "" {
		q.OrderBy.Field = docstore.FieldCreatedAt
	}
	return docstore.Execute(candidates, q), nil
}

// Ping describes the table.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}); err != nil {
		return mapError(err, s.table, "ping")
	}
	return nil
}

func nanos(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.UTC().UnixNano(), 10)}
}

func marshalData(fields docstore.Record) (types.AttributeValue, error) {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == docstore.FieldID || k == docstore.FieldCreatedAt {
			continue
		}
		data[k] = v
	}
	m, err := attributevalue.MarshalMap(data)
	if err != nil {
		return nil, err
	}
	return &types.AttributeValueMemberM{Value: m}, nil
}

func unmarshalItem(item map[string]types.AttributeValue) (docstore.Record, error) {
	rec := docstore.Record{}
	if m, ok := item[attrData].(*types.AttributeValueMemberM); ok {
		if err := attributevalue.UnmarshalMap(m.Value, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
	}
	if id, ok := item[attrID].(*types.AttributeValueMemberS); ok {
		rec[docstore.FieldID] = id.Value
	}
	if n, ok := item[attrCreatedAt].(*types.AttributeValueMemberN); ok {
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unmarshal createdAt %q: %w", n.Value, err)
		}
		rec[docstore.FieldCreatedAt] = time.Unix(0, v).UTC()
	}
	return rec, nil
}

var transientCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
	"TransactionConflictException":           true,
}

// mapError converts SDK errors to domain errors. Context errors pass through.
func mapError(err error, entity, id string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return fmt.Errorf("%s %s: table: %w", entity, id, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && transientCodes[apiErr.ErrorCode()] {
		return fmt.Errorf("%s %s: %w: %w", entity, id, domain.ErrTransient, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s %s: %w: %w", entity, id, domain.ErrTransient, err)
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
