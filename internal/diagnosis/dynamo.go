package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoRepository persists diagnoses in a DynamoDB table keyed by id.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ Repository = (*DynamoRepository)(nil)

// NewDynamoRepository builds a repository backed by the provided client.
func NewDynamoRepository(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoRepository {
	if client == nil {
		panic("diagnosis: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("diagnosis: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoRepository{client: client, tableName: tableName, logger: logger}
}

// Create writes d once; an existing id fails the condition check.
func (r *DynamoRepository) Create(ctx context.Context, d *Diagnosis) error {
	if d == nil || d.ID == "" {
		return errors.New("diagnosis: id required")
	}
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("diagnosis: failed to marshal diagnosis: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("diagnosis: failed to persist diagnosis: %w", err)
	}
	return nil
}

// Get loads one diagnosis.
func (r *DynamoRepository) Get(ctx context.Context, id string) (*Diagnosis, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("diagnosis: failed to load diagnosis: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var d Diagnosis
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, fmt.Errorf("diagnosis: failed to unmarshal diagnosis: %w", err)
	}
	return &d, nil
}

// List scans the table. User and status filters run server-side; the crop
// substring match, ordering and paging happen in memory.
func (r *DynamoRepository) List(ctx context.Context, f ListFilter) (*ListPage, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}

	var conditions []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	if f.UserID != "" {
		conditions = append(conditions, "#user = :user")
		names["#user"] = "userId"
		values[":user"] = &types.AttributeValueMemberS{Value: f.UserID}
	}
	if f.Status != "" {
		conditions = append(conditions, "#status = :status")
		names["#status"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(f.Status)}
	}
	if len(conditions) > 0 {
		input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	paginator := dynamodb.NewScanPaginator(r.client, input)
	var matched []*Diagnosis
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("diagnosis: scan diagnoses: %w", err)
		}
		var batch []*Diagnosis
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("diagnosis: unmarshal diagnoses: %w", err)
		}
		for _, d := range batch {
			if f.matches(d) {
				matched = append(matched, d)
			}
		}
	}
	r.logger.Debug("listed diagnoses", "matched", len(matched), "user_id", f.UserID)
	return paginate(matched, f.Page, f.Limit), nil
}
