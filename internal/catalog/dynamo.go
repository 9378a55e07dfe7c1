package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// batchWriteLimit is the DynamoDB BatchWriteItem request cap.
const batchWriteLimit = 25

type dynamoAPI interface {
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(context.Context, *dynamodb.BatchWriteItemInput, ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoSource reads the catalog from a DynamoDB table keyed by id.
type DynamoSource struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ Source = (*DynamoSource)(nil)

// NewDynamoSource builds a source backed by the provided DynamoDB client.
func NewDynamoSource(client dynamoAPI, tableName string, logger *logging.Logger) *DynamoSource {
	if client == nil {
		panic("catalog: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("catalog: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoSource{client: client, tableName: tableName, logger: logger}
}

// All scans the whole table and returns products in catalog order.
func (s *DynamoSource) All(ctx context.Context) ([]Product, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})

	var products []Product
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan products: %w", err)
		}
		var batch []Product
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("catalog: unmarshal products: %w", err)
		}
		products = append(products, batch...)
	}
	sortCatalogOrder(products)
	return products, nil
}

// PutAll writes products in batches of 25, retrying unprocessed items once.
func (s *DynamoSource) PutAll(ctx context.Context, products []Product) error {
	for start := 0; start < len(products); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(products))
		requests := make([]types.WriteRequest, 0, end-start)
		for i := start; i < end; i++ {
			if products[i].ID == "" {
				return errors.New("catalog: product id required")
			}
			item, err := attributevalue.MarshalMap(products[i])
			if err != nil {
				return fmt.Errorf("catalog: marshal product %s: %w", products[i].ID, err)
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: requests},
		})
		if err != nil {
			return fmt.Errorf("catalog: batch write products: %w", err)
		}
		if pending := out.UnprocessedItems[s.tableName]; len(pending) > 0 {
			s.logger.Warn("retrying unprocessed catalog writes", "count", len(pending))
			retry, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{s.tableName: pending},
			})
			if err != nil {
				return fmt.Errorf("catalog: retry batch write: %w", err)
			}
			if left := len(retry.UnprocessedItems[s.tableName]); left > 0 {
				return fmt.Errorf("catalog: %d products left unprocessed", left)
			}
		}
	}
	return nil
}
