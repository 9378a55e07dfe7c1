package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	pages       [][]map[string]types.AttributeValue
	scanInputs  []*dynamodb.ScanInput
	scanErr     error
	batchInputs []*dynamodb.BatchWriteItemInput
	unprocessed int
}

func (m *mockDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.scanInputs = append(m.scanInputs, in)
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	idx := len(m.scanInputs) - 1
	out := &dynamodb.ScanOutput{Items: m.pages[idx]}
	if idx < len(m.pages)-1 {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: "cursor"},
		}
	}
	return out, nil
}

func (m *mockDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	m.batchInputs = append(m.batchInputs, in)
	out := &dynamodb.BatchWriteItemOutput{}
	if m.unprocessed > 0 {
		for table, reqs := range in.RequestItems {
			n := min(m.unprocessed, len(reqs))
			out.UnprocessedItems = map[string][]types.WriteRequest{table: reqs[:n]}
		}
		m.unprocessed = 0
	}
	return out, nil
}

func marshalProducts(t *testing.T, products ...Product) []map[string]types.AttributeValue {
	t.Helper()
	var items []map[string]types.AttributeValue
	for _, p := range products {
		item, err := attributevalue.MarshalMap(p)
		require.NoError(t, err)
		items = append(items, item)
	}
	return items
}

func TestDynamoSource_AllPaginatesAndSorts(t *testing.T) {
	ps := testProducts()
	mock := &mockDynamo{pages: [][]map[string]types.AttributeValue{
		marshalProducts(t, ps[3], ps[1]),
		marshalProducts(t, ps[0], ps[2]),
	}}
	src := NewDynamoSource(mock, "products", nil)

	got, err := src.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(got))
	require.Len(t, mock.scanInputs, 2)
	assert.Equal(t, "products", *mock.scanInputs[0].TableName)
	assert.NotNil(t, mock.scanInputs[1].ExclusiveStartKey)
	assert.Equal(t, []string{"rice blast", "fungal diseases"}, got[0].Tags)
	assert.True(t, got[0].CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDynamoSource_ScanError(t *testing.T) {
	src := NewDynamoSource(&mockDynamo{scanErr: errors.New("boom")}, "products", nil)
	_, err := src.All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan products")
}

func TestDynamoSource_PutAllBatchesOf25(t *testing.T) {
	mock := &mockDynamo{}
	src := NewDynamoSource(mock, "products", nil)

	var products []Product
	for i := 0; i < 60; i++ {
		products = append(products, Product{ID: string(rune('a'+i%26)) + string(rune('0'+i/26)), Title: "x", Category: CategoryFungicide})
	}
	require.NoError(t, src.PutAll(context.Background(), products))
	require.Len(t, mock.batchInputs, 3)
	assert.Len(t, mock.batchInputs[0].RequestItems["products"], 25)
	assert.Len(t, mock.batchInputs[2].RequestItems["products"], 10)
}

func TestDynamoSource_PutAllRetriesUnprocessed(t *testing.T) {
	mock := &mockDynamo{unprocessed: 2}
	src := NewDynamoSource(mock, "products", nil)

	require.NoError(t, src.PutAll(context.Background(), testProducts()))
	require.Len(t, mock.batchInputs, 2)
	assert.Len(t, mock.batchInputs[1].RequestItems["products"], 2)
}

func TestDynamoSource_PutAllRequiresID(t *testing.T) {
	src := NewDynamoSource(&mockDynamo{}, "products", nil)
	err := src.PutAll(context.Background(), []Product{{Title: "nameless"}})
	assert.Error(t, err)
}

func TestNewDynamoSource_Panics(t *testing.T) {
	assert.Panics(t, func() { NewDynamoSource(nil, "products", nil) })
	assert.Panics(t, func() { NewDynamoSource(&mockDynamo{}, "", nil) })
}
