package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"custody-wallet/internal/domain"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDynamoDBAPI is a mock implementation of DynamoDBAPI.
type MockDynamoDBAPI struct {
	mock.Mock
}

func (m *MockDynamoDBAPI) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.UpdateItemOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func marshalItem(t *testing.T, summary domain.PaymentSummary) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(summaryItem{Period: periodKey(summary.Month, summary.Year), PaymentSummary: summary})
	require.NoError(t, err)
	return av
}

func TestUpsertPaymentSummary(t *testing.T) {
	ctx := context.Background()
	generatedAt := time.Date(2026, 4, 1, 0, 5, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mockClient := new(MockDynamoDBAPI)
		store := NewSummaryStore(mockClient, "payment-summaries")
		summary := &domain.PaymentSummary{ID: "new-id", Month: 3, Year: 2026, TotalPayments: 3, SuccessfulPayments: 2, PendingPayments: 1, GeneratedAt: generatedAt}

		stored := *summary
		stored.ID = "existing-id"
		mockClient.On("UpdateItem", ctx, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			period, ok := in.Key["period"].(*types.AttributeValueMemberS)
			return ok && period.Value == "2026-03" && *in.TableName == "payment-summaries" &&
				in.ExpressionAttributeNames["#month"] == "month"
		})).Return(&dynamodb.UpdateItemOutput{Attributes: marshalItem(t, stored)}, nil).Once()

		err := store.UpsertPaymentSummary(ctx, summary)

		require.NoError(t, err)
		assert.Equal(t, "existing-id", summary.ID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(MockDynamoDBAPI)
		store := NewSummaryStore(mockClient, "payment-summaries")

		mockClient.On("UpdateItem", ctx, mock.Anything).Return(nil, errors.New("update item failed")).Once()

		err := store.UpsertPaymentSummary(ctx, &domain.PaymentSummary{ID: "x", Month: 1, Year: 2026})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert payment summary in DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestListPaymentSummaries(t *testing.T) {
	ctx := context.Background()

	t.Run("PagesAndSorts", func(t *testing.T) {
		mockClient := new(MockDynamoDBAPI)
		store := NewSummaryStore(mockClient, "payment-summaries")

		jan := domain.PaymentSummary{ID: "a", Month: 1, Year: 2026, TotalPayments: 1}
		dec := domain.PaymentSummary{ID: "b", Month: 12, Year: 2025, TotalPayments: 2}
		mar := domain.PaymentSummary{ID: "c", Month: 3, Year: 2026, TotalPayments: 3}
		lastKey := map[string]types.AttributeValue{"period": &types.AttributeValueMemberS{Value: "2026-01"}}

		mockClient.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
			return in.ExclusiveStartKey == nil
		})).Return(&dynamodb.ScanOutput{
			Items:            []map[string]types.AttributeValue{marshalItem(t, jan), marshalItem(t, dec)},
			LastEvaluatedKey: lastKey,
		}, nil).Once()
		mockClient.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
			return in.ExclusiveStartKey != nil
		})).Return(&dynamodb.ScanOutput{
			Items: []map[string]types.AttributeValue{marshalItem(t, mar)},
		}, nil).Once()

		summaries, err := store.ListPaymentSummaries(ctx)

		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, "c", summaries[0].ID)
		assert.Equal(t, "a", summaries[1].ID)
		assert.Equal(t, "b", summaries[2].ID)
		assert.Equal(t, int64(3), summaries[0].TotalPayments)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(MockDynamoDBAPI)
		store := NewSummaryStore(mockClient, "payment-summaries")

		mockClient.On("Scan", ctx, mock.Anything).Return(nil, errors.New("scan failed")).Once()

		_, err := store.ListPaymentSummaries(ctx)

		assert.Error(t, err)
		mockClient.AssertExpectations(t)
	})
}
