// Package dynamo stores payment summaries in DynamoDB for deployments that
// run the monthly summary job as a Lambda.
package dynamo

import (
	"context"
	"fmt"
	"sort"

	"custody-wallet/internal/domain"
	"custody-wallet/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client used by SummaryStore.
type DynamoDBAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// summaryItem is the stored shape. The partition key is the period, so one
// item exists per month and year.
type summaryItem struct {
	Period string `dynamodbav:"period"`
	domain.PaymentSummary
}

func periodKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// SummaryStore implements repository.SummaryRepository on a DynamoDB table.
type SummaryStore struct {
	Client    DynamoDBAPI
	TableName string
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(client DynamoDBAPI, tableName string) *SummaryStore {
	return &SummaryStore{Client: client, TableName: tableName}
}

// Make sure we conform to the interface
var _ repository.SummaryRepository = (*SummaryStore)(nil)

// UpsertPaymentSummary writes the counts for the summary's period. The id of
// an existing item is kept and copied back into summary.
func (s *SummaryStore) UpsertPaymentSummary(ctx context.Context, summary *domain.PaymentSummary) error {
	key, err := attributevalue.MarshalMap(map[string]string{"period": periodKey(summary.Month, summary.Year)})
	if err != nil {
		return fmt.Errorf("failed to marshal summary key: %w", err)
	}

	values := map[string]interface{}{
		":id":           summary.ID,
		":month":        summary.Month,
		":year":         summary.Year,
		":total":        summary.TotalPayments,
		":successful":   summary.SuccessfulPayments,
		":pending":      summary.PendingPayments,
		":generated_at": summary.GeneratedAt,
	}
	exprValues := make(map[string]types.AttributeValue, len(values))
	for name, v := range values {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		exprValues[name] = av
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TableName),
		Key:       key,
		UpdateExpression: aws.String("SET #id = if_not_exists(#id, :id), #month = :month, #year = :year, " +
			"total_payments = :total, successful_payments = :successful, pending_payments = :pending, generated_at = :generated_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":    "id",
			"#month": "month",
			"#year":  "year",
		},
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to upsert payment summary in DynamoDB: %w", err)
	}

	if result.Attributes != nil {
		var stored summaryItem
		if err := attributevalue.UnmarshalMap(result.Attributes, &stored); err != nil {
			return fmt.Errorf("failed to unmarshal payment summary: %w", err)
		}
		summary.ID = stored.ID
	}
	return nil
}

// ListPaymentSummaries scans the table and returns summaries newest period first.
func (s *SummaryStore) ListPaymentSummaries(ctx context.Context) ([]domain.PaymentSummary, error) {
	var (
		items     []summaryItem
		startFrom map[string]types.AttributeValue
	)
	for {
		result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.TableName),
			ExclusiveStartKey: startFrom,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment summaries: %w", err)
		}

		var page []summaryItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment summaries: %w", err)
		}
		items = append(items, page...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startFrom = result.LastEvaluatedKey
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Period > items[j].Period })

	summaries := make([]domain.PaymentSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, item.PaymentSummary)
	}
	return summaries, nil
}
