package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/homegate/notify-pipeline/internal/domain"
)

// metricsPK groups all daily rows under one partition so a single Query
// returns the history in date order.
const metricsPK = "REPUTATION#DAILY"

// MetricsStore persists daily reputation metrics, one item per calendar
// date (SK = YYYY-MM-DD). PutItem gives upsert semantics for free: a second
// run on the same date replaces the item.
type MetricsStore struct {
	client    *dynamodb.Client
	tableName string
}

type metricsItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.ReputationMetrics
}

// NewMetricsStore creates a store over the given table.
func NewMetricsStore(client *dynamodb.Client, tableName string) *MetricsStore {
	return &MetricsStore{client: client, tableName: tableName}
}

// UpsertDailyMetrics writes the row for m.MetricDate, replacing any
// existing row for that date.
func (s *MetricsStore) UpsertDailyMetrics(ctx context.Context, m *domain.ReputationMetrics) error {
	item := metricsItem{
		PK:                metricsPK,
		SK:                m.MetricDate,
		ReputationMetrics: *m,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling metrics row: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting metrics row: %w", err)
	}
	return nil
}

// GetByDate returns the row for a YYYY-MM-DD date, or nil when absent.
func (s *MetricsStore) GetByDate(ctx context.Context, date string) (*domain.ReputationMetrics, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: metricsPK},
			"SK": &types.AttributeValueMemberS{Value: date},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting metrics row: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item metricsItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling metrics row: %w", err)
	}
	return &item.ReputationMetrics, nil
}

// Recent returns up to days rows, newest date first. Date-shaped sort keys
// make DynamoDB's descending index order the wanted chronology.
func (s *MetricsStore) Recent(ctx context.Context, days int) ([]domain.ReputationMetrics, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: metricsPK},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if days > 0 {
		input.Limit = aws.Int32(int32(days))
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("querying metrics rows: %w", err)
	}

	rows := make([]domain.ReputationMetrics, 0, len(result.Items))
	for _, raw := range result.Items {
		var item metricsItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshaling metrics row: %w", err)
		}
		rows = append(rows, item.ReputationMetrics)
	}
	return rows, nil
}
