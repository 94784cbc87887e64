package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/homegate/notify-pipeline/internal/domain"
)

// SuppressionStore persists suppression records in DynamoDB. Items are
// grouped per address (PK = SUPPRESSION#<normalized email>) with the record
// ID as sort key, so one address accumulates its full suppression history
// under a single partition.
type SuppressionStore struct {
	client    *dynamodb.Client
	tableName string
}

type suppressionItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.SuppressionRecord
}

// NewSuppressionStore creates a store over the given table.
func NewSuppressionStore(client *dynamodb.Client, tableName string) *SuppressionStore {
	return &SuppressionStore{client: client, tableName: tableName}
}

func suppressionPK(email string) string {
	return "SUPPRESSION#" + email
}

// ActiveByEmail returns the address's active records, newest suppression
// first.
func (s *SuppressionStore) ActiveByEmail(ctx context.Context, email string) ([]domain.SuppressionRecord, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		FilterExpression:       aws.String("IsActive = :active"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: suppressionPK(email)},
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying suppressions: %w", err)
	}

	records, err := unmarshalSuppressions(result.Items)
	if err != nil {
		return nil, err
	}
	sortBySuppressedAtDesc(records)
	return records, nil
}

// Insert writes a new record.
func (s *SuppressionStore) Insert(ctx context.Context, rec *domain.SuppressionRecord) error {
	return s.put(ctx, rec)
}

// Deactivate overwrites the record in place; the caller has already flipped
// IsActive and stamped the actor.
func (s *SuppressionStore) Deactivate(ctx context.Context, rec *domain.SuppressionRecord) error {
	return s.put(ctx, rec)
}

func (s *SuppressionStore) put(ctx context.Context, rec *domain.SuppressionRecord) error {
	item := suppressionItem{
		PK:                suppressionPK(rec.EmailAddress),
		SK:                rec.ID,
		SuppressionRecord: *rec,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling suppression record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting suppression record: %w", err)
	}
	return nil
}

// ListActive scans for active records across all addresses, newest first,
// truncated to limit when limit > 0.
func (s *SuppressionStore) ListActive(ctx context.Context, limit int) ([]domain.SuppressionRecord, error) {
	records, err := s.AllActive(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// AllActive scans every active record, following pagination.
func (s *SuppressionStore) AllActive(ctx context.Context) ([]domain.SuppressionRecord, error) {
	var records []domain.SuppressionRecord
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.tableName),
			FilterExpression: aws.String("IsActive = :active AND begins_with(PK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":active": &types.AttributeValueMemberBOOL{Value: true},
				":prefix": &types.AttributeValueMemberS{Value: "SUPPRESSION#"},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning suppressions: %w", err)
		}

		page, err := unmarshalSuppressions(result.Items)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sortBySuppressedAtDesc(records)
	return records, nil
}

func unmarshalSuppressions(items []map[string]types.AttributeValue) ([]domain.SuppressionRecord, error) {
	records := make([]domain.SuppressionRecord, 0, len(items))
	for _, raw := range items {
		var item suppressionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshaling suppression record: %w", err)
		}
		records = append(records, item.SuppressionRecord)
	}
	return records, nil
}

func sortBySuppressedAtDesc(records []domain.SuppressionRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].SuppressedAt.After(records[j].SuppressedAt)
	})
}
