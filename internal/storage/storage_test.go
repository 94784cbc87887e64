package storage

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homegate/notify-pipeline/internal/domain"
	"github.com/homegate/notify-pipeline/internal/service/reputation"
	"github.com/homegate/notify-pipeline/internal/service/suppression"
)

// The stores must satisfy the service-layer contracts.
var (
	_ suppression.Repository = (*SuppressionStore)(nil)
	_ reputation.Store       = (*MetricsStore)(nil)
)

func TestSuppressionItemKeying(t *testing.T) {
	rec := &domain.SuppressionRecord{
		ID:              "rec-1",
		EmailAddress:    "lead@example.com",
		SuppressionType: domain.SuppressionBounce,
		IsActive:        true,
		SuppressedAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	item := suppressionItem{
		PK:                suppressionPK(rec.EmailAddress),
		SK:                rec.ID,
		SuppressionRecord: *rec,
	}

	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)

	var back suppressionItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &back))

	assert.Equal(t, "SUPPRESSION#lead@example.com", back.PK)
	assert.Equal(t, "rec-1", back.SK)
	assert.Equal(t, rec.EmailAddress, back.EmailAddress)
	assert.True(t, back.IsActive)
}

func TestMetricsItemKeying(t *testing.T) {
	m := &domain.ReputationMetrics{
		MetricDate:      "2026-09-01",
		TotalEmailsSent: 1000,
		ReputationScore: 90,
	}
	item := metricsItem{PK: metricsPK, SK: m.MetricDate, ReputationMetrics: *m}

	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)

	var back metricsItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &back))

	assert.Equal(t, "REPUTATION#DAILY", back.PK)
	assert.Equal(t, "2026-09-01", back.SK)
	assert.Equal(t, int64(1000), back.TotalEmailsSent)
	assert.Equal(t, 90, back.ReputationScore)
}

func TestSortBySuppressedAtDesc(t *testing.T) {
	records := []domain.SuppressionRecord{
		{ID: "a", SuppressedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", SuppressedAt: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "c", SuppressedAt: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)},
	}
	sortBySuppressedAtDesc(records)

	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "c", records[1].ID)
	assert.Equal(t, "a", records[2].ID)
}
