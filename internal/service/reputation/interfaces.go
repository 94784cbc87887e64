package reputation

import (
	"context"
	"time"

	"github.com/homegate/notify-pipeline/internal/domain"
)

// Provider is the transport provider's read surface for sender health.
type Provider interface {
	// GetQuota returns the current sending quota state.
	GetQuota(ctx context.Context) (domain.SendQuota, error)

	// GetDeliveryStatistics returns provider-reported data points covering
	// [from, to].
	GetDeliveryStatistics(ctx context.Context, from, to time.Time) ([]domain.SendStatistic, error)
}

// Store is the persistence contract for daily metric rows.
type Store interface {
	// UpsertDailyMetrics writes the row for m.MetricDate, replacing any
	// existing row for that date.
	UpsertDailyMetrics(ctx context.Context, m *domain.ReputationMetrics) error

	// GetByDate returns the row for a YYYY-MM-DD date, or nil when absent.
	GetByDate(ctx context.Context, date string) (*domain.ReputationMetrics, error)

	// Recent returns up to days rows, sorted descending by date.
	Recent(ctx context.Context, days int) ([]domain.ReputationMetrics, error)
}
