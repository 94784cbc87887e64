package reputation

import (
	"context"
	"math"
	"time"

	"github.com/homegate/notify-pipeline/internal/domain"
	"github.com/homegate/notify-pipeline/internal/pkg/failsafe"
	"github.com/homegate/notify-pipeline/internal/pkg/logger"
)

// Alert thresholds follow the provider's account-health review triggers.
// Fixed by policy, not runtime configuration.
const (
	bounceRateAlertThreshold    = 5.0
	complaintRateAlertThreshold = 0.1
)

// statisticsWindowDays is the rolling window aggregated into one day's row.
const statisticsWindowDays = 14

// Service computes daily reputation metrics. Safe for concurrent use; note
// that two overlapping runs for the same date both write and the later one
// wins, so scheduling should keep at most one run in flight.
type Service struct {
	provider Provider
	store    Store
	now      func() time.Time
}

// NewService creates a reputation service. store may be nil when the metrics
// table is not configured; runs then compute but skip persistence.
func NewService(provider Provider, store Store) *Service {
	return &Service{provider: provider, store: store, now: time.Now}
}

// UpdateDailyMetrics aggregates the provider's statistics window into the
// current date's row and upserts it. Running twice on one date overwrites
// the row rather than appending. Provider failures zero-fill, so the result
// is always well formed.
func (s *Service) UpdateDailyMetrics(ctx context.Context) *domain.ReputationMetrics {
	now := s.now().UTC()

	quota := failsafe.Fetch("reputation.quota", domain.SendQuota{}, func() (domain.SendQuota, error) {
		return s.provider.GetQuota(ctx)
	})
	stats := failsafe.Fetch("reputation.statistics", []domain.SendStatistic(nil), func() ([]domain.SendStatistic, error) {
		return s.provider.GetDeliveryStatistics(ctx, now.AddDate(0, 0, -statisticsWindowDays), now)
	})

	var attempts, bounces, complaints int64
	for _, p := range stats {
		attempts += p.DeliveryAttempts
		bounces += p.Bounces
		complaints += p.Complaints
	}

	bounceRate, complaintRate, deliveryRate := rates(attempts, bounces, complaints)

	m := &domain.ReputationMetrics{
		MetricDate:         now.Format("2006-01-02"),
		TotalEmailsSent:    attempts,
		TotalBounces:       bounces,
		TotalComplaints:    complaints,
		BounceRate:         bounceRate,
		ComplaintRate:      complaintRate,
		DeliveryRate:       deliveryRate,
		ReputationScore:    Score(bounceRate, complaintRate, deliveryRate),
		SendingQuotaUsed:   quota.SentLast24Hours,
		SendingQuotaMax:    quota.Max24HourSend,
		SendRateMax:        quota.MaxSendRate,
		BounceRateAlert:    bounceRate > bounceRateAlertThreshold,
		ComplaintRateAlert: complaintRate > complaintRateAlertThreshold,
		UpdatedAt:          now,
	}

	if s.store == nil {
		logger.Warn("metrics store not configured, skipping snapshot persistence",
			"date", m.MetricDate)
		return m
	}

	failsafe.Run("reputation.upsert", func() error {
		return s.store.UpsertDailyMetrics(ctx, m)
	})
	logger.Info("daily reputation metrics updated",
		"date", m.MetricDate,
		"score", m.ReputationScore,
		"bounce_rate", m.BounceRate,
		"complaint_rate", m.ComplaintRate)
	return m
}

// Score maps bounce/complaint/delivery rates to a 0-100 health score.
// Penalty bands apply singly, highest severity first; complaint penalties
// outweigh bounce penalties at each tier because complaints damage sender
// standing more.
func Score(bounceRate, complaintRate, deliveryRate float64) int {
	score := 100

	switch {
	case bounceRate > 10:
		score -= 40
	case bounceRate > 5:
		score -= 25
	case bounceRate > 2:
		score -= 10
	}

	switch {
	case complaintRate > 0.5:
		score -= 50
	case complaintRate > 0.1:
		score -= 30
	case complaintRate > 0.05:
		score -= 15
	}

	switch {
	case deliveryRate > 98:
		score += 5
	case deliveryRate < 90:
		score -= 15
	case deliveryRate > 90 && deliveryRate < 95:
		score -= 5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// MetricsFor returns the stored row for a YYYY-MM-DD date, or nil when the
// row is absent or the store is unavailable.
func (s *Service) MetricsFor(ctx context.Context, date string) *domain.ReputationMetrics {
	if s.store == nil {
		return nil
	}
	return failsafe.Fetch("reputation.get", (*domain.ReputationMetrics)(nil), func() (*domain.ReputationMetrics, error) {
		return s.store.GetByDate(ctx, date)
	})
}

// RecentMetrics returns up to days stored rows, newest first.
func (s *Service) RecentMetrics(ctx context.Context, days int) []domain.ReputationMetrics {
	if s.store == nil {
		return nil
	}
	return failsafe.Fetch("reputation.recent", []domain.ReputationMetrics(nil), func() ([]domain.ReputationMetrics, error) {
		return s.store.Recent(ctx, days)
	})
}

// CheckAlerts recomputes current rates from fresh provider statistics
// without touching the store, for on-demand checks between scheduled runs.
func (s *Service) CheckAlerts(ctx context.Context) domain.AlertStatus {
	now := s.now().UTC()
	stats := failsafe.Fetch("reputation.alerts", []domain.SendStatistic(nil), func() ([]domain.SendStatistic, error) {
		return s.provider.GetDeliveryStatistics(ctx, now.AddDate(0, 0, -statisticsWindowDays), now)
	})

	var attempts, bounces, complaints int64
	for _, p := range stats {
		attempts += p.DeliveryAttempts
		bounces += p.Bounces
		complaints += p.Complaints
	}

	bounceRate, complaintRate, _ := rates(attempts, bounces, complaints)
	return domain.AlertStatus{
		BounceRateAlert:      bounceRate > bounceRateAlertThreshold,
		ComplaintRateAlert:   complaintRate > complaintRateAlertThreshold,
		CurrentBounceRate:    bounceRate,
		CurrentComplaintRate: complaintRate,
	}
}

// rates derives the three percentage rates, 2-decimal rounded, with zero
// attempts yielding all zeros.
func rates(attempts, bounces, complaints int64) (bounceRate, complaintRate, deliveryRate float64) {
	if attempts == 0 {
		return 0, 0, 0
	}
	a := float64(attempts)
	bounceRate = round2(float64(bounces) / a * 100)
	complaintRate = round2(float64(complaints) / a * 100)
	deliveryRate = round2(float64(attempts-bounces-complaints) / a * 100)
	return bounceRate, complaintRate, deliveryRate
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
