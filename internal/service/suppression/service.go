package suppression

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/homegate/notify-pipeline/internal/domain"
	"github.com/homegate/notify-pipeline/internal/pkg/failsafe"
	"github.com/homegate/notify-pipeline/internal/pkg/logger"
)

// CheckResult is the outcome of a pre-send suppression check.
type CheckResult struct {
	Suppressed      bool                   `json:"suppressed"`
	Reason          string                 `json:"reason,omitempty"`
	SuppressionType domain.SuppressionType `json:"suppression_type,omitempty"`
	SuppressedAt    *time.Time             `json:"suppressed_at,omitempty"`
}

// SuppressRequest carries the inputs for adding an address to the list.
type SuppressRequest struct {
	EmailAddress    string                   `json:"email_address"`
	SuppressionType domain.SuppressionType   `json:"suppression_type"`
	Reason          string                   `json:"reason"`
	BounceType      string                   `json:"bounce_type,omitempty"`
	BounceSubType   string                   `json:"bounce_sub_type,omitempty"`
	Source          domain.SuppressionSource `json:"source"`
	ActorID         string                   `json:"actor_id,omitempty"`
}

// Stats are aggregate counts over the active suppression list.
type Stats struct {
	TotalSuppressed  int `json:"total_suppressed"`
	Bounces          int `json:"bounces"`
	Complaints       int `json:"complaints"`
	Manual           int `json:"manual"`
	PermanentBounces int `json:"permanent_bounces"`
	TransientBounces int `json:"transient_bounces"`
}

// Service implements the suppression filter. It is safe for concurrent use.
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates a suppression service backed by the given repository.
// repo may be nil when the suppression table is not configured; every check
// then reports sendable. cache is optional.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// IsSuppressed checks whether an address should be blocked from sending.
// The check fails open: any storage failure is logged and the address is
// reported sendable, so suppression outages never stop the pipeline.
func (s *Service) IsSuppressed(ctx context.Context, email string) CheckResult {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return CheckResult{}
	}
	if s.repo == nil {
		logger.Warn("suppression store not configured, treating address as sendable",
			"email", logger.RedactEmail(email))
		return CheckResult{}
	}

	cacheKey := "suppression:" + email
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, cacheKey); ok {
			var cached CheckResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached
			}
		}
	}

	result := failsafe.Fetch("suppression.check", CheckResult{}, func() (CheckResult, error) {
		records, err := s.repo.ActiveByEmail(ctx, email)
		if err != nil {
			return CheckResult{}, fmt.Errorf("active suppressions for %s: %w", logger.RedactEmail(email), err)
		}
		if len(records) == 0 {
			return CheckResult{}, nil
		}
		latest := records[0]
		at := latest.SuppressedAt
		return CheckResult{
			Suppressed:      true,
			Reason:          latest.Reason,
			SuppressionType: latest.SuppressionType,
			SuppressedAt:    &at,
		}, nil
	})

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, cacheKey, raw)
		}
	}
	return result
}

// Suppress adds an address to the suppression list. Unlike the check path,
// writes surface their errors: a caller recording a provider bounce needs to
// know the record did not stick.
func (s *Service) Suppress(ctx context.Context, req SuppressRequest) (*domain.SuppressionRecord, error) {
	email := domain.NormalizeEmail(req.EmailAddress)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if s.repo == nil {
		return nil, fmt.Errorf("suppression store not configured")
	}

	if req.SuppressionType == "" {
		req.SuppressionType = domain.SuppressionManual
	}
	if req.Source == "" {
		req.Source = domain.SourceAdminAction
	}

	now := time.Now().UTC()
	rec := &domain.SuppressionRecord{
		ID:              uuid.New().String(),
		EmailAddress:    email,
		SuppressionType: req.SuppressionType,
		Reason:          req.Reason,
		BounceType:      req.BounceType,
		BounceSubType:   req.BounceSubType,
		Source:          req.Source,
		IsActive:        true,
		SuppressedAt:    now,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       req.ActorID,
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert suppression: %w", err)
	}

	s.invalidate(ctx, email)
	logger.Info("address suppressed",
		"email", logger.RedactEmail(email),
		"type", string(rec.SuppressionType),
		"source", string(rec.Source))
	return rec, nil
}

// Reactivate clears an address for sending again by deactivating every
// active record for it. An address with no active records is a no-op
// returning false, not an error. Deactivation is best-effort and sequential:
// a failure on one record is logged and the rest are still attempted, with
// no rollback on partial failure.
func (s *Service) Reactivate(ctx context.Context, email, actorID string) bool {
	email = domain.NormalizeEmail(email)
	if email == "" || s.repo == nil {
		return false
	}

	records := failsafe.Fetch("suppression.reactivate", []domain.SuppressionRecord(nil), func() ([]domain.SuppressionRecord, error) {
		return s.repo.ActiveByEmail(ctx, email)
	})
	if len(records) == 0 {
		return false
	}

	deactivated := 0
	for i := range records {
		rec := records[i]
		rec.IsActive = false
		rec.UpdatedAt = time.Now().UTC()
		rec.UpdatedBy = actorID
		if failsafe.Run("suppression.deactivate", func() error {
			return s.repo.Deactivate(ctx, &rec)
		}) {
			deactivated++
		}
	}

	s.invalidate(ctx, email)
	logger.Info("address reactivated",
		"email", logger.RedactEmail(email),
		"records", deactivated,
		"actor", actorID)
	return true
}

// ListSuppressed returns up to limit active records for the operator view.
// Read failures degrade to an empty list.
func (s *Service) ListSuppressed(ctx context.Context, limit int) []domain.SuppressionRecord {
	if s.repo == nil {
		return nil
	}
	return failsafe.Fetch("suppression.list", []domain.SuppressionRecord(nil), func() ([]domain.SuppressionRecord, error) {
		return s.repo.ListActive(ctx, limit)
	})
}

// Stats aggregates the active list by type and bounce permanence.
func (s *Service) Stats(ctx context.Context) Stats {
	if s.repo == nil {
		return Stats{}
	}
	records := failsafe.Fetch("suppression.stats", []domain.SuppressionRecord(nil), func() ([]domain.SuppressionRecord, error) {
		return s.repo.AllActive(ctx)
	})

	var stats Stats
	stats.TotalSuppressed = len(records)
	for _, rec := range records {
		switch rec.SuppressionType {
		case domain.SuppressionBounce:
			stats.Bounces++
			switch rec.BounceType {
			case domain.BouncePermanent:
				stats.PermanentBounces++
			case domain.BounceTransient:
				stats.TransientBounces++
			}
		case domain.SuppressionComplaint:
			stats.Complaints++
		case domain.SuppressionManual:
			stats.Manual++
		}
	}
	return stats
}

func (s *Service) invalidate(ctx context.Context, email string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, "suppression:"+email)
	}
}
