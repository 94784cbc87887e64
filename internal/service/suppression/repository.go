package suppression

import (
	"context"

	"github.com/homegate/notify-pipeline/internal/domain"
)

// Repository defines the data access contract for suppression records.
type Repository interface {
	// ActiveByEmail returns every active suppression record for a normalized
	// address, most recent first. An empty slice means the address is sendable.
	ActiveByEmail(ctx context.Context, email string) ([]domain.SuppressionRecord, error)

	// Insert stores a new suppression record.
	Insert(ctx context.Context, rec *domain.SuppressionRecord) error

	// Deactivate flips one record to inactive, preserving it as history.
	Deactivate(ctx context.Context, rec *domain.SuppressionRecord) error

	// ListActive returns up to limit active records across all addresses.
	// limit <= 0 means no limit.
	ListActive(ctx context.Context, limit int) ([]domain.SuppressionRecord, error)

	// AllActive returns every active record, for aggregate statistics.
	AllActive(ctx context.Context) ([]domain.SuppressionRecord, error)
}

// Cache is an optional read-through layer in front of the repository for the
// hot IsSuppressed path. Implementations store opaque bytes; the service owns
// the encoding.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context, key string)
}
