package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
)

// DigestStore defines the interface for digest record persistence.
// A digest record is the audit trail of one successful delivery: which
// subscriber received which papers, and when.
type DigestStore interface {
	// Create saves a new digest record to the store.
	// Returns validation errors from the domain DigestRecord if data is invalid.
	Create(ctx context.Context, record *domain.DigestRecord) error

	// GetByID retrieves a digest record by its unique ID.
	// Returns ErrDigestNotFound if the record does not exist. Referenced
	// paper IDs are returned as stored; callers must tolerate papers that
	// can no longer be resolved.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DigestRecord, error)

	// LatestForSubscriber retrieves the most recent digest record for the
	// given subscriber. Returns ErrDigestNotFound if the subscriber has
	// never received a digest.
	LatestForSubscriber(ctx context.Context, subscriberID uuid.UUID) (*domain.DigestRecord, error)

	// ListForSubscriber retrieves the subscriber's digest records, newest
	// first, up to limit. An empty history yields an empty slice, not an
	// error.
	ListForSubscriber(ctx context.Context, subscriberID uuid.UUID, limit int) ([]*domain.DigestRecord, error)

	// ExistsSince reports whether the subscriber has a digest record
	// created at or after the given instant.
	ExistsSince(ctx context.Context, subscriberID uuid.UUID, since time.Time) (bool, error)

	// WithTx returns a new DigestStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) DigestStore
}
