package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
)

// SubscriberStore defines the interface for subscriber data persistence.
type SubscriberStore interface {
	// Create saves a new subscriber to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Subscriber if data is invalid.
	Create(ctx context.Context, subscriber *domain.Subscriber) error

	// GetByID retrieves a subscriber by its unique ID.
	// Returns ErrSubscriberNotFound if the subscriber does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error)

	// ListActiveSubscribed retrieves all subscribers that are both active
	// and have digest delivery enabled. Returns an empty slice if none match.
	ListActiveSubscribed(ctx context.Context) ([]*domain.Subscriber, error)

	// Update saves changes to an existing subscriber.
	// Returns ErrSubscriberNotFound if the subscriber does not exist.
	Update(ctx context.Context, subscriber *domain.Subscriber) error

	// WithTx returns a new SubscriberStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) SubscriberStore
}
