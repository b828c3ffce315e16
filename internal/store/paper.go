package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
)

// PaperStore defines the interface for paper data persistence.
type PaperStore interface {
	// InsertNew saves the given papers, silently skipping any whose URL is
	// already present in the store. Returns the number of rows actually
	// inserted, so a second run over the same feed reports zero.
	InsertNew(ctx context.Context, papers []*domain.Paper) (int, error)

	// GetByID retrieves a paper by its unique ID.
	// Returns ErrPaperNotFound if the paper does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error)

	// GetByURLs retrieves the stored rows for the given URLs, preserving
	// the order of the input slice. URLs with no matching row are omitted.
	GetByURLs(ctx context.Context, urls []string) ([]*domain.Paper, error)

	// UpdateSynopsis back-fills the generated synopsis for an existing
	// paper. A synopsis already present is never replaced; the call is
	// then a no-op. Returns ErrPaperNotFound if the paper does not exist.
	UpdateSynopsis(ctx context.Context, id uuid.UUID, synopsis string) error

	// WithTx returns a new PaperStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) PaperStore
}
