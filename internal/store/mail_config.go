package store

import (
	"context"
	"database/sql"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
)

// MailConfigStore defines the interface for mail transport configuration
// persistence. The store maintains the invariant that at most one
// configuration is active at any time.
type MailConfigStore interface {
	// Active retrieves the currently active mail transport configuration.
	// Returns ErrMailConfigNotFound if no configuration is active.
	Active(ctx context.Context) (*domain.MailTransportConfig, error)

	// ReplaceActive deactivates all existing configurations and inserts the
	// given one as the single active configuration. The swap happens
	// atomically within one transaction.
	ReplaceActive(ctx context.Context, cfg *domain.MailTransportConfig) error

	// WithTx returns a new MailConfigStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) MailConfigStore
}
