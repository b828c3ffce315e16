package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// PostgresMailConfigStore implements the store.MailConfigStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMailConfigStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMailConfigStore creates a new PostgreSQL implementation of the MailConfigStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresMailConfigStore(db store.DBTX, logger *slog.Logger) *PostgresMailConfigStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMailConfigStore{
		db:     db,
		logger: logger.With(slog.String("component", "mail_config_store")),
	}
}

// Ensure PostgresMailConfigStore implements store.MailConfigStore interface
var _ store.MailConfigStore = (*PostgresMailConfigStore)(nil)

// Active implements store.MailConfigStore.Active
// Returns store.ErrMailConfigNotFound if no configuration is active.
func (s *PostgresMailConfigStore) Active(ctx context.Context) (*domain.MailTransportConfig, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, host, port, use_tls, username, password, from_email, from_name, is_active, created_at
		FROM mail_transport_configs
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	var cfg domain.MailTransportConfig
	err := s.db.QueryRowContext(ctx, query).Scan(
		&cfg.ID,
		&cfg.Host,
		&cfg.Port,
		&cfg.UseTLS,
		&cfg.Username,
		&cfg.Password,
		&cfg.FromEmail,
		&cfg.FromName,
		&cfg.IsActive,
		&cfg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no active mail transport config")
			return nil, store.ErrMailConfigNotFound
		}
		log.Error("failed to get active mail transport config",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &cfg, nil
}

// ReplaceActive implements store.MailConfigStore.ReplaceActive
// It deactivates every existing configuration and inserts the given one as
// active. Callers wanting atomicity must run this via WithTx inside a
// transaction; the two statements are not otherwise wrapped here.
func (s *PostgresMailConfigStore) ReplaceActive(ctx context.Context, cfg *domain.MailTransportConfig) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := cfg.Validate(); err != nil {
		log.Warn("mail config validation failed during replace",
			slog.String("error", err.Error()),
			slog.String("config_id", cfg.ID.String()))
		return err
	}

	deactivate := `
		UPDATE mail_transport_configs
		SET is_active = FALSE
		WHERE is_active = TRUE
	`
	if _, err := s.db.ExecContext(ctx, deactivate); err != nil {
		log.Error("failed to deactivate mail transport configs",
			slog.String("error", err.Error()))
		return MapError(err)
	}

	insert := `
		INSERT INTO mail_transport_configs (id, host, port, use_tls, username, password, from_email, from_name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		insert,
		cfg.ID,
		cfg.Host,
		cfg.Port,
		cfg.UseTLS,
		cfg.Username,
		cfg.Password,
		cfg.FromEmail,
		cfg.FromName,
		cfg.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert mail transport config",
			slog.String("error", err.Error()),
			slog.String("config_id", cfg.ID.String()))
		return MapError(err)
	}

	log.Info("mail transport config replaced",
		slog.String("config_id", cfg.ID.String()),
		slog.String("host", cfg.Host))
	return nil
}

// WithTx implements store.MailConfigStore.WithTx
// It returns a new MailConfigStore instance using the provided transaction.
func (s *PostgresMailConfigStore) WithTx(tx *sql.Tx) store.MailConfigStore {
	return &PostgresMailConfigStore{
		db:     tx,
		logger: s.logger,
	}
}
