package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// PostgresSubscriberStore implements the store.SubscriberStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubscriberStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubscriberStore creates a new PostgreSQL implementation of the SubscriberStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSubscriberStore(db store.DBTX, logger *slog.Logger) *PostgresSubscriberStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubscriberStore{
		db:     db,
		logger: logger.With(slog.String("component", "subscriber_store")),
	}
}

// Ensure PostgresSubscriberStore implements store.SubscriberStore interface
var _ store.SubscriberStore = (*PostgresSubscriberStore)(nil)

// Create implements store.SubscriberStore.Create
// It saves a new subscriber to the database, handling domain validation.
func (s *PostgresSubscriberStore) Create(ctx context.Context, subscriber *domain.Subscriber) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subscriber.Validate(); err != nil {
		log.Warn("subscriber validation failed during create",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriber.ID.String()))
		return err
	}

	keywords, err := encodeJSONB(subscriber.Keywords)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subscribers (id, email, is_active, subscription_enabled, digest_time, keywords, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		subscriber.ID,
		subscriber.Email,
		subscriber.IsActive,
		subscriber.SubscriptionEnabled,
		subscriber.DigestTime,
		keywords,
		subscriber.CreatedAt,
		subscriber.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during subscriber creation",
				slog.String("subscriber_id", subscriber.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create subscriber",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriber.ID.String()))
		return MapError(err)
	}

	log.Info("subscriber created successfully",
		slog.String("subscriber_id", subscriber.ID.String()))
	return nil
}

// GetByID implements store.SubscriberStore.GetByID
// Returns store.ErrSubscriberNotFound if the subscriber does not exist.
func (s *PostgresSubscriberStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving subscriber by ID", slog.String("subscriber_id", id.String()))

	query := `
		SELECT id, email, is_active, subscription_enabled, digest_time, keywords, created_at, updated_at
		FROM subscribers
		WHERE id = $1
	`

	sub, err := scanSubscriber(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subscriber not found", slog.String("subscriber_id", id.String()))
			return nil, store.ErrSubscriberNotFound
		}
		log.Error("failed to get subscriber by ID",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", id.String()))
		return nil, MapError(err)
	}

	return sub, nil
}

// ListActiveSubscribed implements store.SubscriberStore.ListActiveSubscribed
// It retrieves all subscribers with both flags set, ordered by creation time
// so each scheduler pass visits subscribers in a stable order.
func (s *PostgresSubscriberStore) ListActiveSubscribed(ctx context.Context) ([]*domain.Subscriber, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, is_active, subscription_enabled, digest_time, keywords, created_at, updated_at
		FROM subscribers
		WHERE is_active = TRUE AND subscription_enabled = TRUE
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list active subscribers",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	subscribers := make([]*domain.Subscriber, 0)
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			log.Error("failed to scan subscriber row",
				slog.String("error", err.Error()))
			return nil, err
		}
		subscribers = append(subscribers, sub)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating subscriber rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed active subscribers",
		slog.Int("count", len(subscribers)))
	return subscribers, nil
}

// Update implements store.SubscriberStore.Update
// Returns store.ErrSubscriberNotFound if the subscriber does not exist.
func (s *PostgresSubscriberStore) Update(ctx context.Context, subscriber *domain.Subscriber) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subscriber.Validate(); err != nil {
		log.Warn("subscriber validation failed during update",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriber.ID.String()))
		return err
	}

	keywords, err := encodeJSONB(subscriber.Keywords)
	if err != nil {
		return err
	}

	subscriber.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscribers
		SET email = $1, is_active = $2, subscription_enabled = $3, digest_time = $4, keywords = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		subscriber.Email,
		subscriber.IsActive,
		subscriber.SubscriptionEnabled,
		subscriber.DigestTime,
		keywords,
		subscriber.UpdatedAt,
		subscriber.ID,
	)
	if err != nil {
		log.Error("failed to update subscriber",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriber.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriber.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("subscriber not found for update",
			slog.String("subscriber_id", subscriber.ID.String()))
		return store.ErrSubscriberNotFound
	}

	log.Info("subscriber updated successfully",
		slog.String("subscriber_id", subscriber.ID.String()))
	return nil
}

// WithTx implements store.SubscriberStore.WithTx
// It returns a new SubscriberStore instance using the provided transaction.
func (s *PostgresSubscriberStore) WithTx(tx *sql.Tx) store.SubscriberStore {
	return &PostgresSubscriberStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscriber(row rowScanner) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	var keywords []byte

	err := row.Scan(
		&sub.ID,
		&sub.Email,
		&sub.IsActive,
		&sub.SubscriptionEnabled,
		&sub.DigestTime,
		&keywords,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Keywords, err = decodeJSONB[string](keywords)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}
