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

// PostgresDigestStore implements the store.DigestStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDigestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDigestStore creates a new PostgreSQL implementation of the DigestStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDigestStore(db store.DBTX, logger *slog.Logger) *PostgresDigestStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDigestStore{
		db:     db,
		logger: logger.With(slog.String("component", "digest_store")),
	}
}

// Ensure PostgresDigestStore implements store.DigestStore interface
var _ store.DigestStore = (*PostgresDigestStore)(nil)

// Create implements store.DigestStore.Create
// Returns store.ErrInvalidEntity if the subscriber ID does not exist.
func (s *PostgresDigestStore) Create(ctx context.Context, record *domain.DigestRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("digest record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("digest_id", record.ID.String()))
		return err
	}

	paperIDs, err := encodeJSONB(record.PaperIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO digest_records (id, subscriber_id, paper_ids, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.SubscriberID,
		paperIDs,
		record.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create digest record",
			slog.String("error", err.Error()),
			slog.String("digest_id", record.ID.String()),
			slog.String("subscriber_id", record.SubscriberID.String()))
		return MapError(err)
	}

	log.Info("digest record created",
		slog.String("digest_id", record.ID.String()),
		slog.String("subscriber_id", record.SubscriberID.String()),
		slog.Int("paper_count", len(record.PaperIDs)))
	return nil
}

// GetByID implements store.DigestStore.GetByID
// Returns store.ErrDigestNotFound if the record does not exist.
func (s *PostgresDigestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DigestRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, subscriber_id, paper_ids, created_at
		FROM digest_records
		WHERE id = $1
	`

	var record domain.DigestRecord
	var paperIDs []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.SubscriberID,
		&paperIDs,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("digest record not found", slog.String("digest_id", id.String()))
			return nil, store.ErrDigestNotFound
		}
		log.Error("failed to get digest record",
			slog.String("error", err.Error()),
			slog.String("digest_id", id.String()))
		return nil, MapError(err)
	}

	record.PaperIDs, err = decodeJSONB[uuid.UUID](paperIDs)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// LatestForSubscriber implements store.DigestStore.LatestForSubscriber
// Returns store.ErrDigestNotFound if the subscriber has no digest records.
func (s *PostgresDigestStore) LatestForSubscriber(ctx context.Context, subscriberID uuid.UUID) (*domain.DigestRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, subscriber_id, paper_ids, created_at
		FROM digest_records
		WHERE subscriber_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var record domain.DigestRecord
	var paperIDs []byte

	err := s.db.QueryRowContext(ctx, query, subscriberID).Scan(
		&record.ID,
		&record.SubscriberID,
		&paperIDs,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no digest records for subscriber",
				slog.String("subscriber_id", subscriberID.String()))
			return nil, store.ErrDigestNotFound
		}
		log.Error("failed to get latest digest record",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriberID.String()))
		return nil, MapError(err)
	}

	record.PaperIDs, err = decodeJSONB[uuid.UUID](paperIDs)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// ListForSubscriber implements store.DigestStore.ListForSubscriber
func (s *PostgresDigestStore) ListForSubscriber(ctx context.Context, subscriberID uuid.UUID, limit int) ([]*domain.DigestRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, subscriber_id, paper_ids, created_at
		FROM digest_records
		WHERE subscriber_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, subscriberID, limit)
	if err != nil {
		log.Error("failed to list digest records",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriberID.String()))
		return nil, MapError(err)
	}
	defer rows.Close()

	records := make([]*domain.DigestRecord, 0)
	for rows.Next() {
		var record domain.DigestRecord
		var paperIDs []byte

		if err := rows.Scan(&record.ID, &record.SubscriberID, &paperIDs, &record.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		record.PaperIDs, err = decodeJSONB[uuid.UUID](paperIDs)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// ExistsSince implements store.DigestStore.ExistsSince
func (s *PostgresDigestStore) ExistsSince(ctx context.Context, subscriberID uuid.UUID, since time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM digest_records
			WHERE subscriber_id = $1 AND created_at >= $2
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, subscriberID, since).Scan(&exists)
	if err != nil {
		log.Error("failed to check digest existence",
			slog.String("error", err.Error()),
			slog.String("subscriber_id", subscriberID.String()))
		return false, MapError(err)
	}

	return exists, nil
}

// WithTx implements store.DigestStore.WithTx
// It returns a new DigestStore instance using the provided transaction.
func (s *PostgresDigestStore) WithTx(tx *sql.Tx) store.DigestStore {
	return &PostgresDigestStore{
		db:     tx,
		logger: s.logger,
	}
}
