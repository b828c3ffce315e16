package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// PostgresPaperStore implements the store.PaperStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPaperStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPaperStore creates a new PostgreSQL implementation of the PaperStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPaperStore(db store.DBTX, logger *slog.Logger) *PostgresPaperStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPaperStore{
		db:     db,
		logger: logger.With(slog.String("component", "paper_store")),
	}
}

// Ensure PostgresPaperStore implements store.PaperStore interface
var _ store.PaperStore = (*PostgresPaperStore)(nil)

// InsertNew implements store.PaperStore.InsertNew
// Papers whose URL already exists are skipped via ON CONFLICT DO NOTHING,
// so the operation is idempotent across repeated fetches of the same feed.
// Returns the number of rows actually inserted.
func (s *PostgresPaperStore) InsertNew(ctx context.Context, papers []*domain.Paper) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO papers (id, url, title, authors, abstract, synopsis, source, published_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO NOTHING
	`

	inserted := 0
	for _, paper := range papers {
		if err := paper.Validate(); err != nil {
			log.Warn("paper validation failed during insert",
				slog.String("error", err.Error()),
				slog.String("url", paper.URL))
			return inserted, err
		}

		authors, err := encodeJSONB(paper.Authors)
		if err != nil {
			return inserted, err
		}

		result, err := s.db.ExecContext(
			ctx,
			query,
			paper.ID,
			paper.URL,
			paper.Title,
			authors,
			paper.Abstract,
			paper.Synopsis,
			paper.Source,
			paper.PublishedAt,
			paper.CreatedAt,
		)
		if err != nil {
			log.Error("failed to insert paper",
				slog.String("error", err.Error()),
				slog.String("url", paper.URL))
			return inserted, MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			log.Error("failed to get rows affected",
				slog.String("error", err.Error()),
				slog.String("url", paper.URL))
			return inserted, err
		}
		if rowsAffected > 0 {
			inserted++
		} else {
			log.Debug("paper already present, skipped",
				slog.String("url", paper.URL))
		}
	}

	log.Info("papers inserted",
		slog.Int("received", len(papers)),
		slog.Int("inserted", inserted))
	return inserted, nil
}

// GetByID implements store.PaperStore.GetByID
// Returns store.ErrPaperNotFound if the paper does not exist.
func (s *PostgresPaperStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, url, title, authors, abstract, synopsis, source, published_at, created_at
		FROM papers
		WHERE id = $1
	`

	paper, err := scanPaper(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("paper not found", slog.String("paper_id", id.String()))
			return nil, store.ErrPaperNotFound
		}
		log.Error("failed to get paper by ID",
			slog.String("error", err.Error()),
			slog.String("paper_id", id.String()))
		return nil, MapError(err)
	}

	return paper, nil
}

// GetByURLs implements store.PaperStore.GetByURLs
// The result preserves the order of the input URLs; URLs with no stored
// row are silently omitted.
func (s *PostgresPaperStore) GetByURLs(ctx context.Context, urls []string) ([]*domain.Paper, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(urls) == 0 {
		return []*domain.Paper{}, nil
	}

	encoded, err := encodeJSONB(urls)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, url, title, authors, abstract, synopsis, source, published_at, created_at
		FROM papers
		WHERE url IN (SELECT jsonb_array_elements_text($1::jsonb))
	`

	rows, err := s.db.QueryContext(ctx, query, encoded)
	if err != nil {
		log.Error("failed to get papers by URLs",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	byURL := make(map[string]*domain.Paper, len(urls))
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			log.Error("failed to scan paper row",
				slog.String("error", err.Error()))
			return nil, err
		}
		byURL[paper.URL] = paper
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating paper rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	// Reassemble in input order.
	papers := make([]*domain.Paper, 0, len(byURL))
	for _, url := range urls {
		if paper, ok := byURL[url]; ok {
			papers = append(papers, paper)
		}
	}

	return papers, nil
}

// UpdateSynopsis implements store.PaperStore.UpdateSynopsis
// The write is back-fill only: a synopsis already present is never
// replaced, and the call is then a no-op. Returns store.ErrPaperNotFound
// if the paper does not exist.
func (s *PostgresPaperStore) UpdateSynopsis(ctx context.Context, id uuid.UUID, synopsis string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE papers
		SET synopsis = $1
		WHERE id = $2 AND synopsis IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, synopsis, id)
	if err != nil {
		log.Error("failed to update paper synopsis",
			slog.String("error", err.Error()),
			slog.String("paper_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("paper_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		// Zero rows means either the paper is gone or the synopsis was
		// already set; only the former is an error.
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM papers WHERE id = $1)`, id).Scan(&exists); err != nil {
			return MapError(err)
		}
		if !exists {
			log.Debug("paper not found for synopsis update",
				slog.String("paper_id", id.String()))
			return store.ErrPaperNotFound
		}
		log.Debug("synopsis already set, skipping back-fill",
			slog.String("paper_id", id.String()))
		return nil
	}

	log.Debug("paper synopsis updated",
		slog.String("paper_id", id.String()))
	return nil
}

// WithTx implements store.PaperStore.WithTx
// It returns a new PaperStore instance using the provided transaction.
func (s *PostgresPaperStore) WithTx(tx *sql.Tx) store.PaperStore {
	return &PostgresPaperStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanPaper(row rowScanner) (*domain.Paper, error) {
	var paper domain.Paper
	var authors []byte

	err := row.Scan(
		&paper.ID,
		&paper.URL,
		&paper.Title,
		&authors,
		&paper.Abstract,
		&paper.Synopsis,
		&paper.Source,
		&paper.PublishedAt,
		&paper.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	paper.Authors, err = decodeJSONB[string](authors)
	if err != nil {
		return nil, err
	}

	return &paper, nil
}
