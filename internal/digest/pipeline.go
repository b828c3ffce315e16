package digest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/config"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/platform/metrics"
	"github.com/paperboy-dev/paperboy-api/internal/store"
	"github.com/paperboy-dev/paperboy-api/internal/summary"
)

// Outcome classifies how a digest run for one subscriber ended.
type Outcome string

const (
	// OutcomeDelivered means the email was sent and the delivery recorded.
	OutcomeDelivered Outcome = "delivered"

	// OutcomeNoPapers means no papers were found for the subscriber's
	// queries, so no email was sent.
	OutcomeNoPapers Outcome = "no_papers_found"

	// OutcomeSendFailed means the email dispatch failed. Fetched papers
	// are still committed so the next run does not refetch them.
	OutcomeSendFailed Outcome = "send_failed"
)

// Result describes the outcome of one digest run for one subscriber.
type Result struct {
	Outcome    Outcome
	PaperCount int
	DigestID   uuid.UUID
}

// Fetcher retrieves papers for a query, returning an empty slice on
// upstream failure.
type Fetcher interface {
	FetchQuery(ctx context.Context, query string, maxResults int) []domain.Paper
}

// Sender dispatches one HTML email, reporting success as a boolean.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) bool
}

// txRunner matches store.RunInTransaction's shape with the database bound,
// so tests can substitute a pass-through runner.
type txRunner func(ctx context.Context, fn store.TxFn) error

// Pipeline executes a complete digest run for a subscriber: fetch,
// persist, summarize, render, send, record. All database writes for one
// run share a single transaction.
type Pipeline struct {
	runTx      txRunner
	papers     store.PaperStore
	digests    store.DigestStore
	fetcher    Fetcher
	summarizer summary.Summarizer
	sender     Sender
	renderer   *Renderer
	metrics    *metrics.Metrics
	fetchCfg   config.FetcherConfig
	logger     *slog.Logger
}

// NewPipeline assembles a digest pipeline. The summarizer may be nil,
// in which case every synopsis comes from summary.Fallback. If log is
// nil, a default logger will be used.
func NewPipeline(
	db *sql.DB,
	papers store.PaperStore,
	digests store.DigestStore,
	fetcher Fetcher,
	summarizer summary.Summarizer,
	sender Sender,
	renderer *Renderer,
	m *metrics.Metrics,
	fetchCfg config.FetcherConfig,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		papers:     papers,
		digests:    digests,
		fetcher:    fetcher,
		summarizer: summarizer,
		sender:     sender,
		renderer:   renderer,
		metrics:    m,
		fetchCfg:   fetchCfg,
		logger:     log.With(slog.String("component", "digest_pipeline")),
	}
}

// Run executes one digest delivery for the given subscriber. Expected
// outcomes (no papers, failed send) are reported in the Result rather
// than as errors; an error means the run itself failed and was rolled
// back.
func (p *Pipeline) Run(ctx context.Context, subscriber *domain.Subscriber) (Result, error) {
	log := logger.FromContextOrDefault(ctx, p.logger).With(
		slog.String("subscriber_id", subscriber.ID.String()))
	ctx = logger.WithLogger(ctx, log)

	queries := subscriber.Keywords
	if len(queries) == 0 {
		queries = []string{p.fetchCfg.DefaultQuery}
	}

	// Fetch outside the transaction: network time must not hold locks.
	var fetched []domain.Paper
	for _, query := range queries {
		log.Debug("fetching papers", slog.String("query", query))
		fetched = append(fetched, p.fetcher.FetchQuery(ctx, query, p.fetchCfg.MaxResults)...)
	}
	p.metrics.PapersFetched.Add(float64(len(fetched)))

	unique := DedupByURL(fetched)
	if len(unique) == 0 {
		log.Info("no papers found, skipping digest")
		p.metrics.DigestsNoPapers.Inc()
		return Result{Outcome: OutcomeNoPapers}, nil
	}

	var result Result
	err := p.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		result, err = p.runInTx(ctx, tx, subscriber, unique)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	switch result.Outcome {
	case OutcomeDelivered:
		p.metrics.DigestsDelivered.Inc()
	case OutcomeSendFailed:
		p.metrics.DigestsSendFailed.Inc()
	}
	return result, nil
}

func (p *Pipeline) runInTx(
	ctx context.Context,
	tx *sql.Tx,
	subscriber *domain.Subscriber,
	unique []domain.Paper,
) (Result, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	papers := p.papers
	digests := p.digests
	if tx != nil {
		papers = papers.WithTx(tx)
		digests = digests.WithTx(tx)
	}

	toInsert := make([]*domain.Paper, len(unique))
	urls := make([]string, len(unique))
	for i := range unique {
		toInsert[i] = &unique[i]
		urls[i] = unique[i].URL
	}

	inserted, err := papers.InsertNew(ctx, toInsert)
	if err != nil {
		return Result{}, fmt.Errorf("failed to store fetched papers: %w", err)
	}
	p.metrics.PapersInserted.Add(float64(inserted))

	// Re-read by URL so previously stored papers carry their original IDs.
	stored, err := papers.GetByURLs(ctx, urls)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load stored papers: %w", err)
	}

	paperIDs := make([]uuid.UUID, 0, len(stored))
	for _, paper := range stored {
		// Synopses are back-fill only: a paper summarized on an earlier
		// run keeps its stored synopsis and is never re-sent to the model.
		if paper.Synopsis == nil || *paper.Synopsis == "" {
			synopsis := p.summarize(ctx, paper.Abstract)
			if err := papers.UpdateSynopsis(ctx, paper.ID, synopsis); err != nil {
				return Result{}, fmt.Errorf("failed to store synopsis: %w", err)
			}
			paper.Synopsis = &synopsis
		}
		paperIDs = append(paperIDs, paper.ID)
	}

	subject, body, err := p.renderer.Render(stored)
	if err != nil {
		return Result{}, err
	}

	if !p.sender.Send(ctx, subscriber.Email, subject, body) {
		// Papers and synopses still commit; only the delivery record is
		// withheld so the subscriber stays due.
		log.Warn("digest send failed", slog.Int("paper_count", len(stored)))
		return Result{Outcome: OutcomeSendFailed, PaperCount: len(stored)}, nil
	}

	record, err := domain.NewDigestRecord(subscriber.ID, paperIDs)
	if err != nil {
		return Result{}, err
	}
	if err := digests.Create(ctx, record); err != nil {
		return Result{}, fmt.Errorf("failed to record digest delivery: %w", err)
	}

	log.Info("digest delivered",
		slog.String("digest_id", record.ID.String()),
		slog.Int("paper_count", len(stored)))
	return Result{
		Outcome:    OutcomeDelivered,
		PaperCount: len(stored),
		DigestID:   record.ID,
	}, nil
}

// summarize produces a synopsis for the abstract, falling back to the
// deterministic truncation when no summarizer is configured or
// generation fails.
func (p *Pipeline) summarize(ctx context.Context, abstract string) string {
	log := logger.FromContextOrDefault(ctx, p.logger)

	if p.summarizer == nil {
		p.metrics.SummaryFallbacks.Inc()
		return summary.Fallback(abstract)
	}

	synopsis, err := p.summarizer.Summarize(ctx, abstract)
	if err != nil {
		if !errors.Is(err, summary.ErrNoCredentials) {
			log.Warn("synopsis generation failed, using fallback",
				slog.String("error", err.Error()))
		}
		p.metrics.SummaryFallbacks.Inc()
		return summary.Fallback(abstract)
	}

	p.metrics.SummariesGenerated.Inc()
	return synopsis
}
