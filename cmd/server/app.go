package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/paperboy-dev/paperboy-api/internal/arxiv"
	"github.com/paperboy-dev/paperboy-api/internal/config"
	"github.com/paperboy-dev/paperboy-api/internal/digest"
	"github.com/paperboy-dev/paperboy-api/internal/platform/gemini"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/platform/metrics"
	"github.com/paperboy-dev/paperboy-api/internal/platform/postgres"
	smtpmailer "github.com/paperboy-dev/paperboy-api/internal/platform/smtp"
	"github.com/paperboy-dev/paperboy-api/internal/service/auth"
	"github.com/paperboy-dev/paperboy-api/internal/store"
	"github.com/paperboy-dev/paperboy-api/internal/summary"
	"github.com/paperboy-dev/paperboy-api/migrations"
)

// application holds the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	subscriberStore store.SubscriberStore
	paperStore      store.PaperStore
	digestStore     store.DigestStore
	mailConfigStore store.MailConfigStore

	jwtService auth.JWTService
	pipeline   *digest.Pipeline
	scheduler  *digest.Scheduler
}

// newApplication loads configuration and wires every component of the
// server: database, stores, feed client, summarizer, mail dispatcher,
// digest pipeline and scheduler, and the admin API services.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled))

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	subscriberStore := postgres.NewPostgresSubscriberStore(db, appLogger)
	paperStore := postgres.NewPostgresPaperStore(db, appLogger)
	digestStore := postgres.NewPostgresDigestStore(db, appLogger)
	mailConfigStore := postgres.NewPostgresMailConfigStore(db, appLogger)

	fetcher := arxiv.NewClient(nil, appLogger)

	var summarizer summary.Summarizer
	geminiSummarizer, err := gemini.NewSummarizer(ctx, cfg.LLM, appLogger)
	switch {
	case err == nil:
		summarizer = geminiSummarizer
	case errors.Is(err, summary.ErrNoCredentials):
		appLogger.Warn("no Gemini API key configured, synopses will use the deterministic fallback")
	default:
		_ = db.Close()
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}

	dispatcher := smtpmailer.NewDispatcher(mailConfigStore, cfg.SMTP, appLogger)

	renderer, err := digest.NewRenderer()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	pipeline := digest.NewPipeline(
		db,
		paperStore,
		digestStore,
		fetcher,
		summarizer,
		dispatcher,
		renderer,
		m,
		cfg.Fetcher,
		appLogger,
	)

	scheduler := digest.NewScheduler(
		pipeline,
		subscriberStore,
		digestStore,
		digest.SystemClock(),
		time.Duration(cfg.Scheduler.TickSeconds)*time.Second,
		appLogger,
	)

	return &application{
		config:          cfg,
		logger:          appLogger,
		db:              db,
		subscriberStore: subscriberStore,
		paperStore:      paperStore,
		digestStore:     digestStore,
		mailConfigStore: mailConfigStore,
		jwtService:      jwtService,
		pipeline:        pipeline,
		scheduler:       scheduler,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}

// openDatabase connects to PostgreSQL and verifies the connection.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations brings the schema up to date using the embedded goose
// migrations.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}
