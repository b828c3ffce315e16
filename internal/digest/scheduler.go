package digest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// runner executes one digest run for one subscriber. Satisfied by
// *Pipeline; substituted in scheduler tests.
type runner interface {
	Run(ctx context.Context, subscriber *domain.Subscriber) (Result, error)
}

// Scheduler drives the digest pipeline on a fixed tick. On every tick it
// loads the active subscribers and runs the pipeline for each one that
// is due: either their configured HH:MM matches the current minute, or
// they have no configured time and have not yet received a digest today.
type Scheduler struct {
	pipeline    runner
	subscribers store.SubscriberStore
	digests     store.DigestStore
	clock       Clock
	tick        time.Duration
	logger      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler. If clock is nil the system clock is
// used; if log is nil, a default logger will be used.
func NewScheduler(
	pipeline runner,
	subscribers store.SubscriberStore,
	digests store.DigestStore,
	clock Clock,
	tick time.Duration,
	log *slog.Logger,
) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Scheduler{
		pipeline:    pipeline,
		subscribers: subscribers,
		digests:     digests,
		clock:       clock,
		tick:        tick,
		logger:      log.With(slog.String("component", "digest_scheduler")),
	}
}

// Start launches the scheduling loop in a background goroutine. The loop
// stops when Stop is called or the given context is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.logger.Info("digest scheduler started",
			slog.Duration("tick", s.tick))

		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("digest scheduler stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight tick to
// finish. Safe to call only after Start.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
}

// RunOnce executes a single scheduling pass: every due subscriber gets a
// digest run. A failure (or panic) for one subscriber is logged and does
// not affect the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	subs, err := s.subscribers.ListActiveSubscribed(ctx)
	if err != nil {
		log.Error("failed to list subscribers for scheduling",
			slog.String("error", err.Error()))
		return
	}

	log.Debug("scheduler tick",
		slog.Time("now", now),
		slog.Int("subscribers", len(subs)))

	for _, sub := range subs {
		due, err := s.isDue(ctx, sub, now)
		if err != nil {
			log.Error("failed to evaluate subscriber schedule",
				slog.String("subscriber_id", sub.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if !due {
			continue
		}

		s.runFor(ctx, sub)
	}
}

// isDue reports whether the subscriber should receive a digest at the
// given instant. A malformed digest time disables delivery for that
// subscriber rather than aborting the pass.
func (s *Scheduler) isDue(ctx context.Context, sub *domain.Subscriber, now time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if sub.DigestTime != "" {
		hour, minute, err := domain.ParseDigestTime(sub.DigestTime)
		if err != nil {
			log.Warn("invalid digest time, skipping subscriber",
				slog.String("subscriber_id", sub.ID.String()),
				slog.String("digest_time", sub.DigestTime))
			return false, nil
		}
		return hour == now.Hour() && minute == now.Minute(), nil
	}

	// No configured time: deliver once per calendar day, on the first
	// tick where today has no record yet.
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	exists, err := s.digests.ExistsSince(ctx, sub.ID, midnight)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// runFor executes the pipeline for one subscriber, containing panics so
// a single bad run cannot take down the scheduling loop.
func (s *Scheduler) runFor(ctx context.Context, sub *domain.Subscriber) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	defer func() {
		if p := recover(); p != nil {
			log.Error("digest run panicked",
				slog.String("subscriber_id", sub.ID.String()),
				slog.Any("panic", p))
		}
	}()

	result, err := s.pipeline.Run(ctx, sub)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("digest run failed",
			slog.String("subscriber_id", sub.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	log.Info("digest run completed",
		slog.String("subscriber_id", sub.ID.String()),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("paper_count", result.PaperCount))
}
