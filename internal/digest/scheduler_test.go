package digest

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// testLogger discards output so test runs stay quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock always reports the same instant.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// fakeSubscriberStore serves a fixed subscriber list.
type fakeSubscriberStore struct {
	subs    []*domain.Subscriber
	listErr error
}

func (f *fakeSubscriberStore) Create(ctx context.Context, s *domain.Subscriber) error { return nil }

func (f *fakeSubscriberStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error) {
	for _, s := range f.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, store.ErrSubscriberNotFound
}

func (f *fakeSubscriberStore) ListActiveSubscribed(ctx context.Context) ([]*domain.Subscriber, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.subs, nil
}

func (f *fakeSubscriberStore) Update(ctx context.Context, s *domain.Subscriber) error { return nil }

func (f *fakeSubscriberStore) WithTx(tx *sql.Tx) store.SubscriberStore { return f }

// recordingRunner captures which subscribers were run.
type recordingRunner struct {
	ran   []uuid.UUID
	panic bool
}

func (r *recordingRunner) Run(ctx context.Context, sub *domain.Subscriber) (Result, error) {
	if r.panic {
		panic("boom")
	}
	r.ran = append(r.ran, sub.ID)
	return Result{Outcome: OutcomeDelivered, PaperCount: 1}, nil
}

func scheduledSubscriber(t *testing.T, digestTime string) *domain.Subscriber {
	t.Helper()
	sub := testSubscriber(t, nil)
	sub.DigestTime = digestTime
	return sub
}

func newTestScheduler(runner runner, subs *fakeSubscriberStore, digests *fakeDigestStore, now time.Time) *Scheduler {
	return NewScheduler(runner, subs, digests, fixedClock{now: now}, time.Minute, testLogger())
}

func TestRunOnceMatchesConfiguredMinute(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 5, 30, 0, time.UTC)
	due := scheduledSubscriber(t, "09:05")
	early := scheduledSubscriber(t, "09:06")
	late := scheduledSubscriber(t, "09:04")

	r := &recordingRunner{}
	s := newTestScheduler(r, &fakeSubscriberStore{subs: []*domain.Subscriber{due, early, late}}, &fakeDigestStore{}, now)

	s.RunOnce(context.Background())

	require.Len(t, r.ran, 1)
	assert.Equal(t, due.ID, r.ran[0])
}

func TestRunOnceSkipsMalformedDigestTime(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 5, 0, 0, time.UTC)
	bad := scheduledSubscriber(t, "9am")
	good := scheduledSubscriber(t, "09:05")

	r := &recordingRunner{}
	s := newTestScheduler(r, &fakeSubscriberStore{subs: []*domain.Subscriber{bad, good}}, &fakeDigestStore{}, now)

	s.RunOnce(context.Background())

	require.Len(t, r.ran, 1, "malformed time skips that subscriber only")
	assert.Equal(t, good.ID, r.ran[0])
}

func TestRunOnceUnsetTimeDeliversOncePerDay(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 5, 0, 0, time.UTC)
	sub := scheduledSubscriber(t, "")
	digests := &fakeDigestStore{}

	r := &recordingRunner{}
	s := newTestScheduler(r, &fakeSubscriberStore{subs: []*domain.Subscriber{sub}}, digests, now)

	s.RunOnce(context.Background())
	require.Len(t, r.ran, 1, "first tick of the day delivers")

	// Simulate the delivery having been recorded today.
	record, err := domain.NewDigestRecord(sub.ID, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	record.CreatedAt = now
	require.NoError(t, digests.Create(context.Background(), record))

	s.RunOnce(context.Background())
	assert.Len(t, r.ran, 1, "same-day ticks do not redeliver")

	// Next day the subscriber is due again.
	s.clock = fixedClock{now: now.Add(24 * time.Hour)}
	s.RunOnce(context.Background())
	assert.Len(t, r.ran, 2)
}

func TestRunOncePanicInOneRunDoesNotStopOthers(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 5, 0, 0, time.UTC)
	first := scheduledSubscriber(t, "09:05")
	second := scheduledSubscriber(t, "09:05")

	panicking := &recordingRunner{panic: true}
	s := newTestScheduler(panicking, &fakeSubscriberStore{subs: []*domain.Subscriber{first, second}}, &fakeDigestStore{}, now)

	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
}

func TestRunOnceListFailureIsContained(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 5, 0, 0, time.UTC)
	r := &recordingRunner{}
	s := newTestScheduler(r, &fakeSubscriberStore{listErr: assert.AnError}, &fakeDigestStore{}, now)

	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
	assert.Empty(t, r.ran)
}

func TestStartStop(t *testing.T) {
	r := &recordingRunner{}
	s := NewScheduler(r, &fakeSubscriberStore{}, &fakeDigestStore{}, nil, 10*time.Millisecond, testLogger())

	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	// Stop returns only after the loop goroutine has exited.
}
