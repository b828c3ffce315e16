package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperboy-dev/paperboy-api/internal/api/shared"
	"github.com/paperboy-dev/paperboy-api/internal/digest"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// stubSubscriberStore serves one subscriber by ID.
type stubSubscriberStore struct {
	sub *domain.Subscriber
	err error
}

func (s *stubSubscriberStore) Create(ctx context.Context, sub *domain.Subscriber) error { return nil }

func (s *stubSubscriberStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.sub != nil && s.sub.ID == id {
		return s.sub, nil
	}
	return nil, store.ErrSubscriberNotFound
}

func (s *stubSubscriberStore) ListActiveSubscribed(ctx context.Context) ([]*domain.Subscriber, error) {
	return nil, nil
}

func (s *stubSubscriberStore) Update(ctx context.Context, sub *domain.Subscriber) error { return nil }

func (s *stubSubscriberStore) WithTx(tx *sql.Tx) store.SubscriberStore { return s }

// stubRunner returns a canned result.
type stubRunner struct {
	result digest.Result
	err    error
	ranFor []uuid.UUID
}

func (s *stubRunner) Run(ctx context.Context, sub *domain.Subscriber) (digest.Result, error) {
	s.ranFor = append(s.ranFor, sub.ID)
	return s.result, s.err
}

// newTriggerRequest builds a POST /api/digests/test request carrying the
// caller's identity the way the auth middleware installs it.
func newTriggerRequest(t *testing.T, callerID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/digests/test", nil)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, callerID)
	return req.WithContext(ctx)
}

func activeSubscriber() *domain.Subscriber {
	return &domain.Subscriber{
		ID:                  uuid.New(),
		Email:               "reader@example.com",
		IsActive:            true,
		SubscriptionEnabled: true,
		CreatedAt:           time.Now().UTC(),
		UpdatedAt:           time.Now().UTC(),
	}
}

func TestTriggerDigestSuccess(t *testing.T) {
	sub := activeSubscriber()
	digestID := uuid.New()
	runner := &stubRunner{result: digest.Result{
		Outcome:    digest.OutcomeDelivered,
		PaperCount: 3,
		DigestID:   digestID,
	}}
	h := NewDigestHandler(&stubSubscriberStore{sub: sub}, runner)

	rec := httptest.NewRecorder()
	h.TriggerDigest(rec, newTriggerRequest(t, sub.ID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TriggerDigestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "delivered", resp.Outcome)
	assert.Equal(t, 3, resp.PaperCount)
	assert.Equal(t, digestID.String(), resp.DigestID)
	assert.Equal(t, []uuid.UUID{sub.ID}, runner.ranFor)
}

func TestTriggerDigestNoPapersOutcome(t *testing.T) {
	sub := activeSubscriber()
	runner := &stubRunner{result: digest.Result{Outcome: digest.OutcomeNoPapers}}
	h := NewDigestHandler(&stubSubscriberStore{sub: sub}, runner)

	rec := httptest.NewRecorder()
	h.TriggerDigest(rec, newTriggerRequest(t, sub.ID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TriggerDigestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_papers_found", resp.Outcome)
	assert.Contains(t, resp.Message, "keywords")
	assert.Empty(t, resp.DigestID)
}

func TestTriggerDigestRunsForCallerOnly(t *testing.T) {
	// The run targets the authenticated identity; a token for another
	// account cannot trigger this subscriber's digest.
	sub := activeSubscriber()
	runner := &stubRunner{result: digest.Result{Outcome: digest.OutcomeDelivered}}
	h := NewDigestHandler(&stubSubscriberStore{sub: sub}, runner)

	rec := httptest.NewRecorder()
	h.TriggerDigest(rec, newTriggerRequest(t, uuid.New()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, runner.ranFor, "pipeline must not run for another identity")
}

func TestTriggerDigestMissingIdentity(t *testing.T) {
	h := NewDigestHandler(&stubSubscriberStore{sub: activeSubscriber()}, &stubRunner{})

	req := httptest.NewRequest(http.MethodPost, "/api/digests/test", nil)
	rec := httptest.NewRecorder()
	h.TriggerDigest(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTriggerDigestSubscriptionDisabled(t *testing.T) {
	sub := activeSubscriber()
	sub.SubscriptionEnabled = false
	runner := &stubRunner{}
	h := NewDigestHandler(&stubSubscriberStore{sub: sub}, runner)

	rec := httptest.NewRecorder()
	h.TriggerDigest(rec, newTriggerRequest(t, sub.ID))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, runner.ranFor, "pipeline must not run for disabled subscriptions")
}

func TestTriggerDigestSubscriberNotFound(t *testing.T) {
	h := NewDigestHandler(&stubSubscriberStore{}, &stubRunner{})

	rec := httptest.NewRecorder()
	h.TriggerDigest(rec, newTriggerRequest(t, uuid.New()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriggerDigestRunFailure(t *testing.T) {
	sub := activeSubscriber()
	runner := &stubRunner{err: errors.New("database gone")}
	h := NewDigestHandler(&stubSubscriberStore{sub: sub}, runner)

	rec := httptest.NewRecorder()
	h.TriggerDigest(rec, newTriggerRequest(t, sub.ID))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database gone", "raw errors must not leak")
}
