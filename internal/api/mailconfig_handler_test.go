package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// memMailConfigStore keeps the active config in memory.
type memMailConfigStore struct {
	active *domain.MailTransportConfig
}

func (m *memMailConfigStore) Active(ctx context.Context) (*domain.MailTransportConfig, error) {
	if m.active == nil {
		return nil, store.ErrMailConfigNotFound
	}
	return m.active, nil
}

func (m *memMailConfigStore) ReplaceActive(ctx context.Context, cfg *domain.MailTransportConfig) error {
	m.active = cfg
	return nil
}

func (m *memMailConfigStore) WithTx(tx *sql.Tx) store.MailConfigStore { return m }

func newMailConfigHandler(configs store.MailConfigStore) *MailConfigHandler {
	return &MailConfigHandler{
		configs: configs,
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return fn(ctx, nil)
		},
	}
}

func TestGetMailConfigNotFound(t *testing.T) {
	h := newMailConfigHandler(&memMailConfigStore{})

	rec := httptest.NewRecorder()
	h.GetMailConfig(rec, httptest.NewRequest(http.MethodGet, "/api/admin/mail-config", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMailConfigOmitsPassword(t *testing.T) {
	cfg := &domain.MailTransportConfig{
		ID:        uuid.New(),
		Host:      "smtp.example.com",
		Port:      587,
		Username:  "mailer",
		Password:  "topsecret",
		FromEmail: "digest@example.com",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	h := newMailConfigHandler(&memMailConfigStore{active: cfg})

	rec := httptest.NewRecorder()
	h.GetMailConfig(rec, httptest.NewRequest(http.MethodGet, "/api/admin/mail-config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "topsecret")
	assert.Contains(t, rec.Body.String(), "smtp.example.com")
}

func TestUpdateMailConfigReplacesActive(t *testing.T) {
	configs := &memMailConfigStore{}
	h := newMailConfigHandler(configs)

	body, err := json.Marshal(UpdateMailConfigRequest{
		Host:      "smtp.example.com",
		Port:      587,
		UseTLS:    true,
		Username:  "mailer",
		Password:  "topsecret",
		FromEmail: "digest@example.com",
		FromName:  "Paperboy",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UpdateMailConfig(rec, httptest.NewRequest(http.MethodPut, "/api/admin/mail-config", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, configs.active)
	assert.Equal(t, "smtp.example.com", configs.active.Host)
	assert.True(t, configs.active.IsActive)
	assert.NotContains(t, rec.Body.String(), "topsecret")
}

func TestUpdateMailConfigRejectsMissingHost(t *testing.T) {
	h := newMailConfigHandler(&memMailConfigStore{})

	body, err := json.Marshal(UpdateMailConfigRequest{
		Port:      587,
		FromEmail: "digest@example.com",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UpdateMailConfig(rec, httptest.NewRequest(http.MethodPut, "/api/admin/mail-config", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMailConfigRejectsBadEmail(t *testing.T) {
	h := newMailConfigHandler(&memMailConfigStore{})

	body, err := json.Marshal(UpdateMailConfigRequest{
		Host:      "smtp.example.com",
		Port:      587,
		FromEmail: "not-an-email",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UpdateMailConfig(rec, httptest.NewRequest(http.MethodPut, "/api/admin/mail-config", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
