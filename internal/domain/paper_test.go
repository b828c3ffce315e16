package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
)

func TestNewPaper(t *testing.T) {
	published := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p, err := domain.NewPaper(
		"http://arxiv.org/abs/2101.00001",
		"A Paper",
		"Its abstract.",
		[]string{"Ada Lovelace"},
		"arXiv",
		published,
	)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "http://arxiv.org/abs/2101.00001", p.URL)
	assert.Equal(t, published, p.PublishedAt)
	assert.Nil(t, p.Synopsis, "synopsis is back-filled later")
	assert.WithinDuration(t, time.Now().UTC(), p.CreatedAt, time.Minute)
}

func TestNewPaperRequiresURL(t *testing.T) {
	_, err := domain.NewPaper("", "A Paper", "abstract", nil, "arXiv", time.Now())
	assert.ErrorIs(t, err, domain.ErrEmptyPaperURL)
}

func TestNewDigestRecord(t *testing.T) {
	subscriberID := uuid.New()
	paperIDs := []uuid.UUID{uuid.New(), uuid.New()}

	record, err := domain.NewDigestRecord(subscriberID, paperIDs)
	require.NoError(t, err)
	assert.Equal(t, subscriberID, record.SubscriberID)
	assert.Equal(t, paperIDs, record.PaperIDs)
	assert.NotEqual(t, uuid.Nil, record.ID)
}

func TestNewDigestRecordRequiresSubscriber(t *testing.T) {
	_, err := domain.NewDigestRecord(uuid.Nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyDigestSubscriberID)
}

func TestNewMailTransportConfig(t *testing.T) {
	cfg, err := domain.NewMailTransportConfig(
		"smtp.example.com", 587, true, "mailer", "secret", "digest@example.com", "Paperboy")
	require.NoError(t, err)
	assert.True(t, cfg.IsActive)
	assert.Equal(t, "Paperboy <digest@example.com>", cfg.Sender())
}

func TestNewMailTransportConfigValidation(t *testing.T) {
	_, err := domain.NewMailTransportConfig("", 587, true, "", "", "a@b.c", "")
	assert.ErrorIs(t, err, domain.ErrEmptyMailConfigHost)

	_, err = domain.NewMailTransportConfig("smtp.example.com", 0, true, "", "", "a@b.c", "")
	assert.ErrorIs(t, err, domain.ErrInvalidMailPort)

	_, err = domain.NewMailTransportConfig("smtp.example.com", 70000, true, "", "", "a@b.c", "")
	assert.ErrorIs(t, err, domain.ErrInvalidMailPort)
}

func TestMailTransportConfigSenderWithoutName(t *testing.T) {
	cfg := &domain.MailTransportConfig{FromEmail: "digest@example.com"}
	assert.Equal(t, "digest@example.com", cfg.Sender())
}
