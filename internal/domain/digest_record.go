package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for DigestRecord
var (
	ErrEmptyDigestID           = errors.New("digest record ID cannot be empty")
	ErrEmptyDigestSubscriberID = errors.New("digest record subscriber ID cannot be empty")
)

// DigestRecord is the immutable record of one successful digest
// delivery. It is created only after the mail transport has confirmed
// the send — never merely because a scheduler tick ran. PaperIDs keeps
// the delivery order; consumers must tolerate referenced papers that can
// no longer be resolved.
type DigestRecord struct {
	ID           uuid.UUID   `json:"id"`
	SubscriberID uuid.UUID   `json:"subscriber_id"`
	PaperIDs     []uuid.UUID `json:"paper_ids"`
	CreatedAt    time.Time   `json:"created_at"`
}

// NewDigestRecord creates a DigestRecord for the given subscriber and
// ordered delivered-paper list, stamped with the current time.
// Returns an error if validation fails.
func NewDigestRecord(subscriberID uuid.UUID, paperIDs []uuid.UUID) (*DigestRecord, error) {
	record := &DigestRecord{
		ID:           uuid.New(),
		SubscriberID: subscriberID,
		PaperIDs:     paperIDs,
		CreatedAt:    time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the DigestRecord has valid data.
// Returns an error if any field fails validation.
func (d *DigestRecord) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDigestID
	}

	if d.SubscriberID == uuid.Nil {
		return ErrEmptyDigestSubscriberID
	}

	return nil
}
