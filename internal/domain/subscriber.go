package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Subscriber
var (
	ErrEmptySubscriberID    = errors.New("subscriber ID cannot be empty")
	ErrEmptySubscriberEmail = errors.New("subscriber email cannot be empty")
	ErrInvalidDigestTime    = errors.New("digest time must be in HH:MM format")
)

// Subscriber represents an account opted into periodic digest delivery.
// Subscribers are owned by the identity service; the digest core only
// reads them to evaluate eligibility and address outgoing mail.
type Subscriber struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	IsActive            bool      `json:"is_active"`
	SubscriptionEnabled bool      `json:"subscription_enabled"`

	// DigestTime is the preferred local delivery time in "HH:MM" form.
	// Empty means no preference; see scheduler cadence rules.
	DigestTime string `json:"digest_time,omitempty"`

	// Keywords is the research profile: discipline, keyword, and journal
	// tags used as source queries. Order is not significant.
	Keywords []string `json:"keywords"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Subscriber has valid data.
// Returns an error if any field fails validation.
func (s *Subscriber) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubscriberID
	}

	if s.Email == "" {
		return ErrEmptySubscriberEmail
	}

	if s.DigestTime != "" {
		if _, _, err := ParseDigestTime(s.DigestTime); err != nil {
			return err
		}
	}

	return nil
}

// ParseDigestTime parses an "HH:MM" delivery-time string into hour and
// minute components. The format is strict: exactly one colon, numeric
// parts, hour in [0,23] and minute in [0,59].
func ParseDigestTime(value string) (hour, minute int, err error) {
	trimmed := strings.TrimSpace(value)

	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDigestTime, value)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDigestTime, value)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDigestTime, value)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDigestTime, value)
	}

	return hour, minute, nil
}
