package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for MailTransportConfig
var (
	ErrEmptyMailConfigID   = errors.New("mail config ID cannot be empty")
	ErrEmptyMailConfigHost = errors.New("mail config host cannot be empty")
	ErrInvalidMailPort     = errors.New("mail config port must be between 1 and 65535")
)

// MailTransportConfig holds the parameters needed to submit mail through
// an outbound server. At most one configuration is active at any time:
// activating a new one deactivates all prior ones in the same
// transaction.
type MailTransportConfig struct {
	ID        uuid.UUID `json:"id"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	UseTLS    bool      `json:"use_tls"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // Never expose the password in JSON
	FromEmail string    `json:"from_email"`
	FromName  string    `json:"from_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMailTransportConfig creates an active MailTransportConfig with a
// fresh ID and creation timestamp. Returns an error if validation fails.
func NewMailTransportConfig(host string, port int, useTLS bool, username, password, fromEmail, fromName string) (*MailTransportConfig, error) {
	cfg := &MailTransportConfig{
		ID:        uuid.New(),
		Host:      host,
		Port:      port,
		UseTLS:    useTLS,
		Username:  username,
		Password:  password,
		FromEmail: fromEmail,
		FromName:  fromName,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the MailTransportConfig has valid data.
// Returns an error if any field fails validation.
func (c *MailTransportConfig) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyMailConfigID
	}

	if c.Host == "" {
		return ErrEmptyMailConfigHost
	}

	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidMailPort
	}

	return nil
}

// Sender returns the RFC 5322 From header value, preferring the display
// name when one is configured.
func (c *MailTransportConfig) Sender() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return c.FromName + " <" + c.FromEmail + ">"
}
