package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/paperboy-dev/paperboy-api/internal/api/shared"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// UpdateMailConfigRequest represents the request body for replacing the
// active mail transport configuration
type UpdateMailConfigRequest struct {
	Host      string `json:"host"       validate:"required"`
	Port      int    `json:"port"       validate:"required,gt=0,lt=65536"`
	UseTLS    bool   `json:"use_tls"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromEmail string `json:"from_email" validate:"required,email"`
	FromName  string `json:"from_name"`
}

// MailConfigResponse represents a mail transport configuration without
// its password
type MailConfigResponse struct {
	ID        string    `json:"id"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	UseTLS    bool      `json:"use_tls"`
	Username  string    `json:"username"`
	FromEmail string    `json:"from_email"`
	FromName  string    `json:"from_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// MailConfigHandler handles mail transport configuration HTTP requests
type MailConfigHandler struct {
	configs store.MailConfigStore
	runTx   func(ctx context.Context, fn store.TxFn) error
}

// NewMailConfigHandler creates a new MailConfigHandler. The db handle is
// used to replace the active configuration atomically.
func NewMailConfigHandler(configs store.MailConfigStore, db *sql.DB) *MailConfigHandler {
	return &MailConfigHandler{
		configs: configs,
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}
}

// GetMailConfig handles GET /api/admin/mail-config requests.
// Returns the active configuration, never including the password.
func (h *MailConfigHandler) GetMailConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Active(r.Context())
	if err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "No active mail configuration")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load mail configuration", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, mailConfigToResponse(cfg))
}

// UpdateMailConfig handles PUT /api/admin/mail-config requests.
// The previous configuration is deactivated and the new one activated in
// a single transaction, so exactly one configuration is ever active.
func (h *MailConfigHandler) UpdateMailConfig(w http.ResponseWriter, r *http.Request) {
	var req UpdateMailConfigRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cfg, err := domain.NewMailTransportConfig(
		req.Host,
		req.Port,
		req.UseTLS,
		req.Username,
		req.Password,
		req.FromEmail,
		req.FromName,
	)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid mail configuration: "+err.Error())
		return
	}

	err = h.runTx(r.Context(), func(ctx context.Context, tx *sql.Tx) error {
		configs := h.configs
		if tx != nil {
			configs = configs.WithTx(tx)
		}
		return configs.ReplaceActive(ctx, cfg)
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to update mail configuration", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, mailConfigToResponse(cfg))
}

// mailConfigToResponse converts a domain.MailTransportConfig to a
// MailConfigResponse, dropping the password.
func mailConfigToResponse(cfg *domain.MailTransportConfig) MailConfigResponse {
	return MailConfigResponse{
		ID:        cfg.ID.String(),
		Host:      cfg.Host,
		Port:      cfg.Port,
		UseTLS:    cfg.UseTLS,
		Username:  cfg.Username,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		IsActive:  cfg.IsActive,
		CreatedAt: cfg.CreatedAt,
	}
}
