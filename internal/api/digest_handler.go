package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/api/middleware"
	"github.com/paperboy-dev/paperboy-api/internal/api/shared"
	"github.com/paperboy-dev/paperboy-api/internal/digest"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// DigestRunner executes one digest run for one subscriber. Satisfied by
// *digest.Pipeline.
type DigestRunner interface {
	Run(ctx context.Context, subscriber *domain.Subscriber) (digest.Result, error)
}

// TriggerDigestResponse represents the outcome of a manual digest run
type TriggerDigestResponse struct {
	Outcome    string `json:"outcome"`
	Message    string `json:"message"`
	PaperCount int    `json:"paper_count"`
	DigestID   string `json:"digest_id,omitempty"`
}

// DigestHandler handles digest-related HTTP requests
type DigestHandler struct {
	subscribers store.SubscriberStore
	runner      DigestRunner
}

// NewDigestHandler creates a new DigestHandler
func NewDigestHandler(subscribers store.SubscriberStore, runner DigestRunner) *DigestHandler {
	return &DigestHandler{
		subscribers: subscribers,
		runner:      runner,
	}
}

// TriggerDigest handles POST /api/digests/test requests.
// It runs the full digest pipeline immediately for the authenticated
// subscriber, bypassing the schedule. Useful for verifying mail and
// feed setup. The target is always the caller's own subscription; the
// request carries no body.
func (h *DigestHandler) TriggerDigest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	subscriber, err := h.subscribers.GetByID(r.Context(), callerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Subscriber not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load subscriber", err)
		return
	}

	if !subscriber.SubscriptionEnabled {
		shared.RespondWithError(w, r, http.StatusConflict,
			"Subscription is disabled for this subscriber")
		return
	}

	result, err := h.runner.Run(r.Context(), subscriber)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Digest run failed", err)
		return
	}

	slog.Info("manual digest run completed",
		slog.String("subscriber_id", subscriber.ID.String()),
		slog.String("outcome", string(result.Outcome)))

	response := TriggerDigestResponse{
		Outcome:    string(result.Outcome),
		Message:    outcomeMessage(result),
		PaperCount: result.PaperCount,
	}
	if result.DigestID != uuid.Nil {
		response.DigestID = result.DigestID.String()
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

func outcomeMessage(result digest.Result) string {
	switch result.Outcome {
	case digest.OutcomeDelivered:
		return "Digest delivered"
	case digest.OutcomeNoPapers:
		return "No new papers matched the subscriber's keywords; try broader keywords"
	case digest.OutcomeSendFailed:
		return "Digest could not be delivered; check the mail transport configuration"
	default:
		return string(result.Outcome)
	}
}
