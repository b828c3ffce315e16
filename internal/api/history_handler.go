package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/paperboy-dev/paperboy-api/internal/api/middleware"
	"github.com/paperboy-dev/paperboy-api/internal/api/shared"
	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/store"
)

// digestHistoryLimit caps how many past digests the list endpoint returns.
const digestHistoryLimit = 20

// DigestSummaryResponse is one entry in the caller's digest history.
type DigestSummaryResponse struct {
	ID         string    `json:"id"`
	SentAt     time.Time `json:"sent_at"`
	PaperCount int       `json:"paper_count"`
}

// DigestDetailResponse carries one digest with its papers resolved, in
// delivery order. Papers that have since become unresolvable are omitted.
type DigestDetailResponse struct {
	ID     string          `json:"id"`
	SentAt time.Time       `json:"sent_at"`
	Papers []*domain.Paper `json:"papers"`
}

// HistoryHandler serves the authenticated subscriber's past digests.
type HistoryHandler struct {
	digests store.DigestStore
	papers  store.PaperStore
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(digests store.DigestStore, papers store.PaperStore) *HistoryHandler {
	return &HistoryHandler{
		digests: digests,
		papers:  papers,
	}
}

// ListDigests handles GET /api/me/digests requests. It returns the
// caller's most recent digests, newest first.
func (h *HistoryHandler) ListDigests(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	records, err := h.digests.ListForSubscriber(r.Context(), callerID, digestHistoryLimit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load digest history", err)
		return
	}

	summaries := make([]DigestSummaryResponse, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, DigestSummaryResponse{
			ID:         record.ID.String(),
			SentAt:     record.CreatedAt,
			PaperCount: len(record.PaperIDs),
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summaries)
}

// GetDigest handles GET /api/me/digests/{digestID} requests. A digest
// belonging to another subscriber is reported as not found rather than
// forbidden, so the endpoint does not confirm foreign digest IDs.
func (h *HistoryHandler) GetDigest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	digestID, err := uuid.Parse(chi.URLParam(r, "digestID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid digest ID")
		return
	}

	record, err := h.digests.GetByID(r.Context(), digestID)
	if err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Digest not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load digest", err)
		return
	}

	if record.SubscriberID != callerID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Digest not found")
		return
	}

	// Resolve the recorded papers in delivery order, skipping any that
	// can no longer be found.
	papers := make([]*domain.Paper, 0, len(record.PaperIDs))
	for _, paperID := range record.PaperIDs {
		paper, err := h.papers.GetByID(r.Context(), paperID)
		if err != nil {
			if errors.Is(err, store.ErrPaperNotFound) {
				continue
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to load digest papers", err)
			return
		}
		papers = append(papers, paper)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DigestDetailResponse{
		ID:     record.ID.String(),
		SentAt: record.CreatedAt,
		Papers: papers,
	})
}
