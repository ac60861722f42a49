package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"egov-bot/internal/contextutil"
	"egov-bot/internal/userdata"
)

// FeedbackHandler handles HTTP requests for answer feedback.
type FeedbackHandler struct {
	store *userdata.FeedbackStore
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(store *userdata.FeedbackStore) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

// FeedbackRequest carries a vote transition: the client reports both what
// the user voted before and what they vote now, so flipping a vote moves a
// count instead of inflating both.
type FeedbackRequest struct {
	NewFeedback      string `json:"new_feedback"`
	PreviousFeedback string `json:"previous_feedback"`
}

// FeedbackResponse reports the updated tally.
type FeedbackResponse struct {
	Status  string           `json:"status"`
	Summary userdata.Summary `json:"summary"`
}

// ServeHTTP handles HTTP requests for feedback.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid feedback body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.NewFeedback == req.PreviousFeedback {
		writeJSON(w, http.StatusOK, FeedbackResponse{Status: "no_change", Summary: h.store.Summary()})
		return
	}

	summary, err := h.store.Update(req.PreviousFeedback, req.NewFeedback)
	if err != nil {
		if errors.Is(err, userdata.ErrUnknownVote) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.ErrorContext(ctx, "failed to save feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}

	writeJSON(w, http.StatusOK, FeedbackResponse{Status: "success", Summary: summary})
}
