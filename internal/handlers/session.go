package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"egov-bot/internal/contextutil"
	"egov-bot/internal/service"
)

// ClearSessionHandler handles HTTP requests to drop a session's history.
type ClearSessionHandler struct {
	chatService service.ChatService
}

// NewClearSessionHandler creates a new ClearSessionHandler.
func NewClearSessionHandler(chatService service.ChatService) *ClearSessionHandler {
	return &ClearSessionHandler{chatService: chatService}
}

// ClearSessionRequest represents the HTTP request payload.
type ClearSessionRequest struct {
	SessionID string `json:"session_id"`
}

// ClearSessionResponse represents the HTTP response payload.
type ClearSessionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ServeHTTP handles HTTP requests to clear a session. Clearing a session
// that does not exist is still a success: the goal state holds either way.
func (h *ClearSessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ClearSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid clear session body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "No session_id provided")
		return
	}

	resp := ClearSessionResponse{Status: "success", Message: "Session not found"}
	if h.chatService.ClearSession(req.SessionID) {
		resp.Message = fmt.Sprintf("Session %s cleared", req.SessionID)
		logger.InfoContext(ctx, "session cleared", "session_id", req.SessionID)
	}
	writeJSON(w, http.StatusOK, resp)
}
