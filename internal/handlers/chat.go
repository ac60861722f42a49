package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"egov-bot/internal/contextutil"
	"egov-bot/internal/service"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	Stream    bool   `json:"stream"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Answer    string `json:"answer"`
	Cached    bool   `json:"cached"`
	LatencyMS int64  `json:"latency_ms"`
	// ContextSource is the source URL of the procedure the answer was
	// grounded on, null when no context was found.
	ContextSource *string `json:"context_source"`
	// SessionID echoes the request's session id, or the freshly minted one
	// when the request carried none.
	SessionID string `json:"session_id"`
	Error     bool   `json:"error,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "No question provided")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
		logger.DebugContext(ctx, "minted session id", "session_id", req.SessionID)
	}

	svcReq := service.ChatRequest{
		SessionID: req.SessionID,
		Question:  strings.TrimSpace(req.Question),
	}

	if req.Stream {
		h.handleStreamingChat(w, r, svcReq)
		return
	}

	svcResp, err := h.chatService.ProcessChat(ctx, svcReq)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		logger.ErrorContext(ctx, "chat request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ChatResponse{
			Answer:    fmt.Sprintf("Xin lỗi, đã có lỗi xảy ra: %s", err.Error()),
			LatencyMS: time.Since(start).Milliseconds(),
			SessionID: req.SessionID,
			Error:     true,
		})
		return
	}

	resp := ChatResponse{
		Answer:    svcResp.Answer,
		Cached:    svcResp.Cached,
		LatencyMS: time.Since(start).Milliseconds(),
		SessionID: req.SessionID,
	}
	if svcResp.ContextSource != "" {
		resp.ContextSource = &svcResp.ContextSource
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStreamingChat streams the answer as plain text chunks. The session
// id travels in a header because the body is the raw answer.
func (h *ChatHandler) handleStreamingChat(w http.ResponseWriter, r *http.Request, svcReq service.ChatRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Session-ID", svcReq.SessionID)

	delivered := false
	err := h.chatService.StreamChat(ctx, svcReq, func(chunk string) error {
		if _, err := fmt.Fprint(w, chunk); err != nil {
			return err
		}
		delivered = true
		flusher.Flush()
		return nil
	})
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) && !delivered {
			writeError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		logger.ErrorContext(ctx, "streaming chat failed", "error", err)
		// Headers are already gone, so the error travels in-band.
		_, _ = fmt.Fprintf(w, "Xin lỗi, đã có lỗi xảy ra: %s", err.Error())
		flusher.Flush()
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
