// Package http wires the chi router, middleware and handlers.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"egov-bot/internal/catalog"
	"egov-bot/internal/handlers"
	"egov-bot/internal/service"
	"egov-bot/internal/userdata"
	"egov-bot/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService    service.ChatService
	Feedback       *userdata.FeedbackStore
	VectorStore    vectorstore.VectorStore
	Catalog        *catalog.Catalog
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Catalog, deps.CollectionName)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Feedback)
	clearHandler := handlers.NewClearSessionHandler(deps.ChatService)

	r.Method(http.MethodGet, "/health", healthHandler)
	r.Method(http.MethodPost, "/chat", chatHandler)
	r.Method(http.MethodPost, "/save_feedback", feedbackHandler)
	r.Method(http.MethodPost, "/clear_session", clearHandler)

	return r
}
