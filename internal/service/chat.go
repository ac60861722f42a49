// Package service holds the chat orchestration layer: session handling,
// answer caching, context resolution, prompt composition and generation.
package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks egov-bot/internal/service Generator
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_context_resolver.go -package=mocks egov-bot/internal/service ContextResolver
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks egov-bot/internal/service Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService egov-bot/internal/service ChatService

import (
	"context"
	"strings"
	"unicode/utf8"

	"egov-bot/internal/cache"
	"egov-bot/internal/catalog"
	"egov-bot/internal/contextutil"
	"egov-bot/internal/conversation"
	"egov-bot/internal/prompt"
	"egov-bot/internal/userdata"
)

// Generator produces answers from a composed prompt. This interface is
// defined from the service layer's perspective (consumer-first); the llm
// package's fallback chain satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	StreamGenerateContent(ctx context.Context, prompt string, callback func(chunk string) error) error
}

// ContextResolver decides, per turn, whether to reuse the previous context
// or retrieve fresh.
type ContextResolver interface {
	Resolve(ctx context.Context, history []conversation.Turn, query string) conversation.Resolution
}

// Embedder produces the context embedding stored alongside model turns.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	SessionID string
	Question  string
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Answer string
	Cached bool
	// ContextSource is the source URL of the procedure the answer was
	// grounded on, empty when no context was found.
	ContextSource string
	// Decision names the context-policy branch that produced the answer.
	Decision string
}

// ChatService provides the conversational question answering flow.
type ChatService interface {
	// ProcessChat answers one question and records the turn.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat answers one question, delivering the answer incrementally
	// via callback. Cache hits arrive as a single chunk.
	StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error
	// ClearSession drops a session's history, reporting whether it existed.
	ClearSession(sessionID string) bool
}

// minContextEmbedLen: contexts shorter than this are not worth embedding
// for later similarity checks.
const minContextEmbedLen = 50

// Config wires a chatService's collaborators.
type Config struct {
	Sessions   *conversation.Store
	Resolver   ContextResolver
	Generator  Generator
	Embedder   Embedder
	Cache      *cache.AnswerCache
	Popularity *userdata.Popularity
	Catalog    *catalog.Catalog
	// EmbeddingModel and TopK scope cache keys to the retrieval
	// configuration: a different embedding model or depth means a
	// different context, so cached answers must not cross over.
	EmbeddingModel string
	TopK           int
}

type chatService struct {
	sessions   *conversation.Store
	resolver   ContextResolver
	generator  Generator
	embedder   Embedder
	cache      *cache.AnswerCache
	popularity *userdata.Popularity
	catalog    *catalog.Catalog
	embModel   string
	topK       int
}

// NewChatService creates a ChatService.
func NewChatService(cfg Config) ChatService {
	return &chatService{
		sessions:   cfg.Sessions,
		resolver:   cfg.Resolver,
		generator:  cfg.Generator,
		embedder:   cfg.Embedder,
		cache:      cfg.Cache,
		popularity: cfg.Popularity,
		catalog:    cfg.Catalog,
		embModel:   cfg.EmbeddingModel,
		topK:       cfg.TopK,
	}
}

func (s *chatService) validate(req ChatRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	if req.SessionID == "" {
		return &ValidationError{Field: "session_id", Message: "cannot be empty"}
	}
	return nil
}

// ProcessChat answers one question. The session is held for the whole turn
// so concurrent requests on one session cannot interleave their cache
// lookups and history appends.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.validate(req); err != nil {
		logger.WarnContext(ctx, "invalid chat request", "error", err)
		return ChatResponse{}, err
	}

	sess := s.sessions.Acquire(req.SessionID)
	defer sess.Release()

	lastParent := sess.LastParentID()
	key := cache.Key(req.SessionID, lastParent, req.Question, s.embModel, s.topK)
	if answer, ok := s.cache.Get(key); ok {
		logger.InfoContext(ctx, "answer served from cache", "session_id", req.SessionID)
		sess.Append(
			conversation.Turn{Content: req.Question},
			conversation.Turn{
				Content:  answer,
				Context:  conversation.CacheContextTag,
				ParentID: lastParent,
			},
		)
		return ChatResponse{Answer: answer, Cached: true, ContextSource: lastParent, Decision: "cache_hit"}, nil
	}

	history := sess.History()
	resolution := s.resolver.Resolve(ctx, history, req.Question)

	answer, err := s.generator.GenerateContent(ctx, prompt.Build(history, resolution.Context, req.Question))
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return ChatResponse{}, WrapError(err, "failed to generate answer")
	}

	s.cache.Set(key, answer)
	s.finishTurn(ctx, sess, req.Question, answer, resolution)

	logger.InfoContext(ctx, "chat request processed",
		"session_id", req.SessionID,
		"decision", resolution.Decision.String(),
		"parent_id", resolution.ParentID,
		"answer_length", len(answer))
	return ChatResponse{
		Answer:        answer,
		ContextSource: resolution.ParentID,
		Decision:      resolution.Decision.String(),
	}, nil
}

// StreamChat answers one question incrementally. The turn is recorded and
// cached only when the stream completed; a failed stream leaves no partial
// answer behind.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.validate(req); err != nil {
		logger.WarnContext(ctx, "invalid streaming chat request", "error", err)
		return err
	}

	sess := s.sessions.Acquire(req.SessionID)
	defer sess.Release()

	lastParent := sess.LastParentID()
	key := cache.Key(req.SessionID, lastParent, req.Question, s.embModel, s.topK)
	if answer, ok := s.cache.Get(key); ok {
		logger.InfoContext(ctx, "streamed answer served from cache", "session_id", req.SessionID)
		if err := callback(answer); err != nil {
			return err
		}
		sess.Append(
			conversation.Turn{Content: req.Question},
			conversation.Turn{
				Content:  answer,
				Context:  conversation.CacheContextTag,
				ParentID: lastParent,
			},
		)
		return nil
	}

	history := sess.History()
	resolution := s.resolver.Resolve(ctx, history, req.Question)

	var full strings.Builder
	err := s.generator.StreamGenerateContent(ctx, prompt.Build(history, resolution.Context, req.Question),
		func(chunk string) error {
			full.WriteString(chunk)
			return callback(chunk)
		})
	if err != nil {
		logger.ErrorContext(ctx, "streaming generation failed", "error", err, "delivered_bytes", full.Len())
		return WrapError(err, "failed to stream answer")
	}

	answer := full.String()
	if answer != "" {
		s.cache.Set(key, answer)
		s.finishTurn(ctx, sess, req.Question, answer, resolution)
	}

	logger.InfoContext(ctx, "streaming chat request processed",
		"session_id", req.SessionID,
		"decision", resolution.Decision.String(),
		"answer_length", len(answer))
	return nil
}

// ClearSession drops a session's history.
func (s *chatService) ClearSession(sessionID string) bool {
	return s.sessions.Clear(sessionID)
}

// finishTurn records the completed turn: popularity for fresh retrievals,
// the context embedding when the context is long enough, and the history
// append. Failures here are logged but never fail the answer.
func (s *chatService) finishTurn(ctx context.Context, sess *conversation.Session, question, answer string, resolution conversation.Resolution) {
	logger := contextutil.LoggerFromContext(ctx)

	if resolution.FreshRetrieval() && resolution.ParentID != "" && s.popularity != nil {
		if name, ok := s.catalog.ProcedureName(resolution.ParentID); ok {
			if err := s.popularity.Record(name); err != nil {
				logger.WarnContext(ctx, "failed to record popularity", "error", err)
			}
		}
	}

	var contextEmb []float32
	if utf8.RuneCountInString(resolution.Context) >= minContextEmbedLen {
		emb, err := s.embedder.Embed(ctx, resolution.Context)
		if err != nil {
			logger.WarnContext(ctx, "failed to embed context for history", "error", err)
		} else {
			contextEmb = emb
		}
	}

	sess.Append(
		conversation.Turn{Content: question},
		conversation.Turn{
			Content:    answer,
			Context:    resolution.Context,
			ParentID:   resolution.ParentID,
			ContextEmb: contextEmb,
		},
	)
}
