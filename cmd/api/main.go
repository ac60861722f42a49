package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"path/filepath"
	"time"

	"egov-bot/internal/cache"
	"egov-bot/internal/catalog"
	"egov-bot/internal/config"
	"egov-bot/internal/conversation"
	"egov-bot/internal/http"
	"egov-bot/internal/llm"
	"egov-bot/internal/retrieval"
	"egov-bot/internal/service"
	"egov-bot/internal/storage"
	"egov-bot/internal/userdata"
	"egov-bot/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)

	// Open the metadata database
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Load the chunk and procedure tables into memory
	ctx := context.Background()
	chunks, err := storage.NewChunkRepo(db).ListAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load chunks: %v", err)
	}
	procedures, err := storage.NewProcedureRepo(db).ListAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load procedures: %v", err)
	}
	cat := catalog.New(chunks, procedures)
	if cat.ChunkCount() == 0 {
		slog.Warn("No chunks loaded; retrieval will return nothing until the index is built")
	}
	slog.Info("Catalog loaded", "chunks", cat.ChunkCount(), "procedures", cat.ProcedureCount())

	// Connect to the vector index. The collection is built offline, so a
	// missing collection is a deployment error.
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	exists, err := vectorStore.CollectionExists(ctx, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to check Qdrant collection: %v", err)
	}
	if !exists {
		log.Fatalf("Qdrant collection %q does not exist; run the offline indexer first", cfg.QdrantCollection)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Generation backends: a primary Gemini credential and an optional
	// second one taking over on quota exhaustion.
	primary := llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	var secondary llm.Generator
	if cfg.GeminiAPIKey2 != "" {
		secondary = llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey2, cfg.GeminiModel)
	}
	generator := llm.NewFallback(primary, secondary)
	slog.Info("Generation backends configured", "model", cfg.GeminiModel, "fallback", secondary != nil)

	// Retrieval and the per-turn context policy
	retriever := retrieval.NewRetriever(embedder, vectorStore, cfg.QdrantCollection, cat, retrieval.DefaultDenseCandidates)
	manager := conversation.NewManager(retriever, embedder, cat, conversation.DefaultPolicy())

	// Session store with idle eviction
	sessions := conversation.NewStore(conversation.DefaultMaxTurns, conversation.DefaultIdleTTL)
	sessions.StartSweeper(ctx, time.Hour)

	// User data counters
	popularity, err := userdata.NewPopularity(filepath.Join(cfg.UserDataDir, "popular_procedures.json"))
	if err != nil {
		log.Fatalf("Failed to load popularity data: %v", err)
	}
	feedback, err := userdata.NewFeedbackStore(filepath.Join(cfg.UserDataDir, "user_feedback.json"))
	if err != nil {
		log.Fatalf("Failed to load feedback data: %v", err)
	}

	chatService := service.NewChatService(service.Config{
		Sessions:   sessions,
		Resolver:   manager,
		Generator:  generator,
		Embedder:   embedder,
		Cache:      cache.New(cache.DefaultMaxEntries, cache.DefaultTTL),
		Popularity: popularity,
		Catalog:    cat,

		EmbeddingModel: cfg.EmbeddingModelName,
		TopK:           retrieval.DefaultTopK,
	})
	slog.Info("Chat service initialized")

	router := http.NewRouter(&http.Deps{
		ChatService:    chatService,
		Feedback:       feedback,
		VectorStore:    vectorStore,
		Catalog:        cat,
		CollectionName: cfg.QdrantCollection,
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
