// Package retrieval implements the hybrid retriever: dense nearest-neighbor
// candidates re-ranked by a transient BM25 pass over the shortlist.
package retrieval

import (
	"context"
	"sort"

	"egov-bot/internal/catalog"
	"egov-bot/internal/contextutil"
	"egov-bot/internal/textutil"
	"egov-bot/internal/vectorstore"
)

// Embedder turns text into a unit-normalized fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Outcome tells the caller which path produced the result. Retrieval never
// returns an error: every failure degrades to a weaker outcome, and the
// outcome makes the degradation observable instead of burying it in logs.
type Outcome int

const (
	// OutcomeEmpty means dense search failed or found nothing.
	OutcomeEmpty Outcome = iota
	// OutcomeUnranked means no candidate carried usable text, so the dense
	// order was truncated without re-ranking.
	OutcomeUnranked
	// OutcomeDenseOnly means the lexical pass could not score the query
	// (e.g. it tokenized to nothing) and the dense order was kept.
	OutcomeDenseOnly
	// OutcomeReranked is the full hybrid path.
	OutcomeReranked
)

// String returns the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnranked:
		return "unranked"
	case OutcomeDenseOnly:
		return "dense_only"
	case OutcomeReranked:
		return "reranked"
	default:
		return "empty"
	}
}

// Result is a ranked candidate list plus the path that produced it.
type Result struct {
	ChunkIDs []string
	Outcome  Outcome
}

// DefaultTopK is the candidate count used when the caller passes none.
const DefaultTopK = 3

// DefaultDenseCandidates is the default floor on dense neighbors fetched
// before re-ranking.
const DefaultDenseCandidates = 50

// Retriever combines the dense index, the metadata catalog and the lexical
// re-ranker.
type Retriever struct {
	embedder        Embedder
	store           vectorstore.VectorStore
	collection      string
	catalog         *catalog.Catalog
	denseCandidates int
}

// NewRetriever creates a Retriever. denseCandidates is the floor on how many
// dense neighbors are fetched before re-ranking.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, cat *catalog.Catalog, denseCandidates int) *Retriever {
	return &Retriever{
		embedder:        embedder,
		store:           store,
		collection:      collection,
		catalog:         cat,
		denseCandidates: denseCandidates,
	}
}

// Retrieve returns up to topK chunk ids ranked for the query.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) Result {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 {
		topK = DefaultTopK
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "query embedding failed", "error", err)
		return Result{Outcome: OutcomeEmpty}
	}

	numCandidates := r.denseCandidates
	if topK*5 > numCandidates {
		numCandidates = topK * 5
	}

	hits, err := r.store.Search(ctx, r.collection, queryVec, numCandidates)
	if err != nil {
		logger.ErrorContext(ctx, "dense search failed", "error", err)
		return Result{Outcome: OutcomeEmpty}
	}

	// The index may be stale relative to metadata: drop ids the catalog
	// does not know.
	candidates := make([]catalog.Chunk, 0, len(hits))
	for _, hit := range hits {
		if chunk, ok := r.catalog.Chunk(hit.ID); ok {
			candidates = append(candidates, chunk)
		}
	}
	if len(candidates) == 0 {
		return Result{Outcome: OutcomeEmpty}
	}

	texts := make([]string, len(candidates))
	hasText := false
	for i, chunk := range candidates {
		text := chunk.Text
		if text == "" {
			text = r.catalog.ProcedureMethod(chunk.Parent())
		}
		texts[i] = text
		if text != "" {
			hasText = true
		}
	}
	if !hasText {
		return Result{ChunkIDs: chunkIDs(candidates, topK), Outcome: OutcomeUnranked}
	}

	queryTokens := textutil.Tokenize(query)
	if len(queryTokens) == 0 {
		logger.WarnContext(ctx, "query produced no lexical terms, keeping dense order")
		return Result{ChunkIDs: chunkIDs(candidates, topK), Outcome: OutcomeDenseOnly}
	}

	docs := make([][]string, len(texts))
	for i, text := range texts {
		docs[i] = textutil.Tokenize(text)
	}
	scores := newBM25(docs).scores(queryTokens)

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	// Stable keeps the dense order for lexically tied candidates.
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	ranked := make([]string, 0, topK)
	for _, idx := range order {
		if len(ranked) == topK {
			break
		}
		ranked = append(ranked, candidates[idx].ID)
	}

	logger.DebugContext(ctx, "hybrid retrieval completed",
		"candidates", len(candidates), "returned", len(ranked), "outcome", OutcomeReranked.String())
	return Result{ChunkIDs: ranked, Outcome: OutcomeReranked}
}

func chunkIDs(chunks []catalog.Chunk, topK int) []string {
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}
