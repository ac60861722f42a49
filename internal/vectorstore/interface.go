package vectorstore

import "context"

// SearchResult is a nearest-neighbor hit from the dense index.
type SearchResult struct {
	ID    string
	Score float32
}

// VectorStore is the dense-index collaborator boundary. The index is built
// offline and stores unit-normalized embeddings, so inner-product scores are
// cosine similarities. This service only searches it.
type VectorStore interface {
	// Search returns the k nearest neighbors of the query vector, best first.
	Search(ctx context.Context, collection string, query []float32, k int) ([]SearchResult, error)

	// CollectionExists reports whether the collection is present.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
