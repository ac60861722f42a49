package retrieval

import "math"

// Okapi BM25 parameters, matching the offline index-build tooling.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// bm25 is a transient lexical scorer built over one retrieval's candidate
// shortlist, never over the whole corpus. It is cheap to construct (tens of
// documents) and discarded after a single query.
type bm25 struct {
	docFreqs  []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
	numDocs   int
}

// newBM25 builds the scorer from tokenized candidate documents.
func newBM25(docs [][]string) *bm25 {
	b := &bm25{
		docFreqs: make([]map[string]int, len(docs)),
		docLens:  make([]int, len(docs)),
		idf:      make(map[string]float64),
		numDocs:  len(docs),
	}

	totalLen := 0
	termDocCount := make(map[string]int)
	for i, doc := range docs {
		freq := make(map[string]int, len(doc))
		for _, term := range doc {
			freq[term]++
		}
		b.docFreqs[i] = freq
		b.docLens[i] = len(doc)
		totalLen += len(doc)
		for term := range freq {
			termDocCount[term]++
		}
	}
	if b.numDocs > 0 {
		b.avgDocLen = float64(totalLen) / float64(b.numDocs)
	}

	// Standard Okapi idf. Terms appearing in more than half the documents
	// go negative; those are floored at epsilon times the average positive
	// idf so a ubiquitous term can never invert a ranking.
	var positiveSum float64
	var positiveCount int
	var negative []string
	for term, n := range termDocCount {
		idf := math.Log(float64(b.numDocs)-float64(n)+0.5) - math.Log(float64(n)+0.5)
		b.idf[term] = idf
		if idf < 0 {
			negative = append(negative, term)
		} else {
			positiveSum += idf
			positiveCount++
		}
	}
	floor := bm25Epsilon
	if positiveCount > 0 {
		floor = bm25Epsilon * (positiveSum / float64(positiveCount))
	}
	for _, term := range negative {
		b.idf[term] = floor
	}

	return b
}

// scores returns one BM25 score per document for the tokenized query.
func (b *bm25) scores(query []string) []float64 {
	scores := make([]float64, b.numDocs)
	if b.avgDocLen == 0 {
		return scores
	}

	for _, term := range query {
		idf, ok := b.idf[term]
		if !ok {
			continue
		}
		for i, freq := range b.docFreqs {
			tf := float64(freq[term])
			if tf == 0 {
				continue
			}
			norm := bm25K1 * (1 - bm25B + bm25B*float64(b.docLens[i])/b.avgDocLen)
			scores[i] += idf * tf * (bm25K1 + 1) / (tf + norm)
		}
	}
	return scores
}
