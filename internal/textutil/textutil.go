// Package textutil holds the small pure helpers shared by retrieval and
// context management: text normalization, tokenization and vector math over
// unit-normalized embeddings.
package textutil

import (
	"strings"
	"unicode"
)

// Normalize lowercases, trims and collapses internal whitespace so that two
// spellings of the same query produce the same cache key and the same
// classifier input.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}

// Tokenize splits text into lowercase terms, treating any rune that is not a
// letter or digit as a separator. Vietnamese diacritics are letters and are
// preserved.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// Cosine returns the cosine similarity of two unit vectors. The index stores
// normalized embeddings, so the dot product is the cosine similarity.
// Mismatched or empty vectors score 0.
func Cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// MinMaxScale rescales values into [0, 1]. A constant input maps to all
// zeros rather than dividing by zero.
func MinMaxScale(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	scaled := make([]float64, len(values))
	if maxV == minV {
		return scaled
	}
	span := maxV - minV
	for i, v := range values {
		scaled[i] = (v - minV) / span
	}
	return scaled
}
