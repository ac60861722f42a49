// Package cache provides the answer cache keyed by session, resolved
// context and normalized query.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"egov-bot/internal/textutil"
)

// Defaults for the answer cache.
const (
	DefaultTTL        = time.Hour
	DefaultMaxEntries = 2000
)

// AnswerCache stores generated answers with TTL-then-LRU eviction: entries
// expire after the TTL, and the oldest entries are dropped when the cache
// is full.
type AnswerCache struct {
	lru *expirable.LRU[string, string]
}

// New creates an AnswerCache. Zero values select the defaults.
func New(maxEntries int, ttl time.Duration) *AnswerCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AnswerCache{lru: expirable.NewLRU[string, string](maxEntries, nil, ttl)}
}

// Key derives the cache key for one question. The parent id scopes the key
// to the resolved context, so the same wording asked about a different
// procedure never collides; the embedding model name and retrieval depth
// scope it to the retrieval configuration.
func Key(sessionID, parentID, query, embModel string, topK int) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%d", sessionID, parentID, textutil.Normalize(query), embModel, topK)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached answer for key, if present and unexpired.
func (c *AnswerCache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Set stores an answer under key.
func (c *AnswerCache) Set(key, answer string) {
	c.lru.Add(key, answer)
}

// Len returns the number of live entries.
func (c *AnswerCache) Len() int {
	return c.lru.Len()
}
