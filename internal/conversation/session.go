// Package conversation owns per-session chat history and the turn-level
// context decision policy.
package conversation

import (
	"context"
	"sync"
	"time"
)

// Turn roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// CacheContextTag marks model turns whose answer came from the answer cache
// rather than a generation call.
const CacheContextTag = "FROM_CACHE"

// Turn is one conversation entry. Model turns carry the context used to
// answer and, when the context was long enough to embed, its embedding for
// later similarity checks.
type Turn struct {
	Role       string
	Content    string
	Context    string
	ParentID   string
	ContextEmb []float32
}

// DefaultMaxTurns bounds each session's history.
const DefaultMaxTurns = 20

// DefaultIdleTTL is how long an untouched session survives before the
// sweeper evicts it.
const DefaultIdleTTL = 24 * time.Hour

// Store holds all sessions. Sessions are created lazily on first access and
// evicted after DefaultIdleTTL of inactivity so the map cannot grow without
// bound across many distinct session ids.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	maxTurns int
	idleTTL  time.Duration
}

// Session is one conversation. Acquire returns it locked: requests for the
// same session id are serialized for their whole turn, so a cache lookup,
// generation and history append cannot interleave with another request's.
type Session struct {
	mu         sync.Mutex
	turns      []Turn
	lastActive time.Time
	maxTurns   int
}

// NewStore creates a session store. Zero values select the defaults.
func NewStore(maxTurns int, idleTTL time.Duration) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		maxTurns: maxTurns,
		idleTTL:  idleTTL,
	}
}

// Acquire returns the session for id, creating it if needed, with its lock
// held. The caller must Release it. lastActive is refreshed under the store
// lock so a concurrent sweep cannot evict a session that is being acquired.
func (s *Store) Acquire(id string) *Session {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{maxTurns: s.maxTurns}
		s.sessions[id] = sess
	}
	sess.lastActive = time.Now()
	s.mu.Unlock()

	sess.mu.Lock()
	return sess
}

// Release unlocks the session.
func (sess *Session) Release() {
	sess.mu.Unlock()
}

// History returns a copy of the session's turns, oldest first.
func (sess *Session) History() []Turn {
	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// LastParentID returns the parent id of the most recent turn, or "".
func (sess *Session) LastParentID() string {
	if len(sess.turns) == 0 {
		return ""
	}
	return sess.turns[len(sess.turns)-1].ParentID
}

// Append stores a user turn and its model turn as one unit, then trims the
// history to the most recent maxTurns entries.
func (sess *Session) Append(user, model Turn) {
	user.Role = RoleUser
	model.Role = RoleModel
	sess.turns = append(sess.turns, user, model)
	if len(sess.turns) > sess.maxTurns {
		trimmed := make([]Turn, sess.maxTurns)
		copy(trimmed, sess.turns[len(sess.turns)-sess.maxTurns:])
		sess.turns = trimmed
	}
}

// Clear removes a session, reporting whether it existed.
func (s *Store) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle longer than the store's TTL and returns how
// many were removed. Sessions currently held by a request are skipped.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActive) < s.idleTTL {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		delete(s.sessions, id)
		sess.mu.Unlock()
		evicted++
	}
	return evicted
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now)
			}
		}
	}()
}
