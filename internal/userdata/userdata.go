// Package userdata persists the small user-facing counters: per-procedure
// popularity and the global like/dislike tally. Both are tiny JSON files
// rewritten whole on every update, which is fine at their write rates.
package userdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Feedback votes accepted from the client.
const (
	VoteLike     = "like"
	VoteDislike  = "dislike"
	VoteNoChange = "no_change"
)

// ErrUnknownVote is returned for feedback values outside the accepted set.
var ErrUnknownVote = errors.New("userdata: unknown feedback value")

// Summary is the running like/dislike tally.
type Summary struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Popularity counts how often each procedure was served from a fresh
// retrieval.
type Popularity struct {
	mu     sync.Mutex
	path   string
	counts map[string]int
}

// NewPopularity loads the counter file at path. A missing file starts an
// empty counter.
func NewPopularity(path string) (*Popularity, error) {
	p := &Popularity{path: path, counts: make(map[string]int)}
	if err := loadJSON(path, &p.counts); err != nil {
		return nil, fmt.Errorf("loading popularity data: %w", err)
	}
	return p, nil
}

// Record increments the counter for name and persists the file.
func (p *Popularity) Record(name string) error {
	if name == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[name]++
	return writeJSON(p.path, p.counts)
}

// Count returns the current counter for name.
func (p *Popularity) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[name]
}

// FeedbackStore keeps the global like/dislike tally.
type FeedbackStore struct {
	mu      sync.Mutex
	path    string
	summary Summary
}

// NewFeedbackStore loads the tally file at path. A missing file starts a
// zero tally.
func NewFeedbackStore(path string) (*FeedbackStore, error) {
	f := &FeedbackStore{path: path}
	if err := loadJSON(path, &f.summary); err != nil {
		return nil, fmt.Errorf("loading feedback data: %w", err)
	}
	return f, nil
}

// Update applies a vote transition: the previous vote (if any) is retracted
// and the new one counted, so a user flipping like to dislike moves one
// count rather than inflating both. Counters never go below zero. VoteNoChange
// on either side means that side is left untouched.
func (f *FeedbackStore) Update(previous, next string) (Summary, error) {
	for _, v := range []string{previous, next} {
		switch v {
		case VoteLike, VoteDislike, VoteNoChange, "":
		default:
			return Summary{}, fmt.Errorf("%w: %q", ErrUnknownVote, v)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch previous {
	case VoteLike:
		if f.summary.Likes > 0 {
			f.summary.Likes--
		}
	case VoteDislike:
		if f.summary.Dislikes > 0 {
			f.summary.Dislikes--
		}
	}
	switch next {
	case VoteLike:
		f.summary.Likes++
	case VoteDislike:
		f.summary.Dislikes++
	}

	if err := writeJSON(f.path, f.summary); err != nil {
		return Summary{}, err
	}
	return f.summary, nil
}

// Summary returns the current tally.
func (f *FeedbackStore) Summary() Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
