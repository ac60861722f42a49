package userdata

import (
	"path/filepath"
	"testing"
)

func TestPopularityRecordAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popularity.json")

	p, err := NewPopularity(path)
	if err != nil {
		t.Fatalf("NewPopularity: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := p.Record("Cấp hộ chiếu phổ thông"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := p.Record(""); err != nil {
		t.Fatalf("Record empty name: %v", err)
	}
	if got := p.Count("Cấp hộ chiếu phổ thông"); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}

	reloaded, err := NewPopularity(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Count("Cấp hộ chiếu phổ thông"); got != 3 {
		t.Fatalf("reloaded Count = %d, want 3", got)
	}
}

func TestFeedbackTransitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")
	f, err := NewFeedbackStore(path)
	if err != nil {
		t.Fatalf("NewFeedbackStore: %v", err)
	}

	s, err := f.Update(VoteNoChange, VoteLike)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Likes != 1 || s.Dislikes != 0 {
		t.Fatalf("after first like: %+v", s)
	}

	// Flipping the vote moves one count instead of inflating both.
	s, err = f.Update(VoteLike, VoteDislike)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Likes != 0 || s.Dislikes != 1 {
		t.Fatalf("after flip: %+v", s)
	}

	// Retracting without a new vote.
	s, err = f.Update(VoteDislike, VoteNoChange)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Likes != 0 || s.Dislikes != 0 {
		t.Fatalf("after retract: %+v", s)
	}
}

func TestFeedbackNeverGoesNegative(t *testing.T) {
	f, err := NewFeedbackStore(filepath.Join(t.TempDir(), "feedback.json"))
	if err != nil {
		t.Fatalf("NewFeedbackStore: %v", err)
	}

	s, err := f.Update(VoteLike, VoteNoChange)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Likes != 0 || s.Dislikes != 0 {
		t.Fatalf("retracting a vote that was never counted must floor at zero, got %+v", s)
	}
}

func TestFeedbackRejectsUnknownVote(t *testing.T) {
	f, err := NewFeedbackStore(filepath.Join(t.TempDir(), "feedback.json"))
	if err != nil {
		t.Fatalf("NewFeedbackStore: %v", err)
	}
	if _, err := f.Update("no_change", "love"); err == nil {
		t.Fatal("expected an error for an unknown vote value")
	}
}

func TestFeedbackPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")
	f, err := NewFeedbackStore(path)
	if err != nil {
		t.Fatalf("NewFeedbackStore: %v", err)
	}
	if _, err := f.Update(VoteNoChange, VoteLike); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := NewFeedbackStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if s := reloaded.Summary(); s.Likes != 1 {
		t.Fatalf("reloaded summary = %+v, want one like", s)
	}
}
