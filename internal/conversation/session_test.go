package conversation

import (
	"testing"
	"time"
)

func TestAppendBoundsHistory(t *testing.T) {
	store := NewStore(0, 0)
	sess := store.Acquire("s1")
	defer sess.Release()

	for i := 0; i < 30; i++ {
		sess.Append(Turn{Content: "hỏi"}, Turn{Content: "đáp", ParentID: "P1"})
	}

	history := sess.History()
	if len(history) != DefaultMaxTurns {
		t.Fatalf("history length = %d, want %d", len(history), DefaultMaxTurns)
	}
	if history[0].Role != RoleUser || history[len(history)-1].Role != RoleModel {
		t.Fatalf("trimming broke the user/model pairing: first=%s last=%s",
			history[0].Role, history[len(history)-1].Role)
	}
}

func TestLastParentID(t *testing.T) {
	store := NewStore(0, 0)
	sess := store.Acquire("s1")
	defer sess.Release()

	if got := sess.LastParentID(); got != "" {
		t.Fatalf("LastParentID on empty history = %q, want empty", got)
	}

	sess.Append(Turn{Content: "hỏi"}, Turn{Content: "đáp", ParentID: "P7"})
	if got := sess.LastParentID(); got != "P7" {
		t.Fatalf("LastParentID = %q, want P7", got)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	store := NewStore(0, 0)
	sess := store.Acquire("s1")
	defer sess.Release()

	sess.Append(Turn{Content: "hỏi"}, Turn{Content: "đáp"})
	history := sess.History()
	history[0].Content = "mutated"

	if sess.History()[0].Content != "hỏi" {
		t.Fatal("History must return a copy, not the backing slice")
	}
}

func TestClear(t *testing.T) {
	store := NewStore(0, 0)
	store.Acquire("s1").Release()

	if !store.Clear("s1") {
		t.Fatal("Clear of an existing session should report true")
	}
	if store.Clear("s1") {
		t.Fatal("Clear of a missing session should report false")
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d after clear, want 0", store.Len())
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	store := NewStore(0, time.Minute)
	store.Acquire("idle").Release()

	if evicted := store.Sweep(time.Now()); evicted != 0 {
		t.Fatalf("Sweep evicted %d fresh sessions, want 0", evicted)
	}
	if evicted := store.Sweep(time.Now().Add(2 * time.Minute)); evicted != 1 {
		t.Fatalf("Sweep evicted %d, want 1", evicted)
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d after sweep, want 0", store.Len())
	}
}

func TestSweepSkipsHeldSessions(t *testing.T) {
	store := NewStore(0, time.Minute)
	sess := store.Acquire("busy")

	if evicted := store.Sweep(time.Now().Add(2 * time.Minute)); evicted != 0 {
		t.Fatalf("Sweep evicted %d held sessions, want 0", evicted)
	}
	sess.Release()

	if evicted := store.Sweep(time.Now().Add(2 * time.Minute)); evicted != 1 {
		t.Fatalf("Sweep evicted %d after release, want 1", evicted)
	}
}

func TestAcquireSerializesTurns(t *testing.T) {
	store := NewStore(0, 0)
	sess := store.Acquire("s1")

	done := make(chan struct{})
	go func() {
		other := store.Acquire("s1")
		other.Append(Turn{Content: "second"}, Turn{Content: "đáp"})
		other.Release()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second Acquire completed while the session was held")
	case <-time.After(50 * time.Millisecond):
	}

	sess.Append(Turn{Content: "first"}, Turn{Content: "đáp"})
	sess.Release()
	<-done

	sess = store.Acquire("s1")
	defer sess.Release()
	if got := sess.History()[0].Content; got != "first" {
		t.Fatalf("first turn = %q, want the holder's append to land first", got)
	}
}
