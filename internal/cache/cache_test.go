package cache

import (
	"testing"
	"time"
)

func TestKeyIsDeterministicAndNormalized(t *testing.T) {
	a := Key("s1", "P1", "Thủ tục cấp hộ chiếu?", "gemini-2.5-flash", 3)
	b := Key("s1", "P1", "  thủ   tục cấp hộ chiếu?  ", "gemini-2.5-flash", 3)
	if a != b {
		t.Fatal("whitespace and case variants of a query must share a key")
	}
	if len(a) != 64 {
		t.Fatalf("key length = %d, want a sha256 hex digest", len(a))
	}
}

func TestKeyScopesEveryInput(t *testing.T) {
	base := Key("s1", "P1", "hộ chiếu", "gemini-2.5-flash", 3)
	variants := []string{
		Key("s2", "P1", "hộ chiếu", "gemini-2.5-flash", 3),
		Key("s1", "P2", "hộ chiếu", "gemini-2.5-flash", 3),
		Key("s1", "P1", "kết hôn", "gemini-2.5-flash", 3),
		Key("s1", "P1", "hộ chiếu", "gemini-2.5-pro", 3),
		Key("s1", "P1", "hộ chiếu", "gemini-2.5-flash", 5),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with the base key", i)
		}
	}
}

func TestGetSet(t *testing.T) {
	c := New(10, time.Minute)
	key := Key("s1", "P1", "hộ chiếu", "gemini-2.5-flash", 3)

	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache reported a hit")
	}
	c.Set(key, "trả lời")
	if got, ok := c.Get(key); !ok || got != "trả lời" {
		t.Fatalf("Get = (%q, %v), want the stored answer", got, ok)
	}
}

func TestEntriesExpire(t *testing.T) {
	c := New(10, 20*time.Millisecond)
	key := Key("s1", "P1", "hộ chiếu", "gemini-2.5-flash", 3)
	c.Set(key, "trả lời")

	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Fatal("entry survived past its TTL")
	}
}
