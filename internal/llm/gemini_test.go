package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key-1" {
			t.Errorf("missing api key header")
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Thủ tục gồm "},{"text":"hai bước."}]}}]}`)
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "key-1", "gemini-2.5-flash")
	answer, err := client.GenerateContent(context.Background(), "câu hỏi")
	if err != nil {
		t.Fatalf("GenerateContent() failed: %v", err)
	}
	if answer != "Thủ tục gồm hai bước." {
		t.Fatalf("answer = %q", answer)
	}
}

func TestGeminiGenerateContentQuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "key-1", "gemini-2.5-flash")
	_, err := client.GenerateContent(context.Background(), "câu hỏi")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 429 || apiErr.Status != "RESOURCE_EXHAUSTED" {
		t.Fatalf("unexpected classification: %+v", apiErr)
	}
	if !IsQuotaError(err) {
		t.Fatal("quota response must classify as quota error")
	}
}

func TestGeminiStreamGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "alt=sse") {
			t.Errorf("expected SSE query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Bước 1. \"}]}}]}\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Bước 2.\"}]}}]}\n\n")
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "key-1", "gemini-2.5-flash")

	var chunks []string
	err := client.StreamGenerateContent(context.Background(), "câu hỏi", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamGenerateContent() failed: %v", err)
	}
	if strings.Join(chunks, "") != "Bước 1. Bước 2." {
		t.Fatalf("chunks = %v", chunks)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 delivered chunks, got %d", len(chunks))
	}
}
