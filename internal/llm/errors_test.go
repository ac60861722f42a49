package llm

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "structured 429", err: &APIError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED"}, want: true},
		{name: "structured resource exhausted", err: &APIError{StatusCode: 403, Status: "RESOURCE_EXHAUSTED"}, want: true},
		{name: "structured server error", err: &APIError{StatusCode: 500, Status: "INTERNAL"}, want: false},
		{name: "structured bad request", err: &APIError{StatusCode: 400, Status: "INVALID_ARGUMENT"}, want: false},
		{name: "wrapped structured 429", err: fmt.Errorf("call failed: %w", &APIError{StatusCode: 429}), want: true},
		{name: "string heuristic quota", err: errors.New("Quota exceeded for model"), want: true},
		{name: "string heuristic 429", err: errors.New("unexpected status 429"), want: true},
		{name: "unrelated transport error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaError(tt.err); got != tt.want {
				t.Fatalf("IsQuotaError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
