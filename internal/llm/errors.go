package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoBackend is returned when no generation backend is configured.
var ErrNoBackend = errors.New("no generation backend configured")

// APIError is a structured error from the generation API.
type APIError struct {
	// StatusCode is the HTTP status of the failed call.
	StatusCode int
	// Status is the API-level status string (e.g. "RESOURCE_EXHAUSTED").
	Status string
	// Message is the API-level error message.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generation API error %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

// IsQuotaError reports whether an error is a rate-limit/quota failure, the
// class that justifies trying the fallback backend.
//
// Structured classification is preferred: a *APIError with HTTP 429 or
// status RESOURCE_EXHAUSTED. For transport errors that carry no structured
// status, the original system's string heuristic ("429" or "quota" in the
// message) is kept as an explicit, tested fallback.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.Status == "RESOURCE_EXHAUSTED"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}
