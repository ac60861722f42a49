package llm

import (
	"context"

	"egov-bot/internal/contextutil"
)

// Generator produces text from a prompt, either whole or as a finite stream
// of chunks delivered through a callback.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	StreamGenerateContent(ctx context.Context, prompt string, callback func(chunk string) error) error
}

// Fallback tries a primary generation backend and, when it fails with a
// quota/rate-limit error, retries once on the secondary backend. Any other
// failure class is terminal. Fallback itself satisfies Generator.
type Fallback struct {
	primary   Generator
	secondary Generator
}

// NewFallback builds the two-backend strategy. secondary may be nil when
// only one credential is configured.
func NewFallback(primary, secondary Generator) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// GenerateContent generates the full answer, switching backends on quota
// exhaustion.
func (f *Fallback) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if f.primary == nil {
		return "", ErrNoBackend
	}

	answer, err := f.primary.GenerateContent(ctx, prompt)
	if err == nil {
		return answer, nil
	}
	if !IsQuotaError(err) || f.secondary == nil {
		return "", err
	}

	f.logSwitch(ctx, err)
	return f.secondary.GenerateContent(ctx, prompt)
}

// StreamGenerateContent streams the answer, switching backends on quota
// exhaustion. The switch restarts the stream from the beginning on the
// secondary backend, so it only happens before the first chunk has been
// delivered; once chunks are flowing, a failure is terminal.
func (f *Fallback) StreamGenerateContent(ctx context.Context, prompt string, callback func(chunk string) error) error {
	if f.primary == nil {
		return ErrNoBackend
	}

	delivered := false
	err := f.primary.StreamGenerateContent(ctx, prompt, func(chunk string) error {
		delivered = true
		return callback(chunk)
	})
	if err == nil {
		return nil
	}
	if delivered || !IsQuotaError(err) || f.secondary == nil {
		return err
	}

	f.logSwitch(ctx, err)
	return f.secondary.StreamGenerateContent(ctx, prompt, callback)
}

func (f *Fallback) logSwitch(ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.WarnContext(ctx, "primary generation backend exhausted, switching to fallback", "error", err)
}
