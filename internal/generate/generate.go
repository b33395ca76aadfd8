package generate

import (
	"context"
	"fmt"
)

// Request is one prompt sent to a text-generation backend.
type Request struct {
	Prompt      string
	Temperature float64
	MaxLength   int // Backend character budget; 0 uses the backend default
}

// Generator produces text for a prompt. Implementations may be slow or
// unavailable and report transient failures as *RetryableError.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retryable error: %s", truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
