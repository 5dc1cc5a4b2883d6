// Package perception is the generative-text layer: a provider-neutral LLMClient
// interface, the Gemini implementation, and a tracing decorator that logs calls
// and feeds the usage tracker.
package perception

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// ErrNoAPIKey is returned by constructors when no key is supplied.
var ErrNoAPIKey = errors.New("API key not configured")

// LLMClient defines the interface for LLM providers.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Completion is a generated text with its token accounting.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// UsageReporter is implemented by clients that report token usage.
type UsageReporter interface {
	CompleteWithUsage(ctx context.Context, prompt string) (Completion, error)
}

// ClientFactory builds a client for a user-supplied API key. The key arrives
// at runtime with each request, so clients are built on demand.
type ClientFactory func(ctx context.Context, apiKey string) (LLMClient, error)
