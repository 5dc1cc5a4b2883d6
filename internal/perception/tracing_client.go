package perception

import (
	"context"
	"time"

	"dreamer/internal/logging"
	"dreamer/internal/usage"
)

type modelGetter interface {
	Model() string
}

// TracingLLMClient wraps any LLMClient, logging every call to the api category
// and recording it in the usage tracker carried by the context, if any.
type TracingLLMClient struct {
	underlying LLMClient
	now        func() time.Time
}

// NewTracingLLMClient creates a tracing wrapper around an existing LLM client.
func NewTracingLLMClient(underlying LLMClient) *TracingLLMClient {
	return &TracingLLMClient{underlying: underlying, now: time.Now}
}

// Complete implements LLMClient.Complete with tracing.
func (tc *TracingLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	completion, err := tc.CompleteWithUsage(ctx, prompt)
	return completion.Text, err
}

// CompleteWithUsage implements UsageReporter. Clients that do not report usage
// are recorded with zero token counts.
func (tc *TracingLLMClient) CompleteWithUsage(ctx context.Context, prompt string) (Completion, error) {
	start := tc.now()
	log := logging.Get(logging.CategoryAPI).With("model", tc.Model())
	logging.APIDebug("LLM call started: prompt_len=%d", len(prompt))
	if log.Enabled() {
		log.Debug("prompt preview: %s", preview(prompt, 120))
	}

	var (
		completion Completion
		err        error
	)
	if reporter, ok := tc.underlying.(UsageReporter); ok {
		completion, err = reporter.CompleteWithUsage(ctx, prompt)
	} else {
		completion.Text, err = tc.underlying.Complete(ctx, prompt)
	}
	if completion.Model == "" {
		if mg, ok := tc.underlying.(modelGetter); ok {
			completion.Model = mg.Model()
		}
	}

	duration := tc.now().Sub(start)
	if err != nil {
		log.Warn("LLM call failed: model=%s duration=%v error=%s", completion.Model, duration, err.Error())
	} else {
		logging.API("LLM call completed: model=%s duration=%v response_len=%d tokens_in=%d tokens_out=%d",
			completion.Model, duration, len(completion.Text), completion.InputTokens, completion.OutputTokens)
	}

	if tracker := usage.FromContext(ctx); tracker != nil {
		tracker.Track(ctx, completion.Model, completion.InputTokens, completion.OutputTokens, err != nil)
	}

	return completion, err
}

// Model returns the wrapped client's model, if it exposes one.
func (tc *TracingLLMClient) Model() string {
	if mg, ok := tc.underlying.(modelGetter); ok {
		return mg.Model()
	}
	return ""
}

// preview cuts s to at most n runes for log lines.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
