package perception

import (
	"context"

	"dreamer/internal/config"
)

// GeminiConfigFromLLM maps the llm config section onto a GeminiConfig.
func GeminiConfigFromLLM(cfg *config.Config) GeminiConfig {
	gc := DefaultGeminiConfig("")
	if cfg == nil {
		return gc
	}
	if cfg.LLM.Model != "" {
		gc.Model = cfg.LLM.Model
	}
	gc.BaseURL = cfg.LLM.BaseURL
	gc.Timeout = cfg.GetLLMTimeout()
	return gc
}

// NewGeminiFactory returns a ClientFactory that builds traced Gemini clients
// from base, substituting the caller's API key.
func NewGeminiFactory(base GeminiConfig) ClientFactory {
	return func(ctx context.Context, apiKey string) (LLMClient, error) {
		cfg := base
		cfg.APIKey = apiKey
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewTracingLLMClient(client), nil
	}
}
