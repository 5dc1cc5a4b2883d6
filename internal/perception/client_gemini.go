package perception

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string // empty = SDK default endpoint
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int // 0 = model default
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:  apiKey,
		Model:   "gemini-1.5-flash",
		Timeout: 120 * time.Second,
	}
}

// GeminiClient implements LLMClient for Google Gemini via the genai SDK.
type GeminiClient struct {
	client          *genai.Client
	model           string
	maxOutputTokens int
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = DefaultGeminiConfig("").Model
	}

	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Timeout},
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		model:           model,
		maxOutputTokens: config.MaxOutputTokens,
	}, nil
}

// Model returns the model name used for completions.
func (c *GeminiClient) Model() string {
	return c.model
}

// Complete sends a prompt and returns the generated text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	completion, err := c.CompleteWithUsage(ctx, prompt)
	if err != nil {
		return "", err
	}
	return completion.Text, nil
}

// CompleteWithUsage sends a prompt and returns the text with token counts.
func (c *GeminiClient) CompleteWithUsage(ctx context.Context, prompt string) (Completion, error) {
	completion := Completion{Model: c.model}

	var genCfg *genai.GenerateContentConfig
	if c.maxOutputTokens > 0 {
		genCfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(c.maxOutputTokens)}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return completion, describeError(err)
	}

	if um := resp.UsageMetadata; um != nil {
		completion.InputTokens = int(um.PromptTokenCount)
		completion.OutputTokens = int(um.CandidatesTokenCount)
	}

	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" {
		return completion, fmt.Errorf("prompt blocked by the model: %s", pf.BlockReason)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return completion, ErrEmptyResponse
	}
	completion.Text = text
	return completion, nil
}

// describeError turns SDK API errors into a short human-readable reason.
func describeError(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	found := errors.As(err, &apiErr)
	if !found && errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		apiErr, found = *apiErrPtr, true
	}
	if found {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("quota exceeded (%s): %s: %w", apiErr.Status, apiErr.Message, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("API key rejected (%s): %s: %w", apiErr.Status, apiErr.Message, err)
		}
	}
	return fmt.Errorf("generate content: %w", err)
}
