package usage

import "time"

// UsageEvent represents a single generative-text call.
type UsageEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	SessionID    string    `json:"session_id"`
	Mode         string    `json:"mode"` // interpretive school
	Failed       bool      `json:"failed"`
}

// AggregatedStats holds counters broken down by various dimensions.
type AggregatedStats struct {
	Total     TokenCounts            `json:"total"`
	ByModel   map[string]TokenCounts `json:"by_model"`
	ByMode    map[string]TokenCounts `json:"by_mode"`
	ByDay     map[string]TokenCounts `json:"by_day"` // YYYY-MM-DD, local time
	BySession map[string]TokenCounts `json:"by_session"`
}

// TokenCounts holds input/output sums and call counts.
type TokenCounts struct {
	Calls    int64 `json:"calls"`
	Failures int64 `json:"failures,omitempty"`
	Input    int64 `json:"input"`
	Output   int64 `json:"output"`
	Total    int64 `json:"total"`
}

func (tc *TokenCounts) Add(input, output int, failed bool) {
	tc.Calls++
	if failed {
		tc.Failures++
	}
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
}
