// Package usage aggregates generative-text call and token counts for the
// lifetime of the process. Nothing is written to disk.
package usage

import (
	"context"
	"sync"
	"time"
)

type contextKey struct{}

type sessionKey struct{}

type modeKey struct{}

// Tracker accumulates usage across all sessions of the process.
type Tracker struct {
	mu   sync.Mutex
	data AggregatedStats
	now  func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		now: time.Now,
		data: AggregatedStats{
			ByModel:   make(map[string]TokenCounts),
			ByMode:    make(map[string]TokenCounts),
			ByDay:     make(map[string]TokenCounts),
			BySession: make(map[string]TokenCounts),
		},
	}
}

// Track records a call. Session and mode come from the context.
func (t *Tracker) Track(ctx context.Context, model string, input, output int, failed bool) UsageEvent {
	event := UsageEvent{
		Timestamp:    t.now(),
		Model:        model,
		InputTokens:  input,
		OutputTokens: output,
		SessionID:    stringValue(ctx, sessionKey{}),
		Mode:         stringValue(ctx, modeKey{}),
		Failed:       failed,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Total.Add(input, output, failed)
	addToMap(t.data.ByModel, event.Model, input, output, failed)
	addToMap(t.data.ByMode, event.Mode, input, output, failed)
	addToMap(t.data.ByDay, event.Timestamp.Format("2006-01-02"), input, output, failed)
	addToMap(t.data.BySession, event.SessionID, input, output, failed)
	return event
}

// Forget drops per-session counters when a session ends.
func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.data.BySession, sessionID)
}

// Today returns the counters for the current local day.
func (t *Tracker) Today() TokenCounts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.ByDay[t.now().Format("2006-01-02")]
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByMode = copyTokenCountsMap(stats.ByMode)
	stats.ByDay = copyTokenCountsMap(stats.ByDay)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int, failed bool) {
	if key == "" {
		key = "unknown"
	}
	entry := m[key]
	entry.Add(input, output, failed)
	m[key] = entry
}

func stringValue(ctx context.Context, key interface{}) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}

// WithSessionContext attributes calls made with ctx to a session and mode.
func WithSessionContext(ctx context.Context, sessionID, mode string) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, sessionID)
	ctx = context.WithValue(ctx, modeKey{}, mode)
	return ctx
}
