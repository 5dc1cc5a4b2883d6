package interpret

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dreamer/internal/logging"
	"dreamer/internal/perception"
)

// DefaultInterval is the minimum spacing between service calls of one session
// (5 requests per minute on the free tier).
const DefaultInterval = 12 * time.Second

// Throttle is the per-session call timestamp the limiter reads and updates.
type Throttle interface {
	LastAPICall() time.Time
	MarkAPICall(at time.Time)
}

// Requester performs guarded interpretation calls.
type Requester struct {
	factory  perception.ClientFactory
	interval time.Duration
	language string
	now      func() time.Time
}

// Option configures a Requester.
type Option func(*Requester)

// WithInterval overrides the minimum spacing between calls.
func WithInterval(d time.Duration) Option {
	return func(r *Requester) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLanguage sets the answer language for requests that carry none.
func WithLanguage(lang string) Option {
	return func(r *Requester) { r.language = lang }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Requester) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRequester creates a Requester that builds a client per call from factory.
func NewRequester(factory perception.ClientFactory, opts ...Option) *Requester {
	r := &Requester{
		factory:  factory,
		interval: DefaultInterval,
		language: DefaultLanguage,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval returns the configured minimum spacing between calls.
func (r *Requester) Interval() time.Duration { return r.interval }

// Interpret runs one attempt. It never returns an error or panics past this
// boundary: every outcome is a Result.
//
// The missing-key check comes first and leaves the throttle untouched. The
// call timestamp is recorded before the service is contacted, so a failed
// call still starts a new interval.
func (r *Requester) Interpret(ctx context.Context, req Request, apiKey string, th Throttle) (res Result) {
	log := logging.Get(logging.CategoryAPI)

	defer func() {
		if p := recover(); p != nil {
			log.Error("interpretation panicked: %v", p)
			res = upstreamFailure(fmt.Errorf("internal error: %v", p))
		}
	}()

	if strings.TrimSpace(apiKey) == "" {
		log.Debug("interpretation skipped: no API key")
		return missingCredential()
	}

	now := r.now()
	if last := th.LastAPICall(); !last.IsZero() {
		if elapsed := now.Sub(last); elapsed < r.interval {
			wait := r.interval - elapsed
			log.Debug("interpretation rate limited: wait=%v", wait)
			return rateLimited(wait)
		}
	}

	if req.Language == "" {
		req.Language = r.language
	}
	prompt := BuildPrompt(req)

	th.MarkAPICall(now)

	if r.factory == nil {
		return upstreamFailure(errors.New("no generative-text client configured"))
	}
	client, err := r.factory(ctx, apiKey)
	if err != nil {
		log.Warn("client construction failed: %v", err)
		return upstreamFailure(err)
	}

	text, err := client.Complete(ctx, prompt)
	if err != nil {
		log.Warn("interpretation failed: mode=%s error=%v", req.Mode, err)
		return upstreamFailure(err)
	}
	if strings.TrimSpace(text) == "" {
		return upstreamFailure(perception.ErrEmptyResponse)
	}

	log.Info("interpretation completed: mode=%s emotion=%s chars=%d", req.Mode, req.Emotion, len(text))
	return Result{Kind: KindOK, Text: text}
}
