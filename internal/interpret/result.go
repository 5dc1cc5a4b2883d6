package interpret

import (
	"fmt"
	"time"
)

// Kind tags the outcome of an interpretation attempt.
type Kind int

const (
	KindOK Kind = iota
	KindMissingCredential
	KindRateLimited
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindMissingCredential:
		return "missing_credential"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstreamFailure:
		return "upstream_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{KindOK, KindMissingCredential, KindRateLimited, KindUpstreamFailure} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", text)
}

// Result is the outcome of Requester.Interpret. Text holds the model output
// for KindOK and a human-readable advisory otherwise.
type Result struct {
	Kind Kind
	Text string
	// Wait is the remaining cool-down for KindRateLimited.
	Wait time.Duration
	// Err is the upstream cause for KindUpstreamFailure.
	Err error
}

// OK reports whether the result carries a generated interpretation.
func (r Result) OK() bool { return r.Kind == KindOK }

// ReachedService reports whether the attempt got as far as the service call.
// Only those attempts move the session counters.
func (r Result) ReachedService() bool {
	return r.Kind == KindOK || r.Kind == KindUpstreamFailure
}

// Display renders the result for plain-text surfaces, prefixing advisories
// with a status glyph.
func (r Result) Display() string {
	switch r.Kind {
	case KindMissingCredential:
		return "⚠️ " + r.Text
	case KindRateLimited:
		return "⏳ " + r.Text
	case KindUpstreamFailure:
		return "❌ " + r.Text
	default:
		return r.Text
	}
}

func missingCredential() Result {
	return Result{
		Kind: KindMissingCredential,
		Text: "Gemini API key has not been entered. Please provide it to continue.",
	}
}

func rateLimited(wait time.Duration) Result {
	return Result{
		Kind: KindRateLimited,
		Text: fmt.Sprintf("Please wait %.1f more seconds to stay within the API limit...", wait.Seconds()),
		Wait: wait,
	}
}

func upstreamFailure(err error) Result {
	return Result{
		Kind: KindUpstreamFailure,
		Text: fmt.Sprintf("Error calling Gemini API: %v", err),
		Err:  err,
	}
}
