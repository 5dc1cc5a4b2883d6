package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dreamer/internal/logging"

	"github.com/google/uuid"
)

type slot struct {
	mu       sync.Mutex
	state    *State
	lastSeen time.Time
}

// Registry owns the sessions of the HTTP surface. Calls for one session are
// serialised; different sessions run in parallel.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*slot
	ttl      time.Duration
	quota    int
	now      func() time.Time
	onEnd    func(id string)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryClock injects the time source used for idle tracking.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithOnEnd registers a callback run after a session is ended or swept.
func WithOnEnd(fn func(id string)) RegistryOption {
	return func(r *Registry) { r.onEnd = fn }
}

// NewRegistry creates a registry whose sessions expire after ttl of
// inactivity. A non-positive ttl disables expiry.
func NewRegistry(ttl time.Duration, dailyQuota int, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*slot),
		ttl:      ttl,
		quota:    dailyQuota,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a new session and returns its id.
func (r *Registry) Create() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.sessions[id] = &slot{state: NewState(r.quota), lastSeen: r.now()}
	r.mu.Unlock()
	logging.Session("session created: id=%s", id)
	return id
}

// With runs fn with exclusive access to the session's state.
func (r *Registry) With(id string, fn func(*State) error) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// End destroys a session.
func (r *Registry) End(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	logging.Session("session ended: id=%s", id)
	r.ended(id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the ttl and returns how many.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	var expired []string
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		logging.Session("session expired: id=%s", id)
		r.ended(id)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) ended(id string) {
	if r.onEnd != nil {
		r.onEnd(id)
	}
}
