package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistry_WithAndEnd(t *testing.T) {
	var ended []string
	r := NewRegistry(time.Hour, 10, WithOnEnd(func(id string) { ended = append(ended, id) }))

	id := r.Create()
	if r.Len() != 1 {
		t.Fatalf("Len = %d", r.Len())
	}

	err := r.With(id, func(s *State) error {
		s.MarkAPICall(time.Now())
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	sentinel := errors.New("handler failed")
	if err := r.With(id, func(*State) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("With err = %v, want handler error", err)
	}

	if err := r.End(id); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := r.End(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second End err = %v", err)
	}
	if err := r.With(id, func(*State) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("With after End err = %v", err)
	}
	if len(ended) != 1 || ended[0] != id {
		t.Fatalf("onEnd calls = %v", ended)
	}
}

func TestRegistry_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Hour, 0, WithRegistryClock(func() time.Time { return now }))

	idle := r.Create()
	now = now.Add(30 * time.Minute)
	active := r.Create()
	now = now.Add(45 * time.Minute)

	if n := r.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if err := r.With(idle, func(*State) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatal("idle session survived the sweep")
	}
	if err := r.With(active, func(*State) error { return nil }); err != nil {
		t.Fatalf("active session swept: %v", err)
	}
}

func TestRegistry_NoExpiry(t *testing.T) {
	r := NewRegistry(0, 0)
	r.Create()
	if r.Sweep() != 0 || r.Len() != 1 {
		t.Fatal("ttl 0 must disable expiry")
	}
}

func TestRegistry_SerialisesPerSession(t *testing.T) {
	r := NewRegistry(time.Hour, 0)
	id := r.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.With(id, func(s *State) error {
				s.RecordInterpretation(JournalEntry{ID: "x"}, false)
				return nil
			})
		}()
	}
	wg.Wait()

	_ = r.With(id, func(s *State) error {
		if s.TotalInterpretations() != 50 {
			t.Errorf("TotalInterpretations = %d, want 50", s.TotalInterpretations())
		}
		return nil
	})
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	r := NewRegistry(time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
