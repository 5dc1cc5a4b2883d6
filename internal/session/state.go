// Package session holds the per-user interpretation state: counters, the
// current result and the append-only dream journal.
//
// A State is not safe for concurrent use. The terminal UI touches it only from
// its update loop; the HTTP server goes through Registry.With.
package session

import (
	"errors"
	"fmt"
	"time"

	"dreamer/internal/interpret"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for unknown sessions and journal numbers.
	ErrNotFound = errors.New("not found")
	// ErrNoCurrent is returned when an action needs a current interpretation.
	ErrNoCurrent = errors.New("no current interpretation")
)

// DefaultDailyQuota is the free-tier request allowance per day.
const DefaultDailyQuota = 250

// JournalEntry is one interpretation attempt as the user saw it.
type JournalEntry struct {
	ID             string            `json:"id"`
	Dream          string            `json:"dream"`
	Interpretation string            `json:"interpretation"`
	Kind           interpret.Kind    `json:"kind"`
	Emotion        interpret.Emotion `json:"emotion"`
	Context        string            `json:"context"`
	Mode           interpret.Mode    `json:"mode"`
	Timestamp      time.Time         `json:"timestamp"`
}

// NewEntry snapshots a request and its result.
func NewEntry(req interpret.Request, res interpret.Result, at time.Time) JournalEntry {
	return JournalEntry{
		ID:             uuid.NewString(),
		Dream:          req.DreamText,
		Interpretation: res.Text,
		Kind:           res.Kind,
		Emotion:        req.Emotion,
		Context:        req.LifeContext,
		Mode:           req.Mode,
		Timestamp:      at,
	}
}

// Advisory reports whether the entry holds an advisory instead of a generated
// interpretation.
func (e JournalEntry) Advisory() bool {
	return e.Kind != interpret.KindOK
}

// Display renders the interpretation with the advisory glyph, if any.
func (e JournalEntry) Display() string {
	return interpret.Result{Kind: e.Kind, Text: e.Interpretation}.Display()
}

// State is one user's session.
type State struct {
	journal              []JournalEntry
	current              *JournalEntry
	totalInterpretations int
	apiCallsToday        int
	lastAPICall          time.Time
	dailyQuota           int
	catalogNoticed       bool
}

// NewState creates an empty session. A non-positive quota means
// DefaultDailyQuota.
func NewState(dailyQuota int) *State {
	if dailyQuota <= 0 {
		dailyQuota = DefaultDailyQuota
	}
	return &State{dailyQuota: dailyQuota}
}

// LastAPICall returns when the service was last contacted; zero if never.
func (s *State) LastAPICall() time.Time { return s.lastAPICall }

// MarkAPICall records a service call. The timestamp never moves backwards.
func (s *State) MarkAPICall(at time.Time) {
	if at.After(s.lastAPICall) {
		s.lastAPICall = at
	}
}

// RecordInterpretation counts an attempt that reached the service, makes it
// current and, when saveToJournal is set, appends it to the journal.
func (s *State) RecordInterpretation(entry JournalEntry, saveToJournal bool) {
	s.totalInterpretations++
	s.apiCallsToday++
	s.current = &entry
	if saveToJournal {
		s.journal = append(s.journal, entry)
	}
}

// ShowAdvisory makes entry current without touching counters or the journal.
func (s *State) ShowAdvisory(entry JournalEntry) {
	s.current = &entry
}

// AppendIfAbsent appends the current entry unless an entry with the same ID
// is already in the journal. It reports whether it appended.
func (s *State) AppendIfAbsent() bool {
	if s.current == nil {
		return false
	}
	for _, e := range s.journal {
		if e.ID == s.current.ID {
			return false
		}
	}
	s.journal = append(s.journal, *s.current)
	return true
}

// FirstCatalogNotice reports true exactly once per session, the first time a
// catalog diagnostic is about to be shown.
func (s *State) FirstCatalogNotice() bool {
	if s.catalogNoticed {
		return false
	}
	s.catalogNoticed = true
	return true
}

// ClearCurrent drops the current interpretation.
func (s *State) ClearCurrent() {
	s.current = nil
}

// Current returns the current interpretation, if any.
func (s *State) Current() (JournalEntry, bool) {
	if s.current == nil {
		return JournalEntry{}, false
	}
	return *s.current, true
}

// Journal returns a copy of the journal, oldest first.
func (s *State) Journal() []JournalEntry {
	out := make([]JournalEntry, len(s.journal))
	copy(out, s.journal)
	return out
}

// JournalLen returns the number of journal entries.
func (s *State) JournalLen() int { return len(s.journal) }

// TotalInterpretations returns the number of attempts that reached the service.
func (s *State) TotalInterpretations() int { return s.totalInterpretations }

// APICallsToday returns the number of service calls made in this session.
func (s *State) APICallsToday() int { return s.apiCallsToday }

// NumberedEntry is a journal entry with its 1-based position.
type NumberedEntry struct {
	Number int `json:"number"`
	JournalEntry
}

// Recent returns up to n of the latest entries, newest first. n <= 0 returns
// the whole journal.
func (s *State) Recent(n int) []NumberedEntry {
	total := len(s.journal)
	if n <= 0 || n > total {
		n = total
	}
	out := make([]NumberedEntry, 0, n)
	for i := total - 1; i >= total-n; i-- {
		out = append(out, NumberedEntry{Number: i + 1, JournalEntry: s.journal[i]})
	}
	return out
}

// Entry returns the journal entry with the given 1-based number.
func (s *State) Entry(number int) (JournalEntry, error) {
	if number < 1 || number > len(s.journal) {
		return JournalEntry{}, fmt.Errorf("journal entry %d: %w", number, ErrNotFound)
	}
	return s.journal[number-1], nil
}
