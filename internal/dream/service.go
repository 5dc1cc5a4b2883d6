// Package dream coordinates one interpretation round trip. Every handler takes
// the session state explicitly; the package itself holds no per-user state.
package dream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"dreamer/internal/config"
	"dreamer/internal/export"
	"dreamer/internal/interpret"
	"dreamer/internal/logging"
	"dreamer/internal/session"
	"dreamer/internal/symbols"
	"dreamer/internal/usage"
)

// ErrMissingInput is returned when the dream text is blank.
var ErrMissingInput = errors.New("please describe your dream first")

// Preferences are the user's toggles.
type Preferences struct {
	EmotionAnalysis bool `json:"emotion_analysis"`
	AutoSymbols     bool `json:"auto_symbols"`
	AutoJournal     bool `json:"auto_journal"`
}

// DefaultPreferences has every toggle on.
func DefaultPreferences() Preferences {
	return Preferences{EmotionAnalysis: true, AutoSymbols: true, AutoJournal: true}
}

// Service wires the catalog, the requester and the session handlers.
type Service struct {
	requester   *interpret.Requester
	catalogs    *symbols.Cache
	catalogPath string
	display     config.DisplayConfig
	tracker     *usage.Tracker
	now         func() time.Time

	catalogOnce sync.Once
}

// Option configures a Service.
type Option func(*Service)

// WithTracker feeds service calls into a usage tracker.
func WithTracker(t *usage.Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithClock injects the time source used for entry and export timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCatalogCache shares a catalog cache between services.
func WithCatalogCache(c *symbols.Cache) Option {
	return func(s *Service) { s.catalogs = c }
}

// NewService builds a service from config.
func NewService(cfg *config.Config, requester *interpret.Requester, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Service{
		requester:   requester,
		catalogPath: cfg.Catalog.Path,
		display:     cfg.Display,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalogs == nil {
		s.catalogs = symbols.NewCache()
	}
	return s
}

// Display returns the presentation limits.
func (s *Service) Display() config.DisplayConfig { return s.display }

// Catalog returns the symbol catalog. If it could not be loaded the catalog is
// empty and the error is returned on every call; it is logged once.
func (s *Service) Catalog() (*symbols.Catalog, error) {
	cat, err := s.catalogs.Get(s.catalogPath)
	s.catalogOnce.Do(func() {
		if err != nil {
			logging.Get(logging.CategoryCatalog).Warn("symbol catalog unavailable: %v", err)
			return
		}
		logging.Catalog("symbol catalog loaded: path=%s symbols=%d", s.catalogPath, cat.Len())
	})
	return cat, err
}

// DetectSymbols matches text against the catalog for display, capped at the
// configured symbol limit. It returns nothing when auto detection is off.
func (s *Service) DetectSymbols(text string, prefs Preferences) []symbols.MatchResult {
	if !prefs.AutoSymbols {
		return []symbols.MatchResult{}
	}
	return symbols.Limit(s.MatchAll(text), s.display.SymbolLimit)
}

// MatchAll returns every catalog match for text.
func (s *Service) MatchAll(text string) []symbols.MatchResult {
	cat, _ := s.Catalog()
	return symbols.Match(text, cat)
}

// Validate checks a request before anything is called.
func Validate(req interpret.Request) error {
	if strings.TrimSpace(req.DreamText) == "" {
		return ErrMissingInput
	}
	return nil
}

// Outcome is a finished attempt that has not yet been applied to a session.
type Outcome struct {
	Entry  session.JournalEntry
	Result interpret.Result
	// CalledAt is when the service was contacted; zero if it was not.
	CalledAt time.Time
}

// detached lets an attempt run off the session's goroutine. It reads the
// session's last call time and records a new one for Apply.
type detached struct {
	last   time.Time
	marked time.Time
}

func (d *detached) LastAPICall() time.Time { return d.last }

func (d *detached) MarkAPICall(at time.Time) { d.marked = at }

// Run performs an attempt without touching session state. lastAPICall is the
// session's current value. The returned Outcome is applied with Apply.
func (s *Service) Run(ctx context.Context, sessionID string, lastAPICall time.Time, req interpret.Request, apiKey string, prefs Preferences) (Outcome, error) {
	if err := Validate(req); err != nil {
		return Outcome{}, err
	}
	req.EmotionAnalysis = prefs.EmotionAnalysis

	ctx = usage.WithSessionContext(ctx, sessionID, req.Mode.String())
	if s.tracker != nil {
		ctx = usage.NewContext(ctx, s.tracker)
	}

	th := &detached{last: lastAPICall}
	res := s.requester.Interpret(ctx, req, apiKey, th)
	return Outcome{
		Entry:    session.NewEntry(req, res, s.now()),
		Result:   res,
		CalledAt: th.marked,
	}, nil
}

// Apply folds an outcome into the session. Attempts that reached the service
// move the counters and may be journaled; advisories only become current.
func (s *Service) Apply(st *session.State, o Outcome, prefs Preferences) {
	if !o.CalledAt.IsZero() {
		st.MarkAPICall(o.CalledAt)
	}
	if o.Result.ReachedService() {
		st.RecordInterpretation(o.Entry, prefs.AutoJournal)
		logging.Session("interpretation recorded: kind=%s journaled=%v total=%d", o.Result.Kind, prefs.AutoJournal, st.TotalInterpretations())
		return
	}
	st.ShowAdvisory(o.Entry)
	logging.SessionDebug("advisory shown: kind=%s", o.Result.Kind)
}

// Submit runs an attempt and applies it to st. Blank dream text returns
// ErrMissingInput before any call or state change.
func (s *Service) Submit(ctx context.Context, st *session.State, sessionID string, req interpret.Request, apiKey string, prefs Preferences) (session.JournalEntry, error) {
	o, err := s.Run(ctx, sessionID, st.LastAPICall(), req, apiKey, prefs)
	if err != nil {
		return session.JournalEntry{}, err
	}
	s.Apply(st, o, prefs)
	return o.Entry, nil
}

// SaveCurrent is the manual "save to journal" action. It reports whether the
// entry was newly added.
func (s *Service) SaveCurrent(st *session.State) (bool, error) {
	if _, ok := st.Current(); !ok {
		return false, session.ErrNoCurrent
	}
	return st.AppendIfAbsent(), nil
}

// StartNew clears the current interpretation.
func (s *Service) StartNew(st *session.State) {
	st.ClearCurrent()
}

// Export renders the current interpretation as a download.
func (s *Service) Export(st *session.State) (export.Artifact, error) {
	cur, ok := st.Current()
	if !ok {
		return export.Artifact{}, session.ErrNoCurrent
	}
	opts := export.Options{
		DreamChars:          s.display.ExportDreamChars,
		InterpretationChars: s.display.ExportInterpretationChars,
	}
	return export.New(cur.Dream, cur.Display(), opts, s.now()), nil
}

// ExpandEntry returns a past journal entry in full.
func (s *Service) ExpandEntry(st *session.State, number int) (session.JournalEntry, error) {
	return st.Entry(number)
}

// JournalView is the journal panel: stats plus the most recent entries.
type JournalView struct {
	Stats   session.Stats           `json:"stats"`
	Entries []session.NumberedEntry `json:"entries"`
}

// Journal builds the journal panel for st.
func (s *Service) Journal(st *session.State) JournalView {
	return JournalView{
		Stats:   st.Stats(),
		Entries: st.Recent(s.display.JournalLimit),
	}
}

// Preview shortens dream text for the journal list, marking cut text with "...".
func (s *Service) Preview(text string) string {
	cut := export.Truncate(text, s.display.PreviewChars)
	if len(cut) < len(text) {
		return cut + "..."
	}
	return cut
}
