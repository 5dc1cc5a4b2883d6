package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"dreamer/internal/dream"
	"dreamer/internal/interpret"
	"dreamer/internal/session"
	"dreamer/internal/symbols"
	"dreamer/internal/usage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// apiKeyHeader carries the user's Gemini key. It is used for one request and
// never stored.
const apiKeyHeader = "X-API-Key"

type symbolsRequest struct {
	DreamText   string `json:"dream_text" validate:"max=20000"`
	AutoSymbols *bool  `json:"auto_symbols"`
}

type interpretationRequest struct {
	DreamText       string `json:"dream_text" validate:"max=20000"`
	Emotion         string `json:"emotion" validate:"max=64"`
	LifeContext     string `json:"life_context" validate:"max=2000"`
	Mode            string `json:"mode" validate:"max=64"`
	EmotionAnalysis *bool  `json:"emotion_analysis"`
	AutoJournal     *bool  `json:"auto_journal"`
}

func (r interpretationRequest) toDomain() (interpret.Request, dream.Preferences, error) {
	prefs := dream.DefaultPreferences()
	if r.EmotionAnalysis != nil {
		prefs.EmotionAnalysis = *r.EmotionAnalysis
	}
	if r.AutoJournal != nil {
		prefs.AutoJournal = *r.AutoJournal
	}
	emotion, err := interpret.ParseEmotion(r.Emotion)
	if err != nil {
		return interpret.Request{}, prefs, err
	}
	mode, err := interpret.ParseMode(r.Mode)
	if err != nil {
		return interpret.Request{}, prefs, err
	}
	return interpret.Request{
		DreamText:   r.DreamText,
		Emotion:     emotion,
		LifeContext: r.LifeContext,
		Mode:        mode,
	}, prefs, nil
}

type entryView struct {
	session.JournalEntry
	Display string `json:"display"`
}

func viewOf(e session.JournalEntry) entryView {
	return entryView{JournalEntry: e, Display: e.Display()}
}

type interpretationResponse struct {
	Entry             entryView `json:"entry"`
	RetryAfterSeconds float64   `json:"retry_after_seconds,omitempty"`
}

type sessionResponse struct {
	ID      string             `json:"id"`
	Current *entryView         `json:"current,omitempty"`
	Stats   session.Stats      `json:"stats"`
	Usage   *usage.TokenCounts `json:"usage,omitempty"`
	// UsageToday is process-wide, across all sessions.
	UsageToday *usage.TokenCounts `json:"usage_today,omitempty"`
}

type journalItem struct {
	Number    int               `json:"number"`
	ID        string            `json:"id"`
	Preview   string            `json:"preview"`
	Emotion   interpret.Emotion `json:"emotion"`
	Mode      interpret.Mode    `json:"mode"`
	Kind      interpret.Kind    `json:"kind"`
	Timestamp string            `json:"timestamp"`
}

type journalResponse struct {
	Stats   session.Stats `json:"stats"`
	Entries []journalItem `json:"entries"`
}

type symbolsResponse struct {
	Symbols      []symbols.MatchResult `json:"symbols"`
	CatalogError string                `json:"catalog_error,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

// createSession handles POST /sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id := s.registry.Create()
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// getSession handles GET /sessions/{sessionID}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	resp := sessionResponse{ID: id}
	err := s.registry.With(id, func(st *session.State) error {
		if cur, ok := st.Current(); ok {
			v := viewOf(cur)
			resp.Current = &v
		}
		resp.Stats = st.Stats()
		return nil
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if s.tracker != nil {
		if c, ok := s.tracker.Stats().BySession[id]; ok {
			resp.Usage = &c
		}
		today := s.tracker.Today()
		resp.UsageToday = &today
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// endSession handles DELETE /sessions/{sessionID}
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.registry.End(id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// detectSymbols handles POST /sessions/{sessionID}/symbols
func (s *Server) detectSymbols(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var req symbolsRequest
	if !s.decode(w, r, &req) {
		return
	}

	prefs := dream.DefaultPreferences()
	if req.AutoSymbols != nil {
		prefs.AutoSymbols = *req.AutoSymbols
	}

	var resp symbolsResponse
	err := s.registry.With(id, func(st *session.State) error {
		if _, catErr := s.svc.Catalog(); catErr != nil && st.FirstCatalogNotice() {
			resp.CatalogError = catErr.Error()
		}
		resp.Symbols = s.svc.DetectSymbols(req.DreamText, prefs)
		return nil
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// createInterpretation handles POST /sessions/{sessionID}/interpretations
func (s *Server) createInterpretation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var body interpretationRequest
	if !s.decode(w, r, &body) {
		return
	}
	req, prefs, err := body.toDomain()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))

	var resp interpretationResponse
	err = s.registry.With(id, func(st *session.State) error {
		o, err := s.svc.Run(r.Context(), id, st.LastAPICall(), req, apiKey, prefs)
		if err != nil {
			return err
		}
		s.svc.Apply(st, o, prefs)
		resp.Entry = viewOf(o.Entry)
		if o.Result.Kind == interpret.KindRateLimited {
			resp.RetryAfterSeconds = o.Result.Wait.Seconds()
		}
		return nil
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	if resp.RetryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(resp.RetryAfterSeconds))))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// saveCurrent handles POST /sessions/{sessionID}/journal
func (s *Server) saveCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var added bool
	var size int
	err := s.registry.With(id, func(st *session.State) error {
		var err error
		added, err = s.svc.SaveCurrent(st)
		size = st.JournalLen()
		return err
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, map[string]interface{}{
		"added":        added,
		"journal_size": size,
	})
}

// clearCurrent handles DELETE /sessions/{sessionID}/current
func (s *Server) clearCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	err := s.registry.With(id, func(st *session.State) error {
		s.svc.StartNew(st)
		return nil
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listJournal handles GET /sessions/{sessionID}/journal
func (s *Server) listJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var resp journalResponse
	err := s.registry.With(id, func(st *session.State) error {
		view := s.svc.Journal(st)
		resp.Stats = view.Stats
		resp.Entries = make([]journalItem, 0, len(view.Entries))
		for _, e := range view.Entries {
			resp.Entries = append(resp.Entries, journalItem{
				Number:    e.Number,
				ID:        e.ID,
				Preview:   s.svc.Preview(e.Dream),
				Emotion:   e.Emotion,
				Mode:      e.Mode,
				Kind:      e.Kind,
				Timestamp: e.Timestamp.Format("02/01/2006 15:04"),
			})
		}
		return nil
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// getJournalEntry handles GET /sessions/{sessionID}/journal/{number}
func (s *Server) getJournalEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Journal number must be an integer")
		return
	}
	var entry session.JournalEntry
	err = s.registry.With(id, func(st *session.State) error {
		var err error
		entry, err = s.svc.ExpandEntry(st, number)
		return err
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, viewOf(entry))
}

// exportCurrent handles GET /sessions/{sessionID}/export
func (s *Server) exportCurrent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var filename, content string
	err := s.registry.With(id, func(st *session.State) error {
		a, err := s.svc.Export(st)
		filename, content = a.Filename, a.Content
		return err
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "sessionID")
	if _, err := uuid.Parse(id); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid session ID format")
		return "", false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := validateStruct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dream.ErrMissingInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNoCurrent):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
