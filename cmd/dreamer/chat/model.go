// Package chat implements the interactive dream interpreter form.
package chat

import (
	"strings"

	"dreamer/cmd/dreamer/ui"
	"dreamer/internal/dream"
	"dreamer/internal/interpret"
	"dreamer/internal/logging"
	"dreamer/internal/session"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
)

const (
	defaultWidth  = 100
	defaultHeight = 40
	resultHeight  = 12
)

// InitialModel builds the model for one session.
func InitialModel(cfg Config) Model {
	styles := ui.DefaultStyles()

	ta := textarea.New()
	ta.Placeholder = "Example: I dreamt I was flying over a clear sea, then suddenly fell into deep water..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(5)
	ta.Focus()

	lc := textinput.New()
	lc.Placeholder = "Example: job hunting, recent breakup, stress at work..."
	lc.CharLimit = 2000

	key := textinput.New()
	key.Placeholder = "Gemini API key (free at https://ai.google.dev/)"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.SetValue(cfg.APIKey)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	m := Model{
		svc:         cfg.Service,
		state:       session.NewState(cfg.DailyQuota),
		sessionID:   sessionID,
		exportDir:   cfg.ExportDir,
		prefs:       dream.DefaultPreferences(),
		dream:       ta,
		lifeContext: lc,
		apiKey:      key,
		spinner:     sp,
		viewport:    viewport.New(defaultWidth-4, resultHeight),
		quota:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		styles:      styles,
		width:       defaultWidth,
		height:      defaultHeight,
	}
	m.resize(defaultWidth, defaultHeight)

	if m.svc != nil {
		if _, err := m.svc.Catalog(); err != nil {
			m.setNotice(noticeWarning, "Symbol catalog unavailable; symbol detection is off: "+err.Error())
		}
	}
	logging.Get(logging.CategoryUI).Info("interactive session started: id=%s", sessionID)
	return m
}

// WithState swaps in an existing session state.
func (m Model) WithState(st *session.State) Model {
	m.state = st
	return m
}

// State returns the session state.
func (m Model) State() *session.State { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshResult()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case interpretationMsg:
		return m.applyInterpretation(msg), nil

	case exportedMsg:
		if msg.err != nil {
			m.setNotice(noticeError, "Download failed: "+msg.err.Error())
		} else {
			m.setNotice(noticeSuccess, "📤 Interpretation saved to "+msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global Keybindings
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlS:
		return m.submit()
	case tea.KeyCtrlO:
		return m.saveCurrent(), nil
	case tea.KeyCtrlN:
		return m.startNew(), nil
	case tea.KeyCtrlD:
		return m.download()
	case tea.KeyCtrlL:
		return m.toggleJournal(), nil
	case tea.KeyF1:
		m.prefs.EmotionAnalysis = !m.prefs.EmotionAnalysis
		return m, nil
	case tea.KeyF2:
		m.prefs.AutoSymbols = !m.prefs.AutoSymbols
		m.refreshSymbols()
		return m, nil
	case tea.KeyF3:
		m.prefs.AutoJournal = !m.prefs.AutoJournal
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.view == JournalView {
		return m.handleJournalKey(msg), nil
	}

	switch msg.Type {
	case tea.KeyTab:
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd
	case tea.KeyShiftTab:
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case FieldDream:
		m.dream, cmd = m.dream.Update(msg)
		m.refreshSymbols()
	case FieldContext:
		m.lifeContext, cmd = m.lifeContext.Update(msg)
	case FieldAPIKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	case FieldEmotion:
		m.emotion = cycle(interpret.Emotions(), m.emotion, direction(msg))
	case FieldMode:
		m.mode = cycle(interpret.Modes(), m.mode, direction(msg))
	}
	return m, cmd
}

func (m Model) handleJournalKey(msg tea.KeyMsg) Model {
	entries := m.recent()
	switch msg.Type {
	case tea.KeyEsc:
		if m.expanded != nil {
			m.expanded = nil
			m.refreshResult()
			return m
		}
		m.view = FormView
	case tea.KeyUp:
		if m.journalCursor > 0 {
			m.journalCursor--
		}
	case tea.KeyDown:
		if m.journalCursor < len(entries)-1 {
			m.journalCursor++
		}
	case tea.KeyEnter:
		if m.journalCursor < len(entries) {
			m = m.expand(entries[m.journalCursor].Number)
		}
	}
	return m
}

// direction maps arrow keys to -1/+1 for selectors.
func direction(msg tea.KeyMsg) int {
	switch msg.Type {
	case tea.KeyLeft, tea.KeyUp:
		return -1
	case tea.KeyRight, tea.KeyDown, tea.KeySpace:
		return 1
	}
	return 0
}

func cycle[T comparable](options []T, current T, step int) T {
	if step == 0 || len(options) == 0 {
		return current
	}
	for i, o := range options {
		if o == current {
			return options[(i+step+len(options))%len(options)]
		}
	}
	return options[0]
}

func (m *Model) setFocus(f Field) tea.Cmd {
	m.focus = f
	m.dream.Blur()
	m.lifeContext.Blur()
	m.apiKey.Blur()
	switch f {
	case FieldDream:
		return m.dream.Focus()
	case FieldContext:
		return m.lifeContext.Focus()
	case FieldAPIKey:
		return m.apiKey.Focus()
	}
	return nil
}

func (m Model) request() interpret.Request {
	return interpret.Request{
		DreamText:   m.dream.Value(),
		Emotion:     m.emotion,
		LifeContext: m.lifeContext.Value(),
		Mode:        m.mode,
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	req := m.request()
	if err := dream.Validate(req); err != nil {
		m.setNotice(noticeError, "❌ Please describe your dream first!")
		return m, nil
	}
	m.loading = true
	m.expanded = nil
	m.setNotice(noticeInfo, "🤖 Analysing your dream...")
	return m, tea.Batch(m.spinner.Tick, runInterpretation(m.svc, m.sessionID, m.state.LastAPICall(), req, m.apiKey.Value(), m.prefs))
}

func (m Model) applyInterpretation(msg interpretationMsg) Model {
	m.loading = false
	if msg.err != nil {
		m.setNotice(noticeError, "❌ "+msg.err.Error())
		return m
	}
	m.svc.Apply(m.state, msg.outcome, msg.prefs)
	m.expanded = nil
	m.refreshResult()

	switch {
	case !msg.outcome.Result.OK():
		m.clearNotice()
	case msg.prefs.AutoJournal:
		m.setNotice(noticeSuccess, "✅ Interpretation ready and saved to the journal")
	default:
		m.setNotice(noticeSuccess, "✅ Interpretation ready")
	}
	return m
}

func (m Model) saveCurrent() Model {
	added, err := m.svc.SaveCurrent(m.state)
	switch {
	case err != nil:
		m.setNotice(noticeWarning, "Nothing to save yet")
	case added:
		m.setNotice(noticeSuccess, "✅ Saved to journal!")
	default:
		m.setNotice(noticeInfo, "Already in the journal")
	}
	return m
}

func (m Model) startNew() Model {
	m.svc.StartNew(m.state)
	m.expanded = nil
	m.clearNotice()
	m.refreshResult()
	return m
}

func (m Model) download() (tea.Model, tea.Cmd) {
	artifact, err := m.svc.Export(m.state)
	if err != nil {
		m.setNotice(noticeWarning, "Nothing to download yet")
		return m, nil
	}
	return m, writeExport(m.exportDir, artifact)
}

func (m Model) toggleJournal() Model {
	if m.view == JournalView {
		m.view = FormView
		m.expanded = nil
		m.refreshResult()
		return m
	}
	m.view = JournalView
	m.journalCursor = 0
	return m
}

func (m Model) expand(number int) Model {
	entry, err := m.svc.ExpandEntry(m.state, number)
	if err != nil {
		m.setNotice(noticeWarning, err.Error())
		return m
	}
	m.expanded = &session.NumberedEntry{Number: number, JournalEntry: entry}
	m.refreshResult()
	return m
}

func (m Model) recent() []session.NumberedEntry {
	return m.state.Recent(m.svc.Display().JournalLimit)
}

func (m *Model) refreshSymbols() {
	if m.svc == nil {
		return
	}
	m.symbols = m.svc.DetectSymbols(m.dream.Value(), m.prefs)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	m.dream.SetWidth(inner - 2)
	m.lifeContext.Width = inner - 20
	m.apiKey.Width = inner - 20
	m.viewport.Width = inner
	m.viewport.Height = resultHeight
	m.quota.Width = 30

	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	if r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(inner-2)); err == nil {
		m.renderer = r
	}
}

// refreshResult renders the expanded journal entry or the current
// interpretation into the viewport.
func (m *Model) refreshResult() {
	var entry session.JournalEntry
	switch {
	case m.expanded != nil:
		entry = m.expanded.JournalEntry
	default:
		cur, ok := m.state.Current()
		if !ok {
			m.viewport.SetContent("")
			return
		}
		entry = cur
	}
	m.viewport.SetContent(m.renderEntry(entry))
	m.viewport.GotoTop()
}

func (m Model) renderEntry(entry session.JournalEntry) string {
	if entry.Advisory() {
		return m.styles.Advisory.Render(entry.Display())
	}
	if m.renderer != nil {
		if out, err := m.renderer.Render(entry.Interpretation); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return m.styles.Interpreted.Render(entry.Interpretation)
}

func (m *Model) setNotice(level noticeLevel, text string) {
	m.notice, m.noticeLevel = text, level
}

func (m *Model) clearNotice() {
	m.notice = ""
}
