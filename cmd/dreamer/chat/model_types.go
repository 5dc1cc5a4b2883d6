package chat

import (
	"dreamer/cmd/dreamer/ui"
	"dreamer/internal/dream"
	"dreamer/internal/interpret"
	"dreamer/internal/session"
	"dreamer/internal/symbols"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// Config holds configuration for initializing the interface.
type Config struct {
	Service *dream.Service
	// APIKey pre-fills the masked key field. It is held in memory only.
	APIKey     string
	ExportDir  string
	SessionID  string
	DailyQuota int
}

// ViewMode determines which panel owns the arrow keys.
type ViewMode int

const (
	FormView ViewMode = iota
	JournalView
)

// Field is the focused form input.
type Field int

const (
	FieldDream Field = iota
	FieldEmotion
	FieldContext
	FieldMode
	FieldAPIKey
	fieldCount
)

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarning
	noticeError
)

// interpretationMsg carries a finished attempt back to Update.
type interpretationMsg struct {
	outcome dream.Outcome
	prefs   dream.Preferences
	err     error
}

// exportedMsg reports a written download.
type exportedMsg struct {
	path string
	err  error
}

// Model is the bubbletea model. The session state is only touched in Update.
type Model struct {
	svc       *dream.Service
	state     *session.State
	sessionID string
	exportDir string

	prefs   dream.Preferences
	emotion interpret.Emotion
	mode    interpret.Mode

	dream       textarea.Model
	lifeContext textinput.Model
	apiKey      textinput.Model
	spinner     spinner.Model
	viewport    viewport.Model
	quota       progress.Model
	renderer    *glamour.TermRenderer
	styles      ui.Styles

	focus         Field
	view          ViewMode
	journalCursor int
	expanded      *session.NumberedEntry

	symbols []symbols.MatchResult
	loading bool

	notice      string
	noticeLevel noticeLevel

	width  int
	height int
}
