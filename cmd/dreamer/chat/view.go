package chat

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"dreamer/cmd/dreamer/ui"
	"dreamer/internal/session"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{
		m.renderHeader(),
		m.renderForm(),
		m.renderSymbols(),
	}
	if m.view == JournalView {
		sections = append(sections, m.renderJournal())
	}
	sections = append(sections, m.renderResult())
	if m.notice != "" {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	s := m.styles
	st := m.state.Stats()
	stats := fmt.Sprintf("📊 Total interpretations: %d   API calls today: %d/%d ",
		st.TotalInterpretations, st.APICallsToday, st.DailyQuota)
	return lipgloss.JoinVertical(lipgloss.Left,
		ui.Logo(s),
		s.Muted.Render(stats)+m.quota.ViewAs(st.QuotaUsed),
	)
}

func (m Model) renderForm() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("💭 Tell me your dream") + "\n")
	b.WriteString(m.dream.View() + "\n\n")
	b.WriteString(m.fieldLabel(FieldEmotion, "Feeling") + selector(m.emotion, m.focus == FieldEmotion) + "\n")
	b.WriteString(m.fieldLabel(FieldContext, "Life situation") + m.lifeContext.View() + "\n")
	b.WriteString(m.fieldLabel(FieldMode, "Approach") + selector(m.mode, m.focus == FieldMode) + "\n")
	b.WriteString(m.fieldLabel(FieldAPIKey, "🔑 API key") + m.apiKey.View() + "\n\n")
	b.WriteString(strings.Join([]string{
		s.Toggle("F1 emotion analysis", m.prefs.EmotionAnalysis),
		s.Toggle("F2 symbol detection", m.prefs.AutoSymbols),
		s.Toggle("F3 auto-journal", m.prefs.AutoJournal),
	}, " "))

	panel := s.Panel
	if m.view == FormView {
		panel = s.Active
	}
	return panel.Width(m.width - 2).Render(b.String())
}

func (m Model) fieldLabel(f Field, text string) string {
	if m.focus == f && m.view == FormView {
		return m.styles.Label.Foreground(m.styles.Theme.Accent).Render("› " + text)
	}
	return m.styles.Label.Render("  " + text)
}

func selector(current fmt.Stringer, focused bool) string {
	if focused {
		return "◀ " + current.String() + " ▶"
	}
	return current.String()
}

func (m Model) renderSymbols() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("🔮 Quick Symbols") + "\n")

	switch {
	case !m.prefs.AutoSymbols:
		b.WriteString(s.Muted.Render("Symbol detection is off (F2)."))
	case strings.TrimSpace(m.dream.Value()) == "":
		b.WriteString(s.Muted.Render("Start typing to detect common symbols."))
	case len(m.symbols) == 0:
		b.WriteString(s.Muted.Render("No common symbols detected. Use the AI interpretation for a full analysis."))
	default:
		lines := make([]string, 0, len(m.symbols))
		for _, sym := range m.symbols {
			lines = append(lines, s.Symbol.Render("🎭 "+titleCase(sym.Label))+" "+s.Body.Render(sym.Meaning))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return s.Panel.Width(m.width - 2).Render(b.String())
}

func (m Model) renderResult() string {
	s := m.styles
	var title string
	switch {
	case m.loading:
		title = m.spinner.View() + " " + s.Title.Render("AI is analysing your dream...")
	case m.expanded != nil:
		title = s.Title.Render(fmt.Sprintf("🌙 Dream #%d - %s", m.expanded.Number, m.expanded.Timestamp.Format("02/01/2006 15:04")))
	default:
		if _, ok := m.state.Current(); !ok {
			return ""
		}
		title = s.Title.Render("📖 Interpretation")
	}
	return s.Panel.Width(m.width - 2).Render(title + "\n" + m.viewport.View())
}

func (m Model) renderJournal() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("📔 Your Dream Journal") + "\n")

	st := m.state.Stats()
	if st.TotalDreams == 0 {
		b.WriteString(s.Muted.Render("The journal is empty."))
		return s.Active.Width(m.width - 2).Render(b.String())
	}

	summary := fmt.Sprintf("Total dreams: %d", st.TotalDreams)
	if st.MostCommonEmotion != nil {
		summary += fmt.Sprintf("   Most common feeling: %s", *st.MostCommonEmotion)
	}
	if st.MostCommonMode != nil {
		summary += fmt.Sprintf("   Most used approach: %s", *st.MostCommonMode)
	}
	b.WriteString(s.Subtitle.Render(summary) + "\n\n")

	for i, e := range m.recent() {
		line := m.journalLine(e)
		if i == m.journalCursor {
			b.WriteString(s.Selected.Render("› "+line) + "\n")
			continue
		}
		b.WriteString(s.Body.Render("  "+line) + "\n")
	}
	return s.Active.Width(m.width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) journalLine(e session.NumberedEntry) string {
	return fmt.Sprintf("🌙 Dream #%d - %s | %s | %s | %s",
		e.Number, e.Timestamp.Format("02/01/2006 15:04"), e.Emotion, e.Mode,
		strings.ReplaceAll(m.svc.Preview(e.Dream), "\n", " "))
}

func (m Model) renderNotice() string {
	s := m.styles
	switch m.noticeLevel {
	case noticeError:
		return s.Error.Render(m.notice)
	case noticeWarning:
		return s.Warning.Render(m.notice)
	case noticeSuccess:
		return s.Success.Render(m.notice)
	default:
		return s.Info.Render(m.notice)
	}
}

func (m Model) renderFooter() string {
	help := "tab: next field • ←/→: change selection • ctrl+s: interpret • ctrl+o: save to journal • ctrl+n: new • ctrl+d: download • ctrl+l: journal • pgup/pgdn: scroll • ctrl+c: quit"
	if m.view == JournalView {
		help = "↑/↓: select • enter: full interpretation • esc: back • ctrl+l: close journal • ctrl+c: quit"
	}
	return m.styles.RenderDivider(m.width-2) + "\n" +
		m.styles.Footer.Render(help) + "\n" +
		m.styles.Muted.Render("⚠️ Dream interpretation is subjective and meant for entertainment and self-reflection. It does not replace professional advice.")
}

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
