package main

import (
	"fmt"

	"dreamer/cmd/dreamer/chat"
	"dreamer/internal/logging"
	"dreamer/internal/usage"

	tea "github.com/charmbracelet/bubbletea"
)

// runInteractive starts the terminal UI for one session.
func runInteractive() error {
	svc := newService(cfg, usage.NewTracker())
	m := chat.InitialModel(chat.Config{
		Service:    svc,
		APIKey:     apiKey,
		ExportDir:  cfg.Export.Dir,
		DailyQuota: cfg.LLM.DailyQuota,
	})

	logging.UI("starting interactive interface")
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("interactive interface failed: %w", err)
	}
	return nil
}
