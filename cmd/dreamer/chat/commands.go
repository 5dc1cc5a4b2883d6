package chat

import (
	"context"
	"time"

	"dreamer/internal/dream"
	"dreamer/internal/export"
	"dreamer/internal/interpret"
	"dreamer/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// runInterpretation performs the service call off the update loop. The
// outcome is applied to the session when interpretationMsg arrives.
func runInterpretation(svc *dream.Service, sessionID string, lastAPICall time.Time, req interpret.Request, apiKey string, prefs dream.Preferences) tea.Cmd {
	return func() tea.Msg {
		o, err := svc.Run(context.Background(), sessionID, lastAPICall, req, apiKey, prefs)
		logging.Get(logging.CategoryUI).Debug("interpretation finished: kind=%s err=%v", o.Result.Kind, err)
		return interpretationMsg{outcome: o, prefs: prefs, err: err}
	}
}

func writeExport(dir string, a export.Artifact) tea.Cmd {
	return func() tea.Msg {
		path, err := export.WriteFile(dir, a)
		return exportedMsg{path: path, err: err}
	}
}
