package config

import "fmt"

// DisplayConfig holds presentation limits shared by the TUI and the API.
type DisplayConfig struct {
	SymbolLimit               int `yaml:"symbol_limit"`                // detected symbols shown
	JournalLimit              int `yaml:"journal_limit"`               // recent journal entries shown
	PreviewChars              int `yaml:"preview_chars"`               // dream preview in journal list
	ExportDreamChars          int `yaml:"export_dream_chars"`          // dream excerpt in download
	ExportInterpretationChars int `yaml:"export_interpretation_chars"` // interpretation excerpt in download
}

// DefaultDisplayConfig returns the default presentation limits.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		SymbolLimit:               3,
		JournalLimit:              5,
		PreviewChars:              200,
		ExportDreamChars:          100,
		ExportInterpretationChars: 200,
	}
}

// Validate rejects negative limits. Zero disables a limit.
func (d DisplayConfig) Validate() error {
	fields := map[string]int{
		"display.symbol_limit":                d.SymbolLimit,
		"display.journal_limit":               d.JournalLimit,
		"display.preview_chars":               d.PreviewChars,
		"display.export_dream_chars":          d.ExportDreamChars,
		"display.export_interpretation_chars": d.ExportInterpretationChars,
	}
	for name, v := range fields {
		if v < 0 {
			return fmt.Errorf("%s must not be negative (got %d)", name, v)
		}
	}
	return nil
}
