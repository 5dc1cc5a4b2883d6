package symbols

import (
	"fmt"
	"strings"
)

// MatchResult is one detected symbol. Context-specific matches are labelled
// "symbol (phrase)".
type MatchResult struct {
	Label   string `json:"label"`
	Meaning string `json:"meaning"`
}

// Match returns every symbol whose name, and every context phrase, occurs in text
// as a case-insensitive substring. Results follow catalog order; a symbol whose
// name and two context phrases all occur yields three results.
func Match(text string, catalog *Catalog) []MatchResult {
	results := []MatchResult{}
	if catalog == nil || strings.TrimSpace(text) == "" {
		return results
	}

	lower := strings.ToLower(text)
	for _, entry := range catalog.entries {
		if strings.Contains(lower, entry.Symbol) {
			results = append(results, MatchResult{Label: entry.Symbol, Meaning: entry.Meaning})
		}
		for _, cm := range entry.Contexts {
			if strings.Contains(lower, cm.Phrase) {
				results = append(results, MatchResult{
					Label:   fmt.Sprintf("%s (%s)", entry.Symbol, cm.Phrase),
					Meaning: cm.Meaning,
				})
			}
		}
	}
	return results
}

// Limit truncates results for display. n <= 0 means no limit.
func Limit(results []MatchResult, n int) []MatchResult {
	if n <= 0 || len(results) <= n {
		return results
	}
	return results[:n]
}
