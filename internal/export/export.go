// Package export renders the shareable plain-text summary of an
// interpretation.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options sets the excerpt lengths, in characters.
type Options struct {
	DreamChars          int
	InterpretationChars int
}

// DefaultOptions returns the standard excerpt lengths.
func DefaultOptions() Options {
	return Options{DreamChars: 100, InterpretationChars: 200}
}

// Artifact is a ready-to-save download.
type Artifact struct {
	Filename string
	Content  string
}

// Text builds the export body. Both excerpts are always followed by "...".
func Text(dream, interpretation string, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dream: %s...\n\n", Truncate(dream, opts.DreamChars))
	fmt.Fprintf(&b, "Interpretation: %s...\n\n", Truncate(interpretation, opts.InterpretationChars))
	b.WriteString("Generated by Dream Interpreter AI\n")
	return b.String()
}

// Filename returns the download name for an export created at t.
func Filename(t time.Time) string {
	return "dream_interpretation_" + t.Format("20060102_150405") + ".txt"
}

// New builds an artifact for an export created at t.
func New(dream, interpretation string, opts Options, t time.Time) Artifact {
	return Artifact{Filename: Filename(t), Content: Text(dream, interpretation, opts)}
}

// Truncate returns at most n runes of s. n <= 0 returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// WriteFile saves the artifact under dir and returns the full path.
func WriteFile(dir string, a Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, []byte(a.Content), 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
