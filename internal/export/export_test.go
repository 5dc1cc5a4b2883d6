package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestText(t *testing.T) {
	dream := strings.Repeat("a", 150)
	interp := strings.Repeat("b", 250)

	got := Text(dream, interp, DefaultOptions())
	want := "Dream: " + strings.Repeat("a", 100) + "...\n\n" +
		"Interpretation: " + strings.Repeat("b", 200) + "...\n\n" +
		"Generated by Dream Interpreter AI\n"
	if got != want {
		t.Fatalf("Text mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestText_ShortInputsKeepEllipsis(t *testing.T) {
	got := Text("short", "tiny", DefaultOptions())
	want := "Dream: short...\n\nInterpretation: tiny...\n\nGenerated by Dream Interpreter AI\n"
	if got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 3, "hel"},
		{"hello", 5, "hello"},
		{"hello", 10, "hello"},
		{"hello", 0, "hello"},
		{"🔮🎭💡", 2, "🔮🎭"},
		{"mimpi terbang", 5, "mimpi"},
		{"", 4, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 5, 7, 0, time.UTC)
	if got := Filename(at); got != "dream_interpretation_20261017_090507.txt" {
		t.Fatalf("Filename = %q", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	a := New("dream", "meaning", DefaultOptions(), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	path, err := WriteFile(dir, a)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Base(path) != "dream_interpretation_20260102_030405.txt" {
		t.Fatalf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != a.Content {
		t.Fatalf("file content = %q", data)
	}
}
