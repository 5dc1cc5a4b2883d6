package symbols

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// =============================================================================
// LOADER TESTS
// =============================================================================

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dream_symbols.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoad_PreservesFileOrder(t *testing.T) {
	path := writeCatalog(t, `symbol,meaning,contexts
Water,emotions,"{""deep"": ""hidden feelings"", ""clear"": ""calm""}"
flying,freedom,"{}"
snake,transformation,
`)

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []SymbolEntry{
		{Symbol: "water", Meaning: "emotions", Contexts: []ContextMeaning{
			{Phrase: "deep", Meaning: "hidden feelings"},
			{Phrase: "clear", Meaning: "calm"},
		}},
		{Symbol: "flying", Meaning: "freedom", Contexts: []ContextMeaning{}},
		{Symbol: "snake", Meaning: "transformation", Contexts: []ContextMeaning{}},
	}
	if diff := cmp.Diff(want, cat.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrCatalogMissing) {
		t.Fatalf("expected ErrCatalogMissing, got %v", err)
	}
}

func TestLoad_ShippedCatalog(t *testing.T) {
	cat, err := Load(filepath.Join("..", "..", "data", "dream_symbols.csv"))
	if err != nil {
		t.Fatalf("Load shipped catalog: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatal("shipped catalog is empty")
	}
	entry, ok := cat.Lookup("terbang")
	if !ok {
		t.Fatal("expected terbang in shipped catalog")
	}
	if len(entry.Contexts) == 0 || entry.Contexts[0].Phrase != "jatuh" {
		t.Errorf("terbang contexts = %+v", entry.Contexts)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing column", "symbol,meaning\nwater,emotions\n", `missing column "contexts"`},
		{"contexts not object", "symbol,meaning,contexts\nwater,emotions,[1]\n", "line 2"},
		{"contexts bad json", "symbol,meaning,contexts\nwater,emotions,{bad\n", "invalid contexts"},
		{"non string meaning", "symbol,meaning,contexts\nwater,emotions,\"{\"\"deep\"\": 3}\"\n", `context "deep"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	cat, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cat.Len() != 0 {
		t.Errorf("Len = %d, want 0", cat.Len())
	}
}

func TestParse_ColumnOrderAndBOM(t *testing.T) {
	cat, err := Parse(strings.NewReader("\ufeffcontexts,symbol,meaning,notes\n\"{\"\"night\"\": \"\"fear\"\"}\",Moon,intuition,ignored\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	entry, ok := cat.Lookup("MOON")
	if !ok {
		t.Fatal("expected moon entry")
	}
	if entry.Meaning != "intuition" || len(entry.Contexts) != 1 || entry.Contexts[0].Meaning != "fear" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestNewCatalog_DuplicateKeepsPosition(t *testing.T) {
	cat := NewCatalog(
		SymbolEntry{Symbol: "fire", Meaning: "first"},
		SymbolEntry{Symbol: "door", Meaning: "door"},
		SymbolEntry{Symbol: "FIRE", Meaning: "second"},
	)

	entries := cat.Entries()
	if len(entries) != 2 {
		t.Fatalf("Len = %d, want 2", len(entries))
	}
	if entries[0].Symbol != "fire" || entries[0].Meaning != "second" {
		t.Errorf("entries[0] = %+v, want fire/second", entries[0])
	}
}

func TestCatalog_NilSafe(t *testing.T) {
	var cat *Catalog
	if cat.Len() != 0 {
		t.Error("nil catalog Len should be 0")
	}
	if _, ok := cat.Lookup("x"); ok {
		t.Error("nil catalog Lookup should miss")
	}
	if cat.Entries() != nil {
		t.Error("nil catalog Entries should be nil")
	}
}
