// Package symbols loads the dream symbol catalog and matches it against dream text.
//
// The catalog is a CSV file with the columns symbol, meaning and contexts. The
// contexts column holds a JSON object mapping a context phrase to the meaning the
// symbol takes on when that phrase also appears in the dream. Entry order and
// context order follow the file, and matching reports results in that order.
package symbols

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrCatalogMissing is returned when the catalog file does not exist.
// Callers degrade to an empty catalog.
var ErrCatalogMissing = errors.New("symbol catalog not found")

// Required CSV columns.
const (
	columnSymbol   = "symbol"
	columnMeaning  = "meaning"
	columnContexts = "contexts"
)

// ContextMeaning is a context-specific reading of a symbol.
type ContextMeaning struct {
	Phrase  string `json:"phrase"`
	Meaning string `json:"meaning"`
}

// SymbolEntry is one row of the catalog.
type SymbolEntry struct {
	Symbol   string           `json:"symbol"`
	Meaning  string           `json:"meaning"`
	Contexts []ContextMeaning `json:"contexts,omitempty"`
}

// Catalog is an ordered, read-only set of symbol entries keyed by symbol name.
type Catalog struct {
	entries []SymbolEntry
	index   map[string]int
}

// NewCatalog builds a catalog from entries in the given order. Symbol names and
// context phrases are lower-cased. A repeated symbol replaces the content of the
// earlier entry but keeps its position.
func NewCatalog(entries ...SymbolEntry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		c.add(e)
	}
	return c
}

// Empty returns a catalog with no entries.
func Empty() *Catalog {
	return NewCatalog()
}

func (c *Catalog) add(e SymbolEntry) {
	e.Symbol = strings.ToLower(strings.TrimSpace(e.Symbol))
	if e.Symbol == "" {
		return
	}
	contexts := make([]ContextMeaning, 0, len(e.Contexts))
	for _, cm := range e.Contexts {
		phrase := strings.ToLower(strings.TrimSpace(cm.Phrase))
		if phrase == "" {
			continue
		}
		contexts = append(contexts, ContextMeaning{Phrase: phrase, Meaning: cm.Meaning})
	}
	e.Contexts = contexts

	if i, ok := c.index[e.Symbol]; ok {
		c.entries[i] = e
		return
	}
	c.index[e.Symbol] = len(c.entries)
	c.entries = append(c.entries, e)
}

// Len returns the number of symbols.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []SymbolEntry {
	if c == nil {
		return nil
	}
	out := make([]SymbolEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for a symbol name (case-insensitive).
func (c *Catalog) Lookup(symbol string) (SymbolEntry, bool) {
	if c == nil {
		return SymbolEntry{}, false
	}
	i, ok := c.index[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return SymbolEntry{}, false
	}
	return c.entries[i], true
}

// Load reads a catalog from a CSV file. A missing file yields ErrCatalogMissing.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, path)
		}
		return nil, fmt.Errorf("failed to open symbol catalog: %w", err)
	}
	defer f.Close()

	cat, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse symbol catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse reads a catalog from CSV. The header row must name the symbol, meaning
// and contexts columns; extra columns are ignored.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	for _, required := range []string{columnSymbol, columnMeaning, columnContexts} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	cat := Empty()
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		contexts, err := parseContexts(field(record, cols[columnContexts]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid contexts: %w", line, err)
		}
		cat.add(SymbolEntry{
			Symbol:   field(record, cols[columnSymbol]),
			Meaning:  strings.TrimSpace(field(record, cols[columnMeaning])),
			Contexts: contexts,
		})
	}
	return cat, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// parseContexts decodes a JSON object into phrase/meaning pairs, preserving key
// order. A blank cell means no contexts.
func parseContexts(raw string) ([]ContextMeaning, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var out []ContextMeaning
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key")
		}
		var meaning string
		if err := dec.Decode(&meaning); err != nil {
			return nil, fmt.Errorf("context %q: %w", key, err)
		}
		out = append(out, ContextMeaning{Phrase: key, Meaning: meaning})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
