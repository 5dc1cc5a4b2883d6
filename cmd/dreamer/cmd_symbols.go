package main

import (
	"fmt"
	"strings"

	"dreamer/internal/symbols"

	"github.com/spf13/cobra"
)

var (
	symbolsLimit int
	symbolsList  bool
)

// symbolsCmd detects catalog symbols without calling the model
var symbolsCmd = &cobra.Command{
	Use:   "symbols [dream]",
	Short: "Detect known dream symbols in a text",
	Long: `Matches a dream text against the symbol catalog and prints each hit.
No API key is needed.

Example:
  dreamer symbols "I was flying and then falling"
  dreamer symbols --list`,
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().IntVar(&symbolsLimit, "limit", 0, "Maximum symbols to print (0 uses the display limit)")
	symbolsCmd.Flags().BoolVar(&symbolsList, "list", false, "List the whole catalog")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	svc := newService(cfg, nil)
	cat, err := svc.Catalog()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️ %v; symbol detection is off\n", err)
	}

	out := cmd.OutOrStdout()
	if symbolsList {
		for _, e := range cat.Entries() {
			fmt.Fprintf(out, "%s: %s\n", e.Symbol, e.Meaning)
			for _, c := range e.Contexts {
				fmt.Fprintf(out, "  + %s: %s\n", c.Phrase, c.Meaning)
			}
		}
		return nil
	}

	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("give a dream text or --list")
	}
	limit := symbolsLimit
	if limit <= 0 {
		limit = svc.Display().SymbolLimit
	}
	found := symbols.Limit(svc.MatchAll(text), limit)
	if len(found) == 0 {
		fmt.Fprintln(out, "No known symbols found.")
		return nil
	}
	for _, m := range found {
		fmt.Fprintf(out, "🎭 %s: %s\n", m.Label, m.Meaning)
	}
	return nil
}
