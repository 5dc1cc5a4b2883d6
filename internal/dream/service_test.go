package dream

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dreamer/internal/config"
	"dreamer/internal/interpret"
	"dreamer/internal/perception"
	"dreamer/internal/session"
	"dreamer/internal/symbols"
	"dreamer/internal/usage"
)

const testCatalog = `symbol,meaning,contexts
terbang,freedom,"{""jatuh"": ""loss of control""}"
water,emotions,
house,the self,
teeth,anxiety,
`

type countingClient struct {
	calls int
	text  string
	err   error
}

func (c *countingClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return c.text, c.err
}

type fixture struct {
	svc    *Service
	client *countingClient
	clock  time.Time
	cfg    *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "symbols.csv")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Catalog.Path = path

	f := &fixture{
		client: &countingClient{text: "## 🔮 Main Interpretation\nYou long for freedom."},
		clock:  time.Date(2026, 10, 17, 21, 0, 0, 0, time.UTC),
		cfg:    cfg,
	}
	factory := func(ctx context.Context, apiKey string) (perception.LLMClient, error) {
		return f.client, nil
	}
	now := func() time.Time { return f.clock }
	req := interpret.NewRequester(factory, interpret.WithClock(now))
	f.svc = NewService(cfg, req, WithClock(now), WithCatalogCache(symbols.NewCache()))
	return f
}

func TestSubmit_WhitespaceIsMissingInput(t *testing.T) {
	f := newFixture(t)
	st := session.NewState(0)

	_, err := f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "   "}, "key", DefaultPreferences())
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
	if f.client.calls != 0 {
		t.Fatalf("service called %d times", f.client.calls)
	}
	if st.TotalInterpretations() != 0 || st.APICallsToday() != 0 || !st.LastAPICall().IsZero() {
		t.Fatal("state changed on missing input")
	}
	if _, ok := st.Current(); ok {
		t.Fatal("missing input must not set a current entry")
	}
}

func TestSubmit_OKRecordsAndJournals(t *testing.T) {
	f := newFixture(t)
	st := session.NewState(0)
	req := interpret.Request{DreamText: "saya bermimpi terbang", Emotion: interpret.EmotionHappy, Mode: interpret.ModeJungian}

	entry, err := f.svc.Submit(context.Background(), st, "s", req, "key", DefaultPreferences())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if entry.Kind != interpret.KindOK || entry.Interpretation != f.client.text {
		t.Fatalf("entry = %+v", entry)
	}
	if st.TotalInterpretations() != 1 || st.JournalLen() != 1 {
		t.Fatalf("counters=%d journal=%d", st.TotalInterpretations(), st.JournalLen())
	}
	if !st.LastAPICall().Equal(f.clock) {
		t.Fatalf("LastAPICall = %v", st.LastAPICall())
	}
}

func TestSubmit_AutoJournalOff(t *testing.T) {
	f := newFixture(t)
	st := session.NewState(0)
	prefs := DefaultPreferences()
	prefs.AutoJournal = false

	if _, err := f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "d"}, "key", prefs); err != nil {
		t.Fatal(err)
	}
	if st.TotalInterpretations() != 1 || st.JournalLen() != 0 {
		t.Fatalf("counters=%d journal=%d", st.TotalInterpretations(), st.JournalLen())
	}

	added, err := f.svc.SaveCurrent(st)
	if err != nil || !added {
		t.Fatalf("SaveCurrent = %v, %v", added, err)
	}
	added, err = f.svc.SaveCurrent(st)
	if err != nil || added {
		t.Fatalf("second SaveCurrent = %v, %v", added, err)
	}
	if st.JournalLen() != 1 {
		t.Fatalf("journal = %d, want 1", st.JournalLen())
	}
}

func TestSubmit_AdvisoriesDoNotCount(t *testing.T) {
	f := newFixture(t)
	st := session.NewState(0)

	entry, err := f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "d"}, "", DefaultPreferences())
	if err != nil {
		t.Fatal(err)
	}
	if entry.Kind != interpret.KindMissingCredential {
		t.Fatalf("Kind = %v", entry.Kind)
	}
	if st.TotalInterpretations() != 0 || st.JournalLen() != 0 {
		t.Fatal("missing credential moved counters or journal")
	}
	if cur, ok := st.Current(); !ok || !strings.HasPrefix(cur.Display(), "⚠️") {
		t.Fatalf("Current = %+v", cur)
	}

	if _, err := f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "d"}, "key", DefaultPreferences()); err != nil {
		t.Fatal(err)
	}
	f.clock = f.clock.Add(2 * time.Second)
	entry, _ = f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "d"}, "key", DefaultPreferences())
	if entry.Kind != interpret.KindRateLimited {
		t.Fatalf("Kind = %v, want rate limited", entry.Kind)
	}
	if st.TotalInterpretations() != 1 || f.client.calls != 1 {
		t.Fatalf("counters=%d calls=%d, want 1/1", st.TotalInterpretations(), f.client.calls)
	}
}

func TestSubmit_UpstreamFailureCounts(t *testing.T) {
	f := newFixture(t)
	f.client.err = errors.New("network down")
	st := session.NewState(0)

	entry, err := f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "d"}, "key", DefaultPreferences())
	if err != nil {
		t.Fatal(err)
	}
	if entry.Kind != interpret.KindUpstreamFailure {
		t.Fatalf("Kind = %v", entry.Kind)
	}
	if st.TotalInterpretations() != 1 || st.APICallsToday() != 1 {
		t.Fatal("upstream failure must count")
	}
}

func TestSubmit_FeedsUsageTracker(t *testing.T) {
	f := newFixture(t)
	tracker := usage.NewTracker()
	WithTracker(tracker)(f.svc)
	f.client.text = "ok"

	// The plain client reports no usage; wrap it the way the Gemini factory does.
	traced := perception.NewTracingLLMClient(f.client)
	f.svc.requester = interpret.NewRequester(func(ctx context.Context, apiKey string) (perception.LLMClient, error) {
		return traced, nil
	})

	st := session.NewState(0)
	if _, err := f.svc.Submit(context.Background(), st, "sess-9", interpret.Request{DreamText: "d", Mode: interpret.ModeFreudian}, "key", DefaultPreferences()); err != nil {
		t.Fatal(err)
	}
	stats := tracker.Stats()
	if stats.BySession["sess-9"].Calls != 1 || stats.ByMode["Freudian"].Calls != 1 {
		t.Fatalf("tracker stats = %+v", stats)
	}
}

func TestRunThenApply(t *testing.T) {
	f := newFixture(t)
	st := session.NewState(0)

	o, err := f.svc.Run(context.Background(), "s", st.LastAPICall(), interpret.Request{DreamText: "d"}, "key", DefaultPreferences())
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalInterpretations() != 0 || !st.LastAPICall().IsZero() {
		t.Fatal("Run must not touch the session")
	}
	if !o.CalledAt.Equal(f.clock) {
		t.Fatalf("CalledAt = %v", o.CalledAt)
	}

	f.svc.Apply(st, o, DefaultPreferences())
	if st.TotalInterpretations() != 1 || !st.LastAPICall().Equal(f.clock) {
		t.Fatal("Apply did not record the outcome")
	}
}

func TestDetectSymbols(t *testing.T) {
	f := newFixture(t)

	got := f.svc.DetectSymbols("saya bermimpi terbang lalu jatuh", DefaultPreferences())
	if len(got) != 2 || got[0].Label != "terbang" || got[0].Meaning != "freedom" ||
		got[1].Label != "terbang (jatuh)" || got[1].Meaning != "loss of control" {
		t.Fatalf("DetectSymbols = %+v", got)
	}

	got = f.svc.DetectSymbols("terbang over water into a house, losing teeth", DefaultPreferences())
	if len(got) != 3 {
		t.Fatalf("DetectSymbols returned %d results, want the limit of 3", len(got))
	}
	if all := f.svc.MatchAll("terbang over water into a house, losing teeth"); len(all) != 4 {
		t.Fatalf("MatchAll returned %d results, want 4", len(all))
	}

	prefs := DefaultPreferences()
	prefs.AutoSymbols = false
	if got := f.svc.DetectSymbols("terbang", prefs); len(got) != 0 {
		t.Fatalf("auto symbols off returned %+v", got)
	}
}

func TestCatalogMissingDegrades(t *testing.T) {
	f := newFixture(t)
	f.svc.catalogPath = filepath.Join(t.TempDir(), "nope.csv")

	cat, err := f.svc.Catalog()
	if !errors.Is(err, symbols.ErrCatalogMissing) {
		t.Fatalf("err = %v, want ErrCatalogMissing", err)
	}
	if cat.Len() != 0 {
		t.Fatal("missing catalog should be empty")
	}
	if got := f.svc.DetectSymbols("terbang", DefaultPreferences()); len(got) != 0 {
		t.Fatalf("DetectSymbols = %+v", got)
	}
}

func TestExportAndStartNew(t *testing.T) {
	f := newFixture(t)
	st := session.NewState(0)

	if _, err := f.svc.Export(st); !errors.Is(err, session.ErrNoCurrent) {
		t.Fatalf("Export without current err = %v", err)
	}
	if _, err := f.svc.SaveCurrent(st); !errors.Is(err, session.ErrNoCurrent) {
		t.Fatalf("SaveCurrent without current err = %v", err)
	}

	if _, err := f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "terbang"}, "key", DefaultPreferences()); err != nil {
		t.Fatal(err)
	}
	a, err := f.svc.Export(st)
	if err != nil {
		t.Fatal(err)
	}
	if a.Filename != "dream_interpretation_20261017_210000.txt" {
		t.Fatalf("Filename = %s", a.Filename)
	}
	if !strings.HasPrefix(a.Content, "Dream: terbang...\n\nInterpretation: ## 🔮") {
		t.Fatalf("Content = %q", a.Content)
	}

	f.svc.StartNew(st)
	if _, ok := st.Current(); ok {
		t.Fatal("StartNew left a current entry")
	}
	if st.JournalLen() != 1 {
		t.Fatal("StartNew must not touch the journal")
	}
}

func TestJournalViewAndExpand(t *testing.T) {
	f := newFixture(t)
	st := session.NewState(0)
	for i := 0; i < 7; i++ {
		f.clock = f.clock.Add(time.Minute)
		if _, err := f.svc.Submit(context.Background(), st, "s", interpret.Request{DreamText: "dream"}, "key", DefaultPreferences()); err != nil {
			t.Fatal(err)
		}
	}

	view := f.svc.Journal(st)
	if view.Stats.TotalDreams != 7 || len(view.Entries) != 5 || view.Entries[0].Number != 7 {
		t.Fatalf("Journal view = %+v", view)
	}

	e, err := f.svc.ExpandEntry(st, 1)
	if err != nil || e.Interpretation != f.client.text {
		t.Fatalf("ExpandEntry = %+v, %v", e, err)
	}
	if _, err := f.svc.ExpandEntry(st, 8); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("ExpandEntry(8) err = %v", err)
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("x", 250)
	if got := f.svc.Preview(long); got != strings.Repeat("x", 200)+"..." {
		t.Fatalf("Preview(long) length = %d", len(got))
	}
	if got := f.svc.Preview("short"); got != "short" {
		t.Fatalf("Preview(short) = %q", got)
	}
}
