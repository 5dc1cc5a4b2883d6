package symbols

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCache_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	cache := newCacheWithLoader(func(path string) (*Catalog, error) {
		calls.Add(1)
		return NewCatalog(SymbolEntry{Symbol: "moon", Meaning: "intuition"}), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cat, err := cache.Get("symbols.csv")
			if err != nil || cat.Len() != 1 {
				t.Errorf("Get: cat=%v err=%v", cat, err)
			}
		}()
	}
	wg.Wait()

	if _, err := cache.Get("symbols.csv"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestCache_MissingFileDegradesToEmpty(t *testing.T) {
	cache := NewCache()
	path := filepath.Join(t.TempDir(), "missing.csv")

	for i := 0; i < 2; i++ {
		cat, err := cache.Get(path)
		if !errors.Is(err, ErrCatalogMissing) {
			t.Fatalf("call %d: expected ErrCatalogMissing, got %v", i, err)
		}
		if cat == nil || cat.Len() != 0 {
			t.Fatalf("call %d: expected empty catalog, got %v", i, cat)
		}
		if got := Match("anything", cat); len(got) != 0 {
			t.Errorf("call %d: expected no matches, got %+v", i, got)
		}
	}
}

func TestCache_SeparatePaths(t *testing.T) {
	cache := newCacheWithLoader(func(path string) (*Catalog, error) {
		if path == "bad" {
			return nil, fmt.Errorf("boom")
		}
		return NewCatalog(SymbolEntry{Symbol: path}), nil
	})

	if cat, err := cache.Get("a"); err != nil || cat.Len() != 1 {
		t.Errorf("a: cat=%v err=%v", cat, err)
	}
	if cat, err := cache.Get("bad"); err == nil || cat.Len() != 0 {
		t.Errorf("bad: cat=%v err=%v", cat, err)
	}
}
