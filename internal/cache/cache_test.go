package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/abelbrown/zeitgeist/internal/search"
)

func testResults(n int) []search.Result {
	results := make([]search.Result, n)
	for i := range results {
		results[i] = search.Result{
			ID:       fmt.Sprintf("id-%d", i),
			Text:     fmt.Sprintf("snippet %d", i),
			Source:   "example.com",
			RawScore: 0.9,
		}
	}
	return results
}

func openTest(t *testing.T, opts Options) *Cache {
	t.Helper()
	c, err := Open(opts)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	c := openTest(t, Options{Enabled: true, TTL: time.Hour})

	c.Put("go generics", testResults(3))
	got, hit := c.Get("go generics")
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(got) != 3 {
		t.Errorf("expected 3 results, got %d", len(got))
	}
}

func TestMissOnAbsentKey(t *testing.T) {
	c := openTest(t, Options{Enabled: true, TTL: time.Hour})
	if _, hit := c.Get("never stored"); hit {
		t.Error("expected miss for absent key")
	}
}

func TestExpiryTreatedAsMiss(t *testing.T) {
	c := openTest(t, Options{Enabled: true, TTL: time.Hour})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("stale topic", testResults(2))

	now = now.Add(61 * time.Minute)
	if _, hit := c.Get("stale topic"); hit {
		t.Fatal("expired entry should be a miss")
	}
	// Lazy eviction: the expired entry is gone after the lookup.
	if c.Len() != 0 {
		t.Errorf("expected 0 entries after lazy eviction, got %d", c.Len())
	}
}

func TestPutOverwritesAndRefreshes(t *testing.T) {
	c := openTest(t, Options{Enabled: true, TTL: time.Hour})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("topic", testResults(1))
	now = now.Add(50 * time.Minute)
	c.Put("topic", testResults(4))

	now = now.Add(30 * time.Minute)
	// 80 minutes after the first put but only 30 after the overwrite.
	got, hit := c.Get("topic")
	if !hit {
		t.Fatal("overwrite should refresh created_at")
	}
	if len(got) != 4 {
		t.Errorf("expected overwritten results, got %d", len(got))
	}
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	c := openTest(t, Options{Enabled: false, TTL: time.Hour})

	c.Put("topic", testResults(2))
	if _, hit := c.Get("topic"); hit {
		t.Error("disabled cache must always miss")
	}
	if c.Len() != 0 {
		t.Error("disabled cache must not store entries")
	}
}

func TestLRUEviction(t *testing.T) {
	c := openTest(t, Options{Enabled: true, TTL: time.Hour, MaxEntries: 2})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("a", testResults(1))
	now = now.Add(time.Second)
	c.Put("b", testResults(1))
	now = now.Add(time.Second)

	// Touch "a" so "b" becomes the LRU entry.
	c.Get("a")
	now = now.Add(time.Second)

	c.Put("c", testResults(1))

	if _, hit := c.Get("b"); hit {
		t.Error("LRU entry should have been evicted")
	}
	if _, hit := c.Get("a"); !hit {
		t.Error("recently used entry should survive")
	}
	if _, hit := c.Get("c"); !hit {
		t.Error("new entry should be present")
	}
}

func TestCallerCannotMutateCachedResults(t *testing.T) {
	c := openTest(t, Options{Enabled: true, TTL: time.Hour})

	c.Put("topic", testResults(1))
	got, _ := c.Get("topic")
	got[0].Text = "mutated"

	again, _ := c.Get("topic")
	if again[0].Text == "mutated" {
		t.Error("cache handed out its internal slice")
	}
}

func TestMirrorSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	c1, err := Open(Options{Enabled: true, TTL: time.Hour, Directory: dir})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	c1.Put("persistent topic", testResults(3))
	if err := c1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	c2, err := Open(Options{Enabled: true, TTL: time.Hour, Directory: dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer c2.Close()

	got, hit := c2.Get("persistent topic")
	if !hit {
		t.Fatal("expected warm entry after restart")
	}
	if len(got) != 3 {
		t.Errorf("expected 3 results, got %d", len(got))
	}
}

func TestMirrorSkipsExpiredOnLoad(t *testing.T) {
	dir := t.TempDir()

	c1, err := Open(Options{Enabled: true, TTL: time.Nanosecond, Directory: dir})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	c1.Put("ephemeral", testResults(1))
	c1.Close()

	time.Sleep(10 * time.Millisecond)

	c2, err := Open(Options{Enabled: true, TTL: time.Nanosecond, Directory: dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer c2.Close()

	if _, hit := c2.Get("ephemeral"); hit {
		t.Error("expired mirror entry should not load")
	}
}
