package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperifyio/ogpreview/internal/extract"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	c := &Cache{Dir: t.TempDir()}
	want := extract.Result{Title: "T", Description: "D", Image: "https://example.com/i.png"}
	if err := c.Save("https://example.com/page", want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok := c.Load("https://example.com/page", 0)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLoad_MissesUnknownURL(t *testing.T) {
	c := &Cache{Dir: t.TempDir()}
	if _, ok := c.Load("https://example.com/never-saved", 0); ok {
		t.Fatalf("expected miss")
	}
}

func TestLoad_RespectsMaxAge(t *testing.T) {
	c := &Cache{Dir: t.TempDir()}
	if err := c.Save("https://example.com/old", extract.Result{Title: "old"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Load("https://example.com/old", time.Millisecond); ok {
		t.Fatalf("expected stale entry to be rejected")
	}
	if _, ok := c.Load("https://example.com/old", time.Hour); !ok {
		t.Fatalf("expected fresh-enough entry to be served")
	}
}

func TestSave_ReplacesPreviousEntry(t *testing.T) {
	c := &Cache{Dir: t.TempDir()}
	url := "https://example.com/page"
	if err := c.Save(url, extract.Result{Title: "first"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Save(url, extract.Result{Title: "second"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok := c.Load(url, 0)
	if !ok || got.Title != "second" {
		t.Fatalf("expected replacement, got %+v (ok=%v)", got, ok)
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	c := &Cache{Dir: dir}
	if err := c.Save("https://example.com/a", extract.Result{Title: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Age the entry on disk.
	old := time.Now().Add(-48 * time.Hour)
	path := filepath.Join(dir, c.key("https://example.com/a")+".json")
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	n, err := c.PurgeByAge(24 * time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if _, ok := c.Load("https://example.com/a", 0); ok {
		t.Fatalf("purged entry still loads")
	}
}
