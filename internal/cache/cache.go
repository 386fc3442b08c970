package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/ogpreview/internal/extract"
)

// Entry is one cached preview on disk.
type Entry struct {
	URL     string         `json:"url"`
	Result  extract.Result `json:"result"`
	SavedAt time.Time      `json:"saved_at"`
}

// Cache stores extraction results on disk as <key>.json where key is
// sha256(url). It is a simple, deterministic cache; eviction is limited to
// PurgeByAge and the caller's freshness check on Load.
type Cache struct {
	Dir string
}

func (c *Cache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *Cache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *Cache) path(key string) string { return filepath.Join(c.Dir, key+".json") }

// Load returns the cached result for url when an entry exists and is younger
// than maxAge. maxAge <= 0 accepts any age.
func (c *Cache) Load(url string, maxAge time.Duration) (extract.Result, bool) {
	if err := c.ensureDir(); err != nil {
		return extract.Result{}, false
	}
	f, err := os.Open(c.path(c.key(url)))
	if err != nil {
		return extract.Result{}, false
	}
	defer f.Close()
	var e Entry
	if err := json.NewDecoder(f).Decode(&e); err != nil {
		return extract.Result{}, false
	}
	if maxAge > 0 && time.Since(e.SavedAt) > maxAge {
		return extract.Result{}, false
	}
	return e.Result, true
}

// Save writes a new entry for url, replacing any previous one. The write
// goes through a temp file and rename so readers never see a torn entry.
func (c *Cache) Save(url string, res extract.Result) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	e := Entry{URL: url, Result: res, SavedAt: time.Now().UTC()}
	path := c.path(c.key(url))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if err := json.NewEncoder(f).Encode(&e); err != nil {
		f.Close()
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// PurgeByAge removes entries older than maxAge and reports how many were
// deleted. maxAge <= 0 purges nothing.
func (c *Cache) PurgeByAge(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	if err := c.ensureDir(); err != nil {
		return 0, err
	}
	names, err := os.ReadDir(c.Dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, d := range names {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(c.Dir, d.Name())) == nil {
				removed++
			}
		}
	}
	return removed, nil
}
