package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperifyio/ogpreview/internal/engine"
)

const stubPage = `<html>
<head>
<meta property="og:title" content="App Test" />
<meta property="og:description" content="orchestration" />
<meta property="og:image" content="https://example.com/app.png" />
</head>
<body>x</body>
</html>
`

func newStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(stubPage))
	}))
}

func TestRun_Success(t *testing.T) {
	srv := newStub(t)
	defer srv.Close()

	a := New(Config{URL: srv.URL, Timeout: 2 * time.Second})
	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Title != "App Test" || res.Description != "orchestration" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRun_SurfacesEngineErrorKind(t *testing.T) {
	a := New(Config{URL: "ftp://example.com", Timeout: time.Second})
	_, err := a.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	var rerr *engine.Error
	if !errors.As(err, &rerr) || rerr.Kind != engine.KindUnsupportedScheme {
		t.Fatalf("expected UnsupportedScheme, got %v", err)
	}
}

func TestRun_CacheShortCircuitsNetwork(t *testing.T) {
	srv := newStub(t)
	dir := t.TempDir()
	cfg := Config{URL: srv.URL, Timeout: 2 * time.Second, CacheDir: dir}

	res1, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	// The server is gone; only the cache can satisfy the second run.
	srv.Close()
	res2, err := New(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("cached run: %v", err)
	}
	if res1 != res2 {
		t.Fatalf("cache returned different result: %+v vs %+v", res1, res2)
	}
}

func TestRun_WritesCard(t *testing.T) {
	srv := newStub(t)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "card.pdf")
	a := New(Config{URL: srv.URL, Timeout: 2 * time.Second, CardPath: out})
	if _, err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected card PDF at %s (err=%v)", out, err)
	}
}

func TestLoadFileConfig_FlagsTakePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ogpreview.yaml")
	content := "url: https://file.example.com\n" +
		"timeout: 7s\n" +
		"ua: file-agent\n" +
		"cache:\n" +
		"  dir: /tmp/file-cache\n" +
		"  maxAge: 24h\n" +
		"card:\n" +
		"  out: file-card.pdf\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Simulates a flag-set URL: the file must not override it.
	cfg := Config{URL: "https://flag.example.com"}
	if err := fc.Apply(&cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.URL != "https://flag.example.com" {
		t.Fatalf("flag value overridden: %q", cfg.URL)
	}
	if cfg.Timeout != 7*time.Second {
		t.Fatalf("timeout = %v, want 7s", cfg.Timeout)
	}
	if cfg.UserAgent != "file-agent" || cfg.CacheDir != "/tmp/file-cache" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.CacheMaxAge != 24*time.Hour || cfg.CardPath != "file-card.pdf" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadFileConfig_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var cfg Config
	if err := fc.Apply(&cfg); err == nil {
		t.Fatalf("expected error for unparsable duration")
	}
}
