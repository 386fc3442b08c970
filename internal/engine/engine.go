package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/ogpreview/internal/extract"
)

// headEndMarker is the early-stop signal: everything the extractor needs sits
// before it, so the body stream is abandoned as soon as it appears.
const headEndMarker = "</head>"

const readChunkSize = 4096

// defaultTimeout applies until the first Start call configures one.
const defaultTimeout = 10 * time.Second

// EventKind identifies one lifecycle notification.
type EventKind int

const (
	// EventStarted: URL validation passed and the request is under way.
	EventStarted EventKind = iota + 1
	// EventData carries the extraction result. At most one per run.
	EventData
	// EventEnded marks a successful run. Always follows EventData.
	EventEnded
	// EventError terminates a failed run. Never follows EventEnded.
	EventError
)

// Event is one lifecycle notification. Result is meaningful for EventData,
// Err for EventError.
type Event struct {
	Kind   EventKind
	Result extract.Result
	Err    *Error
}

// Engine fetches one page at a time, scans the body stream for the closing
// head marker, and reports Open Graph metadata through Events. A successful
// run emits started, data, ended in that order; a failed run emits started
// then error, or a bare error when URL validation fails before any network
// activity. Start and Restart supersede any in-flight run, which then emits
// nothing further.
type Engine struct {
	// HTTPClient overrides the transport. Nil means http.DefaultClient,
	// including its redirect policy.
	HTTPClient *http.Client
	// UserAgent is sent when non-empty.
	UserAgent string

	events chan Event

	mu      sync.Mutex
	url     string
	timeout time.Duration
	current *run
}

func New() *Engine {
	return &Engine{
		events:  make(chan Event, 8),
		timeout: defaultTimeout,
	}
}

// Events delivers the run lifecycle. The caller must drain it; emission
// blocks once the buffer fills.
func (e *Engine) Events() <-chan Event { return e.events }

// CurrentURL returns the URL most recently passed to Start or Restart,
// whether or not its run has completed.
func (e *Engine) CurrentURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}

// Start begins a run against rawURL. Validation is synchronous: an empty URL
// or one that does not begin with http yields a single error event and no
// network activity. A non-positive timeout keeps the previously configured
// one. Any prior in-flight run is cancelled before the new one begins.
func (e *Engine) Start(rawURL string, timeout time.Duration) {
	e.mu.Lock()
	e.url = rawURL
	if timeout > 0 {
		e.timeout = timeout
	}
	timeout = e.timeout
	prev := e.current
	e.current = nil
	e.mu.Unlock()

	// Cancel-then-start: the superseded run is claimed terminal first, so
	// its pending callbacks and its timer can no longer emit.
	if prev != nil {
		prev.supersede()
	}

	if rawURL == "" {
		e.events <- Event{Kind: EventError, Err: &Error{Kind: KindMissingURL}}
		return
	}
	if !strings.HasPrefix(rawURL, "http") {
		e.events <- Event{Kind: EventError, Err: &Error{Kind: KindUnsupportedScheme}}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		eng:    e,
		url:    rawURL,
		ctx:    ctx,
		cancel: cancel,
	}
	// Arm the timer before publishing the run so no reader ever sees a
	// half-initialized handle pair.
	r.timer = time.AfterFunc(timeout, r.onTimeout)

	e.mu.Lock()
	e.current = r
	e.mu.Unlock()

	e.events <- Event{Kind: EventStarted}
	go r.do()
}

// Restart replaces the target URL and begins a new run with the previously
// configured timeout.
func (e *Engine) Restart(rawURL string) {
	e.mu.Lock()
	timeout := e.timeout
	e.mu.Unlock()
	e.Start(rawURL, timeout)
}

// run owns one attempt's mutable state: the pending buffer and both
// cancellation handles. Handles are created together at run start and torn
// down together exactly once; a new run never touches an old run's handles.
type run struct {
	eng    *Engine
	url    string
	ctx    context.Context
	cancel context.CancelFunc
	timer  *time.Timer

	claimMu sync.Mutex
	done    bool
}

// claim marks the run terminal. The first caller wins and owns the terminal
// event; later callers get false and must stay silent.
func (r *run) claim() bool {
	r.claimMu.Lock()
	defer r.claimMu.Unlock()
	if r.done {
		return false
	}
	r.done = true
	return true
}

// supersede silences the run before a newer one takes over. The stopped
// timer raises no event even if it was about to fire.
func (r *run) supersede() {
	r.claim()
	r.timer.Stop()
	r.cancel()
}

// onTimeout fires when the deadline elapses first. It cancels the request so
// pending reads stop, then reports the timeout.
func (r *run) onTimeout() {
	if !r.claim() {
		return
	}
	r.cancel()
	log.Debug().Str("url", r.url).Msg("run timed out")
	r.eng.events <- Event{Kind: EventError, Err: &Error{Kind: KindTimeout}}
}

func (r *run) do() {
	defer r.cancel()

	res, err := r.fetch()
	if err != nil {
		if !r.claim() {
			// Lost to the timeout or to a newer run; the abort
			// artifact must not surface.
			return
		}
		r.timer.Stop()
		var rerr *Error
		if !errors.As(err, &rerr) {
			rerr = &Error{Kind: KindTransport, Cause: err}
		}
		r.eng.events <- Event{Kind: EventError, Err: rerr}
		return
	}
	if !r.claim() {
		return
	}
	r.timer.Stop()
	r.eng.events <- Event{Kind: EventData, Result: res}
	r.eng.events <- Event{Kind: EventEnded}
}

// fetch performs the request and streams the body up to the closing head
// marker. Errors that are not already *Error are transport failures.
func (r *run) fetch() (extract.Result, error) {
	req, err := http.NewRequestWithContext(r.ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return extract.Result{}, err
	}
	if r.eng.UserAgent != "" {
		req.Header.Set("User-Agent", r.eng.UserAgent)
	}

	client := r.eng.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return extract.Result{}, err
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode > 399 || !allowedContentType(ct) {
		// Drain so the connection can be reused, but extract nothing.
		_, _ = io.Copy(io.Discard, resp.Body)
		return extract.Result{}, &Error{
			Kind:        KindInvalidResponse,
			Status:      resp.StatusCode,
			ContentType: ct,
		}
	}

	body, err := charset.NewReader(resp.Body, ct)
	if err != nil {
		return extract.Result{}, err
	}
	buf, err := readHead(body)
	if err != nil {
		return extract.Result{}, err
	}
	log.Debug().Str("url", r.url).Int("bytes", len(buf)).Msg("head buffered")
	return extract.Tags(buf), nil
}

// readHead accumulates decoded body text chunk by chunk until the closing
// head marker appears, then truncates the buffer to end exactly at the
// marker. Returning early abandons the rest of the stream. A stream that
// ends without the marker yields the full buffer instead, so a page with no
// head section still terminates the run.
func readHead(body io.Reader) (string, error) {
	var pending []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := body.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			// Rescan only the tail: the marker may straddle the
			// chunk boundary.
			from := len(pending) - n - len(headEndMarker) + 1
			if from < 0 {
				from = 0
			}
			if i := bytes.Index(pending[from:], []byte(headEndMarker)); i >= 0 {
				end := from + i + len(headEndMarker)
				return string(pending[:end]), nil
			}
		}
		if err == io.EOF {
			return string(pending), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// allowedContentType accepts any html media type and exactly text/plain.
// Parameters such as charset are ignored for the comparison.
func allowedContentType(ct string) bool {
	if strings.TrimSpace(ct) == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(ct))
	}
	return strings.Contains(mt, "html") || mt == "text/plain"
}
