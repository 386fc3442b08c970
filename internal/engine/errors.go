package engine

import "fmt"

// Kind classifies why a run failed.
type Kind int

const (
	// KindMissingURL: Start was called with an empty URL.
	KindMissingURL Kind = iota + 1
	// KindUnsupportedScheme: the URL does not begin with http or https.
	KindUnsupportedScheme
	// KindTimeout: the configured deadline elapsed before the run finished.
	KindTimeout
	// KindTransport: the request failed below the HTTP layer (DNS,
	// connection refused, broken stream). Cause carries the failure.
	KindTransport
	// KindInvalidResponse: the response status or content type is outside
	// what the engine accepts. Status and ContentType carry what was seen.
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindMissingURL:
		return "missing url"
	case KindUnsupportedScheme:
		return "unsupported scheme"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport error"
	case KindInvalidResponse:
		return "invalid response"
	}
	return "unknown"
}

// Error is the payload of an error event. Errors are local to one run; the
// engine starts the next run with fresh state regardless.
type Error struct {
	Kind Kind

	// Observed status and content type, set for KindInvalidResponse.
	Status      int
	ContentType string

	// Underlying failure, set for KindTransport.
	Cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("transport error: %v", e.Cause)
	case KindInvalidResponse:
		return fmt.Sprintf("invalid response: status %d, content-type %q", e.Status, e.ContentType)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Cause }
