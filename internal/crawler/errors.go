package crawler

import (
	"errors"
	"fmt"
)

// FetchError reports a failed network request. Either StatusCode is set
// (non-2xx response) or Cause is (transport failure, timeout).
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// IsTransport reports whether the request failed before a response arrived
func (e *FetchError) IsTransport() bool {
	return e.Cause != nil
}

// ErrUnsupportedContent is wrapped by ProcessError for non-HTML responses
var ErrUnsupportedContent = errors.New("unsupported content type")

// ProcessError reports a page that was fetched but could not be parsed or normalized
type ProcessError struct {
	URL   string
	Stage string // "content-type", "links", "parse"
	Cause error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %s (%s): %v", e.URL, e.Stage, e.Cause)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}
