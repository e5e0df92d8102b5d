package crawl

import (
	"errors"
	"fmt"
)

// ErrNoObservationTable signals that an observation page carried no hourly
// table. During the backward historical walk this is the end-of-dataset
// sentinel; everywhere else it is a fatal structural failure.
var ErrNoObservationTable = errors.New("observation table not found")

// FetchError reports a transport-level failure: a non-200 response or a
// connection error while retrieving a remote page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth retrying. Non-200 responses
// carry a definitive answer from the server and are never retried.
func (e *FetchError) Transient() bool { return e.StatusCode == 0 }

// ParseError reports malformed or unexpected markup on a remote page.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}
