package crawler

import "errors"

var (
	// ErrAuthFailure aborts the crawl when login fails or the session is
	// rejected mid-crawl. It wraps the underlying session or fetch error.
	ErrAuthFailure = errors.New("authentication failure")

	// ErrSink aborts the crawl when a completed record cannot be stored.
	ErrSink = errors.New("sink failure")

	// ErrInvalidRoot is returned when no id can be derived from the seed URL.
	ErrInvalidRoot = errors.New("invalid root url")

	// ErrInvalidTransition is returned for a node state change the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("invalid node state transition")
)
