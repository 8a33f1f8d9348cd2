package extract

import "errors"

var (
	// ErrMalformedPage is returned when a structurally required element is
	// missing or unreadable. The node cannot be recorded and its children
	// cannot be discovered.
	ErrMalformedPage = errors.New("malformed page")

	// ErrMissingElement is wrapped together with ErrMalformedPage and names
	// the element that was not found.
	ErrMissingElement = errors.New("missing required element")
)
