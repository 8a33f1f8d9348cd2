package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrNoRoot is returned when no root URL is configured.
	ErrNoRoot = errors.New("no root specified: provide an area or route URL")

	// ErrInvalidRoot is returned when the root URL is not absolute.
	ErrInvalidRoot = errors.New("invalid root: must be an absolute http(s) URL")

	// ErrInvalidConcurrency is returned when the concurrency cap is not positive.
	// A cap of zero would never let a fetch start.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRate is returned when the request rate is not positive.
	ErrInvalidRate = errors.New("invalid rate: requests per second must be positive")

	// ErrInvalidRetries is returned when the retry count is negative.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidLimit is returned when the depth or node limit is negative.
	// Use 0 for no limit.
	ErrInvalidLimit = errors.New("invalid limit: depth and node limits must be non-negative")

	// ErrIncompleteCredentials is returned when only one of the email and
	// password environment variables is set.
	ErrIncompleteCredentials = errors.New("incomplete credentials: set both " + EnvEmail + " and " + EnvPassword)
)
