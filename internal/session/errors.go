package session

import "errors"

var (
	// ErrLoginRejected is returned when the site does not accept the
	// credentials.
	ErrLoginRejected = errors.New("login rejected")

	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrLoginFormNotFound is returned when the login page has no form with
	// a password field.
	ErrLoginFormNotFound = errors.New("login form not found")
)
