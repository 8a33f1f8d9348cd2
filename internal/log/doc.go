// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of login credentials and session cookies
//   - Level selection shared by every cragscan command
//   - Text and JSON output with the same redaction rules
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Csrf-Token)
//   - Login form fields (email, pass, password) and hidden form tokens
//   - Session identifiers such as the site's session cookie
//   - Values detected by pattern matching (bearer tokens, JWTs, email addresses)
//
// Even in verbose mode, sensitive values are masked so that a crawl log can
// be attached to a bug report without leaking the account used to log in.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, log.Level(verbose, slog.LevelInfo))
//	logger.Info("scraping area",
//	    "slug", "red-rock",
//	    "cookie", "mp_session=abc123", // written as ***REDACTED***
//	)
package log
