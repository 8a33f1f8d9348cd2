// Package fetch retrieves pages for the crawler.
//
// Client is the production Fetcher. It wraps a resty client and carries the
// politeness concerns so the traversal engine never has to:
//   - a cookie jar shared by every request, so a login survives the crawl
//   - a per-host token bucket (golang.org/x/time/rate) applied to every attempt
//   - retries with backoff on transport errors, 429 and 5xx responses
//   - robots.txt rules, cached per host
//   - an optional SOCKS5 proxy
//
// Status codes are mapped to sentinel errors: 401 and 403 become
// ErrUnauthorized, other codes of 400 and above become ErrStatus.
package fetch
