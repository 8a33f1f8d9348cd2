// Package identity derives entity ids from URL paths.
//
// Site URLs follow the convention .../<kind>/<id>/<slug>, so an entity's id
// is always the second-to-last path segment. Parent linkage is therefore
// structural and needs no id registry.
package identity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnresolvableURL is returned when a URL has fewer than two path segments.
var ErrUnresolvableURL = errors.New("url has no <id>/<slug> path")

// Identity is the id and name slug carried by an entity URL.
type Identity struct {
	// ID is the second-to-last path segment.
	ID string

	// Slug is the last path segment.
	Slug string
}

// Resolve extracts the identity from rawURL.
// Query strings, fragments and trailing slashes are ignored.
func Resolve(rawURL string) (Identity, error) {
	segments, err := pathSegments(rawURL)
	if err != nil {
		return Identity{}, err
	}
	if len(segments) < 2 {
		return Identity{}, fmt.Errorf("%w: %s", ErrUnresolvableURL, rawURL)
	}
	return Identity{
		ID:   segments[len(segments)-2],
		Slug: segments[len(segments)-1],
	}, nil
}

// Kind returns the segment before the id (for example "area" or "route").
// It returns an empty string when the path is too short to carry one.
func Kind(rawURL string) string {
	segments, err := pathSegments(rawURL)
	if err != nil || len(segments) < 3 {
		return ""
	}
	return segments[len(segments)-3]
}

// pathSegments splits the URL path into non-empty segments.
func pathSegments(rawURL string) ([]string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnresolvableURL, rawURL, err)
	}

	parts := strings.Split(u.Path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments, nil
}
