// Package comments fetches the discussion thread attached to an area or
// route. The thread lives on its own feed URL keyed by object type and id,
// so it is a second request independent of the primary page.
package comments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/cragscan/internal/extract"
	"github.com/nao1215/cragscan/internal/fetch"
	"github.com/nao1215/cragscan/internal/model"
)

// DefaultBaseURL is the site root the feed path is appended to.
const DefaultBaseURL = "https://www.mountainproject.com"

// feedQuery lists the whole thread, oldest first.
const feedQuery = "sortOrder=oldest&showAll=true"

// ErrUnknownKind is returned for a kind other than area or route.
var ErrUnknownKind = errors.New("unknown record kind")

// objectTypes maps a record kind to the site's object type name.
var objectTypes = map[model.Kind]string{
	model.KindArea:  "Climb-Lib-Models-Area",
	model.KindRoute: "Climb-Lib-Models-Route",
}

// Source returns the rendered comment thread of a record.
type Source interface {
	Fetch(ctx context.Context, kind model.Kind, id string) (string, error)
}

// Fetcher is the Source backed by the comment feed.
type Fetcher struct {
	fetcher fetch.Fetcher
	base    string
}

// NewFetcher creates a Fetcher that requests feeds below base.
// An empty base uses DefaultBaseURL.
func NewFetcher(f fetch.Fetcher, base string) *Fetcher {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Fetcher{fetcher: f, base: strings.TrimRight(base, "/")}
}

// FeedURL returns the feed URL for kind and id, oldest comments first with
// every comment shown.
func (f *Fetcher) FeedURL(kind model.Kind, id string) (string, error) {
	objectType, ok := objectTypes[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return fmt.Sprintf("%s/comments/forObject/%s/%s?%s",
		f.base, objectType, url.PathEscape(id), feedQuery), nil
}

// Fetch implements Source. An empty feed yields an empty string.
func (f *Fetcher) Fetch(ctx context.Context, kind model.Kind, id string) (string, error) {
	feedURL, err := f.FeedURL(kind, id)
	if err != nil {
		return "", err
	}
	page, err := f.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return "", fmt.Errorf("fetch comments for %s %s: %w", kind, id, err)
	}
	doc, err := extract.ParseBytes(page.URL, page.Body)
	if err != nil {
		return "", fmt.Errorf("parse comments for %s %s: %w", kind, id, err)
	}
	return extract.Comments(doc), nil
}
