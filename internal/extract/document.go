package extract

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Document is a parsed page together with the URL it was fetched from.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse parses an HTML body fetched from pageURL.
func Parse(pageURL string, body io.Reader) (*Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", pageURL, err)
	}
	doc.Url = base
	return &Document{doc: doc, base: base}, nil
}

// ParseBytes is Parse for an in-memory body.
func ParseBytes(pageURL string, body []byte) (*Document, error) {
	return Parse(pageURL, bytes.NewReader(body))
}

// URL returns the page URL.
func (d *Document) URL() string {
	return d.base.String()
}

// find runs a selector against the whole document.
func (d *Document) find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// detailValue returns the second cell of the description-details row whose
// first cell reads label.
func (d *Document) detailValue(label string) (*goquery.Selection, bool) {
	var found *goquery.Selection
	d.find(selDetailsRow).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return true
		}
		if strings.TrimSpace(cells.First().Text()) != label {
			return true
		}
		found = cells.Eq(1)
		return false
	})
	return found, found != nil
}

// resolve turns href into an absolute URL relative to the page.
func (d *Document) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return d.base.ResolveReference(u).String(), true
}

// ownText returns the text nodes that are direct children of the selection,
// in document order and untrimmed.
func ownText(s *goquery.Selection) []string {
	var texts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if len(c.Nodes) == 0 || c.Nodes[0].Type != html.TextNode {
			return
		}
		texts = append(texts, c.Nodes[0].Data)
	})
	return texts
}

// firstOwnText returns the first non-blank direct text node, trimmed.
func firstOwnText(s *goquery.Selection) string {
	for _, t := range ownText(s) {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

// normalize applies compatibility decomposition and trims surrounding space.
func normalize(s string) string {
	return strings.TrimSpace(norm.NFKD.String(s))
}
