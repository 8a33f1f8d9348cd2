package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/cragscan/internal/fetch"
	"github.com/nao1215/cragscan/internal/model"
	"github.com/nao1215/cragscan/internal/sink"
)

const siteBase = "https://mp.test"

func areaURL(id string) string  { return fmt.Sprintf("%s/area/%s/area-%s", siteBase, id, id) }
func routeURL(id string) string { return fmt.Sprintf("%s/route/%s/route-%s", siteBase, id, id) }

// areaHTML renders an area page linking to sub-areas and routes by id.
func areaHTML(name string, areas, routes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body><h1>%s</h1>", name)
	b.WriteString(`<table class="description-details"><tr><td>GPS:</td><td>36.1, -115.4</td></tr></table>`)
	for _, id := range areas {
		fmt.Fprintf(&b, `<div class="lef-nav-row"><a href="%s">a</a></div>`, areaURL(id))
	}
	if len(routes) > 0 {
		b.WriteString(`<table id="left-nav-route-table">`)
		for _, id := range routes {
			fmt.Fprintf(&b, `<tr><td><a href="%s">r</a></td></tr>`, routeURL(id))
		}
		b.WriteString(`</table>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func routeHTML(name string) string {
	return fmt.Sprintf(`<html><body><h1>%s</h1>
		<h2 class="inline-block mr-2"><span class="rateYDS">5.9</span> PG</h2>
		<table class="description-details"><tr><td>Type:</td><td>Trad, 2 pitches</td></tr></table>
		</body></html>`, name)
}

// fakeSite serves canned pages and records every fetch.
type fakeSite struct {
	mu       sync.Mutex
	pages    map[string]string
	errs     map[string]error
	fetches  map[string]int
	delay    time.Duration
	inflight int
	peak     int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:   make(map[string]string),
		errs:    make(map[string]error),
		fetches: make(map[string]int),
	}
}

func (s *fakeSite) area(id, name string, areas, routes []string) *fakeSite {
	s.pages[areaURL(id)] = areaHTML(name, areas, routes)
	return s
}

func (s *fakeSite) route(id, name string) *fakeSite {
	s.pages[routeURL(id)] = routeHTML(name)
	return s
}

func (s *fakeSite) Fetch(ctx context.Context, rawURL string) (*fetch.Page, error) {
	s.mu.Lock()
	s.fetches[rawURL]++
	s.inflight++
	if s.inflight > s.peak {
		s.peak = s.inflight
	}
	body, ok := s.pages[rawURL]
	err := s.errs[rawURL]
	delay := s.delay
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fetch.StatusError{URL: rawURL, Code: http.StatusNotFound}
	}
	return &fetch.Page{URL: rawURL, Status: http.StatusOK, Body: []byte(body)}, nil
}

func (s *fakeSite) Submit(context.Context, string, url.Values) (*fetch.Page, error) {
	return nil, errors.New("submit not supported")
}

func (s *fakeSite) fetchCount(rawURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[rawURL]
}

func (s *fakeSite) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.fetches {
		n += c
	}
	return n
}

// fakeComments renders a fixed thread per id, or fails for ids in errs.
type fakeComments struct {
	mu    sync.Mutex
	errs  map[string]error
	calls int
}

func (c *fakeComments) Fetch(_ context.Context, kind model.Kind, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if err, ok := c.errs[id]; ok {
		return "", err
	}
	return fmt.Sprintf("thread of %s %s\n", kind, id), nil
}

// stubAuth returns err from Authenticate.
type stubAuth struct {
	err   error
	calls int
}

func (a *stubAuth) Authenticate(context.Context, fetch.Fetcher) error {
	a.calls++
	return a.err
}

// failSink fails every Accept.
type failSink struct{}

func (failSink) Accept(context.Context, model.Record) error { return errors.New("disk full") }
func (failSink) Close() error                               { return nil }

// redRocks is a small tree:
//
//	1 Red Rocks
//	├── 2 Calico Basin: routes 10, 11
//	└── 3 Kraft Boulders: routes 11, 12
func redRocks() *fakeSite {
	return newFakeSite().
		area("1", "Red Rocks", []string{"2", "3"}, nil).
		area("2", "Calico Basin", nil, []string{"10", "11"}).
		area("3", "Kraft Boulders", nil, []string{"11", "12"}).
		route("10", "Physical Graffiti").
		route("11", "Ragged Edges").
		route("12", "Monster Skank")
}

func runCrawl(t *testing.T, site *fakeSite, cs *fakeComments, opts ...Option) (Stats, *sink.Memory, error) {
	t.Helper()
	if cs == nil {
		cs = &fakeComments{}
	}
	mem := sink.NewMemory()
	stats, err := NewEngine(site, cs, mem, opts...).Crawl(context.Background(), areaURL("1"))
	return stats, mem, err
}

// TestCrawlTree tests a full traversal.
func TestCrawlTree(t *testing.T) {
	t.Parallel()

	stats, mem, err := runCrawl(t, redRocks(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Areas != 3 || stats.Routes != 3 {
		t.Errorf("expected 3 areas and 3 routes, got %d and %d", stats.Areas, stats.Routes)
	}
	if len(stats.Failed) != 0 {
		t.Errorf("expected no failures, got %+v", stats.Failed)
	}

	for _, a := range mem.Areas() {
		switch a.ID {
		case "1":
			if a.ParentName != model.RootParentName || a.ParentID != model.RootParentID {
				t.Errorf("root parent should be the sentinel, got %q/%q", a.ParentName, a.ParentID)
			}
			if a.ChildType != model.ChildArea {
				t.Errorf("expected root child type area, got %q", a.ChildType)
			}
		case "2":
			if a.ParentName != "Red Rocks" || a.ParentID != "1" {
				t.Errorf("unexpected parent for 2: %q/%q", a.ParentName, a.ParentID)
			}
			if a.Comment != "thread of area 2\n" {
				t.Errorf("expected comment to be merged, got %q", a.Comment)
			}
		}
	}
	for _, r := range mem.Routes() {
		if r.ID == "10" && (r.ParentName != "Calico Basin" || r.ParentID != "2") {
			t.Errorf("unexpected parent for route 10: %q/%q", r.ParentName, r.ParentID)
		}
		if r.Pitch != 2 || r.Protection != model.ProtectionPG {
			t.Errorf("route %s not fully extracted: pitch=%d protection=%q", r.ID, r.Pitch, r.Protection)
		}
	}
	if stats.Finished.Before(stats.Started) {
		t.Error("expected finish after start")
	}
}

// TestCrawlDedupe tests that a shared child is fetched and emitted once.
func TestCrawlDedupe(t *testing.T) {
	t.Parallel()

	site := redRocks()
	stats, mem, err := runCrawl(t, site, nil, WithConcurrency(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := site.fetchCount(routeURL("11")); got != 1 {
		t.Errorf("expected route 11 to be fetched once, got %d", got)
	}
	if got := mem.Count("11"); got != 1 {
		t.Errorf("expected route 11 to be emitted once, got %d", got)
	}
	if stats.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", stats.Duplicates)
	}
}

// TestCrawlLeafArea tests an area without children.
func TestCrawlLeafArea(t *testing.T) {
	t.Parallel()

	site := newFakeSite().area("1", "Empty Wall", nil, nil)
	stats, mem, err := runCrawl(t, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Areas != 1 || site.total() != 1 {
		t.Errorf("expected one area from one fetch, got %d areas and %d fetches", stats.Areas, site.total())
	}
	areas := mem.Areas()
	if len(areas) != 1 || areas[0].ChildType != model.ChildNone || len(areas[0].ChildIDs) != 0 {
		t.Errorf("expected a leaf area, got %+v", areas)
	}
}

// TestCrawlCommentFailure tests that a node without comments is not emitted
// while its children still are.
func TestCrawlCommentFailure(t *testing.T) {
	t.Parallel()

	cs := &fakeComments{errs: map[string]error{"2": errors.New("feed down")}}
	stats, mem, err := runCrawl(t, redRocks(), cs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.Count("2") != 0 {
		t.Error("area 2 must not be emitted after its comment fetch failed")
	}
	if mem.Count("10") != 1 {
		t.Error("children of area 2 should still be emitted")
	}
	if len(stats.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(stats.Failed))
	}
	f := stats.Failed[0]
	if f.State != StateCommentPending || f.URL != areaURL("2") {
		t.Errorf("unexpected failure %+v", f)
	}
	if len(f.Lineage) != 1 || f.Lineage[0] != "Red Rocks" {
		t.Errorf("expected lineage [Red Rocks], got %v", f.Lineage)
	}
}

// TestCrawlMalformedPage tests that a broken page fails alone.
func TestCrawlMalformedPage(t *testing.T) {
	t.Parallel()

	site := redRocks()
	site.pages[areaURL("3")] = "<html><body><p>maintenance</p></body></html>"

	stats, mem, err := runCrawl(t, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.Count("3") != 0 || mem.Count("12") != 0 {
		t.Error("malformed area and its subtree must not be emitted")
	}
	if mem.Count("2") != 1 || mem.Count("10") != 1 {
		t.Error("sibling subtree should be emitted")
	}
	if len(stats.Failed) != 1 || stats.Failed[0].State != StateExtracted {
		t.Errorf("expected one extraction failure, got %+v", stats.Failed)
	}
}

// TestCrawlFetchFailure tests a child that cannot be fetched.
func TestCrawlFetchFailure(t *testing.T) {
	t.Parallel()

	site := redRocks()
	delete(site.pages, routeURL("12"))

	stats, _, err := runCrawl(t, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Routes != 2 {
		t.Errorf("expected 2 routes, got %d", stats.Routes)
	}
	if len(stats.Failed) != 1 || stats.Failed[0].State != StateFetching || !errors.Is(stats.Failed[0].Err, fetch.ErrStatus) {
		t.Errorf("expected one fetch failure, got %+v", stats.Failed)
	}
}

// TestCrawlAuthFailure tests that authentication problems abort the crawl.
func TestCrawlAuthFailure(t *testing.T) {
	t.Parallel()

	t.Run("login rejected", func(t *testing.T) {
		t.Parallel()

		site := redRocks()
		auth := &stubAuth{err: errors.New("bad password")}
		_, mem, err := runCrawl(t, site, nil, WithAuthenticator(auth))
		if !errors.Is(err, ErrAuthFailure) {
			t.Errorf("expected ErrAuthFailure, got %v", err)
		}
		if site.total() != 0 || len(mem.Records()) != 0 {
			t.Error("nothing should be fetched or emitted after a failed login")
		}
	})

	t.Run("session rejected mid crawl", func(t *testing.T) {
		t.Parallel()

		site := redRocks()
		site.errs[areaURL("3")] = &fetch.StatusError{URL: areaURL("3"), Code: http.StatusForbidden}
		auth := &stubAuth{}
		_, _, err := runCrawl(t, site, nil, WithAuthenticator(auth))
		if !errors.Is(err, ErrAuthFailure) {
			t.Errorf("expected ErrAuthFailure, got %v", err)
		}
		if !errors.Is(err, fetch.ErrUnauthorized) {
			t.Errorf("expected the fetch cause to be kept, got %v", err)
		}
		if auth.calls != 1 {
			t.Errorf("expected one login, got %d", auth.calls)
		}
	})
}

// TestCrawlSinkFailure tests that a sink error aborts the crawl.
func TestCrawlSinkFailure(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(redRocks(), &fakeComments{}, failSink{}).Crawl(context.Background(), areaURL("1"))
	if !errors.Is(err, ErrSink) {
		t.Errorf("expected ErrSink, got %v", err)
	}
}

// TestCrawlMixedChildren tests an area listing sub-areas and routes.
func TestCrawlMixedChildren(t *testing.T) {
	t.Parallel()

	site := newFakeSite().
		area("1", "Odd Crag", []string{"2"}, []string{"10"}).
		area("2", "Sub", nil, nil).
		route("10", "Loose One")

	stats, mem, err := runCrawl(t, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.Anomalies) != 1 || stats.Anomalies[0].URL != areaURL("1") {
		t.Errorf("expected one anomaly for the root, got %+v", stats.Anomalies)
	}
	if mem.Count("2") != 1 || mem.Count("10") != 1 {
		t.Error("both children should be traversed")
	}
}

// TestCrawlLimits tests depth and node limits.
func TestCrawlLimits(t *testing.T) {
	t.Parallel()

	t.Run("max depth", func(t *testing.T) {
		t.Parallel()

		stats, mem, err := runCrawl(t, redRocks(), nil, WithMaxDepth(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Areas != 3 || stats.Routes != 0 {
			t.Errorf("expected only areas, got %d areas and %d routes", stats.Areas, stats.Routes)
		}
		if stats.Truncated != 4 {
			t.Errorf("expected 4 truncated links, got %d", stats.Truncated)
		}
		if len(mem.Routes()) != 0 {
			t.Error("routes below the depth limit must not be emitted")
		}
	})

	t.Run("max nodes", func(t *testing.T) {
		t.Parallel()

		site := redRocks()
		stats, _, err := runCrawl(t, site, nil, WithMaxNodes(2), WithConcurrency(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Emitted() != 2 {
			t.Errorf("expected 2 records, got %d", stats.Emitted())
		}
		if site.total() != 2 {
			t.Errorf("expected 2 fetches, got %d", site.total())
		}
		if stats.Truncated == 0 {
			t.Error("expected truncated children to be counted")
		}
	})
}

// TestCrawlConcurrencyCap tests that fetches in flight never exceed the cap.
func TestCrawlConcurrencyCap(t *testing.T) {
	t.Parallel()

	routes := make([]string, 0, 20)
	site := newFakeSite()
	for i := range 20 {
		id := fmt.Sprintf("%d", 100+i)
		routes = append(routes, id)
		site.route(id, "R"+id)
	}
	site.area("1", "Big Wall", nil, routes)
	site.delay = 5 * time.Millisecond

	stats, _, err := runCrawl(t, site, nil, WithConcurrency(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Routes != 20 {
		t.Errorf("expected 20 routes, got %d", stats.Routes)
	}
	site.mu.Lock()
	peak := site.peak
	site.mu.Unlock()
	if peak > 3 {
		t.Errorf("expected at most 3 fetches in flight, got %d", peak)
	}
}

// TestCrawlCanceled tests cancellation by the caller.
func TestCrawlCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(redRocks(), &fakeComments{}, sink.NewMemory()).Crawl(ctx, areaURL("1"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestCrawlInvalidRoot tests a seed without an id.
func TestCrawlInvalidRoot(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(newFakeSite(), &fakeComments{}, sink.NewMemory()).Crawl(context.Background(), "https://mp.test/")
	if !errors.Is(err, ErrInvalidRoot) {
		t.Errorf("expected ErrInvalidRoot, got %v", err)
	}
}

// TestCrawlRouteRoot tests seeding the crawl with a single route.
func TestCrawlRouteRoot(t *testing.T) {
	t.Parallel()

	mem := sink.NewMemory()
	stats, err := NewEngine(redRocks(), &fakeComments{}, mem).Crawl(context.Background(), routeURL("10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Routes != 1 || stats.Areas != 0 {
		t.Errorf("expected a single route, got %d routes and %d areas", stats.Routes, stats.Areas)
	}
}
