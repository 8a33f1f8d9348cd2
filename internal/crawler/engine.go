package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/cragscan/internal/comments"
	"github.com/nao1215/cragscan/internal/extract"
	"github.com/nao1215/cragscan/internal/fetch"
	"github.com/nao1215/cragscan/internal/identity"
	"github.com/nao1215/cragscan/internal/model"
	"github.com/nao1215/cragscan/internal/session"
	"github.com/nao1215/cragscan/internal/sink"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of fetches in flight when no limit is set.
const DefaultConcurrency = 8

// Engine walks the area tree from a root and emits one record per node.
type Engine struct {
	// fetcher retrieves primary pages.
	fetcher fetch.Fetcher

	// comments retrieves the comment thread of each node.
	comments comments.Source

	// sink receives completed records.
	sink sink.Sink

	// auth runs once before traversal. Nil skips authentication.
	auth session.Authenticator

	// concurrency is the number of workers. Each worker has at most one
	// fetch in flight, primary page or comments.
	concurrency int

	// maxDepth limits the distance from the root. 0 means unlimited.
	maxDepth int

	// maxNodes limits the number of scheduled nodes. 0 means unlimited.
	maxNodes int

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuthenticator sets the login step run before traversal.
func WithAuthenticator(a session.Authenticator) Option {
	return func(e *Engine) {
		e.auth = a
	}
}

// WithConcurrency sets the number of workers, which is the maximum number
// of fetches in flight.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMaxDepth limits how far below the root the crawl goes.
// The root is depth 0. 0 means unlimited.
func WithMaxDepth(d int) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.maxDepth = d
		}
	}
}

// WithMaxNodes limits the total number of nodes scheduled, root included.
// 0 means unlimited.
func WithMaxNodes(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxNodes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an Engine.
func NewEngine(f fetch.Fetcher, c comments.Source, s sink.Sink, opts ...Option) *Engine {
	e := &Engine{
		fetcher:     f,
		comments:    c,
		sink:        s,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// crawl is the state of one Crawl call.
type crawl struct {
	*Engine
	frontier *frontier
	queue    *queue
}

// Crawl authenticates, then visits rootURL and everything below it.
//
// A fixed pool of workers, one per concurrency slot, visits the queued
// nodes, so at most that many fetches are in flight. Node-level failures are recorded in Stats and the
// crawl continues. The returned error is non-nil only when the crawl was
// aborted: ErrAuthFailure, ErrSink or context cancellation.
func (e *Engine) Crawl(ctx context.Context, rootURL string) (Stats, error) {
	ident, err := identity.Resolve(rootURL)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}

	c := &crawl{
		Engine:   e,
		frontier: newFrontier(e.maxNodes),
		queue:    newQueue(),
	}

	if e.auth != nil {
		if err := e.auth.Authenticate(ctx, e.fetcher); err != nil {
			return c.frontier.snapshot(), fmt.Errorf("%w: %w", ErrAuthFailure, err)
		}
	}

	kind := model.KindArea
	if identity.Kind(rootURL) == string(model.KindRoute) {
		kind = model.KindRoute
	}

	e.logger.Info("starting crawl",
		"root", rootURL,
		"id", ident.ID,
		"concurrency", e.concurrency,
		"max_depth", e.maxDepth,
		"max_nodes", e.maxNodes,
	)

	c.frontier.claim(ident.ID)
	c.queue.push(task{
		url:    rootURL,
		kind:   kind,
		id:     ident.ID,
		slug:   ident.Slug,
		parent: model.RootParent(),
	})

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, c.queue.close)
	for range e.concurrency {
		g.Go(func() error {
			return c.work(gctx)
		})
	}

	err = g.Wait()
	stop()
	stats := c.frontier.snapshot()

	e.logger.Info("crawl finished",
		"areas", stats.Areas,
		"routes", stats.Routes,
		"failed", len(stats.Failed),
		"anomalies", len(stats.Anomalies),
		"duplicates", stats.Duplicates,
		"truncated", stats.Truncated,
		"elapsed", stats.Duration(),
	)

	if err != nil {
		return stats, err
	}
	return stats, ctx.Err()
}

// work visits queued tasks until the queue drains or is closed.
func (c *crawl) work(ctx context.Context) error {
	for {
		t, ok := c.queue.pop()
		if !ok {
			return nil
		}
		err := c.visit(ctx, t)
		c.queue.done()
		if err != nil {
			return err
		}
	}
}

// visit drives one node through its states. It returns an error only for
// conditions that must abort the whole crawl.
func (c *crawl) visit(ctx context.Context, t task) error {
	n := newNode(t, c.logger)

	c.logger.Info(fmt.Sprintf("scraping %s", t.kind),
		"slug", t.slug,
		"id", t.id,
		"parent_name", t.parent.Name,
		"parent_id", t.parent.ID,
	)

	if err := n.advance(StateFetching); err != nil {
		return err
	}
	page, err := c.fetcher.Fetch(ctx, t.url)
	if err != nil {
		return c.failOrAbort(ctx, n, StateFetching, err)
	}

	doc, err := extract.ParseBytes(page.URL, page.Body)
	if err != nil {
		return c.failOrAbort(ctx, n, StateExtracted, err)
	}

	var record model.Record
	switch t.kind {
	case model.KindRoute:
		rp, err := extract.ExtractRoute(doc, t.id, t.parent)
		if err != nil {
			return c.failOrAbort(ctx, n, StateExtracted, err)
		}
		c.logDescription(t, rp.Description)
		record = rp.Route
	default:
		ap, err := extract.ExtractArea(doc, t.id, t.parent)
		if err != nil {
			return c.failOrAbort(ctx, n, StateExtracted, err)
		}
		c.logDescription(t, ap.Description)
		c.discover(t, ap)
		record = ap.Area
	}
	if err := n.advance(StateExtracted); err != nil {
		return err
	}

	if err := n.advance(StateCommentPending); err != nil {
		return err
	}
	thread, err := c.comments.Fetch(ctx, t.kind, t.id)
	if err != nil {
		return c.failOrAbort(ctx, n, StateCommentPending, err)
	}

	switch r := record.(type) {
	case model.Area:
		record = r.WithComment(thread)
	case model.Route:
		record = r.WithComment(thread)
	}

	if err := c.sink.Accept(ctx, record); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrSink, t.kind, t.id, err)
	}
	if err := n.advance(StateComplete); err != nil {
		return err
	}
	c.frontier.emitted(t.kind)
	return nil
}

// discover schedules the children of an area. Sub-areas take precedence;
// routes are followed when there are no sub-areas, or alongside them when a
// page unexpectedly lists both.
func (c *crawl) discover(t task, ap extract.AreaPage) {
	for _, link := range ap.Unresolved {
		c.addAnomaly(link, "child link has no resolvable id")
	}
	if ap.Links.Both() {
		c.addAnomaly(t.url, fmt.Sprintf("area lists %d sub-areas and %d routes", len(ap.Links.Areas), len(ap.Links.Routes)))
	}

	for _, link := range ap.Links.Areas {
		c.enqueue(t, ap.Area.Name, link, model.KindArea)
	}
	if len(ap.Links.Areas) == 0 || ap.Links.Both() {
		for _, link := range ap.Links.Routes {
			c.enqueue(t, ap.Area.Name, link, model.KindRoute)
		}
	}
}

// enqueue claims one child link and queues it for a worker.
func (c *crawl) enqueue(parent task, parentName, link string, kind model.Kind) {
	ident, err := identity.Resolve(link)
	if err != nil {
		return
	}
	if k := identity.Kind(link); k != "" && k != string(kind) {
		c.addAnomaly(link, fmt.Sprintf("%s link found in the %s list", k, kind))
	}
	if c.maxDepth > 0 && parent.depth+1 > c.maxDepth {
		c.frontier.truncate()
		return
	}
	switch c.frontier.claim(ident.ID) {
	case duplicate:
		c.logger.Debug("skipping duplicate", "url", link, "id", ident.ID)
		return
	case overLimit:
		c.logger.Debug("node limit reached", "url", link, "limit", c.maxNodes)
		return
	}
	c.queue.push(parent.child(link, kind, ident.ID, ident.Slug, parentName))
}

// failOrAbort records a node failure, or returns an error that aborts the
// crawl when the cause is fatal.
func (c *crawl) failOrAbort(ctx context.Context, n *node, stage NodeState, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, fetch.ErrUnauthorized) {
		return fmt.Errorf("%w: %s: %w", ErrAuthFailure, n.task.url, err)
	}

	if advErr := n.advance(StateFailed); advErr != nil {
		return advErr
	}
	c.frontier.fail(Failure{
		URL:     n.task.url,
		Kind:    n.task.kind,
		Lineage: n.task.lineage,
		State:   stage,
		Err:     err,
	})
	c.logger.Warn("node failed",
		"url", n.task.url,
		"kind", n.task.kind,
		"lineage", lineageString(n.task.lineage),
		"stage", stage,
		"error", err,
	)
	return nil
}

func (c *crawl) addAnomaly(rawURL, msg string) {
	c.frontier.anomaly(Anomaly{URL: rawURL, Message: msg})
	c.logger.Warn("page anomaly", "url", rawURL, "message", msg)
}

func (c *crawl) logDescription(t task, s extract.DescriptionStats) {
	if s.Mismatched() {
		c.logger.Debug("description headings and bodies differ",
			"url", t.url,
			"titles", s.Titles,
			"bodies", s.Bodies,
			"pairs", s.Pairs,
		)
	}
}
