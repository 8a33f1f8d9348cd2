// Package crawler walks a climbing site's area tree and emits one record
// per area and route.
//
// # Architecture
//
// The Engine seeds the crawl with the configured root, which gets the
// sentinel parent ROOT/-1. A fixed pool of workers in an errgroup pops
// claimed nodes from a FIFO queue and visits them. Discovered children are
// pushed onto the same queue, which never blocks, so a worker cannot wait on
// itself. The crawl ends when the queue is empty and no node is being
// visited; a fatal error or cancellation closes the queue and stops every
// worker.
//
// Each node moves through an explicit state machine:
//
//	Discovered -> Fetching -> Extracted -> CommentPending -> Complete
//	                 \            \              \
//	                  +------------+--------------+--> Failed
//
// Only Complete nodes reach the sink. An area's children are scheduled as
// soon as its page is extracted, before its own comment fetch, so a failed
// comment thread never hides a subtree.
//
// # Classification
//
// Area pages list sub-areas and routes in two separate regions. Sub-areas
// are followed as areas, otherwise routes are followed as routes, and a page
// with neither is a leaf. A page listing both is reported as an anomaly and
// both lists are followed.
//
// # Shared state
//
// The frontier is the only shared mutable state: the set of claimed ids and
// the running Stats behind one mutex. A child is scheduled only when
// claiming its id succeeds, so an id is fetched at most once.
//
// # Errors
//
// Node-level failures are recorded in Stats.Failed and the crawl goes on.
// ErrAuthFailure, ErrSink and context cancellation abort the whole crawl.
//
// # Usage
//
//	engine := crawler.NewEngine(client, comments.NewFetcher(client, base), out,
//		crawler.WithAuthenticator(login),
//		crawler.WithConcurrency(8),
//	)
//	stats, err := engine.Crawl(ctx, rootURL)
package crawler
