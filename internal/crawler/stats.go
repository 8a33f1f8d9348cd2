package crawler

import (
	"time"

	"github.com/nao1215/cragscan/internal/model"
)

// Stats summarises a crawl.
type Stats struct {
	// Areas is the number of area records emitted.
	Areas int

	// Routes is the number of route records emitted.
	Routes int

	// Failed lists nodes that were not emitted.
	Failed []Failure

	// Anomalies lists recoverable surprises in page structure.
	Anomalies []Anomaly

	// Duplicates counts links to ids that were already claimed.
	Duplicates int

	// Truncated counts children skipped by the depth or node limit.
	Truncated int

	// Started and Finished bound the crawl.
	Started  time.Time
	Finished time.Time
}

// Emitted returns the number of records written.
func (s Stats) Emitted() int {
	return s.Areas + s.Routes
}

// Duration returns the wall time of the crawl.
func (s Stats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// Failure describes a node that was not emitted.
type Failure struct {
	// URL is the node's page URL.
	URL string

	// Kind is the record kind the node would have produced.
	Kind model.Kind

	// Lineage is the chain of parent names from the root.
	Lineage []string

	// State is the stage that failed: StateFetching for the page fetch,
	// StateExtracted for field extraction, StateCommentPending for the
	// comment fetch.
	State NodeState

	// Err is the cause.
	Err error
}

// Anomaly is a recoverable structural surprise on a page.
type Anomaly struct {
	URL     string
	Message string
}

// Path renders the failure's lineage as "ROOT > parent > ...".
func (f Failure) Path() string {
	return lineageString(f.Lineage)
}
