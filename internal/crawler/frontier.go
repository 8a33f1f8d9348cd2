package crawler

import (
	"sync"
	"time"

	"github.com/nao1215/cragscan/internal/model"
)

// claimResult is the outcome of claiming an id.
type claimResult int

const (
	// claimed means the caller owns the id and must schedule it.
	claimed claimResult = iota

	// duplicate means the id was claimed before.
	duplicate

	// overLimit means the node budget is spent.
	overLimit
)

// frontier is the crawl's shared state: the set of claimed ids and the
// running statistics. All access goes through its mutex.
type frontier struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	maxNodes int
	stats    Stats
}

func newFrontier(maxNodes int) *frontier {
	return &frontier{
		seen:     make(map[string]struct{}),
		maxNodes: maxNodes,
		stats:    Stats{Started: time.Now()},
	}
}

// claim checks and inserts id in one critical section, so each id is
// scheduled at most once however many parents link to it.
func (f *frontier) claim(id string) claimResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[id]; ok {
		f.stats.Duplicates++
		return duplicate
	}
	if f.maxNodes > 0 && len(f.seen) >= f.maxNodes {
		f.stats.Truncated++
		return overLimit
	}
	f.seen[id] = struct{}{}
	return claimed
}

// truncate counts a child skipped by the depth limit.
func (f *frontier) truncate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Truncated++
}

// emitted counts a record written to the sink.
func (f *frontier) emitted(kind model.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch kind {
	case model.KindArea:
		f.stats.Areas++
	case model.KindRoute:
		f.stats.Routes++
	}
}

func (f *frontier) fail(fl Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Failed = append(f.stats.Failed, fl)
}

func (f *frontier) anomaly(a Anomaly) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.Anomalies = append(f.stats.Anomalies, a)
}

// snapshot returns a copy of the statistics, stamped with the finish time.
func (f *frontier) snapshot() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.stats
	s.Failed = append([]Failure(nil), f.stats.Failed...)
	s.Anomalies = append([]Anomaly(nil), f.stats.Anomalies...)
	s.Finished = time.Now()
	return s
}
