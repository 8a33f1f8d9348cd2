package report

import (
	"context"
	"errors"
	"time"

	"github.com/nao1215/cragscan/internal/crawler"
	"github.com/nao1215/cragscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status describes how a crawl ended.
type Status string

const (
	// StatusComplete means every claimed node was emitted.
	StatusComplete Status = "complete"
	// StatusPartial means the crawl finished but some nodes failed.
	StatusPartial Status = "complete with failures"
	// StatusInterrupted means the crawl was cancelled before it drained.
	StatusInterrupted Status = "interrupted"
	// StatusAborted means a fatal error stopped the crawl.
	StatusAborted Status = "aborted"
)

// Summary is the report view of a crawl.
type Summary struct {
	// Root is the URL the crawl started from.
	Root string `json:"root"`

	// Started and Finished bound the crawl.
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Areas and Routes count emitted records.
	Areas  int `json:"areas"`
	Routes int `json:"routes"`

	// Duplicates counts links to already-claimed ids.
	Duplicates int `json:"duplicates"`

	// Truncated counts children skipped by the depth or node limit.
	Truncated int `json:"truncated"`

	// Failures lists nodes that were not emitted.
	Failures []FailureEntry `json:"failures,omitempty"`

	// Anomalies lists recoverable page-structure surprises.
	Anomalies []AnomalyEntry `json:"anomalies,omitempty"`

	// Outputs lists where records were written.
	Outputs []string `json:"outputs,omitempty"`

	// Status is the overall outcome.
	Status Status `json:"status"`

	// Error holds the fatal error, if any.
	Error string `json:"error,omitempty"`
}

// FailureEntry is a failed node in report form.
type FailureEntry struct {
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Lineage string `json:"lineage"`
	Stage   string `json:"stage"`
	Error   string `json:"error"`
}

// AnomalyEntry is an anomaly in report form.
type AnomalyEntry struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// NewSummary builds a Summary from crawl statistics and the error Crawl returned.
func NewSummary(root string, stats crawler.Stats, crawlErr error, outputs ...string) *Summary {
	s := &Summary{
		Root:       root,
		Started:    stats.Started,
		Finished:   stats.Finished,
		Areas:      stats.Areas,
		Routes:     stats.Routes,
		Duplicates: stats.Duplicates,
		Truncated:  stats.Truncated,
		Outputs:    outputs,
	}

	for _, f := range stats.Failed {
		entry := FailureEntry{
			URL:     f.URL,
			Kind:    kindTitle(f.Kind),
			Lineage: f.Path(),
			Stage:   f.State.String(),
		}
		if f.Err != nil {
			entry.Error = f.Err.Error()
		}
		s.Failures = append(s.Failures, entry)
	}
	for _, a := range stats.Anomalies {
		s.Anomalies = append(s.Anomalies, AnomalyEntry{URL: a.URL, Message: a.Message})
	}

	switch {
	case errors.Is(crawlErr, context.Canceled), errors.Is(crawlErr, context.DeadlineExceeded):
		s.Status = StatusInterrupted
	case crawlErr != nil:
		s.Status = StatusAborted
		s.Error = crawlErr.Error()
	case len(s.Failures) > 0:
		s.Status = StatusPartial
	default:
		s.Status = StatusComplete
	}
	return s
}

// Emitted returns the number of records written.
func (s *Summary) Emitted() int {
	return s.Areas + s.Routes
}

// Duration returns the wall time of the crawl.
func (s *Summary) Duration() time.Duration {
	if s.Started.IsZero() || s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started).Round(time.Millisecond)
}

// kindTitle renders a record kind for display ("area" becomes "Area").
func kindTitle(k model.Kind) string {
	return cases.Title(language.English).String(k.String())
}
