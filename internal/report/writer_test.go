package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/cragscan/internal/crawler"
	"github.com/nao1215/cragscan/internal/model"
)

var started = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// createTestStats creates crawl statistics with sample data for testing.
func createTestStats() crawler.Stats {
	return crawler.Stats{
		Areas:      3,
		Routes:     12,
		Duplicates: 2,
		Started:    started,
		Finished:   started.Add(90 * time.Second),
		Failed: []crawler.Failure{
			{
				URL:     "https://www.mountainproject.com/route/105732422/epinephrine",
				Kind:    model.KindRoute,
				Lineage: []string{"Red Rock", "Black Velvet Canyon"},
				State:   crawler.StateCommentPending,
				Err:     errors.New("comment feed returned 500"),
			},
		},
		Anomalies: []crawler.Anomaly{
			{URL: "https://www.mountainproject.com/area/105731932/black-velvet-canyon", Message: "area lists both sub-areas and routes"},
		},
	}
}

// TestNewSummary tests conversion of crawler statistics.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	t.Run("copies counters and flattens failures", func(t *testing.T) {
		t.Parallel()

		s := NewSummary("https://www.mountainproject.com/area/105731932/red-rock", createTestStats(), nil, "out/areas.csv")

		if s.Emitted() != 15 {
			t.Errorf("expected 15 emitted, got %d", s.Emitted())
		}
		if s.Duration() != 90*time.Second {
			t.Errorf("expected 1m30s, got %s", s.Duration())
		}
		if s.Status != StatusPartial {
			t.Errorf("expected %q, got %q", StatusPartial, s.Status)
		}

		want := []FailureEntry{{
			URL:     "https://www.mountainproject.com/route/105732422/epinephrine",
			Kind:    "Route",
			Lineage: "ROOT > Red Rock > Black Velvet Canyon",
			Stage:   "comment_pending",
			Error:   "comment feed returned 500",
		}}
		if diff := cmp.Diff(want, s.Failures); diff != "" {
			t.Errorf("failures mismatch (-want +got):\n%s", diff)
		}
		if len(s.Anomalies) != 1 {
			t.Errorf("expected 1 anomaly, got %d", len(s.Anomalies))
		}
	})

	t.Run("status reflects the crawl error", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			err  error
			want Status
		}{
			{name: "clean", err: nil, want: StatusComplete},
			{name: "cancelled", err: context.Canceled, want: StatusInterrupted},
			{name: "wrapped deadline", err: fmt.Errorf("crawl: %w", context.DeadlineExceeded), want: StatusInterrupted},
			{name: "fatal", err: errors.New("sink write failed"), want: StatusAborted},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				s := NewSummary("root", crawler.Stats{Areas: 1}, tt.err)
				if s.Status != tt.want {
					t.Errorf("expected %q, got %q", tt.want, s.Status)
				}
				if tt.want == StatusAborted && s.Error == "" {
					t.Error("expected error text for aborted crawl")
				}
			})
		}
	})

	t.Run("zero times give zero duration", func(t *testing.T) {
		t.Parallel()

		s := NewSummary("root", crawler.Stats{}, nil)
		if s.Duration() != 0 {
			t.Errorf("expected 0, got %s", s.Duration())
		}
	})
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(NewSummary("https://mp.test/area/1/root", createTestStats(), nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"CRAGSCAN SUMMARY",
			"https://mp.test/area/1/root",
			"COMPLETE WITH FAILURES",
			"AREAS:      3",
			"ROUTES:     12",
			"TOTAL:      15 records",
			"Lineage: ROOT > Red Rock > Black Velvet Canyon",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "ANOMALIES\n") {
			t.Error("expected anomaly list to be hidden without verbose")
		}
	})

	t.Run("verbose mode lists anomalies", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		_, err := w.Write(NewSummary("root", createTestStats(), nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "area lists both sub-areas and routes") {
			t.Errorf("expected anomaly message, got:\n%s", buf.String())
		}
	})

	t.Run("compact mode caps the failure list", func(t *testing.T) {
		t.Parallel()

		stats := crawler.Stats{}
		for i := range maxCompactEntries + 5 {
			stats.Failed = append(stats.Failed, crawler.Failure{
				URL:   fmt.Sprintf("https://mp.test/route/%d/r", i),
				Kind:  model.KindRoute,
				State: crawler.StateFetching,
			})
		}

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).Write(NewSummary("root", stats, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "... and 5 more") {
			t.Errorf("expected truncation notice, got:\n%s", buf.String())
		}
	})

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).Write(NewSummary("root", crawler.Stats{}, errors.New("login rejected")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "ABORTED - login rejected") {
			t.Errorf("expected aborted status, got:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		n, err := w.Write(NewSummary("https://mp.test/area/1/root", createTestStats(), nil, "out/areas.csv", "out/routes.csv"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero bytes written")
		}

		output := buf.String()
		for _, want := range []string{
			"# Cragscan Crawl Summary",
			"## Records",
			"## Failures",
			"## Anomalies",
			"out/routes.csv",
			"pie",
			"comment feed returned 500",
			"[!IMPORTANT]",
			"https://github.com/nao1215/cragscan",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("alert follows outcome", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			stats crawler.Stats
			err   error
			want  string
		}{
			{name: "aborted", err: errors.New("disk full"), want: "[!CAUTION]"},
			{name: "interrupted", err: context.Canceled, want: "[!WARNING]"},
			{name: "clean", stats: crawler.Stats{Areas: 1}, want: "[!TIP]"},
			{name: "anomalies only", stats: crawler.Stats{Anomalies: []crawler.Anomaly{{URL: "u", Message: "m"}}}, want: "[!NOTE]"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				var buf bytes.Buffer
				if _, err := NewMarkdownWriter(&buf).Write(NewSummary("root", tt.stats, tt.err)); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !strings.Contains(buf.String(), tt.want) {
					t.Errorf("expected %s alert, got:\n%s", tt.want, buf.String())
				}
			})
		}
	})

	t.Run("handles summary with no failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(NewSummary("root", crawler.Stats{Routes: 4}, nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No failed nodes.") {
			t.Error("expected empty failures message")
		}
	})
}

// TestJSONWriter tests the JSON summary writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON with derived fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(NewSummary("root", createTestStats(), nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("expected valid JSON: %v", err)
		}
		if got["emitted"] != float64(15) {
			t.Errorf("expected emitted 15, got %v", got["emitted"])
		}
		if got["duration_seconds"] != float64(90) {
			t.Errorf("expected duration 90, got %v", got["duration_seconds"])
		}
		if got["status"] != string(StatusPartial) {
			t.Errorf("expected status %q, got %v", StatusPartial, got["status"])
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(NewSummary("root", crawler.Stats{}, nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected single line, got %q", buf.String())
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent("", "    ")).Write(NewSummary("root", crawler.Stats{}, nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n    \"root\"") {
			t.Errorf("expected 4-space indentation, got %q", buf.String())
		}
	})
}

// TestMultiWriter tests writing one summary to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

		n, err := multi.Write(NewSummary("multi-root", crawler.Stats{}, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf1.Len()+buf2.Len() {
			t.Errorf("expected %d bytes, got %d", buf1.Len()+buf2.Len(), n)
		}
		if !strings.Contains(buf1.String(), "multi-root") || !strings.Contains(buf2.String(), "multi-root") {
			t.Error("expected root in both outputs")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(NewSummary("root", crawler.Stats{}, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})
}

// TestForPath tests format selection by file extension.
func TestForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		json bool
	}{
		{path: "summary.json", json: true},
		{path: "SUMMARY.JSON", json: true},
		{path: "summary.md", json: false},
		{path: "summary", json: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			_, isJSON := ForPath(tt.path, &bytes.Buffer{}).(*JSONWriter)
			if isJSON != tt.json {
				t.Errorf("expected json=%v, got %v", tt.json, isJSON)
			}
		})
	}
}
