package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs a plain-text crawl summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every failure and anomaly instead of only the counts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-node details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeFailures(&sb, summary)
	w.writeAnomalies(&sb, summary)
	w.writeOutputs(&sb, summary)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the crawl identity and outcome.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CRAGSCAN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Root:      %s\n", s.Root)
	if !s.Started.IsZero() {
		fmt.Fprintf(sb, "Started:   %s\n", s.Started.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "Duration:  %s\n", s.Duration())
	if s.Error != "" {
		fmt.Fprintf(sb, "Status:    %s - %s\n", strings.ToUpper(string(s.Status)), s.Error)
	} else {
		fmt.Fprintf(sb, "Status:    %s\n", strings.ToUpper(string(s.Status)))
	}
	sb.WriteString("\n")
}

// writeCounts writes the record and traversal counters.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, s *Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nRECORDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  AREAS:      %d\n", s.Areas)
	fmt.Fprintf(sb, "  ROUTES:     %d\n", s.Routes)
	fmt.Fprintf(sb, "  FAILED:     %d\n", len(s.Failures))
	fmt.Fprintf(sb, "  DUPLICATES: %d\n", s.Duplicates)
	if s.Truncated > 0 {
		fmt.Fprintf(sb, "  TRUNCATED:  %d\n", s.Truncated)
	}
	if len(s.Anomalies) > 0 {
		fmt.Fprintf(sb, "  ANOMALIES:  %d\n", len(s.Anomalies))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:      %d records\n\n", s.Emitted())
}

// writeFailures lists failed nodes. Without verbose only the first few are shown.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, s *Summary) {
	if len(s.Failures) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nFAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	shown := s.Failures
	if !w.verbose && len(shown) > maxCompactEntries {
		shown = shown[:maxCompactEntries]
	}
	for _, f := range shown {
		fmt.Fprintf(sb, "  [!] %s %s\n", f.Kind, f.URL)
		fmt.Fprintf(sb, "      Stage:   %s\n", f.Stage)
		fmt.Fprintf(sb, "      Lineage: %s\n", f.Lineage)
		if f.Error != "" {
			fmt.Fprintf(sb, "      Error:   %s\n", f.Error)
		}
	}
	if hidden := len(s.Failures) - len(shown); hidden > 0 {
		fmt.Fprintf(sb, "  ... and %d more (use --verbose to list all)\n", hidden)
	}
	sb.WriteString("\n")
}

// writeAnomalies lists anomalies in verbose mode only.
func (w *SimpleWriter) writeAnomalies(sb *strings.Builder, s *Summary) {
	if !w.verbose || len(s.Anomalies) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nANOMALIES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, a := range s.Anomalies {
		fmt.Fprintf(sb, "  [i] %s\n      %s\n", a.URL, a.Message)
	}
	sb.WriteString("\n")
}

// writeOutputs lists the record destinations.
func (w *SimpleWriter) writeOutputs(sb *strings.Builder, s *Summary) {
	if len(s.Outputs) == 0 {
		return
	}
	sb.WriteString("Output:\n")
	for _, o := range s.Outputs {
		fmt.Fprintf(sb, "  %s\n", o)
	}
	sb.WriteString("\n")
}

// maxCompactEntries bounds the failures printed without verbose.
const maxCompactEntries = 10
