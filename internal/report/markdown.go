package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs the crawl summary as a Markdown document
// that can be attached to an issue or committed next to the CSV files.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeFailures(md, summary)
	w.writeAnomalies(md, summary)
	w.writeOutputs(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl identity table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("Cragscan Crawl Summary")
	md.PlainText("")

	started := "-"
	if !s.Started.IsZero() {
		started = s.Started.Format("2006-01-02 15:04:05 MST")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", "`" + s.Root + "`"},
			{"Started", started},
			{"Duration", s.Duration().String()},
			{"Status", w.statusText(s)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell for the header table.
func (w *MarkdownWriter) statusText(s *Summary) string {
	switch s.Status {
	case StatusComplete:
		return "✅ Complete"
	case StatusPartial:
		return "⚠️ Complete with failures"
	case StatusInterrupted:
		return "⏹️ Interrupted (partial results)"
	case StatusAborted:
		return "❌ Aborted - " + s.Error
	default:
		return string(s.Status)
	}
}

// writeCounts writes the record counters, a distribution chart and an alert.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *Summary) {
	md.H2("Records")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Areas", strconv.Itoa(s.Areas)},
			{"Routes", strconv.Itoa(s.Routes)},
			{"Failed", strconv.Itoa(len(s.Failures))},
			{"Duplicate links", strconv.Itoa(s.Duplicates)},
			{"Truncated", strconv.Itoa(s.Truncated)},
			{"Anomalies", strconv.Itoa(len(s.Anomalies))},
			{"**Total emitted**", "**" + strconv.Itoa(s.Emitted()) + "**"},
		},
	})
	md.PlainText("")

	if s.Emitted() > 0 {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of emitted record kinds.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Emitted Records"),
		piechart.WithShowData(true),
	)

	if s.Areas > 0 {
		chart.LabelAndIntValue("Areas", uint64(s.Areas))
	}
	if s.Routes > 0 {
		chart.LabelAndIntValue("Routes", uint64(s.Routes))
	}
	if len(s.Failures) > 0 {
		chart.LabelAndIntValue("Failed", uint64(len(s.Failures)))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *Summary) {
	switch {
	case s.Status == StatusAborted:
		md.Cautionf("The crawl was aborted: %s", s.Error)
	case s.Status == StatusInterrupted:
		md.Warningf("The crawl was interrupted after %d record(s). Output is partial.", s.Emitted())
	case len(s.Failures) > 0:
		md.Importantf("%d node(s) failed and were not written. Their children may still be present.", len(s.Failures))
	case len(s.Anomalies) > 0:
		md.Note("All nodes were written. Some pages had an unexpected structure; see Anomalies.")
	default:
		md.Tip("All reachable nodes were written.")
	}
	md.PlainText("")
}

// writeFailures writes a table of failed nodes.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, s *Summary) {
	md.H2("Failures")
	md.PlainText("")

	if len(s.Failures) == 0 {
		md.PlainText("No failed nodes.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Failures))
	for i, f := range s.Failures {
		rows[i] = []string{
			f.Kind,
			truncateString(f.URL, 80),
			f.Stage,
			truncateString(f.Lineage, 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "URL", "Stage", "Lineage"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range s.Failures {
		if f.Error != "" {
			md.Details(f.URL, f.Error)
		}
	}
	md.PlainText("")
}

// writeAnomalies writes the anomaly list when there is one.
func (w *MarkdownWriter) writeAnomalies(md *markdown.Markdown, s *Summary) {
	if len(s.Anomalies) == 0 {
		return
	}

	md.H2("Anomalies")
	md.PlainText("")

	items := make([]string, len(s.Anomalies))
	for i, a := range s.Anomalies {
		items[i] = "`" + a.URL + "`: " + a.Message
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeOutputs lists the record destinations.
func (w *MarkdownWriter) writeOutputs(md *markdown.Markdown, s *Summary) {
	if len(s.Outputs) == 0 {
		return
	}

	md.H2("Output")
	md.PlainText("")
	md.BulletList(s.Outputs...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [cragscan](https://github.com/nao1215/cragscan)*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
