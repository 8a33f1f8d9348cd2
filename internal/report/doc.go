// Package report renders the summary of a finished crawl.
//
// A Summary is built from the crawler's statistics once Crawl returns and is
// then handed to one or more writers:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: a shareable document with tables and a mermaid chart
//   - JSONWriter: structured output for scripts
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
