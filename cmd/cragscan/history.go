package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/cragscan/internal/config"
	"github.com/nao1215/cragscan/internal/database"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command lists crawl runs recorded in the SQLite database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [root-url]",
		Short: "List previous crawls stored in the database",
		Long: `History lists the crawl runs recorded by 'cragscan crawl --sqlite', newest
first, with the number of areas and routes written and the number of failed
nodes.

Examples:
  # List the most recent crawls
  cragscan history

  # List every crawl of one root
  cragscan history --limit 0 https://www.mountainproject.com/area/105731932/red-rocks

  # Output JSON
  cragscan history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding cragscan.db")
	cmd.Flags().BoolP("json", "j", false,
		"Output runs in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var root string
	if len(args) > 0 {
		root = args[0]
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w (run 'cragscan crawl --sqlite' first)", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), root, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputHistoryJSON(cmd.OutOrStdout(), runs)
	}
	return outputHistoryText(cmd.OutOrStdout(), runs, root)
}

// historyEntry is the JSON form of a run.
type historyEntry struct {
	ID         int64     `json:"id"`
	Root       string    `json:"root"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
	Areas      int       `json:"areas"`
	Routes     int       `json:"routes"`
	Failed     int       `json:"failed"`
	Anomalies  int       `json:"anomalies"`
	Duplicates int       `json:"duplicates"`
	Truncated  int       `json:"truncated"`
	Aborted    string    `json:"aborted,omitempty"`
}

// outputHistoryJSON writes runs as a JSON array.
func outputHistoryJSON(w io.Writer, runs []database.Run) error {
	entries := make([]historyEntry, len(runs))
	for i, r := range runs {
		entries[i] = historyEntry{
			ID:         r.ID,
			Root:       r.RootURL,
			Started:    r.Started,
			Finished:   r.Finished,
			Areas:      r.Areas,
			Routes:     r.Routes,
			Failed:     r.Failed,
			Anomalies:  r.Anomalies,
			Duplicates: r.Duplicates,
			Truncated:  r.Truncated,
			Aborted:    r.Aborted,
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// outputHistoryText writes runs as an aligned table.
func outputHistoryText(w io.Writer, runs []database.Run, root string) error {
	if len(runs) == 0 {
		if root != "" {
			fmt.Fprintf(w, "No crawl history found for %s\n", root)
		} else {
			fmt.Fprintln(w, "No crawl history found.")
		}
		fmt.Fprintln(w, "\nUse 'cragscan crawl --sqlite' to record crawls.")
		return nil
	}

	fmt.Fprintf(w, "Crawl history (%d runs):\n\n", len(runs))
	fmt.Fprintf(w, "  %-5s  %-19s  %-9s  %6s  %6s  %6s  %s\n",
		"ID", "Started", "Duration", "Areas", "Routes", "Failed", "Root")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 90))

	for _, r := range runs {
		fmt.Fprintf(w, "  %-5d  %-19s  %-9s  %6d  %6d  %6d  %s%s\n",
			r.ID,
			r.Started.Local().Format("2006-01-02 15:04:05"),
			formatRunDuration(r),
			r.Areas,
			r.Routes,
			r.Failed,
			r.RootURL,
			formatAborted(r.Aborted),
		)
	}
	return nil
}

// formatRunDuration renders the wall time of a run to the second.
func formatRunDuration(r database.Run) string {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return "-"
	}
	return r.Finished.Sub(r.Started).Round(time.Second).String()
}

// formatAborted marks runs that did not finish.
func formatAborted(reason string) string {
	if reason == "" {
		return ""
	}
	return " [" + reason + "]"
}
