package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/cragscan/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cragscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cragscan",
		Short: "Crawler for climbing areas and routes",
		Long: `cragscan walks the area/route tree of Mountain Project from a root area,
extracting names, locations, grades, descriptions, and comment threads.

Every reachable area and route is written exactly once, to out/areas.csv and
out/routes.csv by default. Login credentials are read from CRAGSCAN_EMAIL and
CRAGSCAN_PASSWORD (or a .env file) and are never accepted as flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getBoolFlag(cmd, "verbose")
}

// getBoolFlag reads a bool flag set on cmd or persisted from the root.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// newLogger returns the redacting logger for cmd, in JSON when --log-json
// is set.
func newLogger(cmd *cobra.Command, w io.Writer, level slog.Leveler) *slog.Logger {
	if getBoolFlag(cmd, "log-json") {
		return log.NewSecureJSONLogger(w, level)
	}
	return log.NewSecureLogger(w, level)
}
