package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/cragscan/internal/comments"
	"github.com/nao1215/cragscan/internal/config"
	"github.com/nao1215/cragscan/internal/crawler"
	"github.com/nao1215/cragscan/internal/database"
	"github.com/nao1215/cragscan/internal/fetch"
	"github.com/nao1215/cragscan/internal/log"
	"github.com/nao1215/cragscan/internal/report"
	"github.com/nao1215/cragscan/internal/session"
	"github.com/nao1215/cragscan/internal/sink"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [root-url]",
		Short: "Crawl an area tree and write one record per area and route",
		Long: `Crawl starts at an area (or route) page and follows every sub-area and route
link below it. Each node is fetched once, its fields and comment thread are
extracted, and the record is written to out/areas.csv or out/routes.csv.

Without a root URL the root from the configuration file is used, falling back
to the Red Rocks area.

Credentials are read from CRAGSCAN_EMAIL and CRAGSCAN_PASSWORD, or from a
.env file in the current directory. Without them the crawl runs anonymously.

Examples:
  # Crawl the default root
  cragscan crawl

  # Crawl one area with 4 concurrent fetches at 1 request per second
  cragscan crawl -n 4 -r 1 https://www.mountainproject.com/area/105716799/joshua-tree-national-park

  # Stop two levels below the root and also store records in SQLite
  cragscan crawl --depth 2 --sqlite

  # Crawl without writing records, printing only the summary
  cragscan crawl --dry-run --max-nodes 50

  # Write a Markdown summary next to the CSV files
  cragscan crawl --report out/summary.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Traversal flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of concurrent fetches")
	cmd.Flags().IntP("depth", "d", 0,
		"Maximum depth below the root (0 = unlimited)")
	cmd.Flags().IntP("max-nodes", "m", 0,
		"Maximum number of nodes to crawl, root included (0 = unlimited)")

	// HTTP flags
	cmd.Flags().Float64P("rate", "r", config.DefaultRequestsPerSecond,
		"Requests per second per host")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int("retries", config.DefaultRetries,
		"Retries for throttled (429) and 5xx responses")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt")
	cmd.Flags().Bool("anonymous", false,
		"Do not log in even when credentials are set")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory for areas.csv and routes.csv")
	cmd.Flags().Bool("sqlite", false,
		"Also upsert records into the SQLite database in the XDG data directory")
	cmd.Flags().String("report", "",
		"Write a crawl summary to this file (.json for JSON, Markdown otherwise)")
	cmd.Flags().Bool("dry-run", false,
		"Crawl without writing records; print only the summary")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cragscan in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.LoadCredentials(config.DefaultEnvFile); err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, os.Stderr, log.Level(cfg.Verbose, slog.LevelInfo))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config from defaults, the configuration file, and
// the flags the user set, in that order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// Otherwise silently run with the defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("depth") {
		if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-nodes") {
		if cfg.MaxNodes, err = flags.GetInt("max-nodes"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rate") {
		if cfg.RequestsPerSecond, err = flags.GetFloat64("rate"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("retries") {
		if cfg.Retries, err = flags.GetInt("retries"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-robots") {
		noRobots, err := flags.GetBool("no-robots")
		if err != nil {
			return nil, err
		}
		cfg.RespectRobots = !noRobots
	}
	if flags.Changed("output") {
		if cfg.OutputDir, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("sqlite") {
		if cfg.SQLite, err = flags.GetBool("sqlite"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("report") {
		if cfg.ReportFile, err = flags.GetString("report"); err != nil {
			return nil, err
		}
	}

	if cfg.Anonymous, err = flags.GetBool("anonymous"); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = flags.GetBool("dry-run"); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.RootURL = args[0]
	}

	return cfg, nil
}

// runCrawl wires the fetcher, session, sinks and engine, runs the crawl,
// and reports the result to out.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	client, err := newFetchClient(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.ProxyAddress != "" {
		if status := fetch.CheckProxy(ctx, cfg.ProxyAddress); status != fetch.ProxyStatusOK {
			return fmt.Errorf("proxy check failed: %s (address %s)", status, cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	outputs, err := openOutputs(cfg)
	if err != nil {
		return err
	}
	defer outputs.closeDB(logger)

	engine := crawler.NewEngine(
		client,
		comments.NewFetcher(client, cfg.BaseURL),
		outputs.sink,
		crawler.WithAuthenticator(newAuthenticator(cfg, logger)),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxNodes(cfg.MaxNodes),
		crawler.WithLogger(logger),
	)

	logger.Debug("crawl outputs", "paths", outputs.paths, "dry_run", cfg.DryRun, "rate", cfg.RequestsPerSecond)

	stats, crawlErr := engine.Crawl(ctx, cfg.RootURL)
	if err := outputs.sink.Close(); err != nil {
		crawlErr = errors.Join(crawlErr, fmt.Errorf("failed to close output: %w", err))
	}

	summary := report.NewSummary(cfg.RootURL, stats, crawlErr, outputs.paths...)

	// The run is recorded even after an interrupt, so the history shows it.
	if outputs.db != nil {
		if err := saveRun(context.WithoutCancel(ctx), outputs.db, summary); err != nil {
			logger.Error("failed to save crawl run", "error", err)
		}
	}

	if err := writeSummary(cfg, summary, out); err != nil {
		logger.Error("failed to write report", "error", err)
	}

	if crawlErr != nil {
		return fmt.Errorf("crawl %s: %w", summary.Status, crawlErr)
	}
	return nil
}

// newFetchClient builds the HTTP client from the configuration.
func newFetchClient(cfg *config.Config, logger *slog.Logger) (*fetch.Client, error) {
	opts := []fetch.Option{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithRetries(cfg.Retries),
		fetch.WithRate(cfg.RequestsPerSecond, fetch.DefaultBurst),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithRobots(cfg.RespectRobots),
		fetch.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}

	client, err := fetch.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// newAuthenticator returns a form login when credentials are configured.
func newAuthenticator(cfg *config.Config, logger *slog.Logger) session.Authenticator {
	if !cfg.HasCredentials() {
		logger.Info("no credentials configured, crawling anonymously")
		return session.Anonymous{}
	}

	opts := []session.Option{session.WithLogger(logger)}
	if cfg.LoginURL != "" {
		opts = append(opts, session.WithLoginURL(cfg.LoginURL))
	}
	if cfg.LoginCheckSelector != "" {
		opts = append(opts, session.WithCheckSelector(cfg.LoginCheckSelector))
	}
	return session.NewFormLogin(session.Credentials{Email: cfg.Email, Password: cfg.Password}, opts...)
}

// crawlOutputs holds the sinks of a run.
type crawlOutputs struct {
	sink  sink.Sink
	db    *database.CragDB
	paths []string
}

// openOutputs opens the CSV files, plus the SQLite database when enabled.
// A dry run writes into memory only.
func openOutputs(cfg *config.Config) (*crawlOutputs, error) {
	if cfg.DryRun {
		return &crawlOutputs{sink: sink.NewMemory()}, nil
	}

	csvSink, err := sink.NewCSV(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	o := &crawlOutputs{
		paths: []string{
			filepath.Join(cfg.OutputDir, sink.AreasFile),
			filepath.Join(cfg.OutputDir, sink.RoutesFile),
		},
	}

	if !cfg.SQLite {
		o.sink = csvSink
		return o, nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		_ = csvSink.Close() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	o.db = db
	o.paths = append(o.paths, db.Path())
	o.sink = sink.NewMulti(csvSink, sink.NewSQLite(db))
	return o, nil
}

// closeDB closes the database if one was opened.
func (o *crawlOutputs) closeDB(logger *slog.Logger) {
	if o.db == nil {
		return
	}
	if err := o.db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// saveRun records the crawl summary in the database.
func saveRun(ctx context.Context, db *database.CragDB, s *report.Summary) error {
	run := &database.Run{
		RootURL:    s.Root,
		Started:    s.Started,
		Finished:   s.Finished,
		Areas:      s.Areas,
		Routes:     s.Routes,
		Failed:     len(s.Failures),
		Anomalies:  len(s.Anomalies),
		Duplicates: s.Duplicates,
		Truncated:  s.Truncated,
	}
	if s.Status == report.StatusAborted || s.Status == report.StatusInterrupted {
		run.Aborted = string(s.Status)
		if s.Error != "" {
			run.Aborted += ": " + s.Error
		}
	}
	_, err := db.InsertRun(ctx, run)
	return err
}

// writeSummary prints the summary to out and, when configured, to the
// report file.
func writeSummary(cfg *config.Config, s *report.Summary, out io.Writer) error {
	writers := []report.Writer{report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))}

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		writers = append(writers, report.ForPath(cfg.ReportFile, f))
	}

	_, err := report.NewMultiWriter(writers...).Write(s)
	return err
}
