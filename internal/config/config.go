package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "cragscan"

	// DefaultBaseURL is the climbing site every crawl runs against.
	DefaultBaseURL = "https://www.mountainproject.com"

	// DefaultRootURL is the Red Rocks area, the crawl's historical starting point.
	DefaultRootURL = DefaultBaseURL + "/area/105731932/red-rocks"

	// DefaultConcurrency bounds simultaneous page and comment fetches.
	DefaultConcurrency = 8

	// DefaultRequestsPerSecond is the per-host politeness rate.
	DefaultRequestsPerSecond = 2.0

	// DefaultTimeout applies to each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of retries for 429 and 5xx responses.
	DefaultRetries = 3

	// DefaultOutputDir holds areas.csv and routes.csv.
	DefaultOutputDir = "out"

	// DefaultUserAgent identifies cragscan in HTTP requests so that site
	// operators can recognise crawler traffic in their logs.
	DefaultUserAgent = "cragscan/1.0 (+https://github.com/nao1215/cragscan)"
)

// Config holds all configuration options for a cragscan run.
// It is populated from defaults, then the YAML file, then CLI flags, and
// passed to the commands explicitly rather than through global state.
type Config struct {
	// RootURL is the area or route page the crawl starts from.
	RootURL string

	// BaseURL is the site root used for the comment feed.
	BaseURL string

	// LoginURL overrides the login form page. Empty uses the session default.
	LoginURL string

	// LoginCheckSelector overrides the selector that proves a session is
	// logged in. Empty uses the session default.
	LoginCheckSelector string

	// Concurrency is the maximum number of in-flight fetches.
	Concurrency int

	// RequestsPerSecond is the per-host token bucket rate.
	RequestsPerSecond float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Retries is the number of retries after a 429 or 5xx response.
	Retries int

	// MaxDepth limits how far below the root the crawl descends. 0 is unlimited.
	MaxDepth int

	// MaxNodes limits how many nodes are claimed, root included. 0 is unlimited.
	MaxNodes int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// RespectRobots makes the fetcher honour robots.txt.
	RespectRobots bool

	// OutputDir is where the CSV files are written.
	OutputDir string

	// SQLite enables the SQLite sink alongside CSV.
	SQLite bool

	// DBDir is the directory holding cragscan.db.
	// Defaults to the XDG data directory (~/.local/share/cragscan on Linux).
	DBDir string

	// ReportFile is an optional crawl summary file. A ".json" extension
	// selects JSON, anything else Markdown.
	ReportFile string

	// Email and Password are the login credentials. They are only ever
	// read from the environment.
	Email    string
	Password string

	// Anonymous skips login even when credentials are present.
	Anonymous bool

	// DryRun crawls into memory and writes no files.
	DryRun bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .cragscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		RootURL:           DefaultRootURL,
		BaseURL:           DefaultBaseURL,
		Concurrency:       DefaultConcurrency,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Timeout:           DefaultTimeout,
		Retries:           DefaultRetries,
		UserAgent:         DefaultUserAgent,
		RespectRobots:     true,
		OutputDir:         DefaultOutputDir,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for cragscan.
// On Linux: ~/.local/share/cragscan
// On macOS: ~/Library/Application Support/cragscan
// On Windows: %LOCALAPPDATA%\cragscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for cragscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HasCredentials reports whether login should be attempted.
func (c *Config) HasCredentials() bool {
	return !c.Anonymous && c.Email != "" && c.Password != ""
}

// Validate checks if the configuration is valid.
// It returns the first violation found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.RootURL == "" {
		return ErrNoRoot
	}
	u, err := url.Parse(c.RootURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidRoot
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RequestsPerSecond <= 0 {
		return ErrInvalidRate
	}

	if c.Retries < 0 {
		return ErrInvalidRetries
	}

	if c.MaxDepth < 0 || c.MaxNodes < 0 {
		return ErrInvalidLimit
	}

	if !c.Anonymous && (c.Email == "") != (c.Password == "") {
		return ErrIncompleteCredentials
	}

	return nil
}
