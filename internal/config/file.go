package config

import "time"

// File represents the structure of the .cragscan configuration file.
// Every field is optional; unset fields leave the Config untouched.
type File struct {
	// Root is the default crawl root URL.
	Root string `yaml:"root,omitempty"`

	// BaseURL overrides the site root used for the comment feed.
	BaseURL string `yaml:"baseURL,omitempty"`

	// Crawl holds traversal and politeness settings.
	Crawl CrawlSection `yaml:"crawl,omitempty"`

	// Output holds record and report destinations.
	Output OutputSection `yaml:"output,omitempty"`

	// Login holds overrides for the login flow. Credentials themselves
	// are never read from this file.
	Login LoginSection `yaml:"login,omitempty"`
}

// CrawlSection configures traversal and the HTTP client.
type CrawlSection struct {
	Concurrency int           `yaml:"concurrency,omitempty"`
	Rate        float64       `yaml:"rate,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	// Retries is a pointer so that an explicit 0 disables retries.
	Retries       *int   `yaml:"retries,omitempty"`
	MaxDepth      int    `yaml:"maxDepth,omitempty"`
	MaxNodes      int    `yaml:"maxNodes,omitempty"`
	UserAgent     string `yaml:"userAgent,omitempty"`
	Proxy         string `yaml:"proxy,omitempty"`
	RespectRobots *bool  `yaml:"respectRobots,omitempty"`
}

// OutputSection configures where results go.
type OutputSection struct {
	Dir    string `yaml:"dir,omitempty"`
	SQLite *bool  `yaml:"sqlite,omitempty"`
	DBDir  string `yaml:"dbDir,omitempty"`
	Report string `yaml:"report,omitempty"`
}

// LoginSection configures the login form.
type LoginSection struct {
	URL           string `yaml:"url,omitempty"`
	CheckSelector string `yaml:"checkSelector,omitempty"`
}

// Apply overrides c with every field set in the file.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	setString(&c.RootURL, f.Root)
	setString(&c.BaseURL, f.BaseURL)

	if f.Crawl.Concurrency != 0 {
		c.Concurrency = f.Crawl.Concurrency
	}
	if f.Crawl.Rate != 0 {
		c.RequestsPerSecond = f.Crawl.Rate
	}
	if f.Crawl.Timeout != 0 {
		c.Timeout = f.Crawl.Timeout
	}
	if f.Crawl.Retries != nil {
		c.Retries = *f.Crawl.Retries
	}
	if f.Crawl.MaxDepth != 0 {
		c.MaxDepth = f.Crawl.MaxDepth
	}
	if f.Crawl.MaxNodes != 0 {
		c.MaxNodes = f.Crawl.MaxNodes
	}
	setString(&c.UserAgent, f.Crawl.UserAgent)
	setString(&c.ProxyAddress, f.Crawl.Proxy)
	if f.Crawl.RespectRobots != nil {
		c.RespectRobots = *f.Crawl.RespectRobots
	}

	setString(&c.OutputDir, f.Output.Dir)
	if f.Output.SQLite != nil {
		c.SQLite = *f.Output.SQLite
	}
	setString(&c.DBDir, f.Output.DBDir)
	setString(&c.ReportFile, f.Output.Report)

	setString(&c.LoginURL, f.Login.URL)
	setString(&c.LoginCheckSelector, f.Login.CheckSelector)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
