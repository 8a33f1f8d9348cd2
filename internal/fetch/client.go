package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies the crawler to remote sites.
const DefaultUserAgent = "cragscan/1.0 (+https://github.com/nao1215/cragscan)"

// Default client settings.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultRetries           = 3
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 2
	defaultRetryWait         = 500 * time.Millisecond
	defaultRetryMaxWait      = 10 * time.Second
	maxRedirects             = 10
)

// Page is a fetched document.
type Page struct {
	// URL is the final URL after redirects.
	URL string

	// Status is the HTTP status code.
	Status int

	// Body is the raw response body.
	Body []byte
}

// Fetcher retrieves pages. Implementations must be safe for concurrent use.
type Fetcher interface {
	// Fetch issues a GET for rawURL.
	Fetch(ctx context.Context, rawURL string) (*Page, error)

	// Submit posts form as application/x-www-form-urlencoded to rawURL.
	Submit(ctx context.Context, rawURL string, form url.Values) (*Page, error)
}

// Client is a Fetcher backed by resty.
type Client struct {
	http   *resty.Client
	robots *RobotsCache
	logger *slog.Logger

	timeout       time.Duration
	retries       int
	retryWait     time.Duration
	rps           float64
	burst         int
	userAgent     string
	respectRobots bool
	proxyAddress  string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithRetryWait sets the initial backoff between retries.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		c.retryWait = d
	}
}

// WithRate sets the per-host request rate. A non-positive rps disables
// rate limiting.
func WithRate(rps float64, burst int) Option {
	return func(c *Client) {
		c.rps = rps
		c.burst = burst
	}
}

// WithUserAgent sets the User-Agent header and the robots.txt agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRobots enables or disables robots.txt checks.
func WithRobots(respect bool) Option {
	return func(c *Client) {
		c.respectRobots = respect
	}
}

// WithProxy routes all requests through the SOCKS5 proxy at address.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithLogger sets the logger used for retries and resty diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client. It returns an error only for an invalid
// proxy address.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		logger:        slog.Default(),
		timeout:       DefaultTimeout,
		retries:       DefaultRetries,
		retryWait:     defaultRetryWait,
		rps:           DefaultRequestsPerSecond,
		burst:         DefaultBurst,
		userAgent:     DefaultUserAgent,
		respectRobots: true,
		limiters:      make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}

	client := resty.New()
	if c.proxyAddress != "" {
		transport, err := proxyTransport(c.proxyAddress)
		if err != nil {
			return nil, err
		}
		client.SetTransport(transport)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", c.userAgent)
	client.SetTimeout(c.timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	client.SetLogger(restyLogger{logger: c.logger})
	client.SetRetryCount(c.retries).
		SetRetryWaitTime(c.retryWait).
		SetRetryMaxWaitTime(defaultRetryMaxWait).
		AddRetryCondition(retryable).
		AddRetryHook(func(resp *resty.Response, err error) {
			c.logger.Debug("retrying request",
				"url", requestURL(resp),
				"status", statusOf(resp),
				"error", err)
		})
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.wait(req.Context(), req.URL)
	})

	c.http = client
	if c.respectRobots {
		c.robots = newRobotsCache(client, c.userAgent)
	}
	return c, nil
}

// retryable retries throttled and server-side failures. Transport errors
// are retried by resty itself.
func retryable(resp *resty.Response, err error) bool {
	if err != nil || resp == nil {
		return err != nil
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// wait blocks until the host of rawURL may be contacted again.
func (c *Client) wait(ctx context.Context, rawURL string) error {
	if c.rps <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return c.limiter(u.Host).Wait(ctx)
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		burst := c.burst
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(rate.Limit(c.rps), burst)
		c.limiters[host] = l
	}
	return l
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if c.robots != nil && !c.robots.Allowed(ctx, rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}
	resp, err := c.http.R().SetContext(ctx).Get(rawURL)
	return toPage(rawURL, resp, err)
}

// Submit implements Fetcher.
func (c *Client) Submit(ctx context.Context, rawURL string, form url.Values) (*Page, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		Post(rawURL)
	return toPage(rawURL, resp, err)
}

func toPage(rawURL string, resp *resty.Response, err error) (*Page, error) {
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	page := &Page{
		URL:    requestURL(resp),
		Status: resp.StatusCode(),
		Body:   resp.Body(),
	}
	if page.URL == "" {
		page.URL = rawURL
	}
	if page.Status >= http.StatusBadRequest {
		return page, &StatusError{URL: rawURL, Code: page.Status}
	}
	return page, nil
}

// requestURL returns the URL of the final request, after redirects.
func requestURL(resp *resty.Response) string {
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Request == nil {
		return ""
	}
	return resp.RawResponse.Request.URL.String()
}

func statusOf(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}

// restyLogger forwards resty's internal logging to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
