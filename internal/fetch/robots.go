package fetch

import (
	"context"
	"net/url"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/temoto/robotstxt"
)

// RobotsCache fetches and caches robots.txt per scheme and host.
type RobotsCache struct {
	http      *resty.Client
	userAgent string

	mu     sync.Mutex
	robots map[string]*robotstxt.RobotsData
}

func newRobotsCache(http *resty.Client, userAgent string) *RobotsCache {
	return &RobotsCache{
		http:      http,
		userAgent: userAgent,
		robots:    make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the user agent may fetch rawURL. A robots.txt
// that cannot be fetched allows everything.
func (rc *RobotsCache) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	base := u.Scheme + "://" + u.Host

	rc.mu.Lock()
	defer rc.mu.Unlock()

	data, ok := rc.robots[base]
	if !ok {
		data = rc.load(ctx, base)
		if ctx.Err() == nil {
			rc.robots[base] = data
		}
	}
	if data == nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, rc.userAgent)
}

func (rc *RobotsCache) load(ctx context.Context, base string) *robotstxt.RobotsData {
	resp, err := rc.http.R().SetContext(ctx).Get(base + "/robots.txt")
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	if err != nil {
		return nil
	}
	return data
}
