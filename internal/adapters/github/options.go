package github

import (
	"net/http"

	"github.com/pixel-phantoms/hud/internal/domain/dedupe"
	"github.com/pixel-phantoms/hud/pkg/logger"
	"golang.org/x/time/rate"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for GitHub Enterprise or tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithToken sends an Authorization bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMaxPages caps how many pages one fetch reads.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithPerPage sets the page size (GitHub allows at most 100).
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= maxPerPage {
			c.perPage = n
		}
	}
}

// WithRequestsPerSecond throttles page requests. rps <= 0 disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithDeduperFactory sets how the per-fetch pull request seen-set is built.
func WithDeduperFactory(f func() dedupe.Deduper) Option {
	return func(c *Client) {
		if f != nil {
			c.newDeduper = f
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
