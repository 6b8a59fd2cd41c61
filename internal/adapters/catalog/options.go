package catalog

import (
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/foliolabs/folio/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client; tests inject fakes
// through this.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpc = doer
		}
	}
}

// WithTimeout sets the default HTTP client timeout. Ignored when a custom
// Doer is injected.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			if hc, ok := c.httpc.(*http.Client); ok {
				hc.Timeout = timeout
			}
		}
	}
}

// WithLookupTTL sets how long fuzzy lookup responses stay cached.
func WithLookupTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.lookupTTL = ttl
		}
	}
}

// WithLookupCacheSize bounds each lookup cache.
func WithLookupCacheSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.lookupCacheSize = size
		}
	}
}

// WithClock injects the cache time source.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
