package source

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/libero/pkg/logger"
)

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithRateLimit throttles requests to perSec with the given burst.
// A non-positive rate disables throttling.
func WithRateLimit(perSec float64, burst int) Option {
	return func(f *Fetcher) {
		if perSec <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSec), max(burst, 1))
	}
}

// WithTimeout bounds a single request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodyBytes sets the largest upstream body accepted; longer bodies fail
// with ErrBodyTooLarge.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}
