package fetcher

import (
	"time"

	"github.com/okian/fbstats/pkg/logger"
)

// Defaults for a Fetcher.
const (
	DefaultWait           = 20 * time.Second
	DefaultPollInterval   = time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxRedirects = 10
)

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithWait bounds how long Fetch waits for the container to appear.
func WithWait(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.wait = d
		}
	}
}

// WithPollInterval sets the pause between page polls.
func WithPollInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.poll = d
		}
	}
}

// WithRequestTimeout bounds a single page request.
func WithRequestTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.requestTimeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger used by sessions.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}
