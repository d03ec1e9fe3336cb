package events

import (
	"time"

	"github.com/okian/fbstats/pkg/logger"
)

// Defaults for a Client.
const (
	DefaultBaseURL = "https://sports-api.cloudbet.com"
	DefaultWindow  = 96 * time.Hour
	DefaultTimeout = 15 * time.Second
	pageLimit      = 100
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithAPIKey sets the key sent as X-API-Key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL sets the odds API origin.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithLeagues sets the competition keys to query, in response order.
func WithLeagues(keys []string) Option {
	return func(c *Client) {
		if len(keys) > 0 {
			c.leagues = append([]string(nil), keys...)
		}
	}
}

// WithWindow sets how far ahead events are requested.
func WithWindow(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithTimeout bounds each upstream request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for skipped leagues.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
