package repository

import "time"

// DefaultTTL is how long a written cache counts as fresh.
const DefaultTTL = 24 * time.Hour

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithTTL sets the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(s *FileStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}
