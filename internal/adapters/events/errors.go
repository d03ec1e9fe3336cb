package events

import "errors"

// Sentinel kinds for events proxy errors.
var (
	ErrAPIKeyMissing = errors.New("API key is not configured.") //nolint:revive,stylecheck // surfaced verbatim to clients
	ErrUpstream      = errors.New("events upstream request failed")
)
