package fetcher

import "errors"

// Sentinel kinds for fetch errors.
var (
	// ErrFetchTimeout means the container did not appear within the wait bound.
	ErrFetchTimeout = errors.New("timed out waiting for container")
	// ErrFetchFailed means the page could not be loaded.
	ErrFetchFailed = errors.New("page fetch failed")
	// ErrSessionClosed is returned by Fetch after Close.
	ErrSessionClosed = errors.New("fetch session closed")
)
