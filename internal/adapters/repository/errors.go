package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCorruptCache = errors.New("cache file is corrupt")
	ErrWriteCache   = errors.New("cache write failed")
)
