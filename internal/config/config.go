// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and FBSTATS_ env vars on top.
// - Durations are stored as integer units to keep env overrides simple.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"time"
)

// Source category names, mirrored from the domain model to keep config free of domain imports.
const (
	SourceStandard = "standard"
	SourceShooting = "shooting"
	SourcePassing  = "passing"
	SourceMisc     = "misc"
)

const fbrefBig5 = "https://fbref.com/en/comps/Big5/%s/players/Big-5-European-Leagues-Stats"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// AllowedOrigin is echoed in Access-Control-Allow-Origin.
	AllowedOrigin string `koanf:"allowed_origin"`

	// CachePath is the JSON file holding the last successful record set.
	CachePath string `koanf:"cache_path"`

	// CacheTTLMinutes bounds how long the cache file counts as fresh.
	CacheTTLMinutes int `koanf:"cache_ttl_minutes"`

	// FetchWaitSeconds bounds the wait for a table container to appear.
	FetchWaitSeconds int `koanf:"fetch_wait_seconds"`

	// FetchPollIntervalMS is the pause between polls for a missing container.
	FetchPollIntervalMS int `koanf:"fetch_poll_interval_ms"`

	// FetchConcurrency caps parallel category fetches within one run.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// CategoryDelayMS is the polite pause before each category fetch after the first.
	CategoryDelayMS int `koanf:"category_delay_ms"`

	// UserAgent is sent by the page fetcher.
	UserAgent string `koanf:"user_agent"`

	// Sources maps category names to their page URL.
	Sources map[string]string `koanf:"sources"`

	// CloudbetAPIKey authenticates the events proxy. Empty disables it.
	CloudbetAPIKey string `koanf:"cloudbet_api_key"`

	// CloudbetBaseURL is the odds API origin.
	CloudbetBaseURL string `koanf:"cloudbet_base_url"`

	// EventsWindowHours is the look-ahead window for upcoming events.
	EventsWindowHours int `koanf:"events_window_hours"`

	// EventLeagues lists competition keys queried by the events proxy.
	EventLeagues []string `koanf:"event_leagues"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":5000",
		AllowedOrigin:       "*",
		CachePath:           "fbref_stats.json",
		CacheTTLMinutes:     24 * 60,
		FetchWaitSeconds:    20,
		FetchPollIntervalMS: 1000,
		FetchConcurrency:    1,
		CategoryDelayMS:     2000,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Sources:           DefaultSources(),
		CloudbetAPIKey:    "",
		CloudbetBaseURL:   "https://sports-api.cloudbet.com",
		EventsWindowHours: 96,
		EventLeagues: []string{
			"soccer-france-ligue-1",
			"soccer-england-premier-league",
			"soccer-international-clubs-uefa-champions-league",
			"soccer-international-clubs-uefa-europa-league",
			"soccer-international-clubs-t6eeb-uefa-europa-conference-league",
			"soccer-germany-bundesliga",
			"soccer-italy-serie-a",
			"soccer-spain-laliga",
			"soccer-serbia-superliga",
		},
	}
}

// DefaultSources returns the fbref Big-5 player pages per category.
func DefaultSources() map[string]string {
	return map[string]string{
		SourceStandard: fmt.Sprintf(fbrefBig5, "stats"),
		SourceShooting: fmt.Sprintf(fbrefBig5, "shooting"),
		SourcePassing:  fmt.Sprintf(fbrefBig5, "passing"),
		SourceMisc:     fmt.Sprintf(fbrefBig5, "misc"),
	}
}

// CacheTTL returns the cache freshness window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// FetchWait returns the container wait bound.
func (c *Config) FetchWait() time.Duration {
	return time.Duration(c.FetchWaitSeconds) * time.Second
}

// FetchPollInterval returns the pause between container polls.
func (c *Config) FetchPollInterval() time.Duration {
	return time.Duration(c.FetchPollIntervalMS) * time.Millisecond
}

// CategoryDelay returns the pause between category fetches.
func (c *Config) CategoryDelay() time.Duration {
	return time.Duration(c.CategoryDelayMS) * time.Millisecond
}

// EventsWindow returns the events look-ahead window.
func (c *Config) EventsWindow() time.Duration {
	return time.Duration(c.EventsWindowHours) * time.Hour
}
