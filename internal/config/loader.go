package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "FBSTATS_"
	envFileVar = "FBSTATS_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FBSTATS_CONFIG is set
//  3. env (prefix FBSTATS_)
func Load(_ context.Context) (*Config, error) {
	return load(os.Getenv(envFileVar), true)
}

// LoadFile builds a Config from defaults and the YAML file at path, ignoring env vars.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	if withEnv {
		// FBSTATS_CACHE_PATH -> cache_path; underscores are kept to match koanf tags.
		// FBSTATS_EVENT_LEAGUES is a comma separated list.
		envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
			key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
			if key == "event_leagues" {
				return key, splitList(value)
			}
			return key, value
		})
		if err := k.Load(envProvider, nil); err != nil {
			return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
		}
	}

	cfg := New()
	if k.Exists("event_leagues") {
		cfg.EventLeagues = nil
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CachePath == "":
		return fmt.Errorf("%w: cache_path must not be empty", ErrInvalidConfig)
	case c.CacheTTLMinutes <= 0:
		return fmt.Errorf("%w: cache_ttl_minutes must be positive", ErrInvalidConfig)
	case c.FetchWaitSeconds <= 0:
		return fmt.Errorf("%w: fetch_wait_seconds must be positive", ErrInvalidConfig)
	case c.FetchPollIntervalMS <= 0:
		return fmt.Errorf("%w: fetch_poll_interval_ms must be positive", ErrInvalidConfig)
	case c.FetchConcurrency < 1:
		return fmt.Errorf("%w: fetch_concurrency must be at least 1", ErrInvalidConfig)
	case c.CategoryDelayMS < 0:
		return fmt.Errorf("%w: category_delay_ms must not be negative", ErrInvalidConfig)
	}
	for _, name := range []string{SourceStandard, SourceShooting, SourcePassing, SourceMisc} {
		if strings.TrimSpace(c.Sources[name]) == "" {
			return fmt.Errorf("%w: sources.%s must be set", ErrInvalidConfig, name)
		}
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
