// Package events proxies upcoming fixtures for a fixed set of leagues from
// the Cloudbet odds API, keeping the API key on the server.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/okian/fbstats/pkg/logger"
	"github.com/okian/fbstats/pkg/metrics"
)

const outrightType = "EVENT_TYPE_OUTRIGHT"

// Competition is one league payload as returned upstream. Fields are kept
// verbatim apart from the filtered events list.
type Competition map[string]json.RawMessage

// Events returns the competition's events, or nil if absent.
func (c Competition) Events() []json.RawMessage {
	var evs []json.RawMessage
	if raw, ok := c["events"]; ok {
		_ = json.Unmarshal(raw, &evs)
	}
	return evs
}

// Client queries the odds API.
type Client struct {
	apiKey  string
	baseURL string
	leagues []string
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
	log     logger.Logger
	http    *resty.Client
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		window:  DefaultWindow,
		timeout: DefaultTimeout,
		now:     time.Now,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json")
	return c
}

// Competitions fetches every configured league concurrently and returns the
// ones that still have events once outrights are removed. Leagues that fail
// upstream are logged and skipped.
func (c *Client) Competitions(ctx context.Context) ([]Competition, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	from := c.now().Unix()
	to := from + int64(c.window/time.Second)

	results := make([]Competition, len(c.leagues))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range c.leagues {
		i, key := i, key
		g.Go(func() error {
			comp, err := c.fetchLeague(gctx, key, from, to)
			if err != nil {
				metrics.RecordEventLeagueError()
				c.log.Warn(ctx, "league skipped", logger.String("league", key), logger.Error(err))
				return nil
			}
			results[i] = comp
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]Competition, 0, len(results))
	for _, comp := range results {
		if comp != nil {
			out = append(out, comp)
		}
	}
	metrics.UpdateEventCompetitions(len(out))
	return out, nil
}

func (c *Client) fetchLeague(ctx context.Context, key string, from, to int64) (Competition, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.apiKey).
		SetPathParam("key", key).
		SetQueryParams(map[string]string{
			"from":    strconv.FormatInt(from, 10),
			"to":      strconv.FormatInt(to, 10),
			"players": "true",
			"limit":   strconv.Itoa(pageLimit),
		}).
		Get("/pub/v2/odds/competitions/{key}")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %s", ErrUpstream, resp.Status())
	}

	var comp Competition
	if err := json.Unmarshal(resp.Body(), &comp); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrUpstream, err)
	}
	return withoutOutrights(comp)
}

// withoutOutrights drops outright events. A competition left with no
// events yields nil.
func withoutOutrights(comp Competition) (Competition, error) {
	kept := make([]json.RawMessage, 0)
	for _, ev := range comp.Events() {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(ev, &head); err != nil {
			continue
		}
		if head.Type == outrightType {
			continue
		}
		kept = append(kept, ev)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return nil, fmt.Errorf("%w: encode events: %w", ErrUpstream, err)
	}
	comp["events"] = raw
	return comp, nil
}
