// Package fetcher loads rendered pages and returns the markup of a single
// container element. A session owns one HTTP client with its own cookie jar,
// so cookies set by one category page are sent with the next.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"github.com/okian/fbstats/pkg/logger"
	"github.com/okian/fbstats/pkg/metrics"
)

// Session fetches container markup. It must be closed when the run ends.
type Session interface {
	// Fetch loads url and returns the inner HTML of the element whose id is
	// containerID, waiting until it appears or the wait bound elapses.
	Fetch(ctx context.Context, url, containerID string) (string, error)
	Close() error
}

// Fetcher opens page sessions.
type Fetcher struct {
	wait           time.Duration
	poll           time.Duration
	requestTimeout time.Duration
	userAgent      string
	log            logger.Logger
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		wait:           DefaultWait,
		poll:           DefaultPollInterval,
		requestTimeout: DefaultRequestTimeout,
		userAgent:      DefaultUserAgent,
		log:            logger.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open starts a session with a fresh client and cookie jar.
func (f *Fetcher) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: cookie jar: %w", ErrFetchFailed, err)
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", f.userAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	client.SetTimeout(f.requestTimeout)
	client.SetRetryCount(retries(f.wait, f.poll))
	client.SetRetryWaitTime(f.poll)
	client.SetRetryMaxWaitTime(f.poll)

	return &session{
		client: client,
		wait:   f.wait,
		log:    f.log,
	}, nil
}

// retries is the number of extra polls that fit in the wait bound.
func retries(wait, poll time.Duration) int {
	n := int(wait / poll)
	if wait%poll != 0 {
		n++
	}
	return max(n, 1)
}

type session struct {
	mu     sync.Mutex
	client *resty.Client
	wait   time.Duration
	log    logger.Logger
	closed bool
}

func (s *session) Fetch(ctx context.Context, url, containerID string) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", ErrSessionClosed
	}

	// The wait bound starts once the first response is in, like a browser
	// waiting for a selector after navigation.
	waitCtx, cancel := context.WithTimeout(ctx, s.client.GetClient().Timeout+s.wait)
	defer cancel()

	var (
		markup string
		found  bool
		polls  int
	)
	resp, err := s.client.R().
		SetContext(waitCtx).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			polls++
			if err != nil {
				return true
			}
			if r.StatusCode() >= 500 || r.StatusCode() == 429 {
				return true
			}
			if !r.IsSuccess() {
				return false
			}
			markup, found = locate(r.String(), containerID)
			return !found
		}).
		Get(url)

	switch {
	case ctx.Err() != nil:
		return "", ctx.Err()
	case found:
		s.log.Debug(ctx, "container found",
			logger.String("url", url), logger.String("container", containerID), logger.Int("polls", polls))
		return markup, nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(waitCtx.Err(), context.DeadlineExceeded):
		metrics.RecordErrorByComponent("fetcher", "timeout")
		return "", fmt.Errorf("%w: #%s at %s", ErrFetchTimeout, containerID, url)
	case err != nil:
		metrics.RecordErrorByComponent("fetcher", "transport")
		return "", fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, err)
	case !resp.IsSuccess():
		metrics.RecordErrorByComponent("fetcher", "status")
		return "", fmt.Errorf("%w: %s: status %d", ErrFetchFailed, url, resp.StatusCode())
	default:
		metrics.RecordErrorByComponent("fetcher", "timeout")
		return "", fmt.Errorf("%w: #%s at %s after %d polls", ErrFetchTimeout, containerID, url, polls)
	}
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.GetClient().CloseIdleConnections()
	return nil
}

// locate returns the inner HTML of the element with the given id. The site
// serves some containers inside comments that client scripts unwrap, so
// comment nodes mentioning the id are parsed as well.
func locate(page, id string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", false
	}
	selector := "#" + id

	if sel := doc.Find(selector).First(); sel.Length() > 0 {
		out, err := sel.Html()
		return out, err == nil
	}

	needle := `id="` + id + `"`
	var (
		out   string
		found bool
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.CommentNode && strings.Contains(n.Data, needle) {
			inner, err := goquery.NewDocumentFromReader(strings.NewReader(n.Data))
			if err == nil {
				if sel := inner.Find(selector).First(); sel.Length() > 0 {
					out, err = sel.Html()
					found = err == nil
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return out, found
}
