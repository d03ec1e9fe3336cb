package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/fbstats/internal/adapters/fetcher"
	"github.com/okian/fbstats/internal/adapters/repository"
	"github.com/okian/fbstats/internal/domain/model"
)

// tableHTML renders a stats table with a two-row header when groups is set.
func tableHTML(groups, labels []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<table><thead>")
	if groups != nil {
		b.WriteString("<tr>")
		for _, g := range groups {
			b.WriteString("<th>" + g + "</th>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("<tr>")
	for _, l := range labels {
		b.WriteString("<th>" + l + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, r := range rows {
		b.WriteString("<tr>")
		for _, c := range r {
			b.WriteString("<td>" + c + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func standardPage(rows ...[]string) string {
	return tableHTML(
		[]string{"", "", "", "", "", "", "Playing Time", "Performance", "Performance"},
		[]string{"Player", "Nation", "Pos", "Squad", "Comp", "Age", "90s", "Gls", "Ast"},
		rows...)
}

// fixturePages is a small Big-5 snapshot. The misc table ships inside a
// comment the way the site serves it.
func fixturePages() map[string]string {
	return map[string]string{
		model.Standard.ContainerID(): standardPage(
			[]string{"A. Smith", "eng ENG", "FW", "X FC", "eng Premier League", "25-100", "10", "5", "0"},
			[]string{"B. Bench", "fr FRA", "GK", "Y FC", "fr Ligue 1", "30-001", "0", "0", "0"},
			[]string{"Player", "Nation", "Pos", "Squad", "Comp", "Age", "90s", "Gls", "Ast"},
			[]string{"D. Two", "es ESP", "MF", "Z FC", "es La Liga", "22-200", "2", "1", "1"},
		),
		model.Shooting.ContainerID(): tableHTML(
			[]string{"", "", "", "Standard", "Standard"},
			[]string{"Player", "Squad", "Age", "Sh", "SoT"},
			[]string{"A. Smith", "X FC", "25-100", "20", "8"},
		),
		model.Passing.ContainerID(): tableHTML(
			[]string{"", "", "", "Total", "Total"},
			[]string{"Player", "Squad", "Age", "Cmp", "Att"},
			[]string{"A. Smith", "X FC", "25-100", "250", "300"},
		),
		model.Misc.ContainerID(): "<!--\n" + tableHTML(
			[]string{"", "", "", "Performance", "Performance"},
			[]string{"Player", "Squad", "Age", "Fls", "Fld"},
			[]string{"A. Smith", "X FC", "25-100", "10", "5"},
			[]string{"C. Misc", "W FC", "19-050", "3", "4"},
		) + "\n-->",
	}
}

func fixtureSources() map[model.Category]string {
	out := make(map[model.Category]string, len(model.Categories))
	for _, c := range model.Categories {
		out[c] = "https://example.test/" + c.String()
	}
	return out
}

// fakeFetcher serves markup by container id and counts session lifecycle calls.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	gate  chan struct{}

	opens   atomic.Int32
	closes  atomic.Int32
	fetches atomic.Int32
	openErr error
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, errs: map[string]error{}}
}

func (f *fakeFetcher) Open(context.Context) (fetcher.Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens.Add(1)
	return &fakeSession{f: f}, nil
}

type fakeSession struct{ f *fakeFetcher }

func (s *fakeSession) Fetch(ctx context.Context, _, containerID string) (string, error) {
	s.f.fetches.Add(1)
	if s.f.gate != nil {
		select {
		case <-s.f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	if err := s.f.errs[containerID]; err != nil {
		return "", err
	}
	markup, ok := s.f.pages[containerID]
	if !ok {
		return "", fetcher.ErrFetchTimeout
	}
	return markup, nil
}

func (s *fakeSession) Close() error {
	s.f.closes.Add(1)
	return nil
}

// failingStore never has anything cached and refuses writes.
type failingStore struct{}

var errDiskFull = errors.New("disk full")

func (failingStore) Read(context.Context) ([]model.Record, error) {
	return nil, repository.ErrCacheMiss
}

func (failingStore) Write(context.Context, []model.Record) error { return errDiskFull }
