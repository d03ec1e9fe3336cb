package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/fbstats/internal/adapters/fetcher"
	"github.com/okian/fbstats/internal/adapters/repository"
	service "github.com/okian/fbstats/internal/app"
	"github.com/okian/fbstats/internal/domain/model"
	"github.com/okian/fbstats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		panic(err)
	}
}

func newService(t *testing.T, f service.PageFetcher, opts ...service.Option) (*service.Service, *repository.FileStore) {
	t.Helper()
	store := repository.NewFileStore(filepath.Join(t.TempDir(), "fbref_stats.json"))
	base := []service.Option{
		service.WithStore(store),
		service.WithFetcher(f),
		service.WithSources(fixtureSources()),
		service.WithCategoryDelay(0),
	}
	return service.New(append(base, opts...)...), store
}

func pipelineErr(err error) *service.PipelineError {
	var pe *service.PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

func TestService_Stats(t *testing.T) {
	Convey("Given an empty cache and four category pages", t, func() {
		ctx := context.Background()
		f := newFakeFetcher(fixturePages())
		svc, store := newService(t, f)

		Convey("When stats are requested", func() {
			records, err := svc.Stats(ctx)

			Convey("Then the pipeline produces the unified records", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)

				smith := records[0]
				So(smith.Key(), ShouldResemble, model.PlayerKey{Player: "A. Smith", Squad: "X FC"})
				So(smith.Comp, ShouldEqual, "eng Premier League")
				So(smith.Gls90, ShouldEqual, 0.5)
				So(smith.Sh90, ShouldEqual, 2.0)
				So(smith.SoT90, ShouldEqual, 0.8)
				So(smith.PassAtt90, ShouldEqual, 30.0)
				So(smith.Fls90, ShouldEqual, 1.0)
				So(smith.Fld90, ShouldEqual, 0.5)

				two := records[1]
				So(two.Player, ShouldEqual, "D. Two")
				So(two.Gls90, ShouldEqual, 0.5)
				So(two.Sh, ShouldEqual, 0.0)
				So(two.Att, ShouldEqual, 0.0)
			})

			Convey("And players without playing time are dropped", func() {
				for _, r := range records {
					So(r.Nineties, ShouldBeGreaterThan, 0)
					So(r.Player, ShouldNotEqual, "B. Bench")
					So(r.Player, ShouldNotEqual, "C. Misc")
					So(r.Player, ShouldNotEqual, "Player")
				}
			})

			Convey("And one session was opened and closed", func() {
				So(f.opens.Load(), ShouldEqual, 1)
				So(f.closes.Load(), ShouldEqual, 1)
				So(f.fetches.Load(), ShouldEqual, 4)
			})

			Convey("And the cache now holds the records", func() {
				cached, err := store.Read(ctx)
				So(err, ShouldBeNil)
				So(cached, ShouldResemble, records)
			})

			Convey("And a second request is served from the cache", func() {
				again, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, records)
				So(f.opens.Load(), ShouldEqual, 1)
				So(f.fetches.Load(), ShouldEqual, 4)
			})

			Convey("And run bookkeeping is updated", func() {
				stats := svc.GetStats()
				So(stats["runs"], ShouldEqual, int64(1))
				So(stats["failures"], ShouldEqual, int64(0))
				So(stats["last_records"], ShouldEqual, 2)
				So(stats["last_run_id"], ShouldNotBeEmpty)
				So(stats["last_success"], ShouldNotBeNil)
			})
		})

		Convey("When the same pages are scraped concurrently", func() {
			parallel, _ := newService(t, newFakeFetcher(fixturePages()), service.WithConcurrency(4))
			sequential, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			concurrent, err := parallel.Stats(ctx)

			Convey("Then the output is identical", func() {
				So(err, ShouldBeNil)
				So(concurrent, ShouldResemble, sequential)
			})
		})
	})

	Convey("Given a stale cache", t, func() {
		ctx := context.Background()
		f := newFakeFetcher(fixturePages())
		svc, store := newService(t, f)
		So(store.Write(ctx, []model.Record{{Player: "Old", Squad: "Old FC", Nineties: 1}}), ShouldBeNil)
		old := time.Now().Add(-25 * time.Hour)
		So(os.Chtimes(store.Path(), old, old), ShouldBeNil)

		Convey("Then stats are scraped again and the cache replaced", func() {
			records, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			So(records[0].Player, ShouldEqual, "A. Smith")
			So(f.opens.Load(), ShouldEqual, 1)

			cached, err := store.Read(ctx)
			So(err, ShouldBeNil)
			So(cached, ShouldHaveLength, 2)
		})
	})

	Convey("Given a corrupt cache file", t, func() {
		ctx := context.Background()
		f := newFakeFetcher(fixturePages())
		svc, store := newService(t, f)
		So(os.WriteFile(store.Path(), []byte("[{"), 0o600), ShouldBeNil)

		Convey("Then the corrupt file is treated as a miss and refreshed", func() {
			records, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 2)
			So(f.opens.Load(), ShouldEqual, 1)
		})
	})
}

func TestService_Failures(t *testing.T) {
	Convey("Given a previous cache that has gone stale", t, func() {
		ctx := context.Background()
		f := newFakeFetcher(fixturePages())
		svc, store := newService(t, f)
		previous := []model.Record{{Player: "Old", Squad: "Old FC", Nineties: 1}}
		So(store.Write(ctx, previous), ShouldBeNil)
		old := time.Now().Add(-25 * time.Hour)
		So(os.Chtimes(store.Path(), old, old), ShouldBeNil)
		before, err := os.ReadFile(store.Path())
		So(err, ShouldBeNil)

		assertCacheUntouched := func() {
			after, err := os.ReadFile(store.Path())
			So(err, ShouldBeNil)
			So(string(after), ShouldEqual, string(before))
			info, err := os.Stat(store.Path())
			So(err, ShouldBeNil)
			So(info.ModTime().Unix(), ShouldEqual, old.Unix())
		}

		Convey("When the shooting page never renders", func() {
			f.errs[model.Shooting.ContainerID()] = fetcher.ErrFetchTimeout
			_, err := svc.Stats(ctx)

			Convey("Then a fetch stage error names the category", func() {
				pe := pipelineErr(err)
				So(pe, ShouldNotBeNil)
				So(pe.Stage, ShouldEqual, service.StageFetch)
				So(pe.Category, ShouldEqual, model.Shooting)
				So(pe.Code(), ShouldEqual, "pipeline_fetch")
				So(errors.Is(err, service.ErrPipeline), ShouldBeTrue)
				So(errors.Is(err, fetcher.ErrFetchTimeout), ShouldBeTrue)
			})

			Convey("And the cache and session are handled", func() {
				assertCacheUntouched()
				So(f.closes.Load(), ShouldEqual, f.opens.Load())
			})

			Convey("And the failure is counted", func() {
				So(svc.GetStats()["failures"], ShouldEqual, int64(1))
				So(svc.GetStats()["last_error"], ShouldContainSubstring, "shooting")
			})
		})

		Convey("When the passing container holds no table", func() {
			f.pages[model.Passing.ContainerID()] = "<p>nothing here</p>"
			_, err := svc.Stats(ctx)

			Convey("Then it fails at extract", func() {
				pe := pipelineErr(err)
				So(pe, ShouldNotBeNil)
				So(pe.Stage, ShouldEqual, service.StageExtract)
				So(pe.Category, ShouldEqual, model.Passing)
				assertCacheUntouched()
			})
		})

		Convey("When a table has no Squad column", func() {
			f.pages[model.Misc.ContainerID()] = tableHTML(nil,
				[]string{"Player", "Team", "Fls"},
				[]string{"A. Smith", "X FC", "10"})
			_, err := svc.Stats(ctx)

			Convey("Then it fails at normalize", func() {
				pe := pipelineErr(err)
				So(pe, ShouldNotBeNil)
				So(pe.Stage, ShouldEqual, service.StageNormalize)
				So(errors.Is(err, service.ErrMissingIdentity), ShouldBeTrue)
				assertCacheUntouched()
			})
		})

		Convey("When nobody has playing time", func() {
			f.pages[model.Standard.ContainerID()] = standardPage(
				[]string{"B. Bench", "fr FRA", "GK", "Y FC", "fr Ligue 1", "30-001", "0", "0", "0"},
			)
			_, err := svc.Stats(ctx)

			Convey("Then it fails at derive and nothing is cached", func() {
				pe := pipelineErr(err)
				So(pe, ShouldNotBeNil)
				So(pe.Stage, ShouldEqual, service.StageDerive)
				So(errors.Is(err, service.ErrNoRecords), ShouldBeTrue)
				assertCacheUntouched()
			})
		})

		Convey("When a source url is missing", func() {
			bare := service.New(
				service.WithStore(store),
				service.WithFetcher(f),
				service.WithSources(map[model.Category]string{model.Standard: "https://example.test/standard"}),
			)
			_, err := bare.Stats(ctx)

			Convey("Then it fails before opening a session", func() {
				pe := pipelineErr(err)
				So(pe, ShouldNotBeNil)
				So(pe.Stage, ShouldEqual, service.StageFetch)
				So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
				So(f.opens.Load(), ShouldEqual, 0)
			})
		})

		Convey("When the session cannot be opened", func() {
			f.openErr = errors.New("browser unavailable")
			_, err := svc.Stats(ctx)

			Convey("Then it fails at fetch", func() {
				pe := pipelineErr(err)
				So(pe, ShouldNotBeNil)
				So(pe.Stage, ShouldEqual, service.StageFetch)
				So(pe.Category, ShouldEqual, model.Category(""))
			})
		})
	})

	Convey("Given a store that cannot be written", t, func() {
		f := newFakeFetcher(fixturePages())
		svc := service.New(
			service.WithStore(failingStore{}),
			service.WithFetcher(f),
			service.WithSources(fixtureSources()),
			service.WithCategoryDelay(0),
		)

		Convey("Then the run fails at persist", func() {
			_, err := svc.Stats(context.Background())
			pe := pipelineErr(err)
			So(pe, ShouldNotBeNil)
			So(pe.Stage, ShouldEqual, service.StagePersist)
			So(errors.Is(err, errDiskFull), ShouldBeTrue)
		})
	})

	Convey("Given a service without collaborators", t, func() {
		Convey("Then Stats reports it is not configured", func() {
			_, err := service.New().Stats(context.Background())
			So(err, ShouldEqual, service.ErrNotConfigured)
		})
	})
}

func TestService_SingleFlight(t *testing.T) {
	Convey("Given several callers missing the cache at once", t, func() {
		f := newFakeFetcher(fixturePages())
		f.gate = make(chan struct{})
		svc, _ := newService(t, f)

		const callers = 5
		var wg sync.WaitGroup
		results := make([][]model.Record, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = svc.Stats(context.Background())
			}()
		}

		// Let every caller join the flight before the scrape completes.
		deadline := time.Now().Add(2 * time.Second)
		for f.fetches.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		time.Sleep(50 * time.Millisecond)
		close(f.gate)
		wg.Wait()

		Convey("Then one scrape serves them all", func() {
			So(f.opens.Load(), ShouldEqual, 1)
			for i := 0; i < callers; i++ {
				So(errs[i], ShouldBeNil)
				So(results[i], ShouldHaveLength, 2)
			}
		})
	})

	Convey("Given a caller that gives up while a scrape is running", t, func() {
		f := newFakeFetcher(fixturePages())
		f.gate = make(chan struct{})
		svc, store := newService(t, f)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := svc.Stats(ctx)

		Convey("Then the caller gets its context error", func() {
			So(err, ShouldEqual, context.DeadlineExceeded)
		})

		Convey("And the scrape still fills the cache", func() {
			close(f.gate)
			deadline := time.Now().Add(2 * time.Second)
			var cached []model.Record
			for time.Now().Before(deadline) {
				if cached, err = store.Read(context.Background()); err == nil {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			So(cached, ShouldHaveLength, 2)
		})
	})
}
