package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/fbstats/internal/adapters/events"
	"github.com/okian/fbstats/internal/adapters/fetcher"
	"github.com/okian/fbstats/internal/adapters/http/api"
	"github.com/okian/fbstats/internal/adapters/http/swagger"
	"github.com/okian/fbstats/internal/adapters/repository"
	app "github.com/okian/fbstats/internal/app"
	"github.com/okian/fbstats/internal/config"
	"github.com/okian/fbstats/internal/domain/model"
	"github.com/okian/fbstats/pkg/logger"
	"github.com/okian/fbstats/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	// A cold /api/stats request scrapes four pages before answering.
	writeTimeout = 5 * time.Minute

	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return
	}
	applyLogLevel(ctx, log, cfg.LogLevel)

	// Re-apply the log level when the config file changes.
	if path := os.Getenv("FBSTATS_CONFIG"); path != "" {
		go func() {
			err := config.Watch(ctx, path, func(c *config.Config) {
				applyLogLevel(ctx, log, c.LogLevel)
			})
			if err != nil {
				log.Warn(ctx, "config watch stopped", logger.Error(err))
			}
		}()
	}

	go startSystemMetricsUpdater(ctx)

	mux, _ := buildMux(ctx, cfg, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("cache_path", cfg.CachePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildMux wires the collaborators from cfg and registers every route.
func buildMux(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.ServeMux, *app.Service) {
	store := repository.NewFileStore(cfg.CachePath, repository.WithTTL(cfg.CacheTTL()))

	pages := fetcher.New(
		fetcher.WithWait(cfg.FetchWait()),
		fetcher.WithPollInterval(cfg.FetchPollInterval()),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithLogger(log.Named("fetcher")),
	)

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithFetcher(pages),
		app.WithSources(categorySources(cfg.Sources)),
		app.WithConcurrency(cfg.FetchConcurrency),
		app.WithCategoryDelay(cfg.CategoryDelay()),
	)

	odds := events.New(
		events.WithAPIKey(cfg.CloudbetAPIKey),
		events.WithBaseURL(cfg.CloudbetBaseURL),
		events.WithLeagues(cfg.EventLeagues),
		events.WithWindow(cfg.EventsWindow()),
		events.WithLogger(log.Named("events")),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, odds, svc, api.WithAllowedOrigin(cfg.AllowedOrigin)).Register(ctx, mux)
	return mux, svc
}

// categorySources keeps the configured URLs of known categories.
func categorySources(in map[string]string) map[model.Category]string {
	out := make(map[model.Category]string, len(in))
	for name, url := range in {
		if c := model.Category(name); c.Valid() {
			out[c] = url
		}
	}
	return out
}

// applyLogLevel sets the global level, falling back to info on invalid input.
func applyLogLevel(ctx context.Context, log logger.Logger, level string) {
	if err := logger.SetLevelString(level); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
