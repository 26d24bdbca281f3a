package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nubngpi/resultscraper/api"
	"github.com/nubngpi/resultscraper/cache"
	"github.com/nubngpi/resultscraper/config"
	"github.com/nubngpi/resultscraper/engine"
	"github.com/nubngpi/resultscraper/scraper"
	"github.com/nubngpi/resultscraper/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("resultscraper starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"baseURL", cfg.Scraper.BaseURL,
		"regulation", cfg.Scraper.Regulation,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Open the student store ───────────────────────────────────
	st, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("failed to open student store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// ── 4. Initialise scraper (launches browser) ────────────────────
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}
	defer sc.Close()

	// ── 4b. Initialise multi-engine dispatcher ─────────────────────
	if cfg.Engine.EnableMultiEngine {
		// FetchRod bypasses the dispatcher; engine/ never imports scraper/.
		httpEngine := engine.NewHTTPEngine(engine.HTTPEngineOptions{
			Proxy:         cfg.Browser.DefaultProxy,
			TextSelector:  cfg.Scraper.TextSelector,
			LoadingMarker: cfg.Scraper.LoadingMarker,
			Timeout:       cfg.Engine.HTTPTimeout,
		})
		rodEngine := engine.NewRodEngine(sc.FetchRod, engine.RodEngineOptions{
			LoadingMarker: cfg.Scraper.LoadingMarker,
		})
		rodStealthEngine := engine.NewRodEngine(sc.FetchRod, engine.RodEngineOptions{
			Stealth:       true,
			LoadingMarker: cfg.Scraper.LoadingMarker,
		})

		engines := []engine.Engine{httpEngine, rodEngine, rodStealthEngine}
		memory := engine.NewDomainMemory(24 * time.Hour)
		defer memory.Stop()
		dispatcher := engine.NewDispatcher(engines, cfg.Engine.EscalationDelays, memory)

		sc.SetDispatcher(dispatcher)
		slog.Info("multi-engine dispatcher enabled",
			"engines", dispatcher.Engines(),
			"delays", cfg.Engine.EscalationDelays,
		)
	}

	// ── 5. Initialise cache ─────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Stop()

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(sc, st, cfg, cc, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("resultscraper stopped")
}

// openStore connects to Postgres when a database URL is configured and
// falls back to the in-memory store otherwise.
func openStore(cfg config.StoreConfig) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, student records are kept in memory")
		return store.NewMemory(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.Initialize(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	slog.Info("connected to Postgres student store")
	return pg, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
