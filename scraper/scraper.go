package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"golang.org/x/time/rate"

	"github.com/nubngpi/resultscraper/config"
	"github.com/nubngpi/resultscraper/engine"
	"github.com/nubngpi/resultscraper/models"
)

// Scraper owns the shared browser, its page pool and the upstream throttle.
// It is safe for concurrent use.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	scraperCfg  config.ScraperConfig
	limiter     *rate.Limiter
	activePages atomic.Int32
	dispatcher  *engine.Dispatcher
}

// NewScraper launches a headless browser and initialises the reusable page pool.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "IsolateOrigins,site-per-process,TranslateUI")
	l.Set(flags.Flag("disable-setuid-sandbox"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	pool := rod.NewPagePool(browserCfg.MaxPages)
	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)

	return &Scraper{
		browser:    browser,
		pagePool:   pool,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		limiter:    newUpstreamLimiter(scraperCfg),
	}, nil
}

// newUpstreamLimiter builds the token bucket guarding the results site.
// A non-positive rate disables throttling.
func newUpstreamLimiter(cfg config.ScraperConfig) *rate.Limiter {
	if cfg.UpstreamRPS <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.UpstreamBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), burst)
}

// SetDispatcher installs the multi-engine dispatcher used by Fetch.
func (s *Scraper) SetDispatcher(d *engine.Dispatcher) {
	s.dispatcher = d
}

// ResultURL builds the results page URL for roll under regulation.
func ResultURL(baseURL, roll, regulation string) string {
	return baseURL + "/results/" + url.PathEscape(roll) + "?regulation=" + url.QueryEscape(regulation)
}

// Fetch retrieves the visible text of the results page for roll. An empty
// regulation uses the configured default.
//
// With a dispatcher configured the HTTP and browser engines race; if the
// whole race fails while time remains, the direct browser path gets one
// more attempt.
func (s *Scraper) Fetch(ctx context.Context, roll, regulation string) (*FetchResult, error) {
	if regulation == "" {
		regulation = s.scraperCfg.Regulation
	}
	target := ResultURL(s.scraperCfg.BaseURL, roll, regulation)

	ctx, cancel := context.WithTimeout(ctx, s.scraperCfg.DefaultTimeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, categorizeError(err, "upstream throttle wait failed")
	}

	req := &engine.FetchRequest{
		URL:     target,
		Timeout: s.scraperCfg.DefaultTimeout,
		Stealth: s.scraperCfg.Stealth,
	}

	if s.dispatcher != nil {
		result, err := s.dispatcher.Dispatch(ctx, req)
		if err == nil {
			return &FetchResult{
				URL:        target,
				Text:       result.Text,
				Title:      result.Title,
				StatusCode: result.StatusCode,
				FinalURL:   result.FinalURL,
				EngineUsed: result.EngineName,
			}, nil
		}
		if ctx.Err() != nil {
			return nil, categorizeError(err, "all fetch engines failed")
		}
		slog.Warn("dispatcher failed, falling back to direct rod fetch",
			"url", target, "error", err)
	}

	result, err := s.fetchRod(ctx, req)
	if err != nil {
		return nil, err
	}
	result.URL = target
	result.EngineUsed = "rod"
	return result, nil
}

// FetchRod is the browser-only path, exported for the engine.RodEngine
// callback so that it bypasses the dispatcher.
func (s *Scraper) FetchRod(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	result, err := s.fetchRod(ctx, req)
	if err != nil {
		return nil, err
	}
	return &engine.FetchResult{
		Text:       result.Text,
		Title:      result.Title,
		StatusCode: result.StatusCode,
		FinalURL:   result.FinalURL,
	}, nil
}

// Stats returns a snapshot of the pool's current state.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
	}
}

// Close drains the page pool and kills the browser process.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: draining page pool")
	s.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	slog.Info("scraper shutting down: closing browser")
	if err := s.browser.Close(); err != nil {
		slog.Warn("failed to close browser", "error", err)
	}
	slog.Info("scraper shutdown complete")
}

// deadlineOr returns d, shortened to whatever is left of ctx's deadline.
func deadlineOr(ctx context.Context, d time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d {
			return left
		}
	}
	return d
}
