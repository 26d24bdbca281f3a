package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/nubngpi/resultscraper/engine"
	"github.com/nubngpi/resultscraper/models"
)

// readyJS reports true once the page body exists and no longer shows the
// loading placeholder passed as its argument.
const readyJS = `(marker) => !!document.body && !document.body.innerText.includes(marker)`

// fetchRod renders the results page in a pooled tab and returns its
// visible text.
//
// Lifecycle:
//
//  1. Acquire page           – borrow a tab from the pool (or create one)
//  2. DEFER: cleanup         – about:blank + return to pool
//  3. Stealth + headers      – before navigation, or they do not apply
//  4. Hijack mount           – block images/CSS/fonts/media and ad hosts
//  5. DOMContentLoaded wait  – registered before Navigate so the event is not missed
//  6. Navigate               – bounded by NavigationTimeout
//  7. Ready wait             – until the loading placeholder disappears
//  8. Extract                – document.body.innerText
func (s *Scraper) fetchRod(ctx context.Context, req *engine.FetchRequest) (*FetchResult, error) {
	// ── 1. Acquire page from pool ─────────────────────────────────────
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, acquireErr := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	// ── 2. Cleanup uses the page without the request context so it still
	// runs after the request deadline has passed.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	// ── 3. Stealth + headers ──────────────────────────────────────────
	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	if headers := s.requestHeaders(req); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(page)
	}

	// ── 4. Hijack ─────────────────────────────────────────────────────
	router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	// ── 5-6. Navigate and wait for DOMContentLoaded ───────────────────
	navCtx, navCancel := context.WithTimeout(ctx, deadlineOr(ctx, s.scraperCfg.NavigationTimeout))
	defer navCancel()
	navPage := page.Context(navCtx)

	waitDOM := navPage.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := navPage.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to results page failed")
	}
	waitDOM()
	if err := navCtx.Err(); err != nil {
		return nil, categorizeError(err, "results page did not finish loading")
	}

	// ── 7. Ready wait ─────────────────────────────────────────────────
	if marker := s.scraperCfg.LoadingMarker; marker != "" {
		readyCtx, readyCancel := context.WithTimeout(ctx, deadlineOr(ctx, s.scraperCfg.ReadyTimeout))
		err := page.Context(readyCtx).Wait(rod.Eval(readyJS, marker))
		readyCancel()
		if err != nil {
			return nil, categorizeError(err, "results page stayed on the loading placeholder")
		}
	}

	// ── 8. Extract ────────────────────────────────────────────────────
	res, err := p.Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return nil, categorizeError(err, "failed to read page text")
	}

	var statusCode int
	if sc, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = sc.Value.Int()
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &FetchResult{
		Text:       res.Value.Str(),
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: statusCode,
		FinalURL:   finalURL,
	}, nil
}

// requestHeaders merges request headers over a search-engine Referer.
func (s *Scraper) requestHeaders(req *engine.FetchRequest) proto.NetworkHeaders {
	headers := make(proto.NetworkHeaders, len(req.Headers)+1)
	if _, ok := req.Headers["Referer"]; !ok {
		if u, err := url.Parse(req.URL); err == nil {
			headers["Referer"] = gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()))
		}
	}
	for k, v := range req.Headers {
		headers[k] = gson.New(v)
	}
	return headers
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeUpstream, msg, err)
	}
}
