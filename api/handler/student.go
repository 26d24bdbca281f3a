package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nubngpi/resultscraper/cache"
	"github.com/nubngpi/resultscraper/extractor"
	"github.com/nubngpi/resultscraper/models"
	"github.com/nubngpi/resultscraper/store"
)

const (
	defaultName  = "Name"
	defaultImage = "no image"

	notFoundMessage = "Result not found or invalid roll"
)

// Student returns a handler for GET /student/:roll.
//
// Flow:
//  1. Validate roll and query, resolve the regulation.
//  2. Cache lookup when max_age is set.
//  3. Fetch the rendered page text               (records fetch_ms)
//  4. Normalize + extract                         (records extract_ms)
//  5. Merge stored name/img, cache, respond.
func Student(f ResultFetcher, ext *extractor.Extractor, st store.Store, cc *cache.Cache, defaultRegulation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Validate ─────────────────────────────────────────────
		roll := c.Param("roll")
		if !models.ValidRoll(roll) {
			c.JSON(http.StatusBadRequest, models.StudentResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "roll must be a six-digit number",
				},
			})
			return
		}

		var q models.StudentQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, models.StudentResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		regulation := q.Regulation
		if regulation == "" {
			regulation = defaultRegulation
		}
		cacheKey := cache.Key(roll, regulation)

		// ── 2. Cache lookup ─────────────────────────────────────────
		if cc != nil && q.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, q.MaxAge); hit {
				c.JSON(http.StatusOK, models.StudentResponse{
					Success:     true,
					URL:         cached.URL,
					Data:        withMetadata(c, st, roll, cached.Result),
					EngineUsed:  cached.EngineUsed,
					CacheStatus: "hit",
					Timing:      models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
				})
				return
			}
		}

		// ── 3. Fetch ────────────────────────────────────────────────
		fetchStart := time.Now()
		page, err := f.Fetch(c.Request.Context(), roll, regulation)
		fetchMs := time.Since(fetchStart).Milliseconds()
		if err != nil {
			slog.Error("result fetch failed", "roll", roll, "regulation", regulation, "error", err)
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			})
			return
		}

		// ── 4. Extract ──────────────────────────────────────────────
		extractStart := time.Now()
		outcome := ext.Extract(extractor.Normalize(page.Text))
		timing := models.TimingInfo{
			FetchMs:   fetchMs,
			ExtractMs: time.Since(extractStart).Milliseconds(),
		}

		found, ok := outcome.(extractor.Found)
		if !ok {
			if absent, isAbsent := outcome.(extractor.Absent); isAbsent {
				slog.Info("result absent", "roll", roll, "reason", absent.Reason, "marker", absent.Marker)
			}
			timing.TotalMs = time.Since(totalStart).Milliseconds()
			c.JSON(http.StatusNotFound, models.StudentResponse{
				Success: false,
				URL:     page.URL,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: notFoundMessage,
				},
				Timing: timing,
			})
			return
		}

		// ── 5. Merge, cache, respond ────────────────────────────────
		resp := models.StudentResponse{
			Success:    true,
			URL:        page.URL,
			Data:       withMetadata(c, st, roll, found.Result),
			EngineUsed: page.EngineUsed,
		}

		if cc != nil && q.MaxAge > 0 {
			cc.Set(cacheKey, cache.Entry{
				URL:        page.URL,
				EngineUsed: page.EngineUsed,
				Result:     found.Result,
			})
			resp.CacheStatus = "miss"
		}

		timing.TotalMs = time.Since(totalStart).Milliseconds()
		resp.Timing = timing
		c.JSON(http.StatusOK, resp)
	}
}

// withMetadata merges the name and image registered for the requested roll,
// falling back to placeholders when no record exists or the lookup fails.
// The page's own roll may be N/A, so it is never used as the key.
func withMetadata(c *gin.Context, st store.Store, roll string, result models.StudentResult) *models.StudentData {
	data := &models.StudentData{
		Name:          defaultName,
		Img:           defaultImage,
		StudentResult: result,
	}
	if st == nil {
		return data
	}

	rec, err := st.FindByRoll(c.Request.Context(), roll)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return data
	case err != nil:
		slog.Warn("student lookup failed, using placeholders", "roll", roll, "error", err)
		return data
	}

	if rec.Name != "" {
		data.Name = rec.Name
	}
	if rec.Img != "" {
		data.Img = rec.Img
	}
	return data
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "Failed to fetch result", err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.StudentResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeUpstream:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}
