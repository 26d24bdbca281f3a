package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nubngpi/resultscraper/models"
	"github.com/nubngpi/resultscraper/store"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Banner is the plain-text body of GET /.
const Banner = "Hello From NUBNGPI Server"

// Root returns a handler for GET /.
func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	}
}

// Health returns a handler for GET /api/v1/health.
//
// Reports pool utilisation and degrades status when > 80% of pages are active.
func Health(f ResultFetcher, st store.Store, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := f.Stats()

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
			status = "degraded"
		}

		storeName := ""
		if st != nil {
			storeName = st.Name()
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Store:     storeName,
			Version:   Version,
		})
	}
}
