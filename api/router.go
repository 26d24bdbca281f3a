package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nubngpi/resultscraper/api/handler"
	"github.com/nubngpi/resultscraper/api/middleware"
	"github.com/nubngpi/resultscraper/cache"
	"github.com/nubngpi/resultscraper/config"
	"github.com/nubngpi/resultscraper/extractor"
	"github.com/nubngpi/resultscraper/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Recovery → Logger → RequestID → CORS
func NewRouter(f handler.ResultFetcher, st store.Store, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	ext := extractor.New(extractor.WithWindow(cfg.Extractor.SegmentWindow))

	r.GET("/", handler.Root())
	r.GET("/api/v1/health", handler.Health(f, st, startTime))

	r.GET("/student/:roll", handler.Student(f, ext, st, cc, cfg.Scraper.Regulation))
	r.POST("/students/post", handler.PostStudent(st))

	return r
}
