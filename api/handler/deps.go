package handler

import (
	"context"

	"github.com/nubngpi/resultscraper/models"
	"github.com/nubngpi/resultscraper/scraper"
)

// ResultFetcher retrieves the visible text of a results page.
// *scraper.Scraper satisfies it.
type ResultFetcher interface {
	Fetch(ctx context.Context, roll, regulation string) (*scraper.FetchResult, error)
	Stats() models.PoolStats
}
