package scraper

// FetchResult is the rendered page text for one roll lookup.
type FetchResult struct {
	// URL is the results page that was requested.
	URL string

	// Text is the visible page text (document.body.innerText or its
	// server-side equivalent).
	Text string

	Title      string
	StatusCode int
	FinalURL   string

	// EngineUsed records which engine produced Text: "http", "rod" or
	// "rod-stealth".
	EngineUsed string
}
