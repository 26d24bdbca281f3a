package engine

import (
	"context"
	"errors"
	"time"
)

// ErrStillLoading reports a page that had not rendered its results: the
// loading placeholder was still showing or the text was blank.
var ErrStillLoading = errors.New("results page still loading")

// Engine fetches the rendered text of a results page.
type Engine interface {
	// Name returns the engine identifier ("http", "rod", "rod-stealth").
	Name() string

	// Fetch retrieves the visible page text for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a results page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Stealth bool
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	// Text is the visible page text, one rendered line per newline.
	Text       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}
