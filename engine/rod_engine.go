package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RodFetchFunc renders a page in the shared browser and returns its text.
// main.go passes scraper.FetchRod so engine/ never imports scraper/.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngineOptions configures a browser tier.
type RodEngineOptions struct {
	// Stealth forces the anti-automation evasions on every request and
	// names the tier "rod-stealth".
	Stealth bool

	// LoadingMarker is the results placeholder. Text still containing it
	// means the page never rendered and the tier has failed.
	LoadingMarker string
}

// RodEngine is a browser tier of the dispatcher race.
type RodEngine struct {
	render RodFetchFunc
	opts   RodEngineOptions
}

// NewRodEngine creates a browser tier that renders through render.
func NewRodEngine(render RodFetchFunc, opts RodEngineOptions) *RodEngine {
	return &RodEngine{render: render, opts: opts}
}

func (e *RodEngine) Name() string {
	if e.opts.Stealth {
		return "rod-stealth"
	}
	return "rod"
}

// Fetch renders req.URL. A page that is blank or still on the loading
// placeholder is reported as ErrStillLoading so a later tier can take over.
func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.render == nil {
		return nil, errors.New(e.Name() + ": no renderer")
	}

	tierReq := *req
	tierReq.Stealth = req.Stealth || e.opts.Stealth

	page, err := e.render(ctx, &tierReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}

	switch {
	case strings.TrimSpace(page.Text) == "":
		return nil, fmt.Errorf("%s: %w: blank page", e.Name(), ErrStillLoading)
	case e.opts.LoadingMarker != "" && strings.Contains(page.Text, e.opts.LoadingMarker):
		return nil, fmt.Errorf("%s: %w: %q present", e.Name(), ErrStillLoading, e.opts.LoadingMarker)
	}

	page.EngineName = e.Name()
	return page, nil
}
