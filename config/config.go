package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Engine    EngineConfig
	Extractor ExtractorConfig
	Cache     CacheConfig
	Store     StoreConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 5

	// DefaultProxy is the proxy URL for all upstream requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ScraperConfig controls how results pages are fetched.
type ScraperConfig struct {
	// BaseURL is the results site root; the page is BaseURL/results/{roll}.
	BaseURL string // default: "https://btebresultszone.com"

	// Regulation is the regulation year sent as the ?regulation= parameter.
	Regulation string // default: "2022"

	// DefaultTimeout bounds one whole fetch.
	DefaultTimeout time.Duration // default: 60s

	// NavigationTimeout is the max time for page.Navigate alone.
	NavigationTimeout time.Duration // default: 60s

	// ReadyTimeout bounds the wait for the loading placeholder to disappear.
	ReadyTimeout time.Duration // default: 15s

	// LoadingMarker is the placeholder text shown before results render.
	LoadingMarker string // default: "Loading page..."

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds blocks requests to well-known ad and tracking domains.
	BlockAds bool // default: true

	// Stealth injects anti-automation evasions before navigation.
	Stealth bool // default: false

	// UpstreamRPS and UpstreamBurst throttle fetches against the results site.
	UpstreamRPS   float64 // default: 2
	UpstreamBurst int     // default: 4

	// TextSelector restricts text extraction of HTTP-fetched pages to the
	// matched elements.
	TextSelector string // default: "body"
}

// EngineConfig controls the multi-engine racing dispatcher.
type EngineConfig struct {
	// EnableMultiEngine toggles the multi-engine dispatcher.
	EnableMultiEngine bool // default: true

	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration // default: [0s, 2s, 5s]

	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration // default: 8s
}

// ExtractorConfig tunes result extraction to the source layout.
type ExtractorConfig struct {
	// SegmentWindow is the number of lines scanned per semester header.
	SegmentWindow int // default: 15
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 1000

	// TTL is the age after which entries are swept.
	TTL time.Duration // default: 1h
}

// StoreConfig selects the student record store.
type StoreConfig struct {
	// DatabaseURL is a Postgres connection string. Empty selects the
	// in-memory store.
	DatabaseURL string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory, when present, is loaded first and
// never overrides variables already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: envOr("RESULTS_HOST", "0.0.0.0"),
			Port: envIntOr("PORT", 3000),
			Mode: envOr("RESULTS_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("RESULTS_HEADLESS", true),
			MaxPages:     envIntOr("RESULTS_MAX_PAGES", 5),
			DefaultProxy: os.Getenv("RESULTS_PROXY"),
			NoSandbox:    envBoolOr("RESULTS_NO_SANDBOX", true),
			BrowserBin:   os.Getenv("PUPPETEER_EXECUTABLE_PATH"),
		},
		Scraper: ScraperConfig{
			BaseURL:           strings.TrimRight(envOr("RESULTS_BASE_URL", "https://btebresultszone.com"), "/"),
			Regulation:        envOr("RESULTS_REGULATION", "2022"),
			DefaultTimeout:    envDurationOr("RESULTS_DEFAULT_TIMEOUT", 60*time.Second),
			NavigationTimeout: envDurationOr("RESULTS_NAV_TIMEOUT", 60*time.Second),
			ReadyTimeout:      envDurationOr("RESULTS_READY_TIMEOUT", 15*time.Second),
			LoadingMarker:     envOr("RESULTS_LOADING_MARKER", "Loading page..."),
			BlockedResourceTypes: envSliceOr("RESULTS_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			BlockAds:      envBoolOr("RESULTS_BLOCK_ADS", true),
			Stealth:       envBoolOr("RESULTS_STEALTH", false),
			UpstreamRPS:   envFloatOr("RESULTS_UPSTREAM_RPS", 2.0),
			UpstreamBurst: envIntOr("RESULTS_UPSTREAM_BURST", 4),
			TextSelector:  envOr("RESULTS_TEXT_SELECTOR", "body"),
		},
		Engine: EngineConfig{
			EnableMultiEngine: envBoolOr("RESULTS_MULTI_ENGINE", true),
			EscalationDelays:  envDurationSliceOr("RESULTS_ESCALATION_DELAYS", []time.Duration{0, 2 * time.Second, 5 * time.Second}),
			HTTPTimeout:       envDurationOr("RESULTS_HTTP_TIMEOUT", 8*time.Second),
		},
		Extractor: ExtractorConfig{
			SegmentWindow: envIntOr("RESULTS_SEGMENT_WINDOW", 15),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("CACHE_TTL", time.Hour),
		},
		Store: StoreConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level:  envOr("RESULTS_LOG_LEVEL", "info"),
			Format: envOr("RESULTS_LOG_FORMAT", "json"),
		},
	}
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
