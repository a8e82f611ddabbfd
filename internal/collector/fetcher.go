package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"StockLens/internal/model"
)

// Fetcher defines the interface for fetching daily bars from a provider.
// A zero end means through the latest available trading day. An empty
// result with a nil error means the provider has no data in range.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}

// FetcherConfig selects and tunes a provider.
type FetcherConfig struct {
	Provider  string // naver, yahoo, mock
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per second
	Proxy     string
}

// NewFetcher builds the provider named by cfg.Provider.
func NewFetcher(cfg FetcherConfig, log zerolog.Logger) (Fetcher, error) {
	switch cfg.Provider {
	case "", "naver":
		return NewNaverFetcher(
			WithBaseURL(cfg.BaseURL),
			WithTimeout(cfg.Timeout),
			WithRateLimit(cfg.RateLimit),
			WithProxy(cfg.Proxy),
			WithLogger(log),
		), nil
	case "yahoo":
		return NewYahooFetcher(
			WithBaseURL(cfg.BaseURL),
			WithTimeout(cfg.Timeout),
			WithRateLimit(cfg.RateLimit),
			WithProxy(cfg.Proxy),
			WithLogger(log),
		), nil
	case "mock":
		return &MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.Provider)
	}
}
