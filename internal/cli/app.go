package cli

import (
	"context"

	"github.com/rs/zerolog"

	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/dashboard"
	"StockLens/internal/listing"
	"StockLens/internal/logger"
	"StockLens/internal/netutil"
	"StockLens/internal/resolver"
	"StockLens/internal/store"
)

// app holds the wired components for one process.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	directory *listing.Directory
	cache     store.BarCache
	service   *dashboard.Service
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	src := listing.NewKRXSource(
		listing.WithURL(cfg.Listing.URL),
		listing.WithHTTPClient(netutil.NewHTTPClient(cfg.Listing.Timeout, cfg.Proxy)),
		listing.WithLogger(log),
	)
	dir := listing.NewDirectory(src, cfg.Listing.TTL, log, listing.WithFetchTimeout(cfg.Listing.Timeout))

	fetcher, err := collector.NewFetcher(collector.FetcherConfig{
		Provider:  cfg.DataSource.Provider,
		BaseURL:   cfg.DataSource.BaseURL,
		Timeout:   cfg.DataSource.Timeout,
		RateLimit: cfg.DataSource.RateLimit,
		Proxy:     cfg.Proxy,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source selected")

	var cache store.BarCache = store.NewNoopBarCache()
	if cfg.Database.SQLitePath != "" {
		sc, err := store.NewSQLiteBarCache(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite bar cache failed, using noop")
		} else {
			cache = sc
		}
	}

	col := collector.NewCollector(fetcher, collector.WithCache(cache), collector.WithCollectorLogger(log))
	svc := dashboard.NewService(resolver.New(dir, log), col, dashboard.Options{
		MAWindows: cfg.Indicators.MAWindows,
		RSIPeriod: cfg.Indicators.RSIPeriod,
	}, log)

	return &app{cfg: cfg, log: log, directory: dir, cache: cache, service: svc}, nil
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close bar cache")
	}
}

// warmListing loads the directory in the background so the first name
// lookup does not pay for the download.
func (a *app) warmListing(ctx context.Context) {
	go func() {
		if _, err := a.directory.Load(ctx); err != nil {
			a.log.Warn().Err(err).Msg("initial listing load failed")
		}
	}()
}
