package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price decimal.Decimal // base price for generated bars, 50000 when zero
	Bars  []model.OHLCV   // returned as-is when set
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	if end.IsZero() {
		end = model.Today(time.Now)
	}
	price := m.Price
	if price.IsZero() {
		price = decimal.NewFromInt(50000)
	}
	return generateMockBars(price, start, end), nil
}

// generateMockBars yields one bar per weekday in [start, end].
func generateMockBars(base decimal.Decimal, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	step := base.Div(decimal.NewFromInt(1000)).Round(0)
	i := int64(0)
	for d := model.DateOf(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := base.Add(step.Mul(decimal.NewFromInt(i%20 - 10)))
		bars = append(bars, model.OHLCV{
			Date:   d,
			Open:   p.Sub(step),
			High:   p.Add(step.Mul(decimal.NewFromInt(2))),
			Low:    p.Sub(step.Mul(decimal.NewFromInt(2))),
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

// BarCache stores bars for closed historical ranges.
type BarCache interface {
	Covered(ctx context.Context, code string, start, end time.Time) (bool, error)
	Bars(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error)
	Put(ctx context.Context, code string, start, end time.Time, bars []model.OHLCV) error
}

// Collector fetches and normalises price series.
type Collector struct {
	fetcher Fetcher
	cache   BarCache
	now     func() time.Time
	log     zerolog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithCache enables the bar cache for closed ranges.
func WithCache(c BarCache) CollectorOption {
	return func(col *Collector) { col.cache = c }
}

// WithClock overrides the clock that decides which ranges are closed.
func WithClock(now func() time.Time) CollectorOption {
	return func(col *Collector) { col.now = now }
}

// WithCollectorLogger sets the logger.
func WithCollectorLogger(l zerolog.Logger) CollectorOption {
	return func(col *Collector) { col.log = l }
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, opts ...CollectorOption) *Collector {
	c := &Collector{fetcher: fetcher, now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "collector").Str("provider", fetcher.Name()).Logger()
	return c
}

// Provider returns the underlying fetcher name.
func (c *Collector) Provider() string { return c.fetcher.Name() }

// Fetch returns the bars of code inside r, ascending by date, with
// non-positive opens removed. No data yields an empty series, not an error.
func (c *Collector) Fetch(ctx context.Context, code string, r model.DateRange) (*model.PriceSeries, error) {
	if !model.IsExchangeCode(code) {
		return nil, model.NewInvalidInput("code", fmt.Sprintf("%q is not a 6-digit code", code))
	}
	if r.Start.IsZero() {
		return nil, model.NewInvalidInput("start", "required")
	}
	start := model.DateOf(r.Start)
	var end time.Time
	if !r.OpenEnded() {
		end = model.DateOf(r.End)
		if end.Before(start) {
			return nil, model.NewInvalidInput("end", "before start")
		}
	}

	closed := !end.IsZero() && end.Before(model.Today(c.now))
	if closed && c.cache != nil {
		if bars, ok := c.fromCache(ctx, code, start, end); ok {
			return c.series(code, start, end, bars), nil
		}
	}

	raw, err := c.fetchProvider(ctx, code, start, end)
	if err != nil {
		c.log.Error().Err(err).Str("code", code).Msg("fetch daily bars failed")
		return nil, fmt.Errorf("fetch %s: %w", code, err)
	}
	series := c.series(code, start, end, raw)

	if closed && c.cache != nil && !series.Empty() {
		if err := c.cache.Put(ctx, code, start, end, series.Bars); err != nil {
			c.log.Warn().Err(err).Str("code", code).Msg("bar cache store failed")
		}
	}
	return series, nil
}

func (c *Collector) fromCache(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, bool) {
	covered, err := c.cache.Covered(ctx, code, start, end)
	if err != nil {
		c.log.Warn().Err(err).Str("code", code).Msg("bar cache lookup failed")
		return nil, false
	}
	if !covered {
		return nil, false
	}
	bars, err := c.cache.Bars(ctx, code, start, end)
	if err != nil {
		c.log.Warn().Err(err).Str("code", code).Msg("bar cache read failed")
		return nil, false
	}
	c.log.Debug().Str("code", code).Int("bars", len(bars)).Msg("served from bar cache")
	return bars, true
}

// fetchProvider normalises every provider failure, panics included, into a
// ProviderError.
func (c *Collector) fetchProvider(ctx context.Context, code string, start, end time.Time) (bars []model.OHLCV, err error) {
	defer func() {
		if r := recover(); r != nil {
			bars = nil
			err = model.NewProviderError(c.fetcher.Name(), fmt.Errorf("panic: %v", r))
		}
	}()
	bars, err = c.fetcher.FetchDailyBars(ctx, code, start, end)
	if err != nil {
		return nil, model.NewProviderError(c.fetcher.Name(), err)
	}
	return bars, nil
}

func (c *Collector) series(code string, start, end time.Time, raw []model.OHLCV) *model.PriceSeries {
	return &model.PriceSeries{
		Code:  code,
		Start: start,
		End:   end,
		Bars:  Normalize(raw, model.DateRange{Start: start, End: end}),
	}
}

// Normalize sorts bars ascending, keeps the last bar for a repeated date,
// clips to r and drops bars whose open is not positive.
func Normalize(raw []model.OHLCV, r model.DateRange) []model.OHLCV {
	bars := make([]model.OHLCV, 0, len(raw))
	for _, b := range raw {
		b.Date = model.DateOf(b.Date)
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}

	kept := make([]model.OHLCV, 0, len(out))
	for _, b := range out {
		if !r.Contains(b.Date) || !b.Open.IsPositive() {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}
