// Package dashboard orchestrates resolution, fetching, indicators and
// simulation for one user request. Input is validated here, before any
// provider is called.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
	"StockLens/internal/simulator"
)

// Resolver maps company input to an exchange code.
type Resolver interface {
	ResolveString(ctx context.Context, input string) (string, error)
}

// SeriesFetcher returns a normalised price series.
type SeriesFetcher interface {
	Fetch(ctx context.Context, code string, r model.DateRange) (*model.PriceSeries, error)
}

// Options tunes the indicator output.
type Options struct {
	MAWindows []int
	RSIPeriod int
}

// Service serves the dashboard operations.
type Service struct {
	resolver Resolver
	fetcher  SeriesFetcher
	opts     Options
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a Service.
func NewService(resolver Resolver, fetcher SeriesFetcher, opts Options, log zerolog.Logger) *Service {
	if len(opts.MAWindows) == 0 {
		opts.MAWindows = []int{5, 20}
	}
	return &Service{
		resolver: resolver,
		fetcher:  fetcher,
		opts:     opts,
		now:      time.Now,
		log:      log.With().Str("component", "dashboard").Logger(),
	}
}

// Analysis is the result of an analysis request.
type Analysis struct {
	Company    string                 `json:"company"`
	Code       string                 `json:"code"`
	Series     *model.PriceSeries     `json:"series"`
	Indicators *model.IndicatorSeries `json:"indicators"`
	Summary    *model.PriceSummary    `json:"summary"`
}

// Simulation is the result of a simulation request.
type Simulation struct {
	Company string                  `json:"company"`
	Code    string                  `json:"code"`
	Result  *model.SimulationResult `json:"result"`
	Verdict simulator.Verdict       `json:"verdict"`
}

// Resolve returns the exchange code for a company name or code.
func (s *Service) Resolve(ctx context.Context, company string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", model.NewInvalidInput("company", "empty")
	}
	return s.resolver.ResolveString(ctx, company)
}

// Analyze fetches [start, end] for company and derives indicators and a
// summary. An empty period fails with ErrNoDataInRange.
func (s *Service) Analyze(ctx context.Context, company string, start, end time.Time) (*Analysis, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, model.NewInvalidInput("company", "empty")
	}
	if start.IsZero() || end.IsZero() {
		return nil, model.NewInvalidInput("date_range", "start and end are both required")
	}
	start, end = model.DateOf(start), model.DateOf(end)
	if end.Before(start) {
		return nil, model.NewInvalidInput("date_range", "end is before start")
	}

	code, err := s.resolver.ResolveString(ctx, company)
	if err != nil {
		return nil, err
	}
	series, err := s.fetcher.Fetch(ctx, code, model.DateRange{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	if series.Empty() {
		s.log.Info().Str("code", code).Time("start", start).Time("end", end).Msg("no bars in range")
		return nil, fmt.Errorf("%s %s..%s: %w", code, start.Format(model.DateLayout), end.Format(model.DateLayout), model.ErrNoDataInRange)
	}

	ind, err := calculator.Compute(series, s.opts.MAWindows, s.opts.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	summary, err := calculator.Summarize(series)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	s.log.Info().Str("code", code).Int("bars", series.Len()).Msg("analysis complete")
	return &Analysis{Company: company, Code: code, Series: series, Indicators: ind, Summary: summary}, nil
}

// Simulate buys amount of company on the first trading day on or after
// buyDate and holds through the latest trading day. buyDate must be before
// today.
func (s *Service) Simulate(ctx context.Context, company string, buyDate time.Time, amount decimal.Decimal) (*Simulation, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, model.NewInvalidInput("company", "empty")
	}
	if buyDate.IsZero() {
		return nil, model.NewInvalidInput("buy_date", "required")
	}
	buyDate = model.DateOf(buyDate)
	if !buyDate.Before(model.Today(s.now)) {
		return nil, model.NewInvalidInput("buy_date", "must be before today")
	}
	if !amount.IsPositive() {
		return nil, model.NewInvalidInput("amount", "must be positive")
	}

	code, err := s.resolver.ResolveString(ctx, company)
	if err != nil {
		return nil, err
	}
	series, err := s.fetcher.Fetch(ctx, code, model.DateRange{Start: buyDate})
	if err != nil {
		return nil, err
	}
	res, err := simulator.Simulate(series, buyDate, amount)
	if err != nil {
		return nil, err
	}
	verdict := simulator.VerdictFor(res.ReturnRatePct)
	s.log.Info().Str("code", code).Str("return_pct", res.ReturnRatePct.StringFixed(2)).
		Str("verdict", string(verdict)).Msg("simulation complete")
	return &Simulation{Company: company, Code: code, Result: res, Verdict: verdict}, nil
}
