package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
	"StockLens/internal/netutil"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// errYahooNoSymbol marks a symbol Yahoo does not know.
var errYahooNoSymbol = errors.New("yahoo: symbol not found")

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
// KRX codes are tried on KOSPI (.KS) first, then KOSDAQ (.KQ).
type YahooFetcher struct {
	httpProvider
	Suffixes []string
	now      func() time.Time
}

// NewYahooFetcher creates a Yahoo Finance fetcher.
func NewYahooFetcher(opts ...Option) *YahooFetcher {
	return &YahooFetcher{
		httpProvider: newHTTPProvider("yahoo", DefaultYahooBaseURL, opts),
		Suffixes:     []string{".KS", ".KQ"},
		now:          time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*json.Number `json:"open"`
					High   []*json.Number `json:"high"`
					Low    []*json.Number `json:"low"`
					Close  []*json.Number `json:"close"`
					Volume []*json.Number `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error) {
	if end.IsZero() {
		end = model.Today(f.now)
	}
	var lastErr error
	for _, suffix := range f.Suffixes {
		bars, err := f.fetchChart(ctx, code+suffix, start, end)
		if errors.Is(err, errYahooNoSymbol) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			return bars, nil
		}
		lastErr = nil
	}
	if lastErr != nil {
		f.log.Debug().Str("code", code).Err(lastErr).Msg("no yahoo symbol for code")
	}
	return []model.OHLCV{}, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	// period2 is exclusive; bars are stamped at the KST session open.
	p1 := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, model.KST).Unix()
	p2 := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, model.KST).AddDate(0, 0, 1).Unix()
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(p1, 10))
	q.Set("period2", strconv.FormatInt(p2, 10))
	q.Set("interval", "1d")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.baseURL, url.PathEscape(symbol), q.Encode())

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", netutil.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errYahooNoSymbol
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(body, 256))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, errYahooNoSymbol
		}
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return []model.OHLCV{}, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, ok1 := yahooValue(quote.Open, i)
		h, ok2 := yahooValue(quote.High, i)
		l, ok3 := yahooValue(quote.Low, i)
		c, ok4 := yahooValue(quote.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // null bars (holidays, halts)
		}
		v, _ := yahooValue(quote.Volume, i)
		bars = append(bars, model.OHLCV{
			Date:   model.DateOf(time.Unix(ts, 0).In(model.KST)),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v.IntPart(),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	f.log.Info().Str("symbol", symbol).Int("bars", len(bars)).Msg("yahoo bars fetched")
	return bars, nil
}

// yahooValue reads column i. Yahoo reports KRW prices as floats, so they are
// rounded to two places.
func yahooValue(col []*json.Number, i int) (decimal.Decimal, bool) {
	if i >= len(col) || col[i] == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(col[i].String())
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(2), true
}
