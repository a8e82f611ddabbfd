package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
	"StockLens/internal/netutil"
)

const DefaultNaverBaseURL = "https://api.finance.naver.com"

const naverDateLayout = "20060102"

// NaverFetcher implements Fetcher using the Naver Finance siseJson endpoint.
type NaverFetcher struct {
	httpProvider
	now func() time.Time
}

// NewNaverFetcher creates a Naver fetcher.
func NewNaverFetcher(opts ...Option) *NaverFetcher {
	return &NaverFetcher{
		httpProvider: newHTTPProvider("naver", DefaultNaverBaseURL, opts),
		now:          time.Now,
	}
}

func (f *NaverFetcher) Name() string { return "naver" }

func (f *NaverFetcher) FetchDailyBars(ctx context.Context, code string, start, end time.Time) ([]model.OHLCV, error) {
	if end.IsZero() {
		end = model.Today(f.now)
	}
	q := url.Values{}
	q.Set("symbol", code)
	q.Set("requestType", "1")
	q.Set("startTime", start.Format(naverDateLayout))
	q.Set("endTime", end.Format(naverDateLayout))
	q.Set("timeframe", "day")
	endpoint := f.baseURL + "/siseJson.naver?" + q.Encode()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", netutil.UserAgent)

	t0 := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("naver read body: %w", err)
	}
	f.log.Debug().Str("code", code).Int("status", resp.StatusCode).Dur("elapsed", time.Since(t0)).Msg("naver request")
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver: status %d, body: %s", resp.StatusCode, truncate(body, 256))
	}

	bars, err := parseNaverBars(body)
	if err != nil {
		return nil, err
	}
	f.log.Info().Str("code", code).Int("bars", len(bars)).Msg("naver bars fetched")
	return bars, nil
}

// parseNaverBars decodes the siseJson body: a JS array literal whose first
// row is a single-quoted header, followed by
// [date, open, high, low, close, volume, ...] rows.
func parseNaverBars(body []byte) ([]model.OHLCV, error) {
	body = bytes.TrimSpace(bytes.ReplaceAll(body, []byte("'"), []byte(`"`)))
	if len(body) == 0 {
		return nil, fmt.Errorf("naver: empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows [][]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("naver decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("naver: missing header row")
	}

	bars := make([]model.OHLCV, 0, len(rows)-1)
	for i, row := range rows[1:] {
		bar, err := naverRow(row)
		if err != nil {
			return nil, fmt.Errorf("naver row %d: %w", i+1, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func naverRow(row []interface{}) (model.OHLCV, error) {
	if len(row) < 6 {
		return model.OHLCV{}, fmt.Errorf("want 6 columns, got %d", len(row))
	}
	ds, ok := row[0].(string)
	if !ok {
		return model.OHLCV{}, fmt.Errorf("date is %T", row[0])
	}
	date, err := time.ParseInLocation(naverDateLayout, ds, time.UTC)
	if err != nil {
		return model.OHLCV{}, fmt.Errorf("date: %w", err)
	}

	var prices [5]decimal.Decimal
	for j := 1; j <= 5; j++ {
		n, ok := row[j].(json.Number)
		if !ok {
			return model.OHLCV{}, fmt.Errorf("column %d is %T", j, row[j])
		}
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("column %d: %w", j, err)
		}
		prices[j-1] = d
	}
	return model.OHLCV{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: prices[4].IntPart(),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
