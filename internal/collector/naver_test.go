package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

const naverBody = `
 [['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율'],
["20240102", 78200, 79800, 78200, 79600, 17142847, 53.21],
["20240103", 78500, 78800, 77000, 77000, 21753644, 53.19],
["20240104", 76100, 77300, 76100, 76600, 15324439, 53.17]
]
`

func TestParseNaverBars(t *testing.T) {
	bars, err := parseNaverBars([]byte(naverBody))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	b := bars[0]
	assert.Equal(t, day("2024-01-02"), b.Date)
	assert.True(t, b.Open.Equal(decimal.NewFromInt(78200)))
	assert.True(t, b.High.Equal(decimal.NewFromInt(79800)))
	assert.True(t, b.Low.Equal(decimal.NewFromInt(78200)))
	assert.True(t, b.Close.Equal(decimal.NewFromInt(79600)))
	assert.Equal(t, int64(17142847), b.Volume)
	for _, b := range bars {
		assert.True(t, b.Consistent())
	}
}

func TestParseNaverBars_HeaderOnlyIsEmpty(t *testing.T) {
	bars, err := parseNaverBars([]byte("[['날짜', '시가', '고가', '저가', '종가', '거래량', '외국인소진율']]"))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestParseNaverBars_Malformed(t *testing.T) {
	for _, body := range []string{"", "<html>error</html>", `[["x"],["20240102", 1]]`, `[["h"],[20240102, 1, 1, 1, 1, 1]]`} {
		_, err := parseNaverBars([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestNaverFetcher_FetchDailyBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/siseJson.naver", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "005930", q.Get("symbol"))
		assert.Equal(t, "20240101", q.Get("startTime"))
		assert.Equal(t, "20240131", q.Get("endTime"))
		assert.Equal(t, "day", q.Get("timeframe"))
		_, _ = w.Write([]byte(naverBody))
	}))
	defer srv.Close()

	f := NewNaverFetcher(WithBaseURL(srv.URL), WithRateLimit(100))
	bars, err := f.FetchDailyBars(context.Background(), "005930", day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	assert.Len(t, bars, 3)
}

func TestNaverFetcher_OpenEndedUsesToday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20240603", r.URL.Query().Get("endTime"))
		_, _ = w.Write([]byte("[['날짜']]"))
	}))
	defer srv.Close()

	f := NewNaverFetcher(WithBaseURL(srv.URL))
	f.now = fixedClock("2024-06-03")
	bars, err := f.FetchDailyBars(context.Background(), "005930", day("2024-01-01"), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestNaverFetcher_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewCollector(NewNaverFetcher(WithBaseURL(srv.URL)))
	_, err := c.Fetch(context.Background(), "005930", model.DateRange{Start: day("2024-01-01")})
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
}
