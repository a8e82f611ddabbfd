package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/calculator"
	"StockLens/internal/dashboard"
	"StockLens/internal/model"
	"StockLens/internal/simulator"
)

type fakeDashboard struct {
	err       error
	analysis  *dashboard.Analysis
	sim       *dashboard.Simulation
	gotStart  time.Time
	gotEnd    time.Time
	gotAmount decimal.Decimal
}

func (f *fakeDashboard) Resolve(_ context.Context, company string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "005930", nil
}

func (f *fakeDashboard) Analyze(_ context.Context, _ string, start, end time.Time) (*dashboard.Analysis, error) {
	f.gotStart, f.gotEnd = start, end
	return f.analysis, f.err
}

func (f *fakeDashboard) Simulate(_ context.Context, _ string, _ time.Time, amount decimal.Decimal) (*dashboard.Simulation, error) {
	f.gotAmount = amount
	return f.sim, f.err
}

type fakeListing struct{ err error }

func (f fakeListing) Refresh(context.Context) error { return f.err }
func (f fakeListing) FetchedAt() time.Time         { return time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC) }

func newTestServer(d Dashboard, l Listing) *Server {
	return New(Config{Log: zerolog.Nop(), Dashboard: d, Listing: l, UserName: "지민"})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sampleAnalysis(t *testing.T) *dashboard.Analysis {
	t.Helper()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Code: "005930", Start: start}
	for i, c := range []int64{100, 110, 120} {
		p := decimal.NewFromInt(c)
		s.Bars = append(s.Bars, model.OHLCV{Date: start.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p, Volume: 7})
	}
	ind, err := calculator.Compute(s, []int{2}, 0)
	require.NoError(t, err)
	sum, err := calculator.Summarize(s)
	require.NoError(t, err)
	return &dashboard.Analysis{Company: "삼성전자", Code: "005930", Series: s, Indicators: ind, Summary: sum}
}

func TestHealthAndProfile(t *testing.T) {
	s := newTestServer(&fakeDashboard{}, fakeListing{})

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "환영합니다, 지민님!")
}

func TestResolve(t *testing.T) {
	rec := do(t, newTestServer(&fakeDashboard{}, fakeListing{}), http.MethodGet, "/api/resolve?company=%EC%82%BC%EC%84%B1%EC%A0%84%EC%9E%90", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"company":"삼성전자","code":"005930"}`, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		kind      string
		level     string
		retryable bool
	}{
		{"invalid", model.NewInvalidInput("company", "empty"), http.StatusBadRequest, "invalid_input", "warning", false},
		{"not found", &model.CompanyNotFoundError{Input: "NoSuchCo"}, http.StatusNotFound, "company_not_found", "error", false},
		{"no data", errors.Join(errors.New("005930"), model.ErrNoDataInRange), http.StatusNotFound, "no_data", "info", false},
		{"provider", model.NewProviderError("naver", errors.New("secret upstream detail")), http.StatusServiceUnavailable, "provider_unavailable", "error", true},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal", "error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeDashboard{err: tt.err}, fakeListing{})
			rec := do(t, s, http.MethodGet, "/api/analysis?company=x&start=2024-01-01&end=2024-01-31", "")
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.kind, body.Kind)
			assert.Equal(t, tt.level, body.Level)
			assert.Equal(t, tt.retryable, body.Retryable)
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, rec.Body.String(), "secret upstream detail")
		})
	}
}

func TestAnalysis(t *testing.T) {
	d := &fakeDashboard{analysis: sampleAnalysis(t)}
	rec := do(t, newTestServer(d, fakeListing{}), http.MethodGet, "/api/analysis?company=005930&start=2024-01-01&end=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "005930", body["code"])
	assert.Contains(t, body, "indicators")
	assert.Contains(t, body, "summary")
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), d.gotStart)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), d.gotEnd)
}

func TestAnalysis_BadDate(t *testing.T) {
	rec := do(t, newTestServer(&fakeDashboard{}, fakeListing{}), http.MethodGet, "/api/analysis?company=x&start=2024/01/01&end=2024-01-31", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "시작 날짜와 종료 날짜를 모두 선택해주세요.", decodeError(t, rec).Error)
}

func TestExport(t *testing.T) {
	s := newTestServer(&fakeDashboard{analysis: sampleAnalysis(t)}, fakeListing{})
	s.now = func() time.Time { return time.Date(2024, 6, 3, 1, 0, 0, 0, time.UTC) }

	rec := do(t, s, http.MethodGet, "/api/analysis/export?company=005930&start=2024-01-01&end=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, `filename="삼성전자_2024-06-03.csv"`)
	assert.Contains(t, disposition, "filename*=UTF-8''"+url.PathEscape("삼성전자_2024-06-03.csv"))

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(rec.Body.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Volume", "MA2"}, rows[0])
	assert.Equal(t, "2024-01-04", rows[1][0])
	assert.Equal(t, "115.00", rows[1][6])
	assert.Equal(t, "2024-01-02", rows[3][0])
	assert.Equal(t, "", rows[3][6])
}

func TestSimulate(t *testing.T) {
	d := &fakeDashboard{sim: &dashboard.Simulation{
		Company: "005930", Code: "005930",
		Result:  &model.SimulationResult{Shares: 10, ReturnRatePct: decimal.RequireFromString("19.05")},
		Verdict: simulator.VerdictGain,
	}}
	rec := do(t, newTestServer(d, fakeListing{}), http.MethodPost, "/api/simulations",
		`{"company":"005930","buy_date":"2024-01-02","amount":1050}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body simulationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, simulator.VerdictGain, body.Verdict)
	assert.Equal(t, "은행 이자보다는 낫네요! 👍", body.Message)
	assert.True(t, d.gotAmount.Equal(decimal.NewFromInt(1050)))
}

func TestSimulate_BadBody(t *testing.T) {
	s := newTestServer(&fakeDashboard{}, fakeListing{})

	rec := do(t, s, http.MethodPost, "/api/simulations", `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/simulations", `{"company":"x","buy_date":"01/02/2024","amount":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListingRefresh(t *testing.T) {
	rec := do(t, newTestServer(&fakeDashboard{}, fakeListing{}), http.MethodPost, "/api/listing/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestServer(&fakeDashboard{}, fakeListing{err: model.NewProviderError("krx", errors.New("down"))}), http.MethodPost, "/api/listing/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
