package simulator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

var d = decimal.NewFromInt

func date(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(day string, open, close int64) model.OHLCV {
	return model.OHLCV{Date: date(day), Open: d(open), High: decimal.Max(d(open), d(close)), Low: decimal.Min(d(open), d(close)), Close: d(close)}
}

func TestSimulate_BuyAndHold(t *testing.T) {
	s := &model.PriceSeries{Code: "005930", Bars: []model.OHLCV{
		bar("2024-01-02", 100, 100),
		bar("2024-01-03", 110, 120),
	}}
	res, err := Simulate(s, date("2024-01-02"), d(1050))
	require.NoError(t, err)

	assert.Equal(t, date("2024-01-02"), res.BuyDate)
	assert.True(t, res.BuyPrice.Equal(d(100)))
	assert.Equal(t, int64(10), res.Shares)
	assert.True(t, res.Remainder.Equal(d(50)))
	require.Len(t, res.AssetValues, 2)
	assert.True(t, res.AssetValues[0].Value.Equal(d(1050)))
	assert.True(t, res.AssetValues[1].Value.Equal(d(1250)))
	assert.True(t, res.FinalValue.Equal(d(1250)))
	assert.True(t, res.Profit.Equal(d(200)))
	assert.Equal(t, "19.05", res.ReturnRatePct.StringFixed(2))
	assert.Equal(t, date("2024-01-03"), res.LastDate)
	assert.True(t, res.LastClose.Equal(d(120)))
}

func TestSimulate_NoUsableBars(t *testing.T) {
	s := &model.PriceSeries{Bars: []model.OHLCV{bar("2024-01-02", 0, 100), bar("2024-01-03", -5, 100)}}
	_, err := Simulate(s, date("2024-01-01"), d(1000))
	assert.ErrorIs(t, err, model.ErrNoDataInRange)

	_, err = Simulate(&model.PriceSeries{}, date("2024-01-01"), d(1000))
	assert.ErrorIs(t, err, model.ErrNoDataInRange)
}

func TestSimulate_BuysFirstTradingDayOnOrAfter(t *testing.T) {
	s := &model.PriceSeries{Bars: []model.OHLCV{
		bar("2024-01-02", 100, 100),
		bar("2024-01-05", 0, 90),
		bar("2024-01-08", 200, 210),
		bar("2024-01-09", 205, 220),
	}}
	res, err := Simulate(s, date("2024-01-04"), d(1000))
	require.NoError(t, err)
	assert.Equal(t, date("2024-01-08"), res.BuyDate)
	assert.True(t, res.BuyPrice.Equal(d(200)))
	assert.Len(t, res.AssetValues, 2)
}

func TestSimulate_AmountBelowPrice(t *testing.T) {
	s := &model.PriceSeries{Bars: []model.OHLCV{bar("2024-01-02", 80000, 81000), bar("2024-01-03", 81000, 70000)}}
	res, err := Simulate(s, date("2024-01-02"), d(50000))
	require.NoError(t, err)

	assert.Zero(t, res.Shares)
	assert.True(t, res.Remainder.Equal(d(50000)))
	for _, p := range res.AssetValues {
		assert.True(t, p.Value.Equal(d(50000)))
	}
	assert.True(t, res.Profit.IsZero())
}

func TestSimulate_RejectsNonPositiveAmount(t *testing.T) {
	s := &model.PriceSeries{Bars: []model.OHLCV{bar("2024-01-02", 100, 100)}}
	for _, amt := range []decimal.Decimal{d(0), d(-1000)} {
		_, err := Simulate(s, date("2024-01-02"), amt)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	}
}

func TestSimulate_ConservesValue(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := date("2023-01-02")
	for n := 0; n < 200; n++ {
		s := &model.PriceSeries{}
		days := 1 + rng.Intn(30)
		for i := 0; i < days; i++ {
			open := int64(1 + rng.Intn(900000))
			s.Bars = append(s.Bars, bar(start.AddDate(0, 0, i).Format(model.DateLayout), open, int64(1+rng.Intn(900000))))
		}
		amount := d(int64(1 + rng.Intn(100000000)))

		res, err := Simulate(s, start, amount)
		require.NoError(t, err)

		spent := d(res.Shares).Mul(res.BuyPrice)
		assert.True(t, spent.Add(res.Remainder).Equal(amount))
		assert.False(t, res.Remainder.IsNegative())
		if res.Shares > 0 {
			assert.True(t, res.Remainder.LessThan(res.BuyPrice))
		} else {
			assert.True(t, res.Remainder.Equal(amount))
		}

		for i, p := range res.AssetValues {
			want := d(res.Shares).Mul(s.Bars[i].Close).Add(res.Remainder)
			assert.True(t, p.Value.Equal(want))
		}
		assert.True(t, res.FinalValue.Equal(res.AssetValues[len(res.AssetValues)-1].Value))
		assert.True(t, res.Profit.Equal(res.FinalValue.Sub(amount)))
	}
}

func TestSimulate_Idempotent(t *testing.T) {
	s := &model.PriceSeries{Bars: []model.OHLCV{bar("2024-01-02", 333, 340), bar("2024-01-03", 338, 351)}}
	a, err := Simulate(s, date("2024-01-02"), d(1000000))
	require.NoError(t, err)
	b, err := Simulate(s, date("2024-01-02"), d(1000000))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestVerdictFor(t *testing.T) {
	tests := []struct {
		rate string
		want Verdict
	}{
		{"120", VerdictJackpot},
		{"50.01", VerdictJackpot},
		{"50", VerdictGain},
		{"0.01", VerdictGain},
		{"0", VerdictHold},
		{"-19.99", VerdictHold},
		{"-20", VerdictLoss},
		{"-85", VerdictLoss},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerdictFor(decimal.RequireFromString(tt.rate)), tt.rate)
	}
}
