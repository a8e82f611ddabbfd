package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

func day(s string) time.Time {
	t, _ := model.ParseDate(s)
	return t
}

func openCache(t *testing.T) *SQLiteBarCache {
	t.Helper()
	c, err := NewSQLiteBarCache(filepath.Join(t.TempDir(), "data", "bars.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleBars() []model.OHLCV {
	return []model.OHLCV{
		{Date: day("2024-01-02"), Open: decimal.RequireFromString("78200"), High: decimal.RequireFromString("79800"),
			Low: decimal.RequireFromString("78200"), Close: decimal.RequireFromString("79600"), Volume: 17142847},
		{Date: day("2024-01-03"), Open: decimal.RequireFromString("78500.25"), High: decimal.RequireFromString("78800"),
			Low: decimal.RequireFromString("77000"), Close: decimal.RequireFromString("77000.5"), Volume: 21753644},
	}
}

func TestSQLiteBarCache_RoundTrip(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "005930", day("2024-01-01"), day("2024-01-31"), sampleBars()))

	got, err := c.Bars(ctx, "005930", day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	want := sampleBars()
	for i := range want {
		assert.Equal(t, want[i].Date, got[i].Date)
		assert.True(t, want[i].Open.Equal(got[i].Open))
		assert.True(t, want[i].Close.Equal(got[i].Close))
		assert.Equal(t, want[i].Volume, got[i].Volume)
	}
}

func TestSQLiteBarCache_Coverage(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()

	ok, err := c.Covered(ctx, "005930", day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "005930", day("2024-01-01"), day("2024-01-31"), sampleBars()))

	tests := []struct {
		code       string
		start, end string
		want       bool
	}{
		{"005930", "2024-01-01", "2024-01-31", true},
		{"005930", "2024-01-10", "2024-01-20", true},
		{"005930", "2023-12-31", "2024-01-31", false},
		{"005930", "2024-01-01", "2024-02-01", false},
		{"035720", "2024-01-01", "2024-01-31", false},
	}
	for _, tt := range tests {
		ok, err := c.Covered(ctx, tt.code, day(tt.start), day(tt.end))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "%s %s..%s", tt.code, tt.start, tt.end)
	}
}

func TestSQLiteBarCache_SubRange(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "005930", day("2024-01-01"), day("2024-01-31"), sampleBars()))

	got, err := c.Bars(ctx, "005930", day("2024-01-03"), day("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day("2024-01-03"), got[0].Date)
}

func TestSQLiteBarCache_PutReplacesBars(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "005930", day("2024-01-01"), day("2024-01-31"), sampleBars()))

	updated := sampleBars()[:1]
	updated[0].Close = decimal.RequireFromString("80000")
	require.NoError(t, c.Put(ctx, "005930", day("2024-01-02"), day("2024-01-02"), updated))

	got, err := c.Bars(ctx, "005930", day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Close.Equal(decimal.RequireFromString("80000")))
}

func TestNoopBarCache(t *testing.T) {
	var c BarCache = NewNoopBarCache()
	ok, err := c.Covered(context.Background(), "005930", day("2024-01-01"), day("2024-01-31"))
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Put(context.Background(), "005930", day("2024-01-01"), day("2024-01-31"), sampleBars()))
	assert.NoError(t, c.Close())
}
