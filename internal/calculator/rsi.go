package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

// RSI computes the Wilder-smoothed RSI for every bar. The first period bars
// are undefined; a series of period bars or fewer is all undefined.
func RSI(series *model.PriceSeries, period int) ([]decimal.NullDecimal, error) {
	if period <= 0 {
		return nil, model.NewInvalidInput("rsi_period", "must be positive")
	}
	n := series.Len()
	out := make([]decimal.NullDecimal, n)
	if n <= period {
		return out, nil
	}

	closes := make([]float64, n)
	for i, b := range series.Bars {
		closes[i] = b.Close.InexactFloat64()
	}
	values := talib.Rsi(closes, period)
	for i := period; i < n && i < len(values); i++ {
		v := values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = decimal.NewNullDecimal(decimal.NewFromFloat(v).Round(2))
	}
	return out, nil
}
