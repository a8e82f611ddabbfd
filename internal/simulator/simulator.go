// Package simulator computes buy-and-hold returns over a price series.
package simulator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Simulate buys as many whole shares as amount allows at the open of the
// first bar on or after buyDate and marks the holding to market at every
// close. Unspent cash is carried as remainder.
func Simulate(series *model.PriceSeries, buyDate time.Time, amount decimal.Decimal) (*model.SimulationResult, error) {
	if !amount.IsPositive() {
		return nil, model.NewInvalidInput("amount", "must be positive")
	}

	bars := held(series, model.DateOf(buyDate))
	if len(bars) == 0 {
		return nil, fmt.Errorf("simulate from %s: %w", buyDate.Format(model.DateLayout), model.ErrNoDataInRange)
	}

	buy := bars[0]
	q, remainder := amount.QuoRem(buy.Open, 0)
	shares := q.IntPart()
	qty := decimal.NewFromInt(shares)

	res := &model.SimulationResult{
		BuyDate:     buy.Date,
		BuyPrice:    buy.Open,
		Investment:  amount,
		Shares:      shares,
		Remainder:   remainder,
		AssetValues: make([]model.AssetPoint, len(bars)),
	}
	for i, b := range bars {
		res.AssetValues[i] = model.AssetPoint{
			Date:  b.Date,
			Value: qty.Mul(b.Close).Add(remainder),
		}
	}

	last := bars[len(bars)-1]
	res.LastDate = last.Date
	res.LastClose = last.Close
	res.FinalValue = res.AssetValues[len(bars)-1].Value
	res.Profit = res.FinalValue.Sub(amount)
	res.ReturnRatePct = res.Profit.Mul(hundred).Div(amount)
	return res, nil
}

// held returns the bars from buyDate on, skipping non-positive opens.
func held(series *model.PriceSeries, buyDate time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, 0, series.Len())
	for i := 0; i < series.Len(); i++ {
		b := series.Bars[i]
		if b.Date.Before(buyDate) || !b.Open.IsPositive() {
			continue
		}
		bars = append(bars, b)
	}
	return bars
}
