package calculator

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"StockLens/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Summarize returns the headline metrics of the series.
func Summarize(series *model.PriceSeries) (*model.PriceSummary, error) {
	if series.Empty() {
		return nil, model.ErrNoDataInRange
	}
	bars := series.Bars
	first, last := bars[0].Close, bars[len(bars)-1].Close

	s := &model.PriceSummary{
		FirstClose:  first,
		LastClose:   last,
		Change:      last.Sub(first),
		High:        bars[0].High,
		Low:         bars[0].Low,
		TradingDays: len(bars),
	}
	if first.IsPositive() {
		s.ChangePct = s.Change.Mul(hundred).Div(first).Round(2)
	}
	for _, b := range bars[1:] {
		if b.High.GreaterThan(s.High) {
			s.High = b.High
		}
		if b.Low.LessThan(s.Low) {
			s.Low = b.Low
		}
	}
	s.Position = RangePosition(last, s.High, s.Low)
	s.Volatility = Volatility(series.Closes())
	return s, nil
}

// RangePosition returns where price sits within [low, high] (0.0~1.0).
func RangePosition(price, high, low decimal.Decimal) float64 {
	if !high.GreaterThan(low) {
		return 0.5
	}
	pos := price.Sub(low).Div(high.Sub(low)).InexactFloat64()
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}

// Volatility is the sample standard deviation of daily close-to-close
// returns, 0 with fewer than two returns.
func Volatility(closes []decimal.Decimal) float64 {
	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if !closes[i-1].IsPositive() {
			continue
		}
		r := closes[i].Div(closes[i-1]).Sub(decimal.NewFromInt(1))
		returns = append(returns, r.InexactFloat64())
	}
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil)
}
