package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

// MovingAverages computes the trailing simple moving average of close for each
// window. At index i the value for window w is undefined when i < w-1,
// otherwise the mean of close[i-w+1..i]. Only bars inside the series count;
// no earlier history is consulted.
func MovingAverages(series *model.PriceSeries, windows []int) (*model.IndicatorSeries, error) {
	ws, err := normalizeWindows(windows)
	if err != nil {
		return nil, err
	}
	out := newIndicatorSeries(series, ws)
	closes := series.Closes()
	for _, w := range ws {
		for i, v := range sma(closes, w) {
			out.Points[i].MA[w] = v
		}
	}
	return out, nil
}

// Compute merges moving averages and, when rsiPeriod > 0, RSI.
func Compute(series *model.PriceSeries, windows []int, rsiPeriod int) (*model.IndicatorSeries, error) {
	out, err := MovingAverages(series, windows)
	if err != nil {
		return nil, err
	}
	if rsiPeriod <= 0 {
		return out, nil
	}
	rsi, err := RSI(series, rsiPeriod)
	if err != nil {
		return nil, err
	}
	out.RSIPeriod = rsiPeriod
	for i := range out.Points {
		out.Points[i].RSI = rsi[i]
	}
	return out, nil
}

// sma returns one value per close using a running decimal sum.
func sma(closes []decimal.Decimal, w int) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(closes))
	size := decimal.NewFromInt(int64(w))
	sum := decimal.Zero
	for i, c := range closes {
		sum = sum.Add(c)
		if i >= w {
			sum = sum.Sub(closes[i-w])
		}
		if i >= w-1 {
			out[i] = decimal.NewNullDecimal(sum.Div(size))
		}
	}
	return out
}

// normalizeWindows sorts and dedupes windows, rejecting non-positive sizes.
func normalizeWindows(windows []int) ([]int, error) {
	seen := make(map[int]bool, len(windows))
	ws := make([]int, 0, len(windows))
	for _, w := range windows {
		if w <= 0 {
			return nil, model.NewInvalidInput("window", fmt.Sprintf("%d is not positive", w))
		}
		if !seen[w] {
			seen[w] = true
			ws = append(ws, w)
		}
	}
	sort.Ints(ws)
	return ws, nil
}

func newIndicatorSeries(series *model.PriceSeries, windows []int) *model.IndicatorSeries {
	out := &model.IndicatorSeries{
		Windows: windows,
		Points:  make([]model.IndicatorPoint, series.Len()),
	}
	for i := range out.Points {
		out.Points[i] = model.IndicatorPoint{
			Date: series.Bars[i].Date,
			MA:   make(map[int]decimal.NullDecimal, len(windows)),
		}
		for _, w := range windows {
			out.Points[i].MA[w] = decimal.NullDecimal{}
		}
	}
	return out
}
