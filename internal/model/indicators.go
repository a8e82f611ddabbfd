package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorPoint carries the derived values for one bar. An invalid
// NullDecimal means the indicator is undefined at this point.
type IndicatorPoint struct {
	Date time.Time                   `json:"date"`
	MA   map[int]decimal.NullDecimal `json:"ma"`
	RSI  decimal.NullDecimal         `json:"rsi"`
}

// IndicatorSeries is aligned by index and date with the PriceSeries it was
// computed from.
type IndicatorSeries struct {
	Windows   []int            `json:"windows"`
	RSIPeriod int              `json:"rsi_period,omitempty"`
	Points    []IndicatorPoint `json:"points"`
}

// MA returns the moving average for window w at index i.
func (s *IndicatorSeries) MA(i, w int) (decimal.Decimal, bool) {
	if s == nil || i < 0 || i >= len(s.Points) {
		return decimal.Zero, false
	}
	v, ok := s.Points[i].MA[w]
	if !ok || !v.Valid {
		return decimal.Zero, false
	}
	return v.Decimal, true
}

// PriceSummary holds the headline metrics of a price series.
type PriceSummary struct {
	FirstClose  decimal.Decimal `json:"first_close"`
	LastClose   decimal.Decimal `json:"last_close"`
	Change      decimal.Decimal `json:"change"`
	ChangePct   decimal.Decimal `json:"change_pct"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Position    float64         `json:"position"` // 0.0 ~ 1.0 inside [Low, High]
	Volatility  float64         `json:"volatility"`
	TradingDays int             `json:"trading_days"`
}
