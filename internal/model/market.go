package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used at every text boundary.
const DateLayout = "2006-01-02"

// KST is the exchange's local time zone. Trading dates are KST calendar dates.
var KST = time.FixedZone("KST", 9*60*60)

// Today returns the current KST calendar date for the clock now.
func Today(now func() time.Time) time.Time {
	return DateOf(now().In(KST))
}

// OHLCV represents a single daily bar.
type OHLCV struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Consistent reports whether low <= open, close <= high and volume >= 0.
func (b OHLCV) Consistent() bool {
	if b.Volume < 0 {
		return false
	}
	for _, p := range []decimal.Decimal{b.Open, b.Close} {
		if p.LessThan(b.Low) || p.GreaterThan(b.High) {
			return false
		}
	}
	return true
}

// PriceSeries holds the bars of one exchange code, ascending by date.
type PriceSeries struct {
	Code  string    `json:"code"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"` // zero when open-ended
	Bars  []OHLCV   `json:"bars"`
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Empty reports whether the series holds no bars.
func (s *PriceSeries) Empty() bool { return s.Len() == 0 }

// Closes returns the closing prices in series order.
func (s *PriceSeries) Closes() []decimal.Decimal {
	closes := make([]decimal.Decimal, s.Len())
	if s == nil {
		return closes
	}
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// DateRange is an inclusive calendar range. A zero End means "through the
// latest available trading day".
type DateRange struct {
	Start time.Time
	End   time.Time
}

// OpenEnded reports whether the range has no end date.
func (r DateRange) OpenEnded() bool { return r.End.IsZero() }

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	d = DateOf(d)
	if d.Before(DateOf(r.Start)) {
		return false
	}
	return r.OpenEnded() || !d.After(DateOf(r.End))
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
