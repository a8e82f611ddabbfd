package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPoint is the marked-to-market value of a simulated holding on one day.
type AssetPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// SimulationResult is the outcome of a buy-and-hold simulation.
type SimulationResult struct {
	BuyDate       time.Time       `json:"buy_date"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	Investment    decimal.Decimal `json:"investment"`
	Shares        int64           `json:"shares"`
	Remainder     decimal.Decimal `json:"remainder"`
	AssetValues   []AssetPoint    `json:"asset_values"`
	LastDate      time.Time       `json:"last_date"`
	LastClose     decimal.Decimal `json:"last_close"`
	FinalValue    decimal.Decimal `json:"final_value"`
	Profit        decimal.Decimal `json:"profit"`
	ReturnRatePct decimal.Decimal `json:"return_rate_pct"`
}
