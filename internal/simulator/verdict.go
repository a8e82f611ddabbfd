package simulator

import "github.com/shopspring/decimal"

// Verdict buckets a return rate for display.
type Verdict string

const (
	VerdictJackpot Verdict = "jackpot"
	VerdictGain    Verdict = "gain"
	VerdictHold    Verdict = "hold"
	VerdictLoss    Verdict = "loss"
)

// verdicts is checked top-down; a rate strictly above Above picks the verdict.
var verdicts = []struct {
	Above   decimal.Decimal
	Verdict Verdict
}{
	{decimal.NewFromInt(50), VerdictJackpot},
	{decimal.Zero, VerdictGain},
	{decimal.NewFromInt(-20), VerdictHold},
}

// VerdictFor maps a return rate in percent to a Verdict.
func VerdictFor(returnRatePct decimal.Decimal) Verdict {
	for _, v := range verdicts {
		if returnRatePct.GreaterThan(v.Above) {
			return v.Verdict
		}
	}
	return VerdictLoss
}
