package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a row of the Dompet worksheet.
type Wallet struct {
	ResetDate      time.Time // zero means "use the monitoring start date"
	OpeningBalance decimal.Decimal
	Name           string
}

// EffectiveReset returns the wallet reset date, or fallback when unset.
func (w Wallet) EffectiveReset(fallback time.Time) time.Time {
	if w.ResetDate.IsZero() {
		return fallback
	}
	return w.ResetDate
}

// Target is a row of the Target worksheet: a savings goal.
type Target struct {
	Name        string
	Amount      decimal.Decimal
	Accumulated decimal.Decimal
}

// Progress returns accumulated/amount capped at one, or zero when the target
// amount is not positive.
func (t Target) Progress() float64 {
	f, _ := t.ratio().Float64()
	return f
}

// Percent returns the floored progress percentage.
func (t Target) Percent() int {
	return int(t.ratio().Shift(2).Floor().IntPart())
}

func (t Target) ratio() decimal.Decimal {
	if !t.Amount.IsPositive() || t.Accumulated.IsNegative() {
		return decimal.Zero
	}
	ratio := t.Accumulated.Div(t.Amount)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return ratio
}

// Remaining returns how much is still missing, never negative.
func (t Target) Remaining() decimal.Decimal {
	r := t.Amount.Sub(t.Accumulated)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
