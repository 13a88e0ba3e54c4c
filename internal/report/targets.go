package report

import (
	"github.com/Veraticus/bento/internal/model"
	"github.com/shopspring/decimal"
)

// TargetStatus is a savings target with its progress.
type TargetStatus struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Accumulated decimal.Decimal `json:"accumulated"`
	Remaining   decimal.Decimal `json:"remaining"`
	Progress    float64         `json:"progress"`
	Percent     int             `json:"percent"`
	Reached     bool            `json:"reached"`
}

// TargetProgress computes progress for every target, in sheet order.
func TargetProgress(targets []model.Target) []TargetStatus {
	out := make([]TargetStatus, 0, len(targets))
	for _, t := range targets {
		out = append(out, TargetStatus{
			Name:        t.Name,
			Amount:      t.Amount,
			Accumulated: t.Accumulated,
			Remaining:   t.Remaining(),
			Progress:    t.Progress(),
			Percent:     t.Percent(),
			Reached:     t.Percent() >= 100,
		})
	}
	return out
}
