package export

import (
	"time"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
)

// NewReport gathers the workbook views of p from a ledger snapshot. Wallet
// balances and the summary's debt figures cover the whole ledger; the rest
// is limited to p.
func NewReport(snap *ledger.Snapshot, p model.Period, plan report.BudgetPlan, resetFallback time.Time) Report {
	monthly := report.Filter(snap.Transactions, p)
	wallets, total := report.WalletBalances(snap.Wallets, snap.Transactions, resetFallback)
	return Report{
		Period:       p,
		Summary:      report.Summarize(snap.Transactions, p),
		Transactions: monthly,
		Wallets:      wallets,
		WalletTotal:  total,
		Budget:       report.Variance(plan, monthly),
		Targets:      report.TargetProgress(snap.Targets),
	}
}
