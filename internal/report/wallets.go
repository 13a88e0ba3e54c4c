package report

import (
	"time"

	"github.com/Veraticus/bento/internal/model"
	"github.com/shopspring/decimal"
)

// WalletBalance is a wallet with its derived current balance.
type WalletBalance struct {
	Since   time.Time       `json:"since"`
	Opening decimal.Decimal `json:"opening"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Name    string          `json:"name"`
}

// WalletBalances derives every wallet's balance: opening balance plus the
// income minus the expense of transactions on or after the wallet's reset
// date (fallback when unset) whose payment method equals the wallet name.
// The second result is the sum of all balances.
func WalletBalances(wallets []model.Wallet, txs []model.Transaction, fallback time.Time) ([]WalletBalance, decimal.Decimal) {
	out := make([]WalletBalance, len(wallets))
	byName := make(map[string][]int, len(wallets))
	for i, w := range wallets {
		out[i] = WalletBalance{
			Name:    w.Name,
			Opening: w.OpeningBalance,
			Since:   w.EffectiveReset(fallback),
		}
		byName[w.Name] = append(byName[w.Name], i)
	}

	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		for _, i := range byName[tx.PaymentMethod] {
			if tx.Date.Before(out[i].Since) {
				continue
			}
			switch tx.Direction {
			case model.DirectionIncome:
				out[i].Income = out[i].Income.Add(tx.Amount)
			case model.DirectionExpense:
				out[i].Expense = out[i].Expense.Add(tx.Amount)
			}
		}
	}

	total := decimal.Zero
	for i := range out {
		out[i].Balance = out[i].Opening.Add(out[i].Income).Sub(out[i].Expense)
		total = total.Add(out[i].Balance)
	}
	return out, total
}
