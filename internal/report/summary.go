package report

import (
	"slices"
	"time"

	"github.com/Veraticus/bento/internal/model"
	"github.com/shopspring/decimal"
)

// Summary holds the dashboard cards for one month.
type Summary struct {
	GlobalBalance decimal.Decimal `json:"global_balance"`
	Income        decimal.Decimal `json:"income"`
	Expense       decimal.Decimal `json:"expense"`
	Net           decimal.Decimal `json:"net"`
	DebtTotal     decimal.Decimal `json:"debt_total"`
	Period        model.Period    `json:"-"`
	DebtCount     int             `json:"debt_count"`
	Transactions  int             `json:"transactions"`
}

// Summarize computes the balance over all of txs and the monthly figures
// for p. Outstanding debt is counted across every month.
func Summarize(txs []model.Transaction, p model.Period) Summary {
	s := Summary{Period: p}
	for _, tx := range txs {
		s.GlobalBalance = s.GlobalBalance.Add(tx.Signed())
		if tx.IsUnsettled() {
			s.DebtTotal = s.DebtTotal.Add(tx.Amount)
			s.DebtCount++
		}
		if !p.Contains(tx.Date) {
			continue
		}
		s.Transactions++
		switch tx.Direction {
		case model.DirectionIncome:
			s.Income = s.Income.Add(tx.Amount)
		case model.DirectionExpense:
			s.Expense = s.Expense.Add(tx.Amount)
		}
	}
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// Slice is one group of a breakdown.
type Slice struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Share  float64         `json:"share"`
	Count  int             `json:"count"`
}

// ExpenseByMethod groups the expenses of txs by payment method, largest
// first.
func ExpenseByMethod(txs []model.Transaction) []Slice {
	return groupExpenses(txs, func(tx model.Transaction) string { return tx.PaymentMethod })
}

// ExpenseByCategory groups the expenses of txs by category, largest first.
// Share is the fraction of the total expense.
func ExpenseByCategory(txs []model.Transaction) []Slice {
	return groupExpenses(txs, func(tx model.Transaction) string { return tx.Category })
}

func groupExpenses(txs []model.Transaction, key func(model.Transaction) string) []Slice {
	index := make(map[string]int)
	var slicesOut []Slice
	total := decimal.Zero
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		name := key(tx)
		if name == "" {
			name = "Lainnya"
		}
		i, ok := index[name]
		if !ok {
			i = len(slicesOut)
			index[name] = i
			slicesOut = append(slicesOut, Slice{Name: name})
		}
		slicesOut[i].Amount = slicesOut[i].Amount.Add(tx.Amount)
		slicesOut[i].Count++
		total = total.Add(tx.Amount)
	}
	if total.IsPositive() {
		for i := range slicesOut {
			slicesOut[i].Share, _ = slicesOut[i].Amount.Div(total).Float64()
		}
	}
	slices.SortStableFunc(slicesOut, func(a, b Slice) int { return b.Amount.Cmp(a.Amount) })
	return slicesOut
}

// DailyTotal is the income and expense of one day.
type DailyTotal struct {
	Date    time.Time       `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// DailyTotals sums txs per day and direction, in date order.
func DailyTotals(txs []model.Transaction) []DailyTotal {
	index := make(map[time.Time]int)
	var days []DailyTotal
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		i, ok := index[tx.Date]
		if !ok {
			i = len(days)
			index[tx.Date] = i
			days = append(days, DailyTotal{Date: tx.Date})
		}
		switch tx.Direction {
		case model.DirectionIncome:
			days[i].Income = days[i].Income.Add(tx.Amount)
		case model.DirectionExpense:
			days[i].Expense = days[i].Expense.Add(tx.Amount)
		}
	}
	slices.SortFunc(days, func(a, b DailyTotal) int { return a.Date.Compare(b.Date) })
	return days
}
