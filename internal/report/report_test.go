package report

import (
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func tx(date time.Time, item, category, method string, amount int64, dir model.TransactionDirection, status model.SettlementStatus) model.Transaction {
	return model.Transaction{
		Date:          date,
		Item:          item,
		Category:      category,
		PaymentMethod: method,
		Amount:        decimal.NewFromInt(amount),
		Direction:     dir,
		Status:        status,
	}
}

func fixture() []model.Transaction {
	in, out := model.DirectionIncome, model.DirectionExpense
	ok, debt := model.StatusSettled, model.StatusUnsettled
	return []model.Transaction{
		tx(d(2025, 12, 20), "Bonus", "Bonus", "Cash", 1000000, in, ok),
		tx(d(2026, 2, 1), "Gaji", "Gaji", "Livin (Mandiri)", 8000000, in, ok),
		tx(d(2026, 2, 17), "Sebelum Reset", "Makan", "Cash", 50000, out, ok),
		tx(d(2026, 2, 20), "Makan Siang", "Makan", "Cash", 40000, out, ok),
		tx(d(2026, 3, 1), "Gaji", "Gaji", "Livin (Mandiri)", 8000000, in, ok),
		tx(d(2026, 3, 2), "Belanja Bulanan", "Belanja", "Livin (Mandiri)", 1500000, out, ok),
		tx(d(2026, 3, 2), "Kopi", "Jajan", "DANA", 25000, out, ok),
		tx(d(2026, 3, 5), "Pinjam Budi", "Lainnya", model.UnsettledMethod, 200000, out, debt),
		tx(time.Time{}, "Tanpa Tanggal", "Makan", "Cash", 10000, out, ok),
	}
}

func TestPeriods(t *testing.T) {
	txs := fixture()
	assert.Equal(t, []int{2026, 2025}, Years(txs))
	assert.Equal(t, []time.Month{time.February, time.March}, MonthsOf(txs, 2026))
	assert.Equal(t, []model.Period{
		{Year: 2026, Month: time.March},
		{Year: 2026, Month: time.February},
		{Year: 2025, Month: time.December},
	}, Periods(txs))
}

func TestDefaultPeriod(t *testing.T) {
	txs := fixture()
	tests := []struct {
		now  time.Time
		want model.Period
		name string
	}{
		{name: "current month present", now: d(2026, 2, 10), want: model.Period{Year: 2026, Month: time.February}},
		{name: "current month missing uses latest month of year", now: d(2026, 7, 1), want: model.Period{Year: 2026, Month: time.March}},
		{name: "current year missing uses latest year", now: d(2030, 1, 1), want: model.Period{Year: 2026, Month: time.March}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultPeriod(txs, tt.now))
		})
	}
	assert.Equal(t, model.Period{Year: 2031, Month: time.May}, DefaultPeriod(nil, d(2031, 5, 9)))
}

func TestFilter(t *testing.T) {
	march := model.Period{Year: 2026, Month: time.March}
	got := Filter(fixture(), march)
	require.Len(t, got, 4)
	for _, tx := range got {
		assert.True(t, march.Contains(tx.Date))
	}
}

func TestSummarize(t *testing.T) {
	txs := fixture()
	s := Summarize(txs, model.Period{Year: 2026, Month: time.March})

	assert.Equal(t, "8000000", s.Income.String())
	assert.Equal(t, "1725000", s.Expense.String())
	assert.True(t, s.Income.Sub(s.Expense).Equal(s.Net))
	assert.Equal(t, "200000", s.DebtTotal.String())
	assert.Equal(t, 1, s.DebtCount)
	assert.Equal(t, 4, s.Transactions)

	// 17,000,000 income minus 1,825,000 expense including the undated row.
	assert.Equal(t, "15175000", s.GlobalBalance.String())
}

func TestBreakdowns(t *testing.T) {
	march := Filter(fixture(), model.Period{Year: 2026, Month: time.March})

	byMethod := ExpenseByMethod(march)
	require.Len(t, byMethod, 3)
	assert.Equal(t, "Livin (Mandiri)", byMethod[0].Name)

	byCategory := ExpenseByCategory(march)
	require.Len(t, byCategory, 3)
	assert.Equal(t, "Belanja", byCategory[0].Name)
	total := 0.0
	for _, s := range byCategory {
		total += s.Share
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	days := DailyTotals(march)
	require.Len(t, days, 3)
	assert.True(t, d(2026, 3, 1).Equal(days[0].Date))
	assert.Equal(t, "8000000", days[0].Income.String())
	assert.Equal(t, "1525000", days[1].Expense.String())
}

func TestWalletBalances(t *testing.T) {
	wallets := []model.Wallet{
		{Name: "Cash", OpeningBalance: decimal.NewFromInt(100000)},
		{Name: "Livin (Mandiri)", OpeningBalance: decimal.NewFromInt(0), ResetDate: d(2026, 3, 1)},
		{Name: "Octo (CIMB)", OpeningBalance: decimal.NewFromInt(5000)},
	}
	balances, total := WalletBalances(wallets, fixture(), d(2026, 2, 18))

	require.Len(t, balances, 3)
	assert.Equal(t, "60000", balances[0].Balance.String(), "rows before the reset date are ignored")
	assert.Equal(t, "6500000", balances[1].Balance.String())
	assert.Equal(t, "5000", balances[2].Balance.String())

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.Balance)
	}
	assert.True(t, sum.Equal(total))
}

func TestBudgetPlan(t *testing.T) {
	nominal := BudgetPlan{
		Income: decimal.NewFromInt(5000000),
		Mode:   BudgetNominal,
		Inputs: []BudgetInput{
			{Category: "Makan", Value: decimal.NewFromInt(2000000)},
			{Category: "Transport", Value: decimal.NewFromInt(-5)},
		},
	}
	res := nominal.Allocate()
	assert.Equal(t, "2000000", res.Allocated.String())
	assert.Equal(t, "3000000", res.Remaining.String())

	percent := BudgetPlan{
		Income: decimal.NewFromInt(5000000),
		Mode:   BudgetPercent,
		Inputs: []BudgetInput{
			{Category: "Makan", Value: decimal.NewFromInt(60)},
			{Category: "Hiburan", Value: decimal.NewFromInt(50)},
		},
	}
	res = percent.Allocate()
	assert.Equal(t, "3000000", res.Allocations[0].Amount.String())
	assert.Equal(t, "-500000", res.Remaining.String(), "over-allocation goes negative")

	_, err := ParseBudgetMode("weird")
	assert.Error(t, err)
	mode, err := ParseBudgetMode("persen")
	require.NoError(t, err)
	assert.Equal(t, BudgetPercent, mode)
}

func TestVariance(t *testing.T) {
	plan := BudgetPlan{
		Income: decimal.NewFromInt(8000000),
		Inputs: []BudgetInput{
			{Category: "Belanja", Value: decimal.NewFromInt(1000000)},
			{Category: "Jajan", Value: decimal.NewFromInt(100000)},
		},
	}
	lines := Variance(plan, Filter(fixture(), model.Period{Year: 2026, Month: time.March}))

	require.Len(t, lines, 3)
	assert.Equal(t, "Belanja", lines[0].Category)
	assert.True(t, lines[0].Over)
	assert.Equal(t, 150, lines[0].UsedPct)
	assert.Equal(t, "-500000", lines[0].Remaining.String())

	assert.Equal(t, "Jajan", lines[1].Category)
	assert.False(t, lines[1].Over)
	assert.Equal(t, 25, lines[1].UsedPct)

	assert.Equal(t, "Lainnya", lines[2].Category, "unplanned spend is listed last")
	assert.Equal(t, 100, lines[2].UsedPct)
}

func TestTargetProgress(t *testing.T) {
	statuses := TargetProgress([]model.Target{
		{Name: "Laptop", Amount: decimal.NewFromInt(300), Accumulated: decimal.NewFromInt(100)},
		{Name: "Liburan", Amount: decimal.NewFromInt(100), Accumulated: decimal.NewFromInt(150)},
		{Name: "Kosong", Amount: decimal.Zero, Accumulated: decimal.NewFromInt(10)},
	})
	require.Len(t, statuses, 3)
	assert.Equal(t, 33, statuses[0].Percent)
	assert.Equal(t, 100, statuses[1].Percent)
	assert.True(t, statuses[1].Reached)
	assert.InDelta(t, 1.0, statuses[1].Progress, 1e-9)
	assert.Equal(t, 0, statuses[2].Percent)
}

func TestBuildStatement(t *testing.T) {
	st := BuildStatement(fixture(), model.Period{Year: 2026, Month: time.March})

	assert.True(t, d(2026, 3, 1).Equal(st.From))
	assert.True(t, d(2026, 3, 31).Equal(st.To))
	require.Len(t, st.Rows, 4)
	assert.Equal(t, "Gaji (Livin (Mandiri))", st.Rows[0].Description)
	assert.Equal(t, "8000000", st.Rows[0].Balance.String())
	assert.Equal(t, "6475000", st.Rows[2].Balance.String())
	assert.Equal(t, "1725000", st.TotalDebit.String())
	assert.Equal(t, "8000000", st.TotalCredit.String())
	assert.True(t, st.TotalCredit.Sub(st.TotalDebit).Equal(st.Net))
	assert.True(t, st.Rows[len(st.Rows)-1].Balance.Equal(st.Net))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rp 1,234,567", FormatMoney(decimal.NewFromInt(1234567)))
	assert.Equal(t, "Rp 0", FormatMoney(decimal.Zero))
	assert.Equal(t, "Rp 1,000", FormatMoney(decimal.RequireFromString("999.6")))
	assert.Equal(t, "1,500.50", FormatNumber(decimal.RequireFromString("1500.5"), 2))
}
