package components

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/Veraticus/bento/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func press(m QuickAddModel, keys ...tea.KeyMsg) QuickAddModel {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var (
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	back  = tea.KeyMsg{Type: tea.KeyShiftTab}
	right = tea.KeyMsg{Type: tea.KeyRight}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newForm() QuickAddModel {
	return NewQuickAddModel(model.DefaultCategories(), []string{"Cash", "DANA"}, today, themes.Bento)
}

func TestQuickAdd_SubmitsExpense(t *testing.T) {
	m := press(newForm(), tab, typed("Kopi"), tab, typed("Rp 18,000"))
	m = press(m, enter)

	require.True(t, m.IsComplete(), "error: %v", m.Err())
	tx := m.GetResult()
	assert.Equal(t, "Kopi", tx.Item)
	assert.Equal(t, today, tx.Date)
	assert.Equal(t, "18000", tx.Amount.String())
	assert.Equal(t, model.DirectionExpense, tx.Direction)
	assert.Equal(t, "Makan", tx.Category)
	assert.Equal(t, "Cash", tx.PaymentMethod)
}

func TestQuickAdd_IncomeSwitchesCategories(t *testing.T) {
	m := press(newForm(), tab, typed("Bonus Q1"), tab, typed("1000000"))
	m = press(m, tab, right) // Tipe -> Pemasukan
	m = press(m, tab, right) // Kategori -> second income category
	m = press(m, enter)

	require.True(t, m.IsComplete(), "error: %v", m.Err())
	assert.Equal(t, model.DirectionIncome, m.GetResult().Direction)
	assert.Equal(t, "Bonus", m.GetResult().Category)
}

func TestQuickAdd_UnsettledDisablesMethod(t *testing.T) {
	m := press(newForm(), tab, typed("Utang makan"), tab, typed("30000"))
	m = press(m, tab, tab, tab) // Status
	assert.Equal(t, "Status", m.Focused())
	m = press(m, right)
	m = press(m, tab)
	assert.Equal(t, "Catatan", m.Focused(), "method is skipped while unsettled")
	m = press(m, back)
	assert.Equal(t, "Status", m.Focused())
	assert.Contains(t, m.View(), "belum lunas")

	m = press(m, enter)
	require.True(t, m.IsComplete(), "error: %v", m.Err())
	assert.Equal(t, model.StatusUnsettled, m.GetResult().Status)
	assert.Equal(t, model.UnsettledMethod, m.GetResult().PaymentMethod)
}

func TestQuickAdd_Validation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		err  error
	}{
		{name: "empty item", keys: []tea.KeyMsg{enter}, err: model.ErrEmptyItem},
		{name: "zero amount", keys: []tea.KeyMsg{tab, typed("Teh"), enter}, err: model.ErrNonPositive},
		{name: "bad date", keys: []tea.KeyMsg{
			{Type: tea.KeyCtrlU}, typed("kemarin"), tab, typed("Teh"), tab, typed("5000"), enter,
		}, err: model.ErrMissingDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newForm(), tt.keys...)
			assert.False(t, m.IsComplete())
			assert.ErrorIs(t, m.Err(), tt.err)
			assert.Contains(t, m.View(), tt.err.Error())
		})
	}
}

func TestQuickAdd_Cancel(t *testing.T) {
	m := press(newForm(), tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.IsCancelled())
	assert.False(t, m.IsComplete())
}

func TestDailyChart(t *testing.T) {
	theme := themes.Bento
	assert.Contains(t, DailyChart(theme, nil, 80), "Belum ada transaksi")

	out := DailyChart(theme, []report.DailyTotal{
		{Date: today, Income: decimal.NewFromInt(1_500_000), Expense: decimal.NewFromInt(20_000)},
		{Date: today.AddDate(0, 0, 1), Expense: decimal.NewFromInt(75_000)},
	}, 80)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "15 Mar")
	assert.Contains(t, lines[0], "1.5jt")
	assert.Contains(t, lines[1], "-75rb")
}

func TestBreakdown(t *testing.T) {
	out := Breakdown(themes.Bento, []report.Slice{
		{Name: "Makan", Amount: decimal.NewFromInt(75000), Share: 0.75},
		{Name: "Transport", Amount: decimal.NewFromInt(25000), Share: 0.25},
	}, 80)
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "Rp 25,000")
	assert.Contains(t, Breakdown(themes.Bento, nil, 80), "Tidak ada pengeluaran")
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "950", compact(decimal.NewFromInt(950)))
	assert.Equal(t, "25rb", compact(decimal.NewFromInt(25_000)))
	assert.Equal(t, "-2.3jt", compact(decimal.NewFromInt(-2_250_000)))
}
