package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/Veraticus/bento/internal/sheets"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) (*ledger.Store, *sheets.MemoryWorkbook) {
	t.Helper()
	wb := sheets.NewMemoryWorkbook()
	wb.Seed(ledger.SheetTransactions, ledger.Table{
		Header: ledger.TransactionColumns,
		Rows: [][]string{
			{"2026-03-01", "Gaji Bulanan", "Gaji", "5000000", "Pemasukan", "Lunas", "", "Livin (Mandiri)", "t1"},
			{"2026-03-02", "Nasi Padang", "Makan", "25000", "Pengeluaran", "Lunas", "", "Cash", "t2"},
			{"2026-03-05", "Pinjam teman", "Lainnya", "100000", "Pengeluaran", "Belum Lunas", "Budi", "-", "t3"},
			{"2026-02-10", "Bioskop", "Hiburan", "75000", "Pengeluaran", "Lunas", "", "DANA", "t4"},
		},
	})
	wb.Seed(ledger.SheetWallets, ledger.Table{
		Header: ledger.WalletColumns,
		Rows:   [][]string{{"Cash", "100000", "2026-01-01"}},
	})
	store := ledger.NewStore(wb, ledger.Options{Now: func() time.Time { return testNow }})
	return store, wb
}

func newTestModel(t *testing.T, l Ledger) Model {
	t.Helper()
	return NewModel(
		WithLedger(l),
		WithClock(func() time.Time { return testNow }),
		WithSize(120, 40),
		WithBudget(report.BudgetPlan{
			Income: decimal.NewFromInt(5000000),
			Mode:   report.BudgetNominal,
			Inputs: []report.BudgetInput{{Category: "Makan", Value: decimal.NewFromInt(1000000)}},
		}),
	)
}

// step feeds msg to m and returns the new model and command.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// settle runs cmd and feeds its message back until no command remains.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		m, cmd = step(t, m, msg)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func loaded(t *testing.T, l Ledger) Model {
	t.Helper()
	m := newTestModel(t, l)
	return settle(t, m, m.Init())
}

func TestModel_LoadsDefaultPeriod(t *testing.T) {
	store, _ := seededStore(t)
	m := loaded(t, store)

	require.True(t, m.ready)
	assert.Equal(t, model.Period{Year: 2026, Month: time.March}, m.Period())
	assert.Len(t, m.txTable.Rows(), 3)
	assert.Len(t, m.debtTable.Rows(), 1)

	view := m.View()
	assert.Contains(t, view, "Saldo Global")
	assert.Contains(t, view, "Rp 4,800,000")
	assert.Contains(t, view, "Utang (1)")
}

func TestModel_ScreenNavigation(t *testing.T) {
	store, _ := seededStore(t)
	m := loaded(t, store)

	m, _ = step(t, m, keyMsg("tab"))
	assert.Equal(t, ScreenWallets, m.Screen())
	assert.Contains(t, m.View(), "Total Aset")

	m, _ = step(t, m, keyMsg("shift+tab"))
	m, _ = step(t, m, keyMsg("shift+tab"))
	assert.Equal(t, ScreenDebts, m.Screen(), "shift+tab wraps around")
	assert.Contains(t, m.View(), "Pinjam teman")

	for _, want := range []Screen{ScreenDashboard, ScreenWallets, ScreenBudget} {
		m, _ = step(t, m, keyMsg("tab"))
		assert.Equal(t, want, m.Screen())
	}
	assert.Contains(t, m.View(), "Dialokasikan")
}

func TestModel_MonthNavigation(t *testing.T) {
	store, _ := seededStore(t)
	m := loaded(t, store)

	m, _ = step(t, m, keyMsg("["))
	assert.Equal(t, model.Period{Year: 2026, Month: time.February}, m.Period())
	require.Len(t, m.txTable.Rows(), 1)
	assert.Equal(t, "Bioskop", m.txTable.Rows()[0][1])
	assert.Len(t, m.debtTable.Rows(), 1, "debts span every month")

	m, _ = step(t, m, keyMsg("]"))
	m, _ = step(t, m, keyMsg("]"))
	assert.Equal(t, model.Period{Year: 2026, Month: time.April}, m.Period())
	assert.Empty(t, m.txTable.Rows())
}

func TestModel_QuickAdd(t *testing.T) {
	store, wb := seededStore(t)
	m := loaded(t, store)

	m, _ = step(t, m, keyMsg("a"))
	require.True(t, m.Adding())

	m, _ = step(t, m, keyMsg("enter"))
	assert.True(t, m.Adding(), "invalid form stays open")
	assert.ErrorIs(t, m.form.Err(), model.ErrEmptyItem)

	m, _ = step(t, m, keyMsg("tab"))
	m, _ = step(t, m, keyMsg("Bakso"))
	m, _ = step(t, m, keyMsg("tab"))
	m, _ = step(t, m, keyMsg("20000"))
	m, cmd := step(t, m, keyMsg("enter"))
	require.False(t, m.Adding())
	require.NotNil(t, cmd)

	m = settle(t, m, cmd)
	require.NoError(t, m.lastError)
	assert.Contains(t, m.status, "Bakso")
	assert.Len(t, m.txTable.Rows(), 4)

	calls := wb.GetWriteCalls()
	require.NotEmpty(t, calls)
	assert.Equal(t, ledger.SheetTransactions, calls[len(calls)-1].Sheet)
}

func TestModel_QuickAddCancel(t *testing.T) {
	store, wb := seededStore(t)
	m := loaded(t, store)

	m, _ = step(t, m, keyMsg("a"))
	m, _ = step(t, m, keyMsg("q"))
	assert.True(t, m.Adding(), "q types into the form instead of quitting")
	m, _ = step(t, m, keyMsg("esc"))
	assert.False(t, m.Adding())
	assert.Empty(t, wb.GetWriteCalls())
}

func TestModel_LoadError(t *testing.T) {
	wb := sheets.NewMemoryWorkbook()
	wb.ReadFunc = func(context.Context, string) (ledger.Table, error) {
		return ledger.Table{}, errors.New("quota exceeded")
	}
	m := loaded(t, ledger.NewStore(wb, ledger.Options{}))

	assert.False(t, m.ready)
	assert.Contains(t, m.View(), "quota exceeded")

	wb.ReadFunc = nil
	m, cmd := step(t, m, keyMsg("r"))
	m = settle(t, m, cmd)
	assert.True(t, m.ready)
}

func TestModel_Quit(t *testing.T) {
	store, _ := seededStore(t)
	m := loaded(t, store)

	m, cmd := step(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestRun_RequiresLedger(t *testing.T) {
	assert.Error(t, Run(context.Background()))
}
