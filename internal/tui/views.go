package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/report"
	"github.com/Veraticus/bento/internal/tui/components"
	"github.com/Veraticus/bento/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var transactionColumns = []table.Column{
	{Title: "Tanggal", Width: 10},
	{Title: "Item", Width: 24},
	{Title: "Kategori", Width: 12},
	{Title: "Nominal", Width: 14},
	{Title: "Tipe", Width: 11},
	{Title: "Status", Width: 11},
	{Title: "Metode", Width: 16},
}

var debtColumns = []table.Column{
	{Title: "Tanggal", Width: 10},
	{Title: "Item", Width: 28},
	{Title: "Kategori", Width: 12},
	{Title: "Nominal", Width: 14},
	{Title: "Catatan", Width: 24},
}

func newTable(cols []table.Column) table.Model {
	return table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
}

// refreshTables rebuilds the table rows for the current period.
func (m *Model) refreshTables() {
	var rows []table.Row
	for _, tx := range report.SortByDate(m.monthly(), true) {
		rows = append(rows, table.Row{
			ledger.FormatDate(tx.Date),
			tx.Item,
			tx.Category,
			report.FormatMoney(tx.Amount),
			tx.Direction.Wire(),
			tx.Status.Wire(),
			tx.PaymentMethod,
		})
	}
	m.txTable.SetRows(rows)
	m.txTable.GotoTop()

	var debts []table.Row
	if m.snapshot != nil {
		for _, tx := range report.SortByDate(report.Unsettled(m.snapshot.Transactions), false) {
			debts = append(debts, table.Row{
				ledger.FormatDate(tx.Date),
				tx.Item,
				tx.Category,
				report.FormatMoney(tx.Amount),
				tx.Note,
			})
		}
	}
	m.debtTable.SetRows(debts)
	m.debtTable.GotoTop()
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		if m.lastError != nil {
			return m.theme.StatusError.Render("Gagal memuat data: "+m.lastError.Error()) + "\n" +
				m.theme.Faint.Render("[r] coba lagi | [q] keluar")
		}
		return m.theme.Subtitle.Render("Memuat data…")
	}

	var body string
	if m.adding {
		body = m.form.View()
	} else {
		switch m.screen {
		case ScreenDashboard:
			body = m.renderDashboard()
		case ScreenWallets:
			body = m.renderWallets()
		case ScreenBudget:
			body = m.renderBudget()
		case ScreenTargets:
			body = m.renderTargets()
		case ScreenTransactions:
			body = m.renderTransactions()
		case ScreenDebts:
			body = m.renderDebts()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		body,
		"",
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("🍱 Bento Pro") + "  " +
		m.theme.Subtitle.Render(fmt.Sprintf("%s %d", m.period.MonthName(), m.period.Year))

	tabs := make([]string, 0, screenCount)
	for s := Screen(0); s < screenCount; s++ {
		style := m.theme.TabInactive
		if s == m.screen {
			style = m.theme.TabActive
		}
		tabs = append(tabs, style.Render(s.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderFooter() string {
	var lines []string
	if m.lastError != nil {
		lines = append(lines, m.theme.StatusError.Render("✗ "+m.lastError.Error()))
	} else if m.status != "" {
		lines = append(lines, m.theme.StatusSuccess.Render(m.status))
	}
	if !m.adding {
		lines = append(lines, m.help.View(m.keymap))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDashboard() string {
	s := report.Summarize(m.snapshot.Transactions, m.period)
	cardWidth := max((m.width-8)/4, 18)
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		components.Card(m.theme, "Saldo Global", report.FormatMoney(s.GlobalBalance), cardWidth, m.theme.Normal),
		components.Card(m.theme, "Pemasukan", report.FormatMoney(s.Income), cardWidth, m.theme.Income),
		components.Card(m.theme, "Pengeluaran", report.FormatMoney(s.Expense), cardWidth, m.theme.Expense),
		components.Card(m.theme, fmt.Sprintf("Utang (%d)", s.DebtCount), report.FormatMoney(s.DebtTotal), cardWidth, m.theme.StatusWarning),
	)

	monthly := m.monthly()
	half := max(m.width/2-2, 30)
	breakdowns := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Panel.Width(half).Render(m.theme.Bold.Render("Per Kategori")+"\n"+
			components.Breakdown(m.theme, report.ExpenseByCategory(monthly), half-4)),
		m.theme.Panel.Width(half).Render(m.theme.Bold.Render("Per Metode")+"\n"+
			components.Breakdown(m.theme, report.ExpenseByMethod(monthly), half-4)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		cards,
		m.theme.Panel.Width(m.width-4).Render(m.theme.Bold.Render("Arus Harian")+"\n"+
			components.DailyChart(m.theme, report.DailyTotals(monthly), m.width-8)),
		breakdowns,
	)
}

func (m Model) renderWallets() string {
	balances, total := report.WalletBalances(m.snapshot.Wallets, m.snapshot.Transactions, m.config.ResetFallback)
	if len(balances) == 0 {
		return m.theme.Faint.Render("Belum ada dompet. Tambahkan lewat `bento wallets set`.")
	}
	lines := []string{m.theme.Bold.Render(fmt.Sprintf("%-20s %16s %16s %16s %16s  %s", "Dompet", "Saldo Awal", "Masuk", "Keluar", "Saldo", "Sejak"))}
	for _, b := range balances {
		balance := report.FormatMoney(b.Balance)
		style := m.theme.Normal
		if b.Balance.IsNegative() {
			style = m.theme.Expense
		}
		lines = append(lines, fmt.Sprintf("%-20s %16s %16s %16s %s  %s",
			b.Name,
			report.FormatMoney(b.Opening),
			report.FormatMoney(b.Income),
			report.FormatMoney(b.Expense),
			style.Render(fmt.Sprintf("%16s", balance)),
			m.theme.Faint.Render(ledger.FormatDate(b.Since))))
	}
	lines = append(lines, "", m.theme.Title.Render("Total Aset: "+report.FormatMoney(total)))
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderBudget() string {
	plan := m.config.Budget
	if len(plan.Inputs) == 0 {
		return m.theme.Faint.Render("Belum ada rencana budget. Atur `budget.allocations` di config.")
	}
	res := plan.Allocate()
	remaining := m.theme.Income
	if res.Remaining.IsNegative() {
		remaining = m.theme.Expense
	}
	head := fmt.Sprintf("Pemasukan %s | Dialokasikan %s | Sisa %s",
		report.FormatMoney(res.Income),
		report.FormatMoney(res.Allocated),
		remaining.Render(report.FormatMoney(res.Remaining)))

	lines := []string{head, ""}
	for _, line := range report.Variance(plan, m.monthly()) {
		caption := fmt.Sprintf("%s / %s (%d%%)", report.FormatMoney(line.Actual), report.FormatMoney(line.Budget), line.UsedPct)
		if line.Over {
			caption = m.theme.StatusError.Render(caption + " over")
		}
		lines = append(lines, fmt.Sprintf("%-14s %s",
			themes.GetCategoryIcon(line.Category)+" "+line.Category,
			components.ProgressLine(m.bar, float64(line.UsedPct)/100, caption)))
	}
	return m.theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderTargets() string {
	targets := report.TargetProgress(m.snapshot.Targets)
	if len(targets) == 0 {
		return m.theme.Faint.Render("Belum ada target impian.")
	}
	var lines []string
	for _, t := range targets {
		caption := fmt.Sprintf("%d%%  %s / %s", t.Percent, report.FormatMoney(t.Accumulated), report.FormatMoney(t.Amount))
		if t.Reached {
			caption = m.theme.StatusSuccess.Render(caption + " ✓")
		}
		lines = append(lines, m.theme.Bold.Render(t.Name), components.ProgressLine(m.bar, t.Progress, caption), "")
	}
	return m.theme.Panel.Render(strings.TrimRight(strings.Join(lines, "\n"), "\n"))
}

func (m Model) renderTransactions() string {
	if len(m.txTable.Rows()) == 0 {
		return m.theme.Faint.Render("Tidak ada transaksi di " + m.period.String() + ".")
	}
	return m.txTable.View()
}

func (m Model) renderDebts() string {
	s := report.Summarize(m.snapshot.Transactions, m.period)
	head := m.theme.StatusWarning.Render(fmt.Sprintf("Total utang: %s (%d transaksi)", report.FormatMoney(s.DebtTotal), s.DebtCount))
	if s.DebtCount == 0 {
		return m.theme.StatusSuccess.Render("Tidak ada utang. 🎉")
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, m.debtTable.View(),
		m.theme.Faint.Render("Lunasi dengan `bento settle`."))
}
