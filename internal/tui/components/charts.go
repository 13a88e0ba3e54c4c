package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/bento/internal/report"
	"github.com/Veraticus/bento/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Card renders a titled figure box.
func Card(theme themes.Theme, title, value string, width int, style lipgloss.Style) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.Subtitle.Render(title),
		style.Bold(true).Render(value),
	)
	return theme.Card.Width(width).Render(body)
}

// DailyChart renders one row per day with income and expense bars scaled
// to the largest daily figure.
func DailyChart(theme themes.Theme, days []report.DailyTotal, width int) string {
	if len(days) == 0 {
		return theme.Faint.Render("Belum ada transaksi bulan ini.")
	}
	barWidth := max(width-24, 10)
	peak := decimal.Zero
	for _, d := range days {
		peak = decimal.Max(peak, d.Income, d.Expense)
	}

	lines := make([]string, 0, len(days))
	for _, d := range days {
		in := scale(d.Income, peak, barWidth)
		out := scale(d.Expense, peak, barWidth)
		bar := theme.BarIncome.Render(strings.Repeat("▇", in)) +
			theme.BarExpense.Render(strings.Repeat("▇", out))
		lines = append(lines, fmt.Sprintf("%s %s %s",
			theme.Faint.Render(d.Date.Format("02 Jan")),
			bar,
			theme.Faint.Render(compact(d.Income.Sub(d.Expense)))))
	}
	return strings.Join(lines, "\n")
}

// Breakdown renders slices as labelled horizontal bars with their share.
func Breakdown(theme themes.Theme, slices []report.Slice, width int) string {
	if len(slices) == 0 {
		return theme.Faint.Render("Tidak ada pengeluaran.")
	}
	barWidth := max(width-40, 8)
	lines := make([]string, 0, len(slices))
	for _, s := range slices {
		n := int(s.Share * float64(barWidth))
		if n == 0 && s.Amount.IsPositive() {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("%-18s %s %5.1f%% %s",
			truncateLabel(themes.GetCategoryIcon(s.Name)+" "+s.Name, 18),
			theme.BarExpense.Render(strings.Repeat("█", n)+strings.Repeat(" ", barWidth-n)),
			s.Share*100,
			report.FormatMoney(s.Amount)))
	}
	return strings.Join(lines, "\n")
}

// ProgressLine renders a progress bar followed by a caption.
func ProgressLine(bar progress.Model, pct float64, caption string) string {
	return bar.ViewAs(min(max(pct, 0), 1)) + "  " + caption
}

func scale(v, peak decimal.Decimal, width int) int {
	if !peak.IsPositive() || !v.IsPositive() {
		return 0
	}
	n := int(v.Div(peak).Mul(decimal.NewFromInt(int64(width))).IntPart())
	return max(n, 1)
}

// compact shortens rupiah figures to rb/jt, e.g. "-1.2jt".
func compact(d decimal.Decimal) string {
	abs := d.Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
		return sign + abs.Div(decimal.NewFromInt(1_000_000)).StringFixed(1) + "jt"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1_000)):
		return sign + abs.Div(decimal.NewFromInt(1_000)).StringFixed(0) + "rb"
	}
	return sign + abs.StringFixed(0)
}

func truncateLabel(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
