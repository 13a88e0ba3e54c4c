package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/report"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the monthly dashboard figures",
		RunE:  runSummary,
	}
	cmd.Flags().StringP("period", "p", "", "month as YYYY-MM (default latest month with data)")
	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	p, err := periodFlag(cmd, snap.Transactions)
	if err != nil {
		return err
	}

	sum := report.Summarize(snap.Transactions, p)
	_, assets := report.WalletBalances(snap.Wallets, snap.Transactions, s.app.MonitoringStart)

	var b strings.Builder
	fmt.Fprintf(&b, "Saldo global    %s\n", money(sum.GlobalBalance))
	fmt.Fprintf(&b, "Total aset      %s\n", money(assets))
	fmt.Fprintf(&b, "Pemasukan       %s\n", cli.IncomeStyle.Render(money(sum.Income)))
	fmt.Fprintf(&b, "Pengeluaran     %s\n", cli.ExpenseStyle.Render(money(sum.Expense)))
	fmt.Fprintf(&b, "Selisih         %s\n", money(sum.Net))
	fmt.Fprintf(&b, "Utang           %s (%d)", money(sum.DebtTotal), sum.DebtCount)
	writeln(cmd, cli.RenderBox(fmt.Sprintf("%s %s %d", cli.ChartIcon, p.MonthName(), p.Year), b.String()))

	monthly := report.Filter(snap.Transactions, p)
	if groups := report.ExpenseByCategory(monthly); len(groups) > 0 {
		writeln(cmd, cli.SubtitleStyle.Render("Pengeluaran per kategori"))
		writeln(cmd, cli.RenderTable([]string{"Kategori", "Nominal", "Porsi", "Transaksi"}, sliceRows(groups), 1, 2, 3))
	}
	if groups := report.ExpenseByMethod(monthly); len(groups) > 0 {
		writeln(cmd, cli.SubtitleStyle.Render("Pengeluaran per metode"))
		writeln(cmd, cli.RenderTable([]string{"Metode", "Nominal", "Porsi", "Transaksi"}, sliceRows(groups), 1, 2, 3))
	}
	return nil
}

func sliceRows(groups []report.Slice) [][]string {
	rows := make([][]string, 0, len(groups))
	for _, sl := range groups {
		rows = append(rows, []string{
			sl.Name,
			money(sl.Amount),
			fmt.Sprintf("%.1f%%", sl.Share*100),
			fmt.Sprint(sl.Count),
		})
	}
	return rows
}
