package main

import (
	"fmt"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/report"
	"github.com/spf13/cobra"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Compare the budget plan with actual spending",
		RunE:  runBudgetPlan,
	}
	cmd.Flags().StringP("period", "p", "", "month as YYYY-MM (default latest month with data)")

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Show the configured allocation and its variance",
		RunE:  runBudgetPlan,
	}
	plan.Flags().StringP("period", "p", "", "month as YYYY-MM (default latest month with data)")
	cmd.AddCommand(plan)

	income := &cobra.Command{
		Use:   "record-income [amount]",
		Short: "Record the planned monthly income as a transaction",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRecordIncome,
	}
	income.Flags().StringP("method", "m", ledger.PlannerIncomeMethod, "wallet receiving the income")
	income.Flags().StringP("date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.AddCommand(income)
	return cmd
}

func runBudgetPlan(cmd *cobra.Command, _ []string) error {
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

	plan := s.app.Budget
	alloc := plan.Allocate()
	writeln(cmd, cli.FormatTitle(fmt.Sprintf("Budget %s %d (%s)", p.MonthName(), p.Year, plan.Mode)))
	writeln(cmd, fmt.Sprintf("Pemasukan %s, dialokasikan %s, sisa %s",
		money(alloc.Income), money(alloc.Allocated), money(alloc.Remaining)))
	if alloc.Remaining.IsNegative() {
		writeln(cmd, cli.FormatWarning("The plan allocates more than the income"))
	}

	lines := report.Variance(plan, report.Filter(snap.Transactions, p))
	if len(lines) == 0 {
		writeln(cmd, cli.FormatInfo("No allocations configured"))
		return nil
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		state := cli.SuccessStyle.Render("OK")
		if l.Over {
			state = cli.ErrorStyle.Render("Over")
		}
		rows = append(rows, []string{
			l.Category,
			money(l.Budget),
			money(l.Actual),
			money(l.Remaining),
			fmt.Sprintf("%d%%", l.UsedPct),
			state,
		})
	}
	writeln(cmd, cli.RenderTable([]string{"Kategori", "Budget", "Aktual", "Sisa", "Terpakai", ""}, rows, 1, 2, 3, 4))
	return nil
}

func runRecordIncome(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	amount := s.app.Budget.Income
	if len(args) == 1 {
		if amount, err = amountArg(args[0]); err != nil {
			return err
		}
	}
	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}
	method, _ := cmd.Flags().GetString("method")

	tx, err := s.store.RecordIncome(cmd.Context(), amount, method, date)
	if err != nil {
		return err
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Recorded income %s to %s", money(tx.Amount), tx.PaymentMethod)))
	return nil
}
