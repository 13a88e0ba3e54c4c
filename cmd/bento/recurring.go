package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rutin"},
		Short:   "Manage recurring transactions",
		RunE:    runRecurringList,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recurring rules",
		RunE:  runRecurringList,
	})

	add := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Add a recurring rule",
		Long: `Add a rule that generates a transaction on every run date.

Example:
  bento recurring add Netflix 54000 --category Hiburan --method DANA --frequency monthly --start 2026-01-10`,
		Args: cobra.ExactArgs(2),
		RunE: runRecurringAdd,
	}
	add.Flags().StringP("category", "c", "", "category (required)")
	add.Flags().StringP("method", "m", "", "payment method (required)")
	add.Flags().StringP("frequency", "f", "monthly", "daily, weekly, monthly or yearly")
	add.Flags().String("start", "", "first run as YYYY-MM-DD (default today)")
	add.Flags().Bool("income", false, "generate income instead of expense")
	_ = add.MarkFlagRequired("category")
	_ = add.MarkFlagRequired("method")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Generate every transaction that has come due",
		RunE:  runRecurringApply,
	})
	return cmd
}

func runRecurringList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	writeln(cmd, cli.FormatTitle("Rutin"))
	if len(snap.Rules) == 0 {
		writeln(cmd, cli.FormatInfo("No recurring rules"))
		return nil
	}
	rows := make([][]string, 0, len(snap.Rules))
	for _, r := range snap.Rules {
		active := "ya"
		if !r.Active {
			active = "tidak"
		}
		rows = append(rows, []string{
			r.Name,
			r.Category,
			money(r.Amount),
			string(r.Frequency),
			ledger.FormatDate(r.NextRun),
			active,
		})
	}
	writeln(cmd, cli.RenderTable([]string{"Nama", "Kategori", "Nominal", "Frekuensi", "Berikutnya", "Aktif"}, rows, 2))
	return nil
}

func runRecurringAdd(cmd *cobra.Command, args []string) error {
	amount, err := amountArg(args[1])
	if err != nil {
		return err
	}
	start, err := dateFlag(cmd, "start")
	if err != nil {
		return err
	}
	rawFreq, _ := cmd.Flags().GetString("frequency")
	freq, err := model.ParseFrequency(rawFreq)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	category, _ := cmd.Flags().GetString("category")
	method, _ := cmd.Flags().GetString("method")
	direction := model.DirectionExpense
	if income, _ := cmd.Flags().GetBool("income"); income {
		direction = model.DirectionIncome
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	rule, err := s.store.AddRule(cmd.Context(), model.RecurringRule{
		Name:          args[0],
		Category:      category,
		Amount:        amount,
		Direction:     direction,
		PaymentMethod: method,
		Frequency:     freq,
		StartDate:     start,
		Active:        true,
	})
	if err != nil {
		return err
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Rule %s added, first run %s", rule.Name, ledger.FormatDate(rule.NextRun))))
	return nil
}

func runRecurringApply(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Checking rules"),
		progressbar.OptionClearOnFinish(),
	)
	generated, err := s.store.ApplyRecurring(cmd.Context(), now(), func(done, total int) {
		bar.ChangeMax(total)
		_ = bar.Set(done)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if len(generated) == 0 {
		writeln(cmd, cli.FormatInfo("Nothing due"))
		return nil
	}
	writeln(cmd, cli.RenderTable(transactionHeaders, transactionRows(generated), 3))
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Generated %d transaction(s)", len(generated))))
	return nil
}
