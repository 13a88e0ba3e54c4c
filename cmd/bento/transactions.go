package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <item> <amount>",
		Short: "Record a transaction",
		Long: `Record an income or expense in the Transaksi worksheet.

Examples:
  bento add "Nasi Padang" 25000 --category Makan --method Cash
  bento add "Gaji Maret" 5000000 --income --category Gaji --method "Livin (Mandiri)"
  bento add "Pinjam teman" 100000 --category Lainnya --unsettled --note Budi`,
		Args: cobra.ExactArgs(2),
		RunE: runAdd,
	}
	cmd.Flags().StringP("category", "c", "", "category (required)")
	cmd.Flags().StringP("method", "m", "", "payment method; ignored for unsettled entries")
	cmd.Flags().StringP("date", "d", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringP("note", "n", "", "free-form note")
	cmd.Flags().Bool("income", false, "record money coming in")
	cmd.Flags().Bool("unsettled", false, "record an unpaid debt")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := amountArg(args[1])
	if err != nil {
		return err
	}
	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}
	category, _ := cmd.Flags().GetString("category")
	method, _ := cmd.Flags().GetString("method")
	note, _ := cmd.Flags().GetString("note")
	income, _ := cmd.Flags().GetBool("income")
	unsettled, _ := cmd.Flags().GetBool("unsettled")

	tx := model.Transaction{
		Date:          date,
		Item:          args[0],
		Category:      category,
		Amount:        amount,
		Direction:     model.DirectionExpense,
		Status:        model.StatusSettled,
		PaymentMethod: method,
		Note:          note,
	}
	if income {
		tx.Direction = model.DirectionIncome
	}
	if unsettled {
		tx.Status = model.StatusUnsettled
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	saved, err := s.store.AddTransaction(cmd.Context(), tx)
	if err != nil {
		return err
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Recorded %s %s (%s)", saved.Item, signedMoney(saved), saved.ID)))
	return nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions of a month",
		RunE:  runList,
	}
	cmd.Flags().StringP("period", "p", "", "month as YYYY-MM (default latest month with data)")
	cmd.Flags().String("category", "", "only this category")
	cmd.Flags().Bool("all", false, "list every month")
	cmd.Flags().IntP("limit", "l", 0, "show at most this many rows")
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}

	txs := snap.Transactions
	title := "Semua transaksi"
	if all, _ := cmd.Flags().GetBool("all"); !all {
		p, err := periodFlag(cmd, txs)
		if err != nil {
			return err
		}
		txs = report.Filter(txs, p)
		title = p.MonthName() + " " + fmt.Sprint(p.Year)
	}
	if category, _ := cmd.Flags().GetString("category"); category != "" {
		filtered := make([]model.Transaction, 0, len(txs))
		for _, tx := range txs {
			if strings.EqualFold(tx.Category, category) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}
	txs = report.SortByDate(txs, true)
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}

	writeln(cmd, cli.FormatTitle(title))
	if len(txs) == 0 {
		writeln(cmd, cli.FormatInfo("No transactions"))
		return nil
	}
	writeln(cmd, cli.RenderTable(transactionHeaders, transactionRows(txs), 3))
	return nil
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Long: `Change fields of one transaction. Only the flags given are changed.

Example:
  bento edit 3f2a... --amount 30000 --note "harga naik"`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}
	cmd.Flags().String("item", "", "item description")
	cmd.Flags().String("amount", "", "amount")
	cmd.Flags().String("category", "", "category")
	cmd.Flags().String("method", "", "payment method")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD")
	cmd.Flags().String("note", "", "note")
	cmd.Flags().String("direction", "", "income or expense")
	cmd.Flags().String("status", "", "settled or unsettled")
	return cmd
}

var editFields = []string{"item", "amount", "category", "method", "date", "note", "direction", "status"}

func runEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	changed := false
	for _, name := range editFields {
		changed = changed || flags.Changed(name)
	}
	if !changed {
		return fmt.Errorf("%w: nothing to change", common.ErrInvalidInput)
	}

	apply := func(tx *model.Transaction) error {
		if flags.Changed("item") {
			tx.Item, _ = flags.GetString("item")
		}
		if flags.Changed("amount") {
			raw, _ := flags.GetString("amount")
			amount, err := amountArg(raw)
			if err != nil {
				return err
			}
			tx.Amount = amount
		}
		if flags.Changed("category") {
			tx.Category, _ = flags.GetString("category")
		}
		if flags.Changed("method") {
			tx.PaymentMethod, _ = flags.GetString("method")
		}
		if flags.Changed("note") {
			tx.Note, _ = flags.GetString("note")
		}
		if flags.Changed("date") {
			date, err := dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			tx.Date = date
		}
		if flags.Changed("direction") {
			raw, _ := flags.GetString("direction")
			d, err := model.ParseDirection(raw)
			if err != nil {
				return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
			}
			tx.Direction = d
		}
		if flags.Changed("status") {
			raw, _ := flags.GetString("status")
			st, err := model.ParseStatus(raw)
			if err != nil {
				return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
			}
			tx.Status = st
		}
		return nil
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	updated, err := s.store.UpdateTransaction(cmd.Context(), args[0], apply)
	if err != nil {
		return err
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Updated %s: %s %s on %s",
		updated.ID, updated.Item, signedMoney(updated), ledger.FormatDate(updated.Date))))
	return nil
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete transactions by id",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDelete,
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		p := cli.NewPrompter(cmd.InOrStdin(), out(cmd))
		ok, err := p.Confirm(cmd.Context(), fmt.Sprintf("Delete %d transaction(s)?", len(args)), false)
		if err != nil {
			return err
		}
		if !ok {
			writeln(cmd, cli.FormatInfo("Nothing deleted"))
			return nil
		}
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.store.DeleteTransactions(cmd.Context(), args)
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("no transaction matched: %w", common.ErrNotFound)
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted %d transaction(s)", removed)))
	return nil
}
