package main

import (
	"fmt"
	"slices"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const skipChoice = "Lewati"

func debtsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debts",
		Short: "List unsettled transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			snap, err := s.store.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			debts := report.SortByDate(report.Unsettled(snap.Transactions), false)
			writeln(cmd, cli.FormatTitle(cli.DebtIcon+" Utang"))
			if len(debts) == 0 {
				writeln(cmd, cli.FormatSuccess("No outstanding debts"))
				return nil
			}
			total := decimal.Zero
			for _, tx := range debts {
				total = total.Add(tx.Amount)
			}
			writeln(cmd, cli.RenderTable(transactionHeaders, transactionRows(debts), 3))
			writeln(cmd, cli.BoldStyle.Render(fmt.Sprintf("Total: %s in %d entries", money(total), len(debts))))
			return nil
		},
	}
}

func settleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle [id...]",
		Short: "Mark debts as paid",
		Long: `Mark unsettled transactions as paid. With ids only those debts are
settled; otherwise every debt is offered in turn. Without --method you are
asked which payment method paid each one.`,
		RunE: runSettle,
	}
	cmd.Flags().StringP("method", "m", "", "payment method used for every settled debt")
	return cmd
}

func runSettle(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	debts := report.SortByDate(report.Unsettled(snap.Transactions), false)
	if len(args) > 0 {
		debts, err = selectDebts(debts, args)
		if err != nil {
			return err
		}
	}
	if len(debts) == 0 {
		writeln(cmd, cli.FormatSuccess("No outstanding debts"))
		return nil
	}
	debts, copies := collapseDebts(debts)

	method, _ := cmd.Flags().GetString("method")
	prompter := cli.NewPrompter(cmd.InOrStdin(), out(cmd))
	choices := append(slices.Clone(s.app.PaymentMethods), skipChoice)

	settlements := make([]ledger.Settlement, 0, len(debts))
	for _, tx := range debts {
		chosen := method
		if chosen == "" {
			line := fmt.Sprintf("%s  %s  %s", ledger.FormatDate(tx.Date), tx.Item, money(tx.Amount))
			if n := copies[debtKey(tx)]; n > 1 {
				line += fmt.Sprintf("  (%d rows)", n)
			}
			writeln(cmd, cli.BoldStyle.Render(line))
			chosen, err = prompter.Choose(cmd.Context(), "Paid with", choices, len(choices)-1)
			if err != nil {
				return err
			}
			if chosen == skipChoice {
				continue
			}
		}
		settlements = append(settlements, ledger.Settlement{
			Date:   tx.Date,
			Item:   tx.Item,
			Amount: tx.Amount,
			Method: chosen,
		})
	}
	if len(settlements) == 0 {
		writeln(cmd, cli.FormatInfo("Nothing settled"))
		return nil
	}

	res, err := s.store.SettleDebts(cmd.Context(), settlements)
	if err != nil {
		return err
	}
	for _, sk := range res.Skipped {
		writeln(cmd, cli.FormatWarning(fmt.Sprintf("Skipped %s (%s): %s",
			sk.Settlement.Item, ledger.FormatDate(sk.Settlement.Date), sk.Reason)))
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Settled %d debt(s), %d row(s) updated", res.Applied, res.RowsChanged)))
	return nil
}

func selectDebts(debts []model.Transaction, ids []string) ([]model.Transaction, error) {
	selected := make([]model.Transaction, 0, len(ids))
	for _, id := range ids {
		idx := slices.IndexFunc(debts, func(tx model.Transaction) bool { return tx.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("unsettled transaction %s: %w", id, common.ErrNotFound)
		}
		selected = append(selected, debts[idx])
	}
	return selected, nil
}

// debtKey is what a settlement matches on; rows sharing it are settled
// together.
func debtKey(tx model.Transaction) string {
	return ledger.FormatDate(tx.Date) + "\x00" + tx.Item + "\x00" + tx.Amount.String()
}

// collapseDebts keeps the first debt of each key and counts the rows behind it.
func collapseDebts(debts []model.Transaction) ([]model.Transaction, map[string]int) {
	copies := make(map[string]int, len(debts))
	out := make([]model.Transaction, 0, len(debts))
	for _, tx := range debts {
		k := debtKey(tx)
		if copies[k] == 0 {
			out = append(out, tx)
		}
		copies[k]++
	}
	return out, copies
}
