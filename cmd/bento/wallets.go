package main

import (
	"fmt"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/report"
	"github.com/spf13/cobra"
)

func walletsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Show and reset wallet balances",
		RunE:  runWalletsList,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every wallet's current balance",
		RunE:  runWalletsList,
	})

	set := &cobra.Command{
		Use:   "set <wallet> <balance>",
		Short: "Reset a wallet's opening balance",
		Long: `Reset a wallet to a known balance. Only transactions on or after the
reset date count toward it afterwards. Unknown wallets are created.`,
		Args: cobra.ExactArgs(2),
		RunE: runWalletsSet,
	}
	set.Flags().StringP("date", "d", "", "reset date as YYYY-MM-DD (default today)")
	cmd.AddCommand(set)
	return cmd
}

func runWalletsList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	balances, total := report.WalletBalances(snap.Wallets, snap.Transactions, s.app.MonitoringStart)

	writeln(cmd, cli.FormatTitle(cli.WalletIcon+" Dompet"))
	if len(balances) == 0 {
		writeln(cmd, cli.FormatInfo("No wallets yet. Add one with 'bento wallets set <name> <balance>'"))
		return nil
	}
	rows := make([][]string, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, []string{
			b.Name,
			ledger.FormatDate(b.Since),
			money(b.Opening),
			money(b.Income),
			money(b.Expense),
			money(b.Balance),
		})
	}
	writeln(cmd, cli.RenderTable([]string{"Wallet", "Sejak", "Saldo Awal", "Masuk", "Keluar", "Saldo"}, rows, 2, 3, 4, 5))
	writeln(cmd, cli.BoldStyle.Render("Total aset: "+money(total)))
	return nil
}

func runWalletsSet(cmd *cobra.Command, args []string) error {
	balance := ledger.ParseAmount(args[1])
	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.ResetWallet(cmd.Context(), args[0], balance, date); err != nil {
		return err
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("%s reset to %s from %s", args[0], money(balance), ledger.FormatDate(date))))
	return nil
}
