package main

import (
	"fmt"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/report"
	"github.com/spf13/cobra"
)

func targetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "targets",
		Aliases: []string{"target"},
		Short:   "Track savings targets",
		RunE:    runTargetsList,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show progress of every target",
		RunE:  runTargetsList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <amount>",
		Short: "Add a target or change its amount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			amount := ledger.ParseAmount(args[1])
			if err := s.store.SetTarget(cmd.Context(), args[0], amount); err != nil {
				return err
			}
			writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Target %s set to %s", args[0], money(amount))))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "contribute <name> <amount>",
		Short: "Add savings to a target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := amountArg(args[1])
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			t, err := s.store.Contribute(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("%s: %s of %s (%d%%)", t.Name, money(t.Accumulated), money(t.Amount), t.Percent())
			if t.Percent() >= 100 {
				writeln(cmd, cli.FormatSuccess(msg+" reached!"))
				return nil
			}
			writeln(cmd, cli.FormatSuccess(msg))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.store.DeleteTarget(cmd.Context(), args[0]); err != nil {
				return err
			}
			writeln(cmd, cli.FormatSuccess("Deleted target "+args[0]))
			return nil
		},
	})
	return cmd
}

func runTargetsList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	writeln(cmd, cli.FormatTitle(cli.TargetIcon+" Target"))
	targets := report.TargetProgress(snap.Targets)
	if len(targets) == 0 {
		writeln(cmd, cli.FormatInfo("No targets yet"))
		return nil
	}
	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		rows = append(rows, []string{
			t.Name,
			money(t.Amount),
			money(t.Accumulated),
			money(t.Remaining),
			fmt.Sprintf("%d%%", t.Percent),
		})
	}
	writeln(cmd, cli.RenderTable([]string{"Nama", "Target", "Terkumpul", "Kurang", "Progres"}, rows, 1, 2, 3, 4))
	return nil
}
