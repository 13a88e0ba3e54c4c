package main

import (
	"fmt"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/common"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [sheet]",
		Short: "Show recent worksheet writes (sqlite backend)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if s.sqlite == nil {
				return common.NewUserError("Write history is only kept by the sqlite backend.",
					fmt.Errorf("%w: backend %s has no write log", common.ErrInvalidConfig, s.app.Backend))
			}

			sheet := ""
			if len(args) == 1 {
				sheet = args[0]
			}
			limit, _ := cmd.Flags().GetInt("limit")
			records, err := s.sqlite.History(cmd.Context(), sheet, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				writeln(cmd, cli.FormatInfo("No writes recorded"))
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					fmt.Sprint(r.ID),
					r.WrittenAt.Format("2006-01-02 15:04:05"),
					r.Sheet,
					fmt.Sprint(r.Rows),
					fmt.Sprint(r.Columns),
				})
			}
			writeln(cmd, cli.RenderTable([]string{"#", "Waktu", "Sheet", "Baris", "Kolom"}, rows, 0, 3, 4))
			return nil
		},
	}
	cmd.Flags().IntP("limit", "l", 20, "number of entries")
	return cmd
}
