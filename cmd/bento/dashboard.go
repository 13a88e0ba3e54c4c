package main

import (
	"github.com/Veraticus/bento/internal/tui"
	"github.com/Veraticus/bento/internal/tui/themes"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive terminal dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			theme, _ := cmd.Flags().GetString("theme")
			return tui.Run(cmd.Context(),
				tui.WithLedger(s.store),
				tui.WithTheme(themes.GetTheme(theme)),
				tui.WithBudget(s.app.Budget),
				tui.WithPaymentMethods(s.app.PaymentMethods),
				tui.WithResetFallback(s.app.MonitoringStart),
				tui.WithClock(now),
			)
		},
	}
	cmd.Flags().String("theme", "bento", "color theme (bento, catppuccin-mocha)")
	return cmd
}
