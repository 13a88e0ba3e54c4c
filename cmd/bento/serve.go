package main

import (
	"log/slog"

	"github.com/Veraticus/bento/internal/api"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over a JSON HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = s.app.Server.Addr
			}
			srv := api.NewServer(s.store, api.Options{
				ResetFallback: s.app.MonitoringStart,
				Now:           now,
				Logger:        slog.Default(),
				Account:       s.account(),
				Budget:        s.app.Budget,
				RateLimit:     s.app.Server.RateLimit,
				Burst:         s.app.Server.Burst,
			})
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default server.addr)")
	return cmd
}
