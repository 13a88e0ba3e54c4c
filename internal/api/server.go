// Package api serves the ledger over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/bento/internal/export"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Default request budget.
const (
	DefaultRateLimit = 10
	DefaultBurst     = 20
)

const shutdownTimeout = 10 * time.Second

// Ledger is the part of the ledger store the API needs.
type Ledger interface {
	Snapshot(ctx context.Context) (*ledger.Snapshot, error)
	AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	ReplacePeriod(ctx context.Context, period model.Period, edited []model.Transaction) (int, error)
	DeleteTransactions(ctx context.Context, ids []string) (int, error)
	SettleDebts(ctx context.Context, settlements []ledger.Settlement) (ledger.SettleResult, error)
	SaveWallets(ctx context.Context, wallets []model.Wallet) error
	SaveTargets(ctx context.Context, targets []model.Target) error
	ApplyRecurring(ctx context.Context, now time.Time, progress ledger.ProgressFunc) ([]model.Transaction, error)
}

// Options configures a Server.
type Options struct {
	ResetFallback time.Time
	Now           func() time.Time
	Logger        *slog.Logger
	Account       export.Account
	Budget        report.BudgetPlan
	RateLimit     float64
	Burst         int
}

// Server exposes a Ledger over HTTP.
type Server struct {
	ledger  Ledger
	log     *slog.Logger
	limiter *rate.Limiter
	now     func() time.Time
	opts    Options
}

// NewServer creates a Server over l.
func NewServer(l Ledger, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ResetFallback.IsZero() {
		opts.ResetFallback = ledger.DefaultMonitoringStart
	}
	if opts.Account == (export.Account{}) {
		opts.Account = export.DefaultAccount()
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	return &Server{
		ledger:  l,
		log:     opts.Logger,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		now:     opts.Now,
		opts:    opts,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	r.Use(rateLimit(s.limiter))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleAddTransaction)
			r.Delete("/", s.handleDeleteTransactions)
			r.Put("/period/{period}", s.handleReplacePeriod)
		})

		r.Get("/debts", s.handleDebts)
		r.Post("/debts/settle", s.handleSettle)

		r.Get("/wallets", s.handleWallets)
		r.Put("/wallets", s.handleSaveWallets)

		r.Get("/targets", s.handleTargets)
		r.Put("/targets", s.handleSaveTargets)

		r.Get("/budget", s.handleBudget)
		r.Post("/recurring/apply", s.handleApplyRecurring)

		r.Get("/export/pdf", s.handleExportPDF)
		r.Get("/export/xlsx", s.handleExportXLSX)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.log.Info("API stopped")
	return nil
}
