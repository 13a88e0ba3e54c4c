package tui

import (
	"context"
	"time"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/Veraticus/bento/internal/tui/themes"
)

// Ledger is the part of ledger.Store the dashboard needs.
type Ledger interface {
	Snapshot(ctx context.Context) (*ledger.Snapshot, error)
	Invalidate()
	AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	Categories() model.Categories
}

// Config holds TUI configuration.
type Config struct {
	Theme          themes.Theme
	ResetFallback  time.Time
	Ledger         Ledger
	Now            func() time.Time
	PaymentMethods []string
	Budget         report.BudgetPlan
	Width          int
	Height         int
	Timeout        time.Duration
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:          themes.Bento,
		Width:          100,
		Height:         30,
		Now:            time.Now,
		Timeout:        30 * time.Second,
		ResetFallback:  ledger.DefaultMonitoringStart,
		PaymentMethods: model.DefaultPaymentMethods(),
	}
}

// WithLedger sets the data source.
func WithLedger(l Ledger) Option {
	return func(c *Config) {
		c.Ledger = l
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithBudget sets the plan shown on the Budget screen.
func WithBudget(plan report.BudgetPlan) Option {
	return func(c *Config) {
		c.Budget = plan
	}
}

// WithPaymentMethods sets the wallets offered by the quick-add form.
func WithPaymentMethods(methods []string) Option {
	return func(c *Config) {
		if len(methods) > 0 {
			c.PaymentMethods = methods
		}
	}
}

// WithResetFallback sets the reset date for wallets that have none.
func WithResetFallback(t time.Time) Option {
	return func(c *Config) {
		c.ResetFallback = t
	}
}

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}
