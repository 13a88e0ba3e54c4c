package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/config"
	"github.com/Veraticus/bento/internal/export"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/Veraticus/bento/internal/sheets"
	"github.com/Veraticus/bento/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// memoryWorkbook backs the memory backend for the life of the process.
var memoryWorkbook = sheets.NewMemoryWorkbook()

// now is the command clock.
var now = time.Now

// session is an opened ledger plus the configuration it was opened with.
type session struct {
	app    *config.App
	store  *ledger.Store
	sqlite *storage.SQLiteStorage
	close  func() error
}

func (s *session) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		common.LogError(err, "Failed to close workbook", nil)
	}
}

// openSession resolves the configuration and opens the configured workbook.
func openSession(ctx context.Context) (*session, error) {
	app, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	s := &session{app: app}
	var wb ledger.Workbook
	switch app.Backend {
	case config.BackendMemory:
		wb = memoryWorkbook
	case config.BackendSQLite:
		db, err := storage.Open(ctx, app.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.sqlite = db
		s.close = db.Close
		wb = db
	case config.BackendSheets:
		sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return nil, common.NewUserError(
				"Google Sheets is not configured. Run 'bento auth sheets' or set backend: sqlite.", err)
		}
		book, err := sheets.NewWorkbook(ctx, *sheetsCfg, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
		}
		wb = book
	}

	s.store = ledger.NewStore(wb, ledger.Options{
		Now:        now,
		Categories: app.Categories,
		CacheTTL:   app.CacheTTL,
	})
	return s, nil
}

func (s *session) account() export.Account {
	return export.Account{
		Owner:    s.app.Statement.Owner,
		Currency: s.app.Statement.Currency,
		Product:  s.app.Statement.Product,
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(out(cmd), format, args...)
}

func writeln(cmd *cobra.Command, args ...any) {
	_, _ = fmt.Fprintln(out(cmd), args...)
}

// dateFlag parses a date flag, defaulting to today.
func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(raw) == "" {
		y, m, d := now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t := ledger.ParseDate(raw)
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: --%s %q is not a date (use %s)", common.ErrInvalidInput, name, raw, model.DateLayout)
	}
	return t, nil
}

// amountArg parses a rupiah amount that must be positive.
func amountArg(raw string) (decimal.Decimal, error) {
	d := ledger.ParseAmount(raw)
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount %q must be greater than zero", common.ErrInvalidInput, raw)
	}
	return d, nil
}

// periodFlag resolves --period, defaulting to the latest month with data.
func periodFlag(cmd *cobra.Command, txs []model.Transaction) (model.Period, error) {
	raw, _ := cmd.Flags().GetString("period")
	if strings.TrimSpace(raw) == "" {
		return report.DefaultPeriod(txs, now()), nil
	}
	p, err := model.ParsePeriod(raw)
	if err != nil {
		return model.Period{}, fmt.Errorf("%w: --period %q (use YYYY-MM)", common.ErrInvalidPeriod, raw)
	}
	return p, nil
}

func money(d decimal.Decimal) string {
	return report.FormatMoney(d)
}

func signedMoney(tx model.Transaction) string {
	if tx.IsIncome() {
		return "+" + money(tx.Amount)
	}
	return "-" + money(tx.Amount)
}

func statusLabel(tx model.Transaction) string {
	return tx.Status.Wire()
}

// transactionRows renders transactions for cli.RenderTable.
func transactionRows(txs []model.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			ledger.FormatDate(tx.Date),
			tx.Item,
			tx.Category,
			signedMoney(tx),
			statusLabel(tx),
			tx.PaymentMethod,
			tx.ID,
		})
	}
	return rows
}

var transactionHeaders = []string{"Tanggal", "Item", "Kategori", "Nominal", "Status", "Metode", "ID"}
