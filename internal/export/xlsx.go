package export

import (
	"fmt"
	"io"

	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetTransactions = "Transaksi"
	SheetSummary      = "Ringkasan"
	SheetWallets      = "Dompet"
	SheetBudget       = "Budget"
	SheetTargets      = "Target"
)

// Report is everything the XLSX workbook shows for one month.
type Report struct {
	Summary      report.Summary
	WalletTotal  decimal.Decimal
	Transactions []model.Transaction
	Wallets      []report.WalletBalance
	Budget       []report.VarianceLine
	Targets      []report.TargetStatus
	Period       model.Period
}

// WorkbookFileName is the download name of the XLSX report for p.
func WorkbookFileName(p model.Period) string {
	return fmt.Sprintf("Laporan_BentoPro_%s_%d.xlsx", p.MonthName(), p.Year)
}

// WriteXLSX renders r as a workbook with one sheet per view.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	x := &xlsxWriter{f: f}
	x.headerStyle = x.style(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2563EB"}},
	})
	x.moneyStyle = x.style(&excelize.Style{NumFmt: 3})

	if x.err == nil {
		x.err = f.SetSheetName("Sheet1", SheetTransactions)
	}
	x.transactions(r)
	x.summary(r)
	x.wallets(r)
	x.budget(r)
	x.targets(r)
	if x.err != nil {
		return fmt.Errorf("failed to build workbook: %w", x.err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// xlsxWriter keeps the first error so each sheet builder stays linear.
type xlsxWriter struct {
	f           *excelize.File
	err         error
	headerStyle int
	moneyStyle  int
}

func (x *xlsxWriter) style(s *excelize.Style) int {
	if x.err != nil {
		return 0
	}
	id, err := x.f.NewStyle(s)
	x.err = err
	return id
}

func (x *xlsxWriter) sheet(name string, header []string, widths []float64) {
	if x.err != nil {
		return
	}
	if name != SheetTransactions {
		if _, err := x.f.NewSheet(name); err != nil {
			x.err = err
			return
		}
	}
	x.row(name, 1, toAny(header)...)
	end, _ := excelize.CoordinatesToCellName(len(header), 1)
	if x.err == nil {
		x.err = x.f.SetCellStyle(name, "A1", end, x.headerStyle)
	}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if x.err == nil {
			x.err = x.f.SetColWidth(name, col, col, width)
		}
	}
	if x.err == nil {
		x.err = x.f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
}

func (x *xlsxWriter) row(sheet string, n int, values ...any) {
	if x.err != nil {
		return
	}
	cell, _ := excelize.CoordinatesToCellName(1, n)
	x.err = x.f.SetSheetRow(sheet, cell, &values)
}

// money applies the grouped number format to the given columns of rows 2..last.
func (x *xlsxWriter) money(sheet string, last int, cols ...int) {
	if last < 2 {
		return
	}
	for _, c := range cols {
		from, _ := excelize.CoordinatesToCellName(c, 2)
		to, _ := excelize.CoordinatesToCellName(c, last)
		if x.err == nil {
			x.err = x.f.SetCellStyle(sheet, from, to, x.moneyStyle)
		}
	}
}

func (x *xlsxWriter) transactions(r Report) {
	x.sheet(SheetTransactions,
		[]string{"Tanggal", "Item", "Kategori", "Nominal", "Tipe", "Status", "Metode Pembayaran", "Catatan"},
		[]float64{12, 32, 14, 14, 13, 12, 18, 28})
	for i, tx := range report.SortByDate(r.Transactions, false) {
		x.row(SheetTransactions, i+2,
			dateCell(tx),
			tx.Item,
			tx.Category,
			num(tx.Amount),
			tx.Direction.Wire(),
			tx.Status.Wire(),
			tx.PaymentMethod,
			tx.Note,
		)
	}
	x.money(SheetTransactions, len(r.Transactions)+1, 4)
}

func (x *xlsxWriter) summary(r Report) {
	x.sheet(SheetSummary, []string{"Keterangan", "Nilai"}, []float64{28, 18})
	s := r.Summary
	rows := [][2]any{
		{"Periode", r.Period.String()},
		{"Saldo Global", num(s.GlobalBalance)},
		{"Pemasukan Bulan Ini", num(s.Income)},
		{"Pengeluaran Bulan Ini", num(s.Expense)},
		{"Net Bulan Ini", num(s.Net)},
		{"Total Utang", num(s.DebtTotal)},
		{"Jumlah Utang", s.DebtCount},
		{"Total Aset Dompet", num(r.WalletTotal)},
	}
	for i, kv := range rows {
		x.row(SheetSummary, i+2, kv[0], kv[1])
	}
	x.money(SheetSummary, len(rows)+1, 2)
}

func (x *xlsxWriter) wallets(r Report) {
	x.sheet(SheetWallets,
		[]string{"Dompet", "Saldo Awal", "Sejak", "Pemasukan", "Pengeluaran", "Saldo"},
		[]float64{20, 14, 12, 14, 14, 14})
	for i, w := range r.Wallets {
		x.row(SheetWallets, i+2,
			w.Name, num(w.Opening), w.Since.Format(model.DateLayout),
			num(w.Income), num(w.Expense), num(w.Balance))
	}
	n := len(r.Wallets) + 2
	x.row(SheetWallets, n, "Total", nil, nil, nil, nil, num(r.WalletTotal))
	x.money(SheetWallets, n, 2, 4, 5, 6)
}

func (x *xlsxWriter) budget(r Report) {
	x.sheet(SheetBudget,
		[]string{"Kategori", "Budget", "Terpakai", "Sisa", "Persen", "Status"},
		[]float64{16, 14, 14, 14, 10, 12})
	for i, line := range r.Budget {
		status := "Aman"
		if line.Over {
			status = "Over"
		}
		x.row(SheetBudget, i+2,
			line.Category, num(line.Budget), num(line.Actual), num(line.Remaining), line.UsedPct, status)
	}
	x.money(SheetBudget, len(r.Budget)+1, 2, 3, 4)
}

func (x *xlsxWriter) targets(r Report) {
	x.sheet(SheetTargets,
		[]string{"Nama Target", "Target", "Terkumpul", "Sisa", "Persen"},
		[]float64{24, 14, 14, 14, 10})
	for i, t := range r.Targets {
		x.row(SheetTargets, i+2, t.Name, num(t.Amount), num(t.Accumulated), num(t.Remaining), t.Percent)
	}
	x.money(SheetTargets, len(r.Targets)+1, 2, 3, 4)
}

func dateCell(tx model.Transaction) string {
	if tx.Date.IsZero() {
		return ""
	}
	return tx.Date.Format(model.DateLayout)
}

func num(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
