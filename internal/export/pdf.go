// Package export renders monthly reports as PDF statements and XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Account is the account block printed on a statement.
type Account struct {
	Product  string
	Owner    string
	Currency string
}

// DefaultAccount returns the account block used when nothing is configured.
func DefaultAccount() Account {
	return Account{Product: "Bento Finance Tracker", Owner: "Pengguna Utama", Currency: "IDR"}
}

const (
	statementBrand      = "BENTO PRO"
	maxDescriptionRunes = 45
)

// Statement column widths in millimetres.
var statementColumns = []struct {
	title string
	width float64
}{
	{"Tanggal", 20},
	{"Deskripsi", 75},
	{"Pengeluaran", 30},
	{"Pemasukan", 30},
	{"Saldo", 35},
}

// StatementFileName is the download name of the PDF statement for p.
func StatementFileName(p model.Period) string {
	return fmt.Sprintf("E-Statement_BentoPro_%s_%d.pdf", p.MonthName(), p.Year)
}

// WritePDF renders st as a bank-style e-statement.
func WritePDF(w io.Writer, st report.Statement, acct Account) error {
	doc := statementPDF(st, acct)
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to render statement: %w", err)
	}
	return nil
}

func statementPDF(st report.Statement, acct Account) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 8, statementBrand, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, "PERSONAL FINANCE STATEMENT", "", 1, "R", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, "Laporan Rekening / Statement of Account", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, periodLine(st.Period), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	for _, info := range [][2]string{
		{"Jenis Produk", acct.Product},
		{"Nama", acct.Owner},
		{"Mata Uang", acct.Currency},
	} {
		pdf.CellFormat(30, 6, info[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(": "+info[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(37, 99, 235)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range statementColumns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range st.Rows {
		cells := []string{
			row.Date.Format("02/01/2006"),
			tr(truncate(row.Description, maxDescriptionRunes)),
			amountCell(row.Debit),
			amountCell(row.Credit),
			report.FormatNumber(row.Balance, 2),
		}
		aligns := []string{"C", "L", "R", "R", "R"}
		for i, col := range statementColumns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 9)
	for _, total := range []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Total Pengeluaran", st.TotalDebit},
		{"Total Pemasukan", st.TotalCredit},
		{"Net Saldo Bulan Ini", st.Net},
	} {
		pdf.CellFormat(40, 6, total.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, acct.Currency+" "+report.FormatNumber(total.amount, 2), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	for _, line := range []string{
		"IMPORTANT!",
		"Dokumen e-statement ini di-generate secara otomatis oleh sistem aplikasi Bento Pro.",
		"Data keuangan Anda bersifat rahasia. Jangan membagikannya dengan alasan apa pun.",
	} {
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
	return pdf
}

func periodLine(p model.Period) string {
	month := p.MonthName()
	return fmt.Sprintf("Periode: 01 %s %d - %d %s %d", month, p.Year, p.Last().Day(), month, p.Year)
}

// amountCell leaves the cell blank for zero so each row shows one side.
func amountCell(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return report.FormatNumber(d, 2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
