// Package ledger is the data-access layer over a spreadsheet-like workbook.
// Every mutation reads the fresh worksheet, edits it in memory and writes the
// whole worksheet back.
package ledger

import (
	"context"
	"slices"
	"strings"
)

// Worksheet names.
const (
	SheetTransactions = "Transaksi"
	SheetWallets      = "Dompet"
	SheetTargets      = "Target"
	SheetRecurring    = "Rutin"
)

// Workbook is a collection of named worksheets that can only be read and
// overwritten as a whole.
type Workbook interface {
	Read(ctx context.Context, sheet string) (Table, error)
	Write(ctx context.Context, sheet string, table Table) error
}

// Table is the contents of one worksheet. The first row of the sheet is the
// header; Rows never include it.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at row/column name, or "".
func (t Table) Cell(row int, name string) string {
	col := t.Column(name)
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{Header: slices.Clone(t.Header), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// isBlankRow reports whether every cell of the row is empty.
func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
