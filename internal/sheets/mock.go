package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
)

// MemoryWorkbook is an in-memory Workbook for tests and the memory backend.
type MemoryWorkbook struct {
	ReadFunc   func(ctx context.Context, sheet string) (ledger.Table, error)
	WriteFunc  func(ctx context.Context, sheet string, table ledger.Table) error
	sheets     map[string]ledger.Table
	WriteCalls []WriteCall
	ReadCount  int
	mu         sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error error
	Sheet string
	Table ledger.Table
}

// NewMemoryWorkbook creates a workbook holding empty Transaksi and Dompet
// worksheets.
func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{
		sheets: map[string]ledger.Table{
			ledger.SheetTransactions: {Header: append([]string(nil), ledger.TransactionColumns...)},
			ledger.SheetWallets:      {Header: append([]string(nil), ledger.WalletColumns...)},
		},
	}
}

// Read implements ledger.Workbook.
func (m *MemoryWorkbook) Read(ctx context.Context, sheet string) (ledger.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadCount++
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, sheet)
	}
	table, ok := m.sheets[sheet]
	if !ok {
		return ledger.Table{}, fmt.Errorf("%s: %w", sheet, common.ErrSheetNotFound)
	}
	return table.Clone(), nil
}

// Write implements ledger.Workbook.
func (m *MemoryWorkbook) Write(ctx context.Context, sheet string, table ledger.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, sheet, table)
	}
	m.WriteCalls = append(m.WriteCalls, WriteCall{Sheet: sheet, Table: table.Clone(), Error: err})
	if err != nil {
		return err
	}
	m.sheets[sheet] = table.Clone()
	return nil
}

// Seed replaces a worksheet without recording a write.
func (m *MemoryWorkbook) Seed(sheet string, table ledger.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sheets[sheet] = table.Clone()
}

// Drop removes a worksheet.
func (m *MemoryWorkbook) Drop(sheet string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sheets, sheet)
}

// Sheet returns a copy of a worksheet and whether it exists.
func (m *MemoryWorkbook) Sheet(sheet string) (ledger.Table, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.sheets[sheet]
	return table.Clone(), ok
}

// GetWriteCalls returns a copy of all write calls.
func (m *MemoryWorkbook) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriteCall, len(m.WriteCalls))
	copy(calls, m.WriteCalls)
	return calls
}

// Reads returns how many times Read was called.
func (m *MemoryWorkbook) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ReadCount
}

// SetWriteError configures every following Write to fail with err.
func (m *MemoryWorkbook) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteFunc = func(_ context.Context, _ string, _ ledger.Table) error {
		return err
	}
}
