package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/sheets"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

const smallOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>IDR
<BANKACCTFROM>
<BANKID>008
<ACCTID>1370012345678
<ACCTTYPE>SAVINGS
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260201120000[0:GMT]
<DTEND>20260228120000[0:GMT]
<STMTTRN>
<TRNTYPE>DIRECTDEP
<DTPOSTED>20260201120000[0:GMT]
<TRNAMT>5000000.00
<FITID>2026020101
<NAME>PT MAJU JAYA
</STMTTRN>
<STMTTRN>
<TRNTYPE>POS
<DTPOSTED>20260203120000[0:GMT]
<TRNAMT>-125500.00
<FITID>2026020301
<NAME>POS PURCHASE INDOMARET KEMANG
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>4874500.00
<DTASOF>20260228120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func seedMemory(t *testing.T) *sheets.MemoryWorkbook {
	t.Helper()
	wb := sheets.NewMemoryWorkbook()
	wb.Seed(ledger.SheetTransactions, ledger.Table{
		Header: ledger.TransactionColumns,
		Rows: [][]string{
			{"2026-03-01", "Gaji Bulanan", "Gaji", "5000000", "Pemasukan", "Lunas", "", "Livin (Mandiri)", "t1"},
			{"2026-03-02", "Nasi Padang", "Makan", "25000", "Pengeluaran", "Lunas", "", "Cash", "t2"},
			{"2026-03-05", "Pinjam teman", "Lainnya", "100000", "Pengeluaran", "Belum Lunas", "Budi", "-", "t3"},
			{"2026-02-10", "Bioskop", "Hiburan", "75000", "Pengeluaran", "Lunas", "", "DANA", "t4"},
		},
	})
	wb.Seed(ledger.SheetWallets, ledger.Table{
		Header: ledger.WalletColumns,
		Rows:   [][]string{{"Cash", "100000", "2026-01-01"}},
	})

	prevWB, prevNow := memoryWorkbook, now
	memoryWorkbook = wb
	now = func() time.Time { return testNow }
	t.Cleanup(func() {
		memoryWorkbook = prevWB
		now = prevNow
	})
	return wb
}

// execute runs the root command against the memory backend unless the
// caller set BENTO_BACKEND.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	t.Setenv("HOME", t.TempDir())
	if os.Getenv("BENTO_BACKEND") == "" {
		t.Setenv("BENTO_BACKEND", "memory")
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func cell(t *testing.T, wb *sheets.MemoryWorkbook, sheet string, row int, col string) string {
	t.Helper()
	table, ok := wb.Sheet(sheet)
	require.True(t, ok)
	require.Greater(t, len(table.Rows), row)
	return table.Cell(row, col)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "bento dev\n", out)
}

func TestAddAndList(t *testing.T) {
	wb := seedMemory(t)

	out, err := execute(t, "", "add", "Bakso", "18000", "--category", "Makan", "--method", "Cash", "--date", "2026-03-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded Bakso -Rp 18,000")
	assert.Equal(t, "Bakso", cell(t, wb, ledger.SheetTransactions, 4, ledger.ColItem))

	out, err = execute(t, "", "add", "Patungan", "50000", "--category", "Lainnya", "--unsettled", "--date", "2026-03-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded Patungan")
	assert.Equal(t, "Belum Lunas", cell(t, wb, ledger.SheetTransactions, 5, ledger.ColStatus))
	assert.Equal(t, "-", cell(t, wb, ledger.SheetTransactions, 5, ledger.ColMethod))

	out, err = execute(t, "", "list", "--period", "2026-03")
	require.NoError(t, err)
	assert.Contains(t, out, "March 2026")
	assert.Contains(t, out, "Bakso")
	assert.NotContains(t, out, "Bioskop")

	out, err = execute(t, "", "list", "--all", "--category", "hiburan")
	require.NoError(t, err)
	assert.Contains(t, out, "Bioskop")
	assert.NotContains(t, out, "Bakso")
}

func TestAdd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"category for wrong direction", []string{"add", "Bakso", "18000", "--category", "Gaji", "--method", "Cash"}, common.ErrInvalidInput},
		{"zero amount", []string{"add", "Bakso", "0", "--category", "Makan", "--method", "Cash"}, common.ErrInvalidInput},
		{"bad date", []string{"add", "Bakso", "18000", "--category", "Makan", "--method", "Cash", "--date", "kemarin"}, common.ErrInvalidInput},
		{"settled without method", []string{"add", "Bakso", "18000", "--category", "Makan"}, common.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := seedMemory(t)
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, wb.GetWriteCalls())
		})
	}
}

func TestEdit(t *testing.T) {
	wb := seedMemory(t)

	out, err := execute(t, "", "edit", "t2", "--amount", "30000", "--note", "harga naik")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated t2")
	assert.Equal(t, "30000", cell(t, wb, ledger.SheetTransactions, 1, ledger.ColAmount))
	assert.Equal(t, "harga naik", cell(t, wb, ledger.SheetTransactions, 1, ledger.ColNote))

	_, err = execute(t, "", "edit", "t2")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = execute(t, "", "edit", "nope", "--item", "x")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = execute(t, "", "edit", "t2", "--status", "maybe")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name      string
		stdin     string
		args      []string
		wantOut   string
		wantRows  int
		wantWrite bool
	}{
		{"confirmed", "y\n", []string{"delete", "t2"}, "Deleted 1 transaction(s)", 3, true},
		{"declined", "n\n", []string{"delete", "t2"}, "Nothing deleted", 4, false},
		{"skip prompt", "", []string{"delete", "t2", "t4", "--yes"}, "Deleted 2 transaction(s)", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := seedMemory(t)
			out, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
			table, _ := wb.Sheet(ledger.SheetTransactions)
			assert.Len(t, table.Rows, tt.wantRows)
			assert.Equal(t, tt.wantWrite, len(wb.GetWriteCalls()) > 0)
		})
	}

	seedMemory(t)
	_, err := execute(t, "", "delete", "missing", "--yes")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDebts(t *testing.T) {
	seedMemory(t)
	out, err := execute(t, "", "debts")
	require.NoError(t, err)
	assert.Contains(t, out, "Pinjam teman")
	assert.Contains(t, out, "Total: Rp 100,000 in 1 entries")
}

func TestSettle(t *testing.T) {
	t.Run("with method flag", func(t *testing.T) {
		wb := seedMemory(t)
		out, err := execute(t, "", "settle", "t3", "--method", "DANA")
		require.NoError(t, err)
		assert.Contains(t, out, "Settled 1 debt(s), 1 row(s) updated")
		assert.Equal(t, "Lunas", cell(t, wb, ledger.SheetTransactions, 2, ledger.ColStatus))
		assert.Equal(t, "DANA", cell(t, wb, ledger.SheetTransactions, 2, ledger.ColMethod))
	})

	t.Run("interactive choice", func(t *testing.T) {
		wb := seedMemory(t)
		out, err := execute(t, "4\n", "settle")
		require.NoError(t, err)
		assert.Contains(t, out, "Pinjam teman")
		assert.Contains(t, out, "[4] DANA")
		assert.Equal(t, "DANA", cell(t, wb, ledger.SheetTransactions, 2, ledger.ColMethod))
	})

	t.Run("skip", func(t *testing.T) {
		wb := seedMemory(t)
		out, err := execute(t, "\n", "settle")
		require.NoError(t, err)
		assert.Contains(t, out, "Nothing settled")
		assert.Empty(t, wb.GetWriteCalls())
	})

	t.Run("identical rows settle once", func(t *testing.T) {
		wb := seedMemory(t)
		table, _ := wb.Sheet(ledger.SheetTransactions)
		table.Rows = append(table.Rows,
			[]string{"2026-03-05", "Pinjam teman", "Lainnya", "100000", "Pengeluaran", "Belum Lunas", "Budi lagi", "-", "t5"})
		wb.Seed(ledger.SheetTransactions, table)

		out, err := execute(t, "4\n", "settle")
		require.NoError(t, err)
		assert.Contains(t, out, "(2 rows)")
		assert.Contains(t, out, "Settled 1 debt(s), 2 row(s) updated")
		assert.NotContains(t, out, "Skipped")
		assert.Equal(t, "Lunas", cell(t, wb, ledger.SheetTransactions, 4, ledger.ColStatus))
	})

	t.Run("unknown id", func(t *testing.T) {
		seedMemory(t)
		_, err := execute(t, "", "settle", "t2", "--method", "Cash")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestSummary(t *testing.T) {
	seedMemory(t)

	out, err := execute(t, "", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "March 2026")
	assert.Contains(t, out, "Rp 4,800,000")
	assert.Contains(t, out, "Rp 75,000")
	assert.Contains(t, out, "Makan")

	_, err = execute(t, "", "summary", "--period", "Maret")
	assert.ErrorIs(t, err, common.ErrInvalidPeriod)
}

func TestWallets(t *testing.T) {
	wb := seedMemory(t)

	out, err := execute(t, "", "wallets", "set", "DANA", "50000", "--date", "2026-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "DANA reset to Rp 50,000 from 2026-03-01")
	assert.Equal(t, "DANA", cell(t, wb, ledger.SheetWallets, 1, ledger.ColWallet))

	out, err = execute(t, "", "wallets")
	require.NoError(t, err)
	assert.Contains(t, out, "DANA")
	assert.Contains(t, out, "Total aset: Rp 125,000")
}

func TestBudget(t *testing.T) {
	seedMemory(t)
	t.Setenv("BENTO_BUDGET_MODE", "nominal")

	out, err := execute(t, "", "budget", "--period", "2026-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget March 2026 (nominal)")
	assert.Contains(t, out, "Makan")
	assert.Contains(t, out, "Over")

	wb := memoryWorkbook
	out, err = execute(t, "", "budget", "record-income", "--date", "2026-03-25")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded income Rp 5,000,000 to Livin (Mandiri)")
	assert.Equal(t, ledger.PlannerIncomeNote, cell(t, wb, ledger.SheetTransactions, 4, ledger.ColNote))
}

func TestTargets(t *testing.T) {
	seedMemory(t)

	_, err := execute(t, "", "targets", "set", "Laptop", "10000000")
	require.NoError(t, err)

	out, err := execute(t, "", "targets", "contribute", "Laptop", "2500000")
	require.NoError(t, err)
	assert.Contains(t, out, "Laptop: Rp 2,500,000 of Rp 10,000,000 (25%)")

	out, err = execute(t, "", "targets")
	require.NoError(t, err)
	assert.Contains(t, out, "Laptop")
	assert.Contains(t, out, "25%")

	_, err = execute(t, "", "targets", "contribute", "Motor", "1000")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = execute(t, "", "targets", "delete", "Laptop")
	require.NoError(t, err)
	out, err = execute(t, "", "targets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No targets yet")
}

func TestRecurring(t *testing.T) {
	wb := seedMemory(t)

	out, err := execute(t, "", "recurring", "add", "Netflix", "54000",
		"--category", "Hiburan", "--method", "DANA", "--start", "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Rule Netflix added, first run 2026-03-10")

	out, err = execute(t, "", "recurring", "apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 1 transaction(s)")
	assert.Equal(t, "Netflix", cell(t, wb, ledger.SheetTransactions, 4, ledger.ColItem))

	out, err = execute(t, "", "recurring", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-04-10")

	out, err = execute(t, "", "recurring", "apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing due")

	_, err = execute(t, "", "recurring", "add", "Gym", "100000",
		"--category", "Kesehatan", "--method", "Cash", "--frequency", "fortnightly")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExport(t *testing.T) {
	seedMemory(t)
	dir := t.TempDir()

	out, err := execute(t, "", "export", "pdf", "--period", "2026-03", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "E-Statement_BentoPro_March_2026.pdf")
	pdf, err := os.ReadFile(filepath.Join(dir, "E-Statement_BentoPro_March_2026.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	target := filepath.Join(dir, "maret.xlsx")
	_, err = execute(t, "", "export", "xlsx", "-p", "2026-03", "-o", target)
	require.NoError(t, err)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestImportOFX(t *testing.T) {
	wb := seedMemory(t)
	path := filepath.Join(t.TempDir(), "mandiri.ofx")
	require.NoError(t, os.WriteFile(path, []byte(smallOFX), 0o600))

	out, err := execute(t, "", "import-ofx", path, "--wallet", "Livin (Mandiri)", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: 2 transaction(s) from 1 file(s)")
	assert.Empty(t, wb.GetWriteCalls())

	out, err = execute(t, "", "import-ofx", path, "--wallet", "Livin (Mandiri)")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 transaction(s), skipped 0 duplicate(s)")

	out, err = execute(t, "", "import-ofx", path, "--wallet", "Livin (Mandiri)")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 transaction(s), skipped 2 duplicate(s)")

	_, err = execute(t, "", "import-ofx", filepath.Join(t.TempDir(), "*.qfx"), "--wallet", "Cash")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHistory(t *testing.T) {
	t.Run("memory backend has no log", func(t *testing.T) {
		seedMemory(t)
		_, err := execute(t, "", "history")
		require.Error(t, err)
		assert.Equal(t, "Write history is only kept by the sqlite backend.", common.UserMessage(err))
	})

	t.Run("sqlite backend", func(t *testing.T) {
		seedMemory(t)
		t.Setenv("BENTO_BACKEND", "sqlite")
		t.Setenv("BENTO_DATABASE_PATH", filepath.Join(t.TempDir(), "bento.db"))

		_, err := execute(t, "", "add", "Bakso", "18000", "--category", "Makan", "--method", "Cash")
		require.NoError(t, err)

		out, err := execute(t, "", "history", "Transaksi")
		require.NoError(t, err)
		assert.Contains(t, out, "Transaksi")
	})
}

func TestSheetsBackendNeedsCredentials(t *testing.T) {
	seedMemory(t)
	t.Setenv("BENTO_BACKEND", "sheets")
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(key, "")
	}

	_, err := execute(t, "", "summary")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "bento auth sheets")
}

func TestInvalidBackend(t *testing.T) {
	seedMemory(t)
	_, err := execute(t, "", "--backend", "excel", "summary")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.ofx", "b.ofx", "c.qfx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	files, err := expandFiles([]string{filepath.Join(dir, "*.ofx"), filepath.Join(dir, "c.qfx")})
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = expandFiles([]string{filepath.Join(dir, "none-*.ofx")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCollapseDebts(t *testing.T) {
	mk := func(id, item string, amount int64, d int) model.Transaction {
		return model.Transaction{
			ID: id, Item: item, Amount: decimal.NewFromInt(amount),
			Date: time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC), Status: model.StatusUnsettled,
		}
	}
	debts := []model.Transaction{
		mk("a", "Pinjam", 100000, 5),
		mk("b", "Pinjam", 100000, 5),
		mk("c", "Pinjam", 100000, 6),
		mk("d", "Patungan", 100000, 5),
	}

	got, copies := collapseDebts(debts)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "c", "d"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, 2, copies[debtKey(debts[0])])
	assert.Equal(t, 1, copies[debtKey(debts[2])])
}
