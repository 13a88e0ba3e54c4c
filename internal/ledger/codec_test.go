package ledger

import (
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"25000", "25000"},
		{"25000.5", "25000.5"},
		{"Rp 1,250,000", "1250000"},
		{"IDR 300", "300"},
		{"", "0"},
		{"abc", "0"},
		{"-5000", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in).String())
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, time.February, 18, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-02-18", want},
		{"2026-02-18 14:30:00", want},
		{"18/02/2026", want},
		{"2/18/2026", want},
		{"18 Feb 2026", want},
		{"46071", want},
		{"", time.Time{}},
		{"kemarin", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseDate(tt.in)), "got %s", ParseDate(tt.in))
		})
	}
}

func TestDecodeTransactions(t *testing.T) {
	table := Table{
		Header: []string{"Tanggal", "Item", "Kategori", "Nominal", "Tipe", "Status", "Keterangan", "Metode Pembayaran", "Catatan Lain"},
		Rows: [][]string{
			{"2026-03-01", "Gaji", "Gaji", "5000000", "Pemasukan", "Lunas", "", "Livin (Mandiri)", "x"},
			{"", "", "", "", "", "", "", "", ""},
			{"2026-03-02", "Pinjam", "Lainnya", "abc", "Pengeluaran", "Belum Lunas", "", "-", ""},
			{"2026-03-03", "Aneh", "Lainnya", "10", "Transfer", "", "", "Cash", ""},
		},
	}

	txs, extra, assigned, err := DecodeTransactions(table)
	require.NoError(t, err)
	require.Len(t, txs, 3, "blank rows are dropped")
	assert.True(t, assigned)

	assert.Equal(t, model.DirectionIncome, txs[0].Direction)
	assert.Equal(t, model.StatusSettled, txs[0].Status)
	assert.True(t, txs[1].Amount.IsZero(), "unparsable amounts become zero")
	assert.Equal(t, model.StatusUnsettled, txs[1].Status)
	assert.Equal(t, model.TransactionDirection("Transfer"), txs[2].Direction, "unknown types are kept raw")
	assert.Equal(t, model.StatusSettled, txs[2].Status, "blank status means settled")
	assert.Equal(t, "x", extra[txs[0].ID]["Catatan Lain"])

	again, _, _, err := DecodeTransactions(table)
	require.NoError(t, err)
	assert.Equal(t, txs[0].ID, again[0].ID, "generated ids are stable across loads")
}

func TestDecodeTransactionsMissingColumn(t *testing.T) {
	_, _, _, err := DecodeTransactions(Table{Header: []string{"Tanggal", "Item"}})
	assert.ErrorIs(t, err, common.ErrMissingColumn)

	txs, _, _, err := DecodeTransactions(Table{})
	require.NoError(t, err, "a sheet with no header reads as empty")
	assert.Empty(t, txs)
}

func TestEncodeTransactionsPreservesExtras(t *testing.T) {
	table := Table{
		Header: []string{"Tanggal", "Item", "Kategori", "Nominal", "Tipe", "Status", "Keterangan", "Metode Pembayaran", "ID", "Zeta", "Alpha"},
		Rows: [][]string{
			{"2026-03-01", "Kopi", "Jajan", "25000", "Pengeluaran", "Lunas", "", "Cash", "a1", "z", "a"},
			{"2026-03-01", "Roti", "Makan", "15000", "Pengeluaran", "Lunas", "", "Cash", "a2", "", ""},
		},
	}
	txs, extra, assigned, err := DecodeTransactions(table)
	require.NoError(t, err)
	assert.False(t, assigned)

	out := EncodeTransactions(txs, extra)
	assert.Equal(t, append(append([]string(nil), TransactionColumns...), "Alpha", "Zeta"), out.Header)
	assert.Equal(t, "a", out.Cell(0, "Alpha"))
	assert.Equal(t, "z", out.Cell(0, "Zeta"))
	assert.Equal(t, "", out.Cell(1, "Zeta"))
	assert.Equal(t, "Pengeluaran", out.Cell(1, "Tipe"))
}

func TestWalletTargetRuleCodecs(t *testing.T) {
	wallets, err := DecodeWallets(Table{
		Header: []string{"Wallet", "Saldo Awal"},
		Rows:   [][]string{{"Cash", "100000"}},
	})
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.True(t, wallets[0].ResetDate.IsZero())

	out := EncodeWallets(wallets)
	assert.Equal(t, WalletColumns, out.Header)
	assert.Equal(t, []string{"Cash", "100000", ""}, out.Rows[0])

	targets, err := DecodeTargets(Table{
		Header: TargetColumns,
		Rows:   [][]string{{"2027", "1000", "250"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2027", targets[0].Name, "numeric names stay text")
	assert.Equal(t, 25, targets[0].Percent())

	rules, err := DecodeRules(Table{
		Header: RecurringColumns,
		Rows: [][]string{
			{"Netflix", "Hiburan", "54000", "Pengeluaran", "Kartu Kredit", "bulanan", "2026-01-31", "", "TRUE"},
			{"Aneh", "Hiburan", "1", "Pengeluaran", "Cash", "tiap purnama", "2026-01-01", "", "TRUE"},
		},
	})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, model.FrequencyMonthly, rules[0].Frequency)
	assert.True(t, rules[0].NextRun.Equal(rules[0].StartDate), "next run defaults to start")
	assert.True(t, rules[0].Active)
	assert.False(t, rules[1].Active, "unknown frequency disables the rule")

	encoded := EncodeRules(rules)
	assert.Equal(t, "TRUE", encoded.Cell(0, ColRuleActive))
	assert.Equal(t, "monthly", encoded.Cell(0, ColRuleFreq))
	assert.Equal(t, "tiap purnama", encoded.Cell(1, ColRuleFreq), "unknown frequency text survives a rewrite")
	assert.Equal(t, "FALSE", encoded.Cell(1, ColRuleActive))
	assert.Equal(t, decimal.NewFromInt(54000).String(), encoded.Cell(0, ColAmount))
}
