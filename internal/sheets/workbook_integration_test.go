//go:build integration

package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func integrationConfig(t *testing.T) Config {
	t.Helper()

	serviceAccountPath := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		t.Skip("Service account path not available")
	}
	if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
		t.Skipf("Service account file does not exist: %s", serviceAccountPath)
	}

	config := DefaultConfig()
	config.ServiceAccountPath = serviceAccountPath
	config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_TEST_SPREADSHEET_ID")
	config.SpreadsheetName = "Bento Pro - Integration"
	return config
}

func TestWorkbook_Integration_RoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	wb, err := NewWorkbook(ctx, integrationConfig(t), logger)
	require.NoError(t, err)

	sheet := fmt.Sprintf("Test %d", time.Now().Unix())
	want := ledger.Table{
		Header: ledger.WalletColumns,
		Rows: [][]string{
			{"Cash", "150000", "2026-02-18"},
			{"DANA", "25000", ""},
		},
	}
	require.NoError(t, wb.Write(ctx, sheet, want))

	got, err := wb.Read(ctx, sheet)
	require.NoError(t, err)
	assert.Equal(t, want.Header, got.Header)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Cash", got.Rows[0][0])
	assert.Equal(t, "150000", got.Rows[0][1])
}

func TestWorkbook_Integration_LargeSheet(t *testing.T) {
	ctx := context.Background()
	config := integrationConfig(t)
	config.BatchSize = 100

	wb, err := NewWorkbook(ctx, config, nil)
	require.NoError(t, err)

	table := ledger.Table{Header: ledger.TransactionColumns}
	for i := range 450 {
		table.Rows = append(table.Rows, []string{
			"2026-03-01", fmt.Sprintf("Item %d", i), "Makan", "10000", "Pengeluaran", "Lunas", "", "Cash", fmt.Sprintf("id-%d", i),
		})
	}
	sheet := fmt.Sprintf("Large %d", time.Now().Unix())
	require.NoError(t, wb.Write(ctx, sheet, table))

	got, err := wb.Read(ctx, sheet)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 450)
}
