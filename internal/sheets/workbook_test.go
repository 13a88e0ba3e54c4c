package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err       error
		wantIs    error
		name      string
		retryable bool
	}{
		{name: "quota", err: &googleapi.Error{Code: http.StatusTooManyRequests}, retryable: true, wantIs: common.ErrRateLimit},
		{name: "server error", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, retryable: true, wantIs: common.ErrBackendUnavailable},
		{name: "not found", err: &googleapi.Error{Code: http.StatusNotFound}, wantIs: common.ErrNotFound},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest}},
		{name: "network", err: timeoutErr{}, retryable: true, wantIs: common.ErrBackendUnavailable},
		{name: "canceled", err: context.Canceled, wantIs: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.retryable, common.IsRetryable(got))
			if tt.wantIs != nil {
				assert.ErrorIs(t, got, tt.wantIs)
			}
		})
	}

	assert.NoError(t, classifyError(nil))
}

func TestFromValues(t *testing.T) {
	table := fromValues([][]any{
		{"Tanggal", "Item", "Nominal", "Aktif"},
		{"2026-03-01", "Kopi", float64(25000), true},
		{"2026-03-02", "Roti"},
	})

	assert.Equal(t, []string{"Tanggal", "Item", "Nominal", "Aktif"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2026-03-01", "Kopi", "25000", "TRUE"}, table.Rows[0])
	assert.Equal(t, []string{"2026-03-02", "Roti", "", ""}, table.Rows[1], "short rows are padded")

	assert.True(t, fromValues(nil).Empty())
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "12.5", cellString(12.5))
	assert.Equal(t, "1500000", cellString(float64(1500000)))
	assert.Equal(t, "FALSE", cellString(false))
	assert.Equal(t, "7", cellString(7))
}

func TestToValues(t *testing.T) {
	values := toValues(ledger.Table{
		Header: []string{"Wallet", "Saldo Awal"},
		Rows:   [][]string{{"Cash", "1000"}},
	})
	assert.Equal(t, [][]any{{"Wallet", "Saldo Awal"}, {"Cash", "1000"}}, values)
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Transaksi'", quoteSheet("Transaksi"))
	assert.Equal(t, "'Bob''s'", quoteSheet("Bob's"))
}

func TestCallbackHandler(t *testing.T) {
	codes := make(chan string, 1)
	errs := make(chan error, 1)
	handler := callbackHandler("s1", codes, errs)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", <-codes)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1", nil))
	assert.Contains(t, rec.Body.String(), "Authentication Failed")
	assert.Error(t, <-errs)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, saveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMemoryWorkbook(t *testing.T) {
	ctx := context.Background()
	wb := NewMemoryWorkbook()

	_, err := wb.Read(ctx, ledger.SheetTargets)
	assert.ErrorIs(t, err, common.ErrSheetNotFound)

	table := ledger.Table{Header: ledger.TargetColumns, Rows: [][]string{{"Laptop", "15000000", "0"}}}
	require.NoError(t, wb.Write(ctx, ledger.SheetTargets, table))

	got, err := wb.Read(ctx, ledger.SheetTargets)
	require.NoError(t, err)
	assert.Equal(t, table, got)

	got.Rows[0][0] = "mutated"
	again, _ := wb.Sheet(ledger.SheetTargets)
	assert.Equal(t, "Laptop", again.Rows[0][0], "reads return copies")

	wb.SetWriteError(errors.New("quota"))
	assert.Error(t, wb.Write(ctx, ledger.SheetTargets, ledger.Table{}))
	calls := wb.GetWriteCalls()
	require.Len(t, calls, 2)
	assert.Error(t, calls[1].Error)
}
