package config

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/report"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	app, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, BackendSheets, app.Backend)
	assert.Equal(t, 10*time.Minute, app.CacheTTL)
	assert.True(t, time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC).Equal(app.MonitoringStart))
	assert.Contains(t, app.Categories.Expense, "Makan")
	assert.Contains(t, app.PaymentMethods, "Livin (Mandiri)")
	assert.Equal(t, "Pengguna Utama", app.Statement.Owner)
	assert.Equal(t, "5000000", app.Budget.Income.String())
	assert.Len(t, app.Budget.Inputs, len(app.Categories.Expense))
	assert.NotContains(t, app.DatabasePath, "~")
}

func TestLoad_BudgetAllocations(t *testing.T) {
	app, err := Load(newViper(t, `
budget:
  income: 8000000
  mode: percent
  allocations:
    Makan: 30
    transport: "10.5"
`))
	require.NoError(t, err)

	assert.Equal(t, report.BudgetPercent, app.Budget.Mode)
	values := map[string]string{}
	for _, in := range app.Budget.Inputs {
		values[in.Category] = in.Value.String()
	}
	assert.Equal(t, "30", values["Makan"])
	assert.Equal(t, "10.5", values["Transport"])
	assert.Equal(t, "0", values["Hiburan"])
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown backend", yaml: "backend: excel"},
		{name: "bad monitoring start", yaml: "ledger:\n  monitoring_start: 18-02-2026"},
		{name: "unknown budget category", yaml: "budget:\n  allocations:\n    liburan: 5"},
		{name: "bad budget mode", yaml: "budget:\n  mode: random"},
		{name: "empty categories", yaml: "categories:\n  income: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(t, tt.yaml))
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, key := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID"} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())

	v := newViper(t, `
sheets:
  service_account_path: ~/keys/sa.json
  spreadsheet_id: abc
  batch_size: 50
  requests_per_minute: 0
`)
	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.SpreadsheetID)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 0, cfg.RequestsPerMinute)
	assert.NotContains(t, cfg.ServiceAccountPath, "~")

	_, err = LoadSheetsConfig(newViper(t, ""))
	assert.Error(t, err, "no credentials anywhere")
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("BENTO_DIR", "/data")

	assert.Equal(t, "/home/tester/x.db", ExpandPath("~/x.db"))
	assert.Equal(t, "/home/tester", ExpandPath("~"))
	assert.Equal(t, "/data/x.db", ExpandPath("$BENTO_DIR/x.db"))
	assert.Equal(t, "", ExpandPath(""))
}

func TestOAuthConfig(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		env        map[string]string
		wantID     string
		wantSecret string
	}{
		{
			name:       "config file",
			yaml:       "sheets:\n  client_id: file-id\n  client_secret: file-secret\n",
			wantID:     "file-id",
			wantSecret: "file-secret",
		},
		{
			name:       "google variables",
			env:        map[string]string{"GOOGLE_SHEETS_CLIENT_ID": "g-id", "GOOGLE_SHEETS_CLIENT_SECRET": "g-secret"},
			wantID:     "g-id",
			wantSecret: "g-secret",
		},
		{
			name:       "bento variable wins",
			env:        map[string]string{"BENTO_SHEETS_CLIENT_ID": "b-id", "GOOGLE_SHEETS_CLIENT_ID": "g-id"},
			wantID:     "b-id",
			wantSecret: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"BENTO_SHEETS_CLIENT_ID", "BENTO_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET"} {
				t.Setenv(key, tt.env[key])
			}
			t.Setenv("HOME", "/home/tester")

			oc := OAuthConfig(newViper(t, tt.yaml))
			assert.Equal(t, tt.wantID, oc.ClientID)
			assert.Equal(t, tt.wantSecret, oc.ClientSecret)
			assert.Equal(t, "/home/tester/.config/bento/sheets-token.json", oc.TokenFile)
		})
	}
}
