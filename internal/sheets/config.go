// Package sheets stores the ledger workbook in a Google Sheets spreadsheet.
package sheets

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/bento/internal/common"
)

// DefaultSpreadsheetName is the title used when a new spreadsheet is created.
const DefaultSpreadsheetName = "Bento Pro"

// Config holds the configuration for the Google Sheets workbook.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	RequestsPerMinute  int
	EnableFormatting   bool
}

// DefaultConfig returns a Config for a Jakarta-based spreadsheet under the
// default Sheets quota.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:   DefaultSpreadsheetName,
		TimeZone:          "Asia/Jakarta",
		BatchSize:         500,
		RetryAttempts:     3,
		RetryDelay:        time.Second,
		RequestsPerMinute: 60,
		EnableFormatting:  true,
	}
}

// AuthMode is how the workbook authenticates against the Sheets API.
type AuthMode int

// Supported auth modes.
const (
	AuthNone AuthMode = iota
	AuthOAuth
	AuthServiceAccount
)

// Auth reports which credentials are present. Having both kinds is an
// error because the choice would be ambiguous.
func (c *Config) Auth() (AuthMode, error) {
	oauth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	service := c.ServiceAccountPath != ""
	switch {
	case oauth && service:
		return AuthNone, fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or a service account",
			common.ErrInvalidConfig)
	case service:
		return AuthServiceAccount, nil
	case oauth:
		return AuthOAuth, nil
	}
	return AuthNone, fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
}

var envFields = []struct {
	env   string
	field func(*Config) *string
}{
	{"GOOGLE_SHEETS_CLIENT_ID", func(c *Config) *string { return &c.ClientID }},
	{"GOOGLE_SHEETS_CLIENT_SECRET", func(c *Config) *string { return &c.ClientSecret }},
	{"GOOGLE_SHEETS_REFRESH_TOKEN", func(c *Config) *string { return &c.RefreshToken }},
	{"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", func(c *Config) *string { return &c.ServiceAccountPath }},
	{"GOOGLE_SHEETS_SPREADSHEET_ID", func(c *Config) *string { return &c.SpreadsheetID }},
	{"GOOGLE_SHEETS_SPREADSHEET_NAME", func(c *Config) *string { return &c.SpreadsheetName }},
}

// LoadFromEnv fills unset fields from GOOGLE_SHEETS_* variables and fails
// when no usable credentials remain.
func (c *Config) LoadFromEnv() error {
	for _, f := range envFields {
		if p := f.field(c); *p == "" {
			*p = os.Getenv(f.env)
		}
	}
	if c.SpreadsheetName == "" {
		c.SpreadsheetName = DefaultSpreadsheetName
	}

	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return fmt.Errorf("%w: missing Google Sheets authentication, set a service account path or OAuth2 credentials",
			common.ErrMissingConfig)
	}
	return nil
}

// Validate checks credentials and the numeric limits.
func (c *Config) Validate() error {
	if _, err := c.Auth(); err != nil {
		return err
	}
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	case c.RequestsPerMinute < 0:
		return fmt.Errorf("%w: requests per minute cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
