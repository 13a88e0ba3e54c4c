package config

import (
	"time"

	"github.com/Veraticus/bento/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or BENTO_ env vars)
// 2. Saved OAuth token file (refresh token only)
// 3. Direct environment variables (GOOGLE_SHEETS_*)
// 4. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString("sheets.service_account_path"))
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.timezone"); tz != "" {
		config.TimeZone = tz
	}
	if n := v.GetInt("sheets.batch_size"); n > 0 {
		config.BatchSize = n
	}
	if v.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = v.GetInt("sheets.retry_attempts")
	}
	if d := v.GetDuration("sheets.retry_delay"); d > 0 {
		config.RetryDelay = d
	}
	if v.IsSet("sheets.requests_per_minute") {
		config.RequestsPerMinute = v.GetInt("sheets.requests_per_minute")
	}
	if v.IsSet("sheets.formatting") {
		config.EnableFormatting = v.GetBool("sheets.formatting")
	}

	if config.RefreshToken == "" && config.ServiceAccountPath == "" {
		if token, err := sheets.LoadToken(TokenFile(v)); err == nil && token.RefreshToken != "" {
			config.RefreshToken = token.RefreshToken
		}
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, err
	}
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// TokenFile is where the interactive OAuth flow stores its token.
func TokenFile(v *viper.Viper) string {
	if p := v.GetString("sheets.token_file"); p != "" {
		return ExpandPath(p)
	}
	return ExpandPath("~/.config/bento/sheets-token.json")
}

// bindClientEnv lets the OAuth client credentials come from either the
// BENTO_ prefixed variables or the GOOGLE_SHEETS_* ones.
func bindClientEnv(v *viper.Viper) {
	_ = v.BindEnv("sheets.client_id", "BENTO_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_ID")
	_ = v.BindEnv("sheets.client_secret", "BENTO_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_CLIENT_SECRET")
}

// OAuthConfig returns the settings for the interactive OAuth flow.
func OAuthConfig(v *viper.Viper) sheets.OAuth2Config {
	bindClientEnv(v)
	return sheets.OAuth2Config{
		ClientID:     v.GetString("sheets.client_id"),
		ClientSecret: v.GetString("sheets.client_secret"),
		TokenFile:    TokenFile(v),
		ListenAddr:   v.GetString("sheets.oauth_listen"),
		Timeout:      5 * time.Minute,
	}
}
