package main

import (
	"fmt"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/config"
	"github.com/Veraticus/bento/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}
	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Authorize access to Google Sheets",
		Long: `Authorize bento to read and write your spreadsheet.

This command will:
1. Start a local callback server
2. Print a Google consent URL to open in your browser
3. Save the refresh token for future runs

Requires sheets.client_id and sheets.client_secret in the config file or
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oc := config.OAuthConfig(viper.GetViper())
			if oc.ClientID == "" || oc.ClientSecret == "" {
				return common.NewUserError(
					"Set sheets.client_id and sheets.client_secret first.",
					fmt.Errorf("%w: OAuth client credentials", common.ErrMissingConfig))
			}

			writeln(cmd, cli.FormatTitle("Google Sheets authorization"))
			token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), oc, func(url string) {
				writeln(cmd, cli.FormatInfo("Open this URL in your browser:"))
				writeln(cmd, url)
			})
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			if token.RefreshToken == "" {
				writeln(cmd, cli.FormatWarning("No refresh token returned; revoke access and try again"))
				return nil
			}
			writeln(cmd, cli.FormatSuccess("Authorized. Token saved to "+oc.TokenFile))
			return nil
		},
	}
}
