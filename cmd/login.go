package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/logging"
)

func newLoginCmd() *cobra.Command {
	var (
		account   string
		port      int
		noBrowser bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a Google account and save its token",
		Long: `Run the OAuth consent flow for a Google account.

A local callback server receives the authorization code on
http://localhost:<port>/callback, which must be an authorized redirect URI
of the OAuth client. The token is saved per account and refreshed
automatically by the other commands and the MCP server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				account = cfg.Google.DefaultAccount
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runLogin(ctx, cmd, account, port, !noBrowser)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Account name to save the token under (default: the configured default account)")
	cmd.Flags().IntVar(&port, "port", 8085, "Port of the local OAuth callback server (0 picks a free port)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the consent URL instead of opening the browser")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for the authorization callback")

	return cmd
}

func runLogin(ctx context.Context, cmd *cobra.Command, account string, port int, openBrowser bool) error {
	settings := cfg.OAuthSettings()
	if settings.ClientID == "" {
		return fmt.Errorf("no OAuth client configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or google.client_id in the config file")
	}

	store := google.NewTokenStore(cfg.TokenDir())
	logger := logging.WithOperation(slog.Default(), "login").With(logging.Account(account))

	state := google.NewState()
	callback := google.NewCallbackServer(port, state)
	if err := callback.Start(); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() {
		if err := callback.Stop(); err != nil {
			logger.Debug("failed to stop callback server", logging.Err(err))
		}
	}()

	settings.RedirectURL = callback.RedirectURL()
	conf := google.NewOAuthConfig(settings)
	authURL := google.AuthCodeURL(conf, state)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Open this URL to authorize gapidemo for account %q:\n\n%s\n\n", account, authURL)
	if openBrowser {
		if err := google.OpenBrowser(authURL); err != nil {
			logger.Warn("failed to open browser", logging.Err(err))
		}
	}

	code, err := callback.WaitForCode(ctx)
	if err != nil {
		return err
	}

	tok, err := google.Exchange(ctx, conf, code)
	if err != nil {
		return err
	}
	if err := store.Save(account, tok); err != nil {
		return err
	}
	logger.Info("token saved", "path", store.Path(account))

	info, err := google.GetUserInfo(ctx, google.NewCredential(account, tok))
	if err != nil {
		fmt.Fprintf(out, "Logged in as account %q.\n", account)
		logger.Warn("failed to fetch user info", logging.Err(err))
		return nil
	}
	fmt.Fprintf(out, "Logged in as %s (%s), saved as account %q.\n", info.Name, info.Email, account)
	return nil
}
