package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/gapidemo/internal/config"
	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/server"
)

// accessTokenEnv supplies a fixed Google access token instead of the token store.
const accessTokenEnv = "GOOGLE_ACCESS_TOKEN"

func addAccessTokenFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, "access-token", "", "Fixed Google access token to use instead of the saved login. Can also use "+accessTokenEnv+" env var.")
}

// resolveAccessToken returns the flag value or the environment fallback.
func resolveAccessToken(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(accessTokenEnv)
}

// newOAuthConfig returns the OAuth client configuration, or nil when no
// client ID is configured.
func newOAuthConfig(c config.Config) *oauth2.Config {
	if c.Google.ClientID == "" {
		return nil
	}
	return google.NewOAuthConfig(c.OAuthSettings())
}

// newTokenProvider picks the static provider for a fixed access token and the
// token store otherwise.
func newTokenProvider(c config.Config, accessToken string, oauthConf *oauth2.Config) google.TokenProvider {
	if accessToken != "" {
		return google.NewStaticTokenProvider(accessToken)
	}
	return google.NewFileTokenProvider(google.NewTokenStore(c.TokenDir()), oauthConf)
}

// newCLIContext builds the server context used by the one-shot commands.
// Write operations are allowed since the user invoked them explicitly.
func newCLIContext(ctx context.Context, accessToken string) (*server.ServerContext, error) {
	oauthConf := newOAuthConfig(cfg)
	sc, err := server.NewServerContext(ctx, server.Options{
		Config:        cfg,
		TokenProvider: newTokenProvider(cfg, resolveAccessToken(accessToken), oauthConf),
		OAuthConfig:   oauthConf,
		Logger:        slog.Default(),
		Yolo:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

// loginHint turns a missing token into an instruction to log in.
func loginHint(account string, err error) error {
	if errors.Is(err, google.ErrNoToken) {
		return fmt.Errorf("no saved login for account %q, run 'gapidemo login --account %s' first", account, account)
	}
	return err
}
