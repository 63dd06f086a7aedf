package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/server"
)

// JSONResult renders v as indented JSON text.
func JSONResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ClientError turns a failure to obtain a service client into a tool error.
// A missing token yields the steps to authorize the account.
func ClientError(sc *server.ServerContext, service, account string, err error) *mcp.CallToolResult {
	if errors.Is(err, server.ErrNoRequestCredential) {
		return mcp.NewToolResultError(fmt.Sprintf("%s requires a Google access token: send it as \"Authorization: Bearer <token>\".", service))
	}
	if errors.Is(err, google.ErrNoToken) {
		return mcp.NewToolResultError(AuthRequiredMessage(sc, account))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to create %s client for account %s: %v", service, account, err))
}

// AuthRequiredMessage explains how to authorize account.
func AuthRequiredMessage(sc *server.ServerContext, account string) string {
	conf := sc.OAuthConfig()
	if conf == nil || conf.ClientID == "" {
		return fmt.Sprintf(`Google OAuth token not found for account "%s" and no OAuth client is configured.
Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET, then run "gapidemo login --account %s".`, account, account)
	}

	if !sc.AllowsTokenWrites() {
		return fmt.Sprintf(`Google OAuth token not found for account "%s".
Run "gapidemo login --account %s" on the server host, or send a Google access token as Authorization bearer.`, account, account)
	}

	authURL := google.AuthCodeURL(conf, google.NewState())
	return fmt.Sprintf(`Google OAuth token not found for account "%s". To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Copy the authorization code

4. Call the google_save_auth_code tool with the code and account="%s"

Alternatively run "gapidemo login --account %s".`, account, authURL, account, account)
}

// APIError turns a Google API failure into a tool error with a hint for the
// common failure classes.
func APIError(action string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("Failed to %s: %v", action, err)
	switch {
	case google.IsUnauthorized(err):
		msg += "\nThe Google token was rejected. Re-authorize the account."
	case google.IsForbidden(err):
		msg += "\nThe account lacks permission or the API is not enabled for the OAuth client."
	case google.IsNotFound(err):
		msg += "\nThe requested item does not exist."
	case google.IsRateLimited(err):
		msg += "\nGoogle rate limit reached. Retry later."
	}
	return mcp.NewToolResultError(msg)
}
