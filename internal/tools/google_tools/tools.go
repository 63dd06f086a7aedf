package google_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/logging"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

// RegisterGoogleTools registers all Google OAuth-related tools with the MCP server.
// Saving a token only touches local state, so google_save_auth_code is
// registered in read-only mode as well, but only where the server context
// allows token writes.
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext, _ bool) error {
	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google services access (Gmail, Drive, Calendar, Sheets, Vision) for a specific account"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	if sc.AllowsTokenWrites() {
		saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
			mcp.WithDescription("Save the OAuth authorization code to complete Google services authentication for a specific account"),
			mcp.WithString("account",
				mcp.Description(accountDescription),
			),
			mcp.WithString("authCode",
				mcp.Required(),
				mcp.Description("The authorization code from Google OAuth"),
			),
		)
		s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("google_save_auth_code", false, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleSaveAuthCode(ctx, request, sc)
			}))
	}

	userInfoTool := mcp.NewTool("google_user_info",
		mcp.WithDescription("Get the profile (email, name, picture) of the Google user behind an account"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
	)
	s.AddTool(userInfoTool, common.InstrumentedToolHandlerWithService(
		"google_user_info", instrumentation.ServiceUserInfo, instrumentation.OperationGet, true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUserInfo(ctx, request, sc)
		}))

	listAccountsTool := mcp.NewTool("google_list_accounts",
		mcp.WithDescription("List the accounts that have a stored Google token"),
	)
	s.AddTool(listAccountsTool, common.InstrumentedToolHandler("google_list_accounts", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAccounts(ctx, request, sc)
		}))

	return nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())

	conf := sc.OAuthConfig()
	if conf == nil || conf.ClientID == "" {
		return mcp.NewToolResultError("No OAuth client is configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET."), nil
	}

	if !sc.AllowsTokenWrites() {
		return mcp.NewToolResultText(fmt.Sprintf(`This server does not accept authorization codes over HTTP.
Run "gapidemo login --account %s" on the server host, or send a Google access token as Authorization bearer.`, account)), nil
	}

	result := fmt.Sprintf(`To authorize Google services access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google services
4. Copy the authorization code

5. Call the google_save_auth_code tool with the code and account name to complete authentication`,
		account, google.AuthCodeURL(conf, google.NewState()))

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	authCode, err := common.RequiredStringArg(args, "authCode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	err = sc.SaveToken(ctx, account, authCode)
	if err != nil {
		sc.Metrics().RecordOAuthLogin(ctx, instrumentation.LoginResultFailure)
		logging.WithOperation(sc.Logger(), "oauth.save_code").Warn("failed to save token",
			logging.Account(account),
			logging.Err(err),
		)
		if errors.Is(err, server.ErrTokenStoreUnavailable) {
			return mcp.NewToolResultError("This server uses a fixed access token and cannot store new tokens."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}

	sc.Metrics().RecordOAuthLogin(ctx, instrumentation.LoginResultSuccess)
	logging.WithOperation(sc.Logger(), "oauth.save_code").Info("token saved", logging.Account(account))

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'! Google services token saved. You can now use all Google tools with this account.", account)), nil
}

func handleUserInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(ctx, request.GetArguments())

	info, err := sc.UserInfo(ctx, account)
	if errors.Is(err, google.ErrNoToken) || errors.Is(err, server.ErrNoRequestCredential) {
		return common.ClientError(sc, "userinfo", account, err), nil
	}
	if err != nil {
		return common.APIError("get user info", err), nil
	}
	return common.JSONResult(info)
}

func handleListAccounts(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if err := sc.StoredTokenAccess(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fp, ok := sc.TokenProvider().(*google.FileTokenProvider)
	if !ok {
		return mcp.NewToolResultText("This server uses a fixed access token; no accounts are stored."), nil
	}

	accounts, err := fp.Store().Accounts()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list accounts: %v", err)), nil
	}
	if len(accounts) == 0 {
		return mcp.NewToolResultText("No accounts are authorized yet. Call google_get_auth_url to add one."), nil
	}
	return common.JSONResult(map[string]interface{}{
		"defaultAccount": sc.DefaultAccount(),
		"accounts":       accounts,
	})
}
