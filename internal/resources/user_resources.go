package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/server"
)

// Resource URIs
const (
	ProfileURI  = "user://profile"
	AccountsURI = "user://accounts"
)

// RegisterUserResources registers the user resources.
// On the HTTP transport the profile is that of the bearer token's owner.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		ProfileURI,
		"Current User Profile",
		mcp.WithResourceDescription("Profile of the Google user behind the default account or the request's bearer token"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	accountsResource := mcp.NewResource(
		AccountsURI,
		"Authorized Accounts",
		mcp.WithResourceDescription("Accounts with a stored Google token"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(accountsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccounts(ctx, request, sc)
	})

	return nil
}

func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := sc.DefaultAccount()
	if cred, ok := google.CredentialFromContext(ctx); ok {
		account = cred.Account
	}

	info, err := sc.UserInfo(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return jsonContents(request.Params.URI, map[string]interface{}{
		"account": account,
		"email":   info.Email,
		"name":    info.Name,
		"picture": info.Picture,
	})
}

func handleAccounts(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	if err := sc.StoredTokenAccess(ctx); err != nil {
		return nil, err
	}

	accounts := []string{}
	if fp, ok := sc.TokenProvider().(*google.FileTokenProvider); ok {
		stored, err := fp.Store().Accounts()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, stored...)
	}

	return jsonContents(request.Params.URI, map[string]interface{}{
		"defaultAccount": sc.DefaultAccount(),
		"accounts":       accounts,
	})
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
