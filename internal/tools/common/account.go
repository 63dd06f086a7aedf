package common

import (
	"context"

	"github.com/teemow/gapidemo/internal/google"
)

// DefaultAccount is used when a tool call names no account.
const DefaultAccount = "default"

// GetAccountFromArgs extracts the account name from request arguments and context.
//
// Priority order:
//  1. The account of a bearer credential on the context (HTTP transport)
//  2. Explicit "account" argument in request
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if cred, ok := google.CredentialFromContext(ctx); ok && cred.Account != "" {
		return cred.Account
	}

	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return DefaultAccount
}
