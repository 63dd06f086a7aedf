// Package google_tools provides MCP tools for Google OAuth authentication.
//
// The OAuth flow:
//  1. A tool call for an account without a token returns the authorization URL
//  2. google_get_auth_url returns the same URL on request
//  3. The user visits the URL, grants access and copies the authorization code
//  4. google_save_auth_code exchanges the code and stores the token
//
// Saved tokens are refreshed automatically. google_user_info shows whose
// account a token belongs to and google_list_accounts lists stored accounts.
package google_tools
