// Package google provides OAuth2 authentication and credential handling for Google APIs.
//
// Every service client in this module is constructed from an explicit *Credential.
// Credentials come from a TokenProvider: tokens saved on disk by the login flow
// (FileTokenProvider), or a fixed bearer access token (StaticTokenProvider). An
// HTTP request carrying "Authorization: Bearer <token>" can attach a credential to
// its context with ContextWithCredential.
//
// The package also holds the pieces shared by all Google service clients: the
// OAuth scopes, the loopback callback server used by "gapidemo login", error
// classification for googleapi errors and per-service rate limiting.
package google
