package google

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no usable OAuth token is available for an account.
var ErrNoToken = errors.New("google: no OAuth token available")

// Credential is the authentication handed to every Google service client.
type Credential struct {
	// Account is the local account name (or the user email for bearer requests).
	Account string

	// Token is the OAuth token the credential was created from.
	Token *oauth2.Token

	source oauth2.TokenSource
}

// NewCredential creates a credential that uses token as-is.
func NewCredential(account string, token *oauth2.Token) *Credential {
	return &Credential{Account: account, Token: token}
}

// BearerCredential creates a credential from a bare access token.
func BearerCredential(account, accessToken string) *Credential {
	return NewCredential(account, &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}

// NewRefreshingCredential creates a credential that refreshes token through conf
// once it expires.
func NewRefreshingCredential(ctx context.Context, account string, token *oauth2.Token, conf *oauth2.Config) *Credential {
	c := NewCredential(account, token)
	if conf != nil && token != nil && token.RefreshToken != "" {
		c.source = oauth2.ReuseTokenSource(token, conf.TokenSource(ctx, token))
	}
	return c
}

// Valid reports whether the credential carries a token that can be used.
func (c *Credential) Valid() error {
	if c == nil || c.Token == nil {
		return ErrNoToken
	}
	if c.Token.AccessToken == "" && c.Token.RefreshToken == "" {
		return ErrNoToken
	}
	return nil
}

// TokenSource returns the token source backing the credential.
func (c *Credential) TokenSource() oauth2.TokenSource {
	if c.source != nil {
		return c.source
	}
	return oauth2.StaticTokenSource(c.Token)
}

// HTTPClient returns an authenticated HTTP client.
// The client uses HTTP/1.1 to avoid HTTP/2 protocol errors seen with some Google endpoints.
func (c *Credential) HTTPClient() (*http.Client, error) {
	if err := c.Valid(); err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: c.TokenSource(),
			Base:   NewHTTP1Transport(),
		},
	}, nil
}

// NewHTTP1Transport returns a clone of the default transport with HTTP/2 disabled.
func NewHTTP1Transport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.ForceAttemptHTTP2 = false
	t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	return t
}

type credentialContextKey struct{}

// ContextWithCredential returns a copy of ctx carrying cred.
func ContextWithCredential(ctx context.Context, cred *Credential) context.Context {
	return context.WithValue(ctx, credentialContextKey{}, cred)
}

// CredentialFromContext returns the credential attached by ContextWithCredential.
func CredentialFromContext(ctx context.Context) (*Credential, bool) {
	cred, ok := ctx.Value(credentialContextKey{}).(*Credential)
	return cred, ok && cred != nil
}
