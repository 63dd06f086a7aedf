package google

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
)

// TokenProvider supplies credentials for Google APIs.
// This abstraction allows different token sources (files on disk, a fixed bearer token).
type TokenProvider interface {
	// CredentialForAccount returns the credential for the specified account.
	CredentialForAccount(ctx context.Context, account string) (*Credential, error)

	// HasTokenForAccount checks if a token exists for the specified account.
	HasTokenForAccount(account string) bool
}

// FileTokenProvider provides credentials from tokens saved by the login flow.
// Refreshed tokens are written back to the store.
type FileTokenProvider struct {
	store *TokenStore
	conf  *oauth2.Config
}

// NewFileTokenProvider creates a file-based token provider.
// conf may be nil, in which case saved tokens are never refreshed.
func NewFileTokenProvider(store *TokenStore, conf *oauth2.Config) *FileTokenProvider {
	if store == nil {
		store = NewTokenStore("")
	}
	return &FileTokenProvider{store: store, conf: conf}
}

// CredentialForAccount loads the saved token for account.
func (p *FileTokenProvider) CredentialForAccount(ctx context.Context, account string) (*Credential, error) {
	tok, err := p.store.Load(account)
	if err != nil {
		return nil, err
	}
	if p.conf == nil || tok.RefreshToken == "" {
		return NewCredential(account, tok), nil
	}

	cred := NewCredential(account, tok)
	cred.source = &persistingTokenSource{
		base:    oauth2.ReuseTokenSource(tok, p.conf.TokenSource(ctx, tok)),
		store:   p.store,
		account: account,
		last:    tok.AccessToken,
	}
	return cred, nil
}

// HasTokenForAccount checks if a token file exists for the specified account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return p.store.Has(account)
}

// Store returns the underlying token store.
func (p *FileTokenProvider) Store() *TokenStore {
	return p.store
}

// persistingTokenSource saves every newly issued access token.
type persistingTokenSource struct {
	base    oauth2.TokenSource
	store   *TokenStore
	account string

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for account %q: %w", s.account, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(s.account, tok); err != nil {
			slog.Warn("failed to persist refreshed token", "account", s.account, "error", err)
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}

// StaticTokenProvider hands out the same bearer access token for every account.
type StaticTokenProvider struct {
	accessToken string
}

// NewStaticTokenProvider creates a provider for a fixed access token.
func NewStaticTokenProvider(accessToken string) *StaticTokenProvider {
	return &StaticTokenProvider{accessToken: accessToken}
}

// CredentialForAccount returns a bearer credential labelled with account.
func (p *StaticTokenProvider) CredentialForAccount(_ context.Context, account string) (*Credential, error) {
	if p.accessToken == "" {
		return nil, ErrNoToken
	}
	return BearerCredential(account, p.accessToken), nil
}

// HasTokenForAccount reports whether an access token is configured.
func (p *StaticTokenProvider) HasTokenForAccount(string) bool {
	return p.accessToken != ""
}
