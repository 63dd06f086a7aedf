package google

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// OAuthSettings holds the OAuth client registration used for the login flow.
type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// NewOAuthConfig returns the OAuth2 configuration for Google.
// DefaultOAuthScopes are used when no scopes are set.
func NewOAuthConfig(s OAuthSettings) *oauth2.Config {
	scopes := s.Scopes
	if len(scopes) == 0 {
		scopes = DefaultOAuthScopes
	}
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  s.RedirectURL,
		Scopes:       scopes,
	}
}

// NewState returns a random value for the OAuth state parameter.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL returns the consent page URL. Offline access is requested so
// that a refresh token is issued.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token.
func Exchange(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return tok, nil
}
