package google

import (
	"context"
	"fmt"

	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// UserInfo is the profile of the authenticated user.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
}

// GetUserInfo fetches the profile of the user behind cred.
func GetUserInfo(ctx context.Context, cred *Credential, opts ...option.ClientOption) (*UserInfo, error) {
	httpClient, err := cred.HTTPClient()
	if err != nil {
		return nil, err
	}

	svc, err := oauth2api.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", WrapError(err))
	}

	u := &UserInfo{
		ID:         info.Id,
		Email:      info.Email,
		Name:       info.Name,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
		Locale:     info.Locale,
	}
	if info.VerifiedEmail != nil {
		u.VerifiedEmail = *info.VerifiedEmail
	}
	return u, nil
}
