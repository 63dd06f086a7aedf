package gmail

import (
	"context"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/mimemail"
)

const (
	userID = "me"

	// DefaultMaxResults matches the size of the inbox list.
	DefaultMaxResults = 10
	maxResultsLimit   = 100
)

// Client wraps the Gmail Users service.
type Client struct {
	svc      *gmail.UsersService
	account  string
	limiter  *google.RateLimiter
	composer *mimemail.Composer
}

// NewClient creates a Gmail client authenticated with cred.
// Extra options are applied after the credential (for example option.WithEndpoint in tests).
func NewClient(ctx context.Context, cred *google.Credential, opts ...option.ClientOption) (*Client, error) {
	httpClient, err := cred.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("no valid Google credential: %w", err)
	}

	svc, err := gmail.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:      svc.Users,
		account:  cred.Account,
		composer: mimemail.NewComposer(),
	}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// WithRateLimiter makes every API call wait on l.
func (c *Client) WithRateLimiter(l *google.RateLimiter) *Client {
	c.limiter = l
	return c
}

// WithComposer replaces the composer used by SendDraft.
func (c *Client) WithComposer(composer *mimemail.Composer) *Client {
	if composer != nil {
		c.composer = composer
	}
	return c
}

// Profile returns the email address of the mailbox owner.
func (c *Client) Profile(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	p, err := c.svc.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", google.WrapError(c.limiter.Observe(err)))
	}
	return p.EmailAddress, nil
}

// HeaderValue returns the value of the first header named name (case-insensitive).
func HeaderValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
