package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/gapidemo/internal/calendar"
	"github.com/teemow/gapidemo/internal/config"
	"github.com/teemow/gapidemo/internal/drive"
	"github.com/teemow/gapidemo/internal/gmail"
	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/sheets"
	"github.com/teemow/gapidemo/internal/vision"
)

var (
	// ErrShutdown is returned by client getters after Shutdown.
	ErrShutdown = errors.New("server context is shut down")

	// ErrNoOAuthClient is returned when no OAuth client ID is configured.
	ErrNoOAuthClient = errors.New("no OAuth client is configured")

	// ErrTokenStoreUnavailable is returned when the token provider cannot store tokens.
	ErrTokenStoreUnavailable = errors.New("the token provider does not store tokens")
)

// apiKeyAccount is the cache key for the Vision client authenticated by API key.
const apiKeyAccount = "@apikey"

// Options configures a ServerContext.
type Options struct {
	Config        config.Config
	TokenProvider google.TokenProvider

	// OAuthConfig is used by the auth tools. It may be nil when no client ID is configured.
	OAuthConfig *oauth2.Config

	Instrumentation *instrumentation.Provider
	Logger          *slog.Logger

	// Yolo enables the tools that modify Google data.
	Yolo bool

	// Transport is the MCP transport the tools are served on. Over
	// streamable HTTP the token store is only written with RequireAuth.
	Transport   string
	RequireAuth bool

	// ClientOptions are appended to the options of every client of a service,
	// for example option.WithEndpoint to talk to a fake server.
	ClientOptions map[google.ServiceType][]option.ClientOption
}

// ServerContext holds the context for the MCP server: configuration, the token
// provider and the per-account Google clients.
//
// Clients built from the token provider are cached per account. Clients built
// from a bearer credential carried on the request context are never cached.
// Remote requests without a bearer credential get ErrNoRequestCredential and
// never reach the token provider.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg           config.Config
	tokenProvider google.TokenProvider
	oauthConfig   *oauth2.Config
	limiters      *google.RateLimiters
	provider      *instrumentation.Provider
	auditLogger   *instrumentation.AuditLogger
	logger        *slog.Logger
	yolo          bool
	transport     string
	requireAuth   bool
	clientOptions map[google.ServiceType][]option.ClientOption

	gmailClients    map[string]*gmail.Client
	driveClients    map[string]*drive.Client
	calendarClients map[string]*calendar.Client
	sheetsClients   map[string]*sheets.Client
	visionClients   map[string]*vision.Client

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.TokenProvider == nil {
		return nil, fmt.Errorf("token provider is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auditCfg := instrumentation.AuditLoggingConfig{Enabled: true}
	if opts.Instrumentation != nil {
		auditCfg = opts.Instrumentation.AuditConfig()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		cfg:             opts.Config,
		tokenProvider:   opts.TokenProvider,
		oauthConfig:     opts.OAuthConfig,
		limiters:        google.NewRateLimiters(opts.Config.RateLimitOverrides()),
		provider:        opts.Instrumentation,
		auditLogger:     instrumentation.NewAuditLogger(logger, auditCfg),
		logger:          logger,
		yolo:            opts.Yolo,
		transport:       opts.Transport,
		requireAuth:     opts.RequireAuth,
		clientOptions:   opts.ClientOptions,
		gmailClients:    make(map[string]*gmail.Client),
		driveClients:    make(map[string]*drive.Client),
		calendarClients: make(map[string]*calendar.Client),
		sheetsClients:   make(map[string]*sheets.Client),
		visionClients:   make(map[string]*vision.Client),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the application configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

// Yolo reports whether write tools are enabled.
func (sc *ServerContext) Yolo() bool {
	return sc.yolo
}

// AllowsTokenWrites reports whether tools may save tokens to the token store:
// always on stdio, and on streamable HTTP only when bearer auth is required.
func (sc *ServerContext) AllowsTokenWrites() bool {
	return sc.transport != config.TransportStreamableHTTP || sc.requireAuth
}

// StoredTokenAccess returns ErrNoRequestCredential for a remote request
// without a bearer credential. Such a request must not read or write the
// token store.
func (sc *ServerContext) StoredTokenAccess(ctx context.Context) error {
	if !IsRemoteRequest(ctx) {
		return nil
	}
	if _, ok := google.CredentialFromContext(ctx); !ok {
		return ErrNoRequestCredential
	}
	return nil
}

// TokenProvider returns the provider used to resolve account credentials.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// OAuthConfig returns the OAuth client configuration, or nil.
func (sc *ServerContext) OAuthConfig() *oauth2.Config {
	return sc.oauthConfig
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder. It is never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.provider.Metrics()
}

// AuditLogger returns the audit logger.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Instrumentation returns the instrumentation provider, or nil.
func (sc *ServerContext) Instrumentation() *instrumentation.Provider {
	return sc.provider
}

// RateLimiter returns the shared limiter of a Google service.
func (sc *ServerContext) RateLimiter(service google.ServiceType) *google.RateLimiter {
	return sc.limiters.For(service)
}

// Credential resolves the credential for account. A bearer credential carried
// on ctx wins over the token provider.
func (sc *ServerContext) Credential(ctx context.Context, account string) (*google.Credential, error) {
	if cred, ok := google.CredentialFromContext(ctx); ok {
		return cred, nil
	}
	if IsRemoteRequest(ctx) {
		return nil, ErrNoRequestCredential
	}
	if account == "" {
		account = sc.DefaultAccount()
	}
	return sc.tokenProvider.CredentialForAccount(sc.ctx, account)
}

// UserInfo fetches the profile of the user behind account.
func (sc *ServerContext) UserInfo(ctx context.Context, account string) (*google.UserInfo, error) {
	cred, err := sc.Credential(ctx, account)
	if err != nil {
		return nil, err
	}
	limiter := sc.limiters.For(google.ServiceUserInfo)
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	info, err := google.GetUserInfo(ctx, cred, sc.clientOptions[google.ServiceUserInfo]...)
	return info, limiter.Observe(err)
}

// SaveToken exchanges an authorization code and stores the token of account.
// Cached clients of account are dropped so the next call uses the new token.
func (sc *ServerContext) SaveToken(ctx context.Context, account, code string) error {
	if err := sc.StoredTokenAccess(ctx); err != nil {
		return err
	}
	if sc.oauthConfig == nil || sc.oauthConfig.ClientID == "" {
		return ErrNoOAuthClient
	}
	saver, ok := sc.tokenProvider.(tokenSaver)
	if !ok {
		return ErrTokenStoreUnavailable
	}

	tok, err := google.Exchange(ctx, sc.oauthConfig, code)
	if err != nil {
		return err
	}
	if err := saver.Store().Save(account, tok); err != nil {
		return err
	}
	sc.InvalidateAccount(account)
	return nil
}

// tokenSaver is a token provider backed by a token store.
type tokenSaver interface {
	Store() *google.TokenStore
}

// DefaultAccount returns the configured default account name.
func (sc *ServerContext) DefaultAccount() string {
	if sc.cfg.Google.DefaultAccount != "" {
		return sc.cfg.Google.DefaultAccount
	}
	return "default"
}

// HasTokenForAccount reports whether a stored token exists for account.
func (sc *ServerContext) HasTokenForAccount(account string) bool {
	return sc.tokenProvider.HasTokenForAccount(account)
}

// GmailClientForAccount returns the Gmail client for a specific account.
// Creates and caches the client if it doesn't exist yet.
func (sc *ServerContext) GmailClientForAccount(ctx context.Context, account string) (*gmail.Client, error) {
	return clientFor(ctx, sc, sc.gmailClients, account, func(ctx context.Context, cred *google.Credential) (*gmail.Client, error) {
		c, err := gmail.NewClient(ctx, cred, sc.clientOptions[google.ServiceGmail]...)
		if err != nil {
			return nil, err
		}
		return c.WithRateLimiter(sc.limiters.For(google.ServiceGmail)), nil
	})
}

// DriveClientForAccount returns the Drive client for a specific account.
func (sc *ServerContext) DriveClientForAccount(ctx context.Context, account string) (*drive.Client, error) {
	return clientFor(ctx, sc, sc.driveClients, account, func(ctx context.Context, cred *google.Credential) (*drive.Client, error) {
		c, err := drive.NewClient(ctx, cred, sc.clientOptions[google.ServiceDrive]...)
		if err != nil {
			return nil, err
		}
		return c.WithRateLimiter(sc.limiters.For(google.ServiceDrive)), nil
	})
}

// CalendarClientForAccount returns the Calendar client for a specific account.
func (sc *ServerContext) CalendarClientForAccount(ctx context.Context, account string) (*calendar.Client, error) {
	return clientFor(ctx, sc, sc.calendarClients, account, func(ctx context.Context, cred *google.Credential) (*calendar.Client, error) {
		c, err := calendar.NewClient(ctx, cred, sc.clientOptions[google.ServiceCalendar]...)
		if err != nil {
			return nil, err
		}
		return c.WithRateLimiter(sc.limiters.For(google.ServiceCalendar)), nil
	})
}

// SheetsClientForAccount returns the Sheets client for a specific account.
func (sc *ServerContext) SheetsClientForAccount(ctx context.Context, account string) (*sheets.Client, error) {
	return clientFor(ctx, sc, sc.sheetsClients, account, func(ctx context.Context, cred *google.Credential) (*sheets.Client, error) {
		c, err := sheets.NewClient(ctx, cred, sc.clientOptions[google.ServiceSheets]...)
		if err != nil {
			return nil, err
		}
		return c.WithRateLimiter(sc.limiters.For(google.ServiceSheets)), nil
	})
}

// VisionClientForAccount returns the Vision client for a specific account.
// Without a stored token it falls back to the configured API key. Remote
// requests without a bearer credential do not.
func (sc *ServerContext) VisionClientForAccount(ctx context.Context, account string) (*vision.Client, error) {
	build := func(ctx context.Context, cred *google.Credential) (*vision.Client, error) {
		c, err := vision.NewClient(ctx, cred, sc.clientOptions[google.ServiceVision]...)
		if err != nil {
			return nil, err
		}
		return c.WithRateLimiter(sc.limiters.For(google.ServiceVision)), nil
	}

	client, err := clientFor(ctx, sc, sc.visionClients, account, build)
	if err == nil || sc.cfg.Vision.APIKey == "" || !errors.Is(err, google.ErrNoToken) {
		return client, err
	}

	return clientFor(ctx, sc, sc.visionClients, apiKeyAccount, func(ctx context.Context, _ *google.Credential) (*vision.Client, error) {
		c, err := vision.NewClientWithAPIKey(ctx, sc.cfg.Vision.APIKey, sc.clientOptions[google.ServiceVision]...)
		if err != nil {
			return nil, err
		}
		return c.WithRateLimiter(sc.limiters.For(google.ServiceVision)), nil
	})
}

// clientFor returns the cached client of account or builds one. Bearer
// credentials on ctx bypass the cache in both directions.
func clientFor[T any](ctx context.Context, sc *ServerContext, cache map[string]T, account string, build func(context.Context, *google.Credential) (T, error)) (T, error) {
	var zero T

	if sc.IsShutdown() {
		return zero, ErrShutdown
	}

	if cred, ok := google.CredentialFromContext(ctx); ok {
		return build(ctx, cred)
	}
	if IsRemoteRequest(ctx) {
		return zero, ErrNoRequestCredential
	}

	if account == "" {
		account = sc.DefaultAccount()
	}

	sc.mu.RLock()
	client, ok := cache[account]
	sc.mu.RUnlock()
	if ok {
		return client, nil
	}

	var cred *google.Credential
	if account != apiKeyAccount {
		var err error
		cred, err = sc.tokenProvider.CredentialForAccount(sc.ctx, account)
		if err != nil {
			return zero, err
		}
	}

	client, err := build(sc.ctx, cred)
	if err != nil {
		return zero, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if existing, ok := cache[account]; ok {
		return existing, nil
	}
	cache[account] = client
	return client, nil
}

// InvalidateAccount drops every cached client of account, for example after
// a new token was saved.
func (sc *ServerContext) InvalidateAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.gmailClients, account)
	delete(sc.driveClients, account)
	delete(sc.calendarClients, account)
	delete(sc.sheetsClients, account)
	delete(sc.visionClients, account)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
