package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/config"
	"github.com/teemow/gapidemo/internal/instrumentation"
	"github.com/teemow/gapidemo/internal/resources"
	"github.com/teemow/gapidemo/internal/server"
	"github.com/teemow/gapidemo/internal/tools/calendar_tools"
	"github.com/teemow/gapidemo/internal/tools/drive_tools"
	"github.com/teemow/gapidemo/internal/tools/gmail_tools"
	"github.com/teemow/gapidemo/internal/tools/google_tools"
	"github.com/teemow/gapidemo/internal/tools/sheets_tools"
	"github.com/teemow/gapidemo/internal/tools/vision_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions holds the resolved serve settings.
type serveOptions struct {
	Transport   string
	HTTPAddr    string
	Yolo        bool
	AccessToken string
	RequireAuth bool
	Metrics     MetricsConfig
}

func newServeCmd() *cobra.Command {
	var (
		transport          string
		httpAddr           string
		yolo               bool
		googleClientID     string
		googleClientSecret string
		accessToken        string
		requireAuth        bool
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Gmail, Drive,
Calendar, Vision and Sheets tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport at /mcp

Safety Mode:
  By default, the server operates in read-only mode, providing only safe operations.
  Use --yolo to enable write operations (email sending, file deletion, etc.)

Credentials:
  Tools use the tokens saved by 'gapidemo login' for the requested account.
  With --access-token every account uses the given access token.
  Over HTTP, a request carrying "Authorization: Bearer <google access token>"
  uses that token for the request only. Requests without one never use the
  saved tokens. --require-auth rejects them outright and enables
  google_save_auth_code over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg
			if cmd.Flags().Changed("transport") {
				c.Server.Transport = transport
			}
			if cmd.Flags().Changed("http-addr") {
				c.Server.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("yolo") {
				c.Server.Yolo = yolo
			}
			if cmd.Flags().Changed("metrics-addr") {
				c.Server.MetricsAddr = metricsAddr
			}
			if googleClientID != "" {
				c.Google.ClientID = googleClientID
			}
			if googleClientSecret != "" {
				c.Google.ClientSecret = googleClientSecret
			}
			if err := c.Validate(); err != nil {
				return err
			}

			opts := serveOptions{
				Transport:   c.Server.Transport,
				HTTPAddr:    c.Server.HTTPAddr,
				Yolo:        c.Server.Yolo,
				AccessToken: resolveAccessToken(accessToken),
				RequireAuth: requireAuth,
				Metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    c.Server.MetricsAddr,
				},
			}
			return runServe(c, opts)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", config.TransportStdio, "Transport type: stdio or streamable-http. Can also use GAPIDEMO_TRANSPORT env var.")
	cmd.Flags().StringVar(&httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport, loopback only by default). Can also use GAPIDEMO_HTTP_ADDR env var.")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (email sending, file deletion, etc.). Default is read-only mode.")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID for token refresh and the auth tools. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().BoolVar(&requireAuth, "require-auth", false, "Reject HTTP requests without an Authorization bearer token (streamable-http only)")
	addAccessTokenFlag(cmd, &accessToken)

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use GAPIDEMO_METRICS_ADDR env var.")

	return cmd
}

func runServe(c config.Config, opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("error during instrumentation shutdown", "error", err)
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.Transport != config.TransportStdio && opts.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(opts.Metrics, provider)
		if err != nil {
			return err
		}
	}

	oauthConf := newOAuthConfig(c)
	serverContext, err := server.NewServerContext(shutdownCtx, server.Options{
		Config:          c,
		TokenProvider:   newTokenProvider(c, opts.AccessToken, oauthConf),
		OAuthConfig:     oauthConf,
		Instrumentation: provider,
		Logger:          logger,
		Yolo:            opts.Yolo,
		Transport:       opts.Transport,
		RequireAuth:     opts.RequireAuth,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", "error", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("gapidemo", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// readOnly is the inverse of yolo
	readOnly := !opts.Yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	// Register all tools and resources
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch opts.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)", opts.Transport, config.TransportStdio, config.TransportStreamableHTTP)
	}
}

// startMetricsServer starts the metrics server and waits briefly for a bind
// failure before reporting it as started.
func startMetricsServer(metricsConfig MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsConfig.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(200 * time.Millisecond):
	}
	slog.Info("metrics server started", "addr", metricsServer.Addr())
	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Vision",
			register: func() error {
				return vision_tools.RegisterVisionTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Sheets",
			register: func() error {
				return sheets_tools.RegisterSheetsTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Google",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "User Resources",
			register: func() error {
				return resources.RegisterUserResources(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, sc, server.HTTPServerConfig{
		Addr:        opts.HTTPAddr,
		RequireAuth: opts.RequireAuth,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Streamable HTTP server starting on %s\n", httpServer.Addr())
	fmt.Fprintf(os.Stderr, "  HTTP endpoint: %s\n", server.MCPEndpoint)
	fmt.Fprintf(os.Stderr, "  Health endpoints: /healthz, /readyz, /healthz/detailed\n")
	if opts.Metrics.Enabled {
		fmt.Fprintf(os.Stderr, "  Metrics endpoint: %s/metrics\n", opts.Metrics.Addr)
	}
	if opts.RequireAuth {
		fmt.Fprintln(os.Stderr, "\nRequests must carry a Google access token as Authorization bearer.")
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		slog.Info("HTTP server stopped normally")
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}
