package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gapidemo/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default address of the MCP HTTP server. It only
	// listens on loopback.
	DefaultHTTPAddr = "127.0.0.1:8080"

	// MCPEndpoint is the path of the streamable HTTP endpoint.
	MCPEndpoint = "/mcp"
)

// HTTPServerConfig configures the MCP HTTP server.
type HTTPServerConfig struct {
	Addr string

	// RequireAuth rejects MCP requests without an Authorization bearer token.
	RequireAuth bool
}

// HTTPServer serves MCP over streamable HTTP together with the health endpoints.
// A bearer token on a request is used as the Google credential of that request.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	sc         *ServerContext
	health     *HealthChecker
	config     HTTPServerConfig
	httpServer *http.Server
}

// NewHTTPServer creates the HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}
	return &HTTPServer{
		mcpServer: mcpServer,
		sc:        sc,
		health:    NewHealthChecker(sc),
		config:    config,
	}, nil
}

// Health returns the health checker backing the health endpoints.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler builds the HTTP handler: /mcp plus the health endpoints.
func (s *HTTPServer) Handler() http.Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpoint),
		mcpserver.WithHTTPContextFunc(BearerContextFunc),
	)

	var mcpHandler http.Handler = streamable
	if s.config.RequireAuth {
		mcpHandler = RequireBearer(mcpHandler)
	}

	mux := http.NewServeMux()
	mux.Handle(MCPEndpoint, mcpHandler)
	s.health.RegisterHealthEndpoints(mux)

	var metrics *instrumentation.Metrics
	if s.sc != nil {
		metrics = s.sc.Metrics()
	}
	return instrumentHTTP(metrics, mux)
}

// Start starts the HTTP server in a blocking manner.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("starting MCP HTTP server", "addr", s.config.Addr, "endpoint", MCPEndpoint)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and gracefully shuts it down.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		slog.Info("shutting down MCP HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.config.Addr
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrumentHTTP records request count and duration per method, path and status.
func instrumentHTTP(m *instrumentation.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
	})
}

// routeLabel bounds the path label to the registered routes.
func routeLabel(path string) string {
	switch path {
	case MCPEndpoint, "/healthz", "/readyz", "/healthz/detailed":
		return path
	}
	return "other"
}
