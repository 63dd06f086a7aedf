// Package toolstest drives registered MCP tools through the JSON-RPC entry
// point of an MCP server, against Google services faked with httptest.
package toolstest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/gapidemo/internal/config"
	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/server"
)

// Result is the decoded outcome of a tool call.
type Result struct {
	Text    string
	IsError bool
}

// Setup holds the pieces of a tool test.
// Token is served by a static token provider unless TokenProvider is set.
type Setup struct {
	Token         string
	TokenProvider google.TokenProvider
	OAuthConfig   *oauth2.Config
	Yolo          bool
	Transport     string
	RequireAuth   bool
	Config        *config.Config
	Servers       map[google.ServiceType]Endpoint
}

// Endpoint routes one Google service to handler. Path is appended to the
// fake server URL to form the endpoint, for example "/drive/v3/".
type Endpoint struct {
	Path    string
	Handler http.Handler
}

// NewServerContext creates a server context whose Google clients talk to the
// handlers of s.
func NewServerContext(t *testing.T, s Setup) *server.ServerContext {
	t.Helper()

	cfg := config.Default()
	if s.Config != nil {
		cfg = *s.Config
	}

	clientOptions := make(map[google.ServiceType][]option.ClientOption)
	for service, ep := range s.Servers {
		srv := httptest.NewServer(ep.Handler)
		t.Cleanup(srv.Close)
		path := ep.Path
		if path == "" {
			path = "/"
		}
		clientOptions[service] = []option.ClientOption{option.WithEndpoint(srv.URL + path)}
	}

	var provider google.TokenProvider = google.NewStaticTokenProvider(s.Token)
	if s.TokenProvider != nil {
		provider = s.TokenProvider
	}
	oauthConfig := s.OAuthConfig
	if oauthConfig == nil {
		oauthConfig = google.NewOAuthConfig(google.OAuthSettings{ClientID: "client-id", ClientSecret: "secret", RedirectURL: "http://127.0.0.1:8085/callback"})
	}

	sc, err := server.NewServerContext(context.Background(), server.Options{
		Config:        cfg,
		TokenProvider: provider,
		OAuthConfig:   oauthConfig,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Yolo:          s.Yolo,
		Transport:     s.Transport,
		RequireAuth:   s.RequireAuth,
		ClientOptions: clientOptions,
	})
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// NewMCPServer returns an MCP server with tool capabilities.
func NewMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("gapidemo-test", "test", mcpserver.WithToolCapabilities(true))
}

// ToolNames lists the registered tools, sorted.
func ToolNames(t *testing.T, s *mcpserver.MCPServer) []string {
	t.Helper()

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	roundTrip(t, s, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/list",
	}, &resp)

	names := make([]string, 0, len(resp.Result.Tools))
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

// CallTool invokes tool name with args.
func CallTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) Result {
	t.Helper()

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	roundTrip(t, s, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}, &resp)

	if resp.Error != nil {
		t.Fatalf("tools/call %s failed: %s", name, resp.Error.Message)
	}

	var out Result
	out.IsError = resp.Result.IsError
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			out.Text = c.Text
			break
		}
	}
	return out
}

func roundTrip(t *testing.T, s *mcpserver.MCPServer, req map[string]interface{}, out interface{}) {
	t.Helper()

	msg, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	resp := s.HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode response %s: %v", data, err)
	}
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
