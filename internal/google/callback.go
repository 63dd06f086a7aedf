package google

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// CallbackPath is the path the OAuth redirect URL must point at.
const CallbackPath = "/callback"

// CallbackServer receives the OAuth redirect on the loopback interface.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	codeChan      chan string
	errChan       chan error
	server        *http.Server
}

// NewCallbackServer creates a callback server that accepts only expectedState.
// Port 0 picks a free port.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}
}

// Start listens on 127.0.0.1 and serves the callback in the background.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.fail(err)
		}
	}()

	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if errParam := q.Get("error"); errParam != "" {
		s.fail(fmt.Errorf("oauth error: %s - %s", errParam, q.Get("error_description")))
		_, _ = fmt.Fprint(w, callbackPage("Authorization failed", html.EscapeString(errParam)))
		return
	}

	if q.Get("state") != s.expectedState {
		s.fail(fmt.Errorf("state mismatch in OAuth callback"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, callbackPage("Authorization failed", "invalid state parameter"))
		return
	}

	code := q.Get("code")
	if code == "" {
		s.fail(fmt.Errorf("no authorization code received"))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprint(w, callbackPage("Authorization failed", "no code received"))
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}

	_, _ = fmt.Fprint(w, callbackPage("Authorization successful", "You can close this window and return to the terminal."))
}

func (s *CallbackServer) fail(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

// WaitForCode blocks until a code arrives, the callback fails or ctx is done.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("timeout waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts the server down.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURL returns the redirect URL to register with the OAuth config.
func (s *CallbackServer) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d%s", s.Port(), CallbackPath)
}

func callbackPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>gapidemo</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 15vh">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, title, message)
}

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("browser command exited", "error", err)
		}
	}()
	return nil
}
