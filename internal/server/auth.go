package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/teemow/gapidemo/internal/google"
)

// BearerAccount is the account name given to credentials taken from an
// Authorization header.
const BearerAccount = "bearer"

// ErrNoAuthorizationHeader is returned when no Authorization header is provided
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

// ErrInvalidAuthorizationHeader is returned for a header that is not a bearer token.
var ErrInvalidAuthorizationHeader = errors.New("authorization header must be a bearer token")

// ErrNoRequestCredential is returned when an HTTP request without a bearer
// token asks for a Google client. HTTP requests never use the stored tokens.
var ErrNoRequestCredential = errors.New("the request carries no Google access token, send one as an Authorization bearer token")

type remoteRequestKey struct{}

// IsRemoteRequest reports whether ctx belongs to a request received over HTTP.
func IsRemoteRequest(ctx context.Context) bool {
	remote, _ := ctx.Value(remoteRequestKey{}).(bool)
	return remote
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoAuthorizationHeader
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthorizationHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidAuthorizationHeader
	}
	return token, nil
}

// BearerContextFunc marks ctx as a remote request and attaches the Google
// access token of the request, if any, as its credential. It is used as the
// MCP HTTP context function.
func BearerContextFunc(ctx context.Context, r *http.Request) context.Context {
	ctx = context.WithValue(ctx, remoteRequestKey{}, true)
	token, err := BearerToken(r)
	if err != nil {
		return ctx
	}
	return google.ContextWithCredential(ctx, google.BearerCredential(BearerAccount, token))
}

// RequireBearer rejects requests without a bearer token with 401.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := BearerToken(r); err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="gapidemo"`)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
