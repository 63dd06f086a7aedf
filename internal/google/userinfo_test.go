package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestGetUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth2/v2/userinfo", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","email":"jane@example.com","verified_email":true,"name":"Jane Doe","picture":"https://example.com/p.png"}`))
	}))
	defer srv.Close()

	info, err := GetUserInfo(context.Background(), BearerCredential("default", "tok"), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, "42", info.ID)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.True(t, info.VerifiedEmail)
	assert.Equal(t, "Jane Doe", info.Name)
	assert.Equal(t, "https://example.com/p.png", info.Picture)
}

func TestGetUserInfo_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
	}))
	defer srv.Close()

	_, err := GetUserInfo(context.Background(), BearerCredential("default", "expired"), option.WithEndpoint(srv.URL+"/"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGetUserInfo_NoCredential(t *testing.T) {
	_, err := GetUserInfo(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoToken)
}
