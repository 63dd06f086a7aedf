package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := &googleapi.Error{Code: tt.code, Message: "boom"}
			wrapped := WrapError(fmt.Errorf("call failed: %w", orig))

			assert.ErrorIs(t, wrapped, tt.sentinel)

			var gerr *googleapi.Error
			assert.True(t, errors.As(wrapped, &gerr))
			assert.Equal(t, tt.code, gerr.Code)
		})
	}

	assert.Nil(t, WrapError(nil))

	other := &googleapi.Error{Code: http.StatusInternalServerError}
	assert.Same(t, error(other), WrapError(other))

	plain := errors.New("plain")
	assert.Equal(t, plain, WrapError(plain))
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: 401}))
	assert.True(t, IsForbidden(&googleapi.Error{Code: 403}))
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", &googleapi.Error{Code: 404})))
	assert.True(t, IsRateLimited(ErrRateLimited))
	assert.False(t, IsNotFound(errors.New("nope")))
	assert.False(t, IsRateLimited(&googleapi.Error{Code: 500}))
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, RetryAfter(&googleapi.Error{Code: 429, Header: h}))
	assert.Zero(t, RetryAfter(&googleapi.Error{Code: 429}))
	assert.Zero(t, RetryAfter(errors.New("x")))
}
