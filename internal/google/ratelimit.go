package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Google API service for rate limiting purposes.
type ServiceType string

const (
	ServiceGmail    ServiceType = "gmail"
	ServiceDrive    ServiceType = "drive"
	ServiceCalendar ServiceType = "calendar"
	ServiceVision   ServiceType = "vision"
	ServiceSheets   ServiceType = "sheets"
	ServiceUserInfo ServiceType = "userinfo"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// BurstSize is the maximum burst size.
	BurstSize int `toml:"burst_size"`
}

// DefaultRateLimits are kept well below Google's published per-user quotas.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceGmail:    {RequestsPerSecond: 2.0, BurstSize: 5},
	ServiceDrive:    {RequestsPerSecond: 8.0, BurstSize: 10},
	ServiceCalendar: {RequestsPerSecond: 5.0, BurstSize: 10},
	ServiceVision:   {RequestsPerSecond: 1.0, BurstSize: 2},
	ServiceSheets:   {RequestsPerSecond: 1.0, BurstSize: 5},
	ServiceUserInfo: {RequestsPerSecond: 5.0, BurstSize: 10},
}

var fallbackRateLimit = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}

// defaultBackoff applies when a 429 response carries no Retry-After header.
const defaultBackoff = 60 * time.Second

// RateLimiter is a token bucket with an additional backoff window set after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service ServiceType
}

// NewRateLimiter creates a limiter for service using DefaultRateLimits.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = fallbackRateLimit
	}
	return NewRateLimiterWithConfig(service, cfg)
}

// NewRateLimiterWithConfig creates a limiter with a custom configuration.
func NewRateLimiterWithConfig(service ServiceType, cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = fallbackRateLimit.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		service: service,
	}
}

// Service returns the service the limiter belongs to.
func (r *RateLimiter) Service() ServiceType {
	if r == nil {
		return ""
	}
	return r.service
}

// Wait blocks until a request can be made. A nil limiter never blocks.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError starts a backoff window. A non-positive delay selects the default.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if r == nil {
		return
	}
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(retryAfter)
}

// Observe inspects the result of an API call and backs off on rate limit errors.
// It returns err unchanged.
func (r *RateLimiter) Observe(err error) error {
	if err != nil && IsRateLimited(err) {
		r.RecordRateLimitError(RetryAfter(err))
	}
	return err
}

// Allow reports whether a request may be made right now without blocking.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}

	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// RateLimiters holds one shared limiter per service.
type RateLimiters struct {
	mu        sync.Mutex
	limiters  map[ServiceType]*RateLimiter
	overrides map[ServiceType]RateLimitConfig
}

// NewRateLimiters creates a registry. overrides replace DefaultRateLimits per service.
func NewRateLimiters(overrides map[ServiceType]RateLimitConfig) *RateLimiters {
	return &RateLimiters{
		limiters:  make(map[ServiceType]*RateLimiter),
		overrides: overrides,
	}
}

// For returns the limiter for service, creating it on first use.
func (rl *RateLimiters) For(service ServiceType) *RateLimiter {
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[service]; ok {
		return l
	}

	var l *RateLimiter
	if cfg, ok := rl.overrides[service]; ok {
		l = NewRateLimiterWithConfig(service, cfg)
	} else {
		l = NewRateLimiter(service)
	}
	rl.limiters[service] = l
	return l
}
