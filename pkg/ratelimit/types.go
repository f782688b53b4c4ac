package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidConfig = errors.New("ratelimit: invalid config")

// Config describes a fixed window: at most Limit requests per Window per key.
type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) validate() error {
	if c.Limit <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("limit must be positive"))
	}
	if c.Window <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("window must be positive"))
	}
	return nil
}

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// ResetAt is the time when the rate limit window resets.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter is the interface middleware consumes.
type Limiter interface {
	// Allow checks whether a single request is allowed for the given key,
	// consuming one slot if so.
	Allow(ctx context.Context, key string) (*Result, error)
}

// Store is the counter backend for the fixed-window limiter.
type Store interface {
	// IncrementAndGet atomically increments the counter for the key, starting
	// a new window with the given TTL when the key is fresh. It returns the
	// new count and the remaining window TTL.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}
