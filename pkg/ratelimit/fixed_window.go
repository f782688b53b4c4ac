package ratelimit

import (
	"context"
	"time"
)

// FixedWindow counts requests per key in non-overlapping windows. It matches
// the semantics of classic HTTP rate limiters: simple, cheap, and predictable
// for operators, at the cost of allowing short bursts across a window edge.
type FixedWindow struct {
	store  Store
	config Config
}

// NewFixedWindow creates a fixed-window limiter over the given store.
func NewFixedWindow(store Store, config Config) (*FixedWindow, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &FixedWindow{store: store, config: config}, nil
}

func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	count, ttl, err := fw.store.IncrementAndGet(ctx, key, fw.config.Window)
	if err != nil {
		return nil, err
	}

	remaining := fw.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(fw.config.Limit),
		Limit:     fw.config.Limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}
