package ports

import (
	"context"
	"time"
)

// Store is a small key-value contract backing caching and rate limiting.
// Implementations are injected so callers never depend on a process-global
// mutable map or the wall clock directly.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Incr bumps a fixed-window counter, starting a new window of the given
	// length when none is active. It returns the count within the current
	// window and the time the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
