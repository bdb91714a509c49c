package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchaudit/internal/ports"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func TestGetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(newFakeClock())

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Hour))
	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), got)
}

func TestGetExpiresEntries(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := New(clock)

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Hour))

	clock.advance(59 * time.Minute)
	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	clock.advance(2 * time.Minute)
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIncrFixedWindow(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := New(clock)

	count, resetAt, err := s.Incr(ctx, "rl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, clock.now.Add(time.Hour), resetAt)

	count, _, err = s.Incr(ctx, "rl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// The window boundary is fixed at the first increment, not sliding.
	clock.advance(30 * time.Minute)
	count, again, err := s.Incr(ctx, "rl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, resetAt, again)

	clock.advance(31 * time.Minute)
	count, next, err := s.Incr(ctx, "rl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, clock.now.Add(time.Hour), next)
}

func TestIncrKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := New(newFakeClock())

	_, _, err := s.Incr(ctx, "a", time.Hour)
	require.NoError(t, err)
	count, _, err := s.Incr(ctx, "b", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCleanupDropsExpired(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := New(clock)

	require.NoError(t, s.Set(ctx, "old", []byte("x"), time.Minute))
	require.NoError(t, s.Set(ctx, "fresh", []byte("y"), time.Hour))
	_, _, err := s.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)

	clock.advance(5 * time.Minute)
	s.Cleanup()

	assert.Len(t, s.values, 1)
	assert.Empty(t, s.counters)

	_, found, err := s.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, found)
}

var _ ports.Store = (*Store)(nil)
