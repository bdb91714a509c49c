// Package memstore is an in-process ports.Store for single-node deployments
// and deterministic tests. The clock is injected so expiry and rate windows
// can be tested without sleeping.
package memstore

import (
	"context"
	"sync"
	"time"

	"launchaudit/internal/ports"
)

type valueEntry struct {
	value     []byte
	expiresAt time.Time
}

type counterEntry struct {
	count   int64
	resetAt time.Time
}

type Store struct {
	clock ports.Clock

	mu       sync.Mutex
	values   map[string]valueEntry
	counters map[string]counterEntry
}

func New(clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.ClockFunc(time.Now)
	}
	return &Store{
		clock:    clock,
		values:   make(map[string]valueEntry),
		counters: make(map[string]counterEntry),
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	if s.clock.Now().After(entry.expiresAt) {
		delete(s.values, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = valueEntry{value: value, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *Store) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	entry, ok := s.counters[key]
	if !ok || now.After(entry.resetAt) {
		entry = counterEntry{count: 0, resetAt: now.Add(window)}
	}
	entry.count++
	s.counters[key] = entry
	return entry.count, entry.resetAt, nil
}

// Cleanup drops expired entries. Callers run it periodically; correctness
// does not depend on it since reads check expiry themselves.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	for k, v := range s.values {
		if now.After(v.expiresAt) {
			delete(s.values, k)
		}
	}
	for k, c := range s.counters {
		if now.After(c.resetAt) {
			delete(s.counters, k)
		}
	}
}
