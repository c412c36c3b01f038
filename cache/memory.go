// Package cache provides token caching for authsome providers.
//
// Memory is a TTL-bounded in-memory token cache; NewProvider wraps any
// authsome.Provider so hot tokens skip the identity backend. Only
// successful authentications are cached — failures always go back to the
// backend — and revocation latency is bounded by the cache TTL.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/authsome"
)

// Compile-time interface check.
var _ authsome.TokenCache = (*Memory)(nil)

// Memory is an in-memory token cache with TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	identity  authsome.Identity
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory token cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached identity for a token, if present and fresh.
func (m *Memory) Get(_ context.Context, token string) (authsome.Identity, bool) {
	m.mu.RLock()
	e, ok := m.entries[token]
	m.mu.RUnlock()
	if !ok {
		return authsome.Identity{}, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, token)
		m.mu.Unlock()
		return authsome.Identity{}, false
	}
	return e.identity, true
}

// Set stores the identity resolved for a token.
func (m *Memory) Set(_ context.Context, token string, identity authsome.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			// Evict one arbitrary entry.
			m.evictOne()
		}
	}

	m.entries[token] = &entry{
		identity:  identity,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// Invalidate drops a single token.
func (m *Memory) Invalidate(_ context.Context, token string) {
	m.mu.Lock()
	delete(m.entries, token)
	m.mu.Unlock()
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
