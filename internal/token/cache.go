// Package token caches outbound access tokens per scope so each downstream
// call does not pay for a round trip to the identity provider.
package token

import (
	"context"
	"sync"
	"time"
)

// Source hands out a valid access token for the given scope.
type Source interface {
	Get(ctx context.Context, scope string) (string, error)
}

// Fetcher obtains a fresh token from the identity provider. expiresIn is the
// provider-reported lifetime.
type Fetcher interface {
	Fetch(ctx context.Context, scope string) (token string, expiresIn time.Duration, err error)
}

// DefaultLeeway is subtracted from the reported lifetime so a token is never
// used right at its expiry.
const DefaultLeeway = 30 * time.Second

type cached struct {
	token     string
	expiresAt time.Time
}

// Cache is a scope-keyed token cache. Concurrent misses for the same scope
// may each fetch; last write wins, which is harmless since every fetched
// token is valid.
type Cache struct {
	fetcher Fetcher
	leeway  time.Duration
	now     func() time.Time
	onFetch func()

	mu     sync.RWMutex
	tokens map[string]cached
}

type CacheOption func(*Cache)

// WithLeeway overrides the expiry margin.
func WithLeeway(leeway time.Duration) CacheOption {
	return func(c *Cache) { c.leeway = leeway }
}

// WithCacheClock overrides the time source, for tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithFetchCallback is invoked after every successful fetch.
func WithFetchCallback(fn func()) CacheOption {
	return func(c *Cache) { c.onFetch = fn }
}

func NewCache(fetcher Fetcher, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher: fetcher,
		leeway:  DefaultLeeway,
		now:     time.Now,
		tokens:  make(map[string]cached),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(ctx context.Context, scope string) (string, error) {
	c.mu.RLock()
	entry, ok := c.tokens[scope]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.token, nil
	}

	token, expiresIn, err := c.fetcher.Fetch(ctx, scope)
	if err != nil {
		return "", err
	}
	if c.onFetch != nil {
		c.onFetch()
	}

	c.mu.Lock()
	c.tokens[scope] = cached{token: token, expiresAt: c.now().Add(expiresIn - c.leeway)}
	c.mu.Unlock()
	return token, nil
}
